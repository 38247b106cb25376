package mqtt

import (
	"context"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"lejio/tracking/internal/config"
	"lejio/tracking/internal/domain"
	"lejio/tracking/internal/provider"
)

type ingestor interface {
	Ingest(ctx context.Context, provider string, body []byte) (*domain.BatchResult, error)
}

// Subscriber feeds tracker messages into the same pipeline as the webhook.
// The provider is the topic level matched by the first "+" of the
// subscription, so "trackers/+/positions" takes it from the second level.
type Subscriber struct {
	ingestor ingestor
	topic    string
	timeout  time.Duration
}

func NewSubscriber(ing ingestor, topic string, timeout time.Duration) *Subscriber {
	return &Subscriber{ingestor: ing, topic: topic, timeout: timeout}
}

// Connect dials the broker. The subscription is (re)made on every successful
// connect, so it survives automatic reconnects.
func Connect(cfg *config.Config, sub *Subscriber) (paho.Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID).
		SetAutoReconnect(true).
		SetOnConnectHandler(sub.OnConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.WithError(err).Warn("MQTT connection lost")
		})

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return client, nil
}

func (s *Subscriber) OnConnect(client paho.Client) {
	token := client.Subscribe(s.topic, 1, s.handleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		log.WithError(err).WithField("topic", s.topic).Error("MQTT subscribe failed")
		return
	}
	log.WithField("topic", s.topic).Info("MQTT subscribed")
}

func (s *Subscriber) handleMessage(_ paho.Client, msg paho.Message) {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	name := providerFromTopic(s.topic, msg.Topic())
	batch, err := s.ingestor.Ingest(ctx, name, msg.Payload())
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"topic":    msg.Topic(),
			"provider": name,
		}).Error("MQTT message dropped")
		return
	}

	if batch.ErrorCount > 0 {
		log.WithFields(log.Fields{
			"topic":     msg.Topic(),
			"processed": batch.ProcessedCount,
			"errors":    batch.ErrorCount,
		}).Warn("MQTT message partially rejected")
	}
}

func providerFromTopic(pattern, topic string) string {
	patternLevels := strings.Split(pattern, "/")
	topicLevels := strings.Split(topic, "/")

	for i, level := range patternLevels {
		if level == "#" || i >= len(topicLevels) {
			break
		}
		if level == "+" {
			if topicLevels[i] != "" {
				return topicLevels[i]
			}
			break
		}
	}
	return provider.GenericName
}
