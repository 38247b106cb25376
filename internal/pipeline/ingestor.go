package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"lejio/tracking/internal/domain"
	"lejio/tracking/internal/metrics"
	"lejio/tracking/internal/provider"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type outcome struct {
	done    bool
	result  domain.PointResult
	failure *domain.PointFailure
}

// Ingestor turns a request body into a BatchResult. Points of one device are
// processed in arrival order; different devices run concurrently.
type Ingestor struct {
	parsers    *provider.Registry
	processor  *Processor
	dispatcher *Dispatcher
	health     Pinger
	timeout    time.Duration
	now        func() time.Time
}

// NewIngestor builds an Ingestor. health may be nil; timeout <= 0 leaves the
// caller's deadline in charge.
func NewIngestor(parsers *provider.Registry, processor *Processor, dispatcher *Dispatcher, health Pinger, timeout time.Duration) *Ingestor {
	return &Ingestor{
		parsers:    parsers,
		processor:  processor,
		dispatcher: dispatcher,
		health:     health,
		timeout:    timeout,
		now:        time.Now,
	}
}

// Ingest fails as a whole only for a malformed body (domain.ErrMalformedBody)
// or an unreachable store (domain.ErrInfrastructure). Everything else is
// reported per point.
func (i *Ingestor) Ingest(ctx context.Context, providerName string, body []byte) (*domain.BatchResult, error) {
	raws, err := SplitBatch(body)
	if err != nil {
		return nil, err
	}

	if i.health != nil {
		if err := i.health.Ping(ctx); err != nil {
			log.WithError(err).Error("Store unreachable, rejecting batch")
			return nil, fmt.Errorf("%w: %v", domain.ErrInfrastructure, err)
		}
	}

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	parser := i.parsers.Lookup(providerName)
	receivedAt := i.now().UTC()
	started := time.Now()

	metrics.BatchesIngested.Add(1)
	metrics.PointsReceived.Add(int64(len(raws)))

	outcomes := make([]outcome, len(raws))
	positions := make([]*domain.Position, len(raws))
	lanes := i.plan(parser, raws, receivedAt, positions, outcomes)

	i.dispatcher.Run(ctx, lanes, func(ctx context.Context, idx int) {
		res, err := i.processor.Process(ctx, positions[idx], receivedAt)
		if err != nil && ctx.Err() != nil {
			// in flight when the deadline hit
			return
		}
		res.Index = idx
		outcomes[idx] = outcome{done: true, result: res}
		if err != nil {
			outcomes[idx].failure = failureFor(idx, err)
		}
	})

	batch := &domain.BatchResult{
		Provider: parser.Name(),
		Results:  []domain.PointResult{},
		Errors:   []domain.PointFailure{},
	}
	dropped := 0
	for _, o := range outcomes {
		switch {
		case !o.done:
			dropped++
		case o.failure != nil:
			batch.Errors = append(batch.Errors, *o.failure)
			metrics.RecordRejection(o.failure.Code)
		default:
			batch.Results = append(batch.Results, o.result)
		}
	}
	batch.ProcessedCount = len(batch.Results)
	batch.ErrorCount = len(batch.Errors)
	metrics.PointsProcessed.Add(int64(batch.ProcessedCount))

	entry := log.WithFields(log.Fields{
		"provider":  batch.Provider,
		"points":    len(raws),
		"processed": batch.ProcessedCount,
		"errors":    batch.ErrorCount,
		"took":      time.Since(started).String(),
	})
	if dropped > 0 {
		entry.WithField("dropped", dropped).Warn("Batch cut short by deadline")
	} else {
		entry.Info("Batch ingested")
	}

	return batch, nil
}

// plan parses every payload and groups the parsed ones into per-device lanes,
// keeping arrival order inside each lane.
func (i *Ingestor) plan(parser provider.Parser, raws []json.RawMessage, receivedAt time.Time, positions []*domain.Position, outcomes []outcome) [][]int {
	laneOf := make(map[string]int)
	var lanes [][]int

	for idx, raw := range raws {
		pos, err := parser.Parse(raw, receivedAt)
		if err != nil {
			outcomes[idx] = outcome{done: true, failure: failureFor(idx, err)}
			continue
		}
		positions[idx] = pos

		n, ok := laneOf[pos.DeviceExternalID]
		if !ok {
			n = len(lanes)
			laneOf[pos.DeviceExternalID] = n
			lanes = append(lanes, nil)
		}
		lanes[n] = append(lanes[n], idx)
	}
	return lanes
}

func failureFor(idx int, err error) *domain.PointFailure {
	f := &domain.PointFailure{
		Index: idx,
		Code:  domain.CodeOf(err),
		Error: err.Error(),
	}

	var pe *domain.PointError
	if errors.As(err, &pe) {
		f.DeviceID = pe.DeviceExternalID
		f.PointID = pe.PointID
		if pe.Err != nil {
			f.Error = pe.Err.Error()
		}
	}
	var parseErr *domain.ParseError
	if errors.As(err, &parseErr) && f.DeviceID == "" {
		f.DeviceID = parseErr.DeviceExternalID
	}

	entry := log.WithFields(log.Fields{
		"index":  idx,
		"code":   f.Code,
		"device": f.DeviceID,
	})
	if f.Code == domain.CodeStoreWriteFailed || f.Code == domain.CodeLookupFailed {
		entry.WithError(err).Error("Point failed")
	} else {
		entry.WithError(err).Warn("Point rejected")
	}
	return f
}
