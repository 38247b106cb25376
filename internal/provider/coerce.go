package provider

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

var errNotObject = errors.New("payload is not a JSON object")

func decodeObject(raw json.RawMessage) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

// lookup finds key verbatim, then as a dotted path through nested objects.
func lookup(payload map[string]any, key string) (any, bool) {
	if v, ok := payload[key]; ok {
		return v, v != nil
	}
	if !strings.Contains(key, ".") {
		return nil, false
	}

	var cur any = payload
	for _, part := range strings.Split(key, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[part]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

func firstString(payload map[string]any, keys []string) (string, bool) {
	for _, key := range keys {
		v, ok := lookup(payload, key)
		if !ok {
			continue
		}
		if s, ok := toString(v); ok {
			return s, true
		}
	}
	return "", false
}

func firstFloat(payload map[string]any, keys []string, valid func(float64) bool) (float64, bool) {
	for _, key := range keys {
		v, ok := lookup(payload, key)
		if !ok {
			continue
		}
		f, ok := toFloat(v)
		if !ok {
			continue
		}
		if valid != nil && !valid(f) {
			continue
		}
		return f, true
	}
	return 0, false
}

func optionalFloat(payload map[string]any, keys []string, valid func(float64) bool) *float64 {
	f, ok := firstFloat(payload, keys, valid)
	if !ok {
		return nil
	}
	return &f
}

func optionalBool(payload map[string]any, keys []string) *bool {
	for _, key := range keys {
		v, ok := lookup(payload, key)
		if !ok {
			continue
		}
		if b, ok := toBool(v); ok {
			return &b
		}
	}
	return nil
}

// Trackers with a flat RTC battery report dates around 1970 or far ahead.
var minRecordedAt = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// firstTime skips values outside [2000-01-01, receivedAt+maxSkew] as if the
// field were absent.
func firstTime(payload map[string]any, keys []string, receivedAt time.Time, maxSkew time.Duration) (time.Time, bool) {
	latest := receivedAt.Add(maxSkew)
	for _, key := range keys {
		v, ok := lookup(payload, key)
		if !ok {
			continue
		}
		t, ok := toTime(v)
		if !ok || t.Before(minRecordedAt) || t.After(latest) {
			continue
		}
		return t, true
	}
	return time.Time{}, false
}

func nonNegative(f float64) bool {
	return f >= 0
}

func between(lo, hi float64) func(float64) bool {
	return func(f float64) bool {
		return f >= lo && f <= hi
	}
}

func toString(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return "", false
	}
	return s, s != ""
}

func toFloat(v any) (float64, bool) {
	var f float64
	var err error
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case float64:
		f = t
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case json.Number, float64:
		f, ok := toFloat(t)
		if !ok {
			return false, false
		}
		return f != 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "on", "yes":
			return true, true
		case "0", "false", "off", "no":
			return false, true
		}
	}
	return false, false
}

// maxEpochMillis is far beyond any plausible date and keeps the int64
// conversion below from overflowing.
const maxEpochMillis = 1e15

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// toTime accepts RFC3339-like strings and unix epochs in seconds or
// milliseconds, as numbers or numeric strings.
func toTime(v any) (time.Time, bool) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	}

	f, ok := toFloat(v)
	if !ok || f <= 0 || f >= maxEpochMillis {
		return time.Time{}, false
	}
	if f >= 1e12 {
		return time.UnixMilli(int64(f)).UTC(), true
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
}
