package provider

import (
	"bytes"
	"encoding/json"
	"time"

	"lejio/tracking/internal/domain"
)

// fieldTable lists candidate payload keys per logical attribute, in priority
// order. A key containing dots is tried verbatim first and then as a path
// into nested objects.
type fieldTable struct {
	DeviceID     []string
	Latitude     []string
	Longitude    []string
	Speed        []string
	Heading      []string
	Altitude     []string
	Odometer     []string
	Ignition     []string
	FuelLevel    []string
	BatteryLevel []string
	RecordedAt   []string
}

type tableParser struct {
	name    string
	fields  fieldTable
	maxSkew time.Duration
}

func (p *tableParser) setMaxClockSkew(d time.Duration) {
	p.maxSkew = d
}

func (p *tableParser) Name() string {
	return p.name
}

func (p *tableParser) Parse(raw json.RawMessage, receivedAt time.Time) (*domain.Position, error) {
	payload, err := decodeObject(raw)
	if err != nil {
		return nil, &domain.ParseError{Provider: p.name, Code: domain.CodeParseError, Reason: err.Error()}
	}

	deviceID, ok := firstString(payload, p.fields.DeviceID)
	if !ok {
		return nil, &domain.ParseError{
			Provider: p.name,
			Field:    "device id",
			Code:     domain.CodeMissingDeviceID,
			Reason:   "no candidate field holds a usable identifier",
		}
	}

	fail := func(field string, code domain.ErrorCode, reason string) error {
		return &domain.ParseError{Provider: p.name, DeviceExternalID: deviceID, Field: field, Code: code, Reason: reason}
	}

	lat, ok := firstFloat(payload, p.fields.Latitude, nil)
	if !ok {
		return nil, fail("latitude", domain.CodeMissingCoordinates, "missing or not numeric")
	}
	lon, ok := firstFloat(payload, p.fields.Longitude, nil)
	if !ok {
		return nil, fail("longitude", domain.CodeMissingCoordinates, "missing or not numeric")
	}
	if !domain.ValidLatitude(lat) {
		return nil, fail("latitude", domain.CodeInvalidCoordinates, "outside [-90, 90]")
	}
	if !domain.ValidLongitude(lon) {
		return nil, fail("longitude", domain.CodeInvalidCoordinates, "outside [-180, 180]")
	}

	pos := &domain.Position{
		DeviceExternalID: deviceID,
		Latitude:         lat,
		Longitude:        lon,
		Speed:            optionalFloat(payload, p.fields.Speed, nonNegative),
		Heading:          optionalFloat(payload, p.fields.Heading, between(0, 360)),
		Altitude:         optionalFloat(payload, p.fields.Altitude, nil),
		Odometer:         optionalFloat(payload, p.fields.Odometer, nonNegative),
		IgnitionOn:       optionalBool(payload, p.fields.Ignition),
		FuelLevel:        optionalFloat(payload, p.fields.FuelLevel, between(0, 100)),
		BatteryLevel:     optionalFloat(payload, p.fields.BatteryLevel, nil),
		RecordedAt:       receivedAt.UTC(),
		RawPayload:       compact(raw),
	}
	skew := p.maxSkew
	if skew <= 0 {
		skew = DefaultMaxClockSkew
	}
	if ts, ok := firstTime(payload, p.fields.RecordedAt, receivedAt, skew); ok {
		pos.RecordedAt = ts
	}

	return pos, nil
}

// union merges tables keeping the first occurrence of every key.
func union(tables ...fieldTable) fieldTable {
	var out fieldTable
	for _, t := range tables {
		out.DeviceID = appendUnique(out.DeviceID, t.DeviceID)
		out.Latitude = appendUnique(out.Latitude, t.Latitude)
		out.Longitude = appendUnique(out.Longitude, t.Longitude)
		out.Speed = appendUnique(out.Speed, t.Speed)
		out.Heading = appendUnique(out.Heading, t.Heading)
		out.Altitude = appendUnique(out.Altitude, t.Altitude)
		out.Odometer = appendUnique(out.Odometer, t.Odometer)
		out.Ignition = appendUnique(out.Ignition, t.Ignition)
		out.FuelLevel = appendUnique(out.FuelLevel, t.FuelLevel)
		out.BatteryLevel = appendUnique(out.BatteryLevel, t.BatteryLevel)
		out.RecordedAt = appendUnique(out.RecordedAt, t.RecordedAt)
	}
	return out
}

func appendUnique(dst, src []string) []string {
	for _, s := range src {
		seen := false
		for _, d := range dst {
			if d == s {
				seen = true
				break
			}
		}
		if !seen {
			dst = append(dst, s)
		}
	}
	return dst
}

func compact(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return append(json.RawMessage(nil), raw...)
	}
	return buf.Bytes()
}
