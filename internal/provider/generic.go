package provider

var genericFields = union(
	fieldTable{
		DeviceID:     []string{"device_id", "deviceId", "imei", "id"},
		Latitude:     []string{"latitude", "lat"},
		Longitude:    []string{"longitude", "lng", "lon"},
		Speed:        []string{"speed"},
		Heading:      []string{"heading", "course", "bearing"},
		Altitude:     []string{"altitude", "alt"},
		Odometer:     []string{"odometer", "mileage"},
		Ignition:     []string{"ignition", "ignition_on", "engine_on"},
		FuelLevel:    []string{"fuel_level", "fuelLevel", "fuel"},
		BatteryLevel: []string{"battery_level", "batteryLevel", "battery"},
		RecordedAt:   []string{"recorded_at", "timestamp", "time"},
	},
	teltonikaFields,
	ruptelaFields,
	autopiFields,
)

// Generic accepts the union of every known vendor's field names.
func Generic() Parser {
	return &tableParser{name: GenericName, fields: genericFields}
}
