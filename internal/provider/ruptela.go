package provider

var ruptelaFields = fieldTable{
	DeviceID:     []string{"imei", "deviceId", "device_id", "id"},
	Latitude:     []string{"lat", "latitude", "gps.lat"},
	Longitude:    []string{"lng", "lon", "longitude", "gps.lng"},
	Speed:        []string{"speed", "gps.speed"},
	Heading:      []string{"angle", "course", "heading", "gps.angle"},
	Altitude:     []string{"alt", "altitude", "gps.alt"},
	Odometer:     []string{"odometer", "mileage", "totalDistance"},
	Ignition:     []string{"ignition", "engineOn", "io.ignition"},
	FuelLevel:    []string{"fuelLevel", "fuel", "io.fuelLevel"},
	BatteryLevel: []string{"batteryVoltage", "battery", "io.batteryVoltage"},
	RecordedAt:   []string{"timestamp", "gpsTime", "time"},
}

func Ruptela() Parser {
	return &tableParser{name: "ruptela", fields: ruptelaFields}
}
