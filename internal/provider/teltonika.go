package provider

// Teltonika FMx trackers, usually relayed through a flespi-style stream where
// keys are flat dotted names, or through older gateways with short names.
var teltonikaFields = fieldTable{
	DeviceID:     []string{"imei", "ident", "device_id", "id"},
	Latitude:     []string{"position.latitude", "latitude", "lat"},
	Longitude:    []string{"position.longitude", "longitude", "lng", "lon"},
	Speed:        []string{"position.speed", "speed"},
	Heading:      []string{"position.direction", "angle", "direction", "heading"},
	Altitude:     []string{"position.altitude", "altitude"},
	Odometer:     []string{"vehicle.mileage", "total.odometer", "odometer"},
	Ignition:     []string{"engine.ignition.status", "ignition", "din1"},
	FuelLevel:    []string{"can.fuel.level", "fuel.level", "fuel_level"},
	BatteryLevel: []string{"battery.level", "battery.voltage", "external.powersource.voltage", "battery"},
	RecordedAt:   []string{"timestamp", "position.timestamp", "server.timestamp", "time"},
}

func Teltonika() Parser {
	return &tableParser{name: "teltonika", fields: teltonikaFields}
}
