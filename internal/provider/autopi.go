package provider

// AutoPi dongles post track events with the position nested under "loc".
var autopiFields = fieldTable{
	DeviceID:     []string{"unit_id", "device_id", "deviceId", "id"},
	Latitude:     []string{"loc.lat", "lat", "latitude"},
	Longitude:    []string{"loc.lon", "lon", "lng", "longitude"},
	Speed:        []string{"sog", "speed", "obd.speed.value"},
	Heading:      []string{"cog", "heading", "course"},
	Altitude:     []string{"alt", "altitude"},
	Odometer:     []string{"odometer", "obd.odometer.value", "mileage"},
	Ignition:     []string{"ignition", "engine_on", "rpi.power.ignition"},
	FuelLevel:    []string{"fuel_level", "obd.fuel_level.value", "fuel"},
	BatteryLevel: []string{"bat.level", "battery_level", "obd.bat.voltage", "voltage"},
	RecordedAt:   []string{"@ts", "ts", "timestamp", "utc"},
}

func AutoPi() Parser {
	return &tableParser{name: "autopi", fields: autopiFields}
}
