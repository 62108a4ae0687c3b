// Package sensor reads the SCD30 CO2/temperature/humidity sensor and
// feeds measurements into the shared state. The real implementation
// talks I2C; the fake allows testing without hardware.
package sensor

import "errors"

// Reading is one raw measurement triple.
type Reading struct {
	CO2         int     // ppm
	Temperature float64 // °C
	Humidity    float64 // %RH
}

// ErrNoData reports that the sensor has not finished a new measurement
// yet. The poller treats it as a quiet skip, not a fault.
var ErrNoData = errors.New("sensor: no data ready")

// Device reads measurements. Implementations own the bus exclusively.
type Device interface {
	// Poll returns the next reading, or ErrNoData when none is ready.
	Poll() (Reading, error)

	// Close releases the bus.
	Close() error
}

// Publisher enqueues outbound MQTT messages for the reading
// side-channel.
type Publisher interface {
	Publish(topic, payload string)
}
