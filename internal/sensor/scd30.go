//go:build linux

package sensor

import (
	"fmt"
	"math"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
)

// SCD30 I2C command set.
const (
	scd30Addr          = 0x61
	cmdStartContinuous = 0x0010
	cmdStopContinuous  = 0x0104
	cmdSetInterval     = 0x4600
	cmdDataReady       = 0x0202
	cmdReadMeasurement = 0x0300
	cmdTempOffset      = 0x5403
	cmdAltitude        = 0x5102
)

// RealDevice drives an SCD30 in continuous-measurement mode.
type RealDevice struct {
	bus i2c.BusCloser
	dev i2c.Dev
}

// NewRealDevice opens the default I2C bus, configures the sensor, and
// starts continuous measurement.
func NewRealDevice(interval int, tempOffset float64, altitude int) (*RealDevice, error) {
	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}
	d := &RealDevice{bus: bus, dev: i2c.Dev{Bus: bus, Addr: scd30Addr}}
	if err := d.setup(interval, tempOffset, altitude); err != nil {
		bus.Close()
		return nil, err
	}
	return d, nil
}

func (d *RealDevice) setup(interval int, tempOffset float64, altitude int) error {
	if interval < 2 {
		interval = 2
	}
	if err := d.command(cmdSetInterval, uint16(interval)); err != nil {
		return fmt.Errorf("set interval: %w", err)
	}
	if tempOffset > 0 {
		// The sensor takes the offset in ticks of 0.01°C.
		if err := d.command(cmdTempOffset, uint16(math.Round(tempOffset*100))); err != nil {
			return fmt.Errorf("set temperature offset: %w", err)
		}
	}
	if altitude > 0 {
		if err := d.command(cmdAltitude, uint16(altitude)); err != nil {
			return fmt.Errorf("set altitude: %w", err)
		}
	}
	// Argument 0 disables ambient-pressure compensation; altitude
	// compensation applies instead.
	if err := d.command(cmdStartContinuous, 0); err != nil {
		return fmt.Errorf("start continuous measurement: %w", err)
	}
	return nil
}

// Poll checks the data-ready flag and reads one measurement frame.
func (d *RealDevice) Poll() (Reading, error) {
	ready, err := d.read(cmdDataReady, 3)
	if err != nil {
		return Reading{}, fmt.Errorf("data ready: %w", err)
	}
	w, err := wordAt(ready, 0)
	if err != nil {
		return Reading{}, fmt.Errorf("data ready: %w", err)
	}
	if w != 1 {
		return Reading{}, ErrNoData
	}

	buf, err := d.read(cmdReadMeasurement, 18)
	if err != nil {
		return Reading{}, fmt.Errorf("read measurement: %w", err)
	}
	return decodeMeasurement(buf)
}

// Close stops continuous measurement and releases the bus.
func (d *RealDevice) Close() error {
	var errs []error
	if err := d.dev.Tx([]byte{cmdStopContinuous >> 8, cmdStopContinuous & 0xff}, nil); err != nil {
		errs = append(errs, fmt.Errorf("stop measurement: %w", err))
	}
	if err := d.bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close bus: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// command writes a command word with one CRC-protected argument.
func (d *RealDevice) command(cmd, arg uint16) error {
	buf := []byte{byte(cmd >> 8), byte(cmd), byte(arg >> 8), byte(arg)}
	buf = append(buf, crc8(buf[2:4]))
	return d.dev.Tx(buf, nil)
}

// read issues a command word and reads n response bytes after the
// sensor's processing delay.
func (d *RealDevice) read(cmd uint16, n int) ([]byte, error) {
	if err := d.dev.Tx([]byte{byte(cmd >> 8), byte(cmd)}, nil); err != nil {
		return nil, err
	}
	time.Sleep(4 * time.Millisecond)
	buf := make([]byte, n)
	if err := d.dev.Tx(nil, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
