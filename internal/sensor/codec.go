package sensor

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Sensirion frame format: every 16-bit word on the wire is followed by
// a CRC byte. A float32 spans two words.

// crc8 is the Sensirion checksum: polynomial 0x31, init 0xff, no final
// xor. Computed over one 16-bit word at a time.
func crc8(data []byte) byte {
	crc := byte(0xff)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// wordAt returns the CRC-checked big-endian word at off.
func wordAt(buf []byte, off int) (uint16, error) {
	if crc8(buf[off:off+2]) != buf[off+2] {
		return 0, fmt.Errorf("crc mismatch at byte %d", off)
	}
	return binary.BigEndian.Uint16(buf[off : off+2]), nil
}

// floatAt reads the big-endian float32 spread over the two CRC-checked
// words starting at off.
func floatAt(buf []byte, off int) (float64, error) {
	hi, err := wordAt(buf, off)
	if err != nil {
		return 0, err
	}
	lo, err := wordAt(buf, off+3)
	if err != nil {
		return 0, err
	}
	return float64(math.Float32frombits(uint32(hi)<<16 | uint32(lo))), nil
}

// decodeMeasurement parses the 18-byte measurement frame: CO2,
// temperature, and humidity as float32 values.
func decodeMeasurement(buf []byte) (Reading, error) {
	if len(buf) != 18 {
		return Reading{}, fmt.Errorf("measurement frame is %d bytes, want 18", len(buf))
	}
	co2, err := floatAt(buf, 0)
	if err != nil {
		return Reading{}, fmt.Errorf("co2: %w", err)
	}
	temp, err := floatAt(buf, 6)
	if err != nil {
		return Reading{}, fmt.Errorf("temperature: %w", err)
	}
	rh, err := floatAt(buf, 12)
	if err != nil {
		return Reading{}, fmt.Errorf("humidity: %w", err)
	}
	return Reading{CO2: int(math.Round(co2)), Temperature: temp, Humidity: rh}, nil
}
