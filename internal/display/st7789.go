//go:build linux

package display

import (
	"fmt"
	"image"
	"time"

	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// ST7789 command set (the subset this driver needs).
const (
	cmdSWRESET = 0x01
	cmdSLPOUT  = 0x11
	cmdNORON   = 0x13
	cmdINVON   = 0x21
	cmdDISPON  = 0x29
	cmdCASET   = 0x2a
	cmdRASET   = 0x2b
	cmdRAMWR   = 0x2c
	cmdMADCTL  = 0x36
	cmdCOLMOD  = 0x3a
)

// spiChunk keeps single transfers under the kernel's default spidev
// buffer size.
const spiChunk = 4096

// RealDevice drives the ST7789 panel over SPI, with the data/command
// and backlight lines on GPIO.
type RealDevice struct {
	port spi.PortCloser
	conn spi.Conn
	chip *gpiocdev.Chip
	dc   *gpiocdev.Line

	pwm    *softPWM      // set when backlight dimming is enabled
	blLine *gpiocdev.Line // set in binary backlight mode

	buf []byte
}

// NewRealDevice opens the Display HAT Mini's panel. With pwm the
// backlight dims by software PWM; otherwise SetBacklight switches it
// fully on or off.
func NewRealDevice(pwm bool) (*RealDevice, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	port, err := spireg.Open(SPIPort)
	if err != nil {
		return nil, fmt.Errorf("open spi %s: %w", SPIPort, err)
	}
	conn, err := port.Connect(60*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("connect spi: %w", err)
	}
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	dc, err := chip.RequestLine(PinDC, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		port.Close()
		return nil, fmt.Errorf("request dc pin %d: %w", PinDC, err)
	}

	d := &RealDevice{
		port: port,
		conn: conn,
		chip: chip,
		dc:   dc,
		buf:  make([]byte, frameSize),
	}
	if pwm {
		d.pwm, err = newSoftPWM(chip, PinBacklight)
	} else {
		d.blLine, err = chip.RequestLine(PinBacklight, gpiocdev.AsOutput(0))
	}
	if err != nil {
		dc.Close()
		chip.Close()
		port.Close()
		return nil, fmt.Errorf("request backlight pin %d: %w", PinBacklight, err)
	}

	if err := d.initPanel(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *RealDevice) initPanel() error {
	seq := []struct {
		cmd   byte
		data  []byte
		delay time.Duration
	}{
		{cmd: cmdSWRESET, delay: 150 * time.Millisecond},
		{cmd: cmdSLPOUT, delay: 10 * time.Millisecond},
		{cmd: cmdCOLMOD, data: []byte{0x55}}, // 16-bit color
		{cmd: cmdMADCTL, data: []byte{0x70}}, // landscape, 320 wide
		{cmd: cmdINVON},                      // IPS panel wants inversion
		{cmd: cmdNORON, delay: 10 * time.Millisecond},
		{cmd: cmdDISPON, delay: 100 * time.Millisecond},
	}
	for _, s := range seq {
		if err := d.command(s.cmd, s.data...); err != nil {
			return err
		}
		if s.delay > 0 {
			time.Sleep(s.delay)
		}
	}
	return nil
}

func (d *RealDevice) command(cmd byte, data ...byte) error {
	if err := d.dc.SetValue(0); err != nil {
		return fmt.Errorf("dc low: %w", err)
	}
	if err := d.conn.Tx([]byte{cmd}, nil); err != nil {
		return fmt.Errorf("command %#02x: %w", cmd, err)
	}
	if len(data) == 0 {
		return nil
	}
	return d.data(data)
}

func (d *RealDevice) data(p []byte) error {
	if err := d.dc.SetValue(1); err != nil {
		return fmt.Errorf("dc high: %w", err)
	}
	for len(p) > 0 {
		n := len(p)
		if n > spiChunk {
			n = spiChunk
		}
		if err := d.conn.Tx(p[:n], nil); err != nil {
			return fmt.Errorf("write pixels: %w", err)
		}
		p = p[n:]
	}
	return nil
}

// Push converts the frame to RGB565 and writes it to the panel.
func (d *RealDevice) Push(img *image.RGBA) error {
	if b := img.Bounds(); b.Dx() != Width || b.Dy() != Height {
		return fmt.Errorf("frame is %dx%d, want %dx%d", b.Dx(), b.Dy(), Width, Height)
	}
	frameRGB565(img, d.buf)

	if err := d.command(cmdCASET, 0, 0, byte((Width-1)>>8), byte((Width-1)&0xff)); err != nil {
		return err
	}
	if err := d.command(cmdRASET, 0, 0, byte((Height-1)>>8), byte((Height-1)&0xff)); err != nil {
		return err
	}
	if err := d.command(cmdRAMWR); err != nil {
		return err
	}
	return d.data(d.buf)
}

// SetBacklight sets the backlight level. In binary mode any value above
// zero switches it on.
func (d *RealDevice) SetBacklight(v float64) error {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	if d.pwm != nil {
		d.pwm.SetDuty(v)
		return nil
	}
	val := 0
	if v > 0 {
		val = 1
	}
	if err := d.blLine.SetValue(val); err != nil {
		return fmt.Errorf("backlight: %w", err)
	}
	return nil
}

// Close switches the backlight off and releases SPI and GPIO resources.
func (d *RealDevice) Close() error {
	var errs []error
	if d.pwm != nil {
		if err := d.pwm.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close backlight pwm: %w", err))
		}
	}
	if d.blLine != nil {
		d.blLine.SetValue(0)
		if err := d.blLine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close backlight: %w", err))
		}
	}
	if d.dc != nil {
		if err := d.dc.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close dc: %w", err))
		}
	}
	if d.chip != nil {
		if err := d.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if d.port != nil {
		if err := d.port.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close spi: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
