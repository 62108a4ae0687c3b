//go:build linux

package display

import (
	"log"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// pwmPeriod is the software PWM period. 100 Hz looks steady on an LED
// and a backlight while leaving sleep jitter small relative to the
// period.
const pwmPeriod = 10 * time.Millisecond

// softPWM dims one GPIO line by toggling it from its own goroutine.
type softPWM struct {
	line *gpiocdev.Line
	pin  int

	mu   sync.Mutex
	duty float64

	stop chan struct{}
	done chan struct{}

	errLogged bool
}

func newSoftPWM(chip *gpiocdev.Chip, pin int, opts ...gpiocdev.LineReqOption) (*softPWM, error) {
	reqOpts := append([]gpiocdev.LineReqOption{gpiocdev.AsOutput(0)}, opts...)
	line, err := chip.RequestLine(pin, reqOpts...)
	if err != nil {
		return nil, err
	}
	p := &softPWM{
		line: line,
		pin:  pin,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go p.run()
	return p, nil
}

// SetDuty sets the on fraction, clamped to [0,1].
func (p *softPWM) SetDuty(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.mu.Lock()
	p.duty = v
	p.mu.Unlock()
}

func (p *softPWM) run() {
	defer close(p.done)
	for {
		select {
		case <-p.stop:
			return
		default:
		}

		p.mu.Lock()
		duty := p.duty
		p.mu.Unlock()

		on := time.Duration(duty * float64(pwmPeriod))
		if on > 0 {
			p.set(1)
			time.Sleep(on)
		}
		if off := pwmPeriod - on; off > 0 {
			p.set(0)
			time.Sleep(off)
		}
	}
}

func (p *softPWM) set(v int) {
	if err := p.line.SetValue(v); err != nil && !p.errLogged {
		log.Printf("display: pwm pin %d: %v", p.pin, err)
		p.errLogged = true
	}
}

// Close stops the PWM goroutine, drives the line inactive, and releases
// it.
func (p *softPWM) Close() error {
	close(p.stop)
	<-p.done
	p.line.SetValue(0)
	return p.line.Close()
}
