package sensor

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"time"

	"github.com/sweeney/desk-monitor/internal/config"
	"github.com/sweeney/desk-monitor/internal/state"
)

// Poller periodically reads the sensor and writes each measurement to
// the store. Device construction is lazy and retried every tick, so
// the daemon comes up (and renders, and serves MQTT) even when the
// sensor is absent or still powering on at boot.
type Poller struct {
	open  func() (Device, error)
	store *state.Store
	topic string
	pub   Publisher

	interval time.Duration
	now      func() time.Time

	dev Device
}

// NewPoller wires a poller to its collaborators. open is called on the
// poller's own task, never at construction time.
func NewPoller(open func() (Device, error), store *state.Store, cfg config.Sensor, pub Publisher) *Poller {
	return &Poller{
		open:     open,
		store:    store,
		topic:    cfg.PublishTopic,
		pub:      pub,
		interval: time.Duration(cfg.MeasurementInterval) * time.Second,
		now:      time.Now,
	}
}

// Run polls until ctx is cancelled, then closes the device.
func (p *Poller) Run(ctx context.Context) {
	log.Printf("sensor: poller started (interval %v)", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if p.dev != nil {
				if err := p.dev.Close(); err != nil {
					log.Printf("sensor: close: %v", err)
				}
			}
			log.Printf("sensor: poller stopped")
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Poller) tick() {
	if p.dev == nil {
		dev, err := p.open()
		if err != nil {
			log.Printf("sensor: init: %v (will retry)", err)
			return
		}
		log.Printf("sensor: initialised")
		p.dev = dev
	}

	r, err := p.dev.Poll()
	if errors.Is(err, ErrNoData) {
		return
	}
	if err != nil {
		log.Printf("sensor: read: %v", err)
		return
	}

	p.store.SetSensor(state.SensorReading{
		CO2:         r.CO2,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		At:          p.now(),
	})
	if p.topic != "" && p.pub != nil {
		p.pub.Publish(p.topic, encodeReading(r))
	}
}

type readingPayload struct {
	CO2         int     `json:"co2"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// encodeReading renders the side-channel payload. Temperature and
// humidity are rounded to one decimal to keep retained broker topics
// from churning on measurement noise.
func encodeReading(r Reading) string {
	b, err := json.Marshal(readingPayload{
		CO2:         r.CO2,
		Temperature: math.Round(r.Temperature*10) / 10,
		Humidity:    math.Round(r.Humidity*10) / 10,
	})
	if err != nil {
		return "{}"
	}
	return string(b)
}
