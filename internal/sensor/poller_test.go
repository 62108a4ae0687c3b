package sensor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/desk-monitor/internal/config"
	"github.com/sweeney/desk-monitor/internal/state"
)

type fakePublisher struct {
	topics   []string
	payloads []string
}

func (f *fakePublisher) Publish(topic, payload string) {
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload)
}

func testPoller(dev Device, topic string) (*Poller, *fakePublisher, *state.Store) {
	st := state.New(1, 1.0)
	pub := &fakePublisher{}
	cfg := config.Sensor{MeasurementInterval: 5, PublishTopic: topic}
	p := NewPoller(func() (Device, error) { return dev, nil }, st, cfg, pub)
	p.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return p, pub, st
}

func TestPollerWritesReading(t *testing.T) {
	dev := NewFakeDevice(Reading{CO2: 640, Temperature: 21.5, Humidity: 41.3})
	p, _, st := testPoller(dev, "")

	p.tick()
	r, ok := st.Sensor()
	if !ok {
		t.Fatal("no reading stored")
	}
	if r.CO2 != 640 || r.Temperature != 21.5 || r.Humidity != 41.3 {
		t.Errorf("stored reading = %+v", r)
	}
	if want := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC); !r.At.Equal(want) {
		t.Errorf("At = %v, want %v", r.At, want)
	}
}

func TestPollerPublishSideChannel(t *testing.T) {
	dev := NewFakeDevice(Reading{CO2: 640, Temperature: 21.46, Humidity: 41.25})
	p, pub, _ := testPoller(dev, "sensors/desk/scd30")

	p.tick()
	if len(pub.topics) != 1 || pub.topics[0] != "sensors/desk/scd30" {
		t.Fatalf("topics = %v, want the configured side-channel", pub.topics)
	}
	want := `{"co2":640,"temperature":21.5,"humidity":41.3}`
	if pub.payloads[0] != want {
		t.Errorf("payload = %s, want %s", pub.payloads[0], want)
	}
}

func TestPollerNoPublishWithoutTopic(t *testing.T) {
	dev := NewFakeDevice(Reading{CO2: 640})
	p, pub, _ := testPoller(dev, "")

	p.tick()
	if len(pub.topics) != 0 {
		t.Errorf("topics = %v, want none", pub.topics)
	}
}

func TestPollerNoDataSkipsQuietly(t *testing.T) {
	dev := NewFakeDevice(Reading{CO2: 640})
	dev.PollError = ErrNoData
	p, pub, st := testPoller(dev, "sensors/desk/scd30")

	p.tick()
	if _, ok := st.Sensor(); ok {
		t.Error("reading stored despite no data")
	}
	if len(pub.topics) != 0 {
		t.Errorf("topics = %v, want none", pub.topics)
	}
}

func TestPollerReadErrorRecovers(t *testing.T) {
	dev := NewFakeDevice(Reading{CO2: 640})
	dev.PollError = errors.New("i2c timeout")
	p, _, st := testPoller(dev, "")

	p.tick()
	if _, ok := st.Sensor(); ok {
		t.Fatal("reading stored despite read error")
	}

	dev.PollError = nil
	p.tick()
	if _, ok := st.Sensor(); !ok {
		t.Error("no reading after the device recovered")
	}
}

func TestPollerRetriesInit(t *testing.T) {
	dev := NewFakeDevice(Reading{CO2: 640})
	calls := 0
	st := state.New(1, 1.0)
	p := NewPoller(func() (Device, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("sensor not responding")
		}
		return dev, nil
	}, st, config.Sensor{MeasurementInterval: 5}, nil)

	p.tick()
	if _, ok := st.Sensor(); ok {
		t.Fatal("reading stored before init succeeded")
	}
	p.tick()
	if _, ok := st.Sensor(); !ok {
		t.Error("no reading after init retry succeeded")
	}
	if calls != 2 {
		t.Errorf("open calls = %d, want 2", calls)
	}
}

func TestPollerClosesDeviceOnShutdown(t *testing.T) {
	dev := NewFakeDevice(Reading{CO2: 640})
	p, _, _ := testPoller(dev, "")
	p.interval = time.Hour

	p.tick() // opens the device
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	if !dev.Closed {
		t.Error("device not closed on shutdown")
	}
}
