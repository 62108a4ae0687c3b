// Command desk-monitor drives a Display HAT Mini desk station: SCD30
// readings and MQTT values on the LCD, alert colors on the RGB LED.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/sweeney/desk-monitor/internal/button"
	"github.com/sweeney/desk-monitor/internal/config"
	"github.com/sweeney/desk-monitor/internal/display"
	"github.com/sweeney/desk-monitor/internal/gateway"
	"github.com/sweeney/desk-monitor/internal/ha"
	"github.com/sweeney/desk-monitor/internal/led"
	"github.com/sweeney/desk-monitor/internal/persist"
	"github.com/sweeney/desk-monitor/internal/render"
	"github.com/sweeney/desk-monitor/internal/screen"
	"github.com/sweeney/desk-monitor/internal/sensor"
	"github.com/sweeney/desk-monitor/internal/state"
	"github.com/sweeney/desk-monitor/internal/web"
)

// joinTimeout bounds how long shutdown waits for each task to stop.
const joinTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML configuration")
	httpAddr := flag.String("http", ":8080", "HTTP status address (empty to disable)")
	stateFile := flag.String("state-file", "", "State file path (default: state.json next to the config)")
	lockFile := flag.String("lock-file", "/tmp/desk-monitor.lock", "Single-instance lock file")
	flag.Parse()

	if err := run(*configPath, *httpAddr, *stateFile, *lockFile); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(configPath, httpAddr, stateFile, lockFile string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	lock, err := acquireLock(lockFile)
	if err != nil {
		return err
	}
	defer lock.Close()

	if stateFile == "" {
		stateFile = defaultStateFile(configPath)
	}

	screens := screen.Build(cfg)
	store := state.New(len(screens), cfg.Display.Brightness)
	if saved, ok := persist.Load(stateFile); ok {
		persist.Apply(saved, store)
		log.Printf("restored state: screen=%d brightness=%.2f", store.Screen(), store.DisplayBrightness())
	}

	// Drivers. Each bus has a single owning task; main only opens and
	// closes them.
	dev, err := display.NewRealDevice(cfg.Display.BacklightPWM)
	if err != nil {
		return fmt.Errorf("init display: %w", err)
	}
	defer dev.Close()
	if err := dev.SetBacklight(store.DisplayBrightness()); err != nil {
		log.Printf("set initial backlight: %v", err)
	}

	ledDev, err := display.NewRealLED()
	if err != nil {
		return fmt.Errorf("init led: %w", err)
	}
	defer ledDev.Close()

	buttons, err := button.NewRealReader()
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}
	defer buttons.Close()

	gw := gateway.New(cfg, store)
	gw.Start()
	defer gw.Stop()

	if cfg.HA.Enabled() {
		ha.NewClient(cfg.HA).Prefetch(cfg.Subscriptions, store)
	}

	if httpAddr != "" {
		srv := web.New(httpAddr, store, cfg, gw.Connected)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	poller := sensor.NewPoller(func() (sensor.Device, error) {
		return sensor.NewRealDevice(cfg.Sensor.MeasurementInterval, cfg.Sensor.TemperatureOffset, cfg.Sensor.Altitude)
	}, store, cfg.Sensor, gw)

	tasks := []*task{
		newTask("sensor", poller.Run),
		newTask("led", led.NewAnimator(store, cfg, ledDev).Run),
		newTask("render", render.New(store, screens, dev, cfg.Display.FPS).Run),
		newTask("buttons", button.NewDispatcher(buttons, store, screens, cfg.Buttons, dev, gw).Run),
		newTask("persist", persist.NewWatcher(stateFile, store).Run),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startTasks(ctx, tasks)

	log.Printf("started: %d screen(s), broker=%s, sensor every %ds",
		len(screens), cfg.MQTT.BrokerURL(), cfg.Sensor.MeasurementInterval)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigCh
	log.Printf("received %v, shutting down", s)

	cancel()
	joinTasks(tasks, joinTimeout)

	// Final save so a clean shutdown always captures the latest state.
	persist.Save(stateFile, persist.Current(store))

	if err := ledDev.SetRGB(0, 0, 0); err != nil {
		log.Printf("led off: %v", err)
	}
	if err := dev.Push(image.NewRGBA(image.Rect(0, 0, display.Width, display.Height))); err != nil {
		log.Printf("display blank: %v", err)
	}
	if err := dev.SetBacklight(0); err != nil {
		log.Printf("backlight off: %v", err)
	}
	log.Printf("shutdown complete")
	return nil
}

// task is one long-running goroutine plus the channel that reports its
// exit.
type task struct {
	name string
	run  func(context.Context)
	done chan struct{}
}

func newTask(name string, run func(context.Context)) *task {
	return &task{name: name, run: run, done: make(chan struct{})}
}

func startTasks(ctx context.Context, tasks []*task) {
	for _, t := range tasks {
		go func(t *task) {
			defer close(t.done)
			t.run(ctx)
		}(t)
	}
}

// joinTasks waits for the tasks in reverse start order. A task that
// misses the timeout is logged and abandoned; the process is exiting
// anyway.
func joinTasks(tasks []*task, timeout time.Duration) {
	for i := len(tasks) - 1; i >= 0; i-- {
		select {
		case <-tasks[i].done:
		case <-time.After(timeout):
			log.Printf("%s: not stopped after %v", tasks[i].name, timeout)
		}
	}
}

func defaultStateFile(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "state.json")
}

// acquireLock opens and exclusively flocks path, then records our PID
// in it. The OS releases the lock when the descriptor closes, so the
// returned file must stay open for the life of the process.
func acquireLock(path string) (*os.File, error) {
	// Open without truncating so the holder's PID stays readable when
	// the lock is already taken.
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		pid, _ := io.ReadAll(f)
		f.Close()
		if holder := strings.TrimSpace(string(pid)); holder != "" {
			return nil, fmt.Errorf("already running (PID %s), lock held on %s", holder, path)
		}
		return nil, fmt.Errorf("already running, lock held on %s", path)
	}
	if err := f.Truncate(0); err == nil {
		fmt.Fprintf(f, "%d", os.Getpid())
	}
	return f, nil
}
