// Command clapper runs the sound-activated flip-flop switch: it samples
// the microphone through the ADC bridge at ~250 Hz and toggles a relay
// when it hears two claps inside the double-clap window.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clapdream/internal/config"
	"clapdream/internal/hw"
	"clapdream/internal/logic"
	"clapdream/internal/loop"
	"clapdream/internal/mqtt"
	"clapdream/internal/status"
	"clapdream/internal/web"
)

const sketch = "clapper"

func main() {
	configPath := flag.String("config", "", "YAML tuning file (empty = built-in defaults)")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", `HTTP status address (overrides config, "off" disables)`)
	serialPort := flag.String("serial", "", "ADC bridge serial port (overrides config)")
	printSample := flag.Bool("print-sample", false, "Print one sensor reading and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	applyOverrides(cfg, *broker, *httpAddr, *serialPort)

	if err := run(cfg, *printSample); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// applyOverrides folds flag values into the loaded config. "off" for the
// HTTP address disables the status page.
func applyOverrides(cfg *config.Config, broker, httpAddr, serialPort string) {
	if broker != "" {
		cfg.MQTT.Broker = broker
	}
	if httpAddr == "off" {
		cfg.HTTP.Addr = ""
	} else if httpAddr != "" {
		cfg.HTTP.Addr = httpAddr
	}
	if serialPort != "" {
		cfg.Serial.Port = serialPort
	}
}

func run(cfg *config.Config, printSample bool) error {
	sensor, err := hw.OpenSerialADC(cfg.Serial.Port, cfg.Serial.BaudRate)
	if err != nil {
		return fmt.Errorf("init adc bridge: %w", err)
	}
	defer sensor.Close()

	if printSample {
		sample, err := loop.SeedSample(sensor, 3*time.Second, nil)
		if err != nil {
			return fmt.Errorf("read sensor: %w", err)
		}
		fmt.Printf("sample: %d\n", sample)
		return nil
	}

	relay, err := hw.NewRealOutput(cfg.GPIO.Chip, cfg.GPIO.SwitchPin)
	if err != nil {
		return fmt.Errorf("init relay pin: %w", err)
	}
	defer relay.Close()

	publisher := mqtt.NewRealPublisher(cfg.MQTT.Broker, sketch)
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		Sketch:          sketch,
		TickMs:          int64(cfg.Clapper.TickMillis),
		DetectThreshold: cfg.Clapper.DetectThreshold,
		HeartbeatMs:     cfg.MQTT.HeartbeatPeriod().Milliseconds(),
		Broker:          cfg.MQTT.Broker,
		HTTPAddr:        cfg.HTTP.Addr,
	})

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	// Seed the detector with a real reading so the first tick sees a
	// zero delta instead of a spurious clap.
	seed, err := loop.SeedSample(sensor, 5*time.Second, nil)
	if err != nil {
		return fmt.Errorf("seed sensor: %w", err)
	}

	policy := logic.NewClapper(logic.ClapperConfig{
		DetectThreshold:  cfg.Clapper.DetectThreshold,
		DoubleClapWindow: cfg.Clapper.DoubleClapWindow,
	}, seed)

	log.Printf("started: tick=%v threshold=%d window=%d broker=%s",
		cfg.Clapper.TickPeriod(), cfg.Clapper.DetectThreshold, cfg.Clapper.DoubleClapWindow, cfg.MQTT.Broker)

	ticker := time.NewTicker(cfg.Clapper.TickPeriod())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	l := &loop.Loop{
		Sketch:    sketch,
		Sensor:    sensor,
		Policy:    policy,
		Actor:     &loop.ClapperActor{Switch: relay},
		Publisher: publisher,
		Conn:      publisher,
		Tracker:   tracker,
		UpdateTracker: func(tr *status.Tracker, _ bool) {
			tr.UpdateClapper(policy.Armed(), policy.SwitchOn(), policy.CountsSnapshot())
		},
		Heartbeat: cfg.MQTT.HeartbeatPeriod(),
	}
	return l.Run(ticker.C, sigCh)
}
