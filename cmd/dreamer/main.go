// Command dreamer runs the REM detector/stimulator: it samples the
// phototransistor through the ADC bridge at ~4 Hz, counts eye-movement
// saccades, and plays a light pulse sequence into the sleeper's mask
// once enough of them accumulate.
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

const sketch = "dreamer"

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

// openOutputs requests the dreamer's three output lines, closing any
// already-requested ones on failure.
func openOutputs(cfg *config.Config) (indicator, stimulus, emitter *hw.RealOutput, err error) {
	indicator, err = hw.NewRealOutput(cfg.GPIO.Chip, cfg.GPIO.IndicatorPin)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init indicator pin: %w", err)
	}
	stimulus, err = hw.NewRealOutput(cfg.GPIO.Chip, cfg.GPIO.StimulusPin)
	if err != nil {
		indicator.Close()
		return nil, nil, nil, fmt.Errorf("init stimulus pin: %w", err)
	}
	emitter, err = hw.NewRealOutput(cfg.GPIO.Chip, cfg.GPIO.EmitterPin)
	if err != nil {
		stimulus.Close()
		indicator.Close()
		return nil, nil, nil, fmt.Errorf("init emitter pin: %w", err)
	}
	return indicator, stimulus, emitter, nil
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

	indicator, stimulus, emitter, err := openOutputs(cfg)
	if err != nil {
		return err
	}
	defer indicator.Close()
	defer stimulus.Close()
	defer emitter.Close()

	override, err := hw.NewRealInput(cfg.GPIO.Chip, cfg.GPIO.OverridePin, true)
	if err != nil {
		return fmt.Errorf("init override pin: %w", err)
	}
	defer override.Close()

	publisher := mqtt.NewRealPublisher(cfg.MQTT.Broker, sketch)
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		Sketch:          sketch,
		TickMs:          int64(cfg.Dreamer.TickMillis),
		DetectThreshold: cfg.Dreamer.DetectThreshold,
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

	actor := &loop.DreamerActor{
		Indicator:      indicator,
		Stimulus:       stimulus,
		Emitter:        emitter,
		PulseCount:     cfg.Dreamer.PulseCount,
		PulseOn:        time.Duration(cfg.Dreamer.PulseOnMillis) * time.Millisecond,
		PulseOff:       time.Duration(cfg.Dreamer.PulseOffMillis) * time.Millisecond,
		IndicatorPulse: time.Duration(cfg.Dreamer.IndicatorMillis) * time.Millisecond,
	}
	if err := actor.Init(); err != nil {
		return fmt.Errorf("init outputs: %w", err)
	}

	// Seed the detector with a real reading; the emitter has to be
	// powered before the phototransistor returns anything sensible.
	seed, err := loop.SeedSample(sensor, 5*time.Second, nil)
	if err != nil {
		return fmt.Errorf("seed sensor: %w", err)
	}

	policy := logic.NewDreamer(logic.DreamerConfig{
		DetectThreshold: cfg.Dreamer.DetectThreshold,
		EdgeThreshold:   cfg.Dreamer.EdgeThreshold,
		ResetTicks:      cfg.Dreamer.ResetTicks(),
	}, seed)

	log.Printf("started: tick=%v threshold=%d edge=%d reset=%d ticks broker=%s",
		cfg.Dreamer.TickPeriod(), cfg.Dreamer.DetectThreshold, cfg.Dreamer.EdgeThreshold,
		cfg.Dreamer.ResetTicks(), cfg.MQTT.Broker)

	ticker := time.NewTicker(cfg.Dreamer.TickPeriod())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	l := &loop.Loop{
		Sketch:    sketch,
		Sensor:    sensor,
		Override:  override,
		Policy:    policy,
		Actor:     actor,
		Publisher: publisher,
		Conn:      publisher,
		Tracker:   tracker,
		UpdateTracker: func(tr *status.Tracker, held bool) {
			tr.UpdateDreamer(policy.EventCount(), policy.IdleTicks(), held, policy.CountsSnapshot())
		},
		Heartbeat: cfg.MQTT.HeartbeatPeriod(),
	}
	return l.Run(ticker.C, sigCh)
}
