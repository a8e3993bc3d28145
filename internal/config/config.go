// Package config loads the sketch tuning values from an optional YAML file.
// The defaults are the empirically tuned constants the circuits shipped
// with; a config file only exists when someone is re-tuning on the bench.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the daemon configuration.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	GPIO    GPIOConfig    `yaml:"gpio"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	HTTP    HTTPConfig    `yaml:"http"`
	Clapper ClapperConfig `yaml:"clapper"`
	Dreamer DreamerConfig `yaml:"dreamer"`
}

// SerialConfig locates the ADC bridge.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// GPIOConfig names the GPIO chip and line offsets (BCM numbering).
type GPIOConfig struct {
	Chip         string `yaml:"chip"`
	SwitchPin    int    `yaml:"switch_pin"`
	IndicatorPin int    `yaml:"indicator_pin"`
	StimulusPin  int    `yaml:"stimulus_pin"`
	EmitterPin   int    `yaml:"emitter_pin"`
	OverridePin  int    `yaml:"override_pin"`
}

// MQTTConfig configures the diagnostics channel.
type MQTTConfig struct {
	Broker           string `yaml:"broker"`
	HeartbeatMinutes int    `yaml:"heartbeat_minutes"` // 0 disables
}

// HeartbeatPeriod returns the heartbeat interval as a Duration.
func (m MQTTConfig) HeartbeatPeriod() time.Duration {
	return time.Duration(m.HeartbeatMinutes) * time.Minute
}

// HTTPConfig configures the status page.
type HTTPConfig struct {
	Addr string `yaml:"addr"` // empty disables
}

// ClapperConfig contains the clapper's tuning constants.
type ClapperConfig struct {
	TickMillis       int `yaml:"tick_ms"`            // sampling period (~250 Hz)
	DetectThreshold  int `yaml:"detect_threshold"`   // minimum rising delta for a clap
	DoubleClapWindow int `yaml:"double_clap_window"` // ticks the second clap may trail the first
}

// TickPeriod returns the sampling period as a Duration.
func (c ClapperConfig) TickPeriod() time.Duration {
	return time.Duration(c.TickMillis) * time.Millisecond
}

// DreamerConfig contains the dreamer's tuning constants.
type DreamerConfig struct {
	TickMillis      int `yaml:"tick_ms"`          // sampling period (~4 Hz)
	DetectThreshold int `yaml:"detect_threshold"` // minimum absolute delta for a saccade
	EdgeThreshold   int `yaml:"edge_threshold"`   // saccades per stimulus
	ResetMinutes    int `yaml:"reset_minutes"`    // inactivity before partial progress is stale
	PulseCount      int `yaml:"pulse_count"`      // ON/OFF cycles per stimulus
	PulseOnMillis   int `yaml:"pulse_on_ms"`
	PulseOffMillis  int `yaml:"pulse_off_ms"`
	IndicatorMillis int `yaml:"indicator_ms"` // per-saccade indicator blink
}

// TickPeriod returns the sampling period as a Duration.
func (d DreamerConfig) TickPeriod() time.Duration {
	return time.Duration(d.TickMillis) * time.Millisecond
}

// ResetTicks derives the stale-progress timeout in ticks from the
// configured minutes and the tick period.
func (d DreamerConfig) ResetTicks() int {
	return d.ResetMinutes * 60 * 1000 / d.TickMillis
}

// Default returns the shipped tuning values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: 115200,
		},
		GPIO: GPIOConfig{
			Chip:         "gpiochip0",
			SwitchPin:    17,
			IndicatorPin: 22,
			StimulusPin:  23,
			EmitterPin:   24,
			OverridePin:  27,
		},
		MQTT: MQTTConfig{
			Broker:           "tcp://192.168.1.200:1883",
			HeartbeatMinutes: 15,
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		Clapper: ClapperConfig{
			TickMillis:       4,
			DetectThreshold:  5,
			DoubleClapWindow: 100,
		},
		Dreamer: DreamerConfig{
			TickMillis:      250,
			DetectThreshold: 30,
			EdgeThreshold:   20,
			ResetMinutes:    5,
			PulseCount:      6,
			PulseOnMillis:   500,
			PulseOffMillis:  500,
			IndicatorMillis: 50,
		},
	}
}

// Load reads configuration from the given YAML file. A missing file is not
// an error: the defaults are returned unchanged. Values present in the file
// override defaults field by field.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Clapper.TickMillis <= 0 {
		return fmt.Errorf("clapper tick_ms must be positive, got %d", c.Clapper.TickMillis)
	}
	if c.Dreamer.TickMillis <= 0 {
		return fmt.Errorf("dreamer tick_ms must be positive, got %d", c.Dreamer.TickMillis)
	}
	if c.Dreamer.EdgeThreshold <= 0 {
		return fmt.Errorf("dreamer edge_threshold must be positive, got %d", c.Dreamer.EdgeThreshold)
	}
	if c.Clapper.DoubleClapWindow <= 0 {
		return fmt.Errorf("clapper double_clap_window must be positive, got %d", c.Clapper.DoubleClapWindow)
	}
	if c.Dreamer.ResetMinutes <= 0 {
		return fmt.Errorf("dreamer reset_minutes must be positive, got %d", c.Dreamer.ResetMinutes)
	}
	return nil
}
