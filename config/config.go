// Package config loads the daemon configuration from YAML over built-in
// defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("config: invalid value")

// DefaultVersion is reported by the plugin's Version entry point.
const DefaultVersion = "ofono-ril 0.1.0"

type Ofono struct {
	Modem       string        `yaml:"modem"`
	CallTimeout time.Duration `yaml:"call_timeout"`
	ScanTimeout time.Duration `yaml:"scan_timeout"`
	RetryMin    time.Duration `yaml:"retry_min"`
	RetryMax    time.Duration `yaml:"retry_max"`
}

type SMS struct {
	SMSC    string `yaml:"smsc"`
	Journal bool   `yaml:"journal"`
}

type Data struct {
	Interface string `yaml:"interface"`
	Unmanage  bool   `yaml:"unmanage"`
}

type Audio struct {
	Driver           string   `yaml:"driver"`
	Port             string   `yaml:"port"`
	Baud             int      `yaml:"baud"`
	Helper           []string `yaml:"helper"`
	RealtimePriority int      `yaml:"realtime_priority"`
}

type Pending struct {
	Timeout time.Duration `yaml:"timeout"`
}

type SIM struct {
	PollInterval time.Duration `yaml:"poll_interval"`
}

type API struct {
	Listen         string        `yaml:"listen"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type DB struct {
	Path string `yaml:"path"`
}

type Log struct {
	Level      string `yaml:"level"`
	Timestamps bool   `yaml:"timestamps"`
}

type Config struct {
	Ofono   Ofono   `yaml:"ofono"`
	SMS     SMS     `yaml:"sms"`
	Data    Data    `yaml:"data"`
	Audio   Audio   `yaml:"audio"`
	Pending Pending `yaml:"pending"`
	SIM     SIM     `yaml:"sim"`
	API     API     `yaml:"api"`
	DB      DB      `yaml:"db"`
	Log     Log     `yaml:"log"`
	Version string  `yaml:"version"`
}

func Default() Config {
	return Config{
		Ofono: Ofono{
			Modem:       "/isimodem",
			CallTimeout: 10 * time.Second,
			ScanTimeout: 15 * time.Minute,
			RetryMin:    500 * time.Millisecond,
			RetryMax:    30 * time.Second,
		},
		SMS:  SMS{SMSC: "+79168999100", Journal: true},
		Data: Data{Interface: "gprs0"},
		Audio: Audio{
			Driver: "null",
			Port:   "/dev/ttyUSB2",
			Baud:   115200,
		},
		Pending: Pending{Timeout: 30 * time.Second},
		SIM:     SIM{PollInterval: time.Second},
		API: API{
			Listen:         "127.0.0.1:8642",
			RequestTimeout: 30 * time.Second,
		},
		DB:      DB{Path: "/var/lib/ofono-ril/ril.db"},
		Log:     Log{Level: "info", Timestamps: true},
		Version: DefaultVersion,
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Audio.Driver {
	case "null", "serial":
	default:
		return fmt.Errorf("%w: audio.driver %q", ErrInvalid, c.Audio.Driver)
	}
	if !strings.HasPrefix(c.Ofono.Modem, "/") {
		return fmt.Errorf("%w: ofono.modem %q is not an object path", ErrInvalid, c.Ofono.Modem)
	}
	if c.Ofono.RetryMin <= 0 || c.Ofono.RetryMax < c.Ofono.RetryMin {
		return fmt.Errorf("%w: ofono.retry_min/retry_max", ErrInvalid)
	}
	if c.Pending.Timeout < 0 {
		return fmt.Errorf("%w: pending.timeout", ErrInvalid)
	}
	if c.SIM.PollInterval <= 0 {
		return fmt.Errorf("%w: sim.poll_interval", ErrInvalid)
	}
	if c.Audio.Driver == "serial" && c.Audio.Baud <= 0 {
		return fmt.Errorf("%w: audio.baud", ErrInvalid)
	}
	return nil
}
