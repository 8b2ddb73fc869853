// Package config provides configuration loading and validation for ratestub.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config is the runtime configuration.
//
// Example YAML:
//
//	port: 31337
//	delay: "30-150"
//	format: json
//	dashboard:
//	  refreshInterval: 200ms
//	  recentEntries: 20
//	log:
//	  level: info
//	  file: /var/log/ratestub.log
type Config struct {
	// Host is the interface to bind (default: 0.0.0.0)
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Port is the TCP port to listen on (default: 31337)
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Delay is a fixed delay ("50", "50ms") or an inclusive range
	// ("30-150", "30ms-150ms"). Bare numbers are milliseconds.
	Delay string `json:"delay,omitempty" yaml:"delay,omitempty"`

	// Format selects response body and summary rendering: json, text or yaml
	Format string `json:"format,omitempty" yaml:"format,omitempty"`

	// Pretty indents JSON response bodies and summaries
	Pretty bool `json:"pretty,omitempty" yaml:"pretty,omitempty"`

	// Run gates whether the server starts at all
	Run bool `json:"run,omitempty" yaml:"run,omitempty"`

	// EventBuffer is the capacity of the telemetry event channel
	EventBuffer int `json:"eventBuffer,omitempty" yaml:"eventBuffer,omitempty"`

	// MetricsAddr enables the Prometheus exporter on a separate listener
	MetricsAddr string `json:"metricsAddr,omitempty" yaml:"metricsAddr,omitempty"`

	Dashboard DashboardConfig `json:"dashboard,omitempty" yaml:"dashboard,omitempty"`
	Log       LogConfig       `json:"log,omitempty" yaml:"log,omitempty"`
}

// DashboardConfig controls the live terminal display.
type DashboardConfig struct {
	// Disabled forces periodic text output instead of the interactive dashboard
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty"`

	// RefreshInterval is the redraw period (default: 200ms)
	RefreshInterval string `json:"refreshInterval,omitempty" yaml:"refreshInterval,omitempty"`

	// SummaryInterval is the print period without a terminal (default: 5s)
	SummaryInterval string `json:"summaryInterval,omitempty" yaml:"summaryInterval,omitempty"`

	// RecentEntries is the number of requests kept in the recent log (default: 20)
	RecentEntries int `json:"recentEntries,omitempty" yaml:"recentEntries,omitempty"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	File  string `json:"file,omitempty" yaml:"file,omitempty"`

	// Rotation settings for File, in megabytes, files and days
	MaxSize    int  `json:"maxSize,omitempty" yaml:"maxSize,omitempty"`
	MaxBackups int  `json:"maxBackups,omitempty" yaml:"maxBackups,omitempty"`
	MaxAge     int  `json:"maxAge,omitempty" yaml:"maxAge,omitempty"`
	Compress   bool `json:"compress,omitempty" yaml:"compress,omitempty"`
}

// Defaults
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 31337
	DefaultDelay           = "0"
	DefaultFormat          = "json"
	DefaultEventBuffer     = 1024
	DefaultRecentEntries   = 20
	DefaultRefreshInterval = 200 * time.Millisecond
	DefaultSummaryInterval = 5 * time.Second
	DefaultLogLevel        = "info"
)

// Default returns a configuration with every field at its default.
func Default() *Config {
	return &Config{
		Host:        DefaultHost,
		Port:        DefaultPort,
		Delay:       DefaultDelay,
		Format:      DefaultFormat,
		EventBuffer: DefaultEventBuffer,
		Dashboard: DashboardConfig{
			RefreshInterval: DefaultRefreshInterval.String(),
			SummaryInterval: DefaultSummaryInterval.String(),
			RecentEntries:   DefaultRecentEntries,
		},
		Log: LogConfig{
			Level:      DefaultLogLevel,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *Config) ApplyDefaults() {
	def := Default()
	if c.Host == "" {
		c.Host = def.Host
	}
	if c.Port == 0 {
		c.Port = def.Port
	}
	if c.Delay == "" {
		c.Delay = def.Delay
	}
	if c.Format == "" {
		c.Format = def.Format
	}
	if c.EventBuffer == 0 {
		c.EventBuffer = def.EventBuffer
	}
	if c.Dashboard.RefreshInterval == "" {
		c.Dashboard.RefreshInterval = def.Dashboard.RefreshInterval
	}
	if c.Dashboard.SummaryInterval == "" {
		c.Dashboard.SummaryInterval = def.Dashboard.SummaryInterval
	}
	if c.Dashboard.RecentEntries == 0 {
		c.Dashboard.RecentEntries = def.Dashboard.RecentEntries
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = def.Log.MaxSize
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = def.Log.MaxBackups
	}
	if c.Log.MaxAge == 0 {
		c.Log.MaxAge = def.Log.MaxAge
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// RefreshInterval returns the parsed dashboard redraw period.
func (c *Config) RefreshInterval() time.Duration {
	return parseDurationOr(c.Dashboard.RefreshInterval, DefaultRefreshInterval)
}

// SummaryInterval returns the parsed print period used without a terminal.
func (c *Config) SummaryInterval() time.Duration {
	return parseDurationOr(c.Dashboard.SummaryInterval, DefaultSummaryInterval)
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// String renders the effective configuration on one line.
func (c *Config) String() string {
	return fmt.Sprintf("addr=%s delay=%s format=%s buffer=%d", c.Addr(), c.Delay, c.Format, c.EventBuffer)
}
