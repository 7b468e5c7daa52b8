// Package config loads the configuration of a gateway from a YAML file,
// SATP_* environment variables and built-in defaults.
//
// The loaded Config is a plain value handed to every component at
// construction; nothing reads configuration from global state.
package config

import (
	"net"
	"sort"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/vadiminshakov/satp/core/dispatcher"
	"github.com/vadiminshakov/satp/core/driver"
	"github.com/vadiminshakov/satp/core/dto"
	"github.com/vadiminshakov/satp/core/errs"
	"github.com/vadiminshakov/satp/core/relay"
	"github.com/vadiminshakov/satp/io/store"
)

const envPrefix = "SATP"

type Relay struct {
	Hostname      string `mapstructure:"hostname"`
	Port          string `mapstructure:"port"`
	TLS           bool   `mapstructure:"tls"`
	TLSCACertPath string `mapstructure:"tlsca_cert_path"`
}

type Driver struct {
	NetworkID     string `mapstructure:"network_id"`
	Hostname      string `mapstructure:"hostname"`
	Port          string `mapstructure:"port"`
	TLS           bool   `mapstructure:"tls"`
	TLSCACertPath string `mapstructure:"tlsca_cert_path"`
}

type TLS struct {
	CertPath string `mapstructure:"cert_path"`
	KeyPath  string `mapstructure:"key_path"`
}

type Dispatch struct {
	TimeoutMsec      int     `mapstructure:"timeout_msec"`
	MaxRetries       int     `mapstructure:"max_retries"`
	RetryBackoffMsec int     `mapstructure:"retry_backoff_msec"`
	RateLimit        float64 `mapstructure:"rate_limit"`
	Burst            int     `mapstructure:"burst"`
}

type StateJournal struct {
	// Dir of the journal, empty disables state history.
	Dir              string `mapstructure:"dir"`
	SegmentThreshold int    `mapstructure:"segment_threshold"`
	MaxSegments      int    `mapstructure:"max_segments"`
}

type Config struct {
	NodeAddr               string            `mapstructure:"node_addr"`
	DBPath                 string            `mapstructure:"satp_db_path"`
	DBOpenMaxRetries       int               `mapstructure:"db_open_max_retries"`
	DBOpenRetryBackoffMsec int               `mapstructure:"db_open_retry_backoff_msec"`
	Relays                 map[string]Relay  `mapstructure:"relays"`
	Networks               map[string]string `mapstructure:"networks"`
	Drivers                map[string]Driver `mapstructure:"drivers"`
	DefaultRelay           string            `mapstructure:"default_relay"`
	Whitelist              []string          `mapstructure:"whitelist"`
	TLS                    TLS               `mapstructure:"tls"`
	Dispatch               Dispatch          `mapstructure:"dispatch"`
	StateJournal           StateJournal      `mapstructure:"state_journal"`
	LockAssertionTTLSec    int               `mapstructure:"lock_assertion_ttl_sec"`
	LogLevel               string            `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("node_addr", "localhost:9085")
	v.SetDefault("satp_db_path", "./satp_db")
	v.SetDefault("db_open_max_retries", store.DefaultOpenMaxRetries)
	v.SetDefault("db_open_retry_backoff_msec", int(store.DefaultOpenRetryBackoff/time.Millisecond))
	v.SetDefault("default_relay", relay.DefaultHost+":"+relay.DefaultPort)
	v.SetDefault("dispatch.timeout_msec", int(dispatcher.DefaultTimeout/time.Millisecond))
	v.SetDefault("dispatch.max_retries", 0)
	v.SetDefault("dispatch.retry_backoff_msec", 100)
	v.SetDefault("dispatch.rate_limit", 0)
	v.SetDefault("dispatch.burst", 1)
	v.SetDefault("state_journal.segment_threshold", 1000)
	v.SetDefault("state_journal.max_segments", 100)
	v.SetDefault("lock_assertion_ttl_sec", 3600)
	v.SetDefault("log_level", "info")
}

// Load reads the configuration file at path (if any), applies SATP_*
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
		log.Debugf("Using config file: %s", v.ConfigFileUsed())
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Validate checks that every reference in the configuration resolves.
func (c *Config) Validate() error {
	if c.NodeAddr == "" {
		return errs.Config("node_addr is empty")
	}
	if c.DBPath == "" {
		return errs.Config("satp_db_path is empty")
	}
	if _, _, err := net.SplitHostPort(c.DefaultRelay); err != nil {
		return errs.Config("default_relay %q is not host:port: %v", c.DefaultRelay, err)
	}
	for name, r := range c.Relays {
		if r.Hostname == "" || r.Port == "" {
			return errs.Config("relay %s needs hostname and port", name)
		}
		if r.TLS && r.TLSCACertPath == "" {
			return errs.Config("relay %s uses TLS without tlsca_cert_path", name)
		}
	}
	for network, name := range c.Networks {
		if _, ok := c.RelayDirectory().ByName(name); !ok {
			return errs.Config("network %s refers to unknown relay %s", network, name)
		}
	}
	for name, d := range c.Drivers {
		if d.NetworkID == "" {
			return errs.Config("driver %s has no network_id", name)
		}
		if d.Hostname == "" || d.Port == "" {
			return errs.Config("driver %s needs hostname and port", name)
		}
	}
	if (c.TLS.CertPath == "") != (c.TLS.KeyPath == "") {
		return errs.Config("tls.cert_path and tls.key_path must be set together")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errs.Config("invalid log_level %q", c.LogLevel)
	}
	return nil
}

// RelayDirectory builds the directory of configured relays.
func (c *Config) RelayDirectory() *relay.Directory {
	relays := make(map[string]dto.RelayEndpoint, len(c.Relays))
	for name, r := range c.Relays {
		relays[name] = dto.RelayEndpoint{
			Hostname:      r.Hostname,
			Port:          r.Port,
			TLS:           r.TLS,
			TLSCACertPath: r.TLSCACertPath,
		}
	}
	return relay.NewDirectory(relays)
}

// Resolver routes by network when a networks table is configured and to the
// default relay otherwise.
func (c *Config) Resolver(dir *relay.Directory) relay.Resolver {
	if len(c.Networks) > 0 {
		return relay.NewByNetwork(dir, c.Networks)
	}
	host, port, _ := net.SplitHostPort(c.DefaultRelay)
	return relay.NewStatic(host, port)
}

// DriverEndpoints lists the configured drivers, sorted by name.
func (c *Config) DriverEndpoints() []driver.Endpoint {
	names := make([]string, 0, len(c.Drivers))
	for name := range c.Drivers {
		names = append(names, name)
	}
	sort.Strings(names)

	endpoints := make([]driver.Endpoint, 0, len(names))
	for _, name := range names {
		d := c.Drivers[name]
		endpoints = append(endpoints, driver.Endpoint{
			Name:      name,
			NetworkID: d.NetworkID,
			RelayEndpoint: dto.RelayEndpoint{
				Hostname:      d.Hostname,
				Port:          d.Port,
				TLS:           d.TLS,
				TLSCACertPath: d.TLSCACertPath,
			},
		})
	}
	return endpoints
}

func (c *Config) DispatchConfig() dispatcher.Config {
	return dispatcher.Config{
		Timeout:      time.Duration(c.Dispatch.TimeoutMsec) * time.Millisecond,
		MaxRetries:   c.Dispatch.MaxRetries,
		RetryBackoff: time.Duration(c.Dispatch.RetryBackoffMsec) * time.Millisecond,
		RateLimit:    c.Dispatch.RateLimit,
		Burst:        c.Dispatch.Burst,
	}
}

func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Path:             c.DBPath,
		OpenMaxRetries:   c.DBOpenMaxRetries,
		OpenRetryBackoff: time.Duration(c.DBOpenRetryBackoffMsec) * time.Millisecond,
	}
}

func (c *Config) JournalOptions() store.JournalOptions {
	return store.JournalOptions{
		Dir:              c.StateJournal.Dir,
		SegmentThreshold: c.StateJournal.SegmentThreshold,
		MaxSegments:      c.StateJournal.MaxSegments,
	}
}

func (c *Config) LockAssertionTTL() time.Duration {
	return time.Duration(c.LockAssertionTTLSec) * time.Second
}
