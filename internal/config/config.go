// Package config loads settings from configs/config.yml, a .env file and
// NEXADOMUS_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"nexadomus/internal/connectivity"
	"nexadomus/internal/logger"
	"nexadomus/internal/models"
	"nexadomus/internal/transport"
)

const envPrefix = "NEXADOMUS"

// Probe modes. ProbeAuto inspects the network; the others pin a mode.
const (
	ProbeAuto    = "auto"
	ProbeLocal   = "local"
	ProbeRemote  = "remote"
	ProbeOffline = "offline"
)

type Config struct {
	HTTP       HTTPConfig       `mapstructure:"http"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Controller ControllerConfig `mapstructure:"controller"`
	Relay      RelayConfig      `mapstructure:"relay"`
	Probe      ProbeConfig      `mapstructure:"probe"`
	Router     RouterConfig     `mapstructure:"router"`
	Status     StatusConfig     `mapstructure:"status"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type ControllerConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RelayConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Field   int           `mapstructure:"field"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ProbeConfig struct {
	Mode        string        `mapstructure:"mode"`
	Subnet      string        `mapstructure:"subnet"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type RouterConfig struct {
	QueueSize int `mapstructure:"queue_size"`
}

type StatusConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", "8080")
	v.SetDefault("log.level", logger.InfoLevel)
	v.SetDefault("log.format", logger.ConsoleFormat)
	v.SetDefault("db.path", "nexadomus.db")
	v.SetDefault("controller.url", transport.DefaultControllerURL)
	v.SetDefault("controller.timeout", transport.DefaultDirectTimeout)
	v.SetDefault("relay.url", transport.DefaultRelayURL)
	v.SetDefault("relay.api_key", "")
	v.SetDefault("relay.field", transport.DefaultRelayField)
	v.SetDefault("relay.timeout", transport.DefaultRelayTimeout)
	v.SetDefault("probe.mode", ProbeAuto)
	v.SetDefault("probe.subnet", connectivity.DefaultControllerSubnet)
	v.SetDefault("probe.dial_timeout", connectivity.DefaultDialTimeout)
	v.SetDefault("router.queue_size", 16)
	v.SetDefault("status.poll_interval", 10*time.Second)
}

// Load reads the configuration. path may name a config file explicitly;
// when empty, config.yml is searched in configs/ and the working directory
// and its absence is not an error.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath("configs")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the services cannot start with.
func (c *Config) Validate() error {
	switch c.Probe.Mode {
	case ProbeAuto, ProbeLocal, ProbeRemote, ProbeOffline:
	default:
		return fmt.Errorf("probe.mode %q: want auto, local, remote or offline", c.Probe.Mode)
	}
	if c.Relay.Field < 1 || c.Relay.Field > 8 {
		return fmt.Errorf("relay.field %d: want 1..8", c.Relay.Field)
	}
	if c.Router.QueueSize < 1 {
		return fmt.Errorf("router.queue_size %d: must be positive", c.Router.QueueSize)
	}
	if c.Status.PollInterval <= 0 {
		return fmt.Errorf("status.poll_interval %s: must be positive", c.Status.PollInterval)
	}
	return nil
}

// NewProber builds the connectivity probe the config asks for.
func (c *Config) NewProber() (connectivity.Prober, error) {
	switch c.Probe.Mode {
	case ProbeLocal:
		return connectivity.StaticProbe(models.ModeLocalDirect), nil
	case ProbeRemote:
		return connectivity.StaticProbe(models.ModeRemoteOnly), nil
	case ProbeOffline:
		return connectivity.StaticProbe(models.ModeOffline), nil
	}
	return connectivity.NewNetProbe(c.Probe.Subnet, connectivity.RelayAddrFromURL(c.Relay.URL), c.Probe.DialTimeout)
}

// NewDirect builds the controller transport.
func (c *Config) NewDirect() *transport.Direct {
	return transport.NewDirect(c.Controller.URL, c.Controller.Timeout)
}

// NewRelay builds the relay transport.
func (c *Config) NewRelay() *transport.Relay {
	return transport.NewRelay(transport.RelayConfig{
		URL:     c.Relay.URL,
		APIKey:  c.Relay.APIKey,
		Field:   c.Relay.Field,
		Timeout: c.Relay.Timeout,
	})
}
