package server

import (
	"net/http"
	"strconv"
	"time"
)

type Option interface {
	apply(*config)
}

type optionFunc func(c *config)

func (f optionFunc) apply(c *config) { f(c) }

// config defines fields used for configuring Server instance
type config struct {
	httpServer    *http.Server
	maxBodyBytes  int64
	afterShutdown []func()
}

// EnvConfig defines fields used for parsing from environment variables
type EnvConfig struct {
	Host           string `env:"HOST" envDefault:"0.0.0.0"`
	Port           uint16 `env:"PORT" envDefault:"8080"`
	MaxBodyBytes   int64  `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"true"`
}

// Addr returns the listen address built from Host and Port
func (c EnvConfig) Addr() string {
	return c.Host + ":" + strconv.FormatUint(uint64(c.Port), 10)
}

// WithEnvConfig enables processing exported EnvConfig struct to acts as a source of config parameters for http.Server
func WithEnvConfig(cfg EnvConfig) Option {
	return optionFunc(func(c *config) {
		c.httpServer.Addr = cfg.Addr()
		c.maxBodyBytes = cfg.MaxBodyBytes
	})
}

// ReadTimeout sets read timeout for http.Server
func ReadTimeout(d time.Duration) Option {
	return optionFunc(func(c *config) {
		c.httpServer.ReadTimeout = d
	})
}

// WriteTimeout sets write timeout for http.Server
func WriteTimeout(d time.Duration) Option {
	return optionFunc(func(c *config) {
		c.httpServer.WriteTimeout = d
	})
}

// MaxBodyBytes caps the size of accepted request bodies, zero or less disables the cap
func MaxBodyBytes(n int64) Option {
	return optionFunc(func(c *config) {
		c.maxBodyBytes = n
	})
}

// RegisterAfterShutdown registers a function to call after http.Server shutdown and store closing
// f will not be called in separated goroutine
func RegisterAfterShutdown(f func()) Option {
	return optionFunc(func(c *config) {
		c.afterShutdown = append(c.afterShutdown, f)
	})
}
