package storage

import (
	"net/url"
	"strconv"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config defines fields used for parsing store settings from environment variables
type Config struct {
	Driver     string `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"chat.db"`

	// URL takes precedence over the separate PG_* fields when set
	URL      string `env:"PG_URL"`
	User     string `env:"PG_USER" envDefault:"chat"`
	Password string `env:"PG_PASSWORD" envDefault:"chat"`
	Host     string `env:"PG_HOST" envDefault:"localhost"`
	Port     uint16 `env:"PG_PORT" envDefault:"5432"`
	DBName   string `env:"PG_DBNAME" envDefault:"chat"`
}

// DSN returns the PostgreSQL connection string
func (c Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return "user=" + c.User +
		" password=" + c.Password +
		" host=" + c.Host +
		" port=" + strconv.FormatUint(uint64(c.Port), 10) +
		" dbname=" + c.DBName +
		" sslmode=disable"
}

// SQLiteDSN returns the modernc sqlite data source for SQLitePath
func (c Config) SQLiteDSN() string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_txlock", "immediate")
	return "file:" + c.SQLitePath + "?" + q.Encode()
}

// Option alters the default connection settings used during new Store construction
type Option interface {
	apply(*options)
}

type optionFunc func(o *options)

func (f optionFunc) apply(o *options) { f(o) }

type options struct {
	connectTimeout time.Duration
	maxConns       int32
}

func defaultOptions() options {
	return options{
		connectTimeout: 10 * time.Second,
		maxConns:       4,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}
	return o
}

// ConnectionTimeout sets timeout for connection to be established
func ConnectionTimeout(d time.Duration) Option {
	return optionFunc(func(o *options) {
		o.connectTimeout = d
	})
}

// MaxConns caps the PostgreSQL pool size. SQLite always uses a single connection.
func MaxConns(n int32) Option {
	return optionFunc(func(o *options) {
		o.maxConns = n
	})
}
