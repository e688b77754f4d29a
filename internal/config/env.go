package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"authd/internal/auth"
	"authd/internal/manager"
	"authd/internal/store"
)

// Defaults applied by WithDefaults.
const (
	DefaultAddr      = ":5000"
	DefaultEnv       = "production"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultCORSOrigins are the browser front-ends allowed to call the API.
var DefaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
	"https://jlabs-web-six.vercel.app",
}

// FromEnv overlays environment variables onto c. Set variables win over
// file values.
func FromEnv(c Config) Config {
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.MongoURI = v
	}
	if v := os.Getenv("MONGO_DB"); v != "" {
		c.MongoDB = v
	}
	if v := os.Getenv("AUTHD_ADDR"); v != "" {
		c.Addr = v
	} else if v := os.Getenv("PORT"); v != "" {
		c.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v := os.Getenv("AUTHD_ENV"); v != "" {
		c.Env = v
	} else if v := os.Getenv("NODE_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("AUTHD_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("AUTHD_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("AUTHD_CORS_ORIGINS"); v != "" {
		c.CORSOrigins = SplitCSV(v)
	}
	if v := os.Getenv("AUTHD_RETRY_BACKOFF_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RetryBackoffMS = n
		}
	}
	return c
}

// WithDefaults fills unset fields. Store tuning fields are left for the
// manager to default.
func (c Config) WithDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Env == "" {
		c.Env = DefaultEnv
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.MongoDB == "" {
		c.MongoDB = manager.DefaultDatabase
	}
	if c.Token == "" {
		c.Token = auth.DefaultToken
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = auth.DefaultCost
	}
	if c.CORSEnabled == nil {
		on := true
		c.CORSEnabled = &on
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = append([]string(nil), DefaultCORSOrigins...)
	}
	return c
}

// Validate reports problems that make the service unable to start. A missing
// connection target is a manager configuration error.
func (c Config) Validate() error {
	if strings.TrimSpace(c.MongoURI) == "" {
		return manager.ErrConfiguration("MONGO_URI is not set")
	}
	switch c.AddressFamily {
	case 0, 4, 6, -1:
	default:
		return manager.ErrConfiguration(fmt.Sprintf("address_family must be 4, 6 or -1, got %d", c.AddressFamily))
	}
	if c.MinPoolSize > 0 && c.MaxPoolSize > 0 && c.MinPoolSize > c.MaxPoolSize {
		return manager.ErrConfiguration("min_pool_size exceeds max_pool_size")
	}
	if c.BcryptCost != 0 && (c.BcryptCost < 4 || c.BcryptCost > 31) {
		return manager.ErrConfiguration(fmt.Sprintf("bcrypt_cost out of range: %d", c.BcryptCost))
	}
	return nil
}

// Manager builds the connection manager configuration.
func (c Config) Manager(d store.Dialer, logger *zerolog.Logger) manager.Config {
	return manager.Config{
		Target:                 c.MongoURI,
		Database:               c.MongoDB,
		ConnectTimeout:         ms(c.ConnectTimeoutMS),
		SocketTimeout:          ms(c.SocketTimeoutMS),
		ServerSelectionTimeout: ms(c.ServerSelectionTimeoutMS),
		MaxPoolSize:            c.MaxPoolSize,
		MinPoolSize:            c.MinPoolSize,
		AddressFamily:          c.AddressFamily,
		DisableBuffering:       c.AllowBuffering != nil && !*c.AllowBuffering,
		RetryBackoff:           ms(c.RetryBackoffMS),
		GateTimeout:            ms(c.GateTimeoutMS),
		Dialer:                 d,
		Logger:                 logger,
	}
}

// SplitCSV splits a comma separated list, dropping empty items.
func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
