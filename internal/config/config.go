// Package config loads the shipper binary's configuration from
// environment variables.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/crimson-sun/flume/pkg/flume"
)

// Load reads FLUME_* environment variables on top of the library
// defaults.
func Load() flume.Config {
	cfg := flume.DefaultConfig()
	cfg.Server = getenv("FLUME_SERVER", cfg.Server)
	cfg.Port = getenvInt("FLUME_PORT", cfg.Port)
	cfg.HostName = os.Getenv("FLUME_HOSTNAME")
	cfg.Protocol = getenv("FLUME_PROTOCOL", cfg.Protocol)
	cfg.IncludeSource = getenvBool("FLUME_INCLUDE_SOURCE", cfg.IncludeSource)
	cfg.IncludeMDC = getenvBool("FLUME_INCLUDE_MDC", cfg.IncludeMDC)
	cfg.IncludeStackTrace = getenvBool("FLUME_INCLUDE_STACK_TRACE", cfg.IncludeStackTrace)
	cfg.IncludeLevelName = getenvBool("FLUME_INCLUDE_LEVEL_NAME", cfg.IncludeLevelName)
	cfg.QueueSize = getenvInt("FLUME_QUEUE_SIZE", cfg.QueueSize)
	cfg.ConnectTimeout = getenvDuration("FLUME_CONNECT_TIMEOUT", cfg.ConnectTimeout)
	cfg.ReconnectDelay = getenvDuration("FLUME_RECONNECT_DELAY", cfg.ReconnectDelay)
	cfg.SendBufferSize = getenvInt("FLUME_SEND_BUFFER_SIZE", cfg.SendBufferSize)
	cfg.TCPNoDelay = getenvBool("FLUME_TCP_NO_DELAY", cfg.TCPNoDelay)
	cfg.TCPKeepAlive = getenvBool("FLUME_TCP_KEEP_ALIVE", cfg.TCPKeepAlive)
	cfg.AdditionalFields = os.Getenv("FLUME_ADDITIONAL_FIELDS")
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
