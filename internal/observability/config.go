// Package observability wires structured logging, tracing, and metrics for
// notice generation.
package observability

import (
	"log/slog"
	"strings"
)

const (
	defaultServiceName        = "notice-builder"
	defaultShutdownTimeoutSec = 5
)

// Config controls logging and OpenTelemetry export.
type Config struct {
	// ServiceName is attached to every log record and telemetry resource.
	ServiceName string

	// ServiceVersion is the build version, if known.
	ServiceVersion string

	// OTLPEndpoint is the gRPC collector address. Empty disables export.
	OTLPEndpoint string

	// OTLPInsecure disables TLS for the collector connection.
	OTLPInsecure bool

	// OTLPHeaders are sent with every export request.
	OTLPHeaders map[string]string

	// LogLevel is the minimum level written.
	LogLevel slog.Level

	// LogJSON selects JSON log output instead of text.
	LogJSON bool

	// ShutdownTimeoutSec bounds the final telemetry flush.
	ShutdownTimeoutSec int
}

// DefaultConfig returns a configuration with text logs at info level and no
// telemetry export.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

// ParseLevel maps a level name to a slog level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}

	return level
}

// ParseOTLPHeaders parses "key=value,key=value". Malformed pairs are
// skipped; nil is returned when nothing remains.
func ParseOTLPHeaders(raw string) map[string]string {
	if raw == "" {
		return nil
	}

	result := make(map[string]string)

	for pair := range strings.SplitSeq(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}

		result[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	if len(result) == 0 {
		return nil
	}

	return result
}
