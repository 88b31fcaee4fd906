package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/bunca/bakery-service/config"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name     string
		in       config.TelemetryConfig
		expected Config
	}{
		{
			name: "no endpoint disables telemetry",
			in:   config.TelemetryConfig{},
			expected: Config{
				ServiceName:    DefaultServiceName,
				MetricInterval: 30 * time.Second,
			},
		},
		{
			name: "endpoint enables telemetry",
			in: config.TelemetryConfig{
				Endpoint:       "collector:4317",
				ServiceName:    "bakery-worker",
				Environment:    "staging",
				MetricInterval: 10 * time.Second,
			},
			expected: Config{
				Enabled:        true,
				Endpoint:       "collector:4317",
				ServiceName:    "bakery-worker",
				Environment:    "staging",
				MetricInterval: 10 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewConfig(tt.in))
		})
	}
}

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), NewConfig(config.TelemetryConfig{}))
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	// spans from the noop provider are never recorded
	_, span := otel.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.IsRecording())
	span.End()
}
