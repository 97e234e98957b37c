package observability

import (
	"context"
	"testing"

	"github.com/annel0/voxel-sandbox/internal/config"
	"github.com/stretchr/testify/require"
)

func TestInitTelemetryDisabledIsNoop(t *testing.T) {
	shutdown, err := InitTelemetry(context.Background(), config.TelemetryConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	require.NoError(t, shutdown(context.Background()))
}
