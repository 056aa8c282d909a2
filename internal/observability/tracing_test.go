package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebyte/carebot/internal/log"
)

func TestSetupDefaults(t *testing.T) {
	ctx := context.Background()

	shutdown, err := Setup(ctx, Config{}, log.NewNop())
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown(ctx))
}

func TestSetupCustomEndpoint(t *testing.T) {
	ctx := context.Background()

	shutdown, err := Setup(ctx, Config{
		Endpoint:    "collector.internal:4318",
		Environment: "staging",
		ServiceName: "carebot-staging",
	}, log.NewNop())
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown(ctx))
}

func TestSetupUnreachableCollector(t *testing.T) {
	ctx := context.Background()

	// Setup must not fail when the collector is absent; spans are dropped,
	// the process runs untraced.
	shutdown, err := Setup(ctx, Config{Endpoint: "localhost:1"}, log.NewNop())
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown(ctx))
}

func TestDefaultEndpointValue(t *testing.T) {
	assert.Equal(t, "localhost:4318", DefaultEndpoint)
}
