//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestIdempotencyStore(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client, err := Connect(ctx, Config{Addr: endpoint})
	require.NoError(t, err)
	defer client.Close()

	store := NewIdempotencyStore(client, time.Minute)

	_, found, err := store.Lookup(ctx, "buyer:listing", "k1")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Remember(ctx, "buyer:listing", "k1", "order-1"))
	require.NoError(t, store.Remember(ctx, "buyer:listing", "k1", "order-2"))

	id, found, err := store.Lookup(ctx, "buyer:listing", "k1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "order-1", id, "first remembered order wins")
}
