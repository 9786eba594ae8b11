package pubsub

import (
	"context"
	"testing"

	"github.com/angelmondragon/freightlink-backend/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestResourceName(t *testing.T) {
	require.Equal(t, "projects/p1/topics/fl-settlement-events", ResourceName("p1", "topics", "fl-settlement-events"))
	require.Equal(t, "projects/p1/subscriptions/s", ResourceName("p1", "subscriptions", " s "))
	require.Equal(t, "projects/other/topics/t", ResourceName("p1", "topics", "projects/other/topics/t"))
	require.Empty(t, ResourceName("", "topics", "t"))
	require.Empty(t, ResourceName("p1", "topics", "  "))
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{SettlementTopic: "t"}, nil)
	require.ErrorIs(t, err, errProjectIDRequired)

	_, err = NewClient(context.Background(), config.GCPConfig{ProjectID: "p"}, config.PubSubConfig{}, nil)
	require.ErrorIs(t, err, errTopicRequired)
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	require.Nil(t, c.Publisher("t"))
	require.Nil(t, c.SettlementPublisher())
	require.Empty(t, c.SettlementTopic())
	require.Error(t, c.Ping(context.Background()))
	require.NoError(t, c.Close())
}
