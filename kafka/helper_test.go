package kafka

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dora-network/num2int/errors"
)

func TestConsumerGroup(t *testing.T) {
	type args struct {
		hostname  string
		component string
	}

	mac, err := getMacAddr()
	require.NoError(t, err)

	tests := []struct {
		name string
		args args
		want string
	}{
		{
			name: "Should fall back to the MAC address without a hostname",
			args: args{
				hostname:  "",
				component: InvalidationComponent,
			},
			want: fmt.Sprintf("%s-%s", strings.Join(mac, ":"), InvalidationComponent),
		},
		{
			name: "Should prefix the hostname",
			args: args{
				hostname:  "planner-7",
				component: InvalidationComponent,
			},
			want: "planner-7-num2int-invalidation",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(tt *testing.T) {
			tt.Setenv("HOSTNAME", tc.args.hostname)
			got := ConsumerGroup(tc.args.component)
			require.Equal(tt, tc.want, got)
		})
	}
}

func TestTotalLag(t *testing.T) {
	require.Equal(t, int64(0), TotalLag(nil))
	require.Equal(t, int64(7), TotalLag([]ConsumerLag{{Lag: 3}, {Lag: 4}}))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, DefaultInvalidationTopic, cfg.InvalidationTopic)
	require.True(t, cfg.ResetToLatest)
	require.Empty(t, cfg.Brokers)
	require.Equal(t, DefaultClientID, cfg.ClientID)
}

func TestNewClient(t *testing.T) {
	t.Run("Should require brokers", func(t *testing.T) {
		_, err := NewClient(DefaultConfig(), DefaultInvalidationTopic, "")
		require.True(t, errors.Is(err, errors.InvalidInputError))
	})

	t.Run("Should build a client without dialing", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Brokers = []string{"127.0.0.1:1"}
		cfg.Authentication = Auth{Username: "planner", Password: "secret"}
		client, err := NewClient(cfg, "", "planner-7-"+InvalidationComponent, cfg.InvalidationTopic)
		require.NoError(t, err)
		client.Close()
	})
}
