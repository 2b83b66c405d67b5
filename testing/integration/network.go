// Package integration starts the redis and kafka containers the catalog and
// invalidation tests run against.
package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

const NetworkName = "num2int-testing"

type Network struct {
	Pool          *dockertest.Pool
	Network       *docker.Network
	KafkaResource *dockertest.Resource
	RedisResource *dockertest.Resource
}

// NewNetwork creates a docker network for test containers. It skips the test when no
// docker daemon is reachable.
func NewNetwork(t *testing.T) *Network {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	network, err := pool.Client.CreateNetwork(docker.CreateNetworkOptions{
		Name: NetworkName,
	})
	if err != nil {
		t.Fatalf("could not create network: %v", err)
	}

	n := &Network{
		Pool:    pool,
		Network: network,
	}
	t.Cleanup(func() {
		if err := n.Cleanup(); err != nil {
			t.Logf("cleanup: %v", err)
		}
	})
	return n
}

func (n *Network) CreateKafkaResource(t *testing.T, ctx context.Context, topics ...string) error {
	t.Helper()
	resource, err := n.Pool.RunWithOptions(
		&dockertest.RunOptions{
			Name:       "num2int-kafka",
			Repository: "confluentinc/cp-kafka",
			Tag:        "latest",
			NetworkID:  n.Network.ID,
			Hostname:   "kafka",
			Env: []string{
				"KAFKA_NODE_ID=1",
				"KAFKA_LISTENER_SECURITY_PROTOCOL_MAP=LISTENER_CONTROLLER:PLAINTEXT,LISTENER_DOCKER_INTERNAL:PLAINTEXT,LISTENER_DOCKER_EXTERNAL:PLAINTEXT",
				"KAFKA_ADVERTISED_LISTENERS=LISTENER_DOCKER_INTERNAL://kafka:29092,LISTENER_DOCKER_EXTERNAL://localhost:9092",
				"KAFKA_PROCESS_ROLES=broker,controller",
				"KAFKA_CONTROLLER_QUORUM_VOTERS=1@kafka:29093",
				"KAFKA_LISTENERS=LISTENER_CONTROLLER://kafka:29093,LISTENER_DOCKER_INTERNAL://kafka:29092,LISTENER_DOCKER_EXTERNAL://0.0.0.0:9092",
				"KAFKA_CONTROLLER_LISTENER_NAMES=LISTENER_CONTROLLER",
				"KAFKA_INTER_BROKER_LISTENER_NAME=LISTENER_DOCKER_INTERNAL",
				"KAFKA_OFFSETS_TOPIC_REPLICATION_FACTOR=1",
				"KAFKA_GROUP_INITIAL_REBALANCE_DELAY_MS=0",
				"KAFKA_TRANSACTION_STATE_LOG_MIN_ISR=1",
				"KAFKA_TRANSACTION_STATE_LOG_REPLICATION_FACTOR=1",
				"KAFKA_LOG_DIRS=/tmp/kraft-combined-logs",
				"CLUSTER_ID=dAtOC6X6SyiTN3BxRtMHbw",
			},
			PortBindings: map[docker.Port][]docker.PortBinding{
				"9092/tcp": {{HostIP: "localhost", HostPort: "9092/tcp"}},
			},
			ExposedPorts: []string{"9092/tcp"},
		}, func(config *docker.HostConfig) {
			config.AutoRemove = true
			config.RestartPolicy = docker.RestartPolicy{Name: "no"}
		},
	)
	if err != nil {
		return err
	}

	hostAndPort := fmt.Sprintf("127.0.0.1:%s", resource.GetPort("9092/tcp"))
	t.Log("Kafka host and port: ", hostAndPort)

	retryFunc := func() error {
		client, err := kgo.NewClient(
			kgo.SeedBrokers(hostAndPort),
			kgo.AllowAutoTopicCreation(),
		)
		if err != nil {
			return err
		}
		defer client.Close()

		if len(topics) == 0 {
			return client.Ping(ctx)
		}
		_, err = kadm.NewClient(client).CreateTopics(ctx, 1, 1, nil, topics...)
		if err != nil {
			t.Logf("could not create topics: %s", err)
		}
		return err
	}

	n.KafkaResource = resource
	if err = n.Pool.Retry(retryFunc); err != nil {
		return fmt.Errorf("could not start kafka: %w", err)
	}
	return nil
}

func (n *Network) CreateRedisResource(t *testing.T, ctx context.Context) error {
	t.Helper()
	resource, err := n.Pool.RunWithOptions(
		&dockertest.RunOptions{
			Name:         "num2int-redis",
			Repository:   "redis",
			Tag:          "latest",
			NetworkID:    n.Network.ID,
			Hostname:     "redis",
			ExposedPorts: []string{"6379/tcp"},
		}, func(config *docker.HostConfig) {
			config.AutoRemove = true
			config.RestartPolicy = docker.RestartPolicy{Name: "no"}
		},
	)
	if err != nil {
		return err
	}
	n.RedisResource = resource

	if err = n.Pool.Retry(func() error {
		db := redisv9.NewClient(&redisv9.Options{
			Addr: n.RedisAddress(),
		})
		defer db.Close()

		return db.Ping(ctx).Err()
	}); err != nil {
		return fmt.Errorf("could not start redis: %w", err)
	}
	return nil
}

func (n *Network) Cleanup() error {
	for _, resource := range []*dockertest.Resource{n.KafkaResource, n.RedisResource} {
		if resource == nil {
			continue
		}
		if err := n.Pool.Purge(resource); err != nil {
			return err
		}
	}
	n.KafkaResource, n.RedisResource = nil, nil

	if n.Network != nil {
		if err := n.Pool.Client.RemoveNetwork(n.Network.ID); err != nil {
			return err
		}
		n.Network = nil
	}
	return nil
}

func (n *Network) KafkaAddress() string {
	return fmt.Sprintf("127.0.0.1:%s", n.KafkaResource.GetPort("9092/tcp"))
}

func (n *Network) RedisAddress() string {
	return n.RedisResource.GetHostPort("6379/tcp")
}

func (n *Network) GetKafkaClient(opts ...kgo.Opt) (*kgo.Client, error) {
	return kgo.NewClient(append([]kgo.Opt{kgo.SeedBrokers(n.KafkaAddress())}, opts...)...)
}

func (n *Network) GetRedisClient() *redisv9.Client {
	return redisv9.NewClient(&redisv9.Options{
		Addr: n.RedisAddress(),
	})
}
