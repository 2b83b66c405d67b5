package kafka

import (
	"context"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/dora-network/num2int/errors"
)

// ConsumerLag holds lag information for a specific topic-partition.
type ConsumerLag struct {
	Topic           string
	Partition       int32
	CommittedOffset int64
	LogEndOffset    int64
	Lag             int64
}

// CollectConsumerLag retrieves lag for all topic-partitions in the specified consumer
// group. A worker whose invalidation group lags is serving folds from a stale registry.
func CollectConsumerLag(ctx context.Context, client *kgo.Client, group string) ([]ConsumerLag, error) {
	// not closed: closing the admin client would close the shared client
	admin := kadm.NewClient(client)

	offsetsResp, err := admin.FetchOffsets(ctx, group)
	if err != nil {
		return nil, errors.Wrap(errors.UnavailableErr, err, "failed to fetch committed offsets")
	}

	topics := make([]string, 0, len(offsetsResp))
	for tp := range offsetsResp {
		topics = append(topics, tp)
	}
	if len(topics) == 0 {
		return nil, nil
	}

	endOffsetsResp, err := admin.ListEndOffsets(ctx, topics...)
	if err != nil {
		return nil, errors.Wrap(errors.UnavailableErr, err, "failed to fetch log end offsets")
	}

	var lags []ConsumerLag
	for tp, partitionOffset := range offsetsResp {
		for partition, committed := range partitionOffset {
			endOffset, exists := endOffsetsResp[tp][partition]
			if !exists {
				continue
			}

			lag := endOffset.Offset - committed.Offset.At
			if lag < 0 {
				lag = 0
			}

			lags = append(
				lags, ConsumerLag{
					Topic:           tp,
					Partition:       partition,
					CommittedOffset: committed.Offset.At,
					LogEndOffset:    endOffset.Offset,
					Lag:             lag,
				},
			)
		}
	}

	return lags, nil
}

// TotalLag sums the lag of every partition.
func TotalLag(lags []ConsumerLag) int64 {
	var total int64
	for _, l := range lags {
		total += l.Lag
	}
	return total
}
