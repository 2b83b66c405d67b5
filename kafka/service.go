package kafka

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/twmb/franz-go/pkg/kgo"
)

// ProduceJSON encodes each message as JSON and sends them to topic, waiting for every
// record to be acknowledged.
func ProduceJSON(ctx context.Context, client Client, topic string, messages ...any) error {
	records := make([]*kgo.Record, 0, len(messages))
	for _, msg := range messages {
		bs, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal message for %s: %w", topic, err)
		}
		records = append(records, &kgo.Record{
			Topic: topic,
			Value: bs,
		})
	}
	result := client.ProduceSync(ctx, records...)
	return result.FirstErr()
}
