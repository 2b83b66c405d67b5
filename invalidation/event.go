package invalidation

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/dora-network/num2int/errors"
	"github.com/dora-network/num2int/kafka"
)

// Event announces a change to the operator catalog. Listeners invalidate on any record,
// so the payload only serves logging.
type Event struct {
	Reason         string `json:"reason"`
	CatalogVersion int64  `json:"catalog_version"`
}

// DecodeEvent parses a record value. An empty value decodes to the zero Event.
func DecodeEvent(value []byte) (Event, error) {
	var e Event
	if len(value) == 0 {
		return e, nil
	}
	if err := json.Unmarshal(value, &e); err != nil {
		return Event{}, errors.Wrap(errors.InvalidDataErr, err, "decode invalidation event")
	}
	return e, nil
}

// Publish sends events to topic and waits for the broker to acknowledge them.
func Publish(ctx context.Context, client kafka.Client, topic string, events ...Event) error {
	if topic == "" {
		topic = kafka.DefaultInvalidationTopic
	}
	messages := make([]any, len(events))
	for i, e := range events {
		messages[i] = e
	}
	if err := kafka.ProduceJSON(ctx, client, topic, messages...); err != nil {
		return errors.Wrap(errors.UnavailableErr, err, "publish invalidation")
	}
	return nil
}
