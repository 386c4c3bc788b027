package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"

	"storefront/pkg/common/domain"
)

const eventVersion = "1.0"

type KafkaDispatcher struct {
	client *kgo.Client
	topic  string
}

func NewKafkaDispatcher(brokers []string, topic string) (*KafkaDispatcher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(10*time.Millisecond),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create kafka client")
	}
	return &KafkaDispatcher{client: client, topic: topic}, nil
}

// Dispatch produces asynchronously; delivery failures are only logged.
func (d *KafkaDispatcher) Dispatch(event domain.Event) error {
	record, err := newRecord(event)
	if err != nil {
		return err
	}
	record.Topic = d.topic

	d.client.Produce(context.Background(), record, func(r *kgo.Record, err error) {
		if err != nil {
			log.WithError(err).WithField("event", event.Type()).Error("failed to publish event")
			return
		}
		log.WithFields(log.Fields{
			"event":     event.Type(),
			"partition": r.Partition,
			"offset":    r.Offset,
		}).Debug("event published")
	})
	return nil
}

func (d *KafkaDispatcher) Close(ctx context.Context) {
	if err := d.client.Flush(ctx); err != nil {
		log.WithError(err).Warn("failed to flush pending events")
	}
	d.client.Close()
}

func newRecord(event domain.Event) (*kgo.Record, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal %s", event.Type())
	}

	record := &kgo.Record{
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(event.Type())},
			{Key: "version", Value: []byte(eventVersion)},
		},
		Timestamp: time.Now(),
	}
	if keyed, ok := event.(domain.KeyedEvent); ok {
		record.Key = []byte(keyed.Key())
	}
	return record, nil
}
