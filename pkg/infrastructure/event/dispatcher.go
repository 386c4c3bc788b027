package event

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"storefront/pkg/common/domain"
)

// NewLogDispatcher writes every event as a structured log entry.
func NewLogDispatcher(logger logrus.FieldLogger) domain.EventDispatcher {
	return &logDispatcher{logger: logger}
}

type logDispatcher struct {
	logger logrus.FieldLogger
}

func (d *logDispatcher) Dispatch(event domain.Event) error {
	entry := d.logger.WithField("event", event.Type())
	if keyed, ok := event.(domain.KeyedEvent); ok {
		entry = entry.WithField("key", keyed.Key())
	}
	entry.WithField("payload", event).Info("domain event")
	return nil
}

// NewMultiDispatcher fans an event out to every dispatcher. All of them are
// called even if one fails; the first failure is returned.
func NewMultiDispatcher(dispatchers ...domain.EventDispatcher) domain.EventDispatcher {
	return multiDispatcher(dispatchers)
}

type multiDispatcher []domain.EventDispatcher

func (m multiDispatcher) Dispatch(event domain.Event) error {
	var first error
	for _, d := range m {
		if err := d.Dispatch(event); err != nil && first == nil {
			first = errors.Wrapf(err, "dispatch %s", event.Type())
		}
	}
	return first
}
