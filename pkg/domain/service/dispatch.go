package service

import (
	log "github.com/sirupsen/logrus"

	"storefront/pkg/common/domain"
)

func dispatchEvents(dispatcher domain.EventDispatcher, events ...domain.Event) {
	for _, event := range events {
		if err := dispatcher.Dispatch(event); err != nil {
			log.WithError(err).WithField("event", event.Type()).Error("failed to dispatch event")
		}
	}
}
