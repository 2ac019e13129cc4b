// SPDX-License-Identifier: GPL-3.0-or-later
package events

import (
	"fmt"
	"sync"

	"github.com/CrawX/go-imap-feedback/domain"
	"github.com/CrawX/go-imap-feedback/log"

	"github.com/sirupsen/logrus"
)

// Listener consumes mailbox events. Handle is invoked at most once per event
// and group; an error tells the bus the event was not processed.
type Listener interface {
	Group() Group
	Handle(event domain.Event) error
}

// ErrGroupRegistered is returned when a second listener registers under an
// already-taken group.
var ErrGroupRegistered = fmt.Errorf("group already registered")

// Bus is a minimal in-process event bus. It fans each dispatched event out to
// every registered listener and keeps listener failures out of the dispatch
// path of the other listeners.
type Bus struct {
	mu        sync.RWMutex
	listeners map[Group]Listener

	l *logrus.Logger
}

func NewBus() *Bus {
	return &Bus{
		listeners: make(map[Group]Listener),
		l:         log.Logger(log.LOG_EVENTS),
	}
}

func (b *Bus) Register(listener Listener) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	group := listener.Group()
	if _, taken := b.listeners[group]; taken {
		return fmt.Errorf("could not register %s: %w", group, ErrGroupRegistered)
	}
	b.listeners[group] = listener

	b.l.WithField("group", group.String()).Debug("Registered listener")
	return nil
}

// Dispatch delivers the event to every registered listener. Listener errors
// are logged here and not returned; this bus has no retry policy.
func (b *Bus) Dispatch(event domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for group, listener := range b.listeners {
		err := listener.Handle(event)
		if err != nil {
			b.l.WithFields(logrus.Fields{"group": group.String(), "error": err}).Error("Listener failed to handle event")
		}
	}
}
