// SPDX-License-Identifier: GPL-3.0-or-later
package imapsource

import (
	"time"

	"github.com/CrawX/go-imap-feedback/domain"
	"github.com/CrawX/go-imap-feedback/events"
	"github.com/CrawX/go-imap-feedback/log"

	"github.com/emersion/go-imap"
	"github.com/sirupsen/logrus"
)

type folderSource interface {
	selectFolder(folder string) (*imap.MailboxStatus, error)
	fetchMetadataSince(folder string, firstUID uint32) ([]domain.MessageMetadata, error)
}

// Watcher polls one folder by UID high-water mark and dispatches an Added
// event for every message that appeared since the previous poll. Mail that
// predates the first poll is never replayed.
type Watcher struct {
	source folderSource
	bus    *events.Bus

	session  domain.Session
	folder   string
	interval time.Duration

	uidValidity uint32
	nextUID     uint32
	primed      bool

	l *logrus.Logger
}

func NewWatcher(source *Source, bus *events.Bus, session domain.Session, folder string, interval time.Duration) *Watcher {
	return &Watcher{
		source:   source,
		bus:      bus,
		session:  session,
		folder:   folder,
		interval: interval,
		l:        log.Logger(log.LOG_IMAP),
	}
}

// Run polls until stop is closed. Poll failures are logged and the next tick
// retries; a broken connection shows up as repeated failures, not a crash.
func (w *Watcher) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		err := w.poll()
		if err != nil {
			w.l.WithFields(logrus.Fields{"folder": w.folder, "error": err}).Warn("Could not poll folder")
		}

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

func (w *Watcher) poll() error {
	status, err := w.source.selectFolder(w.folder)
	if err != nil {
		return err
	}

	if !w.primed || status.UidValidity != w.uidValidity {
		if w.primed {
			w.l.WithFields(logrus.Fields{"folder": w.folder, "uidvalidity": status.UidValidity}).Warn("UIDVALIDITY changed, resetting high-water mark")
		}
		w.uidValidity = status.UidValidity
		w.nextUID = status.UidNext
		w.primed = true
		return nil
	}

	if status.UidNext <= w.nextUID {
		return nil
	}

	metadata, err := w.source.fetchMetadataSince(w.folder, w.nextUID)
	if err != nil {
		return err
	}

	for _, meta := range metadata {
		w.l.WithFields(logrus.Fields{"folder": w.folder, "message": meta.MessageID, "size": meta.Size}).Debug("Dispatching added event")
		w.bus.Dispatch(domain.AddedEvent{
			Session:  w.session,
			Mailbox:  domain.MailboxID(w.folder),
			Metadata: meta,
		})
	}

	w.nextUID = status.UidNext
	return nil
}
