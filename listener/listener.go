// SPDX-License-Identifier: GPL-3.0-or-later

// Package listener turns mailbox mutation events into ham/spam training
// reports for a remote classifier. It subscribes to a mailbox event bus,
// decides per event whether the user just flagged something as spam (moved
// into the Spam mailbox), rescued it (moved out again) or received ordinary
// mail (added to INBOX), and submits the message content accordingly.
package listener

import (
	"fmt"
	"sync"

	"github.com/CrawX/go-imap-feedback/domain"
	"github.com/CrawX/go-imap-feedback/events"
	"github.com/CrawX/go-imap-feedback/log"
	"github.com/CrawX/go-imap-feedback/mail"

	"github.com/sirupsen/logrus"
)

// GroupName is the canonical serialized identity of this listener on the
// event bus. Changing it makes the bus treat the listener as a new
// subscriber, so it is part of the module's compatibility surface.
const GroupName = "com.github.crawx.go-imap-feedback.listener.FeedbackListenerGroup"

// Group returns the bus identity of the feedback listener.
func Group() events.Group {
	group, err := events.NewGroup(GroupName)
	if err != nil {
		panic("invalid listener group name: " + err.Error())
	}
	return group
}

// FeedbackListener is the event subscriber. It holds no mutable state beyond
// its collaborators and configuration; every Handle call is independent.
type FeedbackListener struct {
	classifier domain.LearnClassifier
	mailboxes  domain.SystemMailboxProvider
	fetcher    domain.MessageFetcher

	configuration *configuration

	inflight sync.WaitGroup

	l *logrus.Logger
}

func NewFeedbackListener(classifier domain.LearnClassifier, mailboxes domain.SystemMailboxProvider, fetcher domain.MessageFetcher, configFunc ...ConfigFunc) (*FeedbackListener, error) {
	config := &configuration{}
	for _, f := range configFunc {
		err := f(config)
		if err != nil {
			return nil, fmt.Errorf("error applying configuration: %w", err)
		}
	}

	return &FeedbackListener{
		classifier:    classifier,
		mailboxes:     mailboxes,
		fetcher:       fetcher,
		configuration: config,
		l:             log.Logger(log.LOG_LISTENER),
	}, nil
}

func (li *FeedbackListener) Group() events.Group {
	return Group()
}

// Handle classifies the event and, for qualifying events, submits the message
// content to the classifier. The submission runs in the background: Handle
// returns once it is started, and a failed submission is logged, never
// returned. Resolution and fetch failures are returned so the bus can decide
// what to do with the event.
func (li *FeedbackListener) Handle(event domain.Event) error {
	switch e := event.(type) {
	case domain.MovedEvent:
		return li.handleMoved(e)
	case domain.AddedEvent:
		return li.handleAdded(e)
	}

	return nil
}

// Wait blocks until all background submissions started by Handle finished.
// Used on shutdown to drain in-flight reports.
func (li *FeedbackListener) Wait() {
	li.inflight.Wait()
}

func (li *FeedbackListener) handleMoved(event domain.MovedEvent) error {
	action, err := li.classifyMoved(event)
	if err != nil {
		return fmt.Errorf("could not classify move of %s: %w", event.MessageID, err)
	}
	if action == ActionNone {
		return nil
	}

	return li.report(action, event.Session, event.MessageID)
}

func (li *FeedbackListener) handleAdded(event domain.AddedEvent) error {
	action, err := li.classifyAdded(event)
	if err != nil {
		return fmt.Errorf("could not classify added message %s: %w", event.Metadata.MessageID, err)
	}
	if action == ActionNone {
		return nil
	}

	return li.report(action, event.Session, event.Metadata.MessageID)
}

func (li *FeedbackListener) report(action Action, session domain.Session, id domain.MessageID) error {
	rawMail, err := li.fetcher.FetchMessage(session, id)
	if err != nil {
		return fmt.Errorf("could not fetch message %s: %w", id, err)
	}

	if li.configuration.SizeLimit > 0 && len(rawMail) > li.configuration.SizeLimit {
		li.l.WithFields(logrus.Fields{"message": id, "size": len(rawMail), "limit": li.configuration.SizeLimit}).Debug("Skipping report, message exceeds size limit")
		return nil
	}

	subject, err := mail.Subject(rawMail)
	if err != nil {
		// Logging detail only, the report does not depend on it.
		subject = ""
	}

	fields := logrus.Fields{"action": action.String(), "message": id, "user": session.Username, "subject": mail.ShortSubject(subject)}
	li.l.WithFields(fields).Info("Reporting mail to classifier")

	li.inflight.Add(1)
	go func() {
		defer li.inflight.Done()

		var err error
		if li.configuration.PerUserBayes {
			err = li.classifier.LearnForUser(action.learnType(), session.Username, rawMail)
		} else {
			err = li.classifier.Learn(action.learnType(), rawMail)
		}

		if err != nil {
			fields["error"] = err
			li.l.WithFields(fields).Warn("Could not report mail to classifier")
		}
	}()

	return nil
}
