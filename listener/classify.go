// SPDX-License-Identifier: GPL-3.0-or-later
package listener

import (
	"fmt"

	"github.com/CrawX/go-imap-feedback/domain"
)

// Action is the learning decision derived from one event.
type Action int

const (
	ActionNone = Action(iota)
	ActionReportSpam
	ActionReportHam
)

func (a Action) String() string {
	switch a {
	case ActionReportSpam:
		return "report-spam"
	case ActionReportHam:
		return "report-ham"
	}
	return "none"
}

func (a Action) learnType() domain.LearnType {
	if a == ActionReportSpam {
		return domain.LearnSpam
	}
	return domain.LearnHam
}

// classifyMoved derives the learning action for a move. Moving into the Spam
// mailbox reports spam, moving out of it reports ham, with one exception:
// a move out of Spam whose only destination is Trash is a discard, not a
// "this was not spam" correction, and stays silent.
func (li *FeedbackListener) classifyMoved(event domain.MovedEvent) (Action, error) {
	movedToSpam, err := li.isMovedToSpam(event)
	if err != nil {
		return ActionNone, err
	}
	if movedToSpam {
		return ActionReportSpam, nil
	}

	movedOutOfSpam, err := li.isMovedOutOfSpam(event)
	if err != nil {
		return ActionNone, err
	}
	if movedOutOfSpam {
		return ActionReportHam, nil
	}

	return ActionNone, nil
}

func (li *FeedbackListener) isMovedToSpam(event domain.MovedEvent) (bool, error) {
	spamID, present, err := li.mailboxes.SystemMailbox(event.Session, domain.MailboxSpam)
	if err != nil {
		return false, fmt.Errorf("could not resolve Spam mailbox: %w", err)
	}
	if !present {
		return false, nil
	}

	return event.MovedTo(spamID), nil
}

func (li *FeedbackListener) isMovedOutOfSpam(event domain.MovedEvent) (bool, error) {
	spamID, present, err := li.mailboxes.SystemMailbox(event.Session, domain.MailboxSpam)
	if err != nil {
		return false, fmt.Errorf("could not resolve Spam mailbox: %w", err)
	}
	if !present {
		return false, nil
	}

	// A copy that leaves a message in Spam is not a move out of it.
	if !event.MovedFrom(spamID) || event.MovedTo(spamID) {
		return false, nil
	}

	trashOnly, err := li.isTargetTrashOnly(event)
	if err != nil {
		return false, err
	}

	return !trashOnly, nil
}

// isTargetTrashOnly reports whether every target of the move is the Trash
// mailbox. A mixed target set (partly Trash, partly elsewhere) still counts
// as a real move and keeps the ham signal alive.
func (li *FeedbackListener) isTargetTrashOnly(event domain.MovedEvent) (bool, error) {
	trashID, present, err := li.mailboxes.SystemMailbox(event.Session, domain.MailboxTrash)
	if err != nil {
		return false, fmt.Errorf("could not resolve Trash mailbox: %w", err)
	}
	if !present {
		return false, nil
	}

	for _, target := range event.TargetMailboxes {
		if target != trashID {
			return false, nil
		}
	}
	return len(event.TargetMailboxes) > 0, nil
}

// classifyAdded reports ham for mail landing directly in the user's INBOX.
// Ordinary delivery is an implicit "this is not spam" and keeps the ham side
// of the model trained continuously.
func (li *FeedbackListener) classifyAdded(event domain.AddedEvent) (Action, error) {
	inboxID, present, err := li.mailboxes.SystemMailbox(event.Session, domain.MailboxInbox)
	if err != nil {
		return ActionNone, fmt.Errorf("could not resolve INBOX: %w", err)
	}
	if !present || event.Mailbox != inboxID {
		return ActionNone, nil
	}

	return ActionReportHam, nil
}
