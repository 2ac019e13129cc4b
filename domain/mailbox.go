// SPDX-License-Identifier: GPL-3.0-or-later
package domain

import "errors"

// WellKnownMailbox is a mailbox with a reserved semantic role, identified by
// its exact path name. Matching is case-sensitive: a mailbox named "SPAM" is
// an ordinary mailbox, not the Spam role.
type WellKnownMailbox string

const (
	MailboxInbox = WellKnownMailbox("INBOX")
	MailboxSpam  = WellKnownMailbox("Spam")
	MailboxTrash = WellKnownMailbox("Trash")
)

// SystemMailboxProvider resolves a user's well-known mailboxes. A missing
// mailbox is reported via the bool, not an error; users are not required to
// have a Spam or Trash mailbox. Lookups never create the mailbox.
type SystemMailboxProvider interface {
	SystemMailbox(session Session, name WellKnownMailbox) (MailboxID, bool, error)
}

var ErrMessageNotFound = errors.New("message not found")

type MessageFetcher interface {
	FetchMessage(session Session, id MessageID) ([]byte, error)
}
