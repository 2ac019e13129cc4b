// SPDX-License-Identifier: GPL-3.0-or-later
package domain

// MailboxID identifies one mailbox within a user's namespace, compared for
// equality only.
type MailboxID string

type MessageID string

type Session struct {
	Username string
}

// Event is the closed set of mailbox mutations this module reacts to. New
// event kinds extend the union here instead of being sniffed at runtime.
type Event interface {
	EventSession() Session
	mailboxEvent()
}

// MovedEvent describes a message leaving one set of mailboxes and landing in
// another. Both sets are non-empty; a move may have multiple sources and
// multiple targets.
type MovedEvent struct {
	Session           Session
	MessageID         MessageID
	PreviousMailboxes []MailboxID
	TargetMailboxes   []MailboxID
}

func (e MovedEvent) EventSession() Session { return e.Session }
func (e MovedEvent) mailboxEvent() {}

func (e MovedEvent) MovedFrom(id MailboxID) bool {
	return containsMailbox(e.PreviousMailboxes, id)
}

func (e MovedEvent) MovedTo(id MailboxID) bool {
	return containsMailbox(e.TargetMailboxes, id)
}

// AddedEvent describes a message appearing in a single mailbox, e.g. on
// delivery or APPEND.
type AddedEvent struct {
	Session  Session
	Mailbox  MailboxID
	Metadata MessageMetadata
}

func (e AddedEvent) EventSession() Session { return e.Session }
func (e AddedEvent) mailboxEvent() {}

type MessageMetadata struct {
	MessageID MessageID
	Size      uint32
	Flags     []string
}

func containsMailbox(ids []MailboxID, id MailboxID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
