// SPDX-License-Identifier: GPL-3.0-or-later

// Package imapsource backs the listener's mailbox collaborators with a live
// IMAP connection: well-known mailbox lookup via LIST, content fetch via UID
// FETCH, and a polling watcher that turns new mail into Added events.
package imapsource

import (
	"fmt"
	"io/ioutil"
	"sync"

	"github.com/CrawX/go-imap-feedback/domain"
	"github.com/CrawX/go-imap-feedback/log"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/sirupsen/logrus"
)

// Source adapts one IMAP connection to the domain collaborator interfaces.
// Mailbox identities are the mailbox names of the logged-in account; the
// connection is serialized internally because IMAP commands cannot overlap.
type Source struct {
	mu         sync.Mutex
	connection *client.Client

	server, user string

	selectedFolder string

	l *logrus.Logger
}

func NewSource(server, user, password string) (*Source, error) {
	imapClient, err := client.DialTLS(server, nil)
	if err != nil {
		return nil, fmt.Errorf("could not dial to imap: %w", err)
	}

	err = imapClient.Login(user, password)
	if err != nil {
		return nil, fmt.Errorf("could not login to imap: %w", err)
	}

	source := &Source{
		connection: imapClient,
		server:     server,
		user:       user,
		l:          log.Logger(log.LOG_IMAP),
	}

	source.l.WithFields(logrus.Fields{"server": server, "user": user}).Debug("Logged in to server")
	return source, nil
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.connection.Logout()
	if err != nil {
		return fmt.Errorf("could not logout: %w", err)
	}
	return nil
}

// SystemMailbox looks the mailbox up by its exact name. The comparison is
// case-sensitive on the listed name, so a mailbox called "SPAM" never
// resolves as the Spam role even if the server lists it for the pattern.
func (s *Source) SystemMailbox(_ domain.Session, name domain.WellKnownMailbox) (domain.MailboxID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mailboxes := make(chan *imap.MailboxInfo, 10)
	done := make(chan error, 1)
	go func() {
		done <- s.connection.List("", string(name), mailboxes)
	}()

	found := false
	for m := range mailboxes {
		if m.Name == string(name) {
			found = true
		}
	}

	err := <-done
	if err != nil {
		return "", false, fmt.Errorf("could not list mailboxes: %w", err)
	}

	if !found {
		return "", false, nil
	}
	return domain.MailboxID(name), true, nil
}

// FetchMessage retrieves the full raw content of the referenced message with
// a peeking body fetch, so learning never flags mail as seen.
func (s *Source) FetchMessage(_ domain.Session, id domain.MessageID) ([]byte, error) {
	folder, uid, err := parseMessageRef(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.selectFolderLocked(folder)
	if err != nil {
		return nil, err
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem()}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- s.connection.UidFetch(seqSet, items, messages)
	}()

	var rawMail []byte
	for msg := range messages {
		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		rawMail, err = ioutil.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("could not read message body: %w", err)
		}
	}

	err = <-done
	if err != nil {
		return nil, fmt.Errorf("could not fetch message: %w", err)
	}

	if rawMail == nil {
		return nil, fmt.Errorf("message %s in %s: %w", id, folder, domain.ErrMessageNotFound)
	}
	return rawMail, nil
}

func (s *Source) selectFolder(folder string) (*imap.MailboxStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.connection.Select(folder, true)
	if err != nil {
		return nil, fmt.Errorf("could not select folder %s: %w", folder, err)
	}
	s.selectedFolder = folder
	return status, nil
}

func (s *Source) selectFolderLocked(folder string) error {
	if s.selectedFolder == folder {
		return nil
	}

	_, err := s.connection.Select(folder, true)
	if err != nil {
		return fmt.Errorf("could not select folder %s: %w", folder, err)
	}
	s.selectedFolder = folder
	return nil
}

func (s *Source) fetchMetadataSince(folder string, firstUID uint32) ([]domain.MessageMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.selectFolderLocked(folder)
	if err != nil {
		return nil, err
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddRange(firstUID, 0)

	items := []imap.FetchItem{imap.FetchUid, imap.FetchFlags, imap.FetchRFC822Size}

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- s.connection.UidFetch(seqSet, items, messages)
	}()

	metadata := []domain.MessageMetadata{}
	for msg := range messages {
		// A n:* range returns the highest-UID message even when its UID is
		// below n, so the lower bound has to be enforced here.
		if msg.Uid < firstUID {
			continue
		}
		metadata = append(metadata, domain.MessageMetadata{
			MessageID: formatMessageRef(folder, msg.Uid),
			Size:      msg.Size,
			Flags:     msg.Flags,
		})
	}

	err = <-done
	if err != nil {
		return nil, fmt.Errorf("could not fetch new mail metadata: %w", err)
	}
	return metadata, nil
}
