// SPDX-License-Identifier: GPL-3.0-or-later
package listener

import (
	"sync"

	"github.com/CrawX/go-imap-feedback/domain"
)

type learnCall struct {
	learnType domain.LearnType
	user      string
	rawMail   []byte
}

type fakeClassifier struct {
	mu    sync.Mutex
	err   error
	calls []learnCall
}

func (f *fakeClassifier) Learn(learnType domain.LearnType, rawMail []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, learnCall{learnType: learnType, rawMail: rawMail})
	return f.err
}

func (f *fakeClassifier) LearnForUser(learnType domain.LearnType, user string, rawMail []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, learnCall{learnType: learnType, user: user, rawMail: rawMail})
	return f.err
}

func (f *fakeClassifier) recordedCalls() []learnCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]learnCall{}, f.calls...)
}

func (f *fakeClassifier) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakeMailboxes struct {
	mailboxes map[domain.WellKnownMailbox]domain.MailboxID
	err       error
}

func (f *fakeMailboxes) SystemMailbox(_ domain.Session, name domain.WellKnownMailbox) (domain.MailboxID, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	id, ok := f.mailboxes[name]
	return id, ok, nil
}

type fakeFetcher struct {
	messages map[domain.MessageID][]byte
	err      error
	fetches  int
}

func (f *fakeFetcher) FetchMessage(_ domain.Session, id domain.MessageID) ([]byte, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	rawMail, ok := f.messages[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	return rawMail, nil
}
