// SPDX-License-Identifier: GPL-3.0-or-later
package imapsource

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/CrawX/go-imap-feedback/domain"
	"github.com/CrawX/go-imap-feedback/events"
	"github.com/CrawX/go-imap-feedback/log"

	"github.com/emersion/go-imap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.InitLogging("error")
	os.Exit(m.Run())
}

type fakeFolderSource struct {
	status   *imap.MailboxStatus
	metadata []domain.MessageMetadata

	selectErr error
	fetchErr  error

	fetchedFrom []uint32
}

func (f *fakeFolderSource) selectFolder(folder string) (*imap.MailboxStatus, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	return f.status, nil
}

func (f *fakeFolderSource) fetchMetadataSince(folder string, firstUID uint32) ([]domain.MessageMetadata, error) {
	f.fetchedFrom = append(f.fetchedFrom, firstUID)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.metadata, nil
}

type collectingListener struct {
	group  events.Group
	events []domain.Event
}

func (c *collectingListener) Group() events.Group { return c.group }

func (c *collectingListener) Handle(e domain.Event) error {
	c.events = append(c.events, e)
	return nil
}

func newWatcherUnderTest(t *testing.T, source *fakeFolderSource) (*Watcher, *collectingListener) {
	bus := events.NewBus()
	group, err := events.NewGroup("com.example.collector.Group")
	require.NoError(t, err)
	collector := &collectingListener{group: group}
	require.NoError(t, bus.Register(collector))

	watcher := NewWatcher(nil, bus, domain.Session{Username: "user"}, "INBOX", time.Minute)
	watcher.source = source
	return watcher, collector
}

func TestPollPrimesWithoutDispatching(t *testing.T) {
	source := &fakeFolderSource{
		status:   &imap.MailboxStatus{UidValidity: 43, UidNext: 100},
		metadata: []domain.MessageMetadata{{MessageID: formatMessageRef("INBOX", 99)}},
	}
	watcher, collector := newWatcherUnderTest(t, source)

	require.NoError(t, watcher.poll())

	assert.Empty(t, collector.events)
	assert.Empty(t, source.fetchedFrom)
}

func TestPollDispatchesNewMail(t *testing.T) {
	source := &fakeFolderSource{
		status: &imap.MailboxStatus{UidValidity: 43, UidNext: 100},
	}
	watcher, collector := newWatcherUnderTest(t, source)
	require.NoError(t, watcher.poll())

	source.status = &imap.MailboxStatus{UidValidity: 43, UidNext: 102}
	source.metadata = []domain.MessageMetadata{
		{MessageID: formatMessageRef("INBOX", 100), Size: 45},
		{MessageID: formatMessageRef("INBOX", 101), Size: 46},
	}
	require.NoError(t, watcher.poll())

	assert.Equal(t, []uint32{100}, source.fetchedFrom)
	require.Len(t, collector.events, 2)
	added, ok := collector.events[0].(domain.AddedEvent)
	require.True(t, ok)
	assert.Equal(t, domain.MailboxID("INBOX"), added.Mailbox)
	assert.Equal(t, "user", added.Session.Username)
	assert.Equal(t, formatMessageRef("INBOX", 100), added.Metadata.MessageID)

	// Nothing new on the next poll.
	require.NoError(t, watcher.poll())
	assert.Len(t, collector.events, 2)
	assert.Equal(t, []uint32{100}, source.fetchedFrom)
}

func TestPollResetsOnUidValidityChange(t *testing.T) {
	source := &fakeFolderSource{
		status: &imap.MailboxStatus{UidValidity: 43, UidNext: 100},
	}
	watcher, collector := newWatcherUnderTest(t, source)
	require.NoError(t, watcher.poll())

	// New generation: the mark is reset, nothing is replayed.
	source.status = &imap.MailboxStatus{UidValidity: 44, UidNext: 5}
	require.NoError(t, watcher.poll())
	assert.Empty(t, collector.events)

	source.status = &imap.MailboxStatus{UidValidity: 44, UidNext: 6}
	source.metadata = []domain.MessageMetadata{{MessageID: formatMessageRef("INBOX", 5)}}
	require.NoError(t, watcher.poll())
	assert.Equal(t, []uint32{5}, source.fetchedFrom)
	assert.Len(t, collector.events, 1)
}

func TestPollSurfacesErrors(t *testing.T) {
	source := &fakeFolderSource{selectErr: fmt.Errorf("connection lost")}
	watcher, _ := newWatcherUnderTest(t, source)

	assert.EqualError(t, watcher.poll(), "connection lost")
}
