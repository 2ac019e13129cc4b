// SPDX-License-Identifier: GPL-3.0-or-later
package listener

import (
	"testing"

	"github.com/CrawX/go-imap-feedback/domain"

	"pgregory.net/rapid"
)

// TestClassifyMovedInvariants cross-checks the move classification against
// its defining predicates for arbitrary previous/target mailbox sets.
func TestClassifyMovedInvariants(t *testing.T) {
	universe := []domain.MailboxID{inboxID, mailboxID1, mailboxID2, spamID, spamCapitalID, trashID}

	rapid.Check(t, func(t *rapid.T) {
		li, err := NewFeedbackListener(&fakeClassifier{}, systemMailboxes(), &fakeFetcher{})
		if err != nil {
			t.Fatal(err)
		}

		previous := rapid.SliceOfN(rapid.SampledFrom(universe), 1, 4).Draw(t, "previous")
		target := rapid.SliceOfN(rapid.SampledFrom(universe), 1, 4).Draw(t, "target")

		event := moved(previous, target)
		action, err := li.classifyMoved(event)
		if err != nil {
			t.Fatal(err)
		}

		inTarget := event.MovedTo(spamID)
		inPrevious := event.MovedFrom(spamID)
		trashOnly := true
		for _, id := range target {
			if id != trashID {
				trashOnly = false
			}
		}

		switch action {
		case ActionReportSpam:
			if !inTarget {
				t.Fatalf("spam reported without Spam in target set %v", target)
			}
		case ActionReportHam:
			if !inPrevious || inTarget || trashOnly {
				t.Fatalf("ham reported for previous=%v target=%v", previous, target)
			}
		case ActionNone:
			if inTarget {
				t.Fatalf("no action despite Spam in target set %v", target)
			}
			if inPrevious && !trashOnly {
				t.Fatalf("no action despite move out of Spam, previous=%v target=%v", previous, target)
			}
		}
	})
}
