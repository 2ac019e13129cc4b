// SPDX-License-Identifier: GPL-3.0-or-later
package domain

type LearnType string

const (
	LearnSpam = LearnType("spam")
	LearnHam  = LearnType("ham")
)

// LearnClassifier feeds training examples to a remote content classifier.
// Learn trains the shared model, LearnForUser trains the per-user model of
// the given user. Implementations may block; callers decide whether to wait.
type LearnClassifier interface {
	Learn(learnType LearnType, rawMail []byte) error
	LearnForUser(learnType LearnType, user string, rawMail []byte) error
}
