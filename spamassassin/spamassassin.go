// SPDX-License-Identifier: GPL-3.0-or-later
package spamassassin

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/CrawX/go-imap-feedback/domain"

	"github.com/teamwork/spamc"
)

const SpamAssassinTimeout = 20 * time.Second

// SpamAssassin trains a spamd instance via TELL commands. Per-user learning
// maps to the spamd User header, so spamd has to run with per-user Bayes
// storage for it to take effect.
type SpamAssassin struct {
	client *spamc.Client
}

func NewSpamassassin(host string) (*SpamAssassin, error) {
	client := spamc.New(host, &net.Dialer{
		Timeout: SpamAssassinTimeout,
	})
	err := client.Ping(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("could not ping SpamAssassin: %w", err)
	}

	return &SpamAssassin{client: client}, nil
}

func (sa *SpamAssassin) Learn(learnType domain.LearnType, rawMail []byte) error {
	return sa.learn(learnType, "", rawMail)
}

func (sa *SpamAssassin) LearnForUser(learnType domain.LearnType, user string, rawMail []byte) error {
	if len(user) == 0 {
		return fmt.Errorf("user must not be empty for per-user learning")
	}

	return sa.learn(learnType, user, rawMail)
}

func (sa *SpamAssassin) learn(learnType domain.LearnType, user string, rawMail []byte) error {
	header, err := learnHeader(learnType, user)
	if err != nil {
		return err
	}

	_, err = sa.client.Tell(context.TODO(), bytes.NewReader(rawMail), header)
	if err != nil {
		return fmt.Errorf("could not learn SpamAssassin: %w", err)
	}
	return nil
}

func learnHeader(learnType domain.LearnType, user string) (spamc.Header, error) {
	header := spamc.Header{}.Set("Set", "local")
	switch learnType {
	case domain.LearnSpam:
		header = header.Set("Message-class", "spam")
	case domain.LearnHam:
		header = header.Set("Message-class", "ham")
	default:
		return header, fmt.Errorf("unsupported learn type %v", learnType)
	}

	if len(user) > 0 {
		header = header.Set("User", user)
	}

	return header, nil
}
