// SPDX-License-Identifier: GPL-3.0-or-later
package rspamd

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/CrawX/go-imap-feedback/domain"
	"github.com/CrawX/go-imap-feedback/log"

	"github.com/sirupsen/logrus"
)

const RspamdTimeout = 20 * time.Second

// Client talks to the rspamd controller. Learn endpoints train the shared
// Bayes model; LearnForUser trains the per-user model rspamd selects via the
// Deliver-To header.
type Client struct {
	client   *http.Client
	host     string
	password string

	l *logrus.Logger
}

func NewClient(host, password string) (*Client, error) {
	rspamd := &Client{
		client: &http.Client{
			Timeout: RspamdTimeout,
		},
		host:     host,
		password: password,
		l:        log.Logger(log.LOG_RSPAMD),
	}
	err := rspamd.Ping()
	if err != nil {
		return nil, fmt.Errorf("could not ping rspamd: %w", err)
	}

	return rspamd, nil
}

func (rs *Client) Ping() error {
	resp, err := rs.client.Get(rs.host + "/ping")
	if err != nil {
		return fmt.Errorf("could not ping rspamd: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from rspamd, expected 200", resp.StatusCode)
	}
	defer resp.Body.Close()

	return nil
}

func (rs *Client) Learn(learnType domain.LearnType, rawMail []byte) error {
	return rs.learn(learnType, "", rawMail)
}

func (rs *Client) LearnForUser(learnType domain.LearnType, user string, rawMail []byte) error {
	if len(user) == 0 {
		return fmt.Errorf("user must not be empty for per-user learning")
	}

	return rs.learn(learnType, user, rawMail)
}

func (rs *Client) learn(learnType domain.LearnType, user string, rawMail []byte) error {
	suffix := ""
	switch learnType {
	case domain.LearnSpam:
		suffix = "learnspam"
	case domain.LearnHam:
		suffix = "learnham"
	default:
		return fmt.Errorf("unsupported learn type %v", learnType)
	}

	req, err := http.NewRequest(http.MethodPost, rs.host+"/"+suffix, bytes.NewReader(rawMail))
	if err != nil {
		return fmt.Errorf("could not create learn request: %w", err)
	}
	if len(user) > 0 {
		req.Header.Set("Deliver-To", user)
	}

	resp, err := rs.doAuthenticated(req)
	if err != nil {
		return fmt.Errorf("could not perform learn request: %w", err)
	}
	defer resp.Body.Close()

	// 208 means rspamd already counted this message for that class.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAlreadyReported && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status %d from rspamd, expected 200/204/208", resp.StatusCode)
	}

	rs.l.WithFields(logrus.Fields{"type": learnType, "user": user}).Debug("Learned mail")
	return nil
}

func (rs *Client) doAuthenticated(req *http.Request) (*http.Response, error) {
	req.Header.Set("Password", rs.password)
	resp, err := rs.client.Do(req)

	if err != nil {
		return nil, fmt.Errorf("could not send request to rspamd: %w", err)
	}

	return resp, nil
}
