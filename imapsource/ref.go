// SPDX-License-Identifier: GPL-3.0-or-later
package imapsource

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/CrawX/go-imap-feedback/domain"
)

// Message references produced by this adapter are "folder;uid". The uid is
// only stable for one UIDVALIDITY generation, which is fine for transient
// event handling but makes the reference unsuitable for long-term storage.

func formatMessageRef(folder string, uid uint32) domain.MessageID {
	return domain.MessageID(fmt.Sprintf("%s;%d", folder, uid))
}

func parseMessageRef(id domain.MessageID) (string, uint32, error) {
	separator := strings.LastIndex(string(id), ";")
	if separator <= 0 {
		return "", 0, fmt.Errorf("malformed message reference %q", id)
	}

	folder := string(id)[:separator]
	uid, err := strconv.ParseUint(string(id)[separator+1:], 10, 32)
	if err != nil {
		return "", 0, fmt.Errorf("malformed uid in message reference %q: %w", id, err)
	}

	return folder, uint32(uid), nil
}
