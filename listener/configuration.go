// SPDX-License-Identifier: GPL-3.0-or-later
package listener

import "fmt"

type ConfigFunc func(c *configuration) error

// PerUserBayes switches the listener from the classifier's shared model to
// one model per user: every report is submitted under the username of the
// session the event belongs to.
func PerUserBayes() ConfigFunc {
	return func(c *configuration) error {
		c.PerUserBayes = true

		return nil
	}
}

// ReportSizeLimit skips reporting messages larger than limit bytes.
func ReportSizeLimit(limit int) ConfigFunc {
	return func(c *configuration) error {
		if limit <= 0 {
			return fmt.Errorf("ReportSizeLimit must be positive")
		}

		c.SizeLimit = limit
		return nil
	}
}

type configuration struct {
	PerUserBayes bool

	SizeLimit int
}
