// SPDX-License-Identifier: GPL-3.0-or-later
package events

import (
	"fmt"
	"strings"
)

// Group identifies one listener to the bus. The bus keys delivery state by
// group, so the identity has to survive a round-trip through its serialized
// form: ParseGroup(g.String()) must compare equal to g.
type Group struct {
	name string
}

func NewGroup(name string) (Group, error) {
	if err := validateGroupName(name); err != nil {
		return Group{}, err
	}
	return Group{name: name}, nil
}

// ParseGroup deserializes a group from its canonical dotted string form.
func ParseGroup(serialized string) (Group, error) {
	if err := validateGroupName(serialized); err != nil {
		return Group{}, fmt.Errorf("could not parse group: %w", err)
	}
	return Group{name: serialized}, nil
}

func (g Group) String() string {
	return g.name
}

func validateGroupName(name string) error {
	if len(strings.TrimSpace(name)) == 0 {
		return fmt.Errorf("group name must not be empty")
	}
	if !strings.Contains(name, ".") {
		return fmt.Errorf("group name %q must be a dotted path", name)
	}
	for _, part := range strings.Split(name, ".") {
		if len(part) == 0 {
			return fmt.Errorf("group name %q contains an empty segment", name)
		}
	}
	return nil
}
