package agent

import (
	"fmt"
	"regexp"
)

// Role tags the capability an agent contributes to a deliberation.
// The set is closed: generated experts all carry RoleExpert and differ only
// in their description.
type Role string

const (
	RolePlanner          Role = "planner"
	RoleDecider          Role = "decider"
	RoleCritic           Role = "critic"
	RoleCleaner          Role = "cleaner"
	RoleConflictResolver Role = "conflict_resolver"
	RoleExpert           Role = "expert"
)

// Validate checks that the role is one of the known tags.
func (r Role) Validate() error {
	switch r {
	case RolePlanner, RoleDecider, RoleCritic, RoleCleaner, RoleConflictResolver, RoleExpert:
		return nil
	default:
		return fmt.Errorf("invalid role: %s (must be one of: planner, decider, critic, cleaner, conflict_resolver, expert)", r)
	}
}

// Agent names become part of Redis scope keys (reflection_<name>), so the
// character set is restricted accordingly.
var nameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Descriptor identifies one participant: its unique name, role tag, a
// capability description fed to the scheduling model, and the model that
// backs it. Descriptors are created once per session and never change.
type Descriptor struct {
	Name        string `json:"name"`
	Role        Role   `json:"role"`
	Description string `json:"description,omitempty"`
	Model       string `json:"model"`
}

// Validate checks that all required fields are present and well formed.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("agent name cannot be empty")
	}
	if !nameRe.MatchString(d.Name) {
		return fmt.Errorf("invalid agent name: %s (lowercase letters, digits, '_' and '-' only)", d.Name)
	}
	if err := d.Role.Validate(); err != nil {
		return err
	}
	if d.Model == "" {
		return fmt.Errorf("agent %s: model cannot be empty", d.Name)
	}
	return nil
}

// IsCritic reports whether this descriptor carries the critic role.
func (d *Descriptor) IsCritic() bool {
	return d.Role == RoleCritic
}
