package blackboard

import (
	"testing"

	"github.com/google/uuid"
)

// TestMessageValidate_Valid tests that valid messages pass validation
func TestMessageValidate_Valid(t *testing.T) {
	msg := &Message{
		ID:       uuid.New().String(),
		Author:   "planner",
		Round:    1,
		Scope:    ScopePublic,
		Kind:     KindPlan,
		Freeform: "Step 1: read the problem.",
		Structured: map[string]interface{}{
			"[planning]": "Step 1: read the problem.",
		},
	}

	if err := msg.Validate(); err != nil {
		t.Errorf("valid message failed validation: %v", err)
	}
}

// TestMessageValidate_PrivateScope tests that private space scopes are valid
func TestMessageValidate_PrivateScope(t *testing.T) {
	msg := &Message{
		ID:       uuid.New().String(),
		Author:   "critic",
		Round:    2,
		Scope:    ReflectionSpaceKey("critic"),
		Kind:     KindNote,
		Freeform: "the answer is B",
	}

	if err := msg.Validate(); err != nil {
		t.Errorf("message with private scope failed validation: %v", err)
	}
}

// TestMessageValidate_InvalidID tests that invalid message ID fails validation
func TestMessageValidate_InvalidID(t *testing.T) {
	msg := &Message{
		ID:     "not-a-uuid",
		Author: "planner",
		Round:  1,
		Scope:  ScopePublic,
		Kind:   KindPlan,
	}

	if err := msg.Validate(); err == nil {
		t.Error("expected validation to fail for invalid ID, but it passed")
	}
}

// TestMessageValidate_EmptyAuthor tests that missing author fails validation
func TestMessageValidate_EmptyAuthor(t *testing.T) {
	msg := &Message{
		ID:    uuid.New().String(),
		Round: 1,
		Scope: ScopePublic,
		Kind:  KindPlan,
	}

	if err := msg.Validate(); err == nil {
		t.Error("expected validation to fail for empty author, but it passed")
	}
}

// TestMessageValidate_InvalidRound tests that round < 1 fails validation
func TestMessageValidate_InvalidRound(t *testing.T) {
	testCases := []struct {
		name  string
		round int
	}{
		{"round 0", 0},
		{"negative round", -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg := &Message{
				ID:     uuid.New().String(),
				Author: "planner",
				Round:  tc.round,
				Scope:  ScopePublic,
				Kind:   KindPlan,
			}

			if err := msg.Validate(); err == nil {
				t.Errorf("expected validation to fail for round %d, but it passed", tc.round)
			}
		})
	}
}

// TestKindValidate tests kind enum validation
func TestKindValidate(t *testing.T) {
	validKinds := []Kind{
		KindPlan, KindCritique, KindCleanup, KindConflict,
		KindExpert, KindDecision, KindNote,
	}

	for _, k := range validKinds {
		t.Run(string(k), func(t *testing.T) {
			if err := k.Validate(); err != nil {
				t.Errorf("valid kind %q failed validation: %v", k, err)
			}
		})
	}

	t.Run("invalid kind", func(t *testing.T) {
		if err := Kind("gossip").Validate(); err == nil {
			t.Error("expected validation to fail for unknown kind, but it passed")
		}
	})
}

// TestValidateScope tests scope name validation
func TestValidateScope(t *testing.T) {
	testCases := []struct {
		name    string
		scope   string
		wantErr bool
	}{
		{"public scope", ScopePublic, false},
		{"reflection space", "reflection_planner", false},
		{"debate space", "debate_critic_planner", false},
		{"empty scope", "", true},
		{"scope with colon", "debate:planner", true},
		{"scope with space", "debate planner", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateScope(tc.scope)
			if tc.wantErr && err == nil {
				t.Errorf("expected scope %q to fail validation, but it passed", tc.scope)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("expected scope %q to pass validation, got: %v", tc.scope, err)
			}
		})
	}
}
