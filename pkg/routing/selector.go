package routing

import (
	"fmt"
	"strings"
)

// SelectionReason explains why a model won the selection.
type SelectionReason string

const (
	// ReasonPreference means the user's stored preference satisfied the
	// requirement.
	ReasonPreference SelectionReason = "preference"

	// ReasonDefault means the catalog default satisfied the requirement.
	ReasonDefault SelectionReason = "default"

	// ReasonRanked means the model won the tier ranking among the
	// compatible candidates.
	ReasonRanked SelectionReason = "ranked"
)

// Selection is the outcome of a successful model selection.
type Selection struct {
	// Model is the chosen descriptor.
	Model ModelDescriptor

	// Reason records which step of the algorithm produced the choice.
	Reason SelectionReason

	// SnapshotVersion identifies the catalog snapshot the choice was
	// made against.
	SnapshotVersion uint64
}

// Unmet counts, per requirement dimension, how many models were excluded
// by that dimension. A model failing several dimensions is counted under
// each, so the totals can exceed the catalog size.
type Unmet struct {
	// Disabled counts models excluded for not being enabled.
	Disabled int

	// Vision counts enabled models lacking required vision support.
	Vision int

	// Thinking counts enabled models lacking required thinking support.
	Thinking int

	// Context counts enabled models with too small a context window.
	Context int

	// Cost counts enabled models priced above the input cost ceiling.
	Cost int
}

// Dimensions returns the names of the dimensions that excluded at least
// one model, in a fixed order.
func (u Unmet) Dimensions() []string {
	var dims []string
	if u.Disabled > 0 {
		dims = append(dims, "enabled")
	}
	if u.Vision > 0 {
		dims = append(dims, "vision")
	}
	if u.Thinking > 0 {
		dims = append(dims, "thinking")
	}
	if u.Context > 0 {
		dims = append(dims, "context")
	}
	if u.Cost > 0 {
		dims = append(dims, "cost")
	}
	return dims
}

// NoCompatibleModelError reports that no enabled model satisfied the
// requirement. It carries the requirement and per-dimension exclusion
// counts so callers can say which constraints were unsatisfiable.
type NoCompatibleModelError struct {
	// Requirement is the constraint set that could not be satisfied.
	Requirement Requirement

	// Considered is the number of models in the snapshot.
	Considered int

	// Unmet holds the per-dimension exclusion counts.
	Unmet Unmet
}

// Error implements the error interface.
func (e *NoCompatibleModelError) Error() string {
	if e.Considered == 0 {
		return "no compatible model: catalog is empty"
	}
	var parts []string
	if e.Unmet.Vision > 0 {
		parts = append(parts, fmt.Sprintf("vision required, %d model(s) lack it", e.Unmet.Vision))
	}
	if e.Unmet.Thinking > 0 {
		parts = append(parts, fmt.Sprintf("thinking required, %d model(s) lack it", e.Unmet.Thinking))
	}
	if e.Unmet.Context > 0 {
		parts = append(parts, fmt.Sprintf("context >= %d required, %d model(s) below it", e.Requirement.MinContext, e.Unmet.Context))
	}
	if e.Unmet.Cost > 0 && e.Requirement.MaxInputPricePerMillion != nil {
		parts = append(parts, fmt.Sprintf("input price <= %g required, %d model(s) above it", *e.Requirement.MaxInputPricePerMillion, e.Unmet.Cost))
	}
	if len(parts) == 0 {
		if e.Unmet.Disabled > 0 {
			return fmt.Sprintf("no compatible model: all %d model(s) are disabled", e.Unmet.Disabled)
		}
		return "no compatible model satisfies the requirement"
	}
	return "no compatible model: " + strings.Join(parts, "; ")
}

// ErrorType identifies the error category for programmatic handling.
func (e *NoCompatibleModelError) ErrorType() string { return "no_compatible_model" }

// IsRetryable reports whether retrying could succeed. Selection is
// deterministic against a snapshot, so no.
func (e *NoCompatibleModelError) IsRetryable() bool { return false }

// IsUserVisible marks this error for end-user display.
func (e *NoCompatibleModelError) IsUserVisible() bool { return true }

// UserMessage returns the user-facing failure description.
func (e *NoCompatibleModelError) UserMessage() string { return e.Error() }

// Suggestion returns guidance for resolving the failure.
func (e *NoCompatibleModelError) Suggestion() string {
	dims := e.Unmet.Dimensions()
	if len(dims) == 0 {
		return "Add models to the catalog or enable an existing one"
	}
	return fmt.Sprintf("Relax the requirement or enable a model that satisfies: %s", strings.Join(dims, ", "))
}

// Select picks a model from the snapshot for the given requirement.
//
// The algorithm is deterministic:
//  1. filter to enabled models satisfying every requirement dimension;
//  2. if the user's preferred model is among the candidates, it wins;
//  3. otherwise, if the snapshot default is among the candidates, it wins;
//  4. otherwise the candidates are ranked by intelligence tier
//     descending, then speed tier descending, then load order, and the
//     top candidate wins;
//  5. with no candidates at all, a *NoCompatibleModelError is returned
//     carrying the unmet dimensions.
//
// preferredID may be empty. A preference that is unknown, disabled, or
// incompatible is skipped silently; preference problems never fail a
// selection. The requirement is validated first; an invalid requirement
// returns a *errors.ValidationError.
func Select(snap *Snapshot, req Requirement, preferredID string) (Selection, error) {
	if err := req.Validate(); err != nil {
		return Selection{}, err
	}

	var (
		candidates []ModelDescriptor
		unmet      Unmet
	)
	for _, m := range snap.Models() {
		if !m.Enabled {
			unmet.Disabled++
			continue
		}
		ok := true
		if req.NeedsVision && !m.SupportsVision {
			unmet.Vision++
			ok = false
		}
		if req.NeedsThinking && !m.SupportsThinking {
			unmet.Thinking++
			ok = false
		}
		if m.ContextWindow < req.MinContext {
			unmet.Context++
			ok = false
		}
		if req.MaxInputPricePerMillion != nil && m.InputPricePerMillion > *req.MaxInputPricePerMillion {
			unmet.Cost++
			ok = false
		}
		if ok {
			candidates = append(candidates, m)
		}
	}

	if len(candidates) == 0 {
		return Selection{}, &NoCompatibleModelError{
			Requirement: req,
			Considered:  snap.Len(),
			Unmet:       unmet,
		}
	}

	if preferredID != "" {
		for _, m := range candidates {
			if m.ID == preferredID {
				return Selection{Model: m, Reason: ReasonPreference, SnapshotVersion: snap.Version()}, nil
			}
		}
	}

	if defaultID := snap.DefaultID(); defaultID != "" {
		for _, m := range candidates {
			if m.ID == defaultID {
				return Selection{Model: m, Reason: ReasonDefault, SnapshotVersion: snap.Version()}, nil
			}
		}
	}

	// Candidates are in load order, and only a strictly better tier pair
	// displaces the incumbent, so load order breaks ties.
	best := candidates[0]
	for _, m := range candidates[1:] {
		if ranksAbove(m, best) {
			best = m
		}
	}
	return Selection{Model: best, Reason: ReasonRanked, SnapshotVersion: snap.Version()}, nil
}

// ranksAbove reports whether a should outrank b: intelligence tier
// first, speed tier second.
func ranksAbove(a, b ModelDescriptor) bool {
	ai, bi := a.IntelligenceTier.Rank(), b.IntelligenceTier.Rank()
	if ai != bi {
		return ai > bi
	}
	return a.SpeedTier.Rank() > b.SpeedTier.Rank()
}
