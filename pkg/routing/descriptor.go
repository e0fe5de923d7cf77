package routing

import (
	"fmt"
	"time"

	pkgerrors "github.com/switchboard-io/switchboard/pkg/errors"
)

// SpeedTier categorizes relative model latency.
// Tiers are ordered: slow < medium < fast.
type SpeedTier string

const (
	// SpeedSlow marks models with noticeable per-request latency,
	// typically the largest frontier models.
	SpeedSlow SpeedTier = "slow"

	// SpeedMedium marks models with moderate latency suitable for
	// interactive use.
	SpeedMedium SpeedTier = "medium"

	// SpeedFast marks low-latency models suitable for high-volume or
	// latency-sensitive paths.
	SpeedFast SpeedTier = "fast"
)

// Rank returns the tier's position in the speed ordering.
// Higher is faster. Unknown tiers rank below all valid ones.
func (t SpeedTier) Rank() int {
	switch t {
	case SpeedSlow:
		return 0
	case SpeedMedium:
		return 1
	case SpeedFast:
		return 2
	default:
		return -1
	}
}

// Valid reports whether t is a recognized speed tier.
func (t SpeedTier) Valid() bool {
	return t.Rank() >= 0
}

// IntelligenceTier categorizes relative model capability.
// Tiers are ordered: high < very-high < frontier.
type IntelligenceTier string

const (
	// IntelligenceHigh marks capable general-purpose models.
	IntelligenceHigh IntelligenceTier = "high"

	// IntelligenceVeryHigh marks models a step below the frontier,
	// suitable for most complex reasoning tasks.
	IntelligenceVeryHigh IntelligenceTier = "very-high"

	// IntelligenceFrontier marks the most capable models available.
	IntelligenceFrontier IntelligenceTier = "frontier"
)

// Rank returns the tier's position in the capability ordering.
// Higher is more capable. Unknown tiers rank below all valid ones.
func (t IntelligenceTier) Rank() int {
	switch t {
	case IntelligenceHigh:
		return 0
	case IntelligenceVeryHigh:
		return 1
	case IntelligenceFrontier:
		return 2
	default:
		return -1
	}
}

// Valid reports whether t is a recognized intelligence tier.
func (t IntelligenceTier) Valid() bool {
	return t.Rank() >= 0
}

// ModelDescriptor describes one callable model: identity, capability,
// cost, and routing flags. Descriptors are immutable once loaded into a
// snapshot; changes go through a catalog reload.
type ModelDescriptor struct {
	// ID is the stable model identifier (e.g., "claude-sonnet-4-5").
	// Unique within a snapshot.
	ID string

	// DisplayName is the human-readable model name shown in UIs and CLI
	// output. Falls back to ID when empty.
	DisplayName string

	// Provider names the upstream vendor (e.g., "anthropic", "openai").
	// Informational; routing never branches on it.
	Provider string

	// ContextWindow is the maximum context size in tokens.
	ContextWindow int

	// MaxOutput is the maximum tokens the model can generate in one
	// response.
	MaxOutput int

	// InputPricePerMillion is the cost in USD per million input tokens.
	InputPricePerMillion float64

	// OutputPricePerMillion is the cost in USD per million output tokens.
	OutputPricePerMillion float64

	// SupportsThinking indicates whether the model can produce extended
	// reasoning traces.
	SupportsThinking bool

	// SupportsVision indicates whether the model accepts image input.
	SupportsVision bool

	// SpeedTier is the model's latency category.
	SpeedTier SpeedTier

	// IntelligenceTier is the model's capability category.
	IntelligenceTier IntelligenceTier

	// RecommendedFor lists advisory task tags (e.g., "coding",
	// "summarization"). Display-only; selection never consults it.
	RecommendedFor []string

	// Enabled gates the model in and out of routing without removing it
	// from the catalog.
	Enabled bool

	// Default marks the model as the fallback choice when no user
	// preference applies. At most one enabled model holds this flag per
	// snapshot.
	Default bool

	// UpdatedAt records when the catalog entry last changed. Used to
	// pick a winner when multiple enabled models claim the default flag.
	UpdatedAt time.Time
}

// Validate checks the descriptor's fields. It returns a
// *errors.ValidationError describing the first problem found.
func (m ModelDescriptor) Validate() error {
	if m.ID == "" {
		return &pkgerrors.ValidationError{
			Field:      "id",
			Message:    "model id must not be empty",
			Suggestion: "Give every catalog entry a unique id",
		}
	}
	if m.ContextWindow < 0 {
		return &pkgerrors.ValidationError{
			Field:      "context_window",
			Message:    fmt.Sprintf("must not be negative (got %d)", m.ContextWindow),
			Suggestion: "Set context_window to the model's documented token limit",
		}
	}
	if m.MaxOutput < 0 {
		return &pkgerrors.ValidationError{
			Field:      "max_output",
			Message:    fmt.Sprintf("must not be negative (got %d)", m.MaxOutput),
			Suggestion: "Set max_output to the model's documented output limit",
		}
	}
	if m.InputPricePerMillion < 0 {
		return &pkgerrors.ValidationError{
			Field:      "cost_input",
			Message:    fmt.Sprintf("must not be negative (got %g)", m.InputPricePerMillion),
			Suggestion: "Prices are USD per million tokens and must be >= 0",
		}
	}
	if m.OutputPricePerMillion < 0 {
		return &pkgerrors.ValidationError{
			Field:      "cost_output",
			Message:    fmt.Sprintf("must not be negative (got %g)", m.OutputPricePerMillion),
			Suggestion: "Prices are USD per million tokens and must be >= 0",
		}
	}
	if !m.SpeedTier.Valid() {
		return &pkgerrors.ValidationError{
			Field:      "speed_tier",
			Message:    fmt.Sprintf("unknown speed tier %q", string(m.SpeedTier)),
			Suggestion: "Use one of: slow, medium, fast",
		}
	}
	if !m.IntelligenceTier.Valid() {
		return &pkgerrors.ValidationError{
			Field:      "intelligence_tier",
			Message:    fmt.Sprintf("unknown intelligence tier %q", string(m.IntelligenceTier)),
			Suggestion: "Use one of: high, very-high, frontier",
		}
	}
	return nil
}

// Name returns the display name, falling back to the id.
func (m ModelDescriptor) Name() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.ID
}

// Requirement expresses the hard capability constraints of a task.
// Zero value means "any enabled model".
type Requirement struct {
	// NeedsVision requires image input support.
	NeedsVision bool

	// NeedsThinking requires extended reasoning support.
	NeedsThinking bool

	// MinContext requires a context window of at least this many tokens.
	// Zero means no constraint.
	MinContext int

	// MaxInputPricePerMillion caps the input price in USD per million
	// tokens. Nil means no cost ceiling; zero is a valid (strict) ceiling
	// matching only free models.
	MaxInputPricePerMillion *float64
}

// Validate checks the requirement's fields. It returns a
// *errors.ValidationError describing the first problem found.
func (r Requirement) Validate() error {
	if r.MinContext < 0 {
		return &pkgerrors.ValidationError{
			Field:      "requirement.min_context",
			Message:    fmt.Sprintf("must not be negative (got %d)", r.MinContext),
			Suggestion: "Use 0 for no context constraint",
		}
	}
	if r.MaxInputPricePerMillion != nil && *r.MaxInputPricePerMillion < 0 {
		return &pkgerrors.ValidationError{
			Field:      "requirement.max_cost_input",
			Message:    fmt.Sprintf("must not be negative (got %g)", *r.MaxInputPricePerMillion),
			Suggestion: "Omit the ceiling for no cost constraint",
		}
	}
	return nil
}

// Satisfies reports whether the model meets every dimension of the
// requirement. It does not consider the Enabled flag; callers filter on
// that separately.
func (m ModelDescriptor) Satisfies(r Requirement) bool {
	if r.NeedsVision && !m.SupportsVision {
		return false
	}
	if r.NeedsThinking && !m.SupportsThinking {
		return false
	}
	if m.ContextWindow < r.MinContext {
		return false
	}
	if r.MaxInputPricePerMillion != nil && m.InputPricePerMillion > *r.MaxInputPricePerMillion {
		return false
	}
	return true
}
