package routing

import (
	"context"
	"errors"
	"log/slog"

	pkgerrors "github.com/switchboard-io/switchboard/pkg/errors"
)

// PreferenceStore looks up a user's preferred model id. Implementations
// return a *errors.NotFoundError when the user has no stored preference.
type PreferenceStore interface {
	PreferredModel(ctx context.Context, userID string) (string, error)
}

// ResolutionSource identifies where a resolved model id came from.
type ResolutionSource string

const (
	// SourcePreference means the user's stored preference was used.
	SourcePreference ResolutionSource = "preference"

	// SourceDefault means the catalog default was used.
	SourceDefault ResolutionSource = "default"

	// SourceNone means neither a usable preference nor a default exists.
	SourceNone ResolutionSource = "none"
)

// Resolution is the outcome of resolving a user's effective model.
type Resolution struct {
	// ModelID is the resolved id, or "" when Source is SourceNone.
	ModelID string

	// Source records where the id came from.
	Source ResolutionSource
}

// Resolver turns a user id into an effective model id, degrading
// gracefully: a missing preference, a store failure, or a preference
// pointing at an unknown or disabled model all fall back to the catalog
// default. Resolution never fails.
type Resolver struct {
	store  PreferenceStore
	logger *slog.Logger
}

// NewResolver creates a resolver backed by the given store. A nil store
// resolves straight to the default.
func NewResolver(store PreferenceStore, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, logger: logger}
}

// Stored returns the user's raw stored preference, or "" when absent or
// when the store fails. Store failures are logged and swallowed; a
// broken preference store must not break routing.
func (r *Resolver) Stored(ctx context.Context, userID string) string {
	if r.store == nil || userID == "" {
		return ""
	}
	id, err := r.store.PreferredModel(ctx, userID)
	if err != nil {
		var nf *pkgerrors.NotFoundError
		if errors.As(err, &nf) {
			return ""
		}
		r.logger.Warn("preference lookup failed, falling back to default",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return ""
	}
	return id
}

// Resolve returns the user's effective model against the snapshot: the
// stored preference when it names an enabled model, otherwise the
// snapshot default, otherwise nothing.
func (r *Resolver) Resolve(ctx context.Context, userID string, snap *Snapshot) Resolution {
	if stored := r.Stored(ctx, userID); stored != "" {
		m, ok := snap.Get(stored)
		switch {
		case !ok:
			r.logger.Debug("preferred model not in catalog, falling back to default",
				slog.String("user_id", userID),
				slog.String("model_id", stored),
			)
		case !m.Enabled:
			r.logger.Debug("preferred model is disabled, falling back to default",
				slog.String("user_id", userID),
				slog.String("model_id", stored),
			)
		default:
			return Resolution{ModelID: stored, Source: SourcePreference}
		}
	}

	if defaultID := snap.DefaultID(); defaultID != "" {
		return Resolution{ModelID: defaultID, Source: SourceDefault}
	}
	return Resolution{Source: SourceNone}
}
