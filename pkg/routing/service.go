package routing

import (
	"context"
	"errors"
	"log/slog"
)

// Service ties the registry, preference resolution, and selection into
// the single operation the rest of the system calls.
type Service struct {
	registry *Registry
	resolver *Resolver
	logger   *slog.Logger
}

// NewService creates a routing service. store may be nil when no
// preference backend is configured; selections then flow through the
// default and ranking steps only.
func NewService(registry *Registry, store PreferenceStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry: registry,
		resolver: NewResolver(store, logger),
		logger:   logger,
	}
}

// Registry returns the underlying registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Resolver returns the underlying preference resolver.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// SelectModel picks a model for the user's task. The requirement is
// validated, the user's stored preference is resolved (failures degrade
// to no preference), and the selection algorithm runs against the
// current snapshot. Every outcome is logged and counted.
func (s *Service) SelectModel(ctx context.Context, userID string, req Requirement) (Selection, error) {
	snap := s.registry.Snapshot()

	// Only a stored preference feeds the preference step; a resolver
	// fallback to the default would mislabel the selection reason.
	preferred := ""
	if res := s.resolver.Resolve(ctx, userID, snap); res.Source == SourcePreference {
		preferred = res.ModelID
	}

	sel, err := Select(snap, req, preferred)
	if err != nil {
		recordSelectionFailure(failureCause(err))
		s.logger.Warn("model selection failed",
			slog.String("user_id", userID),
			slog.Uint64("snapshot_version", snap.Version()),
			slog.Any("error", err),
		)
		return Selection{}, err
	}

	recordSelection(string(sel.Reason))
	s.logger.Info("model selected",
		slog.String("user_id", userID),
		slog.String("model_id", sel.Model.ID),
		slog.String("reason", string(sel.Reason)),
		slog.Uint64("snapshot_version", sel.SnapshotVersion),
	)
	return sel, nil
}

// failureCause maps a selection error onto a metric label.
func failureCause(err error) string {
	var noCompat *NoCompatibleModelError
	if errors.As(err, &noCompat) {
		return "no_compatible_model"
	}
	return "invalid_requirement"
}
