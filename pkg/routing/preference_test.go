package routing

import (
	"context"
	"errors"
	"testing"

	pkgerrors "github.com/switchboard-io/switchboard/pkg/errors"
)

// fakeStore is an in-memory PreferenceStore for tests.
type fakeStore struct {
	prefs map[string]string
	err   error
}

func (f *fakeStore) PreferredModel(ctx context.Context, userID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	id, ok := f.prefs[userID]
	if !ok {
		return "", &pkgerrors.NotFoundError{Resource: "preference", ID: userID}
	}
	return id, nil
}

func prefSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	def := validModel()
	def.ID = "default-model"
	def.Default = true

	other := validModel()
	other.ID = "other-model"

	disabled := validModel()
	disabled.ID = "disabled-model"
	disabled.Enabled = false

	return mustSnapshot(t, def, other, disabled)
}

func TestResolver_StoredPreferenceWins(t *testing.T) {
	store := &fakeStore{prefs: map[string]string{"u1": "other-model"}}
	r := NewResolver(store, discardLogger())

	res := r.Resolve(context.Background(), "u1", prefSnapshot(t))
	if res.ModelID != "other-model" {
		t.Errorf("ModelID = %q, want other-model", res.ModelID)
	}
	if res.Source != SourcePreference {
		t.Errorf("Source = %q, want preference", res.Source)
	}
}

func TestResolver_MissingPreferenceFallsBackToDefault(t *testing.T) {
	store := &fakeStore{prefs: map[string]string{}}
	r := NewResolver(store, discardLogger())

	res := r.Resolve(context.Background(), "unknown-user", prefSnapshot(t))
	if res.ModelID != "default-model" {
		t.Errorf("ModelID = %q, want default-model", res.ModelID)
	}
	if res.Source != SourceDefault {
		t.Errorf("Source = %q, want default", res.Source)
	}
}

func TestResolver_StalePreferenceFallsBackToDefault(t *testing.T) {
	store := &fakeStore{prefs: map[string]string{"u1": "removed-model"}}
	r := NewResolver(store, discardLogger())

	res := r.Resolve(context.Background(), "u1", prefSnapshot(t))
	if res.ModelID != "default-model" {
		t.Errorf("ModelID = %q, want default-model for stale preference", res.ModelID)
	}
	if res.Source != SourceDefault {
		t.Errorf("Source = %q, want default", res.Source)
	}
}

func TestResolver_DisabledPreferenceFallsBackToDefault(t *testing.T) {
	store := &fakeStore{prefs: map[string]string{"u1": "disabled-model"}}
	r := NewResolver(store, discardLogger())

	res := r.Resolve(context.Background(), "u1", prefSnapshot(t))
	if res.ModelID != "default-model" {
		t.Errorf("ModelID = %q, want default-model for disabled preference", res.ModelID)
	}
}

func TestResolver_StoreFailureFallsBackToDefault(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	r := NewResolver(store, discardLogger())

	res := r.Resolve(context.Background(), "u1", prefSnapshot(t))
	if res.ModelID != "default-model" {
		t.Errorf("ModelID = %q, store failures must not break resolution", res.ModelID)
	}
	if res.Source != SourceDefault {
		t.Errorf("Source = %q, want default", res.Source)
	}
}

func TestResolver_NoDefaultResolvesToNone(t *testing.T) {
	noDefault := validModel()
	noDefault.ID = "only"
	noDefault.Enabled = false
	snap := mustSnapshot(t, noDefault)

	r := NewResolver(&fakeStore{}, discardLogger())
	res := r.Resolve(context.Background(), "u1", snap)
	if res.Source != SourceNone {
		t.Errorf("Source = %q, want none", res.Source)
	}
	if res.ModelID != "" {
		t.Errorf("ModelID = %q, want empty", res.ModelID)
	}
}

func TestResolver_NilStore(t *testing.T) {
	r := NewResolver(nil, discardLogger())

	res := r.Resolve(context.Background(), "u1", prefSnapshot(t))
	if res.ModelID != "default-model" {
		t.Errorf("ModelID = %q, want default-model with nil store", res.ModelID)
	}
}

func TestResolver_Stored(t *testing.T) {
	store := &fakeStore{prefs: map[string]string{"u1": "anything"}}
	r := NewResolver(store, discardLogger())
	ctx := context.Background()

	if got := r.Stored(ctx, "u1"); got != "anything" {
		t.Errorf("Stored() = %q, want anything", got)
	}
	if got := r.Stored(ctx, "u2"); got != "" {
		t.Errorf("Stored() for absent user = %q, want empty", got)
	}
	if got := r.Stored(ctx, ""); got != "" {
		t.Errorf("Stored() for empty user = %q, want empty", got)
	}
}
