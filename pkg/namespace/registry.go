// Package namespace implements the namespace registry: validated,
// persisted settings (groups-count, success-copies-num, an optional
// static-couple) keyed by namespace name (spec.md §4.8).
package namespace

import (
	"fmt"
	"regexp"

	"github.com/mastermind-cluster/mastermind/pkg/storage"
	"github.com/mastermind-cluster/mastermind/pkg/topology"
)

// SuccessCopiesNum enumerates the write-acknowledgement policies a
// namespace may require.
type SuccessCopiesNum string

const (
	SuccessCopiesAny    SuccessCopiesNum = "any"
	SuccessCopiesQuorum SuccessCopiesNum = "quorum"
	SuccessCopiesAll    SuccessCopiesNum = "all"
)

func validSuccessCopiesNum(s string) bool {
	switch SuccessCopiesNum(s) {
	case SuccessCopiesAny, SuccessCopiesQuorum, SuccessCopiesAll:
		return true
	}
	return false
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-]*[A-Za-z0-9]$`)

// Registry is the namespace settings store, backed by pkg/storage and
// cross-checked against the live topology for static-couple requests.
type Registry struct {
	store storage.Store
	state *topology.State
}

// New builds a Registry persisting through store. state is consulted
// only to validate static-couple settings against the couples the
// coordinator currently knows about.
func New(store storage.Store, state *topology.State) *Registry {
	return &Registry{store: store, state: state}
}

// Get returns namespace's settings.
func (r *Registry) Get(namespace string) (*storage.Settings, error) {
	return r.store.GetSettings(namespace)
}

// List returns every namespace's settings.
func (r *Registry) List() ([]*storage.Settings, error) {
	return r.store.ListSettings()
}

// Setup validates and persists settings for a namespace, per spec.md
// §4.8's four rules.
func (r *Registry) Setup(settings *storage.Settings) error {
	if !namePattern.MatchString(settings.Namespace) {
		return fmt.Errorf("namespace %q does not match the required name pattern", settings.Namespace)
	}
	if settings.GroupsCount <= 0 {
		return fmt.Errorf("groups-count must be a positive integer, got %d", settings.GroupsCount)
	}
	if !validSuccessCopiesNum(settings.SuccessCopiesNum) {
		return fmt.Errorf("success-copies-num must be one of any, quorum, all, got %q", settings.SuccessCopiesNum)
	}
	if len(settings.StaticCouple) > 0 {
		if len(settings.StaticCouple) != settings.GroupsCount {
			return fmt.Errorf("static-couple has %d groups, expected groups-count %d", len(settings.StaticCouple), settings.GroupsCount)
		}
		key := topology.CoupleKey(settings.StaticCouple)
		c, ok := r.state.Couples.Get(key)
		if !ok {
			return fmt.Errorf("static-couple %s is not a known couple", key)
		}
		if !c.CheckGroups() {
			return fmt.Errorf("static-couple %s members disagree on meta", key)
		}
	}
	return r.store.PutSettings(settings)
}

// Delete removes namespace's settings.
func (r *Registry) Delete(namespace string) error {
	return r.store.DeleteSettings(namespace)
}
