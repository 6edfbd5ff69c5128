// Package rules holds the active lending policy for the process. Reload
// replaces the whole rule set with one atomic pointer swap, so concurrent
// evaluations always see either the old policy or the new one in full.
package rules

import (
	"sync/atomic"

	"github.com/kasicredit/lending-engine/internal/domain"
	customError "github.com/kasicredit/lending-engine/pkg/errors"
)

type Store struct {
	active atomic.Pointer[domain.LendingRules]
}

// NewStore validates and installs the initial rule set. Invalid rules are a
// fatal configuration error at startup.
func NewStore(rules *domain.LendingRules) (*Store, error) {
	s := &Store{}
	if err := s.Swap(rules); err != nil {
		return nil, err
	}
	return s, nil
}

// Active returns the current rule set. Callers must treat it as read-only.
func (s *Store) Active() *domain.LendingRules {
	return s.active.Load()
}

// Swap validates and installs a new rule set. The previous set stays valid
// for evaluations already holding it.
func (s *Store) Swap(rules *domain.LendingRules) error {
	if err := rules.Validate(); err != nil {
		return customError.WrapInvalidRules(err)
	}
	s.active.Store(rules)
	return nil
}
