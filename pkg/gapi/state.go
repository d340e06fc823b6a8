package gapi

import (
	"context"
	"fmt"
)

// State is the materialization state of a resource handle: lazy (name built
// client side, existence unconfirmed) or resolved (confirmed by the service).
// The only transition is lazy -> resolved.
type State struct {
	lazy       bool
	autocreate bool
}

// Lazy returns the state of a handle built without a lookup.
func Lazy(autocreate bool) State {
	return State{lazy: true, autocreate: autocreate}
}

// Resolved returns the state of a handle whose resource the service returned.
func Resolved() State {
	return State{}
}

func (s *State) IsLazy() bool {
	return s.lazy
}

// Autocreate is true only for lazy handles that provision their resource on not-found.
func (s *State) Autocreate() bool {
	return s.lazy && s.autocreate
}

// Resolve marks the resource as confirmed.
func (s *State) Resolve() {
	s.lazy = false
	s.autocreate = false
}

// Do runs op. When op reports not-found and the handle is lazy with autocreate,
// create is called once (an already-exists reply counts as success) and op is
// retried once. Any success resolves the state.
func (s *State) Do(ctx context.Context, op func(ctx context.Context) error, create func(ctx context.Context) error) error {
	err := op(ctx)
	if err == nil {
		s.Resolve()
		return nil
	}
	if !IsNotFound(err) || !s.Autocreate() || create == nil {
		return err
	}

	if cerr := create(ctx); cerr != nil && !IsAlreadyExists(cerr) {
		return fmt.Errorf("autocreate: %w", cerr)
	}
	s.Resolve()

	return op(ctx)
}
