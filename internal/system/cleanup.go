package system

import (
	"errors"
	"fmt"
	"sync"
)

type cleanupStep struct {
	name string
	fn   func() error
}

// CleanupStack holds compensating actions that undo completed steps of a
// sequence. They run last-in first-out when a later step fails; Clear
// disarms the stack once the sequence has succeeded.
type CleanupStack struct {
	mu    sync.Mutex
	steps []cleanupStep
}

// NewCleanupStack creates an empty stack.
func NewCleanupStack() *CleanupStack {
	return &CleanupStack{}
}

// Add registers fn under name. The name labels its error in Execute.
func (s *CleanupStack) Add(name string, fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, cleanupStep{name: name, fn: fn})
}

// Len reports how many actions are armed.
func (s *CleanupStack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.steps)
}

// Names lists the armed actions in the order Execute would run them.
func (s *CleanupStack) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.steps))
	for i := len(s.steps) - 1; i >= 0; i-- {
		names = append(names, s.steps[i].name)
	}
	return names
}

// Execute runs every armed action once, newest first, and disarms the
// stack. A failing action does not stop the others.
func (s *CleanupStack) Execute() error {
	s.mu.Lock()
	steps := s.steps
	s.steps = nil
	s.mu.Unlock()

	var errs []error
	for i := len(steps) - 1; i >= 0; i-- {
		if err := steps[i].fn(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", steps[i].name, err))
		}
	}
	return errors.Join(errs...)
}

// Clear disarms the stack without running anything.
func (s *CleanupStack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = nil
}
