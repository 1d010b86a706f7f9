package core

import (
	"time"

	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Layout     string     `json:"layout"`
	Passes     int        `json:"passes"`
	Failures   int        `json:"failures"`
	LastPassID string     `json:"last_pass_id,omitempty"`
	LastPassAt *time.Time `json:"last_pass_at,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
	Watching   bool       `json:"watching"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var lastAt *time.Time
	if s.lastPassAt != nil {
		t := *s.lastPassAt
		lastAt = &t
	}

	return ServiceState{
		Layout:     s.layout.String(),
		Passes:     s.passes,
		Failures:   s.failures,
		LastPassID: s.lastPassID,
		LastPassAt: lastAt,
		LastError:  s.lastErr,
		Watching:   s.watching,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
