package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrSandboxUnavailable is returned while the sandbox is told to fail
var ErrSandboxUnavailable = errors.New("payment: sandbox provider unavailable")

// Sandbox is an in-process provider. Intents stay pending until Settle is called.
type Sandbox struct {
	mu          sync.Mutex
	intents     map[string]*Intent
	failCreates int
	failReads   int
	canceled    []string
}

// NewSandbox creates an empty sandbox provider
func NewSandbox() *Sandbox {
	return &Sandbox{intents: make(map[string]*Intent)}
}

func (s *Sandbox) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failCreates > 0 {
		s.failCreates--
		return nil, ErrSandboxUnavailable
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("payment: amount must be positive, got %s", req.Amount)
	}

	ref := "pi_" + uuid.NewString()
	intent := &Intent{
		Ref:          ref,
		ClientSecret: ref + "_secret_" + uuid.NewString()[:8],
		Status:       StatusPending,
	}
	s.intents[ref] = intent
	cp := *intent
	return &cp, nil
}

func (s *Sandbox) GetIntentStatus(ctx context.Context, ref string) (Status, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failReads > 0 {
		s.failReads--
		return "", ErrSandboxUnavailable
	}
	intent, ok := s.intents[ref]
	if !ok {
		return "", ErrUnknownIntent
	}
	return intent.Status, nil
}

func (s *Sandbox) CancelIntent(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	intent, ok := s.intents[ref]
	if !ok {
		return ErrUnknownIntent
	}
	if intent.Status != StatusSucceeded {
		intent.Status = StatusCanceled
	}
	s.canceled = append(s.canceled, ref)
	return nil
}

// Settle moves an intent to status, as the customer's bank would
func (s *Sandbox) Settle(ref string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	intent, ok := s.intents[ref]
	if !ok {
		return ErrUnknownIntent
	}
	intent.Status = status
	return nil
}

// FailCreates makes the next n CreateIntent calls fail
func (s *Sandbox) FailCreates(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCreates = n
}

// FailReads makes the next n GetIntentStatus calls fail
func (s *Sandbox) FailReads(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failReads = n
}

// Canceled lists the refs CancelIntent was called with
func (s *Sandbox) Canceled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.canceled...)
}

// NewProvider returns the provider named by the configuration
func NewProvider(name string) (Provider, error) {
	switch name {
	case "sandbox", "":
		return NewSandbox(), nil
	default:
		return nil, fmt.Errorf("payment: unknown provider %q", name)
	}
}
