package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/holdr-id/wallet-node/internal/core/domain"
	"github.com/holdr-id/wallet-node/internal/core/ports"
	"github.com/holdr-id/wallet-node/internal/log"
	"github.com/holdr-id/wallet-node/pkg/sync_ttl_map"
)

// SessionState is the observable state of one proof session
type SessionState string

// Proof session states. Idle is initial, Succeeded and Failed are terminal.
// A session is reusable: a new execution from a terminal state re-enters
// Requesting.
const (
	SessionIdle       SessionState = "idle"
	SessionRequesting SessionState = "requesting"
	SessionSucceeded  SessionState = "succeeded"
	SessionFailed     SessionState = "failed"
)

// ProofSession tracks one proof generation attempt from request to terminal
// result. Callers observe it through snapshot accessors, never by blocking on
// the session itself.
type ProofSession struct {
	id     uuid.UUID
	holder string
	bridge ports.ProverBridge

	mu           sync.Mutex
	state        SessionState
	lastError    string
	result       *domain.ProofResult
	circuitID    string
	publicInputs []string
}

// NewProofSession returns an idle session bound to the given holder
func NewProofSession(holder string, bridge ports.ProverBridge) *ProofSession {
	return &ProofSession{
		id:     uuid.New(),
		holder: holder,
		bridge: bridge,
		state:  SessionIdle,
	}
}

// ID returns the session identifier
func (s *ProofSession) ID() uuid.UUID {
	return s.id
}

// Holder returns the holder this session belongs to
func (s *ProofSession) Holder() string {
	return s.holder
}

// State returns the current session state
func (s *ProofSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Busy reports whether an execution is in flight. It is true iff the state
// is Requesting.
func (s *ProofSession) Busy() bool {
	return s.State() == SessionRequesting
}

// LastError returns the failure message of the most recent attempt. It is
// empty while the session has not failed and is cleared when a new attempt
// starts.
func (s *ProofSession) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Result returns the outcome of the most recent completed attempt, or nil
// while none has completed since the last Requesting transition
func (s *ProofSession) Result() *domain.ProofResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// CircuitID returns the circuit of the most recent attempt
func (s *ProofSession) CircuitID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.circuitID
}

// PublicInputs returns the public inputs of the most recent attempt
func (s *ProofSession) PublicInputs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.publicInputs...)
}

// Execute runs one proof generation attempt synchronously. It transitions
// the session to Requesting before touching the bridge and to Succeeded or
// Failed when the bridge returns. A call made while the session is already
// Requesting is rejected without disturbing the outstanding attempt.
func (s *ProofSession) Execute(ctx context.Context, request *domain.ProofRequest) *domain.ProofResult {
	s.mu.Lock()
	if s.state == SessionRequesting {
		s.mu.Unlock()
		request.Zero()
		return domain.NewProofError(domain.ProofErrorBusy, "proof generation already in progress")
	}
	s.state = SessionRequesting
	s.lastError = ""
	s.result = nil
	// public request metadata only, the private blob stays out of the session
	s.circuitID = request.CircuitID
	s.publicInputs = append([]string(nil), request.PublicInputs...)
	s.mu.Unlock()

	res := s.bridge.Execute(ctx, request)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = res
	if res.Ok {
		s.state = SessionSucceeded
	} else {
		s.state = SessionFailed
		s.lastError = res.Error.Error()
	}
	return res
}

// Start launches Execute on a background goroutine so the caller never
// blocks on proof computation. The run outlives the initiating call: the
// caller's context is stripped of its cancellation before the goroutine
// launches, so an http request context going away does not abort the
// computation. Only Cancel stops a running session. Returns
// domain.ErrProofInProgress when the session is already Requesting.
func (s *ProofSession) Start(ctx context.Context, request *domain.ProofRequest) error {
	s.mu.Lock()
	busy := s.state == SessionRequesting
	s.mu.Unlock()
	if busy {
		request.Zero()
		return domain.ErrProofInProgress
	}

	runCtx := context.WithoutCancel(ctx)
	go func() {
		res := s.Execute(runCtx, request)
		if !res.Ok {
			log.Info(runCtx, "proof session finished with failure", "session", s.id.String(), "kind", res.Error.Kind)
		}
	}()
	return nil
}

// Cancel asks the bridge to abandon the outstanding computation, if any
func (s *ProofSession) Cancel() {
	s.bridge.Cancel()
}

// SessionRegistry hands out proof sessions, one live session per holder.
// Sessions are ephemeral: entries expire after the configured ttl and are
// never persisted.
type SessionRegistry struct {
	bridge   ports.ProverBridge
	sessions *sync_ttl_map.TTLMap
}

// NewSessionRegistry returns a registry whose sessions expire after ttl
func NewSessionRegistry(bridge ports.ProverBridge, ttl time.Duration) *SessionRegistry {
	m := sync_ttl_map.New(ttl)
	m.CleaningBackground(ttl)
	return &SessionRegistry{bridge: bridge, sessions: m}
}

// ForHolder returns the live session for the given holder, creating one if
// none exists or the previous one expired. The entry's ttl is refreshed on
// every call.
func (r *SessionRegistry) ForHolder(holder string) *ProofSession {
	if v := r.sessions.Load(holder); v != nil {
		if s, ok := v.(*ProofSession); ok {
			r.store(s)
			return s
		}
	}
	s := NewProofSession(holder, r.bridge)
	r.store(s)
	return s
}

// Get returns the session with the given id, or nil when unknown or expired
func (r *SessionRegistry) Get(id uuid.UUID) *ProofSession {
	if v := r.sessions.Load(id.String()); v != nil {
		if s, ok := v.(*ProofSession); ok {
			return s
		}
	}
	return nil
}

// the session is reachable both by holder and by id
func (r *SessionRegistry) store(s *ProofSession) {
	r.sessions.Store(s.holder, s)
	r.sessions.Store(s.id.String(), s)
}
