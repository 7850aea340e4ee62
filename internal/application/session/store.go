package session

import (
	"context"
	"sync"

	"github.com/jhoicas/sweetshop/internal/application/ports"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/pkg/logger"
)

// State is the session lifecycle state.
type State int

const (
	// StateAnonymous means no token is held.
	StateAnonymous State = iota
	// StateResolving means a token is set and its identity is being resolved.
	StateResolving
	// StateAuthenticated means the token resolved to an identity.
	StateAuthenticated
	// StateInvalid means resolution failed. The stale token is kept until an
	// explicit logout, but routing must treat this state as anonymous.
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateResolving:
		return "resolving"
	case StateAuthenticated:
		return "authenticated"
	case StateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Store owns the current authentication token and the identity derived from
// it. It is the single writer of the persisted token storage. Identity is
// always re-derived from the current token and never carried across a token
// change: resolutions are tagged with a generation counter so a result for a
// superseded token is discarded instead of overwriting newer state.
type Store struct {
	auth    ports.AuthAPI
	storage ports.TokenStorage
	log     *logger.Logger

	mu       sync.Mutex
	token    string
	identity *entity.User
	state    State
	gen      uint64
	settled  chan struct{} // closed when the in-flight resolution settles
}

// New builds a session store. The store starts anonymous; call Restore to
// adopt a previously persisted token.
func New(auth ports.AuthAPI, storage ports.TokenStorage, log *logger.Logger) *Store {
	return &Store{auth: auth, storage: storage, log: log, state: StateAnonymous}
}

// Restore loads the persisted token, if any, and starts resolving its
// identity. Storage failures are logged and treated as no persisted session.
func (s *Store) Restore(ctx context.Context) {
	token, err := s.storage.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("loading persisted session")
		return
	}
	if token == "" {
		return
	}
	s.adopt(ctx, token, false)
}

// SetToken replaces the current token. A non-empty token is persisted and its
// identity resolution starts; an empty token clears persisted storage. In both
// cases the previous identity is dropped synchronously.
func (s *Store) SetToken(ctx context.Context, token string) {
	s.adopt(ctx, token, true)
}

// Logout clears the token, the persisted storage and the identity. The
// identity becomes absent immediately, not after any pending resolution
// settles.
func (s *Store) Logout(ctx context.Context) {
	s.SetToken(ctx, "")
}

// Login exchanges credentials for a token and adopts it. On failure the
// session is left untouched.
func (s *Store) Login(ctx context.Context, email, password string) error {
	token, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	s.SetToken(ctx, token)
	return nil
}

// Register creates an account and adopts its token. On failure the session is
// left untouched.
func (s *Store) Register(ctx context.Context, email, password, fullName string) error {
	token, err := s.auth.Register(ctx, email, password, fullName)
	if err != nil {
		return err
	}
	s.SetToken(ctx, token)
	return nil
}

// Token returns the current token, "" when anonymous.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Identity returns the resolved identity, nil until resolution succeeds.
func (s *Store) Identity() *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Await blocks until the store leaves the resolving state or the context is
// done, and returns the state it settled on.
func (s *Store) Await(ctx context.Context) State {
	for {
		s.mu.Lock()
		state, settled := s.state, s.settled
		s.mu.Unlock()
		if state != StateResolving {
			return state
		}
		select {
		case <-ctx.Done():
			return state
		case <-settled:
		}
	}
}

// adopt installs a token, optionally persisting the change, and kicks off
// identity resolution for non-empty tokens.
func (s *Store) adopt(ctx context.Context, token string, persist bool) {
	s.mu.Lock()
	s.token = token
	s.identity = nil
	s.gen++
	gen := s.gen
	if token == "" {
		s.state = StateAnonymous
		s.settled = nil
	} else {
		s.state = StateResolving
		s.settled = make(chan struct{})
	}
	settled := s.settled
	s.mu.Unlock()

	if persist {
		var err error
		if token == "" {
			err = s.storage.Clear(ctx)
		} else {
			err = s.storage.Save(ctx, token)
		}
		if err != nil {
			s.log.Warn().Err(err).Msg("persisting session token")
		}
	}

	if token == "" {
		return
	}

	// The resolution may outlive the triggering interaction; detach it from
	// the caller's cancellation.
	go s.resolve(context.WithoutCancel(ctx), gen, token, settled)
}

// resolve performs the whoami call for a token and commits the result only if
// the token is still current. Failures are absorbed: they mean "not
// authenticated", never a fault raised to the caller.
func (s *Store) resolve(ctx context.Context, gen uint64, token string, settled chan struct{}) {
	defer close(settled)

	identity, err := s.auth.WhoAmI(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		s.log.Debug().Msg("discarding identity resolution for superseded token")
		return
	}
	if err != nil {
		s.log.Debug().Err(err).Msg("identity resolution failed, treating token as invalid")
		s.identity = nil
		s.state = StateInvalid
		return
	}
	s.identity = identity
	s.state = StateAuthenticated
}
