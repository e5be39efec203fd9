package branchctx

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("branchctx: session not found")

// Switch outcomes reported to a Recorder.
const (
	SwitchApplied   = "applied"
	SwitchUnchanged = "unchanged"
	SwitchDenied    = "denied"
)

// SwitchListener runs after the resolved branch of a session changed.
// Listeners drop any branch-scoped data they hold for the session.
type SwitchListener func(ctx context.Context, sessionID, from, to string)

// Recorder receives branch switch outcomes, e.g. for metrics.
type Recorder interface {
	BranchSwitch(outcome string)
}

// Manager owns the mutable active-branch cell of every session.
type Manager struct {
	store  Store
	logger *zap.Logger

	// serializes load-modify-save cycles
	mu        sync.Mutex
	listeners []SwitchListener
	recorder  Recorder
}

func NewManager(store Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, logger: logger}
}

// OnSwitch registers a listener. Not safe to call concurrently with switches.
func (m *Manager) OnSwitch(l SwitchListener) {
	m.listeners = append(m.listeners, l)
}

func (m *Manager) SetRecorder(r Recorder) {
	m.recorder = r
}

// ApplyAuthorization stores a fresh authorization payload for the session
// (login or current-user refresh) and returns the resolved branch.
func (m *Manager) ApplyAuthorization(ctx context.Context, sessionID string, user UserContext, authz AuthorizationContext) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load session state: %w", err)
	}

	var previous string
	if prev != nil {
		previous = prev.ActiveBranchID
	}

	authz.AllowedBranchIDs = NormalizeBranchIDs(authz.AllowedBranchIDs)
	resolved := ResolveActiveBranchID(ResolveInput{
		User:                  user,
		Authz:                 authz,
		CurrentActiveBranchID: previous,
	})

	state := State{User: user, Authz: authz, ActiveBranchID: resolved}
	if err := m.store.Save(ctx, sessionID, state); err != nil {
		return "", fmt.Errorf("save session state: %w", err)
	}

	if prev != nil && previous != resolved {
		m.logger.Info("active branch changed by authorization refresh",
			zap.String("session", sessionID),
			zap.String("from", previous),
			zap.String("to", resolved))
		m.notify(ctx, sessionID, previous, resolved)
	}
	return resolved, nil
}

// SetActiveBranch switches the session to branchID. Only global admins may
// switch; for anyone else the call is ignored and the current branch is
// returned with switched == false.
func (m *Manager) SetActiveBranch(ctx context.Context, sessionID, branchID string) (active string, switched bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return "", false, fmt.Errorf("load session state: %w", err)
	}
	if state == nil {
		return "", false, ErrSessionNotFound
	}

	current := resolveState(state)
	branchID = NormalizeBranchID(branchID)

	if !IsGlobalAdmin(state.User, state.Authz) {
		m.logger.Info("branch switch ignored for non global admin",
			zap.String("session", sessionID),
			zap.String("role", state.User.Role),
			zap.String("requested", branchID),
			zap.String("active", current))
		m.record(SwitchDenied)
		return current, false, nil
	}

	if branchID == "" || branchID == current {
		m.record(SwitchUnchanged)
		return current, false, nil
	}

	state.ActiveBranchID = branchID
	next := resolveState(state)
	state.ActiveBranchID = next
	if err := m.store.Save(ctx, sessionID, *state); err != nil {
		return "", false, fmt.Errorf("save session state: %w", err)
	}

	m.logger.Info("active branch switched",
		zap.String("session", sessionID),
		zap.String("from", current),
		zap.String("to", next))
	m.record(SwitchApplied)
	m.notify(ctx, sessionID, current, next)
	return next, true, nil
}

// Active returns the resolved branch of the session.
func (m *Manager) Active(ctx context.Context, sessionID string) (string, error) {
	state, err := m.State(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return resolveState(state), nil
}

// State returns the stored state of the session.
func (m *Manager) State(ctx context.Context, sessionID string) (*State, error) {
	state, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session state: %w", err)
	}
	if state == nil {
		return nil, ErrSessionNotFound
	}
	return state, nil
}

// End forgets the session and drops its branch-scoped data.
func (m *Manager) End(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session state: %w", err)
	}
	if err := m.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session state: %w", err)
	}
	if state != nil && state.ActiveBranchID != "" {
		m.notify(ctx, sessionID, state.ActiveBranchID, "")
	}
	return nil
}

func (m *Manager) notify(ctx context.Context, sessionID, from, to string) {
	for _, l := range m.listeners {
		l(ctx, sessionID, from, to)
	}
}

func (m *Manager) record(outcome string) {
	if m.recorder != nil {
		m.recorder.BranchSwitch(outcome)
	}
}

func resolveState(s *State) string {
	return ResolveActiveBranchID(ResolveInput{
		User:                  s.User,
		Authz:                 s.Authz,
		CurrentActiveBranchID: s.ActiveBranchID,
	})
}
