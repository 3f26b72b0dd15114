package store

import (
	"context"
	"log"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mealwise/mealwise-go/internal/apperr"
	"github.com/mealwise/mealwise-go/internal/cache"
	"github.com/mealwise/mealwise-go/internal/identity"
	"github.com/mealwise/mealwise-go/internal/types"
)

// SessionState is the session store's position in the authentication state
// machine.
type SessionState int

const (
	Unauthenticated SessionState = iota
	AuthenticatedUnverified
	AuthenticatedOnboarding
	AuthenticatedComplete
)

func (s SessionState) String() string {
	switch s {
	case AuthenticatedUnverified:
		return "unverified"
	case AuthenticatedOnboarding:
		return "onboarding"
	case AuthenticatedComplete:
		return "complete"
	default:
		return "unauthenticated"
	}
}

// resetSession correlates the three password-reset calls. It lives only in
// memory and is discarded after a successful reset.
type resetSession struct {
	email    string
	code     string
	verified bool
}

// SessionStore owns the authenticated identity, its preferences and every
// authentication and onboarding flow. It is the root of the dependency
// graph: the plan and recipe stores activate only while a user is present.
type SessionStore struct {
	api       SessionAPI
	creds     *Credentials
	secure    cache.SecureStore
	snapshots cache.SnapshotStore
	identity  identity.Provider

	mu         sync.Mutex
	user       *types.User
	prefs      *types.Preferences
	onboarding bool
	reset      *resetSession
	subs       []func()
}

func NewSessionStore(api SessionAPI, creds *Credentials, secure cache.SecureStore, snapshots cache.SnapshotStore, provider identity.Provider) *SessionStore {
	if provider == nil {
		provider = identity.Noop{}
	}
	return &SessionStore{
		api:       api,
		creds:     creds,
		secure:    secure,
		snapshots: snapshots,
		identity:  provider,
	}
}

// Subscribe registers a callback invoked after every published change.
func (s *SessionStore) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *SessionStore) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// State derives the current state-machine position.
func (s *SessionStore) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.user == nil:
		return Unauthenticated
	case !s.user.EmailVerified:
		return AuthenticatedUnverified
	case s.onboarding || s.prefs == nil:
		return AuthenticatedOnboarding
	default:
		return AuthenticatedComplete
	}
}

// User returns a copy of the current user, or nil.
func (s *SessionStore) User() *types.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Preferences returns a copy of the current preferences, or nil.
func (s *SessionStore) Preferences() *types.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefs, err := clone(s.prefs)
	if err != nil {
		return nil
	}
	return prefs
}

// Restore re-hydrates the session from the cache tiers so the app starts in
// the right state without a network round trip. Missing or unreadable
// entries leave the store unauthenticated.
func (s *SessionStore) Restore(ctx context.Context) {
	if err := s.ensureDeviceID(ctx); err != nil {
		log.Printf("[Session] failed to mint device id: %v", err)
	}

	access, err := s.creds.AccessToken(ctx)
	if err != nil || access == "" {
		return
	}

	raw, err := s.secure.Get(ctx, cache.KeyUser)
	if err != nil {
		return
	}
	var user types.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		log.Printf("[Session] failed to decode cached user: %v", err)
		return
	}

	s.mu.Lock()
	s.user = &user
	if blob, err := s.snapshots.Get(ctx, cache.KeyPreferences); err == nil {
		var prefs types.Preferences
		if err := json.Unmarshal(blob, &prefs); err == nil {
			s.prefs = &prefs
		}
	}
	s.onboarding = s.prefs == nil
	s.mu.Unlock()
	s.notify()
}

// ensureDeviceID mints a stable per-install identifier on first run.
func (s *SessionStore) ensureDeviceID(ctx context.Context) error {
	if _, err := s.secure.Get(ctx, cache.KeyDeviceID); err == nil {
		return nil
	}
	return s.secure.Set(ctx, cache.KeyDeviceID, uuid.New().String())
}

// Register creates a pending account. No session credential is issued;
// the store moves to the unverified state.
func (s *SessionStore) Register(ctx context.Context, email, password string) error {
	user, err := s.api.Register(ctx, email, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.user = user
	s.prefs = nil
	s.onboarding = true
	s.mu.Unlock()
	s.persistUser(ctx)
	s.notify()
	return nil
}

// SendVerificationCode emails a verification code to the pending account.
func (s *SessionStore) SendVerificationCode(ctx context.Context, email string) error {
	return s.api.SendVerificationCode(ctx, email)
}

// VerifyEmail confirms the code; on success the server issues credentials
// and the store moves to onboarding.
func (s *SessionStore) VerifyEmail(ctx context.Context, email, code string) error {
	session, err := s.api.VerifyEmail(ctx, email, code)
	if err != nil {
		return err
	}
	return s.adoptSession(ctx, session)
}

// Login authenticates with email or username plus password. The resulting
// state is onboarding or complete depending on whether the server returned
// preferences.
func (s *SessionStore) Login(ctx context.Context, identifier, password string) error {
	session, err := s.api.Login(ctx, identifier, password)
	if err != nil {
		return err
	}
	return s.adoptSession(ctx, session)
}

// LoginFederated exchanges an authorization code with the identity provider
// and signs in with the resulting identity token.
func (s *SessionStore) LoginFederated(ctx context.Context, code string) error {
	idToken, err := s.identity.Exchange(ctx, code)
	if err != nil {
		return apperr.Wrap(apperr.InvalidCredentials, "federated sign-in failed", err)
	}
	session, err := s.api.LoginFederated(ctx, idToken)
	if err != nil {
		return err
	}
	return s.adoptSession(ctx, session)
}

func (s *SessionStore) adoptSession(ctx context.Context, session *types.Session) error {
	if err := s.creds.SetPair(ctx, session.AccessToken, session.RefreshToken); err != nil {
		return apperr.Wrap(apperr.Unknown, "failed to persist credentials", err)
	}

	s.mu.Lock()
	user := session.User
	s.user = &user
	s.prefs = session.Preferences
	s.onboarding = session.Preferences == nil
	s.mu.Unlock()

	s.persistUser(ctx)
	s.persistPrefs(ctx)
	s.notify()
	return nil
}

// CompleteBasicInfo is the first onboarding step. The server may already
// return derived preferences (calorie goal) when it has enough data.
func (s *SessionStore) CompleteBasicInfo(ctx context.Context, req types.UpdateBasicInfoRequest) error {
	if err := s.requireUser(); err != nil {
		return err
	}
	resp, err := s.api.UpdateBasicInfo(ctx, req)
	if err != nil {
		return err
	}

	s.mu.Lock()
	user := resp.User
	s.user = &user
	if resp.Preferences != nil {
		s.prefs = resp.Preferences
	}
	s.mu.Unlock()
	s.persistUser(ctx)
	s.persistPrefs(ctx)
	s.notify()
	return nil
}

// The preference selection steps all follow the same shape: one partial
// update round trip whose response, including server-computed derived
// fields, replaces the local copy wholesale.

func (s *SessionStore) SelectActivity(ctx context.Context, level string) error {
	return s.applyPrefs(ctx, func(ctx context.Context) (*types.Preferences, error) {
		return s.api.UpdateActivityLevel(ctx, level)
	}, false)
}

func (s *SessionStore) SelectGoal(ctx context.Context, goal string) error {
	return s.applyPrefs(ctx, func(ctx context.Context) (*types.Preferences, error) {
		return s.api.UpdateGoal(ctx, goal)
	}, false)
}

func (s *SessionStore) SelectDiet(ctx context.Context, dietType string) error {
	return s.applyPrefs(ctx, func(ctx context.Context) (*types.Preferences, error) {
		return s.api.UpdateDietType(ctx, dietType)
	}, false)
}

func (s *SessionStore) SelectCuisines(ctx context.Context, cuisines []string) error {
	return s.applyPrefs(ctx, func(ctx context.Context) (*types.Preferences, error) {
		return s.api.UpdateCuisineTypes(ctx, cuisines)
	}, false)
}

// SelectIntolerances is the final onboarding step; success completes
// onboarding.
func (s *SessionStore) SelectIntolerances(ctx context.Context, intolerances []string) error {
	return s.applyPrefs(ctx, func(ctx context.Context) (*types.Preferences, error) {
		return s.api.UpdateIntolerances(ctx, intolerances)
	}, true)
}

func (s *SessionStore) applyPrefs(ctx context.Context, call func(context.Context) (*types.Preferences, error), final bool) error {
	if err := s.requireUser(); err != nil {
		return err
	}
	prefs, err := call(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.prefs = prefs
	if final {
		s.onboarding = false
	}
	s.mu.Unlock()
	s.persistPrefs(ctx)
	s.notify()
	return nil
}

// Logout revokes the server-side session best-effort, signs out of the
// identity provider, clears both cache tiers and resets to unauthenticated.
func (s *SessionStore) Logout(ctx context.Context) error {
	if err := s.requireUser(); err != nil {
		return err
	}

	// Failure to reach the server must not block local cleanup.
	if err := s.api.Logout(ctx); err != nil {
		log.Printf("[Session] server-side logout failed: %v", err)
	}
	if err := s.identity.SignOut(ctx); err != nil {
		log.Printf("[Session] identity provider sign-out failed: %v", err)
	}

	s.cleanup(ctx)
	return nil
}

// DeleteAccount destroys the account server-side, then performs the same
// full cleanup as logout.
func (s *SessionStore) DeleteAccount(ctx context.Context) error {
	if err := s.requireUser(); err != nil {
		return err
	}
	if err := s.api.DeleteAccount(ctx); err != nil {
		return err
	}
	if err := s.identity.SignOut(ctx); err != nil {
		log.Printf("[Session] identity provider sign-out failed: %v", err)
	}

	s.cleanup(ctx)
	return nil
}

func (s *SessionStore) cleanup(ctx context.Context) {
	if err := s.creds.Clear(ctx); err != nil {
		log.Printf("[Session] failed to clear credentials: %v", err)
	}
	if err := s.secure.Delete(ctx, cache.KeyUser); err != nil {
		log.Printf("[Session] failed to clear cached user: %v", err)
	}
	if err := s.snapshots.Delete(ctx, cache.KeyPreferences); err != nil {
		log.Printf("[Session] failed to clear cached preferences: %v", err)
	}

	s.mu.Lock()
	s.user = nil
	s.prefs = nil
	s.onboarding = false
	s.reset = nil
	s.mu.Unlock()
	s.notify()
}

// SendPasswordResetCode starts the reset sub-flow and opens a local reset
// session keyed by email.
func (s *SessionStore) SendPasswordResetCode(ctx context.Context, email string) error {
	if err := s.api.SendPasswordResetCode(ctx, email); err != nil {
		return err
	}
	s.mu.Lock()
	s.reset = &resetSession{email: email}
	s.mu.Unlock()
	return nil
}

// VerifyPasswordResetCode checks the emailed code against the open reset
// session.
func (s *SessionStore) VerifyPasswordResetCode(ctx context.Context, code string) error {
	s.mu.Lock()
	reset := s.reset
	s.mu.Unlock()
	if reset == nil {
		return apperr.New(apperr.Precondition, "", "no password reset in progress")
	}

	if err := s.api.VerifyPasswordResetCode(ctx, reset.email, code); err != nil {
		return err
	}

	s.mu.Lock()
	if s.reset != nil {
		s.reset.code = code
		s.reset.verified = true
	}
	s.mu.Unlock()
	return nil
}

// ResetPassword completes the sub-flow with the verified code and discards
// the reset session.
func (s *SessionStore) ResetPassword(ctx context.Context, newPassword string) error {
	s.mu.Lock()
	reset := s.reset
	s.mu.Unlock()
	if reset == nil || !reset.verified {
		return apperr.New(apperr.Precondition, "", "reset code not verified")
	}

	if err := s.api.ResetPassword(ctx, reset.email, reset.code, newPassword); err != nil {
		return err
	}

	s.mu.Lock()
	s.reset = nil
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) requireUser() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return apperr.New(apperr.NoUser, "", "no user signed in")
	}
	return nil
}

// Cache persistence is best-effort: a failed write only loses the next
// offline start, so it is logged and swallowed.

func (s *SessionStore) persistUser(ctx context.Context) {
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()
	if user == nil {
		return
	}
	data, err := json.Marshal(user)
	if err != nil {
		log.Printf("[Session] failed to encode user: %v", err)
		return
	}
	if err := s.secure.Set(ctx, cache.KeyUser, string(data)); err != nil {
		log.Printf("[Session] failed to persist user: %v", err)
	}
}

func (s *SessionStore) persistPrefs(ctx context.Context) {
	s.mu.Lock()
	prefs := s.prefs
	s.mu.Unlock()
	if prefs == nil {
		return
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		log.Printf("[Session] failed to encode preferences: %v", err)
		return
	}
	if err := s.snapshots.Set(ctx, cache.KeyPreferences, data); err != nil {
		log.Printf("[Session] failed to persist preferences: %v", err)
	}
}
