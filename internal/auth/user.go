package auth

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kuitang/notekeeper/internal/obs"
)

// DefaultMinPasswordLength is the shortest password AddUser accepts.
const DefaultMinPasswordLength = 5

// User represents a registered account.
type User struct {
	Username       string
	PasswordDigest string
	LoggedIn       bool
}

// LoginLimiter throttles login attempts per username.
type LoginLimiter interface {
	Allow(key string) bool
}

// Authenticator maps usernames to users and handles logging in.
type Authenticator struct {
	mu                sync.RWMutex
	users             map[string]*User
	hasher            PasswordHasher
	minPasswordLength int
	limiter           LoginLimiter // nil disables throttling
}

// NewAuthenticator creates an empty authenticator using SHA256Hasher.
func NewAuthenticator() *Authenticator {
	return &Authenticator{
		users:             make(map[string]*User),
		hasher:            SHA256Hasher{},
		minPasswordLength: DefaultMinPasswordLength,
	}
}

// SetHasher replaces the password hasher. Digests already stored are not rehashed,
// so call this before adding users.
func (a *Authenticator) SetHasher(h PasswordHasher) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hasher = h
}

// SetMinPasswordLength changes the minimum accepted password length.
func (a *Authenticator) SetMinPasswordLength(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.minPasswordLength = n
}

// SetLoginLimiter installs a per-username login throttle.
func (a *Authenticator) SetLoginLimiter(l LoginLimiter) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.limiter = l
}

// AddUser registers a new user.
// Returns ErrUsernameAlreadyExists for a duplicate username and
// ErrPasswordTooShort when the password is under the minimum length.
func (a *Authenticator) AddUser(username, password string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.users[username]; exists {
		return &Error{Kind: KindUsernameAlreadyExists, Username: username}
	}
	if len(password) < a.minPasswordLength {
		return &Error{
			Kind:     KindPasswordTooShort,
			Username: username,
			Detail:   fmt.Sprintf("must be at least %d characters", a.minPasswordLength),
		}
	}

	digest, err := a.hasher.HashPassword(username, password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	a.users[username] = &User{Username: username, PasswordDigest: digest}

	obs.Pkg("auth").Info("user added", "username", username)
	return nil
}

// Login marks the user as logged in when the password matches.
// Returns ErrInvalidUsername for unknown users and ErrInvalidPassword, carrying
// a snapshot of the user, for a wrong password. A failed login never changes
// the user's login state.
func (a *Authenticator) Login(username, password string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	user, ok := a.users[username]
	if !ok {
		obs.Pkg("auth").Warn("login for unknown user", "username", username)
		return &Error{Kind: KindInvalidUsername, Username: username}
	}
	if a.limiter != nil && !a.limiter.Allow(username) {
		obs.Pkg("auth").Warn("login throttled", "username", username)
		return &Error{Kind: KindTooManyAttempts, Username: username}
	}
	if !a.hasher.VerifyPassword(username, password, user.PasswordDigest) {
		obs.Pkg("auth").Warn("login with wrong password", "username", username)
		snapshot := *user
		return &Error{Kind: KindInvalidPassword, Username: username, User: &snapshot}
	}

	user.LoggedIn = true
	obs.Pkg("auth").Info("user logged in", "username", username)
	return nil
}

// Logout clears the user's login state.
func (a *Authenticator) Logout(username string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	user, ok := a.users[username]
	if !ok {
		return &Error{Kind: KindInvalidUsername, Username: username}
	}
	user.LoggedIn = false
	return nil
}

// IsLoggedIn reports whether username exists and is logged in.
func (a *Authenticator) IsLoggedIn(username string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	user, ok := a.users[username]
	return ok && user.LoggedIn
}

// Exists reports whether username is registered.
func (a *Authenticator) Exists(username string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, ok := a.users[username]
	return ok
}

// User returns a copy of the stored user.
func (a *Authenticator) User(username string) (*User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	user, ok := a.users[username]
	if !ok {
		return nil, false
	}
	snapshot := *user
	return &snapshot, true
}

// Usernames returns all registered usernames in sorted order.
func (a *Authenticator) Usernames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, 0, len(a.users))
	for name := range a.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
