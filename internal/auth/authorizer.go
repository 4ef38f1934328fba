package auth

import (
	"sort"
	"sync"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"

	"github.com/kuitang/notekeeper/internal/obs"
)

// Authorizer maps permission names to the set of users holding them.
// Login state and username existence are read from the Authenticator.
type Authorizer struct {
	mu            sync.RWMutex
	authenticator *Authenticator
	permissions   map[string]*treeset.Set
}

// NewAuthorizer creates an authorizer backed by authenticator.
func NewAuthorizer(authenticator *Authenticator) *Authorizer {
	return &Authorizer{
		authenticator: authenticator,
		permissions:   make(map[string]*treeset.Set),
	}
}

// AddPermission creates a new, empty permission.
func (z *Authorizer) AddPermission(name string) error {
	z.mu.Lock()
	defer z.mu.Unlock()

	if _, exists := z.permissions[name]; exists {
		return &Error{Kind: KindPermission, Permission: name, Detail: "permission exists"}
	}
	z.permissions[name] = treeset.NewWith(utils.StringComparator)

	obs.Pkg("auth").Info("permission added", "permission", name)
	return nil
}

// PermitUser grants a permission to an existing user. Granting twice is a no-op.
func (z *Authorizer) PermitUser(name, username string) error {
	z.mu.Lock()
	defer z.mu.Unlock()

	members, exists := z.permissions[name]
	if !exists {
		return &Error{Kind: KindPermission, Permission: name, Detail: "permission does not exist"}
	}
	if !z.authenticator.Exists(username) {
		return &Error{Kind: KindInvalidUsername, Username: username, Permission: name}
	}
	members.Add(username)

	obs.Pkg("auth").Info("permission granted", "permission", name, "username", username)
	return nil
}

// CheckPermission returns nil when username is logged in and holds the permission.
// Login state is checked first, so a logged-out user gets ErrNotLoggedIn even for
// a permission that does not exist.
func (z *Authorizer) CheckPermission(name, username string) error {
	if !z.authenticator.IsLoggedIn(username) {
		return &Error{Kind: KindNotLoggedIn, Username: username, Permission: name}
	}

	z.mu.RLock()
	defer z.mu.RUnlock()

	members, exists := z.permissions[name]
	if !exists {
		return &Error{Kind: KindPermission, Permission: name, Detail: "permission does not exist"}
	}
	if !members.Contains(username) {
		return &Error{Kind: KindNotPermitted, Username: username, Permission: name}
	}
	return nil
}

// Members returns the users holding a permission, sorted.
func (z *Authorizer) Members(name string) ([]string, error) {
	z.mu.RLock()
	defer z.mu.RUnlock()

	members, exists := z.permissions[name]
	if !exists {
		return nil, &Error{Kind: KindPermission, Permission: name, Detail: "permission does not exist"}
	}
	out := make([]string, 0, members.Size())
	for _, v := range members.Values() {
		out = append(out, v.(string))
	}
	return out, nil
}

// Permissions returns all permission names, sorted.
func (z *Authorizer) Permissions() []string {
	z.mu.RLock()
	defer z.mu.RUnlock()

	names := make([]string, 0, len(z.permissions))
	for name := range z.permissions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
