package auth

import (
	"fmt"

	"github.com/kuitang/notekeeper/internal/errs"
)

// Kind classifies an authentication or authorization failure.
type Kind int

const (
	KindUsernameAlreadyExists Kind = iota + 1
	KindPasswordTooShort
	KindInvalidUsername
	KindInvalidPassword
	KindPermission
	KindNotLoggedIn
	KindNotPermitted
	KindTooManyAttempts
)

func (k Kind) String() string {
	switch k {
	case KindUsernameAlreadyExists:
		return "username already exists"
	case KindPasswordTooShort:
		return "password too short"
	case KindInvalidUsername:
		return "invalid username"
	case KindInvalidPassword:
		return "invalid password"
	case KindPermission:
		return "permission error"
	case KindNotLoggedIn:
		return "not logged in"
	case KindNotPermitted:
		return "not permitted"
	case KindTooManyAttempts:
		return "too many login attempts"
	default:
		return fmt.Sprintf("auth kind %d", int(k))
	}
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrUsernameAlreadyExists = &Error{Kind: KindUsernameAlreadyExists}
	ErrPasswordTooShort      = &Error{Kind: KindPasswordTooShort}
	ErrInvalidUsername       = &Error{Kind: KindInvalidUsername}
	ErrInvalidPassword       = &Error{Kind: KindInvalidPassword}
	ErrPermission            = &Error{Kind: KindPermission}
	ErrNotLoggedIn           = &Error{Kind: KindNotLoggedIn}
	ErrNotPermitted          = &Error{Kind: KindNotPermitted}
	ErrTooManyAttempts       = &Error{Kind: KindTooManyAttempts}
)

// Error is the tagged error returned by Authenticator and Authorizer.
// User is only set for KindInvalidPassword.
type Error struct {
	Kind       Kind
	Username   string
	Permission string
	Detail     string
	User       *User
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	switch {
	case e.Username != "" && e.Permission != "":
		return fmt.Sprintf("%s (user %q, permission %q)", msg, e.Username, e.Permission)
	case e.Username != "":
		return fmt.Sprintf("%s (user %q)", msg, e.Username)
	case e.Permission != "":
		return fmt.Sprintf("%s (permission %q)", msg, e.Permission)
	default:
		return msg
	}
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// ErrorCode maps the kind onto the application error codes.
func (e *Error) ErrorCode() errs.Code {
	switch e.Kind {
	case KindUsernameAlreadyExists:
		return errs.AlreadyExists
	case KindPasswordTooShort:
		return errs.InvalidArgument
	case KindInvalidUsername:
		return errs.NotFound
	case KindInvalidPassword, KindNotLoggedIn:
		return errs.Unauthenticated
	case KindPermission:
		return errs.FailedPrecondition
	case KindNotPermitted:
		return errs.PermissionDenied
	case KindTooManyAttempts:
		return errs.ResourceExhausted
	default:
		return errs.Internal
	}
}
