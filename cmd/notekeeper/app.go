package main

import (
	"fmt"

	"github.com/kuitang/notekeeper/internal/auth"
	"github.com/kuitang/notekeeper/internal/config"
	"github.com/kuitang/notekeeper/internal/errs"
	"github.com/kuitang/notekeeper/internal/notes"
	"github.com/kuitang/notekeeper/internal/obs"
	"github.com/kuitang/notekeeper/internal/ratelimit"
	"github.com/kuitang/notekeeper/internal/seed"
)

// app holds the in-memory state one notekeeper process works on.
type app struct {
	authn    *auth.Authenticator
	authz    *auth.Authorizer
	notebook *notes.Notebook
	limiter  *ratelimit.RateLimiter
}

// newApp builds the registries from cfg and applies the seed file, if any.
// Call close when done to stop the limiter's cleanup goroutine.
func newApp(cfg *config.Config) (*app, error) {
	hasher, err := auth.HasherByName(cfg.PasswordHasher)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidArgument, err.Error(), err)
	}

	a := &app{
		authn:    auth.NewAuthenticator(),
		notebook: notes.NewNotebook(notes.NewFactory()),
		limiter:  ratelimit.NewRateLimiter(cfg.LoginRateLimit),
	}
	a.authn.SetHasher(hasher)
	a.authn.SetMinPasswordLength(cfg.MinPasswordLength)
	a.authn.SetLoginLimiter(a.limiter)
	a.authz = auth.NewAuthorizer(a.authn)

	if cfg.SeedFile != "" {
		if err := a.applySeed(cfg.SeedFile); err != nil {
			a.close()
			return nil, err
		}
	}

	obs.Pkg("main").Info("notekeeper ready",
		"hasher", cfg.PasswordHasher,
		"users", len(a.authn.Usernames()),
		"notes", a.notebook.Len())
	return a, nil
}

func (a *app) applySeed(path string) error {
	f, err := seed.LoadFile(path)
	if err != nil {
		return errs.Wrap(errs.InvalidArgument, err.Error(), err)
	}
	if err := f.Apply(a.authn, a.authz, a.notebook); err != nil {
		return fmt.Errorf("apply %s: %w", path, err)
	}
	return nil
}

func (a *app) close() {
	a.limiter.Stop()
}
