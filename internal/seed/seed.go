// Package seed loads YAML fixtures of users, permissions and notes, and exports
// a notebook back to the same format.
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kuitang/notekeeper/internal/auth"
	"github.com/kuitang/notekeeper/internal/notes"
	"github.com/kuitang/notekeeper/internal/obs"
)

// File is the on-disk seed document.
type File struct {
	Users       []User       `yaml:"users,omitempty"`
	Permissions []Permission `yaml:"permissions,omitempty"`
	Notes       []Note       `yaml:"notes,omitempty"`
}

// User is a seeded account. Login logs the user in after creation.
type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Login    bool   `yaml:"login,omitempty"`
}

// Permission is a seeded permission and its members.
type Permission struct {
	Name  string   `yaml:"name"`
	Users []string `yaml:"users,omitempty"`
}

// Note is a seeded note. ID and Created are written on export and ignored on
// load; ids always come from the notebook's factory.
type Note struct {
	ID      int64  `yaml:"id,omitempty"`
	Memo    string `yaml:"memo"`
	Tags    string `yaml:"tags,omitempty"`
	Created string `yaml:"created,omitempty"`
}

// Load decodes a seed document. Unknown keys are rejected.
func Load(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &f, nil
}

// LoadFile reads and decodes the seed document at path.
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer fh.Close()
	return Load(fh)
}

// Apply creates users, then permissions, then notes. The first failure aborts
// and is returned wrapped with the entry that caused it.
func (f *File) Apply(authn *auth.Authenticator, authz *auth.Authorizer, nb *notes.Notebook) error {
	for _, u := range f.Users {
		if err := authn.AddUser(u.Username, u.Password); err != nil {
			return fmt.Errorf("seed user %q: %w", u.Username, err)
		}
		if u.Login {
			if err := authn.Login(u.Username, u.Password); err != nil {
				return fmt.Errorf("seed login %q: %w", u.Username, err)
			}
		}
	}

	for _, p := range f.Permissions {
		if err := authz.AddPermission(p.Name); err != nil {
			return fmt.Errorf("seed permission %q: %w", p.Name, err)
		}
		for _, username := range p.Users {
			if err := authz.PermitUser(p.Name, username); err != nil {
				return fmt.Errorf("seed permit %q to %q: %w", p.Name, username, err)
			}
		}
	}

	for _, n := range f.Notes {
		nb.NewNote(n.Memo, n.Tags)
	}

	obs.Pkg("seed").Info("seed applied",
		"users", len(f.Users),
		"permissions", len(f.Permissions),
		"notes", len(f.Notes))
	return nil
}

// FromNotebook builds a seed document holding the notebook's notes.
// Accounts are not exported because passwords are stored only as digests.
func FromNotebook(nb *notes.Notebook) *File {
	all := nb.Notes()
	f := &File{Notes: make([]Note, 0, len(all))}
	for _, n := range all {
		f.Notes = append(f.Notes, Note{
			ID:      n.ID,
			Memo:    n.Memo,
			Tags:    n.Tags,
			Created: n.CreationDate.Format(time.DateOnly),
		})
	}
	return f
}

// Export writes the notebook to w as a seed document.
func Export(nb *notes.Notebook, w io.Writer) error {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(FromNotebook(nb)); err != nil {
		return fmt.Errorf("encode seed: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("encode seed: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
