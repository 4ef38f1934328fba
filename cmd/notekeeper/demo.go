package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/kuitang/notekeeper/internal/obs"
)

// demoScript walks through notes, search, and the account and permission
// checks, including the failures each one can report.
const demoScript = `
# notes
note "Hello World" first
note "Hello Again" second
search Hello
search World
memo 1 "Hi World"
search Hello
tags 1 second
search second
memo 99 "nobody home"

# accounts
adduser capn_Book 12345
adduser capn_Book 12345
adduser mate abc
login nobody 12345
login capn_Book wrong
status capn_Book
login capn_Book 12345
status capn_Book

# permissions
addperm paint
addperm paint
check paint capn_Book
permit paint capn_Book
check paint capn_Book
members paint
logout capn_Book
check paint capn_Book
`

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted session showing every command",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig("")
		if err != nil {
			return err
		}
		cfg.SeedFile = ""
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.close()

		sh := newShell(a, cmd.OutOrStdout(), cmd.OutOrStdout())
		sh.echo = true
		return sh.run(obs.NewSession(cmd.Context()), strings.NewReader(demoScript))
	},
}
