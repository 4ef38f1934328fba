package main

import (
	"strings"
	"unicode"

	"github.com/kuitang/notekeeper/internal/errs"
)

// splitArgs splits a shell line on whitespace. A double-quoted run is one
// argument and may be empty; there are no escapes.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case unicode.IsSpace(r) && !inQuote:
			if started {
				args = append(args, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, errs.New(errs.InvalidArgument, "unterminated quote")
	}
	if started {
		args = append(args, current.String())
	}
	return args, nil
}
