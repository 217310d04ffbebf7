package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arloliu/readpack/format"
)

const (
	exitFailure        = 1
	exitBadCompression = 2
)

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

// copyArgs is the positional form <input> <output> [--VBZ | --uncompressed].
type copyArgs struct {
	input  string
	output string
	signal format.SignalCompression
	// ignored holds arguments past the compression flag.
	ignored []string
}

func parseCopyArgs(args []string) (copyArgs, error) {
	switch len(args) {
	case 0:
		return copyArgs{}, &exitError{code: exitFailure, err: errors.New("No input file specified")} //nolint: stylecheck
	case 1:
		return copyArgs{}, &exitError{code: exitFailure, err: errors.New("No output file specified")} //nolint: stylecheck
	}

	a := copyArgs{
		input:  args[0],
		output: args[1],
		signal: format.SignalVBZ,
	}

	if len(args) >= 3 {
		switch {
		case strings.HasPrefix(args[2], "--VBZ"):
			a.signal = format.SignalVBZ
		case strings.HasPrefix(args[2], "--uncompressed"):
			a.signal = format.SignalUncompressed
		default:
			return copyArgs{}, &exitError{
				code: exitBadCompression,
				err:  fmt.Errorf("Incorrect compression method %q, expected --VBZ or --uncompressed", args[2]), //nolint: stylecheck
			}
		}
	}

	if len(args) > 3 {
		a.ignored = args[3:]
	}

	return a, nil
}

// subcommandArity is the number of positional arguments each subcommand takes.
var subcommandArity = map[string]int{
	"inspect": 1,
	"version": 0,
}

// subcommandFlags maps the flags subcommands accept to whether the value
// may be given as the next argument.
var subcommandFlags = map[string]bool{
	"--config": true,
	"--json":   false,
	"--help":   false,
	"-h":       false,
}

// isSubcommandCall reports whether args invoke a subcommand or the help that
// lists them. An input file
// named like a subcommand is copied when more positional arguments follow
// than the subcommand accepts, e.g. "version out.readpack".
func isSubcommandCall(args []string) bool {
	if len(args) == 0 {
		return false
	}
	if args[0] == "-h" || args[0] == "--help" {
		return true
	}
	arity, ok := subcommandArity[args[0]]
	if !ok {
		return false
	}

	positional := 0
	for i := 1; i < len(args); i++ {
		name, _, hasValue := strings.Cut(args[i], "=")
		takesValue, isFlag := subcommandFlags[name]
		switch {
		case !isFlag:
			positional++
		case takesValue && !hasValue:
			i++
		}
	}

	return positional <= arity
}
