// Command pagepress renders Markdown, HTML or a URL to PDF or PNG through a
// headless Chromium and writes a metadata sidecar next to the artifact.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// A missing .env is fine; variables already set are never overridden.
	_ = godotenv.Load()

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if wantsVerbose(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// wantsVerbose reports whether -v or --verbose appears before any "--".
func wantsVerbose(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--":
			return false
		case "-v", "--verbose", "--verbose=true":
			return true
		}
	}
	return false
}

// runMain dispatches to a command and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitFailure
	}

	cmd, rest := args[1], args[2:]
	var err error

	switch cmd {
	case "convert":
		return runConvertCmd(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "templates":
		err = runTemplates(rest, env)
	case "presets":
		err = runPresets(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "pagepress %s\n", Version)
	case "help", "-h", "--help":
		runHelp(rest, env)
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitFailure
	}

	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		return fail(env, err)
	}
	return ExitSuccess
}

// runConvertCmd parses convert flags, sets up logging and signal handling,
// and runs the conversion.
func runConvertCmd(args []string, env *Environment) int {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		return fail(env, err)
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	logger := newLogger(env.Stderr, levelFor(flags.common))
	ctx = withLogger(ctx, logger)

	if err := runConvert(ctx, positional, flags, env); err != nil {
		return fail(env, err)
	}
	return ExitSuccess
}

// fail prints err with its hints and returns the failure exit code.
func fail(env *Environment, err error) int {
	fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	return ExitFailure
}
