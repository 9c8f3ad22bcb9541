package main

import (
	"io"
	"os"
	"time"

	pagepress "github.com/alnah/go-pagepress"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	Stdin   io.Reader
	Getenv  func(string) string
	Environ func() []string
	// Backend returns the browser engine registered under name.
	Backend func(name string) (pagepress.Backend, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Stdin:   os.Stdin,
		Getenv:  os.Getenv,
		Environ: os.Environ,
		Backend: pagepress.NewBackend,
	}
}
