package main

import (
	"errors"
	"io"
	"slices"
	"testing"

	flag "github.com/spf13/pflag"
)

// ---------------------------------------------------------------------------
// TestParseConvertFlags
// ---------------------------------------------------------------------------

func TestParseConvertFlags_Defaults(t *testing.T) {
	t.Parallel()

	f, args, err := parseConvertFlags(nil, io.Discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
	if !f.output.keepHTML {
		t.Error("keep-html should default to true")
	}
	if len(f.set) != 0 {
		t.Errorf("set = %v, want empty when no flag is given", f.set)
	}
}

func TestParseConvertFlags_Values(t *testing.T) {
	t.Parallel()

	f, args, err := parseConvertFlags([]string{
		"-i", "doc.md", "-o", "doc.png",
		"--preset", "og", "--mode", "measure", "--device-scale-factor", "1.5",
		"--allow-net", "https://cdn.example.com/", "--allow-net", "https://fonts.example.com/",
		"--timeout-ms", "5000", "--safe", "--no-html", "-v",
		"extra",
	}, io.Discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.source.input != "doc.md" || f.source.output != "doc.png" {
		t.Errorf("source = %+v", f.source)
	}
	if f.capture.preset != "og" || f.capture.mode != "measure" || f.capture.deviceScaleFactor != 1.5 {
		t.Errorf("capture = %+v", f.capture)
	}
	wantNet := []string{"https://cdn.example.com/", "https://fonts.example.com/"}
	if !slices.Equal(f.navigation.allowNet, wantNet) {
		t.Errorf("allowNet = %v, want %v", f.navigation.allowNet, wantNet)
	}
	if f.navigation.timeoutMs != 5000 || !f.navigation.safe {
		t.Errorf("navigation = %+v", f.navigation)
	}
	if !f.output.noHTML || !f.common.verbose {
		t.Error("--no-html and -v should be set")
	}
	for _, name := range []string{"input", "output", "preset", "allow-net", "safe", "no-html", "verbose"} {
		if !f.set[name] {
			t.Errorf("set[%q] = false, want true", name)
		}
	}
	if f.set["template"] {
		t.Error("set[template] = true for a flag that was not given")
	}
	if !slices.Equal(args, []string{"extra"}) {
		t.Errorf("args = %v, want [extra]", args)
	}
}

func TestParseConvertFlags_Errors(t *testing.T) {
	t.Parallel()

	if _, _, err := parseConvertFlags([]string{"--help"}, io.Discard); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("--help error = %v, want flag.ErrHelp", err)
	}
	if _, _, err := parseConvertFlags([]string{"--timeout-ms", "soon"}, io.Discard); err == nil {
		t.Error("expected error for a non-numeric timeout")
	}
	if _, _, err := parseConvertFlags([]string{"--nope"}, io.Discard); err == nil {
		t.Error("expected error for an unknown flag")
	}
}
