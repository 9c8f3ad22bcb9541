package pagepress

import (
	"context"
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRequestFilter
// ---------------------------------------------------------------------------

func TestRequestFilter(t *testing.T) {
	t.Parallel()

	const target = "https://site.example/page"
	allow := []string{"https://cdn.example/", "https://fonts.example/css"}

	tests := []struct {
		name     string
		allowNet []string
		target   string
		safe     bool
		url      string
		want     bool
	}{
		{"listed prefix", allow, target, false, "https://cdn.example/app.css", true},
		{"second prefix", allow, target, false, "https://fonts.example/css2?family=Inter", true},
		{"unlisted host", allow, target, false, "https://tracker.example/pixel.gif", false},
		{"prefix is not a substring match", allow, target, false, "https://evil.example/?https://cdn.example/", false},
		{"navigation target", allow, target, false, target, true},
		{"data URL", allow, target, false, "data:image/png;base64,AAAA", true},
		{"about blank", allow, target, false, "about:blank", true},
		{"file URL", allow, target, false, "file:///tmp/a.png", true},
		{"no whitelist passes", nil, target, false, "https://anything.example/", true},
		{"safe blocks http", nil, "", true, "http://site.example/x.js", false},
		{"safe blocks listed https", allow, "", true, "https://cdn.example/app.css", false},
		{"safe keeps data", nil, "", true, "data:text/plain,hi", true},
		{"safe keeps snapshot", nil, "file:///out/page.html", true, "file:///out/page.html", true},
		{"scheme check is case-insensitive", nil, "", true, "HTTPS://site.example/", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := requestFilter(tt.allowNet, tt.target, tt.safe)(tt.url)
			if got != tt.want {
				t.Errorf("allow(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestBrowserFinder
// ---------------------------------------------------------------------------

func fakeFinder(env map[string]string, lookPath string, existing ...string) browserFinder {
	return browserFinder{
		Getenv: func(k string) string { return env[k] },
		LookPath: func() (string, bool) {
			return lookPath, lookPath != ""
		},
		Exists: func(p string) bool {
			for _, e := range existing {
				if e == p {
					return true
				}
			}
			return false
		},
	}
}

func TestBrowserFinder_Find(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		finder  browserFinder
		want    string
		wantErr error
	}{
		{
			name:   "env binary exists",
			finder: fakeFinder(map[string]string{"ROD_BROWSER_BIN": "/opt/chrome"}, "/usr/bin/chromium", "/opt/chrome"),
			want:   "/opt/chrome",
		},
		{
			name:   "env binary missing falls back to lookup",
			finder: fakeFinder(map[string]string{"ROD_BROWSER_BIN": "/opt/chrome"}, "/usr/bin/chromium"),
			want:   "/usr/bin/chromium",
		},
		{
			name:   "lookup only",
			finder: fakeFinder(nil, "/usr/bin/google-chrome"),
			want:   "/usr/bin/google-chrome",
		},
		{
			name:    "nothing installed",
			finder:  fakeFinder(nil, ""),
			wantErr: ErrBackendUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.finder.find()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("find() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBrowserFinder_NoSandbox(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{"plain desktop", nil, false},
		{"CI", map[string]string{"CI": "true"}, true},
		{"CI other value", map[string]string{"CI": "1"}, false},
		{"container binary", map[string]string{"ROD_BROWSER_BIN": "/usr/bin/chromium"}, true},
		{"explicit opt-out", map[string]string{"ROD_NO_SANDBOX": "1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fakeFinder(tt.env, "").noSandbox(); got != tt.want {
				t.Errorf("noSandbox() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestBackends - Unavailable Engine
// ---------------------------------------------------------------------------

func TestBackends_UnavailableWithoutBrowser(t *testing.T) {
	t.Parallel()

	backends := []Backend{
		&RodBackend{finder: fakeFinder(nil, "")},
		&ChromedpBackend{finder: fakeFinder(nil, "")},
	}

	for _, b := range backends {
		t.Run(b.Name(), func(t *testing.T) {
			t.Parallel()

			_, err := b.Launch(context.Background())
			if !errors.Is(err, ErrBackendUnavailable) {
				t.Errorf("Launch() error = %v, want ErrBackendUnavailable", err)
			}
		})
	}
}

func TestBackends_LaunchHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&RodBackend{finder: fakeFinder(nil, "/usr/bin/chromium")}).Launch(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Launch() error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// TestNewBackend
// ---------------------------------------------------------------------------

func TestNewBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		engine   string
		wantName string
		wantErr  error
	}{
		{"default", "", EngineRod, nil},
		{"rod", "rod", EngineRod, nil},
		{"chromedp", "chromedp", EngineChromedp, nil},
		{"case-insensitive", "ChromeDP", EngineChromedp, nil},
		{"unknown", "playwright", "", ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBackend(tt.engine)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", b.Name(), tt.wantName)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWaitUntil
// ---------------------------------------------------------------------------

func TestWaitUntil_LifecycleEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wait WaitUntil
		want string
	}{
		{WaitLoad, "load"},
		{WaitDOMContentLoaded, "DOMContentLoaded"},
		{WaitNetworkIdle, "networkIdle"},
	}

	for _, tt := range tests {
		t.Run(string(tt.wait), func(t *testing.T) {
			t.Parallel()

			if got := tt.wait.lifecycleEvent(); got != tt.want {
				t.Errorf("lifecycleEvent() = %q, want %q", got, tt.want)
			}
			if !tt.wait.valid() {
				t.Errorf("%q reported invalid", tt.wait)
			}
		})
	}
}
