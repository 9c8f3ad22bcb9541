package pipeline

import "testing"

func TestStripScripts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"inline script", `<p>a</p><script>alert(1)</script><p>b</p>`, "<p>a</p><p>b</p>"},
		{"uppercase tag", `<SCRIPT type="x">evil()</SCRIPT>ok`, "ok"},
		{"multiline body", "<script>\nline1\nline2\n</script>ok", "ok"},
		{"src attribute", `<script src="x.js"></script>ok`, "ok"},
		{"two scripts keep text between", `<script>a</script>mid<script>b</script>`, "mid"},
		{"similar tag untouched", `<scripts>x</scripts>`, `<scripts>x</scripts>`},
		{"no scripts", "<p>plain</p>", "<p>plain</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := StripScripts(tt.input); got != tt.want {
				t.Errorf("StripScripts() = %q, want %q", got, tt.want)
			}
		})
	}
}
