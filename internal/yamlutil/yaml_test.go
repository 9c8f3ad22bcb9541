package yamlutil

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Title string `yaml:"title"`
}

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		data      string
		wantTitle string
		wantErr   error
		anyErr    bool
	}{
		{name: "known field", data: "title: Report\n", wantTitle: "Report"},
		{name: "unknown field ignored", data: "title: Report\nauthor: someone\n", wantTitle: "Report"},
		{name: "empty data", data: "", wantErr: ErrNilData},
		{name: "malformed yaml", data: "title: [unclosed\n", anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got sample
			err := Unmarshal([]byte(tt.data), &got)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Unmarshal() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if tt.anyErr {
				if err == nil {
					t.Fatal("Unmarshal() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal() unexpected error: %v", err)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
		})
	}
}

func TestUnmarshalStrict_RejectsUnknownField(t *testing.T) {
	t.Parallel()

	var got sample
	err := UnmarshalStrict([]byte("title: Report\nauthor: someone\n"), &got)
	if err == nil {
		t.Fatal("UnmarshalStrict() error = nil, want unknown field error")
	}
}

func TestUnmarshal_NilDestination(t *testing.T) {
	t.Parallel()

	if err := Unmarshal([]byte("title: x"), nil); !errors.Is(err, ErrNilDestination) {
		t.Errorf("Unmarshal(nil) error = %v, want %v", err, ErrNilDestination)
	}
}

func TestUnmarshal_InputTooLarge(t *testing.T) {
	t.Parallel()

	data := []byte("title: " + strings.Repeat("x", MaxInputSize))
	var got sample
	if err := Unmarshal(data, &got); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("Unmarshal() error = %v, want %v", err, ErrInputTooLarge)
	}
}
