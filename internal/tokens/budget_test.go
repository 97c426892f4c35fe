package tokens

import (
	"errors"
	"strings"
	"testing"
)

func TestEstimate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"one_char", "x", 1},
		{"three_chars", "abc", 1},
		{"four_chars", "abcd", 1},
		{"five_chars", "abcde", 2},
		{"100_chars", strings.Repeat("x", 100), 25},
		{"unicode_multi_byte", "café", 2}, // é is 2 bytes in UTF-8; total 5 bytes → 2 tokens
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Estimate(tt.text)
			if got != tt.want {
				t.Errorf("Estimate(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestBytes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		tokens int
		want   int
	}{
		{"zero", 0, 0},
		{"negative", -5, 0},
		{"one", 1, 4},
		{"thousand", 1000, 4000},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Bytes(tt.tokens); got != tt.want {
				t.Errorf("Bytes(%d) = %d, want %d", tt.tokens, got, tt.want)
			}
		})
	}
}

func TestContextWindow(t *testing.T) {
	t.Parallel()

	got, err := ContextWindow("gpt-4")
	if err != nil {
		t.Fatalf("ContextWindow(gpt-4): %v", err)
	}
	if got != 8192 {
		t.Errorf("ContextWindow(gpt-4) = %d, want 8192", got)
	}

	_, err = ContextWindow("made-up-model")
	if err == nil {
		t.Fatal("ContextWindow(made-up-model): want error, got nil")
	}
	if !errors.Is(err, ErrUnknownModel) {
		t.Errorf("error should wrap ErrUnknownModel: %v", err)
	}
}

func TestAvailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		model    string
		reserved int
		want     int
		wantErr  bool
	}{
		{"gpt4_default_reserve", "gpt-4", 500, 7692, false},
		{"negative_reserve_treated_as_zero", "gpt-4", -10, 8192, false},
		{"reserve_consumes_window", "gpt-4", 8192, 0, true},
		{"reserve_exceeds_window", "gpt-4", 9000, 0, true},
		{"unknown_model", "nope", 500, 0, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Available(tt.model, tt.reserved)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Available: want error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Available: %v", err)
			}
			if got != tt.want {
				t.Errorf("Available(%q, %d) = %d, want %d", tt.model, tt.reserved, got, tt.want)
			}
		})
	}
}

func TestFits(t *testing.T) {
	t.Parallel()

	if !Fits(strings.Repeat("x", 400), 100) {
		t.Error("400 bytes should fit a 100-token budget exactly")
	}
	if Fits(strings.Repeat("x", 401), 100) {
		t.Error("401 bytes should overflow a 100-token budget")
	}
	if !Fits("", 0) {
		t.Error("empty text should fit a zero budget")
	}
}
