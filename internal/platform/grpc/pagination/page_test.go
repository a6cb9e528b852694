package pagination

import (
	"errors"
	"testing"
)

func TestClampPageSize(t *testing.T) {
	cfg := PageSizeConfig{Default: 20, Max: 100}
	tests := []struct {
		in, want int
	}{
		{0, 20},
		{-3, 20},
		{7, 7},
		{500, 100},
	}
	for _, tt := range tests {
		if got := ClampPageSize(tt.in, cfg); got != tt.want {
			t.Errorf("ClampPageSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if got := ClampPageSize(0, PageSizeConfig{}); got != 1 {
		t.Errorf("ClampPageSize with empty config = %d, want 1", got)
	}
}

func TestNormalizeOrderBy(t *testing.T) {
	cfg := OrderByConfig{Default: "created_at", Allowed: []string{"created_at", "name"}}
	for in, want := range map[string]string{"": "created_at", " Name ": "name", "created_at": "created_at"} {
		got, err := NormalizeOrderBy(in, cfg)
		if err != nil || got != want {
			t.Errorf("NormalizeOrderBy(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := NormalizeOrderBy("players", cfg); !errors.Is(err, ErrInvalidOrderBy) {
		t.Errorf("expected ErrInvalidOrderBy, got %v", err)
	}
}
