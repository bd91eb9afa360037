package session

import "testing"

func TestCoinsFor(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    int
	}{
		{"negative earns nothing", -5, 0},
		{"zero earns nothing", 0, 0},
		{"just under one unit", 299, 0},
		{"exactly one unit", 300, 1},
		{"ten minutes", 600, 2},
		{"just under three units", 899, 2},
		{"one hour", 3600, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoinsFor(tt.seconds); got != tt.want {
				t.Errorf("CoinsFor(%d) = %d, want %d", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestCoinsForMonotonic(t *testing.T) {
	prev := 0
	for s := 0; s <= 1800; s++ {
		got := CoinsFor(s)
		if got < prev {
			t.Fatalf("CoinsFor(%d) = %d, less than CoinsFor(%d) = %d", s, got, s-1, prev)
		}
		prev = got
	}
}
