package joincode

import "testing"

func TestNewShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := New()
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if !Valid(code) {
			t.Fatalf("generated invalid code %q", code)
		}
		seen[code] = true
	}
	// 100 draws from a 36^6 space colliding down to a handful would mean
	// the generator is broken.
	if len(seen) < 95 {
		t.Errorf("expected ~100 distinct codes, got %d", len(seen))
	}
}

func TestValid(t *testing.T) {
	cases := []struct {
		code string
		want bool
	}{
		{"ABC123", true},
		{"ZZZZZZ", true},
		{"abc123", false},
		{"ABC12", false},
		{"ABC1234", false},
		{"ABC-12", false},
		{"", false},
	}
	for _, c := range cases {
		if got := Valid(c.code); got != c.want {
			t.Errorf("Valid(%q) = %v, want %v", c.code, got, c.want)
		}
	}
}
