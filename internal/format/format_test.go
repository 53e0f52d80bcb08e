package format

import "testing"

func TestBytes(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{1, "1.00 B"},
		{1023, "1023.00 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{16 * 1024 * 1024 * 1024, "16.00 GB"},
		{3 * 512 * 1024 * 1024 * 1024, "1.50 TB"},
		{2048 * 1024 * 1024 * 1024 * 1024, "2048.00 TB"},
	}
	for _, tc := range cases {
		if got := Bytes(tc.in); got != tc.want {
			t.Fatalf("Bytes(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPercentDoesNotClamp(t *testing.T) {
	if got := Percent(45.4); got != "45%" {
		t.Fatalf("unexpected percent: %s", got)
	}
	if got := Percent(120); got != "120%" {
		t.Fatalf("expected out-of-range value to pass through, got %s", got)
	}
	if got := Percent(-3); got != "-3%" {
		t.Fatalf("expected negative value to pass through, got %s", got)
	}
}
