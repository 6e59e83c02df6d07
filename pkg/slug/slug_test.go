package slug

import "testing"

func TestMake(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Silk Saris", "silk-saris"},
		{"Kanchipuram  &  Banarasi", "kanchipuram-banarasi"},
		{"--Wedding--", "wedding"},
		{"Cotton", "cotton"},
		{"  ", ""},
		{"100% Silk!", "100-silk"},
		{"UPPER case MIX", "upper-case-mix"},
	}
	for _, tc := range cases {
		if got := Make(tc.in); got != tc.want {
			t.Errorf("Make(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
