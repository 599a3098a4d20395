package memory

import "testing"

func TestIsDurableIdentity(t *testing.T) {
	tests := []struct {
		name     string
		identity string
		want     bool
	}{
		{"canonical uuid", "11111111-1111-1111-1111-111111111111", true},
		{"random uuid", "a3bb189e-8bf9-3888-9912-ace4e6543002", true},
		{"uppercase uuid", "A3BB189E-8BF9-3888-9912-ACE4E6543002", true},
		{"empty", "", false},
		{"guest session", "session-abc", false},
		{"uuid without hyphens", "a3bb189e8bf938889912ace4e6543002", false},
		{"braced uuid", "{a3bb189e-8bf9-3888-9912-ace4e6543002}", false},
		{"wrong length", "11111111-1111-1111-1111-11111111111", false},
		{"right length not uuid", "zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDurableIdentity(tt.identity); got != tt.want {
				t.Errorf("IsDurableIdentity(%q) = %v, want %v", tt.identity, got, tt.want)
			}
		})
	}
}
