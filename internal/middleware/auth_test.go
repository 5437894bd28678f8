package middleware

import "testing"

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc.def.ghi", "abc.def.ghi"},
		{"  Bearer abc.def.ghi  ", "abc.def.ghi"},
		{"", ""},
		{"abc.def.ghi", ""},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
	}

	for _, tt := range tests {
		if got := ExtractBearerToken(tt.header); got != tt.want {
			t.Fatalf("ExtractBearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestRoleAllowed(t *testing.T) {
	allowed := []string{"admin", "lead-guide"}

	if !RoleAllowed("admin", allowed) {
		t.Fatal("admin must be allowed")
	}
	if !RoleAllowed("lead-guide", allowed) {
		t.Fatal("lead-guide must be allowed")
	}
	if RoleAllowed("user", allowed) {
		t.Fatal("user must not be allowed")
	}
	if RoleAllowed("", allowed) {
		t.Fatal("an empty role must not be allowed")
	}
	if RoleAllowed("admin", nil) {
		t.Fatal("an empty role set allows nobody")
	}
}
