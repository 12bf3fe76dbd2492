package policy

import "testing"

func TestRegistryLoadsEmbeddedPolicy(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	policy := registry.Upload()
	if policy.MaxUploadBytes != 50<<20 {
		t.Errorf("MaxUploadBytes = %d, want %d", policy.MaxUploadBytes, 50<<20)
	}
	if len(policy.AllowedMimeTypes) == 0 {
		t.Fatal("expected at least one allowed mime type")
	}
}

func TestUploadPolicyAllows(t *testing.T) {
	policy := UploadPolicy{AllowedMimeTypes: []string{"application/pdf", "image/png"}}

	tests := []struct {
		mime string
		want bool
	}{
		{"application/pdf", true},
		{"image/png", true},
		{"application/x-msdownload", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := policy.Allows(tt.mime); got != tt.want {
			t.Errorf("Allows(%q) = %v, want %v", tt.mime, got, tt.want)
		}
	}

	open := UploadPolicy{}
	if !open.Allows("anything/at-all") {
		t.Error("an empty allow list should accept everything")
	}
}
