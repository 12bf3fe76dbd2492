package policy

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// UploadPolicy is the declarative upload acceptance policy loaded from
// the embedded YAML file.
type UploadPolicy struct {
	// MaxUploadBytes caps a single upload's declared size.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// AllowedMimeTypes lists the accepted content types. An empty list
	// accepts everything.
	AllowedMimeTypes []string `yaml:"allowed_mime_types"`
}

// Registry holds the active upload policy
type Registry struct {
	policy UploadPolicy
	mu     sync.RWMutex
}

// NewRegistry creates a registry and loads the embedded policy file
func NewRegistry() (*Registry, error) {
	r := &Registry{}
	if err := r.loadPolicyFile("upload"); err != nil {
		return nil, fmt.Errorf("failed to load upload policy: %w", err)
	}
	return r, nil
}

// loadPolicyFile loads a policy YAML file by base name
func (r *Registry) loadPolicyFile(name string) error {
	filename := fmt.Sprintf("config/%s.yaml", name)
	data, err := configFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var p UploadPolicy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}

	r.mu.Lock()
	r.policy = p
	r.mu.Unlock()

	return nil
}

// Upload returns the active upload policy
func (r *Registry) Upload() UploadPolicy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.policy
}

// Allows reports whether the policy accepts the given mime type.
func (p UploadPolicy) Allows(mimeType string) bool {
	if len(p.AllowedMimeTypes) == 0 {
		return true
	}
	for _, allowed := range p.AllowedMimeTypes {
		if allowed == mimeType {
			return true
		}
	}
	return false
}
