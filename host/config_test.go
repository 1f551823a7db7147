package host

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bindlike.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
mtls_certificates:
  - binding: CERT
    certificate: /etc/bindlike/client.pem
    key: /etc/bindlike/client.key
services:
  - binding: BACKEND
    upstream: https://internal.example.com
vars:
  API_HOST: api.example.com
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.MTLSCertificates) != 1 || cfg.MTLSCertificates[0].Binding != "CERT" {
		t.Errorf("mtls_certificates = %+v", cfg.MTLSCertificates)
	}
	if len(cfg.Services) != 1 || cfg.Services[0].Upstream != "https://internal.example.com" {
		t.Errorf("services = %+v", cfg.Services)
	}
	if cfg.Vars["API_HOST"] != "api.example.com" {
		t.Errorf("vars = %+v", cfg.Vars)
	}
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `
mtls_certs:
  - binding: CERT
`)
	if _, err := Load(path); err == nil {
		t.Error("a typo'd top-level key should fail loudly")
	}
}

func TestLoadConfigRejectsMissingFields(t *testing.T) {
	path := writeConfig(t, `
mtls_certificates:
  - binding: CERT
    certificate: /etc/bindlike/client.pem
`)
	if _, err := Load(path); err == nil {
		t.Error("an mTLS binding without a key should be rejected")
	}
}

func TestValidateRejectsDuplicateBindings(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{
			"duplicate across kinds",
			Config{
				MTLSCertificates: []MTLSCertificateBinding{{Binding: "CERT", Certificate: "c.pem", Key: "c.key"}},
				Services:         []ServiceBinding{{Binding: "CERT", Upstream: "https://x.example.com"}},
			},
		},
		{
			"duplicate var",
			Config{
				Services: []ServiceBinding{{Binding: "API", Upstream: "https://x.example.com"}},
				Vars:     map[string]string{"API": "v"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if err == nil {
				t.Fatal("expected a duplicate-binding error")
			}
			if !strings.Contains(err.Error(), "more than once") {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCertificatePaths(t *testing.T) {
	cfg := Config{
		MTLSCertificates: []MTLSCertificateBinding{
			{Binding: "A", Certificate: "a.pem", Key: "a.key", CA: "ca.pem"},
			{Binding: "B", Certificate: "b.pem", Key: "b.key"},
		},
	}
	paths := cfg.certificatePaths()
	if len(paths) != 5 {
		t.Errorf("expected 5 watched paths, got %v", paths)
	}
}
