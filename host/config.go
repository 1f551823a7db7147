// Package host provisions binding environments for compute units: it loads
// the operator's binding configuration, builds the transports that present
// client certificates during TLS handshakes, and hands the result to the core
// as a bindlike.Environment. The core consumes only the provisioned objects;
// everything certificate- and transport-shaped lives here.
package host

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the operator-facing binding configuration, the analog of a
// wrangler.toml bindings table.
type Config struct {
	MTLSCertificates []MTLSCertificateBinding `yaml:"mtls_certificates" validate:"dive"`
	Services         []ServiceBinding         `yaml:"services" validate:"dive"`
	Vars             map[string]string        `yaml:"vars"`
}

// MTLSCertificateBinding maps a binding name to a provisioned client
// certificate. The certificate is presented during TLS handshakes for every
// fetch issued through the binding.
type MTLSCertificateBinding struct {
	Binding     string `yaml:"binding" validate:"required"`
	Certificate string `yaml:"certificate" validate:"required"` // PEM certificate path
	Key         string `yaml:"key" validate:"required"`         // PEM private key path

	// CA optionally pins the roots used to verify the server, for upstreams
	// with private PKI.
	CA string `yaml:"ca"`
}

// ServiceBinding maps a binding name to an upstream base URL. Fetches through
// the binding keep their path and query but are issued against the upstream.
type ServiceBinding struct {
	Binding  string `yaml:"binding" validate:"required"`
	Upstream string `yaml:"upstream" validate:"required,url"`
}

// Load reads and validates a binding configuration. Unknown fields are
// rejected: a typo'd key in operator config should fail loudly, not silently
// provision nothing.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and rejects duplicate binding names.
// Binding names are exact-match identifiers; two bindings with one name would
// make resolution ambiguous.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	seen := make(map[string]bool)
	claim := func(name string) error {
		if seen[name] {
			return fmt.Errorf("binding %q is declared more than once", name)
		}
		seen[name] = true
		return nil
	}
	for _, mc := range c.MTLSCertificates {
		if err := claim(mc.Binding); err != nil {
			return err
		}
	}
	for _, svc := range c.Services {
		if err := claim(svc.Binding); err != nil {
			return err
		}
	}
	for name := range c.Vars {
		if name == "" {
			return fmt.Errorf("vars contains an empty binding name")
		}
		if err := claim(name); err != nil {
			return err
		}
	}
	return nil
}

// certificatePaths returns every filesystem path the config references, for
// the reloader's watch list.
func (c *Config) certificatePaths() []string {
	var paths []string
	for _, mc := range c.MTLSCertificates {
		paths = append(paths, mc.Certificate, mc.Key)
		if mc.CA != "" {
			paths = append(paths, mc.CA)
		}
	}
	return paths
}
