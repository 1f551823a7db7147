package host

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/rs/zerolog"

	"github.com/edgekit/bindlike"
)

// Provision builds a binding environment from the operator configuration.
// Each mTLS binding gets its own transport holding the loaded client
// certificate; each service binding gets a transport pinned to its upstream;
// vars become Text objects. The returned environment is immutable — config
// changes require provisioning a new one (see Reloader).
func Provision(cfg *Config, log zerolog.Logger) (*bindlike.Environment, error) {
	objects := make(map[string]*bindlike.Object)

	for _, mc := range cfg.MTLSCertificates {
		capability, err := provisionMTLS(mc, log)
		if err != nil {
			return nil, err
		}
		objects[mc.Binding] = bindlike.NewObject(bindlike.TypeFetcher, capability)
		log.Info().Str("binding", mc.Binding).Str("type", bindlike.TypeFetcher).Msg("provisioned mTLS certificate binding")
	}

	for _, svc := range cfg.Services {
		upstream, err := url.Parse(svc.Upstream)
		if err != nil {
			return nil, fmt.Errorf("binding %q: invalid upstream: %w", svc.Binding, err)
		}
		capability := newFetchCapability(http.DefaultTransport, upstream,
			log.With().Str("binding", svc.Binding).Logger())
		objects[svc.Binding] = bindlike.NewObject(bindlike.TypeFetcher, capability)
		log.Info().Str("binding", svc.Binding).Str("upstream", svc.Upstream).Msg("provisioned service binding")
	}

	for name, value := range cfg.Vars {
		objects[name] = bindlike.NewObject(bindlike.TypeText, value)
	}

	return bindlike.NewEnvironment(objects), nil
}

func provisionMTLS(mc MTLSCertificateBinding, log zerolog.Logger) (*fetchCapability, error) {
	cert, err := tls.LoadX509KeyPair(mc.Certificate, mc.Key)
	if err != nil {
		return nil, fmt.Errorf("binding %q: load client keypair: %w", mc.Binding, err)
	}

	tlsCfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if mc.CA != "" {
		pem, err := os.ReadFile(mc.CA)
		if err != nil {
			return nil, fmt.Errorf("binding %q: read CA bundle: %w", mc.Binding, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("binding %q: no certificates in CA bundle %s", mc.Binding, mc.CA)
		}
		tlsCfg.RootCAs = pool
	}

	transport := &http.Transport{
		TLSClientConfig:   tlsCfg,
		Proxy:             http.ProxyFromEnvironment,
		ForceAttemptHTTP2: true,
	}
	return newFetchCapability(transport, nil, log.With().Str("binding", mc.Binding).Logger()), nil
}
