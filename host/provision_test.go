//go:build !stdhttp

package host

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/edgekit/bindlike"
)

// testPKI is a throwaway CA with one server and one client certificate, all
// written out as PEM files the way an operator would provision them.
type testPKI struct {
	dir        string
	caPEM      string
	clientPEM  string
	clientKey  string
	serverCert tls.Certificate
	caPool     *x509.CertPool
}

func newTestPKI(t *testing.T) *testPKI {
	t.Helper()
	dir := t.TempDir()

	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	caTmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "bindlike test CA"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTmpl, caTmpl, &caKey.PublicKey, caKey)
	if err != nil {
		t.Fatal(err)
	}
	caCert, err := x509.ParseCertificate(caDER)
	if err != nil {
		t.Fatal(err)
	}

	issue := func(name string, cn string, usage x509.ExtKeyUsage) (string, string) {
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		tmpl := &x509.Certificate{
			SerialNumber: big.NewInt(time.Now().UnixNano()),
			Subject:      pkix.Name{CommonName: cn},
			NotBefore:    time.Now().Add(-time.Hour),
			NotAfter:     time.Now().Add(time.Hour),
			KeyUsage:     x509.KeyUsageDigitalSignature,
			ExtKeyUsage:  []x509.ExtKeyUsage{usage},
			IPAddresses:  []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("::1")},
		}
		der, err := x509.CreateCertificate(rand.Reader, tmpl, caCert, &key.PublicKey, caKey)
		if err != nil {
			t.Fatal(err)
		}
		keyDER, err := x509.MarshalECPrivateKey(key)
		if err != nil {
			t.Fatal(err)
		}
		certPath := filepath.Join(dir, name+".pem")
		keyPath := filepath.Join(dir, name+".key")
		writePEM(t, certPath, "CERTIFICATE", der)
		writePEM(t, keyPath, "EC PRIVATE KEY", keyDER)
		return certPath, keyPath
	}

	caPath := filepath.Join(dir, "ca.pem")
	writePEM(t, caPath, "CERTIFICATE", caDER)

	serverCertPath, serverKeyPath := issue("server", "upstream.test", x509.ExtKeyUsageServerAuth)
	clientCertPath, clientKeyPath := issue("client", "unit.test", x509.ExtKeyUsageClientAuth)

	serverCert, err := tls.LoadX509KeyPair(serverCertPath, serverKeyPath)
	if err != nil {
		t.Fatal(err)
	}
	pool := x509.NewCertPool()
	pool.AddCert(caCert)

	return &testPKI{
		dir:        dir,
		caPEM:      caPath,
		clientPEM:  clientCertPath,
		clientKey:  clientKeyPath,
		serverCert: serverCert,
		caPool:     pool,
	}
}

func writePEM(t *testing.T, path, blockType string, der []byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := pem.Encode(f, &pem.Block{Type: blockType, Bytes: der}); err != nil {
		t.Fatal(err)
	}
}

// startMTLSServer runs a TLS server that requires and verifies a client
// certificate, echoing the client's common name.
func startMTLSServer(t *testing.T, pki *testPKI) *httptest.Server {
	t.Helper()
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.TLS.PeerCertificates) == 0 {
			http.Error(w, "no client certificate", http.StatusForbidden)
			return
		}
		fmt.Fprintf(w, "hello %s", r.TLS.PeerCertificates[0].Subject.CommonName)
	}))
	srv.TLS = &tls.Config{
		Certificates: []tls.Certificate{pki.serverCert},
		ClientCAs:    pki.caPool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
		MinVersion:   tls.VersionTLS12,
	}
	srv.StartTLS()
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(pki *testPKI) *Config {
	return &Config{
		MTLSCertificates: []MTLSCertificateBinding{{
			Binding:     "CERT",
			Certificate: pki.clientPEM,
			Key:         pki.clientKey,
			CA:          pki.caPEM,
		}},
		Vars: map[string]string{"API_HOST": "upstream.test"},
	}
}

func TestProvisionAndFetchWithClientCertificate(t *testing.T) {
	pki := newTestPKI(t)
	srv := startMTLSServer(t, pki)

	env, err := Provision(testConfig(pki), zerolog.Nop())
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}

	cert, err := env.MTLSCertificate("CERT")
	if err != nil {
		t.Fatalf("resolve CERT: %v", err)
	}

	resp, err := cert.Fetch(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode())
	}
	body, err := resp.Text()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if body != "hello unit.test" {
		t.Errorf("server did not see the client certificate: %q", body)
	}
}

func TestFetchWithoutCertificateFailsAtTransport(t *testing.T) {
	pki := newTestPKI(t)
	srv := startMTLSServer(t, pki)

	// A service binding to the same upstream carries no client certificate
	// and no trust for the test CA; the handshake must fail and surface as a
	// transport error, not a panic and not a response.
	cfg := &Config{Services: []ServiceBinding{{Binding: "BACKEND", Upstream: srv.URL}}}
	env, err := Provision(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	backend, err := env.Fetcher("BACKEND")
	if err != nil {
		t.Fatalf("resolve BACKEND: %v", err)
	}

	_, err = backend.Fetch(context.Background(), srv.URL+"/endpoint", nil)
	var transport *bindlike.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestProvisionMissingKeypair(t *testing.T) {
	cfg := &Config{
		MTLSCertificates: []MTLSCertificateBinding{{
			Binding:     "CERT",
			Certificate: filepath.Join(t.TempDir(), "absent.pem"),
			Key:         filepath.Join(t.TempDir(), "absent.key"),
		}},
	}
	if _, err := Provision(cfg, zerolog.Nop()); err == nil {
		t.Error("expected an error naming the unreadable keypair")
	}
}

func TestProvisionVars(t *testing.T) {
	env, err := Provision(&Config{Vars: map[string]string{"API_HOST": "api.example.com"}}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	v, err := env.Text("API_HOST")
	if err != nil {
		t.Fatalf("resolve var: %v", err)
	}
	if v != "api.example.com" {
		t.Errorf("var = %q", v)
	}
}
