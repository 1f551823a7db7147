package host

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/edgekit/bindlike"
)

// maxRedirects bounds redirect following under the default follow policy.
const maxRedirects = 10

type redirectPolicyKey struct{}

// fetchCapability implements bindlike.FetchCapability over an http.Client.
// For mTLS bindings the client's transport carries the provisioned
// certificate, so the credential is presented during the handshake without
// the caller ever naming it. For service bindings upstream is set and every
// request is rewritten onto it.
type fetchCapability struct {
	client   *http.Client
	upstream *url.URL
	log      zerolog.Logger
}

func newFetchCapability(rt http.RoundTripper, upstream *url.URL, log zerolog.Logger) *fetchCapability {
	return &fetchCapability{
		client: &http.Client{
			Transport:     rt,
			CheckRedirect: checkRedirect,
		},
		upstream: upstream,
		log:      log,
	}
}

// checkRedirect honors the per-request redirect policy carried on the
// request context. The default is follow, bounded by maxRedirects.
func checkRedirect(req *http.Request, via []*http.Request) error {
	policy, _ := req.Context().Value(redirectPolicyKey{}).(bindlike.RedirectPolicy)
	switch policy {
	case bindlike.RedirectManual:
		return http.ErrUseLastResponse
	case bindlike.RedirectError:
		return fmt.Errorf("refusing redirect to %s", req.URL)
	}
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return nil
}

// FetchURL issues a destination-string fetch. A nil init is a bare GET.
func (c *fetchCapability) FetchURL(ctx context.Context, rawurl string, init *bindlike.RequestInit) (*bindlike.HostResponse, error) {
	method := http.MethodGet
	var policy bindlike.RedirectPolicy
	if init != nil {
		if init.Method != "" {
			method = init.Method
		}
		policy = init.Redirect
	}

	var req *http.Request
	var err error
	if init != nil && init.Body != nil {
		req, err = http.NewRequestWithContext(ctx, method, rawurl, init.Body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, rawurl, nil)
	}
	if err != nil {
		return nil, err
	}
	if init != nil {
		for name, values := range init.Header {
			for _, v := range values {
				req.Header.Add(name, v)
			}
		}
	}
	return c.roundtrip(req, policy)
}

// FetchRequest issues an already-built canonical request.
func (c *fetchCapability) FetchRequest(ctx context.Context, canonical *bindlike.Request) (*bindlike.HostResponse, error) {
	if canonical == nil {
		return nil, errors.New("nil request")
	}
	req, err := http.NewRequestWithContext(ctx, canonical.Method, canonical.URL, canonical.Body)
	if err != nil {
		return nil, err
	}
	for name, values := range canonical.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	return c.roundtrip(req, canonical.Redirect)
}

func (c *fetchCapability) roundtrip(req *http.Request, policy bindlike.RedirectPolicy) (*bindlike.HostResponse, error) {
	if c.upstream != nil {
		req.URL.Scheme = c.upstream.Scheme
		req.URL.Host = c.upstream.Host
		req.Host = c.upstream.Host
	}
	if policy != "" && policy != bindlike.RedirectFollow {
		req = req.WithContext(context.WithValue(req.Context(), redirectPolicyKey{}, policy))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Debug().Str("url", req.URL.String()).Err(err).Msg("transport failure")
		return nil, err
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Msg("fetch")

	finalURL := req.URL.String()
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return &bindlike.HostResponse{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       resp.Body,
		URL:        finalURL,
	}, nil
}
