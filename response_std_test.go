//go:build stdhttp

package bindlike

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

// responseStatus lets shape-agnostic tests read the status code of whichever
// FetchResponse this build produces.
func responseStatus(resp FetchResponse) int {
	return resp.StatusCode
}

func TestAdaptStd(t *testing.T) {
	raw := &HostResponse{
		StatusCode: 200,
		Header:     http.Header{"Content-Type": []string{"text/plain"}},
		Body:       io.NopCloser(strings.NewReader("hello")),
	}

	resp, err := adaptResponse(raw)
	if err != nil {
		t.Fatalf("adapt: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Content-Type") != "text/plain" {
		t.Error("headers should pass through untouched")
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != "hello" {
		t.Errorf("body = %q", body)
	}
}

func TestAdaptStdIncompatible(t *testing.T) {
	tests := []struct {
		name string
		raw  *HostResponse
	}{
		{"nil response", nil},
		{"status below range", &HostResponse{StatusCode: 42}},
		{"status above range", &HostResponse{StatusCode: 1000}},
		{"invalid header name", &HostResponse{
			StatusCode: 200,
			Header:     http.Header{"Bad Header\n": []string{"v"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := adaptResponse(tt.raw)
			var incompatible *IncompatibleResponseError
			if !errors.As(err, &incompatible) {
				t.Fatalf("expected IncompatibleResponseError, got %v", err)
			}
		})
	}
}

func TestAdaptStdSynthesizesStatusLine(t *testing.T) {
	resp, err := adaptResponse(&HostResponse{StatusCode: 502})
	if err != nil {
		t.Fatalf("adapt: %v", err)
	}
	if resp.Status != "502 Bad Gateway" {
		t.Errorf("status line = %q", resp.Status)
	}
	if resp.Body == nil {
		t.Error("body must never be nil on a *http.Response")
	}
}
