package tzdist

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
)

// roundTripperFunc lets a plain function satisfy http.RoundTripper, so
// tests never make real network calls.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (fn roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return fn(req)
}

func fakeClient(fn roundTripperFunc) *http.Client {
	return &http.Client{Transport: fn}
}

func TestLatest(t *testing.T) {
	const testEtag = "test-etag"
	payload := []byte("fake gzipped tar bytes")

	httpClient := fakeClient(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodGet {
			t.Errorf("unexpected method %q", req.Method)
		}
		if req.URL.String() != "https://data.iana.org/time-zones/tzdata-latest.tar.gz" {
			t.Errorf("unexpected URL %q", req.URL)
		}
		if req.Header.Get("If-None-Match") == testEtag {
			return &http.Response{StatusCode: http.StatusNotModified, Body: http.NoBody}, nil
		}
		resp := &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader(payload)),
			Header:     make(http.Header),
		}
		resp.Header.Set("etag", testEtag)
		return resp, nil
	})

	client := &Client{HTTPClient: httpClient}
	ctx := context.Background()

	archive, gotEtag, err := client.Latest(ctx, "")
	if err != nil {
		t.Fatalf("Latest(\"\") error: %v", err)
	}
	if gotEtag != testEtag {
		t.Errorf("etag = %q, want %q", gotEtag, testEtag)
	}
	if !bytes.Equal(archive, payload) {
		t.Errorf("archive = %q, want %q", archive, payload)
	}

	archive, newEtag, err := client.Latest(ctx, gotEtag)
	if err != nil {
		t.Fatalf("Latest(etag) error: %v", err)
	}
	if newEtag != testEtag {
		t.Errorf("etag = %q, want %q", newEtag, testEtag)
	}
	if archive != nil {
		t.Errorf("archive = %v, want nil on 304", archive)
	}
}
