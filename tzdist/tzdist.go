// Package tzdist fetches tzdb releases distributed by IANA.
//
// It is adapted from the go-tz tzdata package's tzdb/ianadist: the
// Client/ETag HTTP machinery (injectable http.Client, conditional GET via
// If-None-Match) is kept as-is, but the archive/tar plus compress/gzip
// based Release parsing is dropped. This package hands the raw archive
// bytes straight to tzdb.Compile, which already implements its own
// gzip/tar readers (internal/inflate, internal/tartab); duplicating that
// parsing here would just mean maintaining two decoders for one format.
package tzdist

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	baseURL        = "https://data.iana.org/time-zones/"
	latestDataPath = "tzdata-latest.tar.gz"
	emptyEtag      = ""
)

// DefaultClient is ready to use and backs the top-level Latest and
// Download functions.
var DefaultClient = &Client{}

// Client fetches tzdb releases. The zero value is ready to use.
type Client struct {
	// HTTPClient is used for requests. If nil, http.DefaultClient is
	// used. Tests should set this to a client with a fake
	// http.RoundTripper to avoid real network calls.
	HTTPClient *http.Client
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

// Latest fetches the latest tzdb release as raw gzipped-tar bytes, ready
// to pass to tzdb.Compile. If the server reports 304 Not Modified against
// etag, archive is nil and newEtag equals etag.
//
// Latest is a wrapper around DefaultClient.Latest.
func Latest(ctx context.Context, etag string) (archive []byte, newEtag string, err error) {
	return DefaultClient.Latest(ctx, etag)
}

// Latest fetches the latest tzdb release as raw gzipped-tar bytes, ready
// to pass to tzdb.Compile. If the server reports 304 Not Modified against
// etag, archive is nil and newEtag equals etag.
func (c *Client) Latest(ctx context.Context, etag string) (archive []byte, newEtag string, err error) {
	body, newEtag, err := c.Download(ctx, latestDataPath, etag)
	if err != nil {
		return nil, emptyEtag, err
	}
	if body == nil {
		return nil, etag, nil
	}
	defer func() {
		_, _ = io.Copy(io.Discard, body)
		_ = body.Close()
	}()

	archive, err = io.ReadAll(body)
	if err != nil {
		return nil, emptyEtag, fmt.Errorf("tzdist: read body: %w", err)
	}
	return archive, newEtag, nil
}

// Download fetches the resource at path relative to the IANA time zone
// data server, with conditional-GET caching against etag. If the server
// responds 304 Not Modified, the returned ReadCloser is nil and newEtag
// equals etag; the caller must close a non-nil ReadCloser.
//
// Download is a wrapper around DefaultClient.Download.
func Download(ctx context.Context, path, etag string) (io.ReadCloser, string, error) {
	return DefaultClient.Download(ctx, path, etag)
}

// Download fetches the resource at path relative to the IANA time zone
// data server, with conditional-GET caching against etag. If the server
// responds 304 Not Modified, the returned ReadCloser is nil and newEtag
// equals etag; the caller must close a non-nil ReadCloser.
func (c *Client) Download(ctx context.Context, path, etag string) (io.ReadCloser, string, error) {
	u, err := url.JoinPath(baseURL, path)
	if err != nil {
		return nil, emptyEtag, fmt.Errorf("tzdist: join URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, emptyEtag, fmt.Errorf("tzdist: create request for %q: %w", u, err)
	}
	if etag != emptyEtag {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, emptyEtag, fmt.Errorf("tzdist: GET %q: %w", u, err)
	}

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusNotModified {
			return nil, etag, nil
		}
		return nil, emptyEtag, fmt.Errorf("tzdist: GET %q: unexpected status: %s", u, resp.Status)
	}

	return resp.Body, resp.Header.Get("etag"), nil
}
