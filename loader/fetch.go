// SPDX-License-Identifier: EPL-2.0

package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Fetcher returns the raw bytes a locator points at.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// HTTPFetcher downloads http and https locators. The request is bound to
// the context, so cancelling it aborts the transfer.
type HTTPFetcher struct {
	Client *http.Client
}

func (f HTTPFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return data, nil
}

// FileFetcher reads file:// locators and plain paths.
type FileFetcher struct{}

func (FileFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := locator
	if strings.HasPrefix(locator, "file:") {
		u, err := url.Parse(locator)
		if err != nil {
			return nil, fmt.Errorf("parse locator: %w", err)
		}
		path = filepath.FromSlash(u.Path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return data, nil
}

// SchemeFetcher routes a locator to a Fetcher by its URL scheme. Locators
// without a scheme go to the "file" entry.
type SchemeFetcher map[string]Fetcher

// DefaultFetcher handles http, https, file and plain paths.
func DefaultFetcher(client *http.Client) SchemeFetcher {
	h := HTTPFetcher{Client: client}

	return SchemeFetcher{
		"http":  h,
		"https": h,
		"file":  FileFetcher{},
	}
}

func (s SchemeFetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	scheme := "file"
	if u, err := url.Parse(locator); err == nil && len(u.Scheme) > 1 {
		// a one letter scheme is a Windows drive
		scheme = strings.ToLower(u.Scheme)
	}

	f, ok := s[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}

	return f.Fetch(ctx, locator)
}
