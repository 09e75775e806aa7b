package pagepdf

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/net/html/charset"
)

// fetchedPage is a fetched HTML document together with the URL it was served from.
type fetchedPage struct {
	html string
	base *url.URL
}

// fetchPage issues a single GET for rawURL and returns the body decoded to
// UTF-8. Redirects are whatever the client does by default; base is the
// URL of the final response.
func fetchPage(ctx context.Context, client *http.Client, rawURL string) (*fetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, &HTTPStatusError{URL: rawURL, StatusCode: resp.StatusCode})
	}

	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrParse, rawURL, err)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrNetwork, rawURL, err)
	}

	base := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL
	}
	return &fetchedPage{html: string(body), base: base}, nil
}
