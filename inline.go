package pagepdf

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

// imageRef is one <img> element scheduled for inlining.
type imageRef struct {
	node     *goquery.Selection
	resolved string
}

// inliner downloads the images of a region and embeds them as data URLs.
type inliner struct {
	client *http.Client
	logger *slog.Logger
	limit  int
}

// inline rewrites the src of every <img> under region to a data URL and
// returns the number of images rewritten.
//
// Downloads run concurrently, at most limit at a time. The first failure
// cancels the rest and nothing in the region is modified: the DOM is only
// touched once every download has succeeded.
func (in *inliner) inline(ctx context.Context, region *goquery.Selection, base *url.URL) (int, error) {
	refs, err := collectImages(region, base)
	if err != nil {
		return 0, err
	}
	if len(refs) == 0 {
		return 0, nil
	}

	in.logger.Debug("downloading images", "count", len(refs), "concurrency", in.limit)

	encoded := make([]string, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.limit)
	for i, ref := range refs {
		g.Go(func() error {
			u, err := in.download(gctx, ref.resolved)
			if err != nil {
				return err
			}
			encoded[i] = u
			in.logger.Debug("image inlined", "url", ref.resolved, "bytes", len(u))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	for i, ref := range refs {
		ref.node.SetAttr("src", encoded[i])
	}
	return len(refs), nil
}

// collectImages walks the <img> elements of region in document order.
// Elements without a usable src are skipped; a src that cannot be
// resolved aborts the walk.
func collectImages(region *goquery.Selection, base *url.URL) ([]imageRef, error) {
	var (
		refs []imageRef
		err  error
	)
	region.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, ok := s.Attr("src")
		if !ok || isDataURL(src) {
			return true
		}
		var resolved string
		resolved, err = resolveImageURL(base, src)
		if err != nil {
			return false
		}
		if resolved != "" {
			refs = append(refs, imageRef{node: s, resolved: resolved})
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// resolveImageURL trims surrounding whitespace from src, drops its query
// string and makes it absolute against base. It returns "" when nothing
// is left after the strip.
func resolveImageURL(base *url.URL, src string) (string, error) {
	ref, _, _ := strings.Cut(strings.TrimSpace(src), "?")
	if ref == "" {
		return "", nil
	}
	if hasHTTPScheme(ref) {
		return ref, nil
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrParse, &ImageURLError{Ref: src, Err: err})
	}
	if base == nil {
		return u.String(), nil
	}
	return base.ResolveReference(u).String(), nil
}

func hasHTTPScheme(s string) bool {
	s = strings.ToLower(s)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func isDataURL(s string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "data:")
}

// download fetches rawURL and returns it encoded as a data URL.
func (in *inliner) download(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: image %s: %v", ErrNetwork, rawURL, err)
	}
	resp, err := in.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: image: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: image: %w", ErrNetwork, &HTTPStatusError{URL: rawURL, StatusCode: resp.StatusCode})
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading image %s: %w", ErrNetwork, rawURL, err)
	}
	return dataURL(resp.Header.Get("Content-Type"), data), nil
}

// dataURL builds data:<media-type>;base64,<payload>. Parameters such as
// charset are dropped from the media type; when the server sent none the
// type is sniffed from the payload.
func dataURL(contentType string, data []byte) string {
	mediaType := mediaTypeOf(contentType)
	if mediaType == "" {
		mediaType = mediaTypeOf(http.DetectContentType(data))
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func mediaTypeOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mt
}
