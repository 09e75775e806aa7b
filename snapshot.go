package pagepdf

import (
	"fmt"
	"os"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// snapshotPolicy keeps presentational markup and inlined images while
// dropping scripts, frames and event handlers.
func snapshotPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowDataURIImages()
	p.AllowStyling()
	return p
}

// writeSnapshot serializes the inner markup of region to path, replacing
// any existing file, and returns the markup written. An empty region
// produces an empty file.
func writeSnapshot(path string, region *goquery.Selection, sanitize bool) (string, error) {
	markup, err := region.Html()
	if err != nil {
		return "", fmt.Errorf("%w: serializing region: %v", ErrParse, err)
	}
	if sanitize {
		markup = snapshotPolicy().Sanitize(markup)
	}

	if err := os.WriteFile(path, []byte(markup), 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileSystem, err)
	}
	return markup, nil
}
