package pagepdf

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// selectRegion parses html and returns the first element matching
// selector. When nothing matches the returned selection is empty, not nil,
// and every later stage treats it as a region with no content.
func selectRegion(html, selector string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return doc.Find(selector).First(), nil
}
