package pagepdf

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the library. Every failure of [Run] wraps
// exactly one of the stage sentinels, so callers can classify it with
// [errors.Is].
var (
	// ErrNetwork is returned when the page fetch or an image download fails.
	ErrNetwork = errors.New("pagepdf: network error")

	// ErrParse is returned when the page or an image reference cannot be parsed.
	ErrParse = errors.New("pagepdf: parse error")

	// ErrRender is returned when the browser cannot be started or the PDF
	// cannot be produced.
	ErrRender = errors.New("pagepdf: render error")

	// ErrFileSystem is returned when an output file cannot be written.
	ErrFileSystem = errors.New("pagepdf: file system error")

	// ErrInvalidConfig is returned by [Config.Validate].
	ErrInvalidConfig = errors.New("pagepdf: invalid configuration")

	// ErrClosed is returned when attempting to use a closed [Converter].
	ErrClosed = errors.New("pagepdf: converter is closed")
)

// HTTPStatusError reports a response outside the 2xx range.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// ImageURLError reports an image reference that could not be turned into
// an absolute URL.
type ImageURLError struct {
	Ref string
	Err error
}

func (e *ImageURLError) Error() string {
	return fmt.Sprintf("image reference %q: %v", e.Ref, e.Err)
}

func (e *ImageURLError) Unwrap() error { return e.Err }
