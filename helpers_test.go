package pagepdf

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync/atomic"
	"testing"
	"time"
)

// pngBytes starts with the PNG signature so content sniffing recognizes it.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR-test-image")

var dataURLPattern = regexp.MustCompile(`^data:[^;]+;base64,`)

// site is a test web server serving one story page and its images.
//
//	/story         the page
//	/img/...       PNG images, counted
//	/svg/...       SVG with a charset parameter
//	/untyped/...   PNG bytes without a Content-Type header
//	/missing.png   404
type site struct {
	*httptest.Server

	imageHits   atomic.Int64
	inFlight    atomic.Int64
	maxInFlight atomic.Int64
	delay       time.Duration
}

func newSite(t *testing.T, pageHTML string) *site {
	t.Helper()
	s := &site{}

	mux := http.NewServeMux()
	mux.HandleFunc("/story", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(pageHTML))
	})
	mux.HandleFunc("/old-story", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/story", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		s.track(func() {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngBytes)
		})
	})
	mux.HandleFunc("/svg/", func(w http.ResponseWriter, r *http.Request) {
		s.track(func() {
			w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
			_, _ = w.Write([]byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`))
		})
	})
	mux.HandleFunc("/untyped/", func(w http.ResponseWriter, r *http.Request) {
		s.track(func() {
			w.Header()["Content-Type"] = nil
			_, _ = w.Write(pngBytes)
		})
	})
	mux.HandleFunc("/missing.png", func(w http.ResponseWriter, r *http.Request) {
		s.track(func() {
			http.NotFound(w, r)
		})
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// track counts an image request and records the peak concurrency.
func (s *site) track(serve func()) {
	s.imageHits.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.maxInFlight.Load()
		if n <= peak || s.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	serve()
}

func (s *site) storyURL() string {
	return s.URL + "/story"
}
