package pagepdf

import (
	"fmt"

	"github.com/go-rod/rod/lib/launcher"
)

// resolveBrowser returns the path of a Chrome/Chromium executable. An
// installed browser is preferred; otherwise a compatible Chromium build is
// downloaded into rod's cache (~/.cache/rod/browser on Unix,
// %APPDATA%\rod\browser on Windows) and reused on later runs.
func resolveBrowser() (string, error) {
	if path, found := launcher.LookPath(); found {
		return path, nil
	}
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", fmt.Errorf("%w: downloading browser: %w", ErrRender, err)
	}
	return path, nil
}
