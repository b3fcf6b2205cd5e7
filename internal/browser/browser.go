// Package browser opens files and URLs in the user's default browser.
package browser

import (
	"errors"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNoOpener is returned when no browser launcher is available.
var ErrNoOpener = errors.New("no browser launcher found")

var lookPath = exec.LookPath

// OpenInBrowser opens target, a file path or URL, without waiting for the
// browser to exit.
func OpenInBrowser(target string) error {
	if !strings.Contains(target, "://") {
		if abs, err := filepath.Abs(target); err == nil {
			target = "file://" + abs
		}
	}

	name, args, err := command(runtime.GOOS, target)
	if err != nil {
		return err
	}
	return exec.Command(name, args...).Start()
}

func command(goos, target string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{target}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}, nil
	}
	for _, name := range []string{"xdg-open", "open"} {
		if p, err := lookPath(name); err == nil && p != "" {
			return p, []string{target}, nil
		}
	}
	return "", nil, ErrNoOpener
}
