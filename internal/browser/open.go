// Package browser hands URLs to the desktop's default browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// command returns the launcher for goos.
func command(goos, url string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{url}, nil
	case "linux", "freebsd", "openbsd":
		return "xdg-open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	}
	return "", nil, fmt.Errorf("browser: unsupported OS %s", goos)
}

// Open starts the browser without waiting for it.
func Open(url string) error {
	name, args, err := command(runtime.GOOS, url)
	if err != nil {
		return err
	}
	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("browser: %s: %w", name, err)
	}
	return nil
}
