// Package browser opens URLs in the user's default web browser across
// platforms, with OS-specific fallbacks when the generic opener fails.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"

	log "github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
)

// linuxOpeners are tried in order when opening a browser on Linux.
var linuxOpeners = []string{"xdg-open", "x-www-browser", "www-browser", "firefox", "chromium", "google-chrome"}

// OpenURL opens the URL in the default web browser. It tries the
// open-golang library first and falls back to platform-specific commands.
func OpenURL(url string) error {
	err := open.Run(url)
	if err == nil {
		log.Debug("opened URL with open-golang")
		return nil
	}
	log.Debugf("open-golang failed: %v, trying platform-specific command", err)
	return openPlatformSpecific(url)
}

// openPlatformSpecific launches the OS-native URL opener.
func openPlatformSpecific(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "linux":
		for _, opener := range linuxOpeners {
			if _, errLook := exec.LookPath(opener); errLook == nil {
				cmd = exec.Command(opener, url)
				break
			}
		}
		if cmd == nil {
			return fmt.Errorf("no suitable browser found on Linux system")
		}
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	if errStart := cmd.Start(); errStart != nil {
		return fmt.Errorf("failed to start browser command: %w", errStart)
	}
	return nil
}

// IsAvailable reports whether some browser-opening mechanism exists on this
// system.
func IsAvailable() bool {
	switch runtime.GOOS {
	case "darwin":
		_, err := exec.LookPath("open")
		return err == nil
	case "windows":
		_, err := exec.LookPath("rundll32")
		return err == nil
	case "linux":
		for _, opener := range linuxOpeners {
			if _, err := exec.LookPath(opener); err == nil {
				return true
			}
		}
		return false
	default:
		return false
	}
}
