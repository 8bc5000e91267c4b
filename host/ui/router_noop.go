//go:build !js

package ui

import (
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

func Fullscreen(on bool) {}

// BaseURL is where the web viewer is published.
func BaseURL() string {
	if u := os.Getenv("CHURCH_BASE_URL"); u != "" {
		return u
	}
	return "https://nobonobo.github.io/lowpoly-church/"
}

func URLOpen(u string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", u)
	case "darwin":
		cmd = exec.Command("open", u)
	case "linux":
		cmd = exec.Command("xdg-open", u)
	default:
		slog.Warn("Opening links is not supported", "os", runtime.GOOS)
		return
	}
	if err := cmd.Start(); err != nil {
		slog.Warn("Failed to open link", "url", u, "err", err)
	}
}

// GetParam reads CHURCH_<KEY> from the environment.
func GetParam(key string) string {
	return os.Getenv("CHURCH_" + strings.ToUpper(key))
}

func initRouter(c *homeScreenComponent) {
}

func updateHash(view ViewName) {
}
