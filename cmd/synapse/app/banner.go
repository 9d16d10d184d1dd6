package app

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

const banner = "\n    ◆ SynapseFlow Gateway\n"

// printBanner writes the startup summary to w. Colors follow NoColor and
// the terminal detection of fatih/color.
func printBanner(w io.Writer, version string, cfg *Config, toolCount int) {
	if cfg.NoColor {
		color.NoColor = true
	}

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	_, _ = cyan.Fprint(w, banner)
	_, _ = gray.Fprintf(w, "    version: %s\n\n", version)

	line := func(label, value string) {
		_, _ = green.Fprint(w, "    ▶ ")
		_, _ = fmt.Fprintf(w, "%-12s %s\n", label+":", value)
	}

	line("Backend", cfg.BackendURL)
	line("Tools", fmt.Sprintf("%d", toolCount))
	if cfg.PushEnabled {
		line("Push-stream", fmt.Sprintf("http://%s:%d (/stream, /ws)", cfg.Host, cfg.Port))
	}
	if cfg.InteractiveEnabled {
		line("Interactive", "stdin/stdout")
	}
	if cfg.RedisURL != "" {
		line("Mirror", cfg.RedisChannel)
	}
	if cfg.APIKey != "" {
		_, _ = yellow.Fprintln(w, "    API key required for /research, /tools, /stats")
	}
	_, _ = fmt.Fprintln(w)
}
