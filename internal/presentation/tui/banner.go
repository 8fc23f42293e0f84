package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	` __      __                       _       _   `,
	` \ \    / /__ _ _  _ _ __  ___ (_)_ __ | |_ `,
	`  \ \/\/ / _' | || | '_ \/ _ \| | '  \|  _|`,
	`   \_/\_/\__,_|\_, | .__/\___/|_|_||_| \__|`,
	`               |__/|_|                      `,
}

// Teal to blue, one colour per line.
var bannerColors = []string{"#2dd4bf", "#22d3ee", "#38bdf8", "#60a5fa", "#818cf8"}

// Banner returns the Waypoint banner styled for the given colour profile.
func Banner(p termenv.Profile) string {
	var b strings.Builder
	b.WriteString("\n")
	for i, line := range bannerLines {
		b.WriteString(p.String(line).Foreground(p.Color(bannerColors[i])).String())
		b.WriteString("\n")
	}
	return b.String()
}

// PrintBanner writes the banner using the terminal's colour profile.
func PrintBanner(w io.Writer) {
	fmt.Fprintln(w, Banner(termenv.NewOutput(w).Profile))
}
