package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/banner"
)

// BannerInfo is the key/value block printed under the art.
type BannerInfo struct {
	Environment string
	ServiceURL  string
	EngineURL   string
}

// PrintBanner writes the startup banner to w (stderr in production).
func PrintBanner(w io.Writer, info BannerInfo) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 64) + banner.ColorReset

	art := []string{
		` _   _ _              ___           _    _            _   `,
		`| | | (_)_ _ ___     | _ ) __ _ __ | |__| |_ ___ ___| |_ `,
		`| |_| | | '_/ -_)    | _ \/ _' / _|| / /|  _/ -_|_-<|  _|`,
		` \___/|_|_| \___|    |___/\__,_\__||_\_\ \__\___/__/ \__|`,
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
	for _, line := range art {
		fmt.Fprintf(w, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s  Portfolio Backtesting & Stock Scanning%s\n\n%s\n\n", textColor, banner.ColorReset, hr)

	kv := [][2]string{
		{"Version", GetVersion()},
		{"Build", GetBuild()},
		{"Commit", GetGitCommit()},
		{"Environment", info.Environment},
		{"Service URL", info.ServiceURL},
		{"Engine URL", info.EngineURL},
	}
	for _, pair := range kv {
		fmt.Fprintf(w, "%s  %-14s %s%s\n", textColor, pair[0], pair[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n\n", hr)
}
