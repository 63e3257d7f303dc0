package ui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bamsammich/fileops/internal/stats"
)

// FormatBytes formats a byte count for display.
func FormatBytes(b int64) string { return stats.FormatBytes(b) }

// FormatRate formats a bytes-per-second rate for display.
func FormatRate(bytesPerSec float64) string {
	if bytesPerSec <= 0 {
		return "0 B/s"
	}
	return stats.FormatRate(bytesPerSec)
}

// FormatETA formats a remaining duration, or "--" when unknown.
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return "--"
	}
	return FormatDuration(d)
}

// FormatDuration formats elapsed time concisely.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatCount formats an integer with comma separators.
func FormatCount(n int64) string {
	if n < 0 {
		return "-" + FormatCount(-n)
	}
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ProgressBar renders a bar of width cells using ▪ for done and □ for pending.
func ProgressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	pct = min(max(pct, 0), 1)
	filled := min(int(pct*float64(width)), width)
	return strings.Repeat("▪", filled) + strings.Repeat("□", width-filled)
}

// Sparkline renders the last width values as block characters scaled to
// their maximum. Shorter input is padded on the left.
func Sparkline(data []float64, width int) string {
	if width <= 0 {
		return ""
	}
	blocks := []rune("▁▂▃▄▅▆▇█")

	samples := make([]float64, width)
	if len(data) >= width {
		copy(samples, data[len(data)-width:])
	} else {
		copy(samples[width-len(data):], data)
	}

	peak := slices.Max(samples)
	out := make([]rune, width)
	for i, v := range samples {
		idx := 0
		if peak > 0 && v > 0 {
			idx = min(int(v/peak*float64(len(blocks)-1)), len(blocks)-1)
		}
		out[i] = blocks[idx]
	}
	return string(out)
}

// Summary builds the final line printed after a tree copy.
// Format: done ✓  files 48,917  size 2.1 GiB  avg 641.0 MiB/s  time 3m 17s  errors 0
func Summary(snap stats.Snapshot) string {
	icon := "✓"
	if snap.FilesFailed > 0 || snap.FilesVerifyFailed > 0 {
		icon = "✗"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "done %s  files %s  size %s  avg %s  time %s",
		icon,
		FormatCount(snap.FilesCopied),
		FormatBytes(snap.BytesCopied),
		FormatRate(snap.BytesPerSec()),
		FormatDuration(snap.Elapsed),
	)
	if snap.FilesVerified > 0 || snap.FilesVerifyFailed > 0 {
		fmt.Fprintf(&b, "  verified %s", FormatCount(snap.FilesVerified))
	}
	if snap.FilesSkipped > 0 {
		fmt.Fprintf(&b, "  skipped %s", FormatCount(snap.FilesSkipped))
	}
	fmt.Fprintf(&b, "  errors %d", snap.FilesFailed+snap.FilesVerifyFailed)
	return b.String()
}

// truncPath shortens a path to at most maxLen bytes, keeping its tail.
func truncPath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[:max(maxLen, 0)]
	}
	return "..." + path[len(path)-maxLen+3:]
}
