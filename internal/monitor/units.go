package monitor

import "github.com/dustin/go-humanize"

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// FormatBytes renders n in 1024-based units cut to two decimals,
// e.g. 590400 → "576.56 KB".
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}
	return humanize.FtoaWithDigits(v, 2) + " " + sizeUnits[i]
}
