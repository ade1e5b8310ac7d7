package util

import (
	"fmt"
	"math"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count in human-readable form, e.g. "2.5 MB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	i := int(math.Log(float64(bytes)) / math.Log(1024))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	value := float64(bytes) / math.Pow(1024, float64(i))
	if value == math.Trunc(value) {
		return fmt.Sprintf("%d %s", int64(value), sizeUnits[i])
	}
	return fmt.Sprintf("%.2f %s", value, sizeUnits[i])
}
