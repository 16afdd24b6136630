package summary

import (
	"fmt"
	"math"
)

// SizeBucket maps a byte count onto the geometric histogram boundary
// 8^(ceil(log8(size))+1). The formula mixes base-8 bucketing with the
// base-1024 labels below; it is kept exactly as earlier versions computed
// it so histograms stay comparable across runs.
func SizeBucket(size int64) int64 {
	return int64(math.Pow(8, math.Ceil(math.Log(float64(size))/math.Log(8))+1))
}

// HumanSize renders a byte count using the largest base-1024 unit that fits,
// without decimals
func HumanSize(bytes int64) string {
	if bytes < 1024 {
		return fmt.Sprintf("%d B", bytes)
	}
	e := int(math.Log(float64(bytes)) / math.Log(1024))
	unit := "KMGTPE"[e-1]
	return fmt.Sprintf("%d %ciB", int64(float64(bytes)/math.Pow(1024, float64(e))), unit)
}
