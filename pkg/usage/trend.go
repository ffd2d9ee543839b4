package usage

import (
	"math"

	"github.com/teamarena/quotakit/pkg/quota"
)

// Trend computes the percentage change between the oldest and the newest of
// points, which must be ordered most recent first.
// Fewer than two points yield 0. An oldest value of 0 yields 100.
func Trend(points []quota.HistoryPoint) int {
	if len(points) < 2 {
		return 0
	}

	newest := points[0].UsageValue
	oldest := points[len(points)-1].UsageValue
	if oldest == 0 {
		return 100
	}
	return int(math.Round(float64(newest-oldest) / float64(oldest) * 100))
}
