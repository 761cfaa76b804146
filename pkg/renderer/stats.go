package renderer

import (
	"fmt"
	"time"
)

// RenderStats contains statistics about one rendered frame
type RenderStats struct {
	TotalPixels int           // Total number of pixels rendered
	Rows        int           // Number of row tasks
	Workers     int           // Maximum rows rendered concurrently
	MaxDepth    int           // Reflection depth the frame was traced with
	Hits        int           // Primary rays that hit a surface
	Elapsed     time.Duration // Wall time for the frame
}

// HitRatio returns the fraction of primary rays that hit a surface
func (s RenderStats) HitRatio() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.TotalPixels)
}

func (s RenderStats) String() string {
	return fmt.Sprintf("%d pixels in %d rows (%d workers, depth %d): %.1f%% hits, %v",
		s.TotalPixels, s.Rows, s.Workers, s.MaxDepth, 100*s.HitRatio(), s.Elapsed.Round(time.Millisecond))
}
