package renderer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Alex1A1ndrA/KompGraf/pkg/core"
	"github.com/Alex1A1ndrA/KompGraf/pkg/geometry"
	"github.com/Alex1A1ndrA/KompGraf/pkg/scene"
)

// ErrInvalidDimensions is returned for frames without any pixels
var ErrInvalidDimensions = errors.New("invalid frame dimensions")

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// Config contains rendering configuration
type Config struct {
	MaxDepth     int          // Reflection depth (0 = scene's recommendation, then DefaultMaxDepth)
	NumWorkers   int          // Number of rows rendered in parallel (0 = use CPU count)
	ChannelOrder ChannelOrder // Byte order of the produced framebuffer
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		MaxDepth:     0,
		NumWorkers:   0,
		ChannelOrder: RGB,
	}
}

// Renderer turns a scene and camera into framebuffers, one row per task
type Renderer struct {
	config Config
	logger core.Logger
}

// NewRenderer creates a new renderer. A nil logger discards output.
func NewRenderer(config Config, logger core.Logger) *Renderer {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Renderer{config: config, logger: logger}
}

// Config returns the renderer's configuration
func (r *Renderer) Config() Config {
	return r.config
}

// GetNumWorkers returns the resolved parallelism
func (r *Renderer) GetNumWorkers() int {
	if r.config.NumWorkers <= 0 {
		return runtime.NumCPU()
	}
	return r.config.NumWorkers
}

// MaxDepthFor resolves the reflection depth used for a scene
func (r *Renderer) MaxDepthFor(s *scene.Scene) int {
	switch {
	case r.config.MaxDepth > 0:
		return r.config.MaxDepth
	case s.MaxDepth > 0:
		return s.MaxDepth
	default:
		return DefaultMaxDepth
	}
}

// Render produces one complete frame. The scene must not be modified until
// Render returns. A cancelled context aborts the whole frame; no partial
// framebuffer is ever returned.
func (r *Renderer) Render(ctx context.Context, s *scene.Scene, camera geometry.Camera, width, height int) (*Framebuffer, RenderStats, error) {
	if width <= 0 || height <= 0 {
		return nil, RenderStats{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	start := time.Now()
	fb := NewFramebuffer(width, height, r.config.ChannelOrder)
	projection := camera.Project(width, height)
	depth := r.MaxDepthFor(s)
	workers := r.GetNumWorkers()

	var hits atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for y := 0; y < height; y++ {
		y := y // per-iteration copy (go 1.21 loop semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rowHits := 0
			for x := 0; x < width; x++ {
				color, hit := trace(projection.Ray(x, y), s, depth)
				fb.Set(x, y, color)
				if hit {
					rowHits++
				}
			}
			hits.Add(int64(rowHits))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, RenderStats{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, RenderStats{}, err
	}

	stats := RenderStats{
		TotalPixels: width * height,
		Rows:        height,
		Workers:     workers,
		MaxDepth:    depth,
		Hits:        int(hits.Load()),
		Elapsed:     time.Since(start),
	}
	r.logger.Printf("Rendered %s\n", stats)
	return fb, stats, nil
}
