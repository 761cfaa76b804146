package renderer

import (
	"context"

	"github.com/Alex1A1ndrA/KompGraf/pkg/core"
	"github.com/Alex1A1ndrA/KompGraf/pkg/geometry"
	"github.com/Alex1A1ndrA/KompGraf/pkg/scene"
)

const (
	// MoveStep is how far one movement command moves the camera
	MoveStep = 0.2
	// ReflectivityStep is how much one command changes sphere reflectivity
	ReflectivityStep = 0.1
)

// UpdateKind identifies a parameter change between frames
type UpdateKind int

const (
	MoveCamera UpdateKind = iota
	AdjustReflectivity
	Save
	Quit
)

// Update is one parameter change requested by the driver of a session
type Update struct {
	Kind   UpdateKind
	Delta  core.Vec3 // MoveCamera
	Amount float64   // AdjustReflectivity
}

// ParseCommand maps an interactive key to an update
func ParseCommand(key rune) (Update, bool) {
	switch key {
	case 'w', 'W':
		return Update{Kind: MoveCamera, Delta: core.NewVec3(0, 0, -MoveStep)}, true
	case 's', 'S':
		return Update{Kind: MoveCamera, Delta: core.NewVec3(0, 0, MoveStep)}, true
	case 'a', 'A':
		return Update{Kind: MoveCamera, Delta: core.NewVec3(-MoveStep, 0, 0)}, true
	case 'd', 'D':
		return Update{Kind: MoveCamera, Delta: core.NewVec3(MoveStep, 0, 0)}, true
	case 'q', 'Q':
		return Update{Kind: MoveCamera, Delta: core.NewVec3(0, MoveStep, 0)}, true
	case 'e', 'E':
		return Update{Kind: MoveCamera, Delta: core.NewVec3(0, -MoveStep, 0)}, true
	case '+', '=':
		return Update{Kind: AdjustReflectivity, Amount: ReflectivityStep}, true
	case '-', '_':
		return Update{Kind: AdjustReflectivity, Amount: -ReflectivityStep}, true
	case ' ':
		return Update{Kind: Save}, true
	case 27: // ESC
		return Update{Kind: Quit}, true
	default:
		return Update{}, false
	}
}

// FrameResult is one frame delivered by a running session
type FrameResult struct {
	Frame        int // 1-based frame counter
	Framebuffer  *Framebuffer
	Stats        RenderStats
	Camera       geometry.Camera // Parameters the frame was rendered with
	Reflectivity float64
	Save         bool // The driver asked for this frame to be saved
	Err          error
}

// Session renders frames of one scene, applying parameter updates strictly
// between frames
type Session struct {
	scene         *scene.Scene
	camera        geometry.Camera
	renderer      *Renderer
	width, height int
	logger        core.Logger
	frame         int
}

// NewSession creates a session starting from the scene's recommended camera
func NewSession(s *scene.Scene, renderer *Renderer, width, height int, logger core.Logger) *Session {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Session{
		scene:    s,
		camera:   s.Camera,
		renderer: renderer,
		width:    width,
		height:   height,
		logger:   logger,
	}
}

// Camera returns the current camera. Not safe to call while Run is active.
func (s *Session) Camera() geometry.Camera {
	return s.camera
}

// Apply changes session parameters. It must only be called between frames.
func (s *Session) Apply(u Update) {
	switch u.Kind {
	case MoveCamera:
		s.camera = s.camera.Moved(u.Delta)
	case AdjustReflectivity:
		s.scene.AdjustReflectivity(u.Amount)
		s.logger.Printf("Sphere reflectivity: %.1f\n", s.scene.Reflectivity())
	}
}

// RenderFrame renders one frame with the current parameters
func (s *Session) RenderFrame(ctx context.Context) FrameResult {
	s.frame++
	fb, stats, err := s.renderer.Render(ctx, s.scene, s.camera, s.width, s.height)
	return FrameResult{
		Frame:        s.frame,
		Framebuffer:  fb,
		Stats:        stats,
		Camera:       s.camera,
		Reflectivity: s.scene.Reflectivity(),
		Err:          err,
	}
}

// Run renders a first frame, then one new frame per batch of updates. All
// updates already queued when a frame finishes are applied together before the
// next frame starts. A Save update delivers the frame showing every change
// queued before it, with Save set.
// The result channel is closed after Quit, when updates is closed, when the
// context is cancelled, or after a frame fails.
func (s *Session) Run(ctx context.Context, updates <-chan Update) <-chan FrameResult {
	results := make(chan FrameResult)

	go func() {
		defer close(results)

		send := func(r FrameResult) bool {
			select {
			case results <- r:
				return true
			case <-ctx.Done():
				return false
			}
		}

		last := s.RenderFrame(ctx)
		if !send(last) || last.Err != nil {
			return
		}

		for {
			var u Update
			var ok bool
			select {
			case u, ok = <-updates:
				if !ok {
					return
				}
			case <-ctx.Done():
				return
			}

			batch := []Update{u}
		drain:
			for {
				select {
				case u, ok := <-updates:
					if !ok {
						break drain
					}
					batch = append(batch, u)
				default:
					break drain
				}
			}

			changed, quit := false, false
			for _, u := range batch {
				switch u.Kind {
				case Save:
					// Changes earlier in the batch must be visible in the saved frame
					if changed {
						last = s.RenderFrame(ctx)
						changed = false
						if !send(last) || last.Err != nil {
							return
						}
					}
					saved := last
					saved.Save = true
					if !send(saved) {
						return
					}
				case Quit:
					quit = true
				default:
					s.Apply(u)
					changed = true
				}
				if quit {
					break
				}
			}
			if quit {
				return
			}

			if changed {
				last = s.RenderFrame(ctx)
				if !send(last) || last.Err != nil {
					return
				}
			}
		}
	}()

	return results
}
