package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/Alex1A1ndrA/KompGraf/pkg/core"
	"github.com/Alex1A1ndrA/KompGraf/pkg/loaders"
	"github.com/Alex1A1ndrA/KompGraf/pkg/renderer"
	"github.com/Alex1A1ndrA/KompGraf/pkg/scene"
)

func main() {
	// Parse command line flags
	sceneType := flag.String("scene", "default", "Scene: 'default', 'mirror-floor', 'empty' or a path to a .json scene file")
	width := flag.Int("width", 800, "Image width in pixels")
	height := flag.Int("height", 600, "Image height in pixels")
	fov := flag.Float64("fov", 0, "Vertical field of view in degrees (0 = scene default)")
	yaw := flag.Float64("yaw", 0, "Camera yaw in degrees, positive turns left (default: scene camera)")
	depth := flag.Int("depth", 0, "Maximum reflection depth (0 = scene default)")
	workers := flag.Int("workers", 0, "Number of rows rendered in parallel (0 = CPU count)")
	floorPath := flag.String("floor", "", "Floor texture image (default: procedural checker)")
	wallPath := flag.String("wall", "", "Wall texture image (default: procedural checker)")
	reflectivity := flag.Float64("reflectivity", scene.DefaultReflectivity, "Sphere reflectivity in [0,1] (default: scene value)")
	interactive := flag.Bool("interactive", false, "Read commands from stdin and render a frame after each")
	order := flag.String("order", "rgb", "Framebuffer channel order: 'rgb' or 'bgr'")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("Ray Tracer")
		fmt.Println("Usage: raytracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Available scenes:")
		fmt.Println("  default      - Textured room with a mirror sphere")
		fmt.Println("  mirror-floor - Reflective floor with three colored spheres")
		fmt.Println("  empty        - No surfaces, only the sky")
		fmt.Println("  <file>.json  - Scene description file")
		if files, err := scene.ListSceneFiles("scenes"); err == nil && len(files) > 0 {
			fmt.Println()
			fmt.Println("Scene files in scenes/:")
			for _, info := range files {
				fmt.Printf("  %-28s - %s\n", info.FilePath, info.Name)
			}
		}
		fmt.Println()
		fmt.Println("Interactive commands (one or more per line):")
		fmt.Println("  w/s a/d q/e  move the camera along z, x and y")
		fmt.Println("  + / -        change sphere reflectivity")
		fmt.Println("  space        save the current frame as result.png")
		fmt.Println("  esc, quit    exit")
		fmt.Println()
		fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.png")
		return
	}

	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	if err := run(*sceneType, *width, *height, *depth, *workers, *order, *floorPath, *wallPath, *interactive,
		func(s *scene.Scene) {
			if *fov > 0 {
				s.Camera.FOV = *fov
			}
			if setFlags["yaw"] {
				s.Camera.Yaw = *yaw
			}
			if setFlags["reflectivity"] {
				s.SetReflectivity(*reflectivity)
			}
		}); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(sceneType string, width, height, depth, workers int, order, floorPath, wallPath string, interactive bool, adjust func(*scene.Scene)) error {
	fmt.Println("Starting Ray Tracer...")

	channelOrder, err := renderer.ParseChannelOrder(order)
	if err != nil {
		return err
	}

	textures, err := loadTextures(floorPath, wallPath)
	if err != nil {
		return err
	}

	selectedScene, err := createScene(sceneType, textures)
	if err != nil {
		return err
	}
	adjust(selectedScene)
	fmt.Printf("Using %s scene (%d surfaces)...\n", sceneType, selectedScene.GetPrimitiveCount())

	// Create output directory for this scene
	outputDir := filepath.Join("output", sceneOutputName(sceneType))
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	config := renderer.DefaultConfig()
	config.MaxDepth = depth
	config.NumWorkers = workers
	config.ChannelOrder = channelOrder
	rt := renderer.NewRenderer(config, renderer.NewDefaultLogger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if interactive {
		session := renderer.NewSession(selectedScene, rt, width, height, renderer.NewDefaultLogger())
		return runInteractive(ctx, session, os.Stdin, outputDir)
	}

	fb, stats, err := rt.Render(ctx, selectedScene, selectedScene.Camera, width, height)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	fmt.Printf("Render completed in %v\n", stats.Elapsed)

	filename := outputPath(outputDir, time.Now())
	if err := savePNG(fb, filename); err != nil {
		return err
	}
	fmt.Printf("Render saved as %s\n", filename)
	return nil
}

// createScene creates a built-in scene or loads a scene file
func createScene(sceneType string, textures scene.Textures) (*scene.Scene, error) {
	if sceneType == "" {
		return nil, fmt.Errorf("%w: empty scene name", scene.ErrUnknownScene)
	}
	return scene.Create(sceneType, textures)
}

// loadTextures replaces the procedural room textures with image files where given
func loadTextures(floorPath, wallPath string) (scene.Textures, error) {
	textures := scene.DefaultTextures()
	if floorPath != "" {
		floor, err := loaders.LoadTexture(floorPath)
		if err != nil {
			return scene.Textures{}, fmt.Errorf("floor texture: %w", err)
		}
		textures.Floor = floor
	}
	if wallPath != "" {
		wall, err := loaders.LoadTexture(wallPath)
		if err != nil {
			return scene.Textures{}, fmt.Errorf("wall texture: %w", err)
		}
		textures.Wall = wall
	}
	return textures, nil
}

// sceneOutputName turns a scene name or scene file path into a directory name
func sceneOutputName(sceneType string) string {
	base := filepath.Base(sceneType)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// outputPath creates a timestamped filename
func outputPath(outputDir string, now time.Time) string {
	timestamp := now.Format("20060102_150405")
	return filepath.Join(outputDir, fmt.Sprintf("render_%s.png", timestamp))
}

func savePNG(fb *renderer.Framebuffer, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, fb.Image()); err != nil {
		return fmt.Errorf("error saving PNG: %w", err)
	}
	return nil
}

// parseLine maps one line of interactive input to updates. Whole-word
// "esc"/"quit" quit; otherwise every character is a key.
func parseLine(line string) []renderer.Update {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "esc", "quit", "exit":
		return []renderer.Update{{Kind: renderer.Quit}}
	}

	var updates []renderer.Update
	for _, key := range line {
		if u, ok := renderer.ParseCommand(key); ok {
			updates = append(updates, u)
		}
	}
	return updates
}

// runInteractive renders frames until quit, applying commands read from in
// between frames and saving result.png on request
func runInteractive(ctx context.Context, session *renderer.Session, in io.Reader, outputDir string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan renderer.Update)
	go func() {
		defer close(updates)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			for _, u := range parseLine(scanner.Text()) {
				select {
				case updates <- u:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	for result := range session.Run(ctx, updates) {
		if result.Err != nil {
			return fmt.Errorf("render failed: %w", result.Err)
		}
		if result.Save {
			filename := filepath.Join(outputDir, "result.png")
			if err := savePNG(result.Framebuffer, filename); err != nil {
				return err
			}
			fmt.Printf("Frame %d saved as %s\n", result.Frame, filename)
			continue
		}
		fmt.Printf("Frame %d: camera %s, sphere reflectivity %.1f\n",
			result.Frame, formatVec(result.Camera.Position), result.Reflectivity)
	}
	return nil
}

func formatVec(v core.Vec3) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}
