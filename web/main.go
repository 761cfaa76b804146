package main

import (
	"flag"
	"log"
	"os"

	"github.com/Alex1A1ndrA/KompGraf/pkg/loaders"
	"github.com/Alex1A1ndrA/KompGraf/pkg/scene"
	"github.com/Alex1A1ndrA/KompGraf/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	floorPath := flag.String("floor", "", "Floor texture image (default: procedural checker)")
	wallPath := flag.String("wall", "", "Wall texture image (default: procedural checker)")
	scenesDir := flag.String("scenes", "scenes", "Directory of JSON scene files")
	flag.Parse()

	textures := scene.DefaultTextures()
	if *floorPath != "" {
		floor, err := loaders.LoadTexture(*floorPath)
		if err != nil {
			log.Printf("Error loading floor texture: %v", err)
			os.Exit(1)
		}
		textures.Floor = floor
	}
	if *wallPath != "" {
		wall, err := loaders.LoadTexture(*wallPath)
		if err != nil {
			log.Printf("Error loading wall texture: %v", err)
			os.Exit(1)
		}
		textures.Wall = wall
	}

	// Create and start web server
	webServer := server.NewServer(*port, textures, *scenesDir)

	log.Printf("Ray Tracer Web Server")
	log.Printf("Visit http://localhost:%d to start rendering", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
