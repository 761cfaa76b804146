package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	builtInGroup = "Built-in Scenes"
	fileGroup    = "Scene Files"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier, accepted by the web server
	Name        string `json:"name"`        // Scene name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"-"`           // Path to the scene file (file type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// BuiltInScenes describes the scenes Create knows by name
func BuiltInScenes() []SceneInfo {
	return []SceneInfo{
		{ID: "default", Name: "Room", Description: "Textured room with a mirror sphere", Group: builtInGroup, Type: "builtin"},
		{ID: "mirror-floor", Name: "Mirror Floor", Description: "Reflective floor with three colored spheres", Group: builtInGroup, Type: "builtin"},
		{ID: "empty", Name: "Empty", Description: "Nothing but sky", Group: builtInGroup, Type: "builtin"},
	}
}

// ListSceneFiles scans dir for *.json scene files. A missing directory is not an error.
func ListSceneFiles(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		// No scenes directory found, return empty list
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := make([]SceneInfo, 0, len(files))
	for _, filePath := range files {
		info, err := ParseSceneMetadata(filePath)
		if err != nil {
			// Log warning but continue processing other files
			fmt.Printf("Warning: failed to parse metadata for %s: %v\n", filePath, err)
			continue
		}
		scenes = append(scenes, info)
	}

	// Sort scenes by name
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})

	return scenes, nil
}

// ParseSceneMetadata reads the name, description and group of a scene file,
// falling back to values derived from the file name
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	nameWithoutExt := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))

	info := SceneInfo{
		ID:       "file:" + nameWithoutExt,
		Name:     titleCase(nameWithoutExt),
		Group:    fileGroup, // Default group
		Type:     "file",
		FilePath: filePath,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return info, err
	}

	var meta struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Group       string `json:"group"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return info, err
	}

	if meta.Name != "" {
		info.Name = meta.Name
	}
	if meta.Group != "" {
		info.Group = meta.Group
	}
	info.Description = meta.Description
	return info, nil
}

// FindScene looks a scene ID up among the built-in scenes and the files in dir
func FindScene(id, dir string) (SceneInfo, bool) {
	for _, info := range BuiltInScenes() {
		if info.ID == id {
			return info, true
		}
	}
	if !strings.HasPrefix(id, "file:") {
		return SceneInfo{}, false
	}

	files, err := ListSceneFiles(dir)
	if err != nil {
		return SceneInfo{}, false
	}
	for _, info := range files {
		if info.ID == id {
			return info, true
		}
	}
	return SceneInfo{}, false
}

// Load builds the scene a SceneInfo describes
func (info SceneInfo) Load(textures Textures) (*Scene, error) {
	if info.Type == "file" {
		return Create(info.FilePath, textures)
	}
	return Create(info.ID, textures)
}

// ListAllScenes returns built-in scenes and the scene files in dir, grouped by category
func ListAllScenes(dir string) (ScenesResponse, error) {
	var response ScenesResponse

	fileScenes, err := ListSceneFiles(dir)
	if err != nil {
		return response, fmt.Errorf("failed to list scene files: %w", err)
	}

	// Combine all scenes
	allScenes := append(BuiltInScenes(), fileScenes...)

	// Group scenes by their Group field
	groupMap := make(map[string][]SceneInfo)
	for _, scene := range allScenes {
		groupMap[scene.Group] = append(groupMap[scene.Group], scene)
	}

	// Create ordered groups (Built-in first, then alphabetical)
	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtInGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	response.Groups = append(response.Groups, SceneGroup{
		Name:   builtInGroup,
		Scenes: groupMap[builtInGroup],
	})
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response, nil
}

// titleCase converts a filename-style string to title case
// e.g., "two-mirrors" -> "Two Mirrors"
func titleCase(s string) string {
	// Replace hyphens and underscores with spaces
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	// Title case each word
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
