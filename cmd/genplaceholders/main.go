package main

import (
	"fmt"
	"os"

	"chosenoffset.com/tilemap/internal/placeholders"
)

func main() {
	dir := "data/atlases"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	fmt.Println("Tile Map Placeholder Texture Generator")
	fmt.Println("======================================")
	fmt.Println()

	if err := placeholders.GenerateAndSave(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d terrain textures to %s\n", len(placeholders.Terrains), dir)
	fmt.Println("Run the viewer with --atlas", dir+"/terrain.json")
}
