// cmd/tools/worker-generator/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	"elevate-workers/pkg/registry"
)

func main() {
	activity := flag.String("activity", "", "Activity ID from registry (e.g., issue-certificate)")
	outputDir := flag.String("output", "./internal/workers/", "Root directory for generated workers")
	registryPath := flag.String("registry", "configs/activity-registry.json", "Path to the activity registry JSON file")
	force := flag.Bool("force", false, "Overwrite existing files")
	flag.Parse()

	if *activity == "" {
		fmt.Println("Usage: worker-generator --activity <id> [--output <dir>] [--registry <path>] [--force]")
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry from %s: %v\n", *registryPath, err)
		os.Exit(1)
	}

	act, err := reg.Find(*activity)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	files, err := Scaffold(*act)
	if err != nil {
		fmt.Printf("Error rendering worker: %v\n", err)
		os.Exit(1)
	}

	dir, err := WriteScaffold(*outputDir, *act, files, *force)
	if err != nil {
		fmt.Printf("Error writing worker: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Worker scaffold generated at %s\n", dir)
	fmt.Println("Next steps:")
	fmt.Println("  1. Implement Execute in handler.go")
	fmt.Println("  2. Register the worker in cmd/worker-manager/workers.go")
	fmt.Println("  3. Add the worker to configs/config.yaml")
}
