//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the viewer. MODEL and CONFIG environment variables are passed as flags.
func (Run) Viewer() error {
	fmt.Println("Run viewer...")
	if _, err := executeCmd("go", withArgs(viewerArgs()...), withStream()); err != nil {
		return err
	}
	return nil
}

// Loads MODEL, logs its statistics and exits without opening a window.
func (Run) Inspect() error {
	if os.Getenv("MODEL") == "" {
		return fmt.Errorf("MODEL must point to an OBJ file")
	}
	args := append(viewerArgs(), "-inspect")
	if _, err := executeCmd("go", withArgs(args...), withStream()); err != nil {
		return err
	}
	return nil
}

func viewerArgs() []string {
	args := []string{"run", "main.go"}
	if c := os.Getenv("CONFIG"); c != "" {
		args = append(args, "-config", c)
	}
	if m := os.Getenv("MODEL"); m != "" {
		args = append(args, "-model", m)
	}
	return args
}
