package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/haukened/desec-go/internal/common/log"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "desecctl"
)

func main() {
	loadDotenv(".env")

	a := &app{}
	root := newRootCmd(a)
	root.SetContext(context.Background())

	err := root.Execute()
	if cerr := a.close(context.Background()); cerr != nil {
		log.Error(map[string]any{"error": cerr.Error()}, "Cleanup failed")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(exitCode(err))
	}
}

// loadDotenv loads path into the environment. A missing file is fine; the
// environment may already be set.
func loadDotenv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn(map[string]any{"path": path, "error": err.Error()}, "Ignoring unreadable .env file")
	}
}
