package confkit

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/joho/godotenv"
)

const maxWalkDepth = 8

var dotenvOnce sync.Once

// LoadDotenvOnce loads .env files the first time it is called. ENV_FILE points
// at an explicit file; otherwise every .env between this package and the
// module root is read. NO_DOTENV=1 disables loading and DOTENV_OVERLOAD=1 lets
// file values replace variables already set in the process.
func LoadDotenvOnce() {
	dotenvOnce.Do(loadDotenv)
}

func loadDotenv() {
	if os.Getenv("NO_DOTENV") == "1" {
		return
	}
	load := godotenv.Load
	if os.Getenv("DOTENV_OVERLOAD") == "1" {
		load = godotenv.Overload
	}
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		_ = load(envFile)
		return
	}
	dir := sourceDir()
	if dir == "" {
		_ = load(".env")
		return
	}
	walkUp(dir, func(dir string) bool {
		_ = load(filepath.Join(dir, ".env"))
		return isModuleRoot(dir)
	})
}

// ProjectRoot locates the module root by walking upwards from this package
// until a directory holding go.mod or .git appears. It falls back to the
// working directory.
func ProjectRoot() (string, error) {
	var root string
	walkUp(sourceDir(), func(dir string) bool {
		if isModuleRoot(dir) {
			root = dir
			return true
		}
		return false
	})
	if root != "" {
		return root, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return ".", fmt.Errorf("getwd: %w", err)
	}
	return wd, nil
}

func sourceDir() string {
	if _, file, _, ok := runtime.Caller(0); ok {
		return filepath.Dir(file)
	}
	return ""
}

// walkUp visits dir and its parents until visit returns true.
func walkUp(dir string, visit func(string) bool) bool {
	if dir == "" {
		return false
	}
	for i := 0; i < maxWalkDepth; i++ {
		if visit(dir) {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
	return false
}

func isModuleRoot(dir string) bool {
	return fileExists(filepath.Join(dir, "go.mod")) || fileExists(filepath.Join(dir, ".git"))
}

func fileExists(p string) bool {
	if p == "" {
		return false
	}
	_, err := os.Stat(p)
	return err == nil
}
