package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadEnv loads the named env file from the working directory or the
// closest parent that has one.
func LoadEnv(name string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	path, err := findEnvFile(wd, name)
	if err != nil {
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

func findEnvFile(start, name string) (string, error) {
	dir := start
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find %s file", name)
		}
		dir = parent
	}
}
