package persistence

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/workorder-service/internal/repository"
)

// LoadFixtures decodes a YAML seed file. Unknown keys are rejected so typos
// surface instead of silently seeding nothing.
func LoadFixtures(path string) (repository.Fixtures, error) {
	var fixtures repository.Fixtures

	f, err := os.Open(path)
	if err != nil {
		return fixtures, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fixtures); err != nil && !errors.Is(err, io.EOF) {
		return fixtures, fmt.Errorf("decode fixtures %s: %w", path, err)
	}
	return fixtures, nil
}
