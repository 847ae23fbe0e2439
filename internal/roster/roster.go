package roster

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/legal_queries/backend/internal/models"
)

var ErrEmptyRoster = errors.New("roster has no lawyers")

type file struct {
	Lawyers []models.Lawyer `yaml:"lawyers" validate:"dive"`
}

func Load(path string) ([]models.Lawyer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return Parse(bytes.NewReader(b))
}

// Parse decodes and validates a roster document. Lawyer ids and emails must be unique
// because the balancer and the load recomputation key on them.
func Parse(r io.Reader) ([]models.Lawyer, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyRoster
		}
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	if len(f.Lawyers) == 0 {
		return nil, ErrEmptyRoster
	}
	if err := validator.New().Struct(f); err != nil {
		return nil, fmt.Errorf("validate roster: %w", err)
	}

	ids := map[string]struct{}{}
	emails := map[string]struct{}{}
	for _, l := range f.Lawyers {
		if _, ok := ids[l.ID]; ok {
			return nil, fmt.Errorf("validate roster: duplicate lawyer id %q", l.ID)
		}
		ids[l.ID] = struct{}{}
		if _, ok := emails[l.Email]; ok {
			return nil, fmt.Errorf("validate roster: duplicate lawyer email %q", l.Email)
		}
		emails[l.Email] = struct{}{}
	}
	return f.Lawyers, nil
}
