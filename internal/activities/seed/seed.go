// Package seed loads the default activity fixtures into an empty store.
package seed

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mergington/activities/internal/activities/storage"
)

//go:embed fixtures/*.yaml
var fixturesFS embed.FS

// Fixture is the on-disk shape of the seed catalog.
type Fixture struct {
	Activities []ActivityFixture `yaml:"activities"`
}

// ActivityFixture is one seeded activity with its initial roster.
type ActivityFixture struct {
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	Schedule        string   `yaml:"schedule"`
	MaxParticipants int      `yaml:"max_participants"`
	Participants    []string `yaml:"participants"`
}

// LoadDefault parses the embedded fixture catalog.
func LoadDefault() (Fixture, error) {
	return LoadFromFS(fixturesFS, "fixtures/activities.yaml")
}

// LoadFromFS parses a fixture catalog from the provided filesystem.
func LoadFromFS(fsys fs.FS, path string) (Fixture, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(fixture.Activities) == 0 {
		return Fixture{}, fmt.Errorf("fixture %s contains no activities", path)
	}
	for _, activity := range fixture.Activities {
		if strings.TrimSpace(activity.Name) == "" {
			return Fixture{}, fmt.Errorf("fixture %s contains an unnamed activity", path)
		}
		if activity.MaxParticipants <= 0 {
			return Fixture{}, fmt.Errorf("fixture activity %q has non-positive capacity", activity.Name)
		}
		if len(activity.Participants) > activity.MaxParticipants {
			return Fixture{}, fmt.Errorf("fixture activity %q roster exceeds capacity", activity.Name)
		}
	}
	return fixture, nil
}

// Run seeds the default catalog when the store is empty.
// When force is set, existing activities are left in place and missing
// catalog entries are added.
func Run(ctx context.Context, store storage.Store, force bool) error {
	if store == nil {
		return errors.New("store is required")
	}

	count, err := store.CountActivities(ctx)
	if err != nil {
		return fmt.Errorf("count activities: %w", err)
	}
	if count > 0 && !force {
		return nil
	}

	fixture, err := LoadDefault()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	seeded := 0
	for _, activity := range fixture.Activities {
		record := storage.ActivityRecord{
			Name:            activity.Name,
			Description:     activity.Description,
			Schedule:        activity.Schedule,
			MaxParticipants: activity.MaxParticipants,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		err := store.CreateActivity(ctx, record, activity.Participants)
		if err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				continue
			}
			return fmt.Errorf("seed %s: %w", activity.Name, err)
		}
		seeded++
	}
	if seeded > 0 {
		log.Printf("seeded %d activities", seeded)
	}
	return nil
}
