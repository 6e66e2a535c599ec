package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// seedCourse is a course definition loaded from a YAML seed file.
type seedCourse struct {
	Title       string           `yaml:"title"`
	Description string           `yaml:"description"`
	Duration    string           `yaml:"duration"`
	Image       string           `yaml:"image"`
	Topics      []map[string]any `yaml:"topics"`
	Quiz        []map[string]any `yaml:"quiz"`
}

// Seed walks rootDir for *.yaml course files and creates every course whose
// title is not already in the catalog. Invalid files are skipped with a
// warning so one bad seed cannot block startup.
func (c *Catalog) Seed(ctx context.Context, rootDir string) error {
	existing, err := c.List(ctx)
	if err != nil {
		return fmt.Errorf("listing catalog before seed: %w", err)
	}
	titles := make(map[string]bool, len(existing))
	for _, course := range existing {
		titles[course.Title] = true
	}

	seeded := 0
	err = filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var seed seedCourse
		if err := yaml.Unmarshal(data, &seed); err != nil {
			slog.Warn("skipping invalid course seed", "path", path, "error", err)
			return nil
		}
		if seed.Title == "" {
			return nil // Not a course file.
		}
		if titles[seed.Title] {
			return nil
		}

		course, err := c.Create(ctx, CreateInput{
			Title:       seed.Title,
			Description: seed.Description,
			Duration:    seed.Duration,
			Image:       seed.Image,
			Topics:      normalizeYAML(seed.Topics),
			Quiz:        normalizeYAML(seed.Quiz),
		})
		if err != nil {
			slog.Warn("skipping unseedable course", "path", path, "error", err)
			return nil
		}

		titles[course.Title] = true
		seeded++
		return nil
	})
	if err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}

	slog.Info("catalog seeded", "dir", rootDir, "courses", seeded)
	return nil
}

// normalizeYAML rewrites nested YAML values into their JSON-compatible form so
// seeded content round-trips identically to content created over HTTP.
func normalizeYAML(entries []map[string]any) []map[string]any {
	if entries == nil {
		return nil
	}
	out := make([]map[string]any, len(entries))
	for i, entry := range entries {
		m := make(map[string]any, len(entry))
		for k, v := range entry {
			m[k] = normalizeValue(v)
		}
		out[i] = m
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = normalizeValue(item)
		}
		return m
	case []any:
		list := make([]any, len(val))
		for i, item := range val {
			list[i] = normalizeValue(item)
		}
		return list
	case int:
		return float64(val)
	default:
		return v
	}
}
