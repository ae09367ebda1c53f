package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pyrolyze/chartrack/internal/core/domain"
)

type sitesFile struct {
	Sites []domain.Site `yaml:"sites"`
}

// LoadSiteRegistry builds the site registry from the YAML override file when
// configured, otherwise from the built-in plant table. Keeping the mapping in
// one auditable table is the point; nothing else may infer sites.
func LoadSiteRegistry(path string) (*domain.SiteRegistry, error) {
	if path == "" {
		return domain.NewSiteRegistry(domain.DefaultSites())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sites file: %w", err)
	}

	var parsed sitesFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse sites file: %w", err)
	}

	registry, err := domain.NewSiteRegistry(parsed.Sites)
	if err != nil {
		return nil, fmt.Errorf("validate sites file: %w", err)
	}
	return registry, nil
}
