package urlists

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedList is one named list in a seed file.
type SeedList struct {
	Name    string   `yaml:"name"`
	SiteURL string   `yaml:"site_url"`
	URLs    []string `yaml:"urls"`
}

// SeedFile preloads named URL lists at startup.
type SeedFile struct {
	Lists []SeedList `yaml:"lists"`
}

// LoadSeedFile reads and parses a yaml seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("error parsing seed file: %w", err)
	}
	return &seed, nil
}

// ApplySeed creates the seed file's lists that do not exist yet. Existing
// lists are left untouched so restarts never clobber user edits.
func ApplySeed(db *gorm.DB, logger *slog.Logger, seed *SeedFile) error {
	for _, entry := range seed.Lists {
		if entry.Name == "" {
			logger.Warn("Skipping seed list without a name")
			continue
		}

		if _, err := GetListByName(db, entry.Name); err == nil {
			logger.Debug("Seed list already exists", slog.String("name", entry.Name))
			continue
		}

		valid, rejected := Validate(entry.URLs)
		if len(rejected) > 0 {
			logger.Warn("Seed list contains invalid urls",
				slog.String("name", entry.Name),
				slog.Int("rejected", len(rejected)))
		}
		if len(valid) == 0 {
			logger.Warn("Skipping seed list with no valid urls", slog.String("name", entry.Name))
			continue
		}

		if _, err := SaveList(db, entry.Name, entry.SiteURL, valid); err != nil {
			return fmt.Errorf("error seeding url list %s: %w", entry.Name, err)
		}
		logger.Info("Seeded url list", slog.String("name", entry.Name), slog.Int("urls", len(valid)))
	}
	return nil
}
