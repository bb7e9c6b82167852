package catalog

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmms090191-rgb/duerp-sub001/models"
)

// Registry holds one validated, immutable QuestionCatalog per sector.
// Catalogs come from YAML files in the configured directory plus the built-in
// default catalog. Lookups are total: an unknown sector id resolves to the
// default catalog, never to an error, so downstream code has no failure path
// for sector selection.
type Registry struct {
	catalogs      map[string]*models.QuestionCatalog
	defaultSector string
}

// NewRegistry builds a registry from the catalog directory. The directory is
// optional (a missing or empty directory leaves only the built-in default
// catalog); a directory entry that fails to parse or validate is a fatal
// configuration error, reported immediately rather than at traversal time.
// defaultSector names the catalog unknown sector ids fall back to; empty
// selects the built-in one. It must resolve to a loaded catalog.
func NewRegistry(dir, defaultSector string) (*Registry, error) {
	if defaultSector == "" {
		defaultSector = DefaultSectorID
	}
	r := &Registry{
		catalogs:      make(map[string]*models.QuestionCatalog),
		defaultSector: defaultSector,
	}

	def := DefaultCatalog()
	finalize(def)
	if err := Validate(def); err != nil {
		// The built-in catalog is static data shipped with the binary; if it
		// is broken the build is broken.
		return nil, fmt.Errorf("built-in default catalog is invalid: %w", err)
	}
	r.catalogs[def.SectorID] = def

	if err := r.loadDir(dir); err != nil {
		return nil, err
	}
	if !r.Has(r.defaultSector) {
		return nil, fmt.Errorf("configured default sector '%s' has no catalog", r.defaultSector)
	}
	log.Printf("INFO: [Catalog] Registry ready with %d sector(s): %s", len(r.catalogs), strings.Join(r.Sectors(), ", "))
	return r, nil
}

// loadDir loads every sector catalog file in the directory. A missing or
// unconfigured directory is not an error; a file that fails to parse or
// validate is.
func (r *Registry) loadDir(dir string) error {
	if dir == "" {
		log.Println("INFO: [Catalog] No catalog directory configured. Using built-in default catalog only.")
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("WARN: [Catalog] Catalog directory '%s' does not exist. Using built-in default catalog only.", dir)
			return nil
		}
		return fmt.Errorf("failed to read catalog directory '%s': %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		path := filepath.Join(dir, name)
		cat, err := loadFile(path)
		if err != nil {
			return err
		}
		if _, exists := r.catalogs[cat.SectorID]; exists {
			return fmt.Errorf("catalog file '%s' redefines sector '%s'", path, cat.SectorID)
		}
		r.catalogs[cat.SectorID] = cat
		log.Printf("INFO: [Catalog] Loaded sector catalog '%s' (%d categories, %d questions) from '%s'.",
			cat.SectorID, len(cat.Categories), cat.TotalQuestions(), path)
	}
	return nil
}

// loadFile parses and validates a single sector catalog YAML file.
func loadFile(path string) (*models.QuestionCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file '%s': %w", path, err)
	}
	var cat models.QuestionCatalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file '%s': %w", path, err)
	}
	if cat.SectorID == "" {
		return nil, fmt.Errorf("catalog file '%s' has no sector_id", path)
	}
	finalize(&cat)
	if err := Validate(&cat); err != nil {
		return nil, fmt.Errorf("catalog file '%s': %w", path, err)
	}
	return &cat, nil
}

// Get returns the catalog for the given sector id, falling back to the
// default catalog for unknown (or empty) sectors. It never fails.
func (r *Registry) Get(sectorID string) *models.QuestionCatalog {
	if cat, ok := r.catalogs[sectorID]; ok {
		return cat
	}
	if sectorID != "" {
		log.Printf("WARN: [Catalog] Unknown sector id '%s' requested. Falling back to default catalog '%s'.", sectorID, r.defaultSector)
	}
	return r.catalogs[r.defaultSector]
}

// Has reports whether a catalog exists for the exact sector id (no fallback).
func (r *Registry) Has(sectorID string) bool {
	_, ok := r.catalogs[sectorID]
	return ok
}

// Sectors returns all known sector ids, sorted.
func (r *Registry) Sectors() []string {
	ids := make([]string, 0, len(r.catalogs))
	for id := range r.catalogs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
