package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gitlab.com/swifttrack/driver-app/internal/model"
)

// SchemaVersion of the snapshot document. Bump on incompatible layout change.
const SchemaVersion = 1

// Snapshot is the optional local persistence of the session. Unknown fields
// written by newer builds are preserved across a load/save round trip.
type Snapshot struct {
	path string

	// raw document and per-package raw entries from the last load, kept so
	// fields this build does not know about survive a rewrite.
	extra    map[string]json.RawMessage
	pkgExtra map[string]json.RawMessage
}

func NewSnapshot(path string) *Snapshot {
	return &Snapshot{
		path:     path,
		extra:    make(map[string]json.RawMessage),
		pkgExtra: make(map[string]json.RawMessage),
	}
}

// Load reads the snapshot file and returns the packages it holds, in the
// stored manifest order. A missing file is not an error.
func (s *Snapshot) Load() ([]*model.Package, *model.Driver, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read snapshot: %w", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("decode snapshot: %w", err)
	}

	var version int
	if raw, ok := doc["schema_version"]; ok {
		if err := json.Unmarshal(raw, &version); err != nil {
			return nil, nil, fmt.Errorf("decode snapshot version: %w", err)
		}
	}
	if version > SchemaVersion {
		return nil, nil, fmt.Errorf("snapshot schema %d newer than supported %d", version, SchemaVersion)
	}

	var order []string
	if raw, ok := doc["order"]; ok {
		if err := json.Unmarshal(raw, &order); err != nil {
			return nil, nil, fmt.Errorf("decode snapshot order: %w", err)
		}
	}

	rawPackages := make(map[string]json.RawMessage)
	if raw, ok := doc["packages"]; ok {
		if err := json.Unmarshal(raw, &rawPackages); err != nil {
			return nil, nil, fmt.Errorf("decode snapshot packages: %w", err)
		}
	}

	var driver *model.Driver
	if raw, ok := doc["driver"]; ok && string(raw) != "null" {
		driver = &model.Driver{}
		if err := json.Unmarshal(raw, driver); err != nil {
			return nil, nil, fmt.Errorf("decode snapshot driver: %w", err)
		}
	}

	for k, v := range doc {
		switch k {
		case "schema_version", "order", "packages", "driver":
		default:
			s.extra[k] = v
		}
	}

	pkgs := make([]*model.Package, 0, len(rawPackages))
	for id, raw := range rawPackages {
		var p model.Package
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, nil, fmt.Errorf("decode snapshot package %s: %w", id, err)
		}
		s.pkgExtra[id] = raw
		pkgs = append(pkgs, &p)
	}

	// Restore manifest order; packages unknown to the order list append last.
	ordered := make([]*model.Package, 0, len(pkgs))
	seen := make(map[string]bool, len(pkgs))
	byID := make(map[string]*model.Package, len(pkgs))
	for _, p := range pkgs {
		byID[p.ID] = p
	}
	for _, id := range order {
		if p, ok := byID[id]; ok && !seen[id] {
			ordered = append(ordered, p)
			seen[id] = true
		}
	}
	for _, p := range pkgs {
		if !seen[p.ID] {
			ordered = append(ordered, p)
		}
	}
	return ordered, driver, nil
}

// Save writes the store contents and driver to the snapshot file, merging
// back any unknown fields captured at load time.
func (s *Snapshot) Save(st *Store, driver *model.Driver) error {
	pkgs := st.List()

	order := make([]string, 0, len(pkgs))
	packages := make(map[string]json.RawMessage, len(pkgs))
	for _, p := range pkgs {
		order = append(order, p.ID)
		raw, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode package %s: %w", p.ID, err)
		}
		merged, err := mergeRaw(s.pkgExtra[p.ID], raw)
		if err != nil {
			return fmt.Errorf("merge package %s: %w", p.ID, err)
		}
		packages[p.ID] = merged
	}

	doc := make(map[string]interface{}, len(s.extra)+4)
	for k, v := range s.extra {
		doc[k] = v
	}
	doc["schema_version"] = SchemaVersion
	doc["order"] = order
	doc["packages"] = packages
	if driver != nil {
		doc["driver"] = driver
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// mergeRaw overlays the freshly marshalled object onto the previously loaded
// raw object, keeping keys only the old document knows about.
func mergeRaw(old, fresh json.RawMessage) (json.RawMessage, error) {
	if len(old) == 0 {
		return fresh, nil
	}
	var oldMap, freshMap map[string]json.RawMessage
	if err := json.Unmarshal(old, &oldMap); err != nil {
		return fresh, nil
	}
	if err := json.Unmarshal(fresh, &freshMap); err != nil {
		return nil, err
	}
	for k, v := range freshMap {
		oldMap[k] = v
	}
	// Drop keys the fresh encoding deliberately omitted (cleared optionals)
	// only when the model owns them; unknown keys stay.
	for _, known := range []string{"proof", "failure"} {
		if _, ok := freshMap[known]; !ok {
			delete(oldMap, known)
		}
	}
	return json.Marshal(oldMap)
}
