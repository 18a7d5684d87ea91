package referee

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pfrederiksen/dfbnet-assist/internal/fsx"
	"github.com/pfrederiksen/dfbnet-assist/internal/logger"
)

// Options configures a Store.
type Options struct {
	// JSONPath is the canonical referee store. Loads from this path are self-healing.
	JSONPath string
	// CSVPath is the optional CSV source used to seed a missing JSON store.
	CSVPath string
	// Defaults are written when no source exists and returned when the store is corrupt.
	// Nil means DefaultGroups(DefaultTargetContext()).
	Defaults []Group
	Logger   *logger.Logger
}

// Store reads and writes grouped referee data.
type Store struct {
	jsonPath string
	csvPath  string
	defaults []Group
	log      *logger.Logger
}

// NewStore creates a Store. The defaults are copied, so later changes to
// opts.Defaults do not leak into the store.
func NewStore(opts Options) *Store {
	defaults := opts.Defaults
	if defaults == nil {
		defaults = DefaultGroups(DefaultTargetContext())
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	return &Store{
		jsonPath: opts.JSONPath,
		csvPath:  opts.CSVPath,
		defaults: CloneGroups(defaults),
		log:      log.With(logger.Fields{"component": "referee-store"}),
	}
}

// JSONPath returns the canonical store path.
func (s *Store) JSONPath() string { return s.jsonPath }

// CSVPath returns the CSV source path.
func (s *Store) CSVPath() string { return s.csvPath }

// Defaults returns a fresh copy of the built-in groups.
func (s *Store) Defaults() []Group {
	return CloneGroups(s.defaults)
}

// Ensure makes sure the canonical JSON store exists. A present store is left alone;
// otherwise the CSV source is converted, and if that is missing or fails the defaults
// are written. Ensure never fails; problems are logged.
func (s *Store) Ensure() {
	if fsx.Exists(s.jsonPath) {
		return
	}

	if s.csvPath != "" {
		groups, err := ConvertCSV(s.csvPath, s.jsonPath, true)
		if err == nil {
			s.log.Info("Converted referee CSV", logger.Fields{
				"csv":    s.csvPath,
				"json":   s.jsonPath,
				"groups": len(groups),
			})
			return
		}
		if errors.Is(err, ErrCSVNotFound) {
			s.log.Debug("Referee CSV conversion skipped", logger.Fields{"csv": s.csvPath, "reason": err.Error()})
		} else {
			s.log.Warn("Referee CSV conversion failed, using defaults", logger.Fields{"csv": s.csvPath, "error": err.Error()})
		}
	}

	if err := fsx.WriteJSON(s.jsonPath, s.defaults); err != nil {
		s.log.Error("Could not write default referee data", logger.Fields{"json": s.jsonPath}, err)
		return
	}
	s.log.Info("Wrote default referee data", logger.Fields{"json": s.jsonPath, "groups": len(s.defaults)})
}

// ConvertCSV converts the configured CSV source into the canonical JSON store.
func (s *Store) ConvertCSV(overwrite bool) ([]Group, error) {
	return ConvertCSV(s.csvPath, s.jsonPath, overwrite)
}

func (s *Store) isCanonical(path string) bool {
	return path == "" || filepath.Clean(path) == filepath.Clean(s.jsonPath)
}

// Load reads referee groups from path; "" means the canonical store.
//
// The canonical store is created on demand and a read failure there yields the
// defaults. For any other path a read failure is returned. Content that is not valid
// JSON always yields a copy of the defaults; a valid top level that is not an array
// yields no groups.
func (s *Store) Load(path string) ([]Group, error) {
	canonical := s.isCanonical(path)
	if canonical {
		path = s.jsonPath
		s.Ensure()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !canonical {
			return nil, fmt.Errorf("reading referee data: %w", err)
		}
		s.log.Warn("Could not read referee data, using defaults", logger.Fields{
			"json":  path,
			"error": err.Error(),
		})
		return s.Defaults(), nil
	}

	return s.decode(path, data), nil
}

func (s *Store) decode(path string, data []byte) []Group {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []Group{}
	}
	if !json.Valid(data) {
		s.log.Warn("Could not parse referee data, falling back to defaults", logger.Fields{"json": path})
		return s.Defaults()
	}
	if data[0] != '[' {
		return []Group{}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.Warn("Could not parse referee data, falling back to defaults", logger.Fields{
			"json":  path,
			"error": err.Error(),
		})
		return s.Defaults()
	}

	groups := make([]Group, 0, len(entries))
	for _, raw := range entries {
		groups = append(groups, Normalize(raw))
	}
	return groups
}

// Save writes groups to path ("" means the canonical store).
func (s *Store) Save(path string, groups []Group) error {
	if path == "" {
		path = s.jsonPath
	}
	if groups == nil {
		groups = []Group{}
	}
	if err := fsx.WriteJSON(path, groups); err != nil {
		return fmt.Errorf("saving referee data: %w", err)
	}
	return nil
}

// FindForContext returns the referees of every group whose context equals ctx exactly,
// in group order and then entry order.
func (s *Store) FindForContext(ctx MatchContext, path string) ([]Name, error) {
	groups, err := s.Load(path)
	if err != nil {
		return nil, err
	}
	return NamesFor(groups, ctx), nil
}

// NamesFor flattens the referees of the groups matching ctx.
func NamesFor(groups []Group, ctx MatchContext) []Name {
	names := make([]Name, 0)
	for _, g := range groups {
		if !g.Context.Equal(ctx) {
			continue
		}
		for _, r := range g.Referees {
			names = append(names, Name{r.FirstName, r.LastName})
		}
	}
	return names
}
