// Package budgetstore caches annual room budgets as one YAML file per year.
package budgetstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/iwvelando/hotel-forecast/pkg/budget"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Load when no budget is cached for the year.
var ErrNotFound = errors.New("budget not found")

// document is the on-disk layout of a budget file.
type document struct {
	Year  int           `yaml:"year"`
	Lines []budget.Line `yaml:"lines"`
}

// Store reads and writes budget files under a directory.
type Store struct {
	dir    string
	logger *zap.Logger
	mu     sync.Mutex
}

// New creates a store rooted at dir. The directory is created on first save.
func New(logger *zap.Logger, dir string) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, logger: logger}
}

// Path returns the file holding the budget of year.
func (s *Store) Path(year int) string {
	return filepath.Join(s.dir, fmt.Sprintf("budget_%d.yaml", year))
}

// Load returns the cached budget of year, or ErrNotFound.
func (s *Store) Load(year int) ([]budget.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(year)
}

func (s *Store) load(year int) ([]budget.Line, error) {
	data, err := os.ReadFile(s.Path(year))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w for %d", ErrNotFound, year)
		}
		return nil, fmt.Errorf("failed to read budget: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse budget %s: %w", s.Path(year), err)
	}
	if doc.Year != 0 && doc.Year != year {
		return nil, fmt.Errorf("budget file %s holds year %d", s.Path(year), doc.Year)
	}
	return doc.Lines, nil
}

// Save writes the budget of year, replacing any cached one.
func (s *Store) Save(year int, lines []budget.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(year, lines)
}

func (s *Store) save(year int, lines []budget.Line) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create budget directory: %w", err)
	}
	data, err := yaml.Marshal(document{Year: year, Lines: lines})
	if err != nil {
		return fmt.Errorf("failed to encode budget: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf(".budget_%d_*.yaml", year))
	if err != nil {
		return fmt.Errorf("failed to create budget file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write budget: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write budget: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(year)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to store budget: %w", err)
	}

	s.logger.Debug("budget saved",
		zap.String("op", "budgetstore.Save"),
		zap.Int("year", year),
		zap.String("path", s.Path(year)),
	)
	return nil
}

// LoadOrGenerate returns the cached budget of year. When none exists it
// calls generate, saves the result and reports generated = true.
func (s *Store) LoadOrGenerate(year int, generate func() []budget.Line) (lines []budget.Line, generated bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err = s.load(year)
	if err == nil {
		return lines, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	lines = generate()
	if err := s.save(year, lines); err != nil {
		return nil, false, err
	}
	s.logger.Info("budget generated",
		zap.String("op", "budgetstore.LoadOrGenerate"),
		zap.Int("year", year),
		zap.Int("months", len(lines)),
	)
	return lines, true, nil
}
