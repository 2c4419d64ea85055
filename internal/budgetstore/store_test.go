package budgetstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iwvelando/hotel-forecast/pkg/budget"
)

func sampleLines() []budget.Line {
	return []budget.Line{
		{Year: 2025, Month: time.January, MonthName: "January", Revenue: 105000, Rooms: 1200, ADR: 87.5},
		{Year: 2025, Month: time.February, MonthName: "February", Revenue: 99750, Rooms: 1100, ADR: 90.68},
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := New(nil, filepath.Join(t.TempDir(), "budgets"))

	if _, err := s.Load(2025); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() error = %v, expected ErrNotFound", err)
	}
	if err := s.Save(2025, sampleLines()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(s.Path(2025)); err != nil {
		t.Errorf("expected budget_2025.yaml to exist: %v", err)
	}
	if filepath.Base(s.Path(2025)) != "budget_2025.yaml" {
		t.Errorf("Path() = %s", s.Path(2025))
	}

	lines, err := s.Load(2025)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(lines) != 2 || lines[1].Month != time.February || lines[1].ADR != 90.68 {
		t.Errorf("Load() = %+v", lines)
	}
}

func TestLoadOrGenerate(t *testing.T) {
	s := New(nil, t.TempDir())
	calls := 0
	generate := func() []budget.Line {
		calls++
		return sampleLines()
	}

	lines, generated, err := s.LoadOrGenerate(2025, generate)
	if err != nil || !generated || len(lines) != 2 {
		t.Fatalf("LoadOrGenerate() = %d lines, %v, %v", len(lines), generated, err)
	}
	lines, generated, err = s.LoadOrGenerate(2025, generate)
	if err != nil || generated || len(lines) != 2 {
		t.Fatalf("second LoadOrGenerate() = %d lines, %v, %v", len(lines), generated, err)
	}
	if calls != 1 {
		t.Errorf("generate called %d times, expected 1", calls)
	}
}

func TestLoadRejectsMismatchedYear(t *testing.T) {
	dir := t.TempDir()
	s := New(nil, dir)
	if err := os.WriteFile(s.Path(2025), []byte("year: 2024\nlines: []\n"), 0o644); err != nil {
		t.Fatalf("failed to write budget: %v", err)
	}
	if _, err := s.Load(2025); err == nil {
		t.Error("Load() expected error for mismatched year")
	}

	if err := os.WriteFile(s.Path(2026), []byte("lines: [\n"), 0o644); err != nil {
		t.Fatalf("failed to write budget: %v", err)
	}
	if _, err := s.Load(2026); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, expected parse error", err)
	}
}
