// Package record holds the records a platform stores: datasets and PIF
// systems, plus the filters that select them.
package record

import (
	"strings"
	"time"
)

// Dataset is a stored dataset.
type Dataset struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Owner       string    `json:"owner,omitempty"`
	Email       string    `json:"email,omitempty"`
	Public      bool      `json:"public"`
	CreatedAt   time.Time `json:"created_at"`
}

// Pif is a stored PIF system. System is the record body with snake_case keys.
type Pif struct {
	ID             string         `json:"id"`
	DatasetID      int            `json:"dataset_id"`
	DatasetVersion int            `json:"dataset_version"`
	UpdatedAt      time.Time      `json:"updated_at"`
	System         map[string]any `json:"system"`
}

// ChemicalFormula returns the system's chemical formula, if any.
func (p Pif) ChemicalFormula() string {
	s, _ := p.System["chemical_formula"].(string)
	return s
}

// Names returns the system's names.
func (p Pif) Names() []string {
	switch v := p.System["names"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, n := range v {
			if s, ok := n.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// PifFilter selects PIF systems. Empty fields match everything; values
// within a field are alternatives.
type PifFilter struct {
	IncludeDatasets []int
	ExcludeDatasets []int
	Formulas        []string
	Names           []string
}

// Match reports whether p passes the filter.
func (f PifFilter) Match(p Pif) bool {
	if len(f.IncludeDatasets) > 0 && !containsInt(f.IncludeDatasets, p.DatasetID) {
		return false
	}
	if containsInt(f.ExcludeDatasets, p.DatasetID) {
		return false
	}
	if len(f.Formulas) > 0 && !containsString(f.Formulas, p.ChemicalFormula()) {
		return false
	}
	if len(f.Names) > 0 {
		matched := false
		for _, n := range p.Names() {
			if containsString(f.Names, n) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// DatasetFilter selects datasets.
type DatasetFilter struct {
	IDs        []int
	ExcludeIDs []int
	Names      []string
}

// Match reports whether d passes the filter.
func (f DatasetFilter) Match(d Dataset) bool {
	if len(f.IDs) > 0 && !containsInt(f.IDs, d.ID) {
		return false
	}
	if containsInt(f.ExcludeIDs, d.ID) {
		return false
	}
	if len(f.Names) > 0 && !containsString(f.Names, d.Name) {
		return false
	}
	return true
}

// FileFilter selects dataset file paths. An exact match on Path always
// counts; files under Path as a directory count when they sit directly in
// it, or at any depth with Recursive set. An empty Path is the dataset root.
type FileFilter struct {
	Path      string
	Recursive bool
}

// Match reports whether the file at name passes the filter.
func (f FileFilter) Match(name string) bool {
	if name == f.Path {
		return true
	}
	prefix := strings.TrimSuffix(f.Path, "/")
	if prefix != "" {
		prefix += "/"
	}
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok {
		return false
	}
	return f.Recursive || !strings.Contains(rest, "/")
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func containsString(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
