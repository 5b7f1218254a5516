package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FilterSpec maps a dimension column to the values allowed through.
// A column absent from the map is unconstrained. A column mapped to an
// empty slice lets nothing through.
type FilterSpec map[Column][]string

// DefaultFilterSpec selects every value present in t for each filterable
// column. Filtering with it returns t unchanged.
func DefaultFilterSpec(t *Table) FilterSpec {
	spec := make(FilterSpec, len(FilterColumns))
	for _, col := range FilterColumns {
		spec[col] = t.Distinct(col)
	}
	return spec
}

// Validate reports keys that are not dimension columns.
func (s FilterSpec) Validate() error {
	for col := range s {
		if !col.IsDimension() {
			return fmt.Errorf("%w: cannot filter on %q", ErrUnknownColumn, string(col))
		}
	}
	return nil
}

// Filter returns the records of t whose value in every column of spec is
// one of that column's allowed values. Order is preserved; t is not modified.
// Keys that are not dimension columns are ignored, see FilterSpec.Validate.
func Filter(t *Table, spec FilterSpec) *Table {
	type lookup struct {
		ids     []int32
		allowed []bool // indexed by dictionary ID
	}

	// 1. Translate each allowed set into an ID lookup (no hashing in the row loop)
	lookups := make([]lookup, 0, len(spec))
	for col, values := range spec {
		d := t.dim(col)
		if d == nil {
			continue
		}
		if len(values) == 0 {
			return t.selectRows(nil)
		}
		want := make(map[string]struct{}, len(values))
		for _, v := range values {
			if col == ColumnMonth {
				v = normalizeMonth(v)
			}
			want[v] = struct{}{}
		}
		allowed := make([]bool, len(d.values))
		for id, v := range d.values {
			_, allowed[id] = want[v]
		}
		lookups = append(lookups, lookup{ids: d.ids, allowed: allowed})
	}
	if len(lookups) == 0 {
		return t
	}

	// 2. Single pass: a row survives only if every lookup admits it
	keep := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		pass := true
		for _, l := range lookups {
			if !l.allowed[l.ids[i]] {
				pass = false
				break
			}
		}
		if pass {
			keep = append(keep, i)
		}
	}
	return t.selectRows(keep)
}

// ParseMonthValues normalizes month filter values to "1".."12".
// Accepts numbers ("3", "03") and English names ("Mar", "March").
func ParseMonthValues(values []string) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		m, err := parseMonthValue(v)
		if err != nil {
			return nil, err
		}
		out = append(out, strconv.Itoa(m))
	}
	return out, nil
}

func parseMonthValue(v string) (int, error) {
	s := strings.TrimSpace(v)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("%w: month %d out of range 1-12", ErrInvalidFilter, n)
		}
		return n, nil
	}
	name := cases.Title(language.English).String(s)
	for _, layout := range []string{"Jan", "January"} {
		if t, err := time.Parse(layout, name); err == nil {
			return int(t.Month()), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown month %q", ErrInvalidFilter, v)
}

func normalizeMonth(v string) string {
	if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		return strconv.Itoa(n)
	}
	return v
}
