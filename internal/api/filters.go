package api

import (
	"fmt"
	"net/url"
	"strings"

	"salesdash/internal/engine"
)

// filterParams maps query parameter names to the columns they constrain.
var filterParams = map[string]engine.Column{
	"category": engine.ColumnCategory,
	"region":   engine.ColumnRegion,
	"payment":  engine.ColumnPayment,
	"month":    engine.ColumnMonth,
}

// pathColumns maps :column path segments to groupable columns.
var pathColumns = map[string]engine.Column{
	"category": engine.ColumnCategory,
	"region":   engine.ColumnRegion,
	"payment":  engine.ColumnPayment,
	"month":    engine.ColumnMonth,
	"product":  engine.ColumnProduct,
}

// parseFilterSpec builds a FilterSpec from repeatable query parameters.
// An absent parameter leaves its column unconstrained; a parameter present
// with only empty values ("?region=") selects nothing.
func parseFilterSpec(q url.Values) (engine.FilterSpec, error) {
	spec := engine.FilterSpec{}
	for param, col := range filterParams {
		raw, ok := q[param]
		if !ok {
			continue
		}
		values := make([]string, 0, len(raw))
		for _, v := range raw {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if col == engine.ColumnMonth {
			months, err := engine.ParseMonthValues(values)
			if err != nil {
				return nil, err
			}
			values = months
		}
		spec[col] = values
	}
	return spec, nil
}

func parseColumn(name string) (engine.Column, error) {
	col, ok := pathColumns[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("%w: %q (want category, region, payment, month or product)", engine.ErrUnknownColumn, name)
	}
	return col, nil
}
