package engine

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"
)

// DefaultTopN is the size of the top products lists.
const DefaultTopN = 10

// Op selects how a group's metric values are combined.
type Op int

const (
	OpSum Op = iota
	OpMean
	OpCount
)

func (o Op) String() string {
	switch o {
	case OpSum:
		return "sum"
	case OpMean:
		return "mean"
	case OpCount:
		return "count"
	}
	return "op(" + strconv.Itoa(int(o)) + ")"
}

// Group is one row of an AggregateResult.
type Group struct {
	Label string
	Value decimal.Decimal
	Count int
}

// AggregateResult is a read-only summary of a table keyed by GroupBy.
type AggregateResult struct {
	GroupBy Column
	Metric  Column
	Op      Op
	Groups  []Group
}

// groupTotals is indexed by dictionary ID instead of keyed by label.
type groupTotals struct {
	sums   []decimal.Decimal
	counts []int
}

func accumulate(t *Table, d *dimension, metric Column) groupTotals {
	totals := groupTotals{
		sums:   make([]decimal.Decimal, len(d.values)),
		counts: make([]int, len(d.values)),
	}
	withMetric := metric.IsMetric()
	for i, id := range d.ids {
		totals.counts[id]++
		if withMetric {
			totals.sums[id] = totals.sums[id].Add(t.metricAt(metric, i))
		}
	}
	return totals
}

// Aggregate groups t by groupBy and combines metric per group with op.
// Groups come back in dictionary order (first appearance in the loaded
// input); groups without records are omitted. metric is ignored for OpCount.
func Aggregate(t *Table, groupBy, metric Column, op Op) (AggregateResult, error) {
	d := t.dim(groupBy)
	if d == nil {
		return AggregateResult{}, fmt.Errorf("%w: cannot group by %q", ErrUnknownColumn, string(groupBy))
	}
	if op != OpCount && !metric.IsMetric() {
		return AggregateResult{}, fmt.Errorf("%w: %q is not a metric", ErrUnknownColumn, string(metric))
	}

	totals := accumulate(t, d, metric)
	res := AggregateResult{GroupBy: groupBy, Metric: metric, Op: op, Groups: make([]Group, 0, len(d.values))}
	for id, n := range totals.counts {
		if n == 0 {
			continue
		}
		g := Group{Label: d.values[id], Count: n}
		switch op {
		case OpSum:
			g.Value = totals.sums[id]
		case OpMean:
			g.Value = totals.sums[id].Div(decimal.NewFromInt(int64(n)))
		case OpCount:
			g.Value = decimal.NewFromInt(int64(n))
		default:
			return AggregateResult{}, fmt.Errorf("%w: unsupported op %s", ErrInvalidAggregation, op)
		}
		res.Groups = append(res.Groups, g)
	}
	return res, nil
}

// SumOf sums a metric column. An empty table sums to zero.
func SumOf(t *Table, col Column) (decimal.Decimal, error) {
	if !col.IsMetric() {
		return decimal.Zero, fmt.Errorf("%w: %q is not a metric", ErrUnknownColumn, string(col))
	}
	total := decimal.Zero
	for i := 0; i < t.Len(); i++ {
		total = total.Add(t.metricAt(col, i))
	}
	return total, nil
}

// MeanOf averages a metric column. The result is invalid (undefined) for an empty table.
func MeanOf(t *Table, col Column) (decimal.NullDecimal, error) {
	total, err := SumOf(t, col)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	if t.Len() == 0 {
		return decimal.NullDecimal{}, nil
	}
	return decimal.NewNullDecimal(total.Div(decimal.NewFromInt(int64(t.Len())))), nil
}

// TopBySum returns the group of groupBy with the largest metric sum.
// Ties go to the value that appeared first in the loaded input.
// An empty table has no groups and yields ErrInvalidAggregation.
func TopBySum(t *Table, groupBy, metric Column) (Group, error) {
	res, err := Aggregate(t, groupBy, metric, OpSum)
	if err != nil {
		return Group{}, err
	}
	if len(res.Groups) == 0 {
		return Group{}, fmt.Errorf("%w: no %s groups in an empty table", ErrInvalidAggregation, string(groupBy))
	}
	top := res.Groups[0]
	for _, g := range res.Groups[1:] {
		if g.Value.GreaterThan(top.Value) {
			top = g
		}
	}
	return top, nil
}

// SumByGroup sums metric per groupBy value, largest sum first.
// Equal sums keep dictionary order.
func SumByGroup(t *Table, groupBy, metric Column) ([]Group, error) {
	res, err := Aggregate(t, groupBy, metric, OpSum)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(res.Groups, func(a, b Group) int { return b.Value.Cmp(a.Value) })
	return res.Groups, nil
}

// SumByMonth sums metric per calendar month, ordered January to December.
// Only months present in t are returned.
func SumByMonth(t *Table, metric Column) ([]Group, error) {
	res, err := Aggregate(t, ColumnMonth, metric, OpSum)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(res.Groups, func(a, b Group) int { return MonthNumber(a.Label) - MonthNumber(b.Label) })
	return res.Groups, nil
}

// CountBy counts records per value of col, most frequent first.
// Equal counts keep dictionary order.
func CountBy(t *Table, col Column) ([]Group, error) {
	res, err := Aggregate(t, col, "", OpCount)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(res.Groups, func(a, b Group) int { return b.Count - a.Count })
	return res.Groups, nil
}

// TopN returns the n groups with the largest metric sum, descending.
// A tie at the cut-off keeps the group seen first in the loaded input.
func TopN(t *Table, groupBy, metric Column, n int) ([]Group, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: top-n size must be positive, got %d", ErrInvalidAggregation, n)
	}
	groups, err := SumByGroup(t, groupBy, metric)
	if err != nil {
		return nil, err
	}
	if len(groups) > n {
		groups = groups[:n]
	}
	return groups, nil
}

// MonthNumber converts a month label of the Month column to 1..12, or 0.
func MonthNumber(label string) int {
	n, err := strconv.Atoi(label)
	if err != nil {
		return 0
	}
	return n
}
