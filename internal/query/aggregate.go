package query

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"acorn/internal/core"
)

// Group collects the records of one category.
type Group struct {
	Category core.Category        `json:"category"`
	Expenses []core.ExpenseRecord `json:"expenses"`
	Total    float64              `json:"total"`
}

// CategoryShare is a group with its share of the overall total.
type CategoryShare struct {
	CategoryID string        `json:"categoryId"`
	Category   core.Category `json:"category"`
	Count      int           `json:"count"`
	Total      float64       `json:"total"`
	Percentage float64       `json:"percentage"`
}

// Summary describes spending within a period.
type Summary struct {
	Period      Period               `json:"period"`
	Label       string               `json:"label"`
	Total       float64              `json:"total"`
	Count       int                  `json:"count"`
	Average     float64              `json:"average"`
	Highest     *core.ExpenseRecord  `json:"highest,omitempty"`
	TopCategory *CategoryShare       `json:"topCategory,omitempty"`
	Breakdown   []CategoryShare      `json:"breakdown"`
	Top         []CategoryShare      `json:"top"`
	Expenses    []core.ExpenseRecord `json:"-"`
}

// TopCategories is how many entries Summary.Top holds.
const TopCategories = 5

func amountOf(r core.ExpenseRecord) decimal.Decimal {
	v := r.Amount.Float()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

func sum(records []core.ExpenseRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(amountOf(r))
	}
	return total
}

// Total sums the amounts; unusable amounts count as zero.
func Total(records []core.ExpenseRecord) float64 {
	return sum(records).InexactFloat64()
}

// GroupByCategory buckets records by category id. Records without a
// category land in "other". Custom categories resolve display data.
func GroupByCategory(records []core.ExpenseRecord, custom ...core.CustomCategory) map[string]*Group {
	groups := make(map[string]*Group)
	totals := make(map[string]decimal.Decimal)
	for _, r := range records {
		id := r.CategoryOrDefault()
		g, ok := groups[id]
		if !ok {
			g = &Group{Category: core.ResolveCategory(id, custom)}
			groups[id] = g
		}
		g.Expenses = append(g.Expenses, r)
		totals[id] = totals[id].Add(amountOf(r))
	}
	for id, g := range groups {
		g.Total = totals[id].InexactFloat64()
	}
	return groups
}

// Breakdown returns the category groups ordered by total, largest first,
// with each group's percentage of the overall total. Percentages are zero
// when the total is zero.
func Breakdown(records []core.ExpenseRecord, custom ...core.CustomCategory) []CategoryShare {
	groups := GroupByCategory(records, custom...)
	total := sum(records)

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]CategoryShare, 0, len(ids))
	for _, id := range ids {
		g := groups[id]
		share := CategoryShare{
			CategoryID: id,
			Category:   g.Category,
			Count:      len(g.Expenses),
			Total:      g.Total,
		}
		if total.IsPositive() {
			share.Percentage = decimal.NewFromFloat(g.Total).Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		out = append(out, share)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

// Summarize computes the spending overview for a period.
func Summarize(records []core.ExpenseRecord, p Period, now time.Time, custom ...core.CustomCategory) Summary {
	inPeriod := ByPeriod(records, p, now)
	s := Summary{
		Period:    p,
		Label:     p.Label(),
		Count:     len(inPeriod),
		Breakdown: Breakdown(inPeriod, custom...),
		Expenses:  inPeriod,
	}
	total := sum(inPeriod)
	s.Total = total.InexactFloat64()
	if len(inPeriod) > 0 {
		s.Average = total.Div(decimal.NewFromInt(int64(len(inPeriod)))).InexactFloat64()
		highest := inPeriod[0]
		for _, r := range inPeriod[1:] {
			if r.Amount > highest.Amount {
				highest = r
			}
		}
		s.Highest = &highest
	}
	s.Top = s.Breakdown
	if len(s.Top) > TopCategories {
		s.Top = s.Top[:TopCategories]
	}
	if len(s.Breakdown) > 0 {
		top := s.Breakdown[0]
		s.TopCategory = &top
	}
	return s
}
