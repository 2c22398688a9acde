package store

import "context"

// Usage reports the size of the stored documents against the store
// capacity. The capacity is never enforced.
type Usage struct {
	Used                int     `json:"used"`
	Remaining           int     `json:"remaining"`
	PercentUsed         float64 `json:"percentUsed"`
	Capacity            int     `json:"capacity"`
	ExpenseCount        int     `json:"expenseCount"`
	CustomCategoryCount int     `json:"customCategoryCount"`
}

func (s *Store) Usage(ctx context.Context) Usage {
	used := s.size(ctx, ExpensesKey) + s.size(ctx, CustomCategoriesKey)

	u := Usage{
		Used:                used,
		Remaining:           max(s.capacity-used, 0),
		PercentUsed:         min(float64(used)/float64(s.capacity)*100, 100),
		Capacity:            s.capacity,
		ExpenseCount:        len(s.Load(ctx)),
		CustomCategoryCount: len(s.LoadCustomCategories(ctx)),
	}
	return u
}

// size counts a missing document as an empty array.
func (s *Store) size(ctx context.Context, key string) int {
	raw, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return len("[]")
	}
	return len(raw)
}
