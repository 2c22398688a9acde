package core

// Budget holds average monthly spend per budget category.
type Budget struct {
	Housing        float64 `json:"housing"`
	Food           float64 `json:"food"`
	Transportation float64 `json:"transportation"`
	Utilities      float64 `json:"utilities"`
	Entertainment  float64 `json:"entertainment"`
	Healthcare     float64 `json:"healthcare"`
	Other          float64 `json:"other"`
}

// BudgetLine is one named entry of a Budget.
type BudgetLine struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// BudgetTemplate is the cost-of-living profile of a city.
type BudgetTemplate struct {
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
	Currency string `json:"currency"`
	Budget   Budget `json:"budget"`
}

// Lines returns the budget entries in display order.
func (b Budget) Lines() []BudgetLine {
	return []BudgetLine{
		{Category: "housing", Amount: b.Housing},
		{Category: "food", Amount: b.Food},
		{Category: "transportation", Amount: b.Transportation},
		{Category: "utilities", Amount: b.Utilities},
		{Category: "entertainment", Amount: b.Entertainment},
		{Category: "healthcare", Amount: b.Healthcare},
		{Category: "other", Amount: b.Other},
	}
}

// Total is the sum of all seven categories.
func (b Budget) Total() float64 {
	var sum float64
	for _, l := range b.Lines() {
		sum += l.Amount
	}
	return sum
}

// Display returns the "City, ST" form of the location.
func (t BudgetTemplate) Display() string {
	return t.City + ", " + t.State
}
