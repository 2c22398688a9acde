package core

// Category classifies an expense. Subcategories are display labels only.
type Category struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Icon          string   `json:"icon"`
	Color         string   `json:"color"`
	Subcategories []string `json:"subcategories,omitempty"`
}

// CustomCategory is a user-defined category stored next to the expenses.
type CustomCategory = Category

var builtinCategories = []Category{
	{ID: "housing", Name: "Housing", Icon: "🏠", Color: "#4A90E2",
		Subcategories: []string{"Rent", "Mortgage", "Property Tax", "Home Insurance", "HOA Fees", "Maintenance"}},
	{ID: "utilities", Name: "Utilities", Icon: "💡", Color: "#F5A623",
		Subcategories: []string{"Electricity", "Water", "Gas", "Internet", "Phone", "Trash"}},
	{ID: "food", Name: "Food & Dining", Icon: "🍽️", Color: "#E74C3C",
		Subcategories: []string{"Groceries", "Restaurants", "Fast Food", "Coffee Shops", "Delivery"}},
	{ID: "transportation", Name: "Transportation", Icon: "🚗", Color: "#9B59B6",
		Subcategories: []string{"Gas", "Public Transit", "Car Payment", "Car Insurance", "Maintenance", "Parking", "Rideshare"}},
	{ID: "healthcare", Name: "Healthcare", Icon: "⚕️", Color: "#1ABC9C",
		Subcategories: []string{"Insurance", "Doctor Visits", "Prescriptions", "Dental", "Vision", "Medical Supplies"}},
	{ID: "entertainment", Name: "Entertainment", Icon: "🎮", Color: "#E67E22",
		Subcategories: []string{"Streaming Services", "Movies", "Games", "Concerts", "Hobbies", "Books"}},
	{ID: "shopping", Name: "Shopping", Icon: "🛍️", Color: "#3498DB",
		Subcategories: []string{"Clothing", "Electronics", "Home Goods", "Gifts", "Personal Care"}},
	{ID: "education", Name: "Education", Icon: "📚", Color: "#16A085",
		Subcategories: []string{"Tuition", "Books", "Courses", "School Supplies", "Student Loans"}},
	{ID: "personal", Name: "Personal Care", Icon: "💆", Color: "#F39C12",
		Subcategories: []string{"Haircut", "Gym", "Spa", "Beauty Products", "Laundry", "Dry Cleaning"}},
	{ID: "travel", Name: "Travel", Icon: "✈️", Color: "#2ECC71",
		Subcategories: []string{"Flights", "Hotels", "Vacation", "Business Travel"}},
	{ID: "insurance", Name: "Insurance", Icon: "🛡️", Color: "#34495E",
		Subcategories: []string{"Life Insurance", "Health Insurance", "Home Insurance", "Auto Insurance"}},
	{ID: "debt", Name: "Debt Payments", Icon: "💳", Color: "#C0392B",
		Subcategories: []string{"Credit Card", "Personal Loan", "Student Loan", "Car Loan", "Other Debt"}},
	{ID: "savings", Name: "Savings", Icon: "💰", Color: "#27AE60",
		Subcategories: []string{"Emergency Fund", "Retirement", "Investment", "General Savings"}},
	{ID: "charity", Name: "Charity & Tithing", Icon: "🙏", Color: "#8E44AD",
		Subcategories: []string{"Tithing", "Donations", "Charity", "Offering"}},
	{ID: "pets", Name: "Pets", Icon: "🐾", Color: "#D35400",
		Subcategories: []string{"Pet Food", "Vet", "Pet Insurance", "Grooming", "Pet Supplies"}},
	{ID: DefaultCategoryID, Name: "Other", Icon: "📦", Color: "#95A5A6",
		Subcategories: []string{"Miscellaneous"}},
}

var builtinByID = func() map[string]int {
	m := make(map[string]int, len(builtinCategories))
	for i, c := range builtinCategories {
		m[c.ID] = i
	}
	return m
}()

// Categories returns the built-in categories in display order.
func Categories() []Category {
	out := make([]Category, len(builtinCategories))
	copy(out, builtinCategories)
	return out
}

// CategoryByID resolves a built-in category. Unknown ids resolve to "other".
func CategoryByID(id string) Category {
	if i, ok := builtinByID[id]; ok {
		return builtinCategories[i]
	}
	return builtinCategories[builtinByID[DefaultCategoryID]]
}

// IsBuiltinCategory reports whether id names a built-in category.
func IsBuiltinCategory(id string) bool {
	_, ok := builtinByID[id]
	return ok
}

// MergeCategories returns the built-ins followed by custom categories.
// Custom entries are appended as-is, including ids that shadow a built-in.
func MergeCategories(custom []CustomCategory) []Category {
	out := Categories()
	return append(out, custom...)
}

// ResolveCategory returns the built-in with the given id when there is one.
// Otherwise it looks id up in custom, falling back to "other".
func ResolveCategory(id string, custom []CustomCategory) Category {
	if !IsBuiltinCategory(id) {
		for _, c := range custom {
			if c.ID == id {
				return c
			}
		}
	}
	return CategoryByID(id)
}
