package category

import "strings"

// Category is a built-in spending category.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// Other is the fallback category for unmatched entries.
const Other = "other"

var defaults = []Category{
	{ID: "groceries", Name: "Groceries", Color: "#ef4444", Icon: "🛒"},
	{ID: "restaurants", Name: "Restaurants", Color: "#f97316", Icon: "🍽️"},
	{ID: "coffee-shops", Name: "Coffee Shops", Color: "#b45309", Icon: "☕"},
	{ID: "rent-mortgage", Name: "Rent & Mortgage", Color: "#6366f1", Icon: "🏠"},
	{ID: "utilities", Name: "Utilities", Color: "#f59e0b", Icon: "💡"},
	{ID: "internet-phone", Name: "Internet & Phone", Color: "#0ea5e9", Icon: "📶"},
	{ID: "home-maintenance", Name: "Home Maintenance", Color: "#78716c", Icon: "🔧"},
	{ID: "gas-fuel", Name: "Gas & Fuel", Color: "#ea580c", Icon: "⛽"},
	{ID: "public-transit", Name: "Public Transit", Color: "#2563eb", Icon: "🚇"},
	{ID: "car-payment", Name: "Car Payment", Color: "#4f46e5", Icon: "🚗"},
	{ID: "parking-tolls", Name: "Parking & Tolls", Color: "#7c3aed", Icon: "🅿️"},
	{ID: "shopping", Name: "Shopping", Color: "#8b5cf6", Icon: "🛍️"},
	{ID: "clothing", Name: "Clothing", Color: "#a855f7", Icon: "👕"},
	{ID: "electronics", Name: "Electronics", Color: "#3b82f6", Icon: "🖥️"},
	{ID: "medical", Name: "Medical", Color: "#ec4899", Icon: "🏥"},
	{ID: "pharmacy", Name: "Pharmacy", Color: "#f472b6", Icon: "💊"},
	{ID: "gym-fitness", Name: "Gym & Fitness", Color: "#14b8a6", Icon: "💪"},
	{ID: "insurance", Name: "Insurance", Color: "#0d9488", Icon: "🛡️"},
	{ID: "entertainment", Name: "Entertainment", Color: "#06b6d4", Icon: "🎬"},
	{ID: "subscriptions", Name: "Subscriptions", Color: "#6366f1", Icon: "📱"},
	{ID: "education", Name: "Education", Color: "#0284c7", Icon: "📚"},
	{ID: "personal-care", Name: "Personal Care", Color: "#d946ef", Icon: "💇"},
	{ID: "pets", Name: "Pets", Color: "#a3e635", Icon: "🐾"},
	{ID: "gifts-donations", Name: "Gifts & Donations", Color: "#f43f5e", Icon: "🎁"},
	{ID: "travel", Name: "Travel", Color: "#0891b2", Icon: "✈️"},
	{ID: "income", Name: "Income", Color: "#2563eb", Icon: "💰"},
	{ID: Other, Name: "Other", Color: "#6b7280", Icon: "📦"},
}

// legacy maps labels stored by older clients to current ids.
var legacy = map[string]string{
	"food and grocery": "groceries",
	"food":             "groceries",
	"transportation":   "gas-fuel",
	"housing":          "rent-mortgage",
	"subscription":     "subscriptions",
}

// Defaults returns a copy of the built-in catalogue.
func Defaults() []Category {
	out := make([]Category, len(defaults))
	copy(out, defaults)

	return out
}

func ByID(id string) (Category, bool) {
	for _, c := range defaults {
		if c.ID == id {
			return c, true
		}
	}

	return Category{}, false
}

// ByName matches a display name case-insensitively.
func ByName(name string) (Category, bool) {
	for _, c := range defaults {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}

	return Category{}, false
}

// Resolve finds the category for a stored label, trying the id, the display
// name and then the legacy aliases.
func Resolve(value string) (Category, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return Category{}, false
	}

	if c, ok := ByID(strings.ToLower(v)); ok {
		return c, true
	}

	if c, ok := ByName(v); ok {
		return c, true
	}

	if id, ok := legacy[strings.ToLower(v)]; ok {
		return ByID(id)
	}

	return Category{}, false
}

// Names lists the display names in catalogue order.
func Names() []string {
	names := make([]string, len(defaults))
	for i, c := range defaults {
		names[i] = c.Name
	}

	return names
}
