package types

// Measure is an ingredient quantity in one unit system.
type Measure struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// ShoppingItem is one line of the shopping list, with measures for both
// unit systems so the client can switch display without a refetch.
type ShoppingItem struct {
	IngredientID int64   `json:"ingredient_id"`
	Name         string  `json:"name"`
	ImageURL     string  `json:"image_url"`
	Metric       Measure `json:"metric"`
	US           Measure `json:"us"`
	Aisle        string  `json:"aisle"`
}

// ShoppingAisle groups items by store aisle.
type ShoppingAisle struct {
	Aisle string         `json:"aisle"`
	Items []ShoppingItem `json:"items"`
}

// ShoppingList is generated on demand for a serving count and fully replaced
// on each generation call. It is never cached.
type ShoppingList struct {
	Aisles []ShoppingAisle `json:"aisles"`
}
