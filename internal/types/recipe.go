package types

import (
	"github.com/google/uuid"
)

// RecipeShort is the lightweight recipe projection embedded in lists and
// meal plan slots.
type RecipeShort struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	ImageURL       string    `json:"image_url"`
	ReadyInMinutes int       `json:"ready_in_minutes"`
	Calories       float64   `json:"calories"`
	Servings       int       `json:"servings"`
}

// RecipeDetail is the full recipe record, fetched per id on demand.
type RecipeDetail struct {
	ID             uuid.UUID    `json:"id"`
	Title          string       `json:"title"`
	ImageURL       string       `json:"image_url"`
	ReadyInMinutes int          `json:"ready_in_minutes"`
	Calories       float64      `json:"calories"`
	Servings       int          `json:"servings"`
	Ingredients    []Ingredient `json:"ingredients"`
	Instructions   []string     `json:"instructions"`
	Nutrients      []Nutrient   `json:"nutrients"`
	DietaryTags    []string     `json:"dietary_tags"`
}

// Short returns the list projection of a detail record.
func (d *RecipeDetail) Short() RecipeShort {
	return RecipeShort{
		ID:             d.ID,
		Title:          d.Title,
		ImageURL:       d.ImageURL,
		ReadyInMinutes: d.ReadyInMinutes,
		Calories:       d.Calories,
		Servings:       d.Servings,
	}
}

// Ingredient is a single recipe ingredient line.
type Ingredient struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	ImageURL string  `json:"image_url"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Aisle    string  `json:"aisle"`
}

// Nutrient is one entry of a recipe's nutrient breakdown.
type Nutrient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// UploadTarget is the server's answer to an image-upload request: the client
// PUTs the raw bytes to UploadURL with ContentType, then references PublicURL
// in the recipe payload.
type UploadTarget struct {
	UploadURL   string `json:"upload_url"`
	PublicURL   string `json:"public_url"`
	ContentType string `json:"content_type"`
}
