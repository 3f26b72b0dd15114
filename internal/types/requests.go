package types

import (
	"github.com/google/uuid"
)

// LoginRequest authenticates by email or username.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// FederatedLoginRequest carries an identity token issued by an external
// provider.
type FederatedLoginRequest struct {
	IDToken string `json:"id_token"`
}

// RegisterRequest creates a pending (unverified) account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest exchanges a refresh credential for a new access credential.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse is the refresh endpoint's payload.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// VerifyEmailRequest confirms an emailed verification code.
type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// SendCodeRequest asks the server to email a verification or reset code.
type SendCodeRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest completes the password-reset sub-flow. Email and Code
// come from the locally held reset session.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// UpdateBasicInfoRequest patches profile attributes collected during the
// first onboarding step.
type UpdateBasicInfoRequest struct {
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Gender   string  `json:"gender"`
	Age      int     `json:"age"`
	WeightKG float64 `json:"weight_kg"`
	HeightCM float64 `json:"height_cm"`
}

// BasicInfoResponse returns the updated user plus recomputed preferences
// when the server had enough data to derive a calorie goal.
type BasicInfoResponse struct {
	User        User         `json:"user"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// CreateMealItemRequest fills an empty or new slot with a recipe.
type CreateMealItemRequest struct {
	Day      int       `json:"day"`
	Slot     int       `json:"slot"`
	MealType string    `json:"meal_type"`
	RecipeID uuid.UUID `json:"recipe_id"`
}

// UpdateMealItemRequest swaps the recipe of an existing meal item.
type UpdateMealItemRequest struct {
	RecipeID uuid.UUID `json:"recipe_id"`
}

// CreateRecipeRequest carries a new personal recipe. The server assigns the
// id and returns the full detail record.
type CreateRecipeRequest struct {
	Title          string       `json:"title"`
	ImageURL       string       `json:"image_url"`
	ReadyInMinutes int          `json:"ready_in_minutes"`
	Servings       int          `json:"servings"`
	Ingredients    []Ingredient `json:"ingredients"`
	Instructions   []string     `json:"instructions"`
	DietaryTags    []string     `json:"dietary_tags"`
}
