package types

import (
	"github.com/google/uuid"
)

// AuthMethod identifies how a user signed up.
const (
	AuthMethodPassword  = "password"
	AuthMethodFederated = "federated"
)

// User represents the authenticated identity as returned by the API.
type User struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	AuthMethod    string    `json:"auth_method"`
	Gender        string    `json:"gender"`
	Age           int       `json:"age"`
	WeightKG      float64   `json:"weight_kg"`
	HeightCM      float64   `json:"height_cm"`
}

// Preferences holds the user's dietary preferences. CalorieGoal is computed
// server-side and must never be recomputed by the client; every preference
// update replaces the whole local copy with the server's response.
type Preferences struct {
	DietType      string   `json:"diet_type"`
	ActivityLevel string   `json:"activity_level"`
	Goal          string   `json:"goal"`
	CuisineTypes  []string `json:"cuisine_types"`
	Intolerances  []string `json:"intolerances"`
	CalorieGoal   int      `json:"calorie_goal"`
}

// Session is the payload returned by the credential-issuing endpoints.
// Preferences is nil for users who have not finished onboarding.
type Session struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         User         `json:"user"`
	Preferences  *Preferences `json:"preferences,omitempty"`
}
