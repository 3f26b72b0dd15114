package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/mealwise/mealwise-go/internal/gateway"
	"github.com/mealwise/mealwise-go/internal/types"
)

// SessionAPI is the slice of the gateway the session store consumes.
type SessionAPI interface {
	Login(ctx context.Context, identifier, password string) (*types.Session, error)
	LoginFederated(ctx context.Context, idToken string) (*types.Session, error)
	Register(ctx context.Context, email, password string) (*types.User, error)
	Logout(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	SendVerificationCode(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, email, code string) (*types.Session, error)
	SendPasswordResetCode(ctx context.Context, email string) error
	VerifyPasswordResetCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	UpdateBasicInfo(ctx context.Context, req types.UpdateBasicInfoRequest) (*types.BasicInfoResponse, error)
	UpdateActivityLevel(ctx context.Context, level string) (*types.Preferences, error)
	UpdateGoal(ctx context.Context, goal string) (*types.Preferences, error)
	UpdateDietType(ctx context.Context, dietType string) (*types.Preferences, error)
	UpdateCuisineTypes(ctx context.Context, cuisines []string) (*types.Preferences, error)
	UpdateIntolerances(ctx context.Context, intolerances []string) (*types.Preferences, error)
}

// PlanAPI is the slice of the gateway the meal plan store consumes.
type PlanAPI interface {
	GetMealPlan(ctx context.Context) (*types.MealPlan, error)
	GenerateMealPlan(ctx context.Context) (*types.MealPlan, error)
	CreateMealItem(ctx context.Context, req types.CreateMealItemRequest) (*types.SlotMeal, error)
	UpdateMealItem(ctx context.Context, mealItemID int64, recipeID uuid.UUID) (*types.SlotMeal, error)
	DeleteMealItem(ctx context.Context, mealItemID int64) error
	SuggestionsForItem(ctx context.Context, mealItemID int64) ([]types.RecipeShort, error)
	SuggestionsForSlot(ctx context.Context, day, slot int, mealType string) ([]types.RecipeShort, error)
	GenerateShoppingList(ctx context.Context, servings int) (*types.ShoppingList, error)
}

// RecipeAPI is the slice of the gateway the recipe store consumes.
type RecipeAPI interface {
	ListRecipes(ctx context.Context) ([]types.RecipeShort, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*types.RecipeDetail, error)
	CreateRecipe(ctx context.Context, req types.CreateRecipeRequest) (*types.RecipeDetail, error)
	UpdateRecipe(ctx context.Context, id uuid.UUID, req types.CreateRecipeRequest) (*types.RecipeDetail, error)
	DeleteRecipe(ctx context.Context, id uuid.UUID, force bool) error
	RequestUploadTarget(ctx context.Context, filename string) (*types.UploadTarget, error)
	UploadImage(ctx context.Context, target *types.UploadTarget, data []byte) error
}

// The gateway satisfies all three slices.
var (
	_ SessionAPI = (*gateway.Gateway)(nil)
	_ PlanAPI    = (*gateway.Gateway)(nil)
	_ RecipeAPI  = (*gateway.Gateway)(nil)
)
