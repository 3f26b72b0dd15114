package gateway

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/mealwise/mealwise-go/internal/apperr"
	"github.com/mealwise/mealwise-go/internal/types"
)

// Login authenticates with an email or username plus password.
func (g *Gateway) Login(ctx context.Context, identifier, password string) (*types.Session, error) {
	var session types.Session
	req := types.LoginRequest{Identifier: identifier, Password: password}
	if err := g.do(ctx, http.MethodPost, "/v1/auth/login", req, &session, false); err != nil {
		return nil, err
	}
	return &session, nil
}

// LoginFederated authenticates with an identity token from an external
// provider.
func (g *Gateway) LoginFederated(ctx context.Context, idToken string) (*types.Session, error) {
	var session types.Session
	req := types.FederatedLoginRequest{IDToken: idToken}
	if err := g.do(ctx, http.MethodPost, "/v1/auth/federated", req, &session, false); err != nil {
		return nil, err
	}
	return &session, nil
}

// Register creates a pending account. No session credential is issued until
// the email is verified.
func (g *Gateway) Register(ctx context.Context, email, password string) (*types.User, error) {
	var user types.User
	req := types.RegisterRequest{Email: email, Password: password}
	if err := g.do(ctx, http.MethodPost, "/v1/auth/register", req, &user, false); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout revokes the server-side session.
func (g *Gateway) Logout(ctx context.Context) error {
	return g.do(ctx, http.MethodPost, "/v1/auth/logout", nil, nil, true)
}

// DeleteAccount permanently deletes the account.
func (g *Gateway) DeleteAccount(ctx context.Context) error {
	return g.do(ctx, http.MethodDelete, "/v1/auth/account", nil, nil, true)
}

// SendVerificationCode emails a verification code to a pending account.
func (g *Gateway) SendVerificationCode(ctx context.Context, email string) error {
	req := types.SendCodeRequest{Email: email}
	return g.do(ctx, http.MethodPost, "/v1/auth/verify/send", req, nil, false)
}

// VerifyEmail confirms the emailed code. A successful verification issues
// the session credentials.
func (g *Gateway) VerifyEmail(ctx context.Context, email, code string) (*types.Session, error) {
	var session types.Session
	req := types.VerifyEmailRequest{Email: email, Code: code}
	if err := g.do(ctx, http.MethodPost, "/v1/auth/verify", req, &session, false); err != nil {
		return nil, err
	}
	return &session, nil
}

// SendPasswordResetCode starts the password-reset sub-flow.
func (g *Gateway) SendPasswordResetCode(ctx context.Context, email string) error {
	req := types.SendCodeRequest{Email: email}
	return g.do(ctx, http.MethodPost, "/v1/auth/password/send-code", req, nil, false)
}

// VerifyPasswordResetCode checks an emailed reset code.
func (g *Gateway) VerifyPasswordResetCode(ctx context.Context, email, code string) error {
	req := types.VerifyEmailRequest{Email: email, Code: code}
	return g.do(ctx, http.MethodPost, "/v1/auth/password/verify-code", req, nil, false)
}

// ResetPassword completes the reset sub-flow with the verified code.
func (g *Gateway) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	req := types.ResetPasswordRequest{Email: email, Code: code, NewPassword: newPassword}
	return g.do(ctx, http.MethodPost, "/v1/auth/password/reset", req, nil, false)
}

// UpdateBasicInfo patches profile attributes. The response includes
// recomputed preferences when the server derived a new calorie goal.
func (g *Gateway) UpdateBasicInfo(ctx context.Context, req types.UpdateBasicInfoRequest) (*types.BasicInfoResponse, error) {
	var resp types.BasicInfoResponse
	if err := g.do(ctx, http.MethodPatch, "/v1/profile", req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// updatePreference patches one preference slice and returns the full updated
// preferences, including server-computed derived fields.
func (g *Gateway) updatePreference(ctx context.Context, path string, body any) (*types.Preferences, error) {
	var prefs types.Preferences
	if err := g.do(ctx, http.MethodPatch, path, body, &prefs, true); err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (g *Gateway) UpdateActivityLevel(ctx context.Context, level string) (*types.Preferences, error) {
	return g.updatePreference(ctx, "/v1/preferences/activity-level", map[string]string{"activity_level": level})
}

func (g *Gateway) UpdateGoal(ctx context.Context, goal string) (*types.Preferences, error) {
	return g.updatePreference(ctx, "/v1/preferences/goal", map[string]string{"goal": goal})
}

func (g *Gateway) UpdateDietType(ctx context.Context, dietType string) (*types.Preferences, error) {
	return g.updatePreference(ctx, "/v1/preferences/diet-type", map[string]string{"diet_type": dietType})
}

func (g *Gateway) UpdateCuisineTypes(ctx context.Context, cuisines []string) (*types.Preferences, error) {
	return g.updatePreference(ctx, "/v1/preferences/cuisine-types", map[string][]string{"cuisine_types": cuisines})
}

func (g *Gateway) UpdateIntolerances(ctx context.Context, intolerances []string) (*types.Preferences, error) {
	return g.updatePreference(ctx, "/v1/preferences/intolerances", map[string][]string{"intolerances": intolerances})
}

// GetMealPlan returns the current plan, or a not-found error when none
// exists yet.
func (g *Gateway) GetMealPlan(ctx context.Context) (*types.MealPlan, error) {
	var plan types.MealPlan
	if err := g.do(ctx, http.MethodGet, "/v1/meal-plan", nil, &plan, true); err != nil {
		return nil, err
	}
	return &plan, nil
}

// GenerateMealPlan replaces the plan wholesale with a freshly generated one.
func (g *Gateway) GenerateMealPlan(ctx context.Context) (*types.MealPlan, error) {
	var plan types.MealPlan
	if err := g.do(ctx, http.MethodPost, "/v1/meal-plan/generate", nil, &plan, true); err != nil {
		return nil, err
	}
	return &plan, nil
}

// CreateMealItem fills a slot and returns the canonical slot with the
// server-assigned meal item id.
func (g *Gateway) CreateMealItem(ctx context.Context, req types.CreateMealItemRequest) (*types.SlotMeal, error) {
	var slot types.SlotMeal
	if err := g.do(ctx, http.MethodPost, "/v1/meal-plan/items", req, &slot, true); err != nil {
		return nil, err
	}
	return &slot, nil
}

// UpdateMealItem swaps the recipe of an existing meal item.
func (g *Gateway) UpdateMealItem(ctx context.Context, mealItemID int64, recipeID uuid.UUID) (*types.SlotMeal, error) {
	var slot types.SlotMeal
	path := fmt.Sprintf("/v1/meal-plan/items/%d", mealItemID)
	req := types.UpdateMealItemRequest{RecipeID: recipeID}
	if err := g.do(ctx, http.MethodPatch, path, req, &slot, true); err != nil {
		return nil, err
	}
	return &slot, nil
}

// DeleteMealItem removes a meal item from the plan.
func (g *Gateway) DeleteMealItem(ctx context.Context, mealItemID int64) error {
	path := fmt.Sprintf("/v1/meal-plan/items/%d", mealItemID)
	return g.do(ctx, http.MethodDelete, path, nil, nil, true)
}

// SuggestionsForItem returns swap suggestions for an existing meal item.
func (g *Gateway) SuggestionsForItem(ctx context.Context, mealItemID int64) ([]types.RecipeShort, error) {
	var suggestions []types.RecipeShort
	path := fmt.Sprintf("/v1/meal-plan/items/%d/suggestions", mealItemID)
	if err := g.do(ctx, http.MethodGet, path, nil, &suggestions, true); err != nil {
		return nil, err
	}
	return suggestions, nil
}

// SuggestionsForSlot returns fill suggestions for an empty slot.
func (g *Gateway) SuggestionsForSlot(ctx context.Context, day, slot int, mealType string) ([]types.RecipeShort, error) {
	var suggestions []types.RecipeShort
	query := url.Values{}
	query.Set("day", strconv.Itoa(day))
	query.Set("slot", strconv.Itoa(slot))
	query.Set("meal_type", mealType)
	path := "/v1/meal-plan/suggestions?" + query.Encode()
	if err := g.do(ctx, http.MethodGet, path, nil, &suggestions, true); err != nil {
		return nil, err
	}
	return suggestions, nil
}

// GenerateShoppingList builds the shopping list for the requested serving
// count.
func (g *Gateway) GenerateShoppingList(ctx context.Context, servings int) (*types.ShoppingList, error) {
	var list types.ShoppingList
	req := map[string]int{"servings": servings}
	if err := g.do(ctx, http.MethodPost, "/v1/shopping-list", req, &list, true); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListRecipes returns the user's personal recipe collection.
func (g *Gateway) ListRecipes(ctx context.Context) ([]types.RecipeShort, error) {
	var recipes []types.RecipeShort
	if err := g.do(ctx, http.MethodGet, "/v1/recipes", nil, &recipes, true); err != nil {
		return nil, err
	}
	return recipes, nil
}

// GetRecipe fetches the full detail record for one recipe.
func (g *Gateway) GetRecipe(ctx context.Context, id uuid.UUID) (*types.RecipeDetail, error) {
	var recipe types.RecipeDetail
	if err := g.do(ctx, http.MethodGet, "/v1/recipes/"+id.String(), nil, &recipe, true); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// CreateRecipe creates a personal recipe; the server assigns the id.
func (g *Gateway) CreateRecipe(ctx context.Context, req types.CreateRecipeRequest) (*types.RecipeDetail, error) {
	var recipe types.RecipeDetail
	if err := g.do(ctx, http.MethodPost, "/v1/recipes", req, &recipe, true); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// UpdateRecipe replaces the editable fields of a personal recipe.
func (g *Gateway) UpdateRecipe(ctx context.Context, id uuid.UUID, req types.CreateRecipeRequest) (*types.RecipeDetail, error) {
	var recipe types.RecipeDetail
	if err := g.do(ctx, http.MethodPut, "/v1/recipes/"+id.String(), req, &recipe, true); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// DeleteRecipe deletes a personal recipe. Without force the server rejects
// the delete with a conflict error when the recipe is referenced by a meal
// plan.
func (g *Gateway) DeleteRecipe(ctx context.Context, id uuid.UUID, force bool) error {
	path := "/v1/recipes/" + id.String()
	if force {
		path += "?force=true"
	}
	return g.do(ctx, http.MethodDelete, path, nil, nil, true)
}

// RequestUploadTarget asks the server for a signed image-upload URL.
func (g *Gateway) RequestUploadTarget(ctx context.Context, filename string) (*types.UploadTarget, error) {
	var target types.UploadTarget
	req := map[string]string{"filename": filename}
	if err := g.do(ctx, http.MethodPost, "/v1/recipes/upload-target", req, &target, true); err != nil {
		return nil, err
	}
	return &target, nil
}

// UploadImage PUTs raw image bytes directly to the signed upload URL. The
// request deliberately carries no bearer credential; the URL's signature is
// the authorization.
func (g *Gateway) UploadImage(ctx context.Context, target *types.UploadTarget, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.UploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", target.ContentType)

	resp, err := g.client.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperr.New(apperr.ServerFault, "", fmt.Sprintf("upload failed with status %d", resp.StatusCode))
	}
	return nil
}
