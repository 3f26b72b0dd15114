package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mealwise/mealwise-go/internal/cache"
	"github.com/mealwise/mealwise-go/internal/types"
)

// fakeSessionAPI implements SessionAPI with overridable funcs; nil funcs
// succeed with zero values.
type fakeSessionAPI struct {
	login          func(ctx context.Context, identifier, password string) (*types.Session, error)
	loginFederated func(ctx context.Context, idToken string) (*types.Session, error)
	register       func(ctx context.Context, email, password string) (*types.User, error)
	logout         func(ctx context.Context) error
	deleteAccount  func(ctx context.Context) error
	verifyEmail    func(ctx context.Context, email, code string) (*types.Session, error)
	sendReset      func(ctx context.Context, email string) error
	verifyReset    func(ctx context.Context, email, code string) error
	resetPassword  func(ctx context.Context, email, code, newPassword string) error
	basicInfo      func(ctx context.Context, req types.UpdateBasicInfoRequest) (*types.BasicInfoResponse, error)
	prefs          func(ctx context.Context) (*types.Preferences, error)
}

func (f *fakeSessionAPI) Login(ctx context.Context, identifier, password string) (*types.Session, error) {
	if f.login != nil {
		return f.login(ctx, identifier, password)
	}
	return &types.Session{}, nil
}

func (f *fakeSessionAPI) LoginFederated(ctx context.Context, idToken string) (*types.Session, error) {
	if f.loginFederated != nil {
		return f.loginFederated(ctx, idToken)
	}
	return &types.Session{}, nil
}

func (f *fakeSessionAPI) Register(ctx context.Context, email, password string) (*types.User, error) {
	if f.register != nil {
		return f.register(ctx, email, password)
	}
	return &types.User{Email: email}, nil
}

func (f *fakeSessionAPI) Logout(ctx context.Context) error {
	if f.logout != nil {
		return f.logout(ctx)
	}
	return nil
}

func (f *fakeSessionAPI) DeleteAccount(ctx context.Context) error {
	if f.deleteAccount != nil {
		return f.deleteAccount(ctx)
	}
	return nil
}

func (f *fakeSessionAPI) SendVerificationCode(ctx context.Context, email string) error {
	return nil
}

func (f *fakeSessionAPI) VerifyEmail(ctx context.Context, email, code string) (*types.Session, error) {
	if f.verifyEmail != nil {
		return f.verifyEmail(ctx, email, code)
	}
	return &types.Session{}, nil
}

func (f *fakeSessionAPI) SendPasswordResetCode(ctx context.Context, email string) error {
	if f.sendReset != nil {
		return f.sendReset(ctx, email)
	}
	return nil
}

func (f *fakeSessionAPI) VerifyPasswordResetCode(ctx context.Context, email, code string) error {
	if f.verifyReset != nil {
		return f.verifyReset(ctx, email, code)
	}
	return nil
}

func (f *fakeSessionAPI) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if f.resetPassword != nil {
		return f.resetPassword(ctx, email, code, newPassword)
	}
	return nil
}

func (f *fakeSessionAPI) UpdateBasicInfo(ctx context.Context, req types.UpdateBasicInfoRequest) (*types.BasicInfoResponse, error) {
	if f.basicInfo != nil {
		return f.basicInfo(ctx, req)
	}
	return &types.BasicInfoResponse{}, nil
}

func (f *fakeSessionAPI) callPrefs(ctx context.Context) (*types.Preferences, error) {
	if f.prefs != nil {
		return f.prefs(ctx)
	}
	return &types.Preferences{}, nil
}

func (f *fakeSessionAPI) UpdateActivityLevel(ctx context.Context, level string) (*types.Preferences, error) {
	return f.callPrefs(ctx)
}

func (f *fakeSessionAPI) UpdateGoal(ctx context.Context, goal string) (*types.Preferences, error) {
	return f.callPrefs(ctx)
}

func (f *fakeSessionAPI) UpdateDietType(ctx context.Context, dietType string) (*types.Preferences, error) {
	return f.callPrefs(ctx)
}

func (f *fakeSessionAPI) UpdateCuisineTypes(ctx context.Context, cuisines []string) (*types.Preferences, error) {
	return f.callPrefs(ctx)
}

func (f *fakeSessionAPI) UpdateIntolerances(ctx context.Context, intolerances []string) (*types.Preferences, error) {
	return f.callPrefs(ctx)
}

// fakePlanAPI implements PlanAPI the same way.
type fakePlanAPI struct {
	getPlan     func(ctx context.Context) (*types.MealPlan, error)
	generate    func(ctx context.Context) (*types.MealPlan, error)
	createItem  func(ctx context.Context, req types.CreateMealItemRequest) (*types.SlotMeal, error)
	updateItem  func(ctx context.Context, mealItemID int64, recipeID uuid.UUID) (*types.SlotMeal, error)
	deleteItem  func(ctx context.Context, mealItemID int64) error
	shoppingGen func(ctx context.Context, servings int) (*types.ShoppingList, error)
}

func (f *fakePlanAPI) GetMealPlan(ctx context.Context) (*types.MealPlan, error) {
	if f.getPlan != nil {
		return f.getPlan(ctx)
	}
	return &types.MealPlan{}, nil
}

func (f *fakePlanAPI) GenerateMealPlan(ctx context.Context) (*types.MealPlan, error) {
	if f.generate != nil {
		return f.generate(ctx)
	}
	return &types.MealPlan{}, nil
}

func (f *fakePlanAPI) CreateMealItem(ctx context.Context, req types.CreateMealItemRequest) (*types.SlotMeal, error) {
	if f.createItem != nil {
		return f.createItem(ctx, req)
	}
	return &types.SlotMeal{}, nil
}

func (f *fakePlanAPI) UpdateMealItem(ctx context.Context, mealItemID int64, recipeID uuid.UUID) (*types.SlotMeal, error) {
	if f.updateItem != nil {
		return f.updateItem(ctx, mealItemID, recipeID)
	}
	return &types.SlotMeal{}, nil
}

func (f *fakePlanAPI) DeleteMealItem(ctx context.Context, mealItemID int64) error {
	if f.deleteItem != nil {
		return f.deleteItem(ctx, mealItemID)
	}
	return nil
}

func (f *fakePlanAPI) SuggestionsForItem(ctx context.Context, mealItemID int64) ([]types.RecipeShort, error) {
	return nil, nil
}

func (f *fakePlanAPI) SuggestionsForSlot(ctx context.Context, day, slot int, mealType string) ([]types.RecipeShort, error) {
	return nil, nil
}

func (f *fakePlanAPI) GenerateShoppingList(ctx context.Context, servings int) (*types.ShoppingList, error) {
	if f.shoppingGen != nil {
		return f.shoppingGen(ctx, servings)
	}
	return &types.ShoppingList{}, nil
}

// fakeRecipeAPI implements RecipeAPI the same way.
type fakeRecipeAPI struct {
	list         func(ctx context.Context) ([]types.RecipeShort, error)
	get          func(ctx context.Context, id uuid.UUID) (*types.RecipeDetail, error)
	create       func(ctx context.Context, req types.CreateRecipeRequest) (*types.RecipeDetail, error)
	update       func(ctx context.Context, id uuid.UUID, req types.CreateRecipeRequest) (*types.RecipeDetail, error)
	deleteRecipe func(ctx context.Context, id uuid.UUID, force bool) error
	uploadTarget func(ctx context.Context, filename string) (*types.UploadTarget, error)
	upload       func(ctx context.Context, target *types.UploadTarget, data []byte) error
}

func (f *fakeRecipeAPI) ListRecipes(ctx context.Context) ([]types.RecipeShort, error) {
	if f.list != nil {
		return f.list(ctx)
	}
	return nil, nil
}

func (f *fakeRecipeAPI) GetRecipe(ctx context.Context, id uuid.UUID) (*types.RecipeDetail, error) {
	if f.get != nil {
		return f.get(ctx, id)
	}
	return &types.RecipeDetail{ID: id}, nil
}

func (f *fakeRecipeAPI) CreateRecipe(ctx context.Context, req types.CreateRecipeRequest) (*types.RecipeDetail, error) {
	if f.create != nil {
		return f.create(ctx, req)
	}
	return &types.RecipeDetail{}, nil
}

func (f *fakeRecipeAPI) UpdateRecipe(ctx context.Context, id uuid.UUID, req types.CreateRecipeRequest) (*types.RecipeDetail, error) {
	if f.update != nil {
		return f.update(ctx, id, req)
	}
	return &types.RecipeDetail{ID: id}, nil
}

func (f *fakeRecipeAPI) DeleteRecipe(ctx context.Context, id uuid.UUID, force bool) error {
	if f.deleteRecipe != nil {
		return f.deleteRecipe(ctx, id, force)
	}
	return nil
}

func (f *fakeRecipeAPI) RequestUploadTarget(ctx context.Context, filename string) (*types.UploadTarget, error) {
	if f.uploadTarget != nil {
		return f.uploadTarget(ctx, filename)
	}
	return &types.UploadTarget{}, nil
}

func (f *fakeRecipeAPI) UploadImage(ctx context.Context, target *types.UploadTarget, data []byte) error {
	if f.upload != nil {
		return f.upload(ctx, target, data)
	}
	return nil
}

// countingSnapshots wraps a snapshot store and counts writes per key.
type countingSnapshots struct {
	cache.SnapshotStore
	mu   sync.Mutex
	sets map[string]int
}

func newCountingSnapshots() *countingSnapshots {
	return &countingSnapshots{
		SnapshotStore: cache.NewMemorySnapshots(),
		sets:          map[string]int{},
	}
}

func (c *countingSnapshots) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	c.sets[key]++
	c.mu.Unlock()
	return c.SnapshotStore.Set(ctx, key, value)
}

func (c *countingSnapshots) setCount(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets[key]
}

// verifiedSession builds a session payload for a fully onboarded user.
func verifiedSession() *types.Session {
	return &types.Session{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		User: types.User{
			ID:            uuid.New(),
			Username:      "cook",
			Email:         "cook@example.com",
			EmailVerified: true,
			AuthMethod:    types.AuthMethodPassword,
		},
		Preferences: &types.Preferences{
			DietType:      "balanced",
			ActivityLevel: "moderate",
			Goal:          "maintain",
			CalorieGoal:   2100,
		},
	}
}
