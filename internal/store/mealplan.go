package store

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mealwise/mealwise-go/internal/apperr"
	"github.com/mealwise/mealwise-go/internal/cache"
	"github.com/mealwise/mealwise-go/internal/types"
)

// MealPlanStore keeps the local meal plan consistent with the server while
// giving the UI zero-latency feedback on edits. Mutations are optimistic:
// the change is published immediately, then confirmed or rolled back when
// the server responds.
//
// Concurrent mutations on the same plan are not serialized; each snapshots
// and restores independently, so a rollback can discard an unrelated
// mutation that committed in between. Known limitation.
type MealPlanStore struct {
	api       PlanAPI
	snapshots cache.SnapshotStore
	session   *SessionStore

	mu      sync.Mutex
	plan    *types.MealPlan
	active  bool
	loading bool
	subs    []func()
}

// NewMealPlanStore wires the store to its collaborators. It activates when
// the session gains a user, deactivates when the user disappears,
// reconciles against the recipe store's collection, and revalidates when
// the host returns to the foreground.
func NewMealPlanStore(api PlanAPI, snapshots cache.SnapshotStore, session *SessionStore, recipes *RecipeStore, lifecycle Lifecycle) *MealPlanStore {
	s := &MealPlanStore{
		api:       api,
		snapshots: snapshots,
		session:   session,
	}
	session.Subscribe(s.onSessionChange)
	if recipes != nil {
		recipes.Subscribe(s.reconcile)
	}
	if lifecycle != nil {
		lifecycle.SubscribeForeground(s.onForeground)
	}
	return s
}

// Subscribe registers a callback invoked after every published change.
func (s *MealPlanStore) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *MealPlanStore) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Plan returns a copy of the published plan, or nil when none is loaded.
func (s *MealPlanStore) Plan() *types.MealPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan, err := clone(s.plan)
	if err != nil {
		return nil
	}
	return plan
}

func (s *MealPlanStore) onSessionChange() {
	present := s.session.State() != Unauthenticated

	s.mu.Lock()
	wasActive := s.active
	s.active = present
	s.mu.Unlock()

	switch {
	case present && !wasActive:
		s.Load(context.Background())
	case !present && wasActive:
		s.deactivate()
	}
}

func (s *MealPlanStore) onForeground() {
	s.mu.Lock()
	revalidate := s.active && !s.loading
	s.mu.Unlock()
	if revalidate {
		s.Load(context.Background())
	}
}

// Load publishes the cached plan immediately, then refetches in the same
// call and replaces the published state only when the server's payload
// differs structurally. Fetch errors are logged and swallowed; the last
// good snapshot stays visible.
func (s *MealPlanStore) Load(ctx context.Context) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return
	}
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	// Instant paint from cache.
	if raw, err := s.snapshots.Get(ctx, cache.KeyMenu); err == nil {
		var cached types.MealPlan
		if err := json.Unmarshal(raw, &cached); err == nil {
			s.mu.Lock()
			painted := false
			if s.plan == nil {
				s.plan = &cached
				painted = true
			}
			s.mu.Unlock()
			if painted {
				s.notify()
			}
		}
	}

	fetched, err := s.api.GetMealPlan(ctx)
	if err != nil {
		if !apperr.IsKind(err, apperr.NotFound) {
			log.Printf("[MealPlan] background fetch failed: %v", err)
		}
		return
	}

	s.mu.Lock()
	changed := !sameJSON(fetched, s.plan)
	if changed {
		s.plan = fetched
		s.persistLocked(ctx)
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

func (s *MealPlanStore) deactivate() {
	s.mu.Lock()
	s.plan = nil
	s.mu.Unlock()
	if err := s.snapshots.Delete(context.Background(), cache.KeyMenu); err != nil {
		log.Printf("[MealPlan] failed to clear cached plan: %v", err)
	}
	s.notify()
}

// Generate replaces the plan wholesale with a freshly generated one. Unlike
// the slot mutations this is not optimistic; the server owns generation.
func (s *MealPlanStore) Generate(ctx context.Context) error {
	if s.session.State() == Unauthenticated {
		return apperr.New(apperr.NoUser, "", "no user signed in")
	}

	plan, err := s.api.GenerateMealPlan(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.plan = plan
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
	return nil
}

// mutate runs one optimistic transaction: snapshot, apply and publish,
// confirm with the server, then merge the canonical result or roll back.
func (s *MealPlanStore) mutate(ctx context.Context, apply func(*types.MealPlan) error, call func(context.Context) (func(*types.MealPlan), error)) error {
	s.mu.Lock()
	if s.plan == nil {
		s.mu.Unlock()
		return apperr.New(apperr.NoPlan, "", "no meal plan loaded")
	}
	snapshot, err := clone(s.plan)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := apply(s.plan); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	s.notify()

	merge, err := call(ctx)

	s.mu.Lock()
	if err != nil {
		s.plan = snapshot
		s.persistLocked(ctx)
		s.mu.Unlock()
		s.notify()
		return err
	}
	if merge != nil {
		merge(s.plan)
	}
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
	return nil
}

// UpdateMealRecipe swaps the recipe of an existing meal item.
func (s *MealPlanStore) UpdateMealRecipe(ctx context.Context, mealItemID int64, recipe types.RecipeShort) error {
	return s.mutate(ctx,
		func(plan *types.MealPlan) error {
			slot := plan.Slot(mealItemID)
			if slot == nil {
				return apperr.New(apperr.NotFound, "", "meal item not in plan")
			}
			r := recipe
			slot.Recipe = &r
			return nil
		},
		func(ctx context.Context) (func(*types.MealPlan), error) {
			updated, err := s.api.UpdateMealItem(ctx, mealItemID, recipe.ID)
			if err != nil {
				return nil, err
			}
			return func(plan *types.MealPlan) {
				if slot := plan.Slot(mealItemID); slot != nil {
					*slot = *updated
				}
			}, nil
		})
}

// AddMeal appends an extra meal to a day (or fills a new slot). A
// timestamp placeholder stands in for the meal item id until the server
// assigns the canonical one.
func (s *MealPlanStore) AddMeal(ctx context.Context, day int, mealType string, recipe types.RecipeShort) error {
	tempID := time.Now().UnixMilli()
	var slotIndex int

	return s.mutate(ctx,
		func(plan *types.MealPlan) error {
			if day < 0 || day > 6 {
				return apperr.New(apperr.Validation, "", "day out of range")
			}
			group := plan.Day(day)
			if group == nil {
				plan.Days = append(plan.Days, types.DayMeals{Day: day})
				group = plan.Day(day)
			}
			slotIndex = len(group.Meals)
			id := tempID
			r := recipe
			group.Meals = append(group.Meals, types.SlotMeal{
				MealItemID: &id,
				Slot:       slotIndex,
				MealType:   mealType,
				Recipe:     &r,
			})
			return nil
		},
		func(ctx context.Context) (func(*types.MealPlan), error) {
			created, err := s.api.CreateMealItem(ctx, types.CreateMealItemRequest{
				Day:      day,
				Slot:     slotIndex,
				MealType: mealType,
				RecipeID: recipe.ID,
			})
			if err != nil {
				return nil, err
			}
			// Canonical id promotion: the placeholder is replaced by the
			// server-assigned slot.
			return func(plan *types.MealPlan) {
				if slot := plan.Slot(tempID); slot != nil {
					*slot = *created
				}
			}, nil
		})
}

// DeleteMeal removes a meal item. The three base slots are cleared in
// place so the day keeps its breakfast/lunch/dinner shape; extra slots are
// removed from the day entirely.
func (s *MealPlanStore) DeleteMeal(ctx context.Context, mealItemID int64) error {
	return s.mutate(ctx,
		func(plan *types.MealPlan) error {
			for di := range plan.Days {
				meals := plan.Days[di].Meals
				for mi := range meals {
					m := &meals[mi]
					if m.MealItemID == nil || *m.MealItemID != mealItemID {
						continue
					}
					if m.Slot <= types.SlotDinner {
						m.MealItemID = nil
						m.Recipe = nil
					} else {
						plan.Days[di].Meals = append(meals[:mi], meals[mi+1:]...)
					}
					return nil
				}
			}
			return apperr.New(apperr.NotFound, "", "meal item not in plan")
		},
		func(ctx context.Context) (func(*types.MealPlan), error) {
			return nil, s.api.DeleteMealItem(ctx, mealItemID)
		})
}

// reconcile patches every slot whose embedded recipe drifted from the
// authoritative copy in the personal collection, then re-persists. Running
// it twice without an intervening collection change is a no-op.
func (s *MealPlanStore) reconcile(collection []types.RecipeShort) {
	byID := make(map[uuid.UUID]types.RecipeShort, len(collection))
	for _, r := range collection {
		byID[r.ID] = r
	}

	s.mu.Lock()
	if s.plan == nil {
		s.mu.Unlock()
		return
	}
	changed := false
	for di := range s.plan.Days {
		for mi := range s.plan.Days[di].Meals {
			slot := &s.plan.Days[di].Meals[mi]
			if slot.Recipe == nil {
				continue
			}
			authoritative, ok := byID[slot.Recipe.ID]
			if !ok || sameJSON(slot.Recipe, &authoritative) {
				continue
			}
			r := authoritative
			slot.Recipe = &r
			changed = true
		}
	}
	if changed {
		s.persistLocked(context.Background())
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// SuggestionsForItem fetches swap suggestions for an existing meal item.
func (s *MealPlanStore) SuggestionsForItem(ctx context.Context, mealItemID int64) ([]types.RecipeShort, error) {
	if err := s.requirePlan(); err != nil {
		return nil, err
	}
	return s.api.SuggestionsForItem(ctx, mealItemID)
}

// SuggestionsForSlot fetches fill suggestions for an empty slot.
func (s *MealPlanStore) SuggestionsForSlot(ctx context.Context, day, slot int, mealType string) ([]types.RecipeShort, error) {
	if err := s.requirePlan(); err != nil {
		return nil, err
	}
	return s.api.SuggestionsForSlot(ctx, day, slot, mealType)
}

// ShoppingList generates the list for the requested serving count. The
// result is returned to the caller and never cached.
func (s *MealPlanStore) ShoppingList(ctx context.Context, servings int) (*types.ShoppingList, error) {
	if err := s.requirePlan(); err != nil {
		return nil, err
	}
	return s.api.GenerateShoppingList(ctx, servings)
}

func (s *MealPlanStore) requirePlan() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil {
		return apperr.New(apperr.NoPlan, "", "no meal plan loaded")
	}
	return nil
}

// persistLocked writes the current plan snapshot. Callers hold s.mu.
func (s *MealPlanStore) persistLocked(ctx context.Context) {
	if s.plan == nil {
		return
	}
	data, err := json.Marshal(s.plan)
	if err != nil {
		log.Printf("[MealPlan] failed to encode plan: %v", err)
		return
	}
	if err := s.snapshots.Set(ctx, cache.KeyMenu, data); err != nil {
		log.Printf("[MealPlan] failed to persist plan: %v", err)
	}
}
