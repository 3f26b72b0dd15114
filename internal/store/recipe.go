package store

import (
	"context"
	"log"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mealwise/mealwise-go/internal/apperr"
	"github.com/mealwise/mealwise-go/internal/cache"
	"github.com/mealwise/mealwise-go/internal/types"
)

// RecipeStore owns the user's personal recipe collection: cache-first load
// and server-confirmed CRUD. Unlike the meal plan store there is no
// optimistic step; recipe identity is server-assigned up front, so local
// state only changes after the server confirms.
type RecipeStore struct {
	api       RecipeAPI
	snapshots cache.SnapshotStore
	session   *SessionStore

	mu      sync.Mutex
	active  bool
	loading bool
	list    []types.RecipeShort
	details map[uuid.UUID]*types.RecipeDetail
	subs    []func([]types.RecipeShort)
}

func NewRecipeStore(api RecipeAPI, snapshots cache.SnapshotStore, session *SessionStore) *RecipeStore {
	s := &RecipeStore{
		api:       api,
		snapshots: snapshots,
		session:   session,
		details:   map[uuid.UUID]*types.RecipeDetail{},
	}
	session.Subscribe(s.onSessionChange)
	return s
}

// Subscribe registers a callback receiving the collection after every
// published change. The meal plan store reconciles through this.
func (s *RecipeStore) Subscribe(fn func([]types.RecipeShort)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *RecipeStore) notify() {
	s.mu.Lock()
	list := make([]types.RecipeShort, len(s.list))
	copy(list, s.list)
	subs := make([]func([]types.RecipeShort), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(list)
	}
}

// Recipes returns a copy of the published collection.
func (s *RecipeStore) Recipes() []types.RecipeShort {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]types.RecipeShort, len(s.list))
	copy(list, s.list)
	return list
}

func (s *RecipeStore) onSessionChange() {
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

// Load mirrors the meal plan store's sequence: publish the cached list
// immediately, refetch, replace only on structural difference. Fetch
// failures are logged and swallowed.
func (s *RecipeStore) Load(ctx context.Context) {
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

	if raw, err := s.snapshots.Get(ctx, cache.KeyRecipes); err == nil {
		var cached []types.RecipeShort
		if err := json.Unmarshal(raw, &cached); err == nil {
			s.mu.Lock()
			painted := false
			if s.list == nil {
				s.list = cached
				painted = true
			}
			s.mu.Unlock()
			if painted {
				s.notify()
			}
		}
	}

	fetched, err := s.api.ListRecipes(ctx)
	if err != nil {
		log.Printf("[Recipes] background fetch failed: %v", err)
		return
	}

	s.mu.Lock()
	changed := !sameJSON(fetched, s.list)
	if changed {
		s.list = fetched
		s.persistLocked(ctx)
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

func (s *RecipeStore) deactivate() {
	s.mu.Lock()
	s.list = nil
	s.details = map[uuid.UUID]*types.RecipeDetail{}
	s.mu.Unlock()
	if err := s.snapshots.Delete(context.Background(), cache.KeyRecipes); err != nil {
		log.Printf("[Recipes] failed to clear cached list: %v", err)
	}
	s.notify()
}

// Detail returns the full record for one recipe, memoized per id.
func (s *RecipeStore) Detail(ctx context.Context, id uuid.UUID) (*types.RecipeDetail, error) {
	s.mu.Lock()
	cached, ok := s.details[id]
	s.mu.Unlock()
	if ok {
		return clone(cached)
	}

	detail, err := s.api.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.details[id] = detail
	s.mu.Unlock()
	return clone(detail)
}

// Create stores a new personal recipe. The server assigns the id; the
// confirmed record is spliced into the published collection.
func (s *RecipeStore) Create(ctx context.Context, req types.CreateRecipeRequest) (*types.RecipeDetail, error) {
	if err := s.requireUser(); err != nil {
		return nil, err
	}

	detail, err := s.api.CreateRecipe(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.list = append(s.list, detail.Short())
	s.details[detail.ID] = detail
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
	return clone(detail)
}

// Update edits a personal recipe. When image bytes are supplied the store
// first runs the upload sub-flow: request a signed target, PUT the bytes,
// then reference the public URL in the update payload.
func (s *RecipeStore) Update(ctx context.Context, id uuid.UUID, req types.CreateRecipeRequest, image []byte, imageName string) (*types.RecipeDetail, error) {
	if err := s.requireUser(); err != nil {
		return nil, err
	}

	if image != nil {
		target, err := s.api.RequestUploadTarget(ctx, imageName)
		if err != nil {
			return nil, err
		}
		if err := s.api.UploadImage(ctx, target, image); err != nil {
			return nil, err
		}
		req.ImageURL = target.PublicURL
	}

	detail, err := s.api.UpdateRecipe(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for i := range s.list {
		if s.list[i].ID == id {
			s.list[i] = detail.Short()
			break
		}
	}
	s.details[id] = detail
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
	return clone(detail)
}

// Delete removes a personal recipe. A recipe referenced by the meal plan is
// rejected with a conflict error unless force is set; the caller re-invokes
// with force=true to override.
func (s *RecipeStore) Delete(ctx context.Context, id uuid.UUID, force bool) error {
	if err := s.requireUser(); err != nil {
		return err
	}

	if err := s.api.DeleteRecipe(ctx, id, force); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.list {
		if s.list[i].ID == id {
			s.list = append(s.list[:i], s.list[i+1:]...)
			break
		}
	}
	delete(s.details, id)
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *RecipeStore) requireUser() error {
	if s.session.State() == Unauthenticated {
		return apperr.New(apperr.NoUser, "", "no user signed in")
	}
	return nil
}

// persistLocked writes the current list snapshot. Callers hold s.mu.
func (s *RecipeStore) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.list)
	if err != nil {
		log.Printf("[Recipes] failed to encode list: %v", err)
		return
	}
	if err := s.snapshots.Set(ctx, cache.KeyRecipes, data); err != nil {
		log.Printf("[Recipes] failed to persist list: %v", err)
	}
}
