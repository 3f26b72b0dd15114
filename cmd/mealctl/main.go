// mealctl drives the sync core from the command line. It is the reference
// host for the stores: the same wiring an embedding UI would do, with
// terminal output instead of rendered views.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/mealwise/mealwise-go/config"
	"github.com/mealwise/mealwise-go/internal/cache"
	"github.com/mealwise/mealwise-go/internal/gateway"
	"github.com/mealwise/mealwise-go/internal/identity"
	"github.com/mealwise/mealwise-go/internal/store"
	"github.com/mealwise/mealwise-go/internal/types"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := newApp(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if err := app.run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: mealctl <command> [args]

Commands:
  register <email>         create an account
  verify <email> <code>    verify the account email
  login <identifier>       sign in with email or username
  status                   show session state
  plan                     print the current meal plan
  generate                 generate a fresh meal plan
  swap <meal-item-id> <recipe-id>
                           swap the recipe in a plan slot
  remove <meal-item-id>    remove a meal from the plan
  shopping [servings]      generate the shopping list
  recipes                  list the personal recipe collection
  recipe <id>              show one recipe
  logout                   sign out and clear local state`)
}

// app bundles the store graph behind the subcommands.
type app struct {
	session *store.SessionStore
	plans   *store.MealPlanStore
	recipes *store.RecipeStore
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	secure, err := cache.NewSecureFileStore(cfg.SecureStorePath(), cfg.SecurePassphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to open secure store: %w", err)
	}

	snapshots, err := newSnapshotStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}

	creds := store.NewCredentials(secure)
	gw := gateway.New(cfg.APIBaseURL, cfg.Locale, creds)

	var provider identity.Provider
	if cfg.OIDCEnabled() {
		provider, err = identity.NewOIDCProvider(ctx, identity.OIDCConfig{
			Issuer:       cfg.OIDCIssuer,
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.OIDCRedirectURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to configure federated sign-in: %w", err)
		}
	}

	session := store.NewSessionStore(gw, creds, secure, snapshots, provider)
	recipes := store.NewRecipeStore(gw, snapshots, session)
	plans := store.NewMealPlanStore(gw, snapshots, session, recipes, store.NewAppLifecycle())

	session.Restore(ctx)

	return &app{session: session, plans: plans, recipes: recipes}, nil
}

func newSnapshotStore(cfg *config.Config) (cache.SnapshotStore, error) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		return cache.NewRedisStore(cache.RedisOptions{
			URL:      cfg.RedisURL,
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case config.CacheMemory:
		return cache.NewMemorySnapshots(), nil
	default:
		return cache.NewSQLiteStore(cfg.SnapshotDBPath())
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		if len(args) != 1 {
			return fmt.Errorf("usage: mealctl register <email>")
		}
		password, err := prompt("Password: ")
		if err != nil {
			return err
		}
		if err := a.session.Register(ctx, args[0], password); err != nil {
			return err
		}
		fmt.Println("Registered. Check your inbox for the verification code.")
		return nil

	case "verify":
		if len(args) != 2 {
			return fmt.Errorf("usage: mealctl verify <email> <code>")
		}
		return a.session.VerifyEmail(ctx, args[0], args[1])

	case "login":
		if len(args) != 1 {
			return fmt.Errorf("usage: mealctl login <identifier>")
		}
		password, err := prompt("Password: ")
		if err != nil {
			return err
		}
		if err := a.session.Login(ctx, args[0], password); err != nil {
			return err
		}
		fmt.Printf("Signed in (%s)\n", a.session.State())
		return nil

	case "status":
		fmt.Printf("State: %s\n", a.session.State())
		if user := a.session.User(); user != nil {
			fmt.Printf("User:  %s <%s>\n", user.Username, user.Email)
		}
		if prefs := a.session.Preferences(); prefs != nil {
			fmt.Printf("Diet:  %s, %d kcal/day\n", prefs.DietType, prefs.CalorieGoal)
		}
		return nil

	case "plan":
		a.plans.Load(ctx)
		return printPlan(a.plans.Plan())

	case "generate":
		if err := a.plans.Generate(ctx); err != nil {
			return err
		}
		return printPlan(a.plans.Plan())

	case "swap":
		if len(args) != 2 {
			return fmt.Errorf("usage: mealctl swap <meal-item-id> <recipe-id>")
		}
		itemID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid meal item id %q", args[0])
		}
		recipeID, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid recipe id %q", args[1])
		}
		detail, err := a.recipes.Detail(ctx, recipeID)
		if err != nil {
			return err
		}
		return a.plans.UpdateMealRecipe(ctx, itemID, detail.Short())

	case "remove":
		if len(args) != 1 {
			return fmt.Errorf("usage: mealctl remove <meal-item-id>")
		}
		itemID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid meal item id %q", args[0])
		}
		return a.plans.DeleteMeal(ctx, itemID)

	case "shopping":
		servings := 2
		if len(args) == 1 {
			s, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid serving count %q", args[0])
			}
			servings = s
		}
		a.plans.Load(ctx)
		list, err := a.plans.ShoppingList(ctx, servings)
		if err != nil {
			return err
		}
		for _, aisle := range list.Aisles {
			fmt.Printf("%s\n", aisle.Aisle)
			for _, item := range aisle.Items {
				fmt.Printf("  %-30s %g %s\n", item.Name, item.Metric.Amount, item.Metric.Unit)
			}
		}
		return nil

	case "recipes":
		a.recipes.Load(ctx)
		for _, r := range a.recipes.Recipes() {
			fmt.Printf("%s  %-30s %4.0f kcal  %d min\n", r.ID, r.Title, r.Calories, r.ReadyInMinutes)
		}
		return nil

	case "recipe":
		if len(args) != 1 {
			return fmt.Errorf("usage: mealctl recipe <id>")
		}
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid recipe id %q", args[0])
		}
		detail, err := a.recipes.Detail(ctx, id)
		if err != nil {
			return err
		}
		printRecipe(detail)
		return nil

	case "logout":
		return a.session.Logout(ctx)

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func printPlan(plan *types.MealPlan) error {
	if plan == nil {
		return fmt.Errorf("no meal plan loaded; run `mealctl generate`")
	}
	days := [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	for _, day := range plan.Days {
		name := fmt.Sprintf("Day %d", day.Day)
		if day.Day >= 0 && day.Day < len(days) {
			name = days[day.Day]
		}
		fmt.Println(name)
		for _, meal := range day.Meals {
			title := "-"
			if meal.Recipe != nil {
				title = meal.Recipe.Title
			}
			id := "-"
			if meal.MealItemID != nil {
				id = strconv.FormatInt(*meal.MealItemID, 10)
			}
			fmt.Printf("  %-10s %-30s (item %s)\n", meal.MealType, title, id)
		}
	}
	return nil
}

func printRecipe(d *types.RecipeDetail) {
	fmt.Printf("%s\n", d.Title)
	fmt.Printf("%.0f kcal, %d min, serves %d\n", d.Calories, d.ReadyInMinutes, d.Servings)
	if len(d.Ingredients) > 0 {
		fmt.Println("Ingredients:")
		for _, ing := range d.Ingredients {
			fmt.Printf("  %g %s %s\n", ing.Amount, ing.Unit, ing.Name)
		}
	}
	for i, step := range d.Instructions {
		fmt.Printf("%d. %s\n", i+1, step)
	}
}

func prompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
