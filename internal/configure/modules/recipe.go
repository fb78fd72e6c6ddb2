package modules

import (
	"encoding/json"
	"math/rand"

	"droidseed/internal/configure"
)

// Recipe seeds the Broccoli recipe database.
type Recipe struct {
	base
}

type recipeConfig struct {
	ClearRecipes      bool          `json:"clear_recipes"`
	AddRecipes        []recipeEntry `json:"add_recipes"`
	AddRandomRecipes  bool          `json:"add_random_recipes"`
	RandomRecipeCount *int          `json:"random_recipe_count"`
}

type recipeEntry struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Servings        string `json:"servings"`
	PreparationTime string `json:"preparationTime"`
	Source          string `json:"source"`
	Ingredients     string `json:"ingredients"`
	Directions      string `json:"directions"`
	Favorite        int    `json:"favorite"`
}

func NewRecipe(env configure.Environment, raw json.RawMessage) configure.Configurator {
	return &Recipe{newBase("recipe", env, raw)}
}

func (m *Recipe) Name() string { return "recipe" }

func (m *Recipe) Configure() error {
	var cfg recipeConfig
	if err := m.decode(&cfg); err != nil {
		return err
	}
	dev := m.dev()
	app := configure.Apps["recipe"]

	if err := configure.EnsureAppReady("recipe", dev); err != nil {
		return err
	}

	if cfg.ClearRecipes {
		if err := configure.ClearTable(dev, app.DBPath, app.Table); err != nil {
			return err
		}
		if n, err := configure.CountRows(dev, app.DBPath, app.Table); err == nil {
			m.log.Info().Int("remaining", n).Msg("cleared recipes")
		}
	}

	added := 0
	for _, r := range cfg.AddRecipes {
		if err := m.insert(r); err != nil {
			m.log.Error().Err(err).Str("title", r.Title).Msg("add recipe failed")
			continue
		}
		added++
	}
	if added > 0 {
		m.log.Info().Int("recipes", added).Msg("recipes added")
	}

	if cfg.AddRandomRecipes {
		m.addRandom(intDefault(cfg.RandomRecipeCount, 5))
	}

	if err := dev.LaunchApp(app.Package); err != nil {
		m.log.Warn().Err(err).Msg("recipe app relaunch failed")
	}
	return nil
}

func (m *Recipe) insert(r recipeEntry) error {
	app := configure.Apps["recipe"]
	stmt := configure.InsertStatement(app.Table,
		[]string{"title", "description", "servings", "preparationTime", "source",
			"ingredients", "directions", "favorite", "imageName"},
		[]any{r.Title, r.Description, r.Servings, r.PreparationTime, r.Source,
			r.Ingredients, r.Directions, r.Favorite, ""})
	return m.dev().ExecuteSQL(app.DBPath, stmt)
}

var randomRecipes = []recipeEntry{
	{Title: "Spicy Tuna Wraps", Directions: "Mix canned tuna with mayo and sriracha. Spread on tortillas, add lettuce and cucumber slices, roll up."},
	{Title: "Avocado Toast with Egg", Directions: "Toast bread, top with mashed avocado, a fried egg, salt, pepper, and chili flakes."},
	{Title: "Greek Salad Pita Pockets", Directions: "Fill pita pockets with lettuce, cucumber, tomato, feta, olives, and Greek dressing."},
	{Title: "Quick Fried Rice", Directions: "Saute cooked rice with vegetables, add soy sauce and scrambled eggs. Toss until hot."},
	{Title: "Pesto Pasta with Peas", Directions: "Cook pasta, stir in pesto sauce and cooked peas. Add Parmesan cheese before serving."},
	{Title: "BBQ Chicken Quesadillas", Directions: "Mix shredded cooked chicken with BBQ sauce. Place on tortillas with cheese, fold and cook until crispy."},
	{Title: "Tomato Basil Bruschetta", Directions: "Top sliced baguette with a mix of chopped tomatoes, basil, garlic, olive oil, salt, and pepper."},
	{Title: "Lemon Garlic Tilapia", Directions: "Saute tilapia in butter, add lemon juice and garlic. Serve with steamed vegetables."},
}

var randomRecipeDescriptions = []string{
	"A quick and easy meal, perfect for busy weekdays.",
	"A delicious and healthy choice for any time of the day.",
	"An ideal recipe for experimenting with different flavors and ingredients.",
}

var randomServings = []string{"1 serving", "2 servings", "3-4 servings", "6 servings", "8 servings"}
var randomPrepTimes = []string{"10 mins", "20 mins", "30 mins", "45 mins", "1 hrs", "2 hrs"}

func (m *Recipe) addRandom(count int) {
	added := 0
	for i := 0; i < count; i++ {
		template := randomRecipes[rand.Intn(len(randomRecipes))]
		r := recipeEntry{
			Title:           template.Title,
			Description:     randomRecipeDescriptions[rand.Intn(len(randomRecipeDescriptions))],
			Servings:        randomServings[rand.Intn(len(randomServings))],
			PreparationTime: randomPrepTimes[rand.Intn(len(randomPrepTimes))],
			Ingredients:     "varies",
			Directions:      template.Directions,
			Favorite:        rand.Intn(2),
		}
		if err := m.insert(r); err != nil {
			m.log.Error().Err(err).Str("title", r.Title).Msg("random recipe failed")
			continue
		}
		added++
	}
	m.log.Info().Int("recipes", added).Msg("random recipes added")
}
