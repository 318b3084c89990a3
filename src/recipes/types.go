package recipes

// Recipe is one recipe record as returned by the recipe source. It is passed
// through unchanged.
type Recipe struct {
	ID             int          `json:"id"`
	Title          string       `json:"title"`
	Summary        string       `json:"summary"`
	Instructions   string       `json:"instructions"`
	Image          string       `json:"image"`
	ReadyInMinutes int          `json:"readyInMinutes,omitempty"`
	Servings       int          `json:"servings,omitempty"`
	SourceURL      string       `json:"sourceUrl,omitempty"`
	Ingredients    []Ingredient `json:"extendedIngredients"`
}

// Ingredient is one entry of a recipe's ingredient list.
type Ingredient struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Original string  `json:"original"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Image    string  `json:"image,omitempty"`
}

// RecipeResponse is the body of GET recipes/random.
type RecipeResponse struct {
	Recipes []Recipe `json:"recipes"`
}

// TriviaResponse is the body of GET food/trivia/random.
type TriviaResponse struct {
	Text string `json:"text"`
}

// StateKind distinguishes the two outcomes of a fetch.
type StateKind int

const (
	StateResult StateKind = iota
	StateError
)

func (k StateKind) String() string {
	if k == StateResult {
		return "result"
	}
	return "error"
}

// RecipeAPIState is the outcome of one recipe fetch: either a Result carrying
// the recipe, or Error with no detail.
type RecipeAPIState struct {
	Kind   StateKind
	Recipe Recipe
}

// RecipeResult wraps a successfully fetched recipe.
func RecipeResult(recipe Recipe) RecipeAPIState {
	return RecipeAPIState{Kind: StateResult, Recipe: recipe}
}

// RecipeError is the single failure outcome of a recipe fetch.
func RecipeError() RecipeAPIState {
	return RecipeAPIState{Kind: StateError}
}

// IsResult reports whether the state carries a recipe.
func (s RecipeAPIState) IsResult() bool {
	return s.Kind == StateResult
}

// TriviaAPIState is the outcome of one trivia fetch.
type TriviaAPIState struct {
	Kind StateKind
	Text string
}

// TriviaResult wraps a successfully fetched trivia text.
func TriviaResult(text string) TriviaAPIState {
	return TriviaAPIState{Kind: StateResult, Text: text}
}

// TriviaError is the single failure outcome of a trivia fetch.
func TriviaError() TriviaAPIState {
	return TriviaAPIState{Kind: StateError}
}

// IsResult reports whether the state carries trivia text.
func (s TriviaAPIState) IsResult() bool {
	return s.Kind == StateResult
}
