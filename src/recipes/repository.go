package recipes

import (
	"context"
	"fmt"
)

// RecipeRepository reduces one random-recipe call to a RecipeAPIState.
type RecipeRepository struct {
	service RecipesService
}

// NewRecipeRepository creates a RecipeRepository over service.
func NewRecipeRepository(service RecipesService) *RecipeRepository {
	return &RecipeRepository{service: service}
}

// GetRandomRecipe runs the fetch on its own goroutine. The returned channel
// yields exactly one state and is then closed.
func (r *RecipeRepository) GetRandomRecipe(ctx context.Context) <-chan RecipeAPIState {
	out := make(chan RecipeAPIState, 1)
	go func() {
		defer close(out)
		out <- r.FetchRandomRecipe(ctx)
	}()
	return out
}

// FetchRandomRecipe issues exactly one request. It returns a result with the
// first recipe when the call succeeded with a non-empty list, and RecipeError
// for every other outcome, including a panic while evaluating the response.
func (r *RecipeRepository) FetchRandomRecipe(ctx context.Context) (state RecipeAPIState) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithError(fmt.Errorf("%v", rec)).Error("Recovered while fetching random recipe")
			state = RecipeError()
		}
	}()

	response, err := r.service.GetRandomRecipe(ctx)
	if err != nil {
		logger.WithError(err).Warn("Random recipe fetch failed")
		return RecipeError()
	}

	if !isRecipeResponseSuccess(response) {
		logger.WithField("status", statusOf(response)).Warn("Random recipe response carried no recipe")
		return RecipeError()
	}

	recipe := response.Body.Recipes[0]
	logger.WithField("title", recipe.Title).Info("Fetched random recipe")
	return RecipeResult(recipe)
}

func statusOf[T any](response *Response[T]) int {
	if response == nil {
		return 0
	}
	return response.StatusCode
}

func isRecipeResponseSuccess(response *Response[RecipeResponse]) bool {
	return response.IsSuccessful() && response.Body != nil && len(response.Body.Recipes) > 0
}

// FoodTriviaRepository reduces one random-trivia call to a TriviaAPIState.
type FoodTriviaRepository struct {
	service RecipesService
}

// NewFoodTriviaRepository creates a FoodTriviaRepository over service.
func NewFoodTriviaRepository(service RecipesService) *FoodTriviaRepository {
	return &FoodTriviaRepository{service: service}
}

// GetRandomTrivia runs the fetch on its own goroutine and yields one state.
func (r *FoodTriviaRepository) GetRandomTrivia(ctx context.Context) <-chan TriviaAPIState {
	out := make(chan TriviaAPIState, 1)
	go func() {
		defer close(out)
		out <- r.FetchRandomTrivia(ctx)
	}()
	return out
}

// FetchRandomTrivia mirrors FetchRandomRecipe: success requires a 2xx answer
// with a non-empty text.
func (r *FoodTriviaRepository) FetchRandomTrivia(ctx context.Context) (state TriviaAPIState) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithError(fmt.Errorf("%v", rec)).Error("Recovered while fetching food trivia")
			state = TriviaError()
		}
	}()

	response, err := r.service.GetRandomTrivia(ctx)
	if err != nil {
		logger.WithError(err).Warn("Food trivia fetch failed")
		return TriviaError()
	}
	if !response.IsSuccessful() || response.Body == nil || response.Body.Text == "" {
		logger.WithField("status", statusOf(response)).Warn("Food trivia response carried no text")
		return TriviaError()
	}
	return TriviaResult(response.Body.Text)
}
