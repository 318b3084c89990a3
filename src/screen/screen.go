// Package screen renders the recipe of the day and the connectivity notice to
// a terminal.
package screen

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"
	"sync"

	"github.com/OpenTollGate/awareness-food/src/analytics"
	"github.com/OpenTollGate/awareness-food/src/lifecycle"
	"github.com/OpenTollGate/awareness-food/src/network_monitor"
	"github.com/OpenTollGate/awareness-food/src/recipes"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
)

var logger = logrus.WithField("module", "screen")

// Notice messages.
const (
	NoticeNetworkUnavailable = "Network is unavailable"
	NoticeError              = "Something went wrong, please try again"
	RetryAction              = "retry"
)

// NetworkSource is the part of the network monitor the screen observes.
type NetworkSource interface {
	Subscribe() (<-chan network_monitor.NetworkState, func())
	State() network_monitor.NetworkState
	ActiveNetworks() []network_monitor.NetworkHandle
}

// RecipeSource fetches one random recipe.
type RecipeSource interface {
	FetchRandomRecipe(ctx context.Context) recipes.RecipeAPIState
}

// TriviaSource fetches one food trivia text.
type TriviaSource interface {
	FetchRandomTrivia(ctx context.Context) recipes.TriviaAPIState
}

// Snapshot is the visible screen content.
type Snapshot struct {
	Loading        bool     `json:"loading"`
	Network        string   `json:"network"`
	ActiveNetworks []string `json:"active_networks"`
	RecipeID       int      `json:"recipe_id,omitempty"`
	RecipeTitle    string   `json:"recipe_title,omitempty"`
	Notice         string   `json:"notice,omitempty"`
	NoticeAction   string   `json:"notice_action,omitempty"`
	Trivia         string   `json:"trivia,omitempty"`
}

// Screen consumes network states and recipe outcomes and writes them to out.
type Screen struct {
	out       io.Writer
	network   NetworkSource
	recipes   RecipeSource
	trivia    TriviaSource
	analytics analytics.Analytics
	owner     *lifecycle.UnavailableConnectionOwner
	policy    *bluemonday.Policy

	states      <-chan network_monitor.NetworkState
	unsubscribe func()

	mu           sync.Mutex
	loading      bool
	recipe       *recipes.Recipe
	triviaText   string
	notice       string
	noticeAction string
}

// New creates a Screen subscribed to network. The returned screen shows the
// network notice while owner is started and dismisses it when owner stops.
func New(out io.Writer, network NetworkSource, recipeSource RecipeSource, triviaSource TriviaSource,
	tracker analytics.Analytics, owner *lifecycle.UnavailableConnectionOwner) *Screen {
	s := &Screen{
		out:       out,
		network:   network,
		recipes:   recipeSource,
		trivia:    triviaSource,
		analytics: tracker,
		owner:     owner,
		policy:    bluemonday.StrictPolicy(),
	}
	s.states, s.unsubscribe = network.Subscribe()
	owner.AddObserver(lifecycle.ObserverFuncs{
		Start: func() { s.showNotice(NoticeNetworkUnavailable) },
		Stop:  s.dismissNotice,
	})
	return s
}

// Run fetches the first recipe and then follows network states until ctx is
// done. The subscription is released when Run returns.
func (s *Screen) Run(ctx context.Context) error {
	defer s.unsubscribe()

	s.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case state := <-s.states:
			s.HandleNetworkState(state)
		}
	}
}

// HandleNetworkState maps a published state onto the connection lifecycle.
func (s *Screen) HandleNetworkState(state network_monitor.NetworkState) {
	logger.WithField("state", state.String()).Debug("Network state received")

	switch state {
	case network_monitor.NetworkUnavailable:
		s.analytics.TrackEvent(analytics.EventNetworkUnavailable, nil)
		s.owner.OnConnectionLost()
	case network_monitor.NetworkAvailable:
		s.analytics.TrackEvent(analytics.EventNetworkAvailable, nil)
		s.owner.OnConnectionAvailable()
	}
}

// Refresh clears the recipe views, fetches a new recipe and renders the
// outcome.
func (s *Screen) Refresh(ctx context.Context) recipes.RecipeAPIState {
	s.setLoading(true)
	state := s.recipes.FetchRandomRecipe(ctx)
	s.setLoading(false)

	if !state.IsResult() {
		s.analytics.TrackEvent(analytics.EventRecipeFetchFailed, nil)
		s.showNotice(NoticeError)
		return state
	}

	s.analytics.TrackEvent(analytics.EventRecipeFetched, map[string]string{
		"id":    fmt.Sprintf("%d", state.Recipe.ID),
		"title": state.Recipe.Title,
	})
	s.render(state.Recipe)
	return state
}

// Retry is the notice action. Taking it dismisses the notice before a new
// recipe is fetched.
func (s *Screen) Retry(ctx context.Context) recipes.RecipeAPIState {
	logger.Info("Retrying recipe fetch")

	s.mu.Lock()
	s.clearNoticeLocked()
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// ShowTrivia fetches and prints one food trivia text.
func (s *Screen) ShowTrivia(ctx context.Context) recipes.TriviaAPIState {
	state := s.trivia.FetchRandomTrivia(ctx)
	if !state.IsResult() {
		s.showNotice(NoticeError)
		return state
	}
	s.analytics.TrackEvent(analytics.EventTriviaFetched, nil)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.triviaText = state.Text
	fmt.Fprintf(s.out, "\nDid you know? %s\n", state.Text)
	return state
}

// Snapshot returns the visible screen content.
func (s *Screen) Snapshot() Snapshot {
	handles := s.network.ActiveNetworks()
	active := make([]string, 0, len(handles))
	for _, handle := range handles {
		active = append(active, handle.String())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := Snapshot{
		Loading:        s.loading,
		Network:        s.network.State().String(),
		ActiveNetworks: active,
		Notice:         s.notice,
		NoticeAction:   s.noticeAction,
		Trivia:         s.triviaText,
	}
	if s.recipe != nil {
		snapshot.RecipeID = s.recipe.ID
		snapshot.RecipeTitle = s.recipe.Title
	}
	return snapshot
}

func (s *Screen) setLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = loading
	if loading {
		s.recipe = nil
		fmt.Fprintln(s.out, "Loading...")
	}
}

func (s *Screen) render(recipe recipes.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recipe = &recipe
	fmt.Fprint(s.out, FormatRecipe(s.policy, recipe))
}

func (s *Screen) showNotice(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setNoticeLocked(message)
}

func (s *Screen) setNoticeLocked(message string) {
	s.notice = message
	s.noticeAction = RetryAction
	fmt.Fprintf(s.out, "[!] %s (%s)\n", message, RetryAction)
}

// dismissNotice removes whichever notice is showing.
func (s *Screen) dismissNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clearNoticeLocked() {
		fmt.Fprintln(s.out, "[ok] Network is available")
	}
}

func (s *Screen) clearNoticeLocked() bool {
	if s.notice == "" {
		return false
	}
	s.notice = ""
	s.noticeAction = ""
	return true
}

// FormatRecipe renders recipe as plain text.
func FormatRecipe(policy *bluemonday.Policy, recipe recipes.Recipe) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\n%s\n", recipe.Title, strings.Repeat("=", len(recipe.Title)))
	if recipe.Image != "" {
		fmt.Fprintf(&b, "Image: %s\n", recipe.Image)
	}
	if summary := StripHTML(policy, recipe.Summary); summary != "" {
		fmt.Fprintf(&b, "\n%s\n", summary)
	}

	if len(recipe.Ingredients) > 0 {
		b.WriteString("\nIngredients\n")
		for i, ingredient := range recipe.Ingredients {
			line := ingredient.Original
			if line == "" {
				line = ingredient.Name
			}
			fmt.Fprintf(&b, "%2d. %s\n", i+1, line)
		}
	}

	if instructions := StripHTML(policy, recipe.Instructions); instructions != "" {
		fmt.Fprintf(&b, "\nInstructions\n%s\n", instructions)
	}
	return b.String()
}

// StripHTML removes markup and decodes entities.
func StripHTML(policy *bluemonday.Policy, s string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}
