package recipes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/OpenTollGate/awareness-food/src/config_manager"
	"github.com/sirupsen/logrus"
)

const (
	randomRecipePath = "recipes/random"
	randomTriviaPath = "food/trivia/random"

	// maxBodySize bounds how much of a response body is decoded.
	maxBodySize = 4 * 1024 * 1024

	userAgent = "AwarenessFood/1.0"
)

// Response is the transport-level view of one call: whether the server
// answered with a 2xx status and, if so, the decoded body.
type Response[T any] struct {
	StatusCode int
	Body       *T
}

// IsSuccessful reports whether the status code is in the 2xx range.
func (r *Response[T]) IsSuccessful() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// RecipesService issues the raw REST calls against the recipe source.
type RecipesService interface {
	GetRandomRecipe(ctx context.Context) (*Response[RecipeResponse], error)
	GetRandomTrivia(ctx context.Context) (*Response[TriviaResponse], error)
}

// apiKeyTransport adds the apiKey query parameter to every outgoing request.
type apiKeyTransport struct {
	apiKey string
	base   http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	query := clone.URL.Query()
	// Set rather than Add: a caller-supplied apiKey is replaced, never duplicated.
	query.Set("apiKey", t.apiKey)
	clone.URL.RawQuery = query.Encode()
	return t.base.RoundTrip(clone)
}

// NewHTTPClient builds the client used for the recipe source: fixed connect
// and read timeouts plus the API key interceptor. The client timeout bounds
// the whole exchange, body included, by ConnectTimeout + ReadTimeout.
func NewHTTPClient(config config_manager.RecipeAPIConfig) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   config.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   config.ConnectTimeout,
		ResponseHeaderTimeout: config.ReadTimeout,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          10,
	}

	return &http.Client{
		Transport: &apiKeyTransport{apiKey: config.APIKey, base: transport},
		Timeout:   config.ConnectTimeout + config.ReadTimeout,
	}
}

type httpRecipesService struct {
	baseURL *url.URL
	client  *http.Client
}

// NewRecipesService creates a RecipesService resolving paths against
// config.BaseURL.
func NewRecipesService(config config_manager.RecipeAPIConfig, client *http.Client) (RecipesService, error) {
	base := config.BaseURL
	if base == "" {
		base = config_manager.DefaultAPIBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid recipe API base URL %q: %w", config.BaseURL, err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("recipe API base URL %q must be absolute", config.BaseURL)
	}
	if client == nil {
		client = NewHTTPClient(config)
	}

	return &httpRecipesService{baseURL: baseURL, client: client}, nil
}

func (s *httpRecipesService) GetRandomRecipe(ctx context.Context) (*Response[RecipeResponse], error) {
	return get[RecipeResponse](ctx, s, randomRecipePath)
}

func (s *httpRecipesService) GetRandomTrivia(ctx context.Context) (*Response[TriviaResponse], error) {
	return get[TriviaResponse](ctx, s, randomTriviaPath)
}

// get performs one GET. Non-2xx answers return a Response with a nil body;
// transport and decoding failures return an error.
func get[T any](ctx context.Context, s *httpRecipesService, path string) (*Response[T], error) {
	endpoint := s.baseURL.ResolveReference(&url.URL{Path: path})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	response := &Response[T]{StatusCode: resp.StatusCode}
	if !response.IsSuccessful() {
		logger.WithFields(logrus.Fields{
			"path":   path,
			"status": resp.StatusCode,
		}).Warn("Recipe source returned unsuccessful status")
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return response, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 || strings.TrimSpace(string(body)) == "null" {
		return response, nil
	}

	var decoded T
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	response.Body = &decoded
	return response, nil
}
