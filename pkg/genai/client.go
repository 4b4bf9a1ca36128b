package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/promptstack/promptstack/pkg/cache"
	"github.com/promptstack/promptstack/pkg/errors"
	"github.com/promptstack/promptstack/pkg/graph"
	"github.com/promptstack/promptstack/pkg/httputil"
	"github.com/promptstack/promptstack/pkg/importer"
	"github.com/promptstack/promptstack/pkg/observability"
)

const defaultTimeout = 60 * time.Second

// Config configures the generation client.
type Config struct {
	// Endpoint is the base URL of an OpenAI-compatible API,
	// e.g. "https://api.openai.com/v1".
	Endpoint string

	// Model names the model to request.
	Model string

	// APIKey authorizes requests. Empty is allowed for local endpoints.
	APIKey string

	// Temperature for generation requests.
	Temperature float64

	// Timeout bounds a single request including retries' first attempt.
	Timeout time.Duration
}

// Client calls the generation endpoint and turns responses into graphs.
// Responses are cached by prompt and request options so repeated requests
// skip the network.
type Client struct {
	http  *http.Client
	cfg   Config
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewClient creates a generation client. Pass a [cache.NullCache] to
// disable caching.
func NewClient(cfg Config, c cache.Cache, ttl time.Duration) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:  &http.Client{Timeout: timeout},
		cfg:   cfg,
		cache: c,
		keyer: cache.NewDefaultKeyer(),
		ttl:   ttl,
	}
}

// completionResponse is the subset of the chat completions response we read.
type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends a free-text request and returns the validated graph the
// model produced. The raw response text is cached; parsing and validation
// run on every call, and a cached response that no longer passes the
// contract is discarded and regenerated instead of poisoning every call
// until its TTL expires.
func (c *Client) Generate(ctx context.Context, request string) (*graph.Graph, error) {
	key := c.keyer.GenerationKey(request, cache.GenerationKeyOpts{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
	})

	if data, hit, _ := c.cache.Get(ctx, key); hit {
		if g, err := ParseResponse(string(data)); err == nil {
			observability.Cache().OnCacheHit(ctx, "generation")
			return g, nil
		}
		// The cached text no longer satisfies the contract, for example
		// after a validator change. Drop it and regenerate.
		_ = c.cache.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, "generation")

	start := time.Now()
	observability.Generation().OnGenerateStart(ctx, c.cfg.Model)
	content, err := c.complete(ctx, BuildRequest(c.cfg.Model, c.cfg.Temperature, request))
	observability.Generation().OnGenerateComplete(ctx, c.cfg.Model, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	g, err := ParseResponse(content)
	if err != nil {
		return nil, err
	}
	_ = c.cache.Set(ctx, key, []byte(content), c.ttl)
	return g, nil
}

// complete performs the chat completions call with retry on transient
// failures and returns the first choice's content.
func (c *Client) complete(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "marshal generation request")
	}

	var content string
	attempt := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.cfg.Endpoint+"/chat/completions", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if c.cfg.APIKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}

		resp, err := c.http.Do(httpReq)
		if err != nil {
			return httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "generation request failed"))
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := errors.New(errors.ErrCodeNetwork, "generation endpoint returned status %d", resp.StatusCode)
			if httputil.RetryableStatus(resp.StatusCode) {
				return httputil.Retryable(err)
			}
			return err
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read generation response"))
		}

		var parsed completionResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return errors.Wrap(errors.ErrCodeGenerationFailed, err, "generation response is not valid JSON")
		}
		if len(parsed.Choices) == 0 {
			return errors.New(errors.ErrCodeGenerationFailed, "generation response contains no choices")
		}
		content = parsed.Choices[0].Message.Content
		return nil
	}

	if err := httputil.RetryWithBackoff(ctx, attempt); err != nil {
		return "", err
	}
	return content, nil
}

// ParseResponse extracts graph JSON from untrusted response text, coerces
// it into a graph, and runs it through the validator. A response that
// fails any step is a generation error and is never offered for drawing.
func ParseResponse(text string) (*graph.Graph, error) {
	data, ok := importer.ExtractJSON(text)
	if !ok {
		return nil, errors.New(errors.ErrCodeGenerationFailed, "generation response contains no JSON object")
	}

	g, ok := graph.Coerce(data)
	if !ok {
		return nil, errors.New(errors.ErrCodeGenerationFailed, "generation response JSON is not a graph")
	}

	if err := graph.Validate(g); err != nil {
		return nil, errors.Wrap(errors.ErrCodeGenerationFailed, err,
			"generated graph is invalid: %s", errors.UserMessage(err))
	}
	return g, nil
}
