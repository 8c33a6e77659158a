package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatServer serves /chat/completions and records the decoded request.
func chatServer(t *testing.T, status int, body string, got *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewOpenAIClient_MissingKey(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewOpenAIClient_DefaultModel(t *testing.T) {
	c, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", c.Model())
}

func TestOpenAIClient_Generate(t *testing.T) {
	var got map[string]any
	srv := chatServer(t, http.StatusOK,
		`{"id":"x","object":"chat.completion","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Use const instead of var."}}]}`,
		&got)

	c, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), "Analyze this", GenerationParams{MaxTokens: IntPtr(500)})
	require.NoError(t, err)
	assert.Equal(t, "Use const instead of var.", out)

	assert.Equal(t, "gpt-4", got["model"])
	assert.EqualValues(t, 500, got["max_tokens"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	first := msgs[0].(map[string]any)
	assert.Equal(t, "user", first["role"])
	assert.Equal(t, "Analyze this", first["content"])
}

func TestOpenAIClient_SystemPrompt(t *testing.T) {
	var got map[string]any
	srv := chatServer(t, http.StatusOK,
		`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`, &got)

	c, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1", SystemPrompt: "Be terse."})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "p", GenerationParams{})
	require.NoError(t, err)

	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `{"choices":[]}`, nil)

	c, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "p", GenerationParams{})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAIClient_APIError(t *testing.T) {
	srv := chatServer(t, http.StatusUnauthorized,
		`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`, nil)

	c, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "p", GenerationParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}

func TestClientFunc(t *testing.T) {
	var c Client = ClientFunc(func(ctx context.Context, prompt string, params GenerationParams) (string, error) {
		return "echo: " + prompt, nil
	})
	out, err := c.Generate(context.Background(), "hi", GenerationParams{})
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", out)
}
