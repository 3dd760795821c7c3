package openai_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanbase/cinedeck-go/pkg/llm"
	"github.com/oceanbase/cinedeck-go/pkg/llm/openai"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newServer(t *testing.T, choices string, got *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"1","object":"chat.completion","model":"m","choices":`+choices+`}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClientRequiresKeyOrBaseURL(t *testing.T) {
	_, err := openai.NewClient(nil)
	assert.Error(t, err)
	_, err = openai.NewClient(&openai.Config{})
	assert.Error(t, err)

	_, err = openai.NewClient(&openai.Config{BaseURL: "http://localhost:11434/v1"})
	assert.NoError(t, err)
}

func TestGenerateWithMessages(t *testing.T) {
	var got chatRequest
	srv := newServer(t, `[{"index":0,"message":{"role":"assistant","content":"{\"genre_ids\":[35]}"},"finish_reason":"stop"}]`, &got)

	client, err := openai.NewClient(&openai.Config{APIKey: "sk-test", BaseURL: srv.URL + "/", Model: "deepseek-chat"})
	require.NoError(t, err)

	out, err := client.GenerateWithMessages(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "pick genres"},
		{Role: llm.RoleUser, Content: "something funny"},
	}, llm.WithMaxTokens(100))
	require.NoError(t, err)
	assert.Equal(t, `{"genre_ids":[35]}`, out)

	assert.Equal(t, "deepseek-chat", got.Model)
	assert.Equal(t, 100, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "something funny", got.Messages[1].Content)
}

func TestGenerateDefaultsModel(t *testing.T) {
	var got chatRequest
	srv := newServer(t, `[{"index":0,"message":{"role":"assistant","content":"ok"}}]`, &got)

	client, err := openai.NewClient(&openai.Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := client.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, openai.DefaultModel, got.Model)
	assert.NoError(t, client.Close())
}

func TestGenerateNoChoices(t *testing.T) {
	var got chatRequest
	srv := newServer(t, `[]`, &got)

	client, err := openai.NewClient(&openai.Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "hello")
	assert.Error(t, err)
}
