package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsaban/saband/internal/llm"
)

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model  string `json:"model"`
			System string `json:"system"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "claude-3-5-sonnet-latest", req.Model)
		assert.NotEmpty(t, req.System)

		resp := map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": `{"text":"תשובה"}`},
			},
			"model":       req.Model,
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)

	text, err := client.Generate(context.Background(), llm.Request{
		Model:  "claude-3-5-sonnet-latest",
		System: "אתה המומחה של ח. סבן",
		Prompt: "כמה עולה דבק שיש?",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"text":"תשובה"}`, text)
}

func TestGenerateSendsHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		require.Len(t, req.Messages, 3)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "assistant", req.Messages[1].Role)
		assert.Equal(t, "user", req.Messages[2].Role)

		resp := map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": "79.9 שקלים"},
			},
			"model":       "claude-3-5-sonnet-latest",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)

	text, err := client.Generate(context.Background(), llm.Request{
		Model: "claude-3-5-sonnet-latest",
		History: []llm.Turn{
			{Role: llm.RoleUser, Content: "ספרו לי על נירוקול"},
			{Role: llm.RoleAssistant, Content: "נירוקול הוא דבק שיש"},
		},
		Prompt: "וכמה הוא עולה?",
	})
	require.NoError(t, err)
	assert.Equal(t, "79.9 שקלים", text)
}

func TestGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"overloaded"}}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("test-key", server.URL)

	_, err := client.Generate(context.Background(), llm.Request{Model: "claude-3-5-sonnet-latest", Prompt: "q"})
	assert.Error(t, err)
}
