package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateChatCompletion(t *testing.T) {
	var gotReq ChatRequest
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4",
			"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15},
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "hi"}, "finish_reason": "stop"}]
		}`)
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	resp, err := client.CreateChatCompletion(context.Background(), &ChatRequest{
		Model:       "gpt-4",
		Messages:    []Message{{Role: RoleUser, Content: "hello"}},
		Temperature: 0.7,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4", gotReq.Model)
	assert.Equal(t, "hello", gotReq.Messages[0].Content)

	assert.Equal(t, "chatcmpl-1", resp.ID)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, FinishReasonStop, resp.Choices[0].FinishReason)
	assert.Equal(t, "hi", resp.Choices[0].Message.Content)
}

func TestCreateChatCompletionHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error": {"message": "bad key"}}`)
	}))
	defer srv.Close()

	client := NewClient("wrong", srv.URL)
	_, err := client.CreateChatCompletion(context.Background(), &ChatRequest{Model: "gpt-4"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "bad key")
}

func TestCreateChatCompletionStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream, "stream flag must be set on the wire")

		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: {\"id\":\"c\",\"choices\":[{\"index\":0,\"delta\":{\"role\":\"assistant\",\"content\":\"he\"}}]}\n\n")
		io.WriteString(w, "data: {\"id\":\"c\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"llo\"},\"finish_reason\":\"stop\"}]}\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	stream, err := client.CreateChatCompletionStream(context.Background(), &ChatRequest{
		Model:    "gpt-4",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	defer stream.Close()

	var content string
	var chunks int
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		chunks++
		require.Len(t, chunk.Choices, 1)
		content += chunk.Choices[0].Delta.Content
	}

	assert.Equal(t, 2, chunks)
	assert.Equal(t, "hello", content)
}

func TestCreateChatCompletionStreamHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, "rate limited")
	}))
	defer srv.Close()

	client := NewClient("k", srv.URL)
	_, err := client.CreateChatCompletionStream(context.Background(), &ChatRequest{Model: "gpt-4"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

func TestNewClientBaseURLTrimsSlash(t *testing.T) {
	c := NewClient("k", "http://example.test/v1/")
	assert.Equal(t, "http://example.test/v1", c.baseURL)
}
