package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"parley/internal/sse"
)

// StreamReader yields the decoded chunks of one streaming completion.
type StreamReader struct {
	body   io.Closer
	events *sse.Reader
}

// NewStreamReader decodes SSE frames from body. Callers normally get
// one from CreateChatCompletionStream; constructing one directly is
// useful for tests and canned streams.
func NewStreamReader(body io.ReadCloser) *StreamReader {
	return &StreamReader{
		body:   body,
		events: sse.NewReader(body),
	}
}

// Recv returns the next decoded chunk. It returns io.EOF once the
// stream's terminal sentinel is seen; the sentinel itself never
// surfaces as a chunk.
func (s *StreamReader) Recv() (*StreamChunk, error) {
	data, err := s.events.Next()
	if err != nil {
		return nil, err
	}

	var chunk StreamChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return nil, fmt.Errorf("openai: decode stream chunk: %w", err)
	}
	return &chunk, nil
}

func (s *StreamReader) Close() error {
	return s.body.Close()
}

// CreateChatCompletionStream submits a conversation with the stream
// flag set and returns a reader over the live response body. The
// caller must Close the reader.
func (c *Client) CreateChatCompletionStream(ctx context.Context, req *ChatRequest) (*StreamReader, error) {
	streamReq := *req
	streamReq.Stream = true

	resp, err := c.post(ctx, &streamReq)
	if err != nil {
		return nil, err
	}

	return NewStreamReader(resp.Body), nil
}
