// Package chat orchestrates completion round trips: it submits a
// conversation, dispatches any function call the model requests, feeds
// the result back, and resubmits until the model produces a final
// answer.
package chat

import (
	"context"
	"fmt"
	"io"
	"time"

	"parley/internal/fn"
	"parley/internal/logger"
	"parley/internal/openai"
)

// Completer is the wire client the controller drives. *openai.Client
// satisfies it; tests substitute scripted implementations.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req *openai.ChatRequest) (*openai.ChatResponse, error)
	CreateChatCompletionStream(ctx context.Context, req *openai.ChatRequest) (*openai.StreamReader, error)
}

// Options configures one controller.
type Options struct {
	Model       string
	Temperature float32

	// MaxRounds caps the number of request/response round trips in a
	// single Complete call.
	MaxRounds int

	// AllowRepeatCalls disables the duplicate-call guard, letting the
	// model call the same function with the same arguments repeatedly.
	AllowRepeatCalls bool
}

// duplicateNotice is appended to the conversation when the guard
// trips, so the model knows why its function calls stopped working.
const duplicateNotice = "Internal thought: I already called that function with the same arguments and " +
	"received an answer. I should stop calling functions and answer with what I have."

// Controller runs completions against one Completer. A controller is
// not safe for concurrent use: the conversation and the call history
// are per-invocation mutable state, so callers must serialize calls
// per conversation.
type Controller struct {
	client Completer
	opts   Options
	log    *logger.Logger
}

func NewController(client Completer, opts Options, log *logger.Logger) *Controller {
	if opts.Model == "" {
		opts.Model = "gpt-4"
	}
	if opts.MaxRounds == 0 {
		opts.MaxRounds = 10
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Controller{
		client: client,
		opts:   opts,
		log:    log,
	}
}

// callRecord captures one requested function call for the duplicate
// guard. Arguments are compared as raw text: two calls count as
// duplicates only when both the name and the argument text match the
// immediately preceding call exactly.
type callRecord struct {
	name string
	args string
}

// Complete runs the request/function-call loop until the model returns
// a final answer. Functions from registry are offered to the model;
// pass nil to disable function calling. The returned response is the
// final round's response; the conversation grows only by appending.
func (c *Controller) Complete(ctx context.Context, messages []openai.Message, registry *fn.Registry) (*openai.ChatResponse, error) {
	msgs := append([]openai.Message(nil), messages...)

	var defs []openai.FunctionDefinition
	if registry != nil {
		defs = registry.Definitions()
	}

	// Call history lives only for this invocation.
	var last *callRecord
	functionCalls := 0
	start := time.Now()

	for round := 0; round < c.opts.MaxRounds; round++ {
		c.log.Debug("Round %d: submitting %d message(s)", round+1, len(msgs))

		resp, err := c.client.CreateChatCompletion(ctx, &openai.ChatRequest{
			Model:       c.opts.Model,
			Messages:    msgs,
			Temperature: c.opts.Temperature,
			Functions:   defs,
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("chat: response %q carried no choices", resp.ID)
		}

		choice := resp.Choices[0]
		if choice.FinishReason != openai.FinishReasonFunctionCall || len(defs) == 0 {
			c.log.Debug("Completed in %d round(s), %d function call(s), %s",
				round+1, functionCalls, time.Since(start).Round(time.Millisecond))
			return resp, nil
		}

		call := choice.Message.FunctionCall
		if call == nil {
			return nil, fmt.Errorf("chat: finish reason %q without a function call payload", choice.FinishReason)
		}
		c.log.FunctionCall(call.Name, call.Arguments)

		rec := callRecord{name: call.Name, args: call.Arguments}
		if !c.opts.AllowRepeatCalls && last != nil && *last == rec {
			c.log.Info("Duplicate call to %s detected, disabling functions for this session", call.Name)
			msgs = append(msgs, openai.Message{
				Role:    openai.RoleAssistant,
				Content: duplicateNotice,
			})
			defs = nil
			last = &rec
			continue
		}
		last = &rec

		f, err := registry.Get(call.Name)
		if err != nil {
			// The model asked for something we never offered. Skip the
			// call and let it correct itself on the next round.
			c.log.Error("Model requested unknown function %q, skipping", call.Name)
			continue
		}

		callStart := time.Now()
		result := f.Call(ctx, call.Arguments)
		functionCalls++
		c.log.FunctionResult(call.Name, result, time.Since(callStart))

		msgs = append(msgs, choice.Message)
		msgs = append(msgs, openai.Message{
			Role:    openai.RoleFunction,
			Name:    call.Name,
			Content: result,
		})
	}

	return nil, fmt.Errorf("chat: no final answer after %d rounds", c.opts.MaxRounds)
}

// CompleteStreaming runs a single streamed completion, invoking
// onDelta for every decoded chunk until the terminal sentinel.
// Function calling is not supported while streaming: supplying a
// non-empty registry is a configuration error, reported before any
// request is sent.
func (c *Controller) CompleteStreaming(ctx context.Context, messages []openai.Message, registry *fn.Registry, onDelta func(*openai.StreamChunk)) error {
	if registry != nil && registry.Len() > 0 {
		return fmt.Errorf("%w: function calling is not supported in streaming mode", fn.ErrConfig)
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, &openai.ChatRequest{
		Model:       c.opts.Model,
		Messages:    messages,
		Temperature: c.opts.Temperature,
		Stream:      true,
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		onDelta(chunk)
	}
}
