package cli

import (
	"fmt"
	"io"
	"os"

	"parley/internal/openai"
)

// ANSI color codes
const (
	ColorReset = "\033[0m"
	ColorCyan  = "\033[36m"
	ColorGray  = "\033[90m"
)

// StreamingWriter provides utilities for writing streaming content to output
type StreamingWriter struct {
	writer    io.Writer
	colorMode bool
}

func NewStreamingWriter(w io.Writer) *StreamingWriter {
	if w == nil {
		w = os.Stdout
	}
	return &StreamingWriter{
		writer:    w,
		colorMode: true,
	}
}

func (sw *StreamingWriter) SetColorMode(enabled bool) {
	sw.colorMode = enabled
}

// Write writes content to the output
func (sw *StreamingWriter) Write(content string) {
	fmt.Fprint(sw.writer, content)
}

// WriteLine writes a line to the output
func (sw *StreamingWriter) WriteLine(content string) {
	fmt.Fprintln(sw.writer, content)
}

// WriteColored writes colored content if color mode is enabled
func (sw *StreamingWriter) WriteColored(content, color string) {
	if sw.colorMode {
		fmt.Fprintf(sw.writer, "%s%s%s", color, content, ColorReset)
	} else {
		fmt.Fprint(sw.writer, content)
	}
}

// StreamRenderer renders streamed completion chunks as they arrive and
// accumulates the full text.
type StreamRenderer struct {
	writer  *StreamingWriter
	content string
}

func NewStreamRenderer(writer *StreamingWriter) *StreamRenderer {
	return &StreamRenderer{writer: writer}
}

// RenderChunk writes the content delta of one chunk
func (sr *StreamRenderer) RenderChunk(chunk *openai.StreamChunk) {
	if len(chunk.Choices) == 0 {
		return
	}
	delta := chunk.Choices[0].Delta.Content
	if delta != "" {
		sr.writer.Write(delta)
		sr.content += delta
	}
}

// RenderComplete ends the streamed output with a newline
func (sr *StreamRenderer) RenderComplete() {
	sr.writer.WriteLine("")
}

// Content returns the accumulated text so far
func (sr *StreamRenderer) Content() string {
	return sr.content
}
