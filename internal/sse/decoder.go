// Package sse decodes the server-sent-events framing used by the chat
// completion streaming endpoint: frames of the form "data: <json>\n\n",
// terminated by the literal frame "data: [DONE]\n\n".
package sse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxEventSize caps how many bytes of a single event the Reader will
// buffer before failing the stream. A frame must fit entirely in the
// buffer before it can be decoded.
const MaxEventSize = 10 * 1024 * 1024

// ErrNeedMoreData signals that the buffered bytes do not yet contain a
// complete frame. No bytes are consumed; the caller should append more
// data and retry.
var ErrNeedMoreData = errors.New("sse: incomplete frame, need more data")

// ErrEventTooLarge signals that a single frame exceeded MaxEventSize.
var ErrEventTooLarge = errors.New("sse: event exceeds maximum buffer size")

var (
	dataPrefix = []byte("data: ")
	doneMarker = []byte("[DONE]")
	frameEnd   = []byte("\n\n")
)

// Decode attempts to extract exactly one complete frame from the start
// of buf. It returns the number of bytes consumed and the raw JSON
// payload of the frame.
//
//   - If buf does not yet contain the frame terminator, it returns
//     ErrNeedMoreData with zero bytes consumed.
//   - On the [DONE] sentinel it returns io.EOF; the sentinel's bytes
//     are consumed but no payload is produced.
//   - A frame that does not start with the "data: " prefix, or whose
//     payload is not valid JSON, is a fatal decode error.
func Decode(buf []byte) (int, []byte, error) {
	// Blank lines between frames (and keep-alive newlines) are not
	// part of any frame.
	skip := 0
	for skip < len(buf) && (buf[skip] == '\n' || buf[skip] == '\r') {
		skip++
	}
	rest := buf[skip:]

	if len(rest) < len(dataPrefix) {
		if bytes.HasPrefix(dataPrefix, rest) {
			return 0, nil, ErrNeedMoreData
		}
		return 0, nil, fmt.Errorf("sse: malformed frame start %q", rest)
	}
	if !bytes.HasPrefix(rest, dataPrefix) {
		return 0, nil, fmt.Errorf("sse: malformed frame start %q", rest[:len(dataPrefix)])
	}

	end := bytes.Index(rest, frameEnd)
	if end < 0 {
		return 0, nil, ErrNeedMoreData
	}
	consumed := skip + end + len(frameEnd)

	payload := bytes.TrimSuffix(rest[len(dataPrefix):end], []byte("\r"))
	if bytes.Equal(payload, doneMarker) {
		return consumed, nil, io.EOF
	}
	if !json.Valid(payload) {
		return 0, nil, fmt.Errorf("sse: frame payload is not valid JSON: %q", preview(payload))
	}
	return consumed, payload, nil
}

// Reader decodes frames from an underlying byte stream delivered in
// chunks of arbitrary size. Bytes are appended to an internal buffer
// and consumed frame by frame; already-consumed bytes are never
// revisited.
type Reader struct {
	r     io.Reader
	buf   []byte
	pos   int
	done  bool
	chunk []byte
}

func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:     r,
		chunk: make([]byte, 4096),
	}
}

// Next returns the payload of the next frame. It returns io.EOF once
// the [DONE] sentinel is seen or the underlying stream ends cleanly;
// after that every call returns io.EOF. A stream that ends in the
// middle of a frame yields io.ErrUnexpectedEOF.
//
// The returned slice aliases the internal buffer and is only valid
// until the next call to Next.
func (r *Reader) Next() ([]byte, error) {
	if r.done {
		return nil, io.EOF
	}

	for {
		if r.pos < len(r.buf) {
			n, data, err := Decode(r.buf[r.pos:])
			switch {
			case err == nil:
				r.pos += n
				return data, nil
			case errors.Is(err, io.EOF):
				r.pos += n
				r.done = true
				return nil, io.EOF
			case errors.Is(err, ErrNeedMoreData):
				// Fall through to read more bytes.
			default:
				r.done = true
				return nil, err
			}
		}

		if len(r.buf)-r.pos >= MaxEventSize {
			r.done = true
			return nil, ErrEventTooLarge
		}

		n, err := r.r.Read(r.chunk)
		if n > 0 {
			// Drop the consumed region before appending so the
			// buffer only ever holds unconsumed bytes.
			if r.pos > 0 {
				r.buf = append(r.buf[:0], r.buf[r.pos:]...)
				r.pos = 0
			}
			r.buf = append(r.buf, r.chunk[:n]...)
			continue
		}
		if err == nil {
			continue
		}

		r.done = true
		if err != io.EOF {
			return nil, err
		}
		if len(bytes.Trim(r.buf[r.pos:], "\r\n")) > 0 {
			// Stream ended with a partial frame still pending.
			return nil, io.ErrUnexpectedEOF
		}
		return nil, io.EOF
	}
}

func preview(b []byte) []byte {
	const max = 64
	if len(b) > max {
		return b[:max]
	}
	return b
}
