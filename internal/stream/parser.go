// Package stream parses the chat service's event-stream wire format on the
// client side. The grammar is line oriented: an event is one line carrying
// the "data: " prefix followed by a JSON payload, and events are separated by
// a blank line. There is no end-marker event; stream closure is completion.
package stream

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

const dataPrefix = "data: "

// Frame is one decoded event payload. Exactly one field is set per frame.
type Frame struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// Parser pulls frames off an inbound event stream one at a time. Each call
// to Next may block waiting for the transport.
type Parser struct {
	scanner *bufio.Scanner
}

func NewParser(r io.Reader) *Parser {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Parser{scanner: scanner}
}

// Next returns the next well-formed frame. Blank separator lines, lines with
// an unknown prefix, and malformed payloads are skipped silently. io.EOF
// signals normal exhaustion.
func (p *Parser) Next() (*Frame, error) {
	for p.scanner.Scan() {
		line := p.scanner.Text()
		if line == "" {
			continue
		}
		payload, ok := strings.CutPrefix(line, dataPrefix)
		if !ok {
			continue
		}

		var frame Frame
		if err := json.Unmarshal([]byte(payload), &frame); err != nil {
			continue
		}
		return &frame, nil
	}

	if err := p.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
