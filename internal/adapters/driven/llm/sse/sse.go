// Package sse reads server-sent event streams from LLM providers.
package sse

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrStop ends a Read without error when returned by the handler.
var ErrStop = errors.New("stop reading")

// doneMarker is the data payload OpenAI sends to close a stream.
var doneMarker = []byte("[DONE]")

// Event is one dispatched server-sent event.
type Event struct {
	// Name is the event field, empty when none was sent.
	Name string

	// Data is the data payload with multiple data lines joined by "\n".
	Data []byte
}

// Read parses the stream and calls handle for each event until the stream
// ends, a [DONE] marker arrives, or handle returns an error. Returning
// ErrStop from handle ends reading cleanly.
func Read(r io.Reader, handle func(Event) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var ev Event
	var data [][]byte
	dispatch := func() error {
		if len(data) == 0 {
			ev = Event{}
			return nil
		}
		ev.Data = bytes.Join(data, []byte("\n"))
		data = nil
		if bytes.Equal(ev.Data, doneMarker) {
			return ErrStop
		}
		err := handle(ev)
		ev = Event{}
		return err
	}

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			if err := dispatch(); err != nil {
				return stopped(err)
			}
			continue
		}
		if line[0] == ':' {
			continue
		}

		field, value, _ := bytes.Cut(line, []byte(":"))
		value = bytes.TrimPrefix(value, []byte(" "))
		switch string(field) {
		case "event":
			ev.Name = string(value)
		case "data":
			data = append(data, append([]byte(nil), value...))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return stopped(dispatch())
}

func stopped(err error) error {
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}
