// Package models contains the records displayed by the meetings view
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	errNotArray  = errors.New("expected a JSON array")
	errNotObject = errors.New("expected a JSON object")
)

// Meeting represents a single entry of the meetings collection.
// All fields are display strings owned by the upstream server.
type Meeting struct {
	ID      string `json:"id"`
	Topic   string `json:"topic"`
	Date    string `json:"date"`
	Summary string `json:"summary"`
}

// ParseError reports a collection payload that does not have the expected shape
type ParseError struct {
	// Index of the offending element, -1 when the body itself is malformed
	Index int
	// Field is empty unless a single field had the wrong type
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("parse meetings: %v", e.Err)
	case e.Field == "":
		return fmt.Sprintf("parse meetings: element %d: %v", e.Index, e.Err)
	default:
		return fmt.Sprintf("parse meetings: element %d: field %q: %v", e.Index, e.Field, e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DecodeMeetings decodes a collection response body.
// The body must be a JSON array of objects. Missing or null fields decode to
// blank strings, an id may be a JSON number or string. Response order is kept.
func DecodeMeetings(data []byte) ([]Meeting, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &ParseError{Index: -1, Err: errNotArray}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, &ParseError{Index: -1, Err: err}
	}

	meetings := make([]Meeting, 0, len(elements))
	for i, element := range elements {
		meeting, err := decodeMeeting(i, element)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, meeting)
	}

	return meetings, nil
}

func decodeMeeting(index int, element json.RawMessage) (Meeting, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(element, &fields); err != nil || fields == nil {
		return Meeting{}, &ParseError{Index: index, Err: errNotObject}
	}

	var meeting Meeting
	var err error

	if meeting.ID, err = decodeID(fields["id"]); err != nil {
		return Meeting{}, &ParseError{Index: index, Field: "id", Err: err}
	}
	if meeting.Topic, err = decodeText(fields["topic"]); err != nil {
		return Meeting{}, &ParseError{Index: index, Field: "topic", Err: err}
	}
	if meeting.Date, err = decodeText(fields["date"]); err != nil {
		return Meeting{}, &ParseError{Index: index, Field: "date", Err: err}
	}
	if meeting.Summary, err = decodeText(fields["summary"]); err != nil {
		return Meeting{}, &ParseError{Index: index, Field: "summary", Err: err}
	}

	return meeting, nil
}

// decodeText accepts a JSON string or null
func decodeText(raw json.RawMessage) (string, error) {
	if isAbsent(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("expected a string, got %s", kindOf(raw))
	}
	return s, nil
}

// decodeID accepts a JSON string, number or null
func decodeID(raw json.RawMessage) (string, error) {
	if isAbsent(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if raw[0] != '"' {
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String(), nil
		}
	}
	return "", fmt.Errorf("expected a string or number, got %s", kindOf(raw))
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func kindOf(raw json.RawMessage) string {
	switch raw[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case '"':
		return "string"
	default:
		return "number"
	}
}
