// Package opt holds a tri-state optional value used by partial updates.
//
// A String is Unset when the field was absent from the input, Null when it
// was explicitly cleared, and a Value otherwise.
package opt

import (
	"bytes"
	"encoding/json"
)

type state uint8

const (
	unset state = iota
	null
	value
)

type String struct {
	state state
	v     string
}

func Unset() String { return String{} }

func Null() String { return String{state: null} }

func Of(s string) String { return String{state: value, v: s} }

// IsSet reports whether the field was present in the input at all.
func (s String) IsSet() bool { return s.state != unset }

func (s String) IsNull() bool { return s.state == null }

func (s String) Get() (string, bool) {
	return s.v, s.state == value
}

// Ptr returns nil for Unset and Null.
func (s String) Ptr() *string {
	if s.state != value {
		return nil
	}
	v := s.v
	return &v
}

// NullIfEmpty turns an empty Value into Null.
func (s String) NullIfEmpty() String {
	if s.state == value && s.v == "" {
		return Null()
	}
	return s
}

func (s String) MarshalJSON() ([]byte, error) {
	if s.state != value {
		return []byte("null"), nil
	}
	return json.Marshal(s.v)
}

func (s *String) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*s = Null()
		return nil
	}

	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = Of(v)
	return nil
}
