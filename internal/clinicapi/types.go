package clinicapi

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexString decodes JSON strings and numbers alike; the backend is not consistent
// about fields such as fees and durations.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// Int returns the leading integer of the value, e.g. 30 for "30 min".
func (f FlexString) Int() int {
	s := string(f)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}

// Meta is the pagination block of list responses.
type Meta struct {
	Total       int `json:"total"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
}

// Document is an opaque JSON object the client passes through without interpreting.
type Document map[string]any
