package cat

import (
	"encoding/json"
	"sort"
)

// Status maps status field names to their rendered values. Which fields are
// present depends on the queries run so far.
type Status map[string]string

func (s Status) merge(fields map[string]string) {
	for k, v := range fields {
		s[k] = v
	}
}

func (s Status) clone() Status {
	c := make(Status, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Keys returns the field names in sorted order.
func (s Status) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// JSON renders the status as a flat object of string values.
func (s Status) JSON() (string, error) {
	if s == nil {
		s = Status{}
	}
	b, err := json.Marshal(map[string]string(s))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
