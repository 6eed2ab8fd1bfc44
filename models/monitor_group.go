package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MonitorGroup is a named list of monitor ids shown together on the status page.
type MonitorGroup struct {
	Name       string
	MonitorIDs []string
}

// MonitorGroups is encoded as a JSON object whose key order is the slice order, so the order the
// operator chose survives the store and the mirror file.
type MonitorGroups []MonitorGroup

func (g MonitorGroups) MarshalJSON() ([]byte, error) {
	if g == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, group := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := encodeJSON(group.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')

		ids := group.MonitorIDs
		if ids == nil {
			ids = []string{}
		}
		encoded, err := encodeJSON(ids)
		if err != nil {
			return nil, err
		}
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (g *MonitorGroups) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*g = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("group: expected object, got %v", tok)
	}

	groups := MonitorGroups{}
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("group: expected name, got %v", tok)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("group: duplicate group %q", name)
		}
		seen[name] = struct{}{}

		var ids []string
		if err := dec.Decode(&ids); err != nil {
			return fmt.Errorf("group %q: %w", name, err)
		}
		if ids == nil {
			ids = []string{}
		}
		groups = append(groups, MonitorGroup{Name: name, MonitorIDs: ids})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*g = groups
	return nil
}
