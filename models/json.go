package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ExtraMember is an object member kept verbatim across decode and encode.
type ExtraMember struct {
	Name  string
	Value json.RawMessage
}

// Extras holds the members of a decoded object that its declared fields would not write back:
// names the model does not know (such as the engine's callbacks) and declared members whose value
// the field encoding drops (empty strings, empty lists, explicit nulls). They are written after
// the declared fields, in input order.
type Extras []ExtraMember

func (e Extras) set(m ExtraMember) Extras {
	for i := range e {
		if e[i].Name == m.Name {
			e[i] = m
			return e
		}
	}
	return append(e, m)
}

// encodeJSON marshals v without HTML escaping and without a trailing newline.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// decodeObject unmarshals data into plain and returns the members that re-encoding plain would
// lose.
func decodeObject(data []byte, plain any) (Extras, error) {
	if err := json.Unmarshal(data, plain); err != nil {
		return nil, err
	}
	encoded, err := encodeJSON(plain)
	if err != nil {
		return nil, err
	}
	written, err := objectMembers(encoded)
	if err != nil {
		return nil, err
	}
	members, err := objectMembers(data)
	if err != nil {
		return nil, err
	}

	var extras Extras
	for _, m := range members {
		if !hasMember(written, m.Name) {
			extras = extras.set(m)
		}
	}
	return extras, nil
}

// encodeObject marshals plain and appends the extras it did not already write.
func encodeObject(plain any, extras Extras) ([]byte, error) {
	encoded, err := encodeJSON(plain)
	if err != nil || len(extras) == 0 {
		return encoded, err
	}
	written, err := objectMembers(encoded)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(bytes.TrimSuffix(encoded, []byte("}")))
	n := len(written)
	for _, m := range extras {
		if hasMember(written, m.Name) {
			continue
		}
		if n > 0 {
			buf.WriteByte(',')
		}
		name, err := encodeJSON(m.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(m.Value)
		n++
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// objectMembers lists the members of a JSON object with compacted values.
func objectMembers(data []byte) ([]ExtraMember, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var members []ExtraMember
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected member name, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return nil, err
		}
		members = append(members, ExtraMember{Name: name, Value: compact.Bytes()})
	}
	return members, nil
}

// hasMember matches names the way encoding/json matches fields, ignoring case.
func hasMember(members []ExtraMember, name string) bool {
	for _, m := range members {
		if strings.EqualFold(m.Name, name) {
			return true
		}
	}
	return false
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
