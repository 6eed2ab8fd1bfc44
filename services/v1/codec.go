package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"uptime-config/models"
)

// ToStoreBlob encodes a document for the authoritative store.
func ToStoreBlob(doc models.ConfigurationDocument) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// FromStoreBlob decodes and validates a document. Any decode or validation failure matches
// ErrMalformedDocument.
func FromStoreBlob(blob []byte) (models.ConfigurationDocument, error) {
	var doc models.ConfigurationDocument

	dec := json.NewDecoder(bytes.NewReader(blob))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return models.ConfigurationDocument{}, malformed("%s", describeDecodeError(err))
	}
	if _, err := dec.Token(); err != io.EOF {
		return models.ConfigurationDocument{}, malformed("unexpected data after document")
	}

	if err := Validate(&doc); err != nil {
		return models.ConfigurationDocument{}, err
	}
	return doc, nil
}

// ToMirrorSource renders the module file imported by the execution engine at build time. The
// output only depends on doc.
func ToMirrorSource(doc models.ConfigurationDocument) ([]byte, error) {
	page, err := indentJSON(doc.PageSettings)
	if err != nil {
		return nil, fmt.Errorf("render page settings: %w", err)
	}
	worker, err := indentJSON(doc.MonitorSettings)
	if err != nil {
		return nil, fmt.Errorf("render monitor settings: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("const pageConfig = ")
	buf.Write(page)
	buf.WriteString("\n\nconst workerConfig = ")
	buf.Write(worker)
	buf.WriteString("\n\nexport { pageConfig, workerConfig }")
	return buf.Bytes(), nil
}

func indentJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return rawLineSeparators(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// rawLineSeparators turns the \u2028 and \u2029 escapes encoding/json always emits back into the
// characters themselves, as JSON.stringify writes them.
func rawLineSeparators(src []byte) []byte {
	if !bytes.Contains(src, []byte(`\u202`)) {
		return src
	}
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); i++ {
		if src[i] != '\\' || i+1 == len(src) {
			out = append(out, src[i])
			continue
		}
		if rest := src[i+1:]; len(rest) >= 5 && rest[0] == 'u' {
			switch string(rest[1:5]) {
			case "2028":
				out = append(out, "\u2028"...)
				i += 5
				continue
			case "2029":
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, src[i], src[i+1])
		i++
	}
	return out
}

func describeDecodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Sprintf("invalid JSON at offset %d: %v", syntaxErr.Offset, syntaxErr)
	}
	if errors.Is(err, io.EOF) {
		return "empty document"
	}
	return err.Error()
}

// Validate checks the document invariants.
func Validate(doc *models.ConfigurationDocument) error {
	if doc.PageSettings == nil {
		return malformed("pageSettings is required")
	}
	if doc.MonitorSettings == nil {
		return malformed("monitorSettings is required")
	}

	page := doc.PageSettings
	for i, link := range page.Links {
		if strings.TrimSpace(link.Link) == "" {
			return malformed("pageSettings.links[%d].link is required", i)
		}
	}
	for i := range page.Group {
		if page.Group[i].MonitorIDs == nil {
			page.Group[i].MonitorIDs = []string{}
		}
	}

	settings := doc.MonitorSettings
	if settings.KVWriteCooldownMinutes != nil && *settings.KVWriteCooldownMinutes < 0 {
		return malformed("monitorSettings.kvWriteCooldownMinutes must not be negative")
	}
	if settings.Monitors == nil {
		return malformed("monitorSettings.monitors is required")
	}
	if n := settings.Notification; n != nil && n.GracePeriod != nil && *n.GracePeriod < 0 {
		return malformed("monitorSettings.notification.gracePeriod must not be negative")
	}

	seen := make(map[string]int, len(settings.Monitors))
	for i := range settings.Monitors {
		m := &settings.Monitors[i]
		if m.ID == "" {
			return malformed("monitors[%d].id is required", i)
		}
		if first, dup := seen[m.ID]; dup {
			return malformed("monitors[%d].id %q duplicates monitors[%d]", i, m.ID, first)
		}
		seen[m.ID] = i

		if err := validateMonitor(i, m); err != nil {
			return err
		}
	}
	return nil
}

func validateMonitor(i int, m *models.MonitorTarget) error {
	if m.Method == "" {
		return malformed("monitors[%d] (%s): method is required", i, m.ID)
	}
	if !models.IsCheckMethod(m.Method) {
		return malformed("monitors[%d] (%s): unsupported method %q", i, m.ID, m.Method)
	}
	if strings.TrimSpace(m.Target) == "" {
		return malformed("monitors[%d] (%s): target is required", i, m.ID)
	}
	if m.Method == models.MethodTCPPing {
		if _, port, err := net.SplitHostPort(m.Target); err != nil || port == "" {
			return malformed("monitors[%d] (%s): TCP_PING target must be host:port", i, m.ID)
		}
	}
	if m.Timeout != nil && *m.Timeout <= 0 {
		return malformed("monitors[%d] (%s): timeout must be positive", i, m.ID)
	}
	for _, code := range m.ExpectedCodes {
		if code < 100 || code > 599 {
			return malformed("monitors[%d] (%s): expected code %d out of range", i, m.ID, code)
		}
	}
	return nil
}
