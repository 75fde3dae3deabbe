// Package extract consumes the external extraction service's best-effort
// output. The payload may be well-formed JSON, broken JSON, or loosely
// structured "- key: value" text; everything is decoded defensively into a
// tagged union with a single conversion point into the draft builder.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Kind tags the shape the extractor returned.
type Kind string

const (
	KindStructured Kind = "structured"
	KindFreeform   Kind = "freeform"
)

// Payload is the tagged union of extractor output shapes.
type Payload struct {
	Kind       Kind
	Structured map[string]any // set when Kind == KindStructured
	Text       string         // set when Kind == KindFreeform
}

// Extraction is the normalized view of an extractor payload, the only shape
// the draft builder consumes.
type Extraction struct {
	Participants []string
	DateText     string
	TimeText     string
	DurationText string
	Description  string
	Location     string
}

// Decode classifies raw extractor output. JSON is attempted first, then a
// jsonrepair pass for the truncated/unquoted output LLM extractors tend to
// produce; anything else is kept as freeform text.
func Decode(raw string) Payload {
	trimmed := stripFences(strings.TrimSpace(raw))
	if trimmed == "" {
		return Payload{Kind: KindFreeform, Text: ""}
	}

	if looksLikeJSON(trimmed) {
		var data map[string]any
		if err := json.Unmarshal([]byte(trimmed), &data); err == nil {
			return Payload{Kind: KindStructured, Structured: data}
		}
		if repaired, err := jsonrepair.JSONRepair(trimmed); err == nil {
			if err := json.Unmarshal([]byte(repaired), &data); err == nil {
				return Payload{Kind: KindStructured, Structured: data}
			}
		}
	}

	return Payload{Kind: KindFreeform, Text: trimmed}
}

// ToExtraction is the single conversion point from either payload shape
// into the builder's input.
func ToExtraction(p Payload) Extraction {
	switch p.Kind {
	case KindStructured:
		return fromStructured(p.Structured)
	default:
		return ParseFreeform(p.Text)
	}
}

func fromStructured(data map[string]any) Extraction {
	e := Extraction{}
	for key, value := range data {
		assignField(&e, normalizeKey(key), value)
	}
	return e
}

// assignField routes a recognized key into the extraction and reports
// whether the key was known.
func assignField(e *Extraction, key string, value any) bool {
	switch key {
	case "participants", "participant", "invites", "avec", "patients", "patient":
		e.Participants = append(e.Participants, toNameList(value)...)
	case "date", "jour", "quand", "day":
		e.DateText = joinText(e.DateText, toText(value))
	case "heure", "time", "horaire":
		e.TimeText = joinText(e.TimeText, toText(value))
	case "duree", "duration":
		e.DurationText = joinText(e.DurationText, toText(value))
	case "description", "objet", "motif", "titre", "title", "sujet":
		e.Description = joinText(e.Description, toText(value))
	case "lieu", "adresse", "location", "endroit":
		e.Location = joinText(e.Location, toText(value))
	default:
		return false
	}
	return true
}

// toNameList accepts a JSON array, a comma/"et"-separated string, or a
// single object with a "name"/"nom" field.
func toNameList(value any) []string {
	switch v := value.(type) {
	case []any:
		var names []string
		for _, item := range v {
			names = append(names, toNameList(item)...)
		}
		return names
	case map[string]any:
		for _, key := range []string{"nom", "name"} {
			if name, ok := v[key].(string); ok && strings.TrimSpace(name) != "" {
				return []string{strings.TrimSpace(name)}
			}
		}
		return nil
	case string:
		return SplitNames(v)
	default:
		return nil
	}
}

// SplitNames splits a dictated participant list on commas and " et ".
func SplitNames(s string) []string {
	s = strings.ReplaceAll(s, " et ", ",")
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func toText(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if text := toText(item); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

func joinText(existing, extra string) string {
	if existing == "" {
		return extra
	}
	if extra == "" {
		return existing
	}
	return existing + " " + extra
}

func looksLikeJSON(s string) bool {
	return strings.HasPrefix(s, "{")
}

// stripFences unwraps a markdown code fence around the payload.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
