package guidance

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/taqdeer/taqdeer-api/internal/reference"
)

const defaultSource = "Source not specified"

var (
	ErrMissingSummary = errors.New("ruling reply has no summary")
	ErrIncompleteDua  = errors.New("du'a reply has neither arabic text nor translation")
)

// UnparseableError carries the raw completion that could not be decoded.
// Raw is for logs only and must never reach a client.
type UnparseableError struct {
	Raw string
	Err error
}

func (e *UnparseableError) Error() string {
	return fmt.Sprintf("unparseable completion: %v", e.Err)
}

func (e *UnparseableError) Unwrap() error { return e.Err }

// StripFence removes a surrounding ``` block (with or without a language tag)
// and any prose around the first balanced JSON object.
func StripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "```"); i >= 0 {
		body := s[i+3:]
		if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "{[") {
			body = body[nl+1:]
		}
		if j := strings.Index(body, "```"); j >= 0 {
			body = body[:j]
		}
		s = strings.TrimSpace(body)
	}
	if obj, ok := firstObject(s); ok {
		return obj
	}
	return s
}

// firstObject returns the first brace-balanced {...} span, honouring strings.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// Normalize decodes a completion into a Result for mode. Du'a replies are
// repaired field by field; ruling replies without a summary are rejected.
func Normalize(raw, query string, mode Mode) (Result, error) {
	body := StripFence(raw)
	var doc map[string]any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return Result{}, &UnparseableError{Raw: raw, Err: err}
	}
	if doc == nil {
		return Result{}, &UnparseableError{Raw: raw, Err: errors.New("completion is not a JSON object")}
	}

	switch mode {
	case ModeDua:
		d, err := normalizeDua(doc, query)
		if err != nil {
			return Result{}, err
		}
		return Result{Mode: ModeDua, Dua: d}, nil
	case ModeRuling:
		r, err := normalizeRuling(doc, query)
		if err != nil {
			return Result{}, err
		}
		return Result{Mode: ModeRuling, Ruling: r}, nil
	}
	return Result{}, fmt.Errorf("normalize: unknown mode %q", mode)
}

func normalizeDua(doc map[string]any, query string) (*DuaContent, error) {
	d := &DuaContent{
		Title:           str(doc, "title"),
		Narrator:        optStr(doc, "narrator"),
		Context:         optStr(doc, "context"),
		Arabic:          str(doc, "arabic"),
		Transliteration: str(doc, "transliteration"),
		Translation:     str(doc, "translation"),
		Source:          str(doc, "source"),
	}
	if d.Arabic == "" && d.Translation == "" {
		return nil, ErrIncompleteDua
	}
	if d.Title == "" {
		d.Title = "Du'a for " + strings.TrimSpace(query)
	}
	if d.Source == "" {
		d.Source = defaultSource
	}
	return d, nil
}

func normalizeRuling(doc map[string]any, query string) (*RulingContent, error) {
	r := &RulingContent{
		Title:           str(doc, "title"),
		Summary:         str(doc, "summary"),
		Notes:           str(doc, "notes"),
		Evidences:       []Evidence{},
		ScholarOpinions: []ScholarOpinion{},
	}
	if r.Summary == "" {
		return nil, ErrMissingSummary
	}
	if r.Title == "" {
		r.Title = "Ruling on " + strings.TrimSpace(query)
	}

	for _, item := range objects(doc, "evidences") {
		e := Evidence{
			Arabic:      str(item, "arabic"),
			Translation: str(item, "translation"),
			Source:      str(item, "source"),
			Grade:       str(item, "grade"),
		}
		if e.Grade == "" {
			e.Grade = reference.ExtractGrade(e.Source)
		}
		e.Source = reference.StripGrade(e.Source)
		if e.Translation == "" || e.Source == "" {
			continue
		}
		r.Evidences = append(r.Evidences, e)
	}

	for _, item := range objects(doc, "scholarOpinions") {
		o := ScholarOpinion{Scholar: str(item, "scholar"), Opinion: str(item, "opinion")}
		if o.Scholar == "" || o.Opinion == "" {
			continue
		}
		r.ScholarOpinions = append(r.ScholarOpinions, o)
	}

	if refs, ok := doc["references"].([]any); ok {
		for _, v := range refs {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				r.References = append(r.References, strings.TrimSpace(s))
			}
		}
	}
	return r, nil
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func optStr(m map[string]any, key string) *string {
	s := str(m, key)
	if s == "" {
		return nil
	}
	return &s
}

func objects(m map[string]any, key string) []map[string]any {
	list, _ := m[key].([]any)
	out := make([]map[string]any, 0, len(list))
	for _, v := range list {
		if obj, ok := v.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
