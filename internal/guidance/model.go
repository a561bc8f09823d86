// Package guidance turns a free-text query into a validated du'a or ruling
// by prompting the model and normalizing its reply.
package guidance

import (
	"fmt"
	"strings"
)

type Mode string

const (
	ModeDua    Mode = "dua"
	ModeRuling Mode = "ruling"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeDua:
		return ModeDua, nil
	case ModeRuling:
		return ModeRuling, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

type DuaContent struct {
	Title           string  `json:"title"`
	Narrator        *string `json:"narrator"`
	Context         *string `json:"context"`
	Arabic          string  `json:"arabic"`
	Transliteration string  `json:"transliteration"`
	Translation     string  `json:"translation"`
	Source          string  `json:"source"`
}

// ShareText is the plain-text rendering used when a du'a is copied or shared.
func (d DuaContent) ShareText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s\n\nTransliteration:\n%s\n\nTranslation:\n%s\n\nSource: %s\n",
		d.Title, d.Arabic, d.Transliteration, d.Translation, d.Source)
	if d.Narrator != nil && *d.Narrator != "" {
		fmt.Fprintf(&b, "Narrated by: %s\n", *d.Narrator)
	}
	b.WriteString("\nShared via Taqdeer.app")
	return b.String()
}

type Evidence struct {
	Arabic      string `json:"arabic,omitempty"`
	Translation string `json:"translation"`
	Source      string `json:"source"`
	Grade       string `json:"grade,omitempty"`
}

type ScholarOpinion struct {
	Scholar string `json:"scholar"`
	Opinion string `json:"opinion"`
}

type RulingContent struct {
	Title           string           `json:"title"`
	Summary         string           `json:"summary"`
	Evidences       []Evidence       `json:"evidences"`
	ScholarOpinions []ScholarOpinion `json:"scholarOpinions"`
	Notes           string           `json:"notes,omitempty"`
	References      []string         `json:"references,omitempty"`
}

// Result holds exactly one of Dua or Ruling, selected by Mode.
type Result struct {
	Mode   Mode
	Dua    *DuaContent
	Ruling *RulingContent
}

// Payload returns the content value that is written to the wire.
func (r Result) Payload() interface{} {
	if r.Mode == ModeRuling {
		return r.Ruling
	}
	return r.Dua
}

type QueryRequest struct {
	Query string `json:"query"`
}
