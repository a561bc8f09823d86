// Package reference turns free-text citation strings produced by the model
// into links on quran.com and sunnah.com.
//
// The recognizers mirror the citation grammar the prompt asks the model to
// follow (see guidance.BuildPrompt). A match only means the citation has a
// known shape; it does not verify the citation.
package reference

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	LabelQuran       = "View on Quran.com"
	LabelSunnah      = "View on Sunnah.com"
	LabelSunnahQuery = "Search on Sunnah.com"
)

type Link struct {
	URL           string `json:"url"`
	Label         string `json:"label"`
	IsQuranSource bool   `json:"isQuranSource"`
}

type recognizer struct {
	name    string
	pattern *regexp.Regexp
	build   func(source string, m []string) *Link
}

func sunnah(collection string) func(string, []string) *Link {
	return func(_ string, m []string) *Link {
		return &Link{
			URL:   "https://sunnah.com/" + collection + ":" + m[1],
			Label: LabelSunnah,
		}
	}
}

// recognizers is evaluated top to bottom and the first match wins. Order
// matters: short aliases such as "Muslim 12" or "Malik 3" would otherwise
// shadow longer names appearing later in the same string.
var recognizers = []recognizer{
	{
		name:    "quran",
		pattern: regexp.MustCompile(`(?i)(?:Quran|Qur'an|Qur’an|القرآن)\s*(\d+)\s*:\s*(\d+)`),
		build: func(_ string, m []string) *Link {
			return &Link{
				URL:           "https://quran.com/" + m[1] + "/" + m[2],
				Label:         LabelQuran,
				IsQuranSource: true,
			}
		},
	},
	{name: "bukhari", pattern: regexp.MustCompile(`(?i)(?:Sahih al-Bukhari|Bukhari)\s+(\d+)`), build: sunnah("bukhari")},
	{name: "muslim", pattern: regexp.MustCompile(`(?i)(?:Sahih Muslim|Muslim)\s+(\d+)`), build: sunnah("muslim")},
	{name: "abudawud", pattern: regexp.MustCompile(`(?i)Abu Da[wv](?:oo|u)d\s+(\d+)`), build: sunnah("abudawud")},
	{name: "tirmidhi", pattern: regexp.MustCompile(`(?i)(?:Jami[' ]at-Tirmidhi|Tirmidhi)\s+(\d+)`), build: sunnah("tirmidhi")},
	{name: "nasai", pattern: regexp.MustCompile(`(?i)Nasa(?:'i|’i|i|')\s+(\d+)`), build: sunnah("nasai")},
	{name: "ibnmajah", pattern: regexp.MustCompile(`(?i)Ibn Majah?\s+(\d+)`), build: sunnah("ibnmajah")},
	{name: "malik", pattern: regexp.MustCompile(`(?i)(?:Muwatta Malik|Malik)\s+(\d+)`), build: sunnah("malik")},
	{name: "riyadussalihin", pattern: regexp.MustCompile(`(?i)Riyadh? (?:as|us)[- ]?Salihin\s+(\d+)`), build: sunnah("riyadussalihin")},
	{
		name:    "hadith-search",
		pattern: regexp.MustCompile(`(?i)hadith`),
		build: func(source string, _ []string) *Link {
			return &Link{
				URL:   "https://sunnah.com/search?q=" + url.QueryEscape(StripGrade(source)),
				Label: LabelSunnahQuery,
			}
		},
	},
}

// LinkFor returns the link for source, or nil when no recognizer matches.
func LinkFor(source string) *Link {
	if strings.TrimSpace(source) == "" {
		return nil
	}
	for _, r := range recognizers {
		if m := r.pattern.FindStringSubmatch(source); m != nil {
			return r.build(source, m)
		}
	}
	return nil
}

// Recognizer reports which rule LinkFor would use for source, "" when none.
func Recognizer(source string) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	for _, r := range recognizers {
		if r.pattern.MatchString(source) {
			return r.name
		}
	}
	return ""
}
