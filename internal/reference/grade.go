package reference

import (
	"regexp"
	"strings"
)

// Tier is the badge colour class the UI uses for an authenticity grade.
type Tier string

const (
	TierSuccess Tier = "success"
	TierPrimary Tier = "primary"
	TierInfo    Tier = "info"
	TierWarning Tier = "warning"
	TierDefault Tier = "default"
)

var (
	gradePattern  = regexp.MustCompile(`(?i)\|\s*(Sahih|Hasan|Da'if|Da’if|Daif|Weak|Good|Acceptable)`)
	gradeSuffixRe = regexp.MustCompile(`\|.*$`)
)

// ExtractGrade returns the grade named after the "|" delimiter, or "".
func ExtractGrade(source string) string {
	m := gradePattern.FindStringSubmatch(source)
	if m == nil {
		return ""
	}
	return m[1]
}

// StripGrade drops everything from the first "|" on.
func StripGrade(source string) string {
	return strings.TrimSpace(gradeSuffixRe.ReplaceAllString(source, ""))
}

func GradeTier(grade string) Tier {
	g := strings.ToLower(grade)
	switch {
	case g == "":
		return TierDefault
	case strings.Contains(g, "sahih") || strings.Contains(g, "authentic"):
		return TierSuccess
	case strings.Contains(g, "hasan") || strings.Contains(g, "good"):
		return TierPrimary
	case strings.Contains(g, "acceptable"):
		return TierInfo
	case strings.Contains(g, "weak") || strings.Contains(g, "da'if") || strings.Contains(g, "da’if") || strings.Contains(g, "daif"):
		return TierWarning
	}
	return TierDefault
}
