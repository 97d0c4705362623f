// Package structure detects which canonical resume sections a text contains.
package structure

import "strings"

const (
	ContactInformation = "Contact Information"
	SummaryOrObjective = "Summary or Objective"
	Skills             = "Skills"
	Experience         = "Experience"
	Education          = "Education"
	Certifications     = "Certifications"
	Projects           = "Projects"
)

type section struct {
	name     string
	triggers []string
}

var canonical = []section{
	{name: ContactInformation, triggers: []string{"contact", "email", "phone", "address"}},
	{name: SummaryOrObjective, triggers: []string{"summary", "objective", "overview", "profile"}},
	{name: Skills, triggers: []string{"skill", "competency", "proficiency"}},
	{name: Experience, triggers: []string{"experience", "work history", "employment"}},
	{name: Education, triggers: []string{"education", "academic background", "qualification"}},
	{name: Certifications, triggers: []string{"certification", "certificate"}},
	{name: Projects, triggers: []string{"project", "portfolio"}},
}

// Sections lists the canonical section names in their reporting order.
func Sections() []string {
	names := make([]string, 0, len(canonical))
	for _, s := range canonical {
		names = append(names, s.name)
	}
	return names
}

// Detect scans text line by line and marks a section present once any of its
// triggers occurs in a line, case-insensitively. Coverage is the share of
// present sections scaled to 0..100.
func Detect(text string) (float64, map[string]bool) {
	present := make(map[string]bool, len(canonical))
	for _, s := range canonical {
		present[s.name] = false
	}

	found := 0
	for _, line := range strings.Split(text, "\n") {
		if found == len(canonical) {
			break
		}

		lower := strings.ToLower(line)
		for _, s := range canonical {
			if present[s.name] {
				continue
			}
			if MatchesLine(s.name, lower) {
				present[s.name] = true
				found++
			}
		}
	}

	return float64(found) / float64(len(canonical)) * 100, present
}

// MatchesLine reports whether a lower-cased line carries a trigger for the
// named section.
func MatchesLine(name, lowerLine string) bool {
	for _, s := range canonical {
		if s.name != name {
			continue
		}
		for _, trigger := range s.triggers {
			if strings.Contains(lowerLine, trigger) {
				return true
			}
		}
		return false
	}
	return false
}

// Missing returns the absent sections in canonical order.
func Missing(sections map[string]bool) []string {
	var missing []string
	for _, s := range canonical {
		if !sections[s.name] {
			missing = append(missing, s.name)
		}
	}
	return missing
}
