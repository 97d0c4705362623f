// Package parser turns raw resume text and job form fields into records.
package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spigell/resume-analyzer/internal/records"
	"github.com/spigell/resume-analyzer/internal/structure"
)

// Placeholder section texts used when no heading is found.
const (
	PlaceholderSkills     = "Extracted skills from text"
	PlaceholderExperience = "Extracted experience from text"
	PlaceholderEducation  = "Extracted education from text"
)

const maxHeadingWords = 3

// ParseResume extracts entities and the skills, experience and education
// sections from plain resume text.
func ParseResume(text string) records.Resume {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	sections := splitSections(text)

	return records.Resume{
		FullText:   text,
		Entities:   extractEntities(text),
		Skills:     orPlaceholder(sections[structure.Skills], PlaceholderSkills),
		Experience: orPlaceholder(sections[structure.Experience], PlaceholderExperience),
		Education:  orPlaceholder(sections[structure.Education], PlaceholderEducation),
	}
}

func orPlaceholder(text, placeholder string) string {
	if strings.TrimSpace(text) == "" {
		return placeholder
	}
	return text
}

// splitSections groups the lines following a heading under that heading's
// canonical section until the next heading.
func splitSections(text string) map[string]string {
	bodies := make(map[string][]string)
	current := ""

	for _, line := range strings.Split(text, "\n") {
		if name, ok := headingOf(line); ok {
			current = name
			if rest := headingRemainder(line); rest != "" {
				bodies[current] = append(bodies[current], rest)
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		if current == "" || trimmed == "" {
			continue
		}
		bodies[current] = append(bodies[current], trimmed)
	}

	out := make(map[string]string, len(bodies))
	for name, lines := range bodies {
		out[name] = strings.Join(lines, "\n")
	}
	return out
}

// headingOf reports the canonical section a short line introduces.
func headingOf(line string) (string, bool) {
	head := line
	if idx := strings.Index(line, ":"); idx >= 0 {
		head = line[:idx]
	}

	head = strings.TrimSpace(head)
	if head == "" || len(strings.Fields(head)) > maxHeadingWords {
		return "", false
	}

	lower := strings.ToLower(head)
	for _, name := range structure.Sections() {
		if structure.MatchesLine(name, lower) {
			return name, true
		}
	}
	return "", false
}

func headingRemainder(line string) string {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(line[idx+1:])
}

// extractEntities collects runs of capitalised words. Each run is kept as a
// phrase and as its individual words, lower-cased so they compare with job
// keywords. Sentence-initial words are skipped: the first word of a prose line
// (one ending in sentence punctuation) and any word after a sentence end.
func extractEntities(text string) records.Set {
	entities := make(records.Set)

	flush := func(run []string) {
		if len(run) == 0 {
			return
		}
		for _, word := range run {
			entities[strings.ToLower(word)] = struct{}{}
		}
		if len(run) > 1 {
			entities[strings.ToLower(strings.Join(run, " "))] = struct{}{}
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if _, ok := headingOf(line); ok {
			line = headingRemainder(line)
		}

		sentenceStart := endsSentence(strings.TrimSpace(line))

		var run []string
		for _, raw := range strings.Fields(line) {
			word := cleanToken(raw)
			initial := sentenceStart
			sentenceStart = endsSentence(raw)

			if initial || !isProperLike(word) {
				flush(run)
				run = nil
				continue
			}

			run = append(run, word)

			// A trailing comma or period ends the run.
			if last, _ := utf8.DecodeLastRuneInString(raw); last == ',' || last == '.' || last == ';' {
				flush(run)
				run = nil
			}
		}
		flush(run)
	}

	return entities
}

func endsSentence(s string) bool {
	last, _ := utf8.DecodeLastRuneInString(s)
	return last == '.' || last == '!' || last == '?'
}

func isProperLike(word string) bool {
	if utf8.RuneCountInString(word) < 2 || isStopword(word) || isNumeric(word) {
		return false
	}
	if strings.Contains(word, "@") {
		return false
	}
	first, _ := utf8.DecodeRuneInString(word)
	return unicode.IsUpper(first)
}
