// Package feedback turns the gaps between a resume and a job into short advice.
package feedback

import (
	"fmt"
	"strings"

	"github.com/spigell/resume-analyzer/internal/records"
	"github.com/spigell/resume-analyzer/internal/structure"
)

const (
	// MaxItems caps the number of feedback items joined into the result.
	MaxItems = 3
	// MaxTerms caps the number of missing terms listed per item.
	MaxTerms = 10
)

// Gaps holds the missing keywords per resume section and the absent canonical
// sections, each in a stable order.
type Gaps struct {
	Skills     []string `json:"skills"`
	Experience []string `json:"experience"`
	Education  []string `json:"education"`
	Sections   []string `json:"sections"`
}

// FindGaps compares the job keywords with the whitespace tokens of each resume
// section and re-runs structure detection on the full text.
func FindGaps(resume records.Resume, job records.Job) Gaps {
	_, sections := structure.Detect(resume.FullText)

	return Gaps{
		Skills:     job.Keywords.Difference(tokens(resume.Skills)).Sorted(),
		Experience: job.Keywords.Difference(tokens(resume.Experience)).Sorted(),
		Education:  job.Keywords.Difference(tokens(resume.Education)).Sorted(),
		Sections:   structure.Missing(sections),
	}
}

// Items renders one feedback item per non-empty gap in the order skills,
// experience, education, sections.
func (g Gaps) Items() []string {
	var items []string
	if len(g.Skills) > 0 {
		items = append(items, fmt.Sprintf("Your skills section could be improved. Consider including skills such as: %s.", firstTerms(g.Skills)))
	}
	if len(g.Experience) > 0 {
		items = append(items, fmt.Sprintf("Your experience section could be improved. Consider including experiences such as: %s.", firstTerms(g.Experience)))
	}
	if len(g.Education) > 0 {
		items = append(items, fmt.Sprintf("Your education section could be improved. Ensure it highlights education such as: %s.", firstTerms(g.Education)))
	}
	if len(g.Sections) > 0 {
		items = append(items, fmt.Sprintf("Your resume is missing the following sections: %s.", strings.Join(g.Sections, ", ")))
	}
	return items
}

// String returns up to MaxItems feedback items joined by single spaces, or
// an empty string when there is nothing to report.
func (g Gaps) String() string {
	items := g.Items()
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	return strings.Join(items, " ")
}

// Generate is FindGaps followed by Gaps.String.
func Generate(resume records.Resume, job records.Job) string {
	return FindGaps(resume, job).String()
}

func firstTerms(terms []string) string {
	if len(terms) > MaxTerms {
		terms = terms[:MaxTerms]
	}
	return strings.Join(terms, ", ")
}

func tokens(text string) records.Set {
	return records.NewSet(strings.Fields(text)...)
}
