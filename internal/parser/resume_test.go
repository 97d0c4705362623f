package parser

import (
	"reflect"
	"testing"

	"github.com/spigell/resume-analyzer/internal/records"
)

const sampleResume = `Jane Roe
Contact: jane@example.com

Professional Summary
Backend engineer focused on data platforms.

Skills
Go, Python, SQL
Kubernetes

Work History
Senior Engineer at Acme Corp, Berlin.
Built billing pipelines.

Education: BSc Computer Science, University of Oslo
`

func TestParseResumeSections(t *testing.T) {
	resume := ParseResume(sampleResume)

	if resume.FullText != sampleResume {
		t.Fatalf("expected full text to be preserved")
	}

	if resume.Skills != "Go, Python, SQL\nKubernetes" {
		t.Fatalf("unexpected skills: %q", resume.Skills)
	}

	if resume.Experience != "Senior Engineer at Acme Corp, Berlin.\nBuilt billing pipelines." {
		t.Fatalf("unexpected experience: %q", resume.Experience)
	}

	if resume.Education != "BSc Computer Science, University of Oslo" {
		t.Fatalf("unexpected education: %q", resume.Education)
	}
}

func TestParseResumeEntities(t *testing.T) {
	resume := ParseResume(sampleResume)

	for _, want := range []string{"jane roe", "acme corp", "acme", "berlin", "python", "sql", "kubernetes", "university", "oslo"} {
		if !resume.Entities.Has(want) {
			t.Errorf("expected entity %q in %v", want, resume.Entities.Sorted())
		}
	}

	for _, unwanted := range []string{"skills", "jane@example.com", "at", "of", "built billing"} {
		if resume.Entities.Has(unwanted) {
			t.Errorf("did not expect entity %q", unwanted)
		}
	}
}

func TestParseResumeSkipsSentenceInitialWords(t *testing.T) {
	t.Parallel()

	text := "Jane Roe\nLed migration to Kubernetes at Acme Corp.\nBuilt billing pipelines. Shipped Go tooling!\nGo SQL"
	entities := ParseResume(text).Entities

	for _, want := range []string{"jane", "jane roe", "kubernetes", "acme corp", "go", "sql", "go sql"} {
		if !entities.Has(want) {
			t.Errorf("expected entity %q in %v", want, entities.Sorted())
		}
	}
	for _, unwanted := range []string{"led", "built", "shipped"} {
		if entities.Has(unwanted) {
			t.Errorf("did not expect sentence-initial word %q in %v", unwanted, entities.Sorted())
		}
	}
}

func TestParseResumePlaceholders(t *testing.T) {
	resume := ParseResume("Lorem ipsum paragraph without headings.")

	want := records.Resume{
		FullText:   "Lorem ipsum paragraph without headings.",
		Entities:   records.NewSet(),
		Skills:     PlaceholderSkills,
		Experience: PlaceholderExperience,
		Education:  PlaceholderEducation,
	}
	if !reflect.DeepEqual(resume, want) {
		t.Fatalf("expected %+v, got %+v", want, resume)
	}
}

func TestParseResumeNormalizesLineEndings(t *testing.T) {
	resume := ParseResume("Skills\r\nGo\r\n")
	if resume.Skills != "Go" {
		t.Fatalf("unexpected skills: %q", resume.Skills)
	}
	if resume.FullText != "Skills\nGo\n" {
		t.Fatalf("unexpected full text: %q", resume.FullText)
	}
}

func TestHeadingOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{line: "SKILLS", want: "Skills", ok: true},
		{line: "Academic Background", want: "Education", ok: true},
		{line: "Experience: 5 years of Go", want: "Experience", ok: true},
		{line: "Personal projects and portfolio", ok: false},
		{line: "", ok: false},
		{line: "Hobbies", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()
			got, ok := headingOf(tt.line)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("headingOf(%q) = %q, %v; want %q, %v", tt.line, got, ok, tt.want, tt.ok)
			}
		})
	}
}
