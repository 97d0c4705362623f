package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/resume-analyzer/internal/analysis"
	"github.com/spigell/resume-analyzer/internal/scoring"
	"github.com/spigell/resume-analyzer/internal/structure"
)

func sampleReport() *analysis.Report {
	_, sections := structure.Detect("Skills\nEducation")
	return &analysis.Report{
		JobTitle: "Backend Engineer",
		Score: &scoring.Result{
			Total:      56.86,
			Entity:     50,
			Skills:     80,
			Experience: 50,
			Education:  25,
			Structure:  28.57,
			Sections:   sections,
		},
		Feedback: "Your skills section could be improved. Consider including skills such as: sql.",
	}
}

func TestToExcelAddsExtension(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report")

	written, err := ToExcel(sampleReport(), out)
	if err != nil {
		t.Fatalf("ToExcel() failed: %v", err)
	}
	if written != out+".xlsx" {
		t.Fatalf("expected %s, got %s", out+".xlsx", written)
	}

	f, err := excelize.OpenFile(written)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	checks := map[string]string{
		"A1":  "Job Title",
		"B1":  "Backend Engineer",
		"A5":  "Total",
		"B5":  "56.86",
		"B10": "28.57",
		"A13": structure.ContactInformation,
		"B13": "No",
		"A15": structure.Skills,
		"B15": "Yes",
	}
	for cell, want := range checks {
		got, err := f.GetCellValue(scoreSheet, cell)
		if err != nil {
			t.Fatalf("read %s: %v", cell, err)
		}
		if got != want {
			t.Errorf("cell %s: expected %q, got %q", cell, want, got)
		}
	}

	feedback, err := f.GetCellValue(feedbackSheet, "A2")
	if err != nil {
		t.Fatalf("read feedback: %v", err)
	}
	if feedback != sampleReport().Feedback {
		t.Fatalf("unexpected feedback cell: %q", feedback)
	}
}

func TestToExcelKeepsExtension(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.XLSX")

	written, err := ToExcel(sampleReport(), out)
	if err != nil {
		t.Fatalf("ToExcel() failed: %v", err)
	}
	if written != out {
		t.Fatalf("expected %s, got %s", out, written)
	}
}

func TestToExcelEmptyFeedback(t *testing.T) {
	report := sampleReport()
	report.Feedback = ""

	written, err := ToExcel(report, filepath.Join(t.TempDir(), "empty.xlsx"))
	if err != nil {
		t.Fatalf("ToExcel() failed: %v", err)
	}

	f, err := excelize.OpenFile(written)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue(feedbackSheet, "A2"); got != "No gaps found." {
		t.Fatalf("unexpected feedback cell: %q", got)
	}
}

func TestToExcelRequiresScore(t *testing.T) {
	if _, err := ToExcel(&analysis.Report{}, filepath.Join(t.TempDir(), "x")); err == nil {
		t.Fatal("expected error for report without score")
	}
	if _, err := ToExcel(nil, filepath.Join(t.TempDir(), "x")); err == nil {
		t.Fatal("expected error for nil report")
	}
}
