// Package export writes analysis reports to spreadsheet files.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/resume-analyzer/internal/analysis"
	"github.com/spigell/resume-analyzer/internal/structure"
)

const (
	scoreSheet    = "Score"
	feedbackSheet = "Feedback"
)

// ToExcel writes report to outputPath, adding the .xlsx extension when missing.
// It returns the path actually written.
func ToExcel(report *analysis.Report, outputPath string) (string, error) {
	if report == nil || report.Score == nil {
		return "", fmt.Errorf("report with a score is required")
	}

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath += ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", scoreSheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(feedbackSheet); err != nil {
		return "", fmt.Errorf("create feedback sheet: %w", err)
	}

	if err := writeScoreSheet(f, report); err != nil {
		return "", fmt.Errorf("write score sheet: %w", err)
	}
	if err := writeFeedbackSheet(f, report); err != nil {
		return "", fmt.Errorf("write feedback sheet: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	return outputPath, nil
}

func writeScoreSheet(f *excelize.File, report *analysis.Report) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	if err := f.SetColWidth(scoreSheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(scoreSheet, "B", "B", 16); err != nil {
		return err
	}

	score := report.Score
	rows := [][]any{
		{"Job Title", report.JobTitle},
		{"Generated", time.Now().Format("2006-01-02 15:04:05")},
		{},
		{"Component", "Score"},
		{"Total", score.Total},
		{"Entity Overlap", score.Entity},
		{"Skills", score.Skills},
		{"Experience", score.Experience},
		{"Education", score.Education},
		{"Structure", score.Structure},
		{},
		{"Section", "Present"},
	}
	for _, name := range structure.Sections() {
		present := "No"
		if score.Sections[name] {
			present = "Yes"
		}
		rows = append(rows, []any{name, present})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}
		if err := f.SetSheetRow(scoreSheet, cell, &row); err != nil {
			return err
		}
		if row[0] == "Component" || row[0] == "Section" {
			end, _ := excelize.CoordinatesToCellName(2, i+1)
			if err := f.SetCellStyle(scoreSheet, cell, end, headerStyle); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeFeedbackSheet(f *excelize.File, report *analysis.Report) error {
	if err := f.SetColWidth(feedbackSheet, "A", "A", 100); err != nil {
		return err
	}

	if err := f.SetCellValue(feedbackSheet, "A1", "Feedback"); err != nil {
		return err
	}

	text := report.Feedback
	if text == "" {
		text = "No gaps found."
	}
	return f.SetCellValue(feedbackSheet, "A2", text)
}
