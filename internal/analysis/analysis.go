// Package analysis wires extraction, parsing, scoring and feedback into a
// single resume-against-job report.
package analysis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-analyzer/internal/document"
	"github.com/spigell/resume-analyzer/internal/feedback"
	"github.com/spigell/resume-analyzer/internal/parser"
	"github.com/spigell/resume-analyzer/internal/records"
	"github.com/spigell/resume-analyzer/internal/scoring"
)

// Scorer is the scoring capability the analyzer depends on.
type Scorer interface {
	Score(ctx context.Context, resume records.Resume, job records.Job) (*scoring.Result, error)
}

// Report merges the score breakdown with the feedback for one resume.
type Report struct {
	JobTitle string          `json:"job_title,omitempty"`
	Score    *scoring.Result `json:"score"`
	Feedback string          `json:"feedback"`
	Gaps     feedback.Gaps   `json:"gaps"`
}

// Analyzer runs the analysis steps and logs each of them.
type Analyzer struct {
	scorer Scorer
	logger *zap.Logger
}

func New(scorer Scorer, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{scorer: scorer, logger: logger}
}

// Analyze scores resume against job and derives feedback from the same inputs.
func (a *Analyzer) Analyze(ctx context.Context, resume records.Resume, job records.Job) (*Report, error) {
	started := time.Now()

	result, err := a.scorer.Score(ctx, resume, job)
	if err != nil {
		return nil, fmt.Errorf("score resume: %w", err)
	}
	a.step("score", started, zap.Float64("total_score", result.Total))

	started = time.Now()
	gaps := feedback.FindGaps(resume, job)
	text := gaps.String()
	a.step("feedback", started, zap.Int("feedback_length", len(text)))

	return &Report{
		JobTitle: job.Title,
		Score:    result,
		Feedback: text,
		Gaps:     gaps,
	}, nil
}

// AnalyzeText parses raw resume text and job fields before analysing them.
func (a *Analyzer) AnalyzeText(ctx context.Context, resumeText string, in parser.JobInput) (*Report, error) {
	started := time.Now()

	job, err := parser.ParseJob(in)
	if err != nil {
		return nil, fmt.Errorf("parse job: %w", err)
	}
	resume := parser.ParseResume(resumeText)

	a.step("parse", started,
		zap.Int("entities", resume.Entities.Len()),
		zap.Int("keywords", job.Keywords.Len()),
	)

	return a.Analyze(ctx, resume, job)
}

// AnalyzeFile extracts the text of the resume at path and analyses it.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, in parser.JobInput) (*Report, error) {
	started := time.Now()

	text, err := document.ExtractText(path)
	if err != nil {
		return nil, err
	}
	a.step("extract", started, zap.String("path", path), zap.Int("text_length", len(text)))

	return a.AnalyzeText(ctx, text, in)
}

func (a *Analyzer) step(name string, started time.Time, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("name", name),
		zap.Duration("took", time.Since(started)),
	}, fields...)
	a.logger.Debug("analysis step", fields...)
}
