// Package scoring combines overlap, similarity and structure signals into a
// weighted resume-to-job compatibility score.
package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/spigell/resume-analyzer/internal/records"
	"github.com/spigell/resume-analyzer/internal/similarity"
	"github.com/spigell/resume-analyzer/internal/structure"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Weights of each sub-score in the total. They sum to 1.1, so the total
// ranges over [0, 110].
const (
	EntityWeight     = 0.30
	SkillsWeight     = 0.30
	ExperienceWeight = 0.20
	EducationWeight  = 0.20
	StructureWeight  = 0.10
)

// Errors surfaced by Score.
var (
	ErrMalformedInput   = records.ErrMalformedInput
	ErrModelUnavailable = similarity.ErrModelUnavailable
)

// Result is the per-request score breakdown. Sub-scores are in [0, 100], the
// total in [0, 110]. Every score is rounded to two decimals.
type Result struct {
	Total      float64         `json:"total_score"`
	Entity     float64         `json:"entity_score"`
	Skills     float64         `json:"skills_score"`
	Experience float64         `json:"experience_score"`
	Education  float64         `json:"education_score"`
	Structure  float64         `json:"structure_score"`
	Sections   map[string]bool `json:"sections"`
}

// Scorer computes Results with an injected similarity provider.
type Scorer struct {
	provider similarity.Provider
	logger   *zap.Logger
}

func NewScorer(provider similarity.Provider, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{provider: provider, logger: logger}
}

// Score rates resume against job. Malformed records fail before any
// arithmetic; a failed similarity comparison aborts the whole call.
func (s *Scorer) Score(ctx context.Context, resume records.Resume, job records.Job) (*Result, error) {
	if err := resume.Validate(); err != nil {
		return nil, err
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if s.provider == nil {
		return nil, fmt.Errorf("%w: scorer has no similarity provider", ErrModelUnavailable)
	}

	entity := EntityOverlap(resume.Entities, job.Keywords)

	var skills, experience, education float64
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.provider.Similarity(gCtx, resume.Skills, job.Skills)
		if err != nil {
			return fmt.Errorf("skills similarity: %w", err)
		}
		skills = v * 100
		return nil
	})
	g.Go(func() error {
		v, err := s.provider.Similarity(gCtx, resume.Experience, job.Experience)
		if err != nil {
			return fmt.Errorf("experience similarity: %w", err)
		}
		experience = v * 100
		return nil
	})
	g.Go(func() error {
		v, err := s.provider.Similarity(gCtx, resume.Education, job.Education)
		if err != nil {
			return fmt.Errorf("education similarity: %w", err)
		}
		education = v * 100
		return nil
	})

	coverage, sections := structure.Detect(resume.FullText)

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Total:      Round(Total(entity, skills, experience, education, coverage)),
		Entity:     Round(entity),
		Skills:     Round(skills),
		Experience: Round(experience),
		Education:  Round(education),
		Structure:  Round(coverage),
		Sections:   sections,
	}

	s.logger.Debug("resume scored",
		zap.Float64("total", result.Total),
		zap.Float64("entity", result.Entity),
		zap.Float64("skills", result.Skills),
		zap.Float64("experience", result.Experience),
		zap.Float64("education", result.Education),
		zap.Float64("structure", result.Structure),
	)

	return result, nil
}

// EntityOverlap is the share of keywords found among the entities, scaled to
// 0..100. It is 0 when there are no keywords.
func EntityOverlap(entities, keywords records.Set) float64 {
	if keywords.Len() == 0 {
		return 0
	}
	return float64(entities.Intersect(keywords).Len()) / float64(keywords.Len()) * 100
}

// Total is the weighted sum of the five sub-scores.
func Total(entity, skills, experience, education, structure float64) float64 {
	return EntityWeight*entity +
		SkillsWeight*skills +
		ExperienceWeight*experience +
		EducationWeight*education +
		StructureWeight*structure
}

// Round rounds v to two decimal places.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}
