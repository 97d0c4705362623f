package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/spigell/resume-analyzer/internal/records"
)

// JobInput holds the raw job description fields as submitted.
type JobInput struct {
	Title            string `mapstructure:"job_title" json:"job_title"`
	Description      string `mapstructure:"job_description" json:"job_description" validate:"required"`
	Responsibilities string `mapstructure:"responsibilities" json:"responsibilities" validate:"required"`
	Experience       string `mapstructure:"experience" json:"experience" validate:"required"`
	Skills           string `mapstructure:"skills" json:"skills" validate:"required"`
	Education        string `mapstructure:"education" json:"education" validate:"required"`
}

var validate = validator.New()

// Validate checks that every required field is present.
func (in JobInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %w", records.ErrMalformedInput, err)
	}
	return nil
}

// DecodeJob builds a JobInput from a loosely typed payload such as a YAML
// document or a form value map.
func DecodeJob(raw map[string]any) (JobInput, error) {
	var in JobInput
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &in,
		WeaklyTypedInput: true,
		ErrorUnused:      false,
	})
	if err != nil {
		return JobInput{}, err
	}

	if err := decoder.Decode(raw); err != nil {
		return JobInput{}, fmt.Errorf("%w: decode job: %w", records.ErrMalformedInput, err)
	}

	return in, nil
}

// ParseJob validates in and derives the keyword set from the description,
// responsibilities and skills fields.
func ParseJob(in JobInput) (records.Job, error) {
	in = trimInput(in)
	if err := in.Validate(); err != nil {
		return records.Job{}, err
	}

	return records.Job{
		Title:      in.Title,
		Keywords:   extractKeywords(in.Description, in.Responsibilities, in.Skills),
		Skills:     in.Skills,
		Experience: in.Experience,
		Education:  in.Education,
	}, nil
}

func trimInput(in JobInput) JobInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Responsibilities = strings.TrimSpace(in.Responsibilities)
	in.Experience = strings.TrimSpace(in.Experience)
	in.Skills = strings.TrimSpace(in.Skills)
	in.Education = strings.TrimSpace(in.Education)
	return in
}

func extractKeywords(texts ...string) records.Set {
	keywords := make(records.Set)
	for _, text := range texts {
		for _, raw := range strings.Fields(text) {
			word := strings.ToLower(cleanToken(raw))
			if utf8.RuneCountInString(word) < 2 || isStopword(word) || isNumeric(word) {
				continue
			}
			keywords[word] = struct{}{}
		}
	}
	return keywords
}
