package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-analyzer/internal/analysis"
	"github.com/spigell/resume-analyzer/internal/export"
	"github.com/spigell/resume-analyzer/internal/logger"
	"github.com/spigell/resume-analyzer/internal/parser"
	"github.com/spigell/resume-analyzer/internal/scoring"
)

// jobFlags are the per-field job flags. Their names map to the job payload
// keys with dashes replaced by underscores.
var jobFlags = []string{
	"job-title",
	"job-description",
	"responsibilities",
	"experience",
	"skills",
	"education",
}

var promptField = func(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("value is required")
			}
			return nil
		},
	}
	return prompt.Run()
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a resume file against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("resume", "r", "", "path to the resume (.docx, .pdf or .txt)")
	analyzeCmd.Flags().String("job", "", "path to a YAML or JSON file with the job description fields")
	analyzeCmd.Flags().String("job-title", "", "job title")
	analyzeCmd.Flags().String("job-description", "", "job description text")
	analyzeCmd.Flags().String("responsibilities", "", "job responsibilities text")
	analyzeCmd.Flags().String("experience", "", "required experience text")
	analyzeCmd.Flags().String("skills", "", "required skills text")
	analyzeCmd.Flags().String("education", "", "required education text")
	analyzeCmd.Flags().BoolP("interactive", "i", false, "ask for job fields that were not provided")
	analyzeCmd.Flags().String("xlsx", "", "also write the report to this Excel file")
}

func analyze(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	resumePath, _ := cmd.Flags().GetString("resume")
	if strings.TrimSpace(resumePath) == "" {
		logger.Fatal("resume file is required", zap.String("hint", "pass it with --resume"))
	}

	jobFile, _ := cmd.Flags().GetString("job")
	in, err := loadJobInput(jobFile, cmd.Flags())
	if err != nil {
		logger.Fatal("loading job description", zap.Error(err))
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		if err := promptMissing(&in); err != nil {
			logger.Fatal("reading job fields", zap.Error(err))
		}
	}

	svc, err := newSimilarity(config.Similarity, logger)
	if err != nil {
		logger.Fatal("building similarity provider", zap.Error(err))
	}

	analyzer := analysis.New(scoring.NewScorer(svc, logger), logger)

	report, err := analyzer.AnalyzeFile(ctx, resumePath, in)
	if err != nil {
		logger.Fatal("analyzing resume", zap.Error(err), zap.String("resume", resumePath))
	}

	logger.Info("resume analyzed",
		zap.String("job_title", report.JobTitle),
		zap.Float64("total_score", report.Score.Total),
	)

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Fatal("encoding report", zap.Error(err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if xlsx, _ := cmd.Flags().GetString("xlsx"); xlsx != "" {
		path, err := export.ToExcel(report, xlsx)
		if err != nil {
			logger.Fatal("exporting report", zap.Error(err))
		}
		logger.Info("report exported", zap.String("filename", path))
	}
}

// loadJobInput merges the optional job file with the job flags that were set
// explicitly. Flags win over file values.
func loadJobInput(path string, flags *pflag.FlagSet) (parser.JobInput, error) {
	raw := map[string]any{}

	if path != "" {
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return parser.JobInput{}, fmt.Errorf("read job file %q: %w", path, err)
		}
		raw = v.AllSettings()
	}

	for _, name := range jobFlags {
		if flags == nil || !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return parser.JobInput{}, err
		}
		raw[strings.ReplaceAll(name, "-", "_")] = value
	}

	return parser.DecodeJob(raw)
}

// promptMissing asks for every empty job field.
func promptMissing(in *parser.JobInput) error {
	fields := []struct {
		label string
		value *string
	}{
		{"Job title", &in.Title},
		{"Job description", &in.Description},
		{"Responsibilities", &in.Responsibilities},
		{"Experience", &in.Experience},
		{"Skills", &in.Skills},
		{"Education", &in.Education},
	}

	for _, field := range fields {
		if strings.TrimSpace(*field.value) != "" {
			continue
		}
		value, err := promptField(field.label)
		if err != nil {
			return fmt.Errorf("prompt %s: %w", strings.ToLower(field.label), err)
		}
		*field.value = strings.TrimSpace(value)
	}

	return nil
}
