// Package app wires configuration into the extraction pipeline and runs one
// parse from the command line: read the input, extract exams, write JSON and
// optionally an iCalendar file.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/examplan/syllaparse/internal/aiparse"
	"github.com/examplan/syllaparse/internal/ics"
	"github.com/examplan/syllaparse/internal/llm"
	"github.com/examplan/syllaparse/internal/normalize"
	"github.com/examplan/syllaparse/internal/ocr"
	"github.com/examplan/syllaparse/internal/syllabus"
)

// Config carries everything one run needs. Either InputPath or Text must be
// set; everything else is optional.
type Config struct {
	InputPath string
	Text      string
	Section   string

	OutputPath string
	ICSPath    string
	Course     string

	OCRURL      string
	OCRKey      string
	OCRLanguage string

	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	Verbose bool
}

// App is one configured run of the extractor.
type App struct {
	cfg    Config
	parser *Parser
}

// New validates the configuration and wires the pipeline: the OCR engine when
// configured, the AI strategy head when an LLM is configured, and always the
// heuristic tail.
func New(cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	var engine ocr.Engine
	if strings.TrimSpace(cfg.OCRURL) != "" {
		engine = &ocr.HTTPEngine{
			URL:               cfg.OCRURL,
			APIKey:            cfg.OCRKey,
			Language:          cfg.OCRLanguage,
			HTTPClient:        &http.Client{},
			MaxAttempts:       3,
			PerRequestTimeout: 60 * time.Second,
		}
	}
	normalizer := &normalize.Normalizer{OCR: engine}

	var heads []syllabus.Strategy
	if strings.TrimSpace(cfg.LLMModel) != "" {
		heads = append(heads, &aiparse.Strategy{
			Client: llm.New(cfg.LLMBaseURL, cfg.LLMAPIKey),
			Model:  cfg.LLMModel,
		})
	}

	return &App{cfg: cfg, parser: NewParser(normalizer, heads...)}, nil
}

// Run executes the parse and writes the results.
func (a *App) Run(ctx context.Context) error {
	exams, err := a.parse(ctx)
	if err != nil {
		return err
	}
	if len(exams) == 0 {
		log.Info().Msg("no exams found; the syllabus may need manual entry")
		exams = []syllabus.Exam{}
	}

	out, err := json.MarshalIndent(exams, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if a.cfg.OutputPath == "" || a.cfg.OutputPath == "-" {
		fmt.Println(string(out))
	} else if err := os.WriteFile(a.cfg.OutputPath, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	if a.cfg.ICSPath != "" {
		cal, err := ics.Build(exams, ics.Options{Course: a.cfg.Course, CalendarName: "Exam Schedule"})
		if err != nil {
			return err
		}
		if err := os.WriteFile(a.cfg.ICSPath, []byte(cal), 0o644); err != nil {
			return fmt.Errorf("write calendar: %w", err)
		}
		log.Info().Str("path", a.cfg.ICSPath).Msg("wrote calendar")
	}
	return nil
}

func (a *App) parse(ctx context.Context) ([]syllabus.Exam, error) {
	if a.cfg.Text != "" {
		return a.parser.ParseText(ctx, a.cfg.Text, a.cfg.Section)
	}
	if a.cfg.InputPath == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return a.parser.ParseText(ctx, string(data), a.cfg.Section)
	}
	data, err := os.ReadFile(a.cfg.InputPath)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	in := normalize.Input{Data: data, Filename: a.cfg.InputPath}
	return a.parser.ParseFile(ctx, in, a.cfg.Section)
}
