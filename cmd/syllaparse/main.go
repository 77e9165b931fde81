package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/examplan/syllaparse/internal/app"
	"github.com/examplan/syllaparse/internal/syllabus"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		inputPath   string
		text        string
		section     string
		outputPath  string
		icsPath     string
		course      string
		configPath  string
		ocrURL      string
		ocrKey      string
		ocrLanguage string
		llmBaseURL  string
		llmModel    string
		llmKey      string
		verbose     bool
	)

	flag.StringVar(&inputPath, "input", "", "Path to a syllabus file (PDF, DOCX, TXT, HTML, PNG, or JPG)")
	flag.StringVar(&text, "text", "", "Inline syllabus text instead of a file")
	flag.StringVar(&section, "section", "", "Course section to extract, e.g. L01; other sections are ignored")
	flag.StringVar(&outputPath, "out", "", "Path to write the exam list as JSON ('-' or empty for stdout)")
	flag.StringVar(&icsPath, "ics", "", "Optional path to also write an iCalendar file")
	flag.StringVar(&course, "course", "", "Course label prefixed to calendar event summaries")
	flag.StringVar(&configPath, "config", os.Getenv("SYLLAPARSE_CONFIG"), "Optional YAML or JSON config file")
	flag.StringVar(&ocrURL, "ocr.url", os.Getenv("OCR_URL"), "OCR service endpoint for scanned documents and images")
	flag.StringVar(&ocrKey, "ocr.key", os.Getenv("OCR_API_KEY"), "API key for the OCR service")
	flag.StringVar(&ocrLanguage, "ocr.lang", "", "OCR language hint, e.g. 'eng'")
	flag.StringVar(&llmBaseURL, "llm.base", os.Getenv("LLM_BASE_URL"), "OpenAI-compatible base URL")
	flag.StringVar(&llmModel, "llm.model", os.Getenv("LLM_MODEL"), "Model name; empty disables the AI parser")
	flag.StringVar(&llmKey, "llm.key", os.Getenv("LLM_API_KEY"), "API key for OpenAI-compatible server")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := app.Config{
		InputPath:   inputPath,
		Text:        text,
		Section:     section,
		OutputPath:  outputPath,
		ICSPath:     icsPath,
		Course:      course,
		OCRURL:      ocrURL,
		OCRKey:      ocrKey,
		OCRLanguage: ocrLanguage,
		LLMBaseURL:  llmBaseURL,
		LLMModel:    llmModel,
		LLMAPIKey:   llmKey,
		Verbose:     verbose,
	}

	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("load config file")
			os.Exit(1)
		}
		app.ApplyFileConfig(&cfg, fc)
		if cfg.Verbose && !verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		// Exit code policy: 2 for expected extraction failures the caller can
		// act on, 1 for everything else.
		if errors.Is(err, syllabus.ErrEmptyInput) ||
			errors.Is(err, syllabus.ErrNoText) ||
			errors.Is(err, syllabus.ErrUnsupportedType) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(cfg app.Config) error {
	ctx := context.Background()

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	return a.Run(ctx)
}
