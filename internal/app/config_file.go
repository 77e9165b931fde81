package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema. Nested sections
// map naturally to the flag namespaces.
type FileConfig struct {
	Input   string `yaml:"input" json:"input"`
	Section string `yaml:"section" json:"section"`
	Output  string `yaml:"output" json:"output"`
	ICS     string `yaml:"ics" json:"ics"`
	Course  string `yaml:"course" json:"course"`

	OCR struct {
		URL      string `yaml:"url" json:"url"`
		Key      string `yaml:"key" json:"key"`
		Language string `yaml:"language" json:"language"`
	} `yaml:"ocr" json:"ocr"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset in cfg. Flags should already have been parsed; this lets
// file config supply defaults while preserving explicit flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.InputPath == "" && fc.Input != "" {
		cfg.InputPath = fc.Input
	}
	if cfg.Section == "" && fc.Section != "" {
		cfg.Section = fc.Section
	}
	if cfg.OutputPath == "" && fc.Output != "" {
		cfg.OutputPath = fc.Output
	}
	if cfg.ICSPath == "" && fc.ICS != "" {
		cfg.ICSPath = fc.ICS
	}
	if cfg.Course == "" && fc.Course != "" {
		cfg.Course = fc.Course
	}
	if cfg.OCRURL == "" && fc.OCR.URL != "" {
		cfg.OCRURL = fc.OCR.URL
	}
	if cfg.OCRKey == "" && fc.OCR.Key != "" {
		cfg.OCRKey = fc.OCR.Key
	}
	if cfg.OCRLanguage == "" && fc.OCR.Language != "" {
		cfg.OCRLanguage = fc.OCR.Language
	}
	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMModel == "" && fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.InputPath) == "" && strings.TrimSpace(cfg.Text) == "" {
		return errors.New("config: an input file or inline text is required")
	}
	if strings.TrimSpace(cfg.InputPath) != "" && strings.TrimSpace(cfg.Text) != "" {
		return errors.New("config: input file and inline text are mutually exclusive")
	}
	if strings.TrimSpace(cfg.OCRKey) != "" && strings.TrimSpace(cfg.OCRURL) == "" {
		return errors.New("config: ocr.key is set but ocr.url is empty")
	}
	if strings.TrimSpace(cfg.LLMAPIKey) != "" && strings.TrimSpace(cfg.LLMModel) == "" {
		return errors.New("config: llm.key is set but llm.model is empty (or set LLM_MODEL)")
	}
	if s := strings.TrimSpace(cfg.Section); s != "" && !reSectionID.MatchString(s) {
		return fmt.Errorf("config: invalid section identifier %q", cfg.Section)
	}
	return nil
}

var reSectionID = regexp.MustCompile(`^[A-Za-z0-9]{1,8}$`)
