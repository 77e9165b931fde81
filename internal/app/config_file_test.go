package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"no input at all", Config{}, true},
		{"file input", Config{InputPath: "syllabus.pdf"}, false},
		{"inline text", Config{Text: "Midterm 10/8"}, false},
		{"both inputs", Config{InputPath: "syllabus.pdf", Text: "x"}, true},
		{"ocr key without url", Config{Text: "x", OCRKey: "k"}, true},
		{"llm key without model", Config{Text: "x", LLMAPIKey: "k"}, true},
		{"llm fully configured", Config{Text: "x", LLMAPIKey: "k", LLMModel: "m"}, false},
		{"valid section", Config{Text: "x", Section: "L01"}, false},
		{"invalid section", Config{Text: "x", Section: "L0!"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateConfig(tc.cfg)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateConfig(%+v) err = %v, wantErr %v", tc.cfg, err, tc.wantErr)
			}
		})
	}
}

func TestApplyFileConfigFlagsWin(t *testing.T) {
	cfg := Config{InputPath: "flag.pdf", Section: "L01"}
	var fc FileConfig
	fc.Input = "file.pdf"
	fc.Section = "L02"
	fc.Output = "out.json"
	fc.OCR.URL = "https://ocr.example.com"
	fc.LLM.Model = "gpt-4o-mini"
	fc.Verbose = true

	ApplyFileConfig(&cfg, fc)

	if cfg.InputPath != "flag.pdf" || cfg.Section != "L01" {
		t.Fatalf("file config overrode explicit flags: %+v", cfg)
	}
	if cfg.OutputPath != "out.json" || cfg.OCRURL != "https://ocr.example.com" || cfg.LLMModel != "gpt-4o-mini" {
		t.Fatalf("file config did not fill unset fields: %+v", cfg)
	}
	if !cfg.Verbose {
		t.Fatal("verbose not applied from file config")
	}
}

func TestLoadConfigFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "syllaparse.yaml")
	body := `input: syllabus.pdf
section: L02
ics: exams.ics
ocr:
  url: https://ocr.example.com
  key: secret
llm:
  base: http://localhost:8080/v1
  model: local-model
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if fc.Input != "syllabus.pdf" || fc.Section != "L02" || fc.ICS != "exams.ics" {
		t.Fatalf("unexpected top-level fields: %+v", fc)
	}
	if fc.OCR.URL != "https://ocr.example.com" || fc.OCR.Key != "secret" {
		t.Fatalf("unexpected ocr section: %+v", fc.OCR)
	}
	if fc.LLM.BaseURL != "http://localhost:8080/v1" || fc.LLM.Model != "local-model" {
		t.Fatalf("unexpected llm section: %+v", fc.LLM)
	}
}

func TestLoadConfigFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "syllaparse.json")
	body := `{"input": "syllabus.pdf", "course": "CHEM 101"}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if fc.Input != "syllabus.pdf" || fc.Course != "CHEM 101" {
		t.Fatalf("unexpected fields: %+v", fc)
	}
}
