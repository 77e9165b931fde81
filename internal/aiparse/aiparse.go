// Package aiparse extracts exams by asking a chat model for a strict JSON
// payload. It is an optional head of the strategy chain: any failure yields
// ErrSkip so the deterministic heuristics still run.
package aiparse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/examplan/syllaparse/internal/llm"
	"github.com/examplan/syllaparse/internal/syllabus"
)

const maxInputChars = 50000

const systemMessage = "You are a helpful assistant that extracts exam dates from university syllabi. Always respond with a strict JSON object {\"exams\": [...]} and no narration."

// Strategy calls an OpenAI-compatible endpoint to extract exams.
type Strategy struct {
	Client llm.Client
	Model  string
}

func (s *Strategy) Name() string { return "ai" }

// Extract asks the model for exams in JSON form. Misconfiguration, transport
// errors, and malformed payloads all return a wrapped ErrSkip: the heuristic
// tail of the chain is the authoritative fallback.
func (s *Strategy) Extract(ctx context.Context, text string, section string) ([]syllabus.Exam, error) {
	if s.Client == nil || s.Model == "" {
		return nil, fmt.Errorf("%w: ai parser not configured", syllabus.ErrSkip)
	}
	if len(text) > maxInputChars {
		text = text[:maxInputChars]
	}

	resp, err := s.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(text, section)},
		},
		Temperature: 0.1,
		N:           1,
	})
	if err != nil {
		log.Debug().Err(err).Msg("ai extraction call failed, falling through")
		return nil, fmt.Errorf("%w: %v", syllabus.ErrSkip, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", syllabus.ErrSkip)
	}

	exams, err := decodeExams(strings.TrimSpace(resp.Choices[0].Message.Content))
	if err != nil {
		log.Debug().Err(err).Msg("ai payload rejected, falling through")
		return nil, fmt.Errorf("%w: %v", syllabus.ErrSkip, err)
	}
	return exams, nil
}

func buildPrompt(text string, section string) string {
	var sb strings.Builder
	sb.WriteString("Extract ALL exam, test, quiz, midterm, project, presentation, and final exam dates from the following course syllabus.\n\n")
	if strings.TrimSpace(section) != "" {
		sb.WriteString("The student is in section: ")
		sb.WriteString(section)
		sb.WriteString(". Only extract dates that belong to this section; ignore other sections entirely.\n\n")
	}
	sb.WriteString(`For each assessment provide:
- title: a brief descriptive title
- date: YYYY-MM-DD
- type: one of exam, midterm, test, quiz, project, presentation, final
- notes: relevant context such as section, day, time, and location

If the syllabus describes weekly or recurring quizzes, list every individual
occurrence with a numbered title, skipping weeks with breaks or holidays.
Return {"exams": []} when nothing is found.

SYLLABUS TEXT:
`)
	sb.WriteString(text)
	return sb.String()
}

var reISODate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// decodeExams accepts either a bare array or an {"exams": [...]} object and
// keeps only entries with a valid type and fully resolved date.
func decodeExams(raw string) ([]syllabus.Exam, error) {
	if raw == "" {
		return nil, errors.New("empty response")
	}
	var wrapper struct {
		Exams []syllabus.Exam `json:"exams"`
	}
	var parsed []syllabus.Exam
	if err := json.Unmarshal([]byte(raw), &wrapper); err == nil && wrapper.Exams != nil {
		parsed = wrapper.Exams
	} else if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse exams json: %w", err)
	}

	out := make([]syllabus.Exam, 0, len(parsed))
	for _, e := range parsed {
		e.Type = syllabus.Type(strings.ToLower(string(e.Type)))
		if e.Title == "" || !syllabus.ValidType(e.Type) || !reISODate.MatchString(e.Date) {
			continue
		}
		if len(e.Title) > 200 {
			e.Title = e.Title[:200]
		}
		if len(e.Notes) > 300 {
			e.Notes = e.Notes[:300]
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, errors.New("no usable exams in response")
	}
	return out, nil
}
