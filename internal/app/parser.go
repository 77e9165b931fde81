package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/examplan/syllaparse/internal/classify"
	"github.com/examplan/syllaparse/internal/normalize"
	"github.com/examplan/syllaparse/internal/recur"
	"github.com/examplan/syllaparse/internal/syllabus"
)

// Parser runs one document or text through the extraction pipeline. It holds
// no per-call state: concurrent parses are safe, each call carries its own
// candidates, section context, and semester window.
type Parser struct {
	Normalizer *normalize.Normalizer
	// Strategies are tried in order until one neither skips nor fails. The
	// deterministic heuristic tail is appended by NewParser and never skips.
	Strategies []syllabus.Strategy
	// Now anchors year inference for the whole call; zero uses the wall
	// clock, fixed per call so results are internally consistent.
	Now time.Time
}

// NewParser builds a parser with the given optional strategy heads (such as
// the AI strategy) in front of the built-in heuristic extractor.
func NewParser(n *normalize.Normalizer, heads ...syllabus.Strategy) *Parser {
	p := &Parser{Normalizer: n}
	p.Strategies = append(p.Strategies, heads...)
	p.Strategies = append(p.Strategies, &heuristicStrategy{parser: p})
	return p
}

// ParseText extracts exams from already-decoded syllabus text. Empty input is
// an error; an empty result is a valid outcome the caller must distinguish.
func (p *Parser) ParseText(ctx context.Context, text string, section string) ([]syllabus.Exam, error) {
	if strings.TrimSpace(text) == "" {
		return nil, syllabus.ErrEmptyInput
	}

	for _, s := range p.Strategies {
		exams, err := s.Extract(ctx, text, section)
		if errors.Is(err, syllabus.ErrSkip) {
			log.Debug().Str("strategy", s.Name()).Msg("strategy skipped")
			continue
		}
		if err != nil {
			return nil, err
		}
		result := syllabus.Dedup(exams)
		log.Info().Str("strategy", s.Name()).Int("exams", len(result)).Msg("extraction complete")
		return result, nil
	}
	// Unreachable: the heuristic tail never skips.
	return nil, errors.New("no extraction strategy available")
}

// ParseFile normalizes an uploaded file to text and extracts exams from it.
func (p *Parser) ParseFile(ctx context.Context, in normalize.Input, section string) ([]syllabus.Exam, error) {
	text, err := p.Normalizer.Text(ctx, in)
	if err != nil {
		return nil, err
	}
	return p.ParseText(ctx, text, section)
}

func (p *Parser) now() time.Time {
	if p.Now.IsZero() {
		return time.Now()
	}
	return p.Now
}

// heuristicStrategy is the guaranteed tail of the chain: keyword
// classification plus recurring-quiz synthesis. It never errors; finding
// nothing is a valid result.
type heuristicStrategy struct {
	parser *Parser
}

func (s *heuristicStrategy) Name() string { return "heuristic" }

func (s *heuristicStrategy) Extract(_ context.Context, text string, section string) ([]syllabus.Exam, error) {
	now := s.parser.now()

	classifier := classify.Classifier{Now: now}
	exams := classifier.Extract(text, section)

	synth := recur.Synthesizer{Now: now}
	exams = append(exams, synth.Synthesize(text, section)...)

	return exams, nil
}
