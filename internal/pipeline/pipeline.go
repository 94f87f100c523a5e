// Package pipeline runs a full comparison: both statements are converted
// concurrently, validated and compared, then the outcome is narrated,
// stored and announced.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"fjacquet/statement-compare/internal/comparison"
	"fjacquet/statement-compare/internal/converterapi"
	"fjacquet/statement-compare/internal/events"
	"fjacquet/statement-compare/internal/history"
	"fjacquet/statement-compare/internal/logging"
	"fjacquet/statement-compare/internal/models"
	"fjacquet/statement-compare/internal/narrator"
	"fjacquet/statement-compare/internal/parsererror"
	"fjacquet/statement-compare/internal/statement"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Input is one statement to compare. Response wins over Reader when both are set.
type Input struct {
	Filename string
	Response *statement.APIResponse
	Reader   io.Reader
}

// Request describes one comparison run.
type Request struct {
	Statement1 Input
	Statement2 Input
	Options    *comparison.Options
	Narrate    bool
	// SkipHistory disables both the history record and the completion event.
	SkipHistory bool
}

// Outcome is the result of a run. Saved is false when history was skipped or
// the save failed.
type Outcome struct {
	ID         string                     `json:"id"`
	Result     *models.ComparisonResult   `json:"result"`
	Insights   *models.ComparisonInsights `json:"insights"`
	Narrative  string                     `json:"narrative,omitempty"`
	Saved      bool                       `json:"saved"`
	Statement1 statement.ValidationResult `json:"statement1Validation"`
	Statement2 statement.ValidationResult `json:"statement2Validation"`
}

// Dependencies wires a Pipeline. Converter and Processor are required; the
// rest are optional.
type Dependencies struct {
	Converter converterapi.Converter
	Processor *statement.Processor
	History   history.Repository
	Publisher events.Publisher
	Narrator  narrator.Narrator
	Logger    logging.Logger
}

// Pipeline runs comparisons.
type Pipeline struct {
	converter converterapi.Converter
	processor *statement.Processor
	history   history.Repository
	publisher events.Publisher
	narrator  narrator.Narrator
	logger    logging.Logger
}

// New builds a Pipeline.
func New(deps Dependencies) (*Pipeline, error) {
	if deps.Processor == nil {
		return nil, fmt.Errorf("pipeline: statement processor is required")
	}
	if deps.Converter == nil {
		deps.Converter = converterapi.NewDispatcher(nil)
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	return &Pipeline{
		converter: deps.Converter,
		processor: deps.Processor,
		history:   deps.History,
		publisher: deps.Publisher,
		narrator:  deps.Narrator,
		logger:    logging.OrDefault(deps.Logger).WithField(logging.FieldComponent, "pipeline"),
	}, nil
}

// CanNarrate reports whether a narrator is configured.
func (p *Pipeline) CanNarrate() bool {
	return p.narrator != nil
}

// Run executes req. Conversion, validation and comparison failures are
// returned; narration, history and event failures are logged only.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Outcome, error) {
	start := time.Now()

	var parsed [2]*models.ParsedStatement
	g, gctx := errgroup.WithContext(ctx)
	for i, in := range []Input{req.Statement1, req.Statement2} {
		g.Go(func() error {
			stmt, err := p.parse(gctx, in)
			if err != nil {
				return err
			}
			parsed[i] = stmt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Outcome{
		ID:         uuid.NewString(),
		Statement1: statement.ValidateParsedStatement(parsed[0]),
		Statement2: statement.ValidateParsedStatement(parsed[1]),
	}
	if err := invalid(req.Statement1.Filename, out.Statement1); err != nil {
		return nil, err
	}
	if err := invalid(req.Statement2.Filename, out.Statement2); err != nil {
		return nil, err
	}

	result, err := comparison.CompareStatements(parsed[0], parsed[1], req.Options)
	if err != nil {
		return nil, err
	}
	insights := comparison.GenerateInsights(result)
	out.Result = result
	out.Insights = &insights

	logger := p.logger.WithField(logging.FieldComparisonID, out.ID)

	if req.Narrate && p.narrator != nil {
		text, err := p.narrator.Narrate(ctx, result, &insights)
		if err != nil {
			logger.WithError(err).Warn("Narrative generation failed")
		} else {
			out.Narrative = text
		}
	}

	if !req.SkipHistory {
		p.persist(ctx, logger, req, out)
	}

	logger.Info("Comparison completed",
		logging.F(logging.FieldCount, len(result.Comparison)),
		logging.F(logging.FieldDuration, time.Since(start).String()))
	return out, nil
}

func (p *Pipeline) parse(ctx context.Context, in Input) (*models.ParsedStatement, error) {
	resp := in.Response
	if resp == nil {
		if in.Reader == nil {
			return nil, &parsererror.ValidationError{FilePath: in.Filename, Reason: "statement input is required", Err: parsererror.ErrStatementRequired}
		}
		var err error
		if resp, err = p.converter.Convert(ctx, in.Filename, in.Reader); err != nil {
			return nil, err
		}
	}
	return p.processor.ConvertToInternalFormat(resp, in.Filename)
}

func invalid(filename string, v statement.ValidationResult) error {
	if v.IsValid {
		return nil
	}
	return &parsererror.ValidationError{FilePath: filename, Reason: strings.Join(v.Errors, "; ")}
}

func (p *Pipeline) persist(ctx context.Context, logger logging.Logger, req Request, out *Outcome) {
	if p.history != nil {
		_, err := p.history.SaveComparison(ctx, &history.Comparison{
			ID:             out.ID,
			Statement1Name: req.Statement1.Filename,
			Statement2Name: req.Statement2.Filename,
			Narrative:      out.Narrative,
			Result:         out.Result,
			Insights:       out.Insights,
		})
		if err != nil {
			logger.WithError(err).Warn("Failed to save comparison history")
		} else {
			out.Saved = true
		}
	}

	msg := events.NewComparisonCompletedMessage(out.ID, req.Statement1.Filename, req.Statement2.Filename, out.Result, out.Insights)
	if err := p.publisher.PublishComparisonCompleted(ctx, msg); err != nil {
		logger.WithError(err).Warn("Failed to publish comparison event")
	}
}
