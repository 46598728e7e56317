package ingest

import (
	"context"
	"fmt"

	"folioscan/internal/domain"
	"folioscan/internal/logger"
)

// Report is the outcome of one ingestion.
type Report struct {
	Results             []domain.ExtractionResult `json:"results"`
	Draft               domain.PortfolioDraft     `json:"draft"`
	Validation          domain.ValidationOutcome  `json:"validation"`
	SuccessCount        int                       `json:"success_count"`
	FailureCount        int                       `json:"failure_count"`
	ManualEntryRequired bool                      `json:"manual_entry_required"`
}

// Pipeline wires scheduling, merging and validation together.
type Pipeline struct {
	scheduler *Scheduler
	batchSize int
	log       *logger.Entry
}

// NewPipeline creates a Pipeline.
func NewPipeline(scheduler *Scheduler, batchSize int, log *logger.Log) (*Pipeline, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidBatchSize, batchSize)
	}
	if log == nil {
		log = logger.L()
	}
	return &Pipeline{
		scheduler: scheduler,
		batchSize: batchSize,
		log:       log.WithComponent("ingest.Pipeline"),
	}, nil
}

// BatchSize returns the configured chunk size.
func (p *Pipeline) BatchSize() int { return p.batchSize }

// Ingest extracts holdings from every image, merges them and validates the draft.
// When every image fails the draft is empty and ManualEntryRequired is set.
func (p *Pipeline) Ingest(ctx context.Context, session *Session, images []domain.ImageInput) (*Report, error) {
	if len(images) == 0 {
		return nil, domain.ErrNoImages
	}
	if session == nil {
		session = NewSession()
	}
	session.Begin(len(images))

	results, err := p.scheduler.Run(ctx, images, p.batchSize, session.Advance)
	if err != nil {
		return nil, fmt.Errorf("running batches: %w", err)
	}

	draft := Merge(results)
	session.Complete(results, draft)

	report := &Report{
		Results:    results,
		Draft:      draft,
		Validation: ValidateDraft(draft),
	}
	for _, r := range results {
		if r.Success {
			report.SuccessCount++
		} else {
			report.FailureCount++
		}
	}
	report.ManualEntryRequired = draft.Len() == 0

	p.log.WithFields(logger.Fields{
		"session": session.ID.String(),
		"images":  len(images),
		"success": report.SuccessCount,
		"failure": report.FailureCount,
		"tickers": draft.Len(),
		"verdict": report.Validation.Status,
	}).Info("ingestion finished")

	return report, nil
}
