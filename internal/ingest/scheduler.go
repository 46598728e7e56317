package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"folioscan/internal/domain"
	"folioscan/internal/logger"
)

// DefaultDelay is the pause inserted between consecutive chunks.
const DefaultDelay = 500 * time.Millisecond

// ProgressFunc is called after each chunk settles with the number of images processed so far.
type ProgressFunc func(done, total int)

// Scheduler runs extractions in sequential chunks with concurrent calls inside a chunk.
type Scheduler struct {
	client Extractor
	delay  time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
	log    *logger.Entry
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithDelay sets the inter-chunk delay. Negative values are treated as zero.
func WithDelay(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d < 0 {
			d = 0
		}
		s.delay = d
	}
}

// WithSleepFunc replaces the inter-chunk wait.
func WithSleepFunc(fn func(ctx context.Context, d time.Duration) error) SchedulerOption {
	return func(s *Scheduler) { s.sleep = fn }
}

// WithLogger sets the scheduler logger.
func WithLogger(l *logger.Log) SchedulerOption {
	return func(s *Scheduler) { s.log = l.WithComponent("ingest.Scheduler") }
}

// NewScheduler creates a Scheduler around client.
func NewScheduler(client Extractor, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		client: client,
		delay:  DefaultDelay,
		sleep:  sleepContext,
		log:    logger.L().WithComponent("ingest.Scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunBatches extracts every image and returns one result per image in input order.
func (s *Scheduler) RunBatches(ctx context.Context, images []domain.ImageInput, batchSize int) ([]domain.ExtractionResult, error) {
	return s.Run(ctx, images, batchSize, nil)
}

// Run is RunBatches with a progress callback.
// Cancellation is observed between chunks; images of chunks that never start are reported as failed.
func (s *Scheduler) Run(ctx context.Context, images []domain.ImageInput, batchSize int, progress ProgressFunc) ([]domain.ExtractionResult, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidBatchSize, batchSize)
	}

	results := make([]domain.ExtractionResult, len(images))
	chunks := Chunk(len(images), batchSize)

	for i, c := range chunks {
		if i > 0 && s.delay > 0 {
			if err := s.sleep(ctx, s.delay); err != nil {
				s.cancelFrom(results, images, c.Start, err)
				break
			}
		}
		if err := ctx.Err(); err != nil {
			s.cancelFrom(results, images, c.Start, err)
			break
		}

		s.runChunk(ctx, images, results, c)
		s.log.WithFields(logger.Fields{
			"chunk":  i + 1,
			"chunks": len(chunks),
			"size":   c.End - c.Start,
		}).Debug("chunk settled")

		if progress != nil {
			progress(c.End, len(images))
		}
	}

	return results, nil
}

func (s *Scheduler) runChunk(ctx context.Context, images []domain.ImageInput, results []domain.ExtractionResult, c Span) {
	var wg sync.WaitGroup
	for idx := c.Start; idx < c.End; idx++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					s.log.WithField("image", images[idx].Name).Errorf("extractor panicked: %v", rec)
					r := domain.FailedResult(idx, fmt.Sprintf("panic: %v", rec))
					r.Name = images[idx].Name
					results[idx] = r
				}
			}()
			r := s.client.Extract(ctx, images[idx])
			r.Index = idx
			r.Name = images[idx].Name
			if r.Holdings == nil {
				r.Holdings = []domain.Holding{}
			}
			results[idx] = r
		}(idx)
	}
	wg.Wait()
}

func (s *Scheduler) cancelFrom(results []domain.ExtractionResult, images []domain.ImageInput, start int, cause error) {
	s.log.WithError(cause).WithField("skipped", len(images)-start).Warn("run canceled between chunks")
	for idx := start; idx < len(images); idx++ {
		r := domain.FailedResult(idx, "canceled")
		r.Name = images[idx].Name
		results[idx] = r
	}
}

// Span is a half-open index range [Start, End).
type Span struct {
	Start int
	End   int
}

// Chunk splits n items into contiguous spans of at most size items.
func Chunk(n, size int) []Span {
	if n <= 0 || size < 1 {
		return nil
	}
	spans := make([]Span, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		spans = append(spans, Span{Start: start, End: end})
	}
	return spans
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
