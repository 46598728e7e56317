package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"folioscan/internal/config"
	"folioscan/internal/domain"
	"folioscan/internal/export"
	"folioscan/internal/ingest"
	"folioscan/internal/logger"
	"folioscan/internal/port"
)

// ImageFile is one uploaded screenshot as received by the transport layer.
type ImageFile struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// ExtractRequest is the DTO for a multi-image extraction.
type ExtractRequest struct {
	Broker string
	Files  []ImageFile
}

// ImageSummary describes the outcome of one screenshot.
type ImageSummary struct {
	Index         int    `json:"index"`
	Name          string `json:"name"`
	Success       bool   `json:"success"`
	HoldingsCount int    `json:"holdings_count"`
	Provider      string `json:"provider,omitempty"`
	Error         string `json:"error,omitempty"`
}

// ValidationView is a validation outcome as returned to clients.
type ValidationView struct {
	Status               domain.ValidationStatus `json:"status"`
	Reason               string                  `json:"reason,omitempty"`
	Total                float64                 `json:"total"`
	RequiresConfirmation bool                    `json:"requires_confirmation"`
}

// ExtractResponse is the result of an extraction run.
type ExtractResponse struct {
	RunID               uuid.UUID         `json:"run_id"`
	Broker              domain.BrokerType `json:"broker"`
	Draft               []domain.Holding  `json:"draft"`
	Results             []ImageSummary    `json:"results"`
	SuccessCount        int               `json:"success_count"`
	FailureCount        int               `json:"failure_count"`
	ManualEntryRequired bool              `json:"manual_entry_required"`
	Validation          ValidationView    `json:"validation"`
}

// RunView is a stored extraction run.
type RunView struct {
	ID           uuid.UUID         `json:"id"`
	Broker       domain.BrokerType `json:"broker"`
	ImageCount   int               `json:"image_count"`
	SuccessCount int               `json:"success_count"`
	FailureCount int               `json:"failure_count"`
	Draft        []domain.Holding  `json:"draft"`
	Results      []ImageSummary    `json:"results"`
	Validation   ValidationView    `json:"validation"`
	ImageURLs    []string          `json:"image_urls,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// PortfolioService defines the portfolio ingestion contract.
type PortfolioService interface {
	Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error)
	Validate(ctx context.Context, portfolio map[string]json.RawMessage) ValidationView
	GetRun(ctx context.Context, id uuid.UUID) (*RunView, error)
	ListRuns(ctx context.Context, offset, limit int) ([]RunView, int, error)
	Export(ctx context.Context, id uuid.UUID, format domain.ExportFormat, w io.Writer) error
}

type portfolioService struct {
	pipeline *ingest.Pipeline
	storage  port.ObjectStorage
	runs     port.ExtractionRunRepository
	cfg      *config.Config
	log      *logger.Entry
}

// NewPortfolioService creates a new PortfolioService.
// storage and runs may be nil: archiving and the run log are then disabled.
func NewPortfolioService(
	pipeline *ingest.Pipeline,
	storage port.ObjectStorage,
	runs port.ExtractionRunRepository,
	cfg *config.Config,
	log *logger.Log,
) PortfolioService {
	if log == nil {
		log = logger.L()
	}
	return &portfolioService{
		pipeline: pipeline,
		storage:  storage,
		runs:     runs,
		cfg:      cfg,
		log:      log.WithComponent("service.PortfolioService"),
	}
}

func (s *portfolioService) Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	if len(req.Files) == 0 {
		return nil, domain.ErrNoImages
	}
	if limit := s.cfg.Batch.MaxImages; limit > 0 && len(req.Files) > limit {
		return nil, domain.ErrTooManyImages
	}

	broker := domain.ParseBrokerType(req.Broker)
	images := make([]domain.ImageInput, 0, len(req.Files))
	for _, f := range req.Files {
		img, err := s.readImage(f, broker)
		if err != nil {
			s.log.WithField("file", f.Name).WithError(err).Warn("rejected upload")
			return nil, err
		}
		images = append(images, img)
	}

	session := ingest.NewSession()
	s.archive(ctx, session.ID, images)

	report, err := s.pipeline.Ingest(ctx, session, images)
	if err != nil {
		return nil, err
	}

	s.record(ctx, session.ID, broker, report)

	return &ExtractResponse{
		RunID:               session.ID,
		Broker:              broker,
		Draft:               report.Draft.Holdings,
		Results:             summarize(report.Results),
		SuccessCount:        report.SuccessCount,
		FailureCount:        report.FailureCount,
		ManualEntryRequired: report.ManualEntryRequired,
		Validation:          toView(report.Validation),
	}, nil
}

// readImage enforces the size limit and sniffs the content type from the first bytes.
func (s *portfolioService) readImage(f ImageFile, broker domain.BrokerType) (domain.ImageInput, error) {
	maxBytes := s.cfg.Batch.MaxImageBytes()
	if maxBytes > 0 && f.Size > maxBytes {
		return domain.ImageInput{}, domain.ErrFileTooLarge
	}

	var r io.Reader = f.Reader
	if maxBytes > 0 {
		r = io.LimitReader(f.Reader, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.ImageInput{}, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return domain.ImageInput{}, domain.ErrFileTooLarge
	}

	sniffed := http.DetectContentType(data)
	if _, ok := domain.AllowedContentTypes[sniffed]; !ok {
		return domain.ImageInput{}, domain.ErrUnsupportedFileType
	}

	return domain.ImageInput{
		Name:        filepath.Base(f.Name),
		Data:        data,
		ContentType: sniffed,
		Broker:      broker,
	}, nil
}

// archive stores every image under runs/<run_id>/. Failures are logged only.
func (s *portfolioService) archive(ctx context.Context, runID uuid.UUID, images []domain.ImageInput) {
	if s.storage == nil || !s.cfg.Archive.Enabled {
		return
	}
	for i, img := range images {
		key := ArchiveKey(runID, i, img.Name)
		_, err := s.storage.Upload(ctx, port.UploadInput{
			Bucket:      s.cfg.S3.Bucket,
			Key:         key,
			Body:        bytes.NewReader(img.Data),
			ContentType: img.ContentType,
			Size:        int64(len(img.Data)),
		})
		if err != nil {
			s.log.WithField("key", key).WithError(err).Warn("archiving screenshot failed")
		}
	}
}

// record writes the run log entry. Failures are logged only.
func (s *portfolioService) record(ctx context.Context, runID uuid.UUID, broker domain.BrokerType, report *ingest.Report) {
	if s.runs == nil {
		return
	}
	draft, err := json.Marshal(report.Draft)
	if err != nil {
		s.log.WithError(err).Error("encoding draft")
		return
	}
	results, err := json.Marshal(report.Results)
	if err != nil {
		s.log.WithError(err).Error("encoding results")
		return
	}

	run := &domain.ExtractionRun{
		ID:           runID,
		Broker:       broker,
		ImageCount:   len(report.Results),
		SuccessCount: report.SuccessCount,
		FailureCount: report.FailureCount,
		Draft:        draft,
		Results:      results,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		s.log.WithField("run_id", runID.String()).WithError(err).Warn("recording extraction run failed")
	}
}

func (s *portfolioService) Validate(_ context.Context, portfolio map[string]json.RawMessage) ValidationView {
	return toView(ingest.Validate(ParsePortfolio(portfolio)))
}

// ParsePortfolio converts a ticker→weight map into entries sorted by ticker.
// Weights may be JSON numbers or numeric strings; anything else becomes NaN.
func ParsePortfolio(portfolio map[string]json.RawMessage) []domain.Holding {
	tickers := make([]string, 0, len(portfolio))
	for t := range portfolio {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	entries := make([]domain.Holding, 0, len(tickers))
	for _, t := range tickers {
		entries = append(entries, domain.Holding{Ticker: t, Weight: parseWeightValue(portfolio[t])})
	}
	return entries
}

func parseWeightValue(raw json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func (s *portfolioService) GetRun(ctx context.Context, id uuid.UUID) (*RunView, error) {
	if s.runs == nil {
		return nil, domain.ErrRunNotFound
	}
	run, err := s.runs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view, err := toRunView(run)
	if err != nil {
		return nil, err
	}
	view.ImageURLs = s.presign(ctx, run.ID, view.Results)
	return view, nil
}

func (s *portfolioService) ListRuns(ctx context.Context, offset, limit int) ([]RunView, int, error) {
	if s.runs == nil {
		return []RunView{}, 0, nil
	}
	runs, total, err := s.runs.ListRecent(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	views := make([]RunView, 0, len(runs))
	for i := range runs {
		v, err := toRunView(&runs[i])
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *v)
	}
	return views, total, nil
}

func (s *portfolioService) Export(ctx context.Context, id uuid.UUID, format domain.ExportFormat, w io.Writer) error {
	if s.runs == nil {
		return domain.ErrRunNotFound
	}
	run, err := s.runs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	draft, results, err := decodeRun(run)
	if err != nil {
		return err
	}
	return export.Write(w, format, draft, results)
}

func (s *portfolioService) presign(ctx context.Context, runID uuid.UUID, results []ImageSummary) []string {
	if s.storage == nil || !s.cfg.Archive.Enabled {
		return nil
	}
	urls := make([]string, 0, len(results))
	for _, r := range results {
		url, err := s.storage.GetPresignedURL(ctx, s.cfg.S3.Bucket, ArchiveKey(runID, r.Index, r.Name), s.cfg.S3.PresignExpiry)
		if err != nil {
			s.log.WithError(err).Warn("presigning archived screenshot failed")
			return nil
		}
		urls = append(urls, url)
	}
	return urls
}

// ArchiveKey returns the object key of an archived screenshot.
func ArchiveKey(runID uuid.UUID, index int, name string) string {
	return fmt.Sprintf("runs/%s/%d-%s", runID, index, name)
}

func decodeRun(run *domain.ExtractionRun) (domain.PortfolioDraft, []domain.ExtractionResult, error) {
	var draft domain.PortfolioDraft
	if len(run.Draft) > 0 {
		if err := json.Unmarshal(run.Draft, &draft); err != nil {
			return draft, nil, fmt.Errorf("decoding draft of run %s: %w", run.ID, err)
		}
	}
	var results []domain.ExtractionResult
	if len(run.Results) > 0 {
		if err := json.Unmarshal(run.Results, &results); err != nil {
			return draft, nil, fmt.Errorf("decoding results of run %s: %w", run.ID, err)
		}
	}
	if draft.Holdings == nil {
		draft.Holdings = []domain.Holding{}
	}
	return draft, results, nil
}

func toRunView(run *domain.ExtractionRun) (*RunView, error) {
	draft, results, err := decodeRun(run)
	if err != nil {
		return nil, err
	}
	return &RunView{
		ID:           run.ID,
		Broker:       run.Broker,
		ImageCount:   run.ImageCount,
		SuccessCount: run.SuccessCount,
		FailureCount: run.FailureCount,
		Draft:        draft.Holdings,
		Results:      summarize(results),
		Validation:   toView(ingest.ValidateDraft(draft)),
		CreatedAt:    run.CreatedAt,
	}, nil
}

func summarize(results []domain.ExtractionResult) []ImageSummary {
	out := make([]ImageSummary, len(results))
	for i, r := range results {
		out[i] = ImageSummary{
			Index:         r.Index,
			Name:          r.Name,
			Success:       r.Success,
			HoldingsCount: len(r.Holdings),
			Provider:      r.Provider,
			Error:         r.Error,
		}
	}
	return out
}

func toView(o domain.ValidationOutcome) ValidationView {
	return ValidationView{
		Status:               o.Status,
		Reason:               o.Reason,
		Total:                o.Total,
		RequiresConfirmation: o.RequiresConfirmation(),
	}
}
