package extract

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"invoiceqc/internal/ocr"
	"invoiceqc/pkg/models"
)

// MaxDocumentSizeBytes is the largest file ExtractFile accepts.
const MaxDocumentSizeBytes = ocr.MaxFileSizeBytes

// Service turns PDF files into invoice records.
type Service struct {
	provider  ocr.PageTextProvider
	extractor Extractor
	pages     *cache.Cache
	log       zerolog.Logger
}

// Failure records a document that could not be extracted.
type Failure struct {
	File string
	Err  error
}

// NewService creates an extraction service. Page text is cached by document
// content for an hour.
func NewService(provider ocr.PageTextProvider, extractor Extractor, log zerolog.Logger) *Service {
	return &Service{
		provider:  provider,
		extractor: extractor,
		pages:     cache.New(time.Hour, 10*time.Minute),
		log:       log,
	}
}

// ExtractFile extracts a single PDF. The invoice identifier is the file's base name.
func (s *Service) ExtractFile(ctx context.Context, path string) (models.Invoice, error) {
	const op = "ExtractFile"

	info, err := os.Stat(path)
	if err != nil {
		return models.Invoice{}, wrapExtractionError(op, path, err)
	}
	if info.Size() > MaxDocumentSizeBytes {
		return models.Invoice{}, wrapExtractionError(op, path,
			fmt.Errorf("%w: %d bytes", ErrDocumentTooLarge, info.Size()))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.Invoice{}, wrapExtractionError(op, path, err)
	}

	text, err := s.text(ctx, data)
	if err != nil {
		return models.Invoice{}, wrapExtractionError(op, path, err)
	}

	return s.extractor.Extract(filepath.Base(path), text), nil
}

// text returns the joined page text of data, consulting the cache first.
func (s *Service) text(ctx context.Context, data []byte) (string, error) {
	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])

	if cached, ok := s.pages.Get(key); ok {
		s.log.Debug().Str("sha256", key).Msg("Page text cache hit")
		return cached.(string), nil
	}

	pages, err := s.provider.PageTexts(ctx, bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	text := strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}

	s.pages.Set(key, text, cache.DefaultExpiration)
	return text, nil
}

type extractJob struct {
	Index int
	Path  string
}

type extractResult struct {
	invoice models.Invoice
	err     error
}

// ExtractDir extracts every PDF in dir with up to workers parallel workers.
// Invoices keep file name order. Documents that fail are returned as failures
// and do not stop the batch.
func (s *Service) ExtractDir(ctx context.Context, dir string, workers int) ([]models.Invoice, []Failure, error) {
	files, err := ListPDFs(dir)
	if err != nil {
		return nil, nil, wrapExtractionError("ExtractDir", dir, err)
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) && len(files) > 0 {
		workers = len(files)
	}

	s.log.Info().Int("files", len(files)).Int("workers", workers).Str("dir", dir).Msg("Extracting directory")

	jobs := make(chan extractJob, len(files))
	results := make([]extractResult, len(files))

	var processed int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for job := range jobs {
				if err := ctx.Err(); err != nil {
					results[job.Index] = extractResult{err: wrapExtractionError("ExtractFile", job.Path, err)}
					continue
				}

				inv, err := s.ExtractFile(ctx, job.Path)
				results[job.Index] = extractResult{invoice: inv, err: err}

				mu.Lock()
				processed++
				current := processed
				mu.Unlock()

				event := s.log.Debug()
				if err != nil {
					event = s.log.Warn().Err(err)
				}
				event.Int("worker", workerID).
					Str("file", filepath.Base(job.Path)).
					Int("progress", current).
					Int("total", len(files)).
					Msg("Document processed")
			}
		}(w)
	}

	for i, f := range files {
		jobs <- extractJob{Index: i, Path: f}
	}
	close(jobs)

	wg.Wait()

	invoices := make([]models.Invoice, 0, len(files))
	var failures []Failure
	for i, r := range results {
		if r.err != nil {
			failures = append(failures, Failure{File: files[i], Err: r.err})
			continue
		}
		invoices = append(invoices, r.invoice)
	}
	return invoices, failures, nil
}

// ListPDFs returns the *.pdf files directly inside dir, sorted by name.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
