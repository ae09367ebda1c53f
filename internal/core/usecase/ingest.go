package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pyrolyze/chartrack/internal/core/domain"
	"github.com/pyrolyze/chartrack/internal/core/ports"
)

type IngestUploadUseCase struct {
	registry   *domain.SiteRegistry
	decoder    ports.UploadDecoder
	normalizer ports.RowNormalizer
	buckets    ports.BucketStore
	storage    ports.ObjectStorage
	queue      ports.MessageQueue
}

func NewIngestUploadUseCase(
	registry *domain.SiteRegistry,
	decoder ports.UploadDecoder,
	normalizer ports.RowNormalizer,
	buckets ports.BucketStore,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestUploadUseCase {
	return &IngestUploadUseCase{
		registry:   registry,
		decoder:    decoder,
		normalizer: normalizer,
		buckets:    buckets,
		storage:    storage,
		queue:      queue,
	}
}

// Upload ingests one sensor export: resolve the site from the filename,
// archive the raw file, decode and normalize the rows, and append the day
// buckets. A successful upload publishes an upload-processed event so the
// worker runs a backfill pass; the event is a convenience trigger, so a
// publish failure is logged but does not fail the upload.
func (uc *IngestUploadUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.UploadReport, error) {
	site, ok := uc.registry.ResolveUploadSite(filename)
	if !ok {
		return nil, domain.WrapError(domain.ErrUnknownSite, "resolve upload site",
			fmt.Errorf("no known site token in filename %q", filename))
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read upload body", fmt.Errorf("empty upload"))
	}

	uploadID := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", uploadID, sanitizeFilename(filename))
	if err := uc.storage.Save(ctx, storageKey, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("archive raw upload: %w", err)
	}

	rawRows, err := uc.decoder.Decode(filename, bytes.NewReader(raw))
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "decode upload", err)
	}

	normalized := make([]domain.NormalizedRow, 0, len(rawRows))
	for _, rawRow := range rawRows {
		normalized = append(normalized, uc.normalizer.Normalize(rawRow))
	}

	buckets, stats := BuildBuckets(site, normalized)

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	valuesAdded := 0
	for _, day := range days {
		values := buckets[day]
		if err := uc.buckets.AppendValues(ctx, site.Key, day, values); err != nil {
			return nil, fmt.Errorf("append bucket %s/%s: %w", site.Key, day, err)
		}
		valuesAdded += len(values)
	}

	if err := uc.queue.PublishUploadProcessed(ctx, uploadID); err != nil {
		slog.Warn("publish_upload_event_failed", "upload_id", uploadID, "error", err)
	}

	return &domain.UploadReport{
		UploadID:    uploadID,
		Filename:    filename,
		Site:        site.Key,
		StorageKey:  storageKey,
		RowsTotal:   len(rawRows),
		RowsDropped: stats.RowsDropped(),
		ValuesAdded: valuesAdded,
		Days:        days,
		ReceivedAt:  time.Now().UTC(),
	}, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "export.bin"
	}
	return base
}
