package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"quillpdf/internal/model"
	"quillpdf/internal/pkg/pdfextract"
	"quillpdf/internal/vector"
)

const (
	defaultChunkSize    = 512
	defaultChunkOverlap = 64
	embeddingBatchSize  = 10 // embedding APIs often limit batch size
)

// PageExtractor turns raw document bytes into per-page text.
type PageExtractor func(raw []byte) ([]pdfextract.Page, error)

type IngestService struct {
	files       FileStore
	objects     ObjectStore
	extract     PageExtractor
	embedder    Embedder
	index       vector.Index
	statusCache StatusCache
}

func NewIngestService(
	files FileStore,
	objects ObjectStore,
	extract PageExtractor,
	embedder Embedder,
	index vector.Index,
	statusCache StatusCache,
) *IngestService {
	if extract == nil {
		extract = pdfextract.ExtractPages
	}
	return &IngestService{
		files:       files,
		objects:     objects,
		extract:     extract,
		embedder:    embedder,
		index:       index,
		statusCache: statusCache,
	}
}

// Run executes the ingestion pipeline for a queued job: fetch the
// object, extract per-page text, embed, and populate the file's vector
// namespace. Pipeline failures terminate in status FAILED rather than
// propagating; the returned error is for the worker's log only.
func (s *IngestService) Run(ctx context.Context, job IngestJob) error {
	file, err := s.files.GetByID(job.FileID)
	if err != nil {
		return err
	}
	if file == nil {
		return fmt.Errorf("ingest job references unknown file %s", job.FileID)
	}

	if err := s.setStatus(ctx, file.ID, model.UploadStatusProcessing); err != nil {
		return err
	}

	if err := s.ingest(ctx, file); err != nil {
		s.fail(ctx, file.ID)
		return fmt.Errorf("ingest file %s failed: %w", file.ID, err)
	}

	return s.setStatus(ctx, file.ID, model.UploadStatusSuccess)
}

func (s *IngestService) ingest(ctx context.Context, file *model.File) error {
	raw, err := s.objects.Fetch(ctx, file.Key)
	if err != nil {
		return err
	}

	pages, err := s.extract(raw)
	if err != nil {
		return err
	}

	var items []vector.Item
	for _, page := range pages {
		for _, chunk := range chunkText(page.Text, defaultChunkSize, defaultChunkOverlap) {
			// a chunk window can land on pure whitespace (e.g. a short
			// tail of trailing newlines); there is nothing to embed
			if strings.TrimSpace(chunk) == "" {
				continue
			}
			items = append(items, vector.Item{Page: page.Number, Content: chunk})
		}
	}
	if len(items) == 0 {
		return nil
	}

	for i := 0; i < len(items); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[i:end]

		texts := make([]string, len(batch))
		for j := range batch {
			texts[j] = batch[j].Content
		}
		embeddings, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return err
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("embedding count mismatch: got %d for %d chunks", len(embeddings), len(batch))
		}
		for j := range batch {
			batch[j].Embedding = embeddings[j]
		}
	}

	return s.index.Upsert(ctx, file.ID, items)
}

// fail clears any partially written namespace before marking the file
// FAILED, so a FAILED file never leaves orphaned vectors behind.
func (s *IngestService) fail(ctx context.Context, fileID string) {
	if err := s.index.DeleteNamespace(ctx, fileID); err != nil {
		log.Printf("cleanup namespace %s failed: %v", fileID, err)
	}
	if err := s.setStatus(ctx, fileID, model.UploadStatusFailed); err != nil {
		log.Printf("mark file %s failed errored: %v", fileID, err)
	}
}

func (s *IngestService) setStatus(ctx context.Context, fileID string, status model.UploadStatus) error {
	if err := s.files.UpdateStatus(fileID, status); err != nil {
		return err
	}
	if s.statusCache != nil {
		_ = s.statusCache.SetStatus(ctx, fileID, status)
	}
	return nil
}

// chunkText splits text into overlapping chunks by rune count.
func chunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap >= size {
		overlap = size / 2
	}
	var chunks []string
	runes := []rune(text)
	for i := 0; i < len(runes); {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		i += size - overlap
		if i >= len(runes) {
			break
		}
	}
	return chunks
}
