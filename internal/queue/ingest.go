package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"meridian/internal/util"
	"meridian/pkg/ai"
	"meridian/pkg/chunker"
	"meridian/pkg/extract"
	"meridian/pkg/knowledge"
	"meridian/pkg/leaselock"
	"meridian/pkg/loader"
	"meridian/pkg/loader/csv"
	"meridian/pkg/loader/doc"
	"meridian/pkg/loader/excel"
	"meridian/pkg/loader/pdf"
	"meridian/pkg/loader/pptx"
	loaders3 "meridian/pkg/loader/s3"
	"meridian/pkg/logger"
	"meridian/pkg/store"
	storepgx "meridian/pkg/store/pgx"
	vectorpgx "meridian/pkg/vector/pgx"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
)

func newRegistry(source loader.FileSource) *loader.Registry {
	registry := loader.NewRegistry()
	registry.Register(loader.DocumentTypeText, loader.PlainTextExtractor{})
	registry.Register(loader.DocumentTypePDF, pdf.NewExtractor(source))
	registry.Register(loader.DocumentTypeDocx, doc.NewExtractor(source))
	registry.Register(loader.DocumentTypePPTX, pptx.NewExtractor(source))
	registry.Register(loader.DocumentTypeCSV, csv.NewExtractor(source))
	registry.Register(loader.DocumentTypeExcel, excel.NewExtractor(source))
	return registry
}

// ProcessIngestMessage runs the full ingest pipeline for one document: text
// extraction, chunking, vector indexing, then per-chunk knowledge
// extraction into the graph. A lease lock serializes ingestion per document
// across workers.
func ProcessIngestMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	aiClient ai.GenerationClient,
	conn *pgxpool.Pool,
	body string,
) error {
	var msg IngestDocumentMsg
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return fmt.Errorf("invalid ingest message: %w", err)
	}
	if msg.DocumentID == "" || msg.FileKey == "" {
		return fmt.Errorf("ingest message missing document_id or file_key")
	}

	locks := leaselock.New(conn)
	return locks.WithLease(ctx, "ingest:"+msg.DocumentID, leaselock.Options{
		TTL:         15 * time.Minute,
		Wait:        true,
		WaitJitter:  500 * time.Millisecond,
		TokenPrefix: "worker_",
	}, func(ctx context.Context) error {
		return ingestDocument(ctx, s3Client, aiClient, conn, msg)
	})
}

func ingestDocument(
	ctx context.Context,
	s3Client *awss3.Client,
	aiClient ai.GenerationClient,
	conn *pgxpool.Pool,
	msg IngestDocumentMsg,
) error {
	docType, err := loader.DetectType(msg.FileName)
	if err != nil {
		return err
	}

	source := loaders3.NewFileSourceWithClient(util.GetEnv("AWS_BUCKET"), s3Client)
	registry := newRegistry(source)

	file := loader.DocumentFile{
		ID:       msg.DocumentID,
		FilePath: msg.FileKey,
		Type:     docType,
		Source:   source,
	}
	text, err := registry.ExtractText(ctx, file)
	if err != nil {
		return fmt.Errorf("text extraction failed: %w", err)
	}

	chunks := chunker.New(chunker.Options{}).Split(msg.DocumentID, string(text))
	logger.Info("[Ingest] Document chunked", "document_id", msg.DocumentID, "chunks", len(chunks))

	for i := range chunks {
		chunks[i].Metadata = map[string]string{"file_name": msg.FileName}
	}

	index := vectorpgx.NewVectorIndex(conn, aiClient)
	// Re-ingesting replaces the previous version of the document.
	if err := index.DeleteDocument(ctx, msg.DocumentID); err != nil {
		return err
	}
	if err := index.IndexChunks(ctx, chunks); err != nil {
		return fmt.Errorf("vector indexing failed: %w", err)
	}

	graph := storepgx.NewGraphDBStore(conn)
	if err := graph.DeleteDocument(ctx, msg.DocumentID); err != nil {
		return err
	}

	extractor := extract.NewExtractor(aiClient)
	var totalEntities, totalRelationships int
	for _, chunk := range chunks {
		var entities []knowledge.Entity
		var relationships []knowledge.Relationship
		err := util.RetryErrWithContext(ctx, 3, func(ctx context.Context) error {
			var err error
			entities, relationships, err = extractor.Extract(ctx, chunk.Content, msg.DocumentID)
			return err
		})
		if err != nil {
			return err
		}
		stored, err := upsertExtraction(ctx, graph, entities, relationships)
		if err != nil {
			return err
		}
		totalEntities += len(entities)
		totalRelationships += stored
	}

	logger.Info("[Ingest] Document processed",
		"document_id", msg.DocumentID,
		"entities", totalEntities,
		"relationships", totalRelationships)
	return nil
}

// upsertExtraction writes extracted entities first, then relationships with
// endpoint IDs remapped to the stored entities. Relationships whose
// endpoints went missing between extraction and storage are skipped.
func upsertExtraction(
	ctx context.Context,
	graph store.GraphStore,
	entities []knowledge.Entity,
	relationships []knowledge.Relationship,
) (int, error) {
	idMap := make(map[string]string, len(entities))
	for _, entity := range entities {
		stored, err := graph.UpsertEntity(ctx, entity)
		if err != nil {
			return 0, fmt.Errorf("failed to store entity %q: %w", entity.Name, err)
		}
		idMap[entity.ID] = stored.ID
	}

	stored := 0
	for _, rel := range relationships {
		sourceID, okS := idMap[rel.SourceEntityID]
		targetID, okT := idMap[rel.TargetEntityID]
		if !okS || !okT {
			logger.Warn("[Ingest] Skipping relationship with unknown endpoint",
				"source", rel.SourceEntityID, "target", rel.TargetEntityID)
			continue
		}
		rel.SourceEntityID = sourceID
		rel.TargetEntityID = targetID
		if _, err := graph.UpsertRelationship(ctx, rel); err != nil {
			return stored, fmt.Errorf("failed to store relationship: %w", err)
		}
		stored++
	}
	return stored, nil
}
