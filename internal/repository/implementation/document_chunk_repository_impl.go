package implementation

import (
	"context"
	"fmt"

	"legal-analyzer-be/internal/model"
	"legal-analyzer-be/internal/repository/contract"
	"legal-analyzer-be/pkg/rag/index"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentChunkRepositoryImpl struct {
	db *gorm.DB
}

func NewDocumentChunkRepository(db *gorm.DB) contract.DocumentChunkRepository {
	return &DocumentChunkRepositoryImpl{db: db}
}

// ReplaceChunks swaps every chunk stored under key in one transaction.
func (r *DocumentChunkRepositoryImpl) ReplaceChunks(ctx context.Context, key string, chunks []string, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%d chunks but %d vectors", len(chunks), len(vectors))
	}
	rows := make([]*model.DocumentChunk, len(chunks))
	for i, c := range chunks {
		rows[i] = &model.DocumentChunk{
			IndexKey:       key,
			ChunkIndex:     i,
			Content:        c,
			EmbeddingValue: pgvector.NewVector(vectors[i]),
		}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("index_key = ?", key).Delete(&model.DocumentChunk{}).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(rows, 100).Error
	})
}

func (r *DocumentChunkRepositoryImpl) SearchChunks(ctx context.Context, key string, query []float32, k int) ([]index.Match, error) {
	if k <= 0 {
		return nil, nil
	}
	type result struct {
		ChunkIndex int
		Content    string
		Similarity float64
	}
	var results []result

	// <=> is cosine distance, so similarity is 1 - distance.
	queryVector := pgvector.NewVector(query)
	err := r.db.WithContext(ctx).
		Table("document_chunks").
		Select("chunk_index, content, 1 - (embedding_value <=> ?) AS similarity", queryVector).
		Where("index_key = ?", key).
		Order(gorm.Expr("embedding_value <=> ?", queryVector)).
		Order("chunk_index").
		Limit(k).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	matches := make([]index.Match, len(results))
	for i, res := range results {
		matches[i] = index.Match{ChunkIndex: res.ChunkIndex, Text: res.Content, Score: float32(res.Similarity)}
	}
	return matches, nil
}

func (r *DocumentChunkRepositoryImpl) CountChunks(ctx context.Context, key string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DocumentChunk{}).Where("index_key = ?", key).Count(&count).Error
	return int(count), err
}

func (r *DocumentChunkRepositoryImpl) DeleteChunks(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("index_key = ?", key).Delete(&model.DocumentChunk{}).Error
}
