package contract

import "legal-analyzer-be/pkg/rag/index"

// DocumentChunkRepository persists embedded chunks for the pgvector index backend.
type DocumentChunkRepository interface {
	index.ChunkStore
}
