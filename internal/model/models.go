package model

// Migratable lists every table the service owns, in creation order.
func Migratable() []interface{} {
	return []interface{}{
		&AnalysisRecord{},
		&DocumentChunk{},
	}
}
