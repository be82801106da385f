package storage

// ChunkRows splits rows into consecutive windows of at most size rows. The
// windows share rows' backing array. Backends use it to bound the rows sent
// per bulk-insert call inside one table transaction.
func ChunkRows(rows [][]any, size int) [][][]any {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if len(rows) == 0 {
		return nil
	}
	chunks := make([][][]any, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}
