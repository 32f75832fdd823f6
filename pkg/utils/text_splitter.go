package utils

// SplitText splits a long string into chunks of 'chunkSize' runes.
// Consecutive chunks start chunkSize-overlap runes apart, so each chunk
// repeats the last 'overlap' runes of the previous one.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	totalLen := len(runes)
	if totalLen == 0 {
		return nil
	}
	if chunkSize <= 0 || totalLen <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if overlap < 0 || step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	var chunks []string
	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}
