package aggregate

// SplitChunks cuts s into contiguous, non-overlapping pieces of at most
// size bytes, covering s exactly; the final chunk may be shorter.
func SplitChunks(s string, size int) []string {
	if size <= 0 || s == "" {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	chunks := make([]string, 0, len(s)/size+1)
	for i := 0; i < len(s); i += size {
		end := i + size
		if end > len(s) {
			end = len(s)
		}
		chunks = append(chunks, s[i:end])
	}
	return chunks
}
