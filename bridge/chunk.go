package bridge

// SendLimit is the platform's maximum message length, in characters.
// Discord counts Unicode code points, so the split is rune-based.
const SendLimit = 2000

// Split cuts text into chunks of at most limit runes, preserving order
// and content exactly. Empty text yields no chunks.
func Split(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 {
		limit = SendLimit
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+limit-1)/limit)
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
