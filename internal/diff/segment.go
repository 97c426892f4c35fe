package diff

import (
	"regexp"
	"strings"

	"autocommit/internal/tokens"
)

// UnknownFile is the sentinel filename for a chunk whose segment carries no
// recognizable diff header. The chunk is still summarized; attribution is
// best-effort only.
const UnknownFile = "Unknown file"

// Chunk is one size-bounded slice of the raw diff attributed to a file.
type Chunk struct {
	Filename string
	Content  string
}

// headerRegex matches the "a/<path> b/<path>" convention of a git diff
// header. The first capture group is the a-side path.
var headerRegex = regexp.MustCompile(`a/(\S+) b/\S+`)

// Segment splits raw into chunks whose content is at most maxContentTokens
// tokens each. Splitting is purely size-driven, not diff-boundary-aware, so
// a segment may start or end mid-file. Each segment is attributed to the
// file named by its first "a/<path> b/<path>" header; all literal
// occurrences of that filename and the residual "a/ b/\n" artifact are
// stripped from the content to save tokens. Empty segments are discarded.
func Segment(raw string, maxContentTokens int) []Chunk {
	maxBytes := tokens.Bytes(maxContentTokens)
	if maxBytes <= 0 || raw == "" {
		return nil
	}
	var chunks []Chunk
	for start := 0; start < len(raw); start += maxBytes {
		end := start + maxBytes
		if end > len(raw) {
			end = len(raw)
		}
		segment := raw[start:end]
		filename := UnknownFile
		if m := headerRegex.FindStringSubmatch(segment); m != nil {
			filename = m[1]
			segment = strings.ReplaceAll(segment, filename, "")
			segment = strings.ReplaceAll(segment, "a/ b/\n", "")
		}
		if strings.TrimSpace(segment) == "" {
			continue
		}
		chunks = append(chunks, Chunk{Filename: filename, Content: segment})
	}
	return chunks
}
