package chunker

import (
	"strings"
	"unicode"
)

// Splitter splits text with a fixed configuration.
type Splitter struct {
	cfg Config
}

// NewSplitter validates cfg and returns a Splitter.
func NewSplitter(cfg Config) (*Splitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Splitter{cfg: cfg}, nil
}

// Config returns the splitter configuration.
func (s *Splitter) Config() Config {
	return s.cfg
}

// Split splits text using the splitter configuration.
func (s *Splitter) Split(text string) []string {
	return split([]rune(Normalize(text)), s.cfg.ChunkSize, s.cfg.ChunkOverlap)
}

// Split normalizes text and cuts it into overlapping chunks of at most size characters.
//
// The right edge of every window that does not reach the end of the text is moved back to
// the last sentence terminator (". ! ? \n") when it lies after both the window start and
// the last space, otherwise to the last space after the window start, otherwise it stays
// a hard cut. Consecutive chunks share at most overlap characters. Empty input yields no
// chunks.
func Split(text string, size, overlap int) ([]string, error) {
	if err := (Config{ChunkSize: size, ChunkOverlap: overlap}).Validate(); err != nil {
		return nil, err
	}
	return split([]rune(Normalize(text)), size, overlap), nil
}

// Normalize collapses every run of whitespace to a single space and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func split(text []rune, size, overlap int) []string {
	n := len(text)
	if n == 0 {
		return []string{}
	}
	if n <= size {
		return []string{string(text)}
	}

	var chunks []string
	start := 0
	for start < n {
		end := start + size
		if end >= n {
			end = n
		} else {
			end = boundary(text, start, end)
		}

		if chunk := strings.TrimSpace(string(text[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == n {
			break
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// boundary picks the cut position for the window text[start:end].
func boundary(text []rune, start, end int) int {
	lastSpace, lastPunct := -1, -1
	for i := end - 1; i >= start; i-- {
		r := text[i]
		if lastSpace < 0 && r == ' ' {
			lastSpace = i
		}
		if lastPunct < 0 && isTerminator(r) {
			lastPunct = i
		}
		if lastSpace >= 0 && lastPunct >= 0 {
			break
		}
	}

	switch {
	case lastPunct > lastSpace && lastPunct > start:
		return lastPunct + 1
	case lastSpace > start:
		return lastSpace + 1
	default:
		return end
	}
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '\n':
		return true
	}
	return false
}

// IsBlank reports whether s contains only whitespace.
func IsBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
