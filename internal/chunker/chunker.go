// Package chunker splits raw document text into retrievable passages.
package chunker

import (
	"regexp"
	"strings"

	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
)

// DefaultMinLength is the minimum passage length in characters.
// Fragments shorter than this are discarded as noise (page numbers,
// stray headings, OCR artefacts).
const DefaultMinLength = 20

var (
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// Splitter turns raw text into an ordered sequence of passages.
// Boundaries are purely punctuation/whitespace based: paragraph breaks
// first, then sentence-terminal periods followed by a space. No
// windowing or overlap is applied.
type Splitter struct {
	minLength int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithMinLength sets the minimum passage length in characters.
func WithMinLength(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.minLength = n
		}
	}
}

// New creates a new splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{minLength: DefaultMinLength}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split chunks rawText into passages owned by documentID.
//
// Empty input, or input where every fragment falls below the minimum
// length, produces an empty slice: nothing indexable, not an error.
// Passage order matches the order fragments appear in the source.
func (s *Splitter) Split(documentID, rawText string) []domain.Passage {
	var passages []domain.Passage

	for _, para := range paragraphBreak.Split(rawText, -1) {
		para = normalize(para)
		if para == "" {
			continue
		}

		// Sentence-terminal split; the ". " separator is consumed.
		for _, frag := range strings.Split(para, ". ") {
			frag = strings.TrimSpace(frag)
			if len(frag) < s.minLength {
				continue
			}
			passages = append(passages, domain.Passage{
				DocumentID: documentID,
				Index:      len(passages),
				Text:       frag,
			})
		}
	}

	return passages
}

// normalize collapses any run of whitespace to a single space and trims
// the ends.
func normalize(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}
