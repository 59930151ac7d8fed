package embedding

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/data"
	"github.com/neurosnap/sentences/english"
)

// SentenceSplitter divides text into sentences.
type SentenceSplitter interface {
	// Split returns the non-empty sentences of text in order.
	Split(text string) []string
}

// PunktSplitter splits text with a pre-trained Punkt model.
type PunktSplitter struct {
	tokenizer tokenizer
}

type tokenizer interface {
	Tokenize(text string) []*sentences.Sentence
}

var _ SentenceSplitter = (*PunktSplitter)(nil)

// NewPunktSplitter loads the Punkt model for language, e.g. "english" or "german".
// English also gets the extra abbreviation and punctuation rules shipped with
// the english package.
func NewPunktSplitter(language string) (*PunktSplitter, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" || language == "english" {
		tokenizer, err := english.NewSentenceTokenizer(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load english sentence model: %w", err)
		}
		return &PunktSplitter{tokenizer: tokenizer}, nil
	}

	b, err := data.Asset(fmt.Sprintf("data/%s.json", language))
	if err != nil {
		return nil, fmt.Errorf("no sentence model for language %q: %w", language, err)
	}
	training, err := sentences.LoadTraining(b)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentence model for %q: %w", language, err)
	}
	return &PunktSplitter{tokenizer: sentences.NewSentenceTokenizer(training)}, nil
}

// Split implements SentenceSplitter.
func (s *PunktSplitter) Split(text string) []string {
	tokens := s.tokenizer.Tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		sentence := strings.TrimSpace(token.Text)
		if sentence != "" {
			out = append(out, sentence)
		}
	}
	return out
}
