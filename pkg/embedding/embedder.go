package embedding

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/dense-analysis/pie/pkg/models"
)

// dimensionSample is embedded once at startup when the vector size is not configured.
const dimensionSample = "dimension sample"

// Embedder converts text into fixed-length vectors.
type Embedder interface {
	// EmbedSingle embeds text as a single unit. Used for issue titles.
	EmbedSingle(ctx context.Context, text string) (models.Vector, error)
	// EmbedAggregate embeds each sentence of text and returns their mean.
	// Empty text yields the zero vector. Used for descriptions and comment bodies.
	EmbedAggregate(ctx context.Context, text string) (models.Vector, error)
	// Dimensions is the length of every vector this embedder returns.
	Dimensions() int
}

// Options configures a TextEmbedder.
type Options struct {
	// Dimensions is the expected vector length. 0 discovers it with one sample request.
	Dimensions int
	// MaxBatchSize caps the number of sentences per request. Defaults to 64.
	MaxBatchSize int
	// Splitter divides descriptions and comments into sentences.
	Splitter SentenceSplitter
}

// TextEmbedder is the production Embedder. Construct it once per process and
// share it; it holds no mutable state after construction.
type TextEmbedder struct {
	client       Client
	splitter     SentenceSplitter
	dimensions   int
	maxBatchSize int
	logger       *zap.Logger
}

var _ Embedder = (*TextEmbedder)(nil)

// NewTextEmbedder creates an embedder backed by client.
func NewTextEmbedder(ctx context.Context, client Client, opts Options, logger *zap.Logger) (*TextEmbedder, error) {
	if opts.Splitter == nil {
		return nil, fmt.Errorf("sentence splitter is required")
	}
	if opts.Dimensions < 0 {
		return nil, fmt.Errorf("dimensions must not be negative, got %d", opts.Dimensions)
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = 64
	}

	e := &TextEmbedder{
		client:       client,
		splitter:     opts.Splitter,
		dimensions:   opts.Dimensions,
		maxBatchSize: opts.MaxBatchSize,
		logger:       logger.Named("embedder"),
	}

	if e.dimensions == 0 {
		vectors, err := client.CreateEmbeddings(ctx, []string{dimensionSample})
		if err != nil {
			return nil, fmt.Errorf("failed to discover embedding dimensions: %w", ClassifyError(err))
		}
		if len(vectors) != 1 || len(vectors[0]) == 0 {
			return nil, NewError(ErrorTypeResponse, "dimension sample returned no vector", false, nil)
		}
		e.dimensions = len(vectors[0])
	}

	e.logger.Info("Embedder ready",
		zap.String("model", client.GetModel()),
		zap.String("endpoint", client.GetEndpoint()),
		zap.Int("dimensions", e.dimensions),
		zap.Int("max_batch_size", e.maxBatchSize))

	return e, nil
}

// Dimensions implements Embedder.
func (e *TextEmbedder) Dimensions() int {
	return e.dimensions
}

// EmbedSingle implements Embedder. The text is sent to the model unchanged.
func (e *TextEmbedder) EmbedSingle(ctx context.Context, text string) (models.Vector, error) {
	if !utf8.ValidString(text) {
		return nil, NewError(ErrorTypeInput, "text is not valid UTF-8", false, nil)
	}

	vectors, err := e.embedAll(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedAggregate implements Embedder.
func (e *TextEmbedder) EmbedAggregate(ctx context.Context, text string) (models.Vector, error) {
	if strings.TrimSpace(text) == "" {
		return models.ZeroVector(e.dimensions), nil
	}
	if !utf8.ValidString(text) {
		return nil, NewError(ErrorTypeInput, "text is not valid UTF-8", false, nil)
	}

	sentences := e.splitter.Split(text)
	if len(sentences) == 0 {
		return models.ZeroVector(e.dimensions), nil
	}

	vectors, err := e.embedAll(ctx, sentences)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 1 {
		return vectors[0], nil
	}

	mean, err := models.MeanVectors(vectors)
	if err != nil {
		return nil, NewError(ErrorTypeResponse, "failed to average sentence vectors", false, err)
	}
	return mean, nil
}

// embedAll embeds inputs in batches of at most maxBatchSize, preserving order,
// and checks every vector has the configured dimensionality.
func (e *TextEmbedder) embedAll(ctx context.Context, inputs []string) ([]models.Vector, error) {
	out := make([]models.Vector, 0, len(inputs))

	for start := 0; start < len(inputs); start += e.maxBatchSize {
		end := min(start+e.maxBatchSize, len(inputs))
		batch := inputs[start:end]

		vectors, err := e.client.CreateEmbeddings(ctx, batch)
		if err != nil {
			return nil, ClassifyError(err)
		}
		if len(vectors) != len(batch) {
			return nil, NewError(ErrorTypeResponse,
				fmt.Sprintf("expected %d embeddings, got %d", len(batch), len(vectors)), false, nil)
		}

		for _, v := range vectors {
			if len(v) != e.dimensions {
				return nil, NewError(ErrorTypeResponse,
					fmt.Sprintf("expected %d dimensions, got %d", e.dimensions, len(v)), false, nil)
			}
			out = append(out, models.Vector(v))
		}
	}

	e.logger.Debug("Embedded text",
		zap.Int("inputs", len(inputs)))

	return out, nil
}
