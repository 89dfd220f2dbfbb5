package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hyperjump/fortytech/internal/config"
	"github.com/hyperjump/fortytech/internal/embedding"
	"github.com/hyperjump/fortytech/internal/llm"
	"github.com/hyperjump/fortytech/internal/vector"
	"go.uber.org/zap"
)

// probeText is embedded once per build to learn the model's dimensionality.
const probeText = "sample text"

// embedBatchSize bounds the number of chunks sent per embedding request.
const embedBatchSize = 32

// Answer is the model's reply and the chunks it was given.
type Answer struct {
	Answer  string        `json:"answer"`
	Sources []ScoredChunk `json:"sources"`
}

// Pipeline builds vector stores from inputs and answers questions against them.
type Pipeline struct {
	ingestor *Ingestor
	chunker  Chunker
	embedder embedding.Embedder
	llm      llm.Client
	topK     int
	logger   *zap.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithWebLoader replaces the loader used for web sources.
func WithWebLoader(w *WebLoader) PipelineOption {
	return func(p *Pipeline) {
		if w != nil {
			p.ingestor.web = w
		}
	}
}

// NewPipeline returns a pipeline using the chunking and retrieval settings in cfg.
func NewPipeline(cfg config.RAGConfig, embedder embedding.Embedder, client llm.Client, opts ...PipelineOption) *Pipeline {
	topK := cfg.TopK
	if topK <= 0 {
		topK = 4
	}
	p := &Pipeline{
		ingestor: NewIngestor(nil, cfg.MaxURLs),
		chunker:  NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		embedder: embedder,
		llm:      client,
		topK:     topK,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process loads in, chunks every document, embeds the chunks and returns a new
// store. Each call builds from scratch.
func (p *Pipeline) Process(ctx context.Context, in Input) (*VectorStore, error) {
	docs, err := p.ingestor.Load(ctx, in)
	if err != nil {
		return nil, err
	}

	var chunks []Chunk
	for _, doc := range docs {
		for _, text := range p.chunker.Split(doc.Content) {
			chunks = append(chunks, Chunk{
				ID:     uuid.New().String(),
				Index:  len(chunks),
				Text:   text,
				Source: doc.Source,
			})
		}
	}
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	probe, err := p.embedder.Embed(ctx, probeText)
	if err != nil {
		return nil, fmt.Errorf("embed probe text: %w", err)
	}
	index, err := vector.NewVectorIndex(string(vector.IndexTypeFlat), len(probe))
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	store := newVectorStore(in.Type, index)

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		vecs, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks: %w", err)
		}
		if err := store.add(ctx, batch, vecs); err != nil {
			return nil, fmt.Errorf("index chunks: %w", err)
		}
	}

	p.logger.Info("Vector store created",
		zap.String("source", string(in.Type)),
		zap.Int("documents", len(docs)),
		zap.Int("chunks", store.Len()),
		zap.Int("dimensions", store.Dimensions()))
	return store, nil
}

// Answer retrieves the top-k chunks for query and asks the model, returning its
// reply verbatim.
func (p *Pipeline) Answer(ctx context.Context, store *VectorStore, query string) (*Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyInput
	}
	if store == nil {
		return nil, ErrSessionNotFound
	}
	qvec, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := store.Search(ctx, qvec, p.topK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	reply, err := p.llm.Generate(ctx, BuildPrompt(hits, query))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	p.logger.Debug("Answered question", zap.Int("context_chunks", len(hits)))
	return &Answer{Answer: reply, Sources: hits}, nil
}

// TopK returns the number of chunks retrieved per question.
func (p *Pipeline) TopK() int {
	return p.topK
}
