package sdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/covergraph/sdk/accept"
	"github.com/covergraph/sdk/critical"
	"github.com/covergraph/sdk/embedding"
	"github.com/covergraph/sdk/graph"
	"github.com/covergraph/sdk/legal"
	"github.com/covergraph/sdk/llm"
	"github.com/covergraph/sdk/lock"
	"github.com/covergraph/sdk/ontology"
	"github.com/covergraph/sdk/relation"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Pipeline runs the full document-to-graph ingestion: legal structure
// parsing, rule-based critical data extraction, tiered relation
// extraction, entity linking, graph assembly and idempotent persistence.
//
// A Pipeline is immutable after construction and safe for concurrent
// Ingest calls; per-document write ordering is serialized by the
// configured Locker.
type Pipeline struct {
	parser    *legal.Parser
	extractor *relation.Extractor
	linker    *ontology.Linker
	store     graph.Store
	locker    lock.Locker
	policy    *accept.Policy

	embedder          embedding.Embedder
	embeddingsEnabled bool

	concurrency int
	callTimeout time.Duration
	logger      *slog.Logger

	// closers holds resources the pipeline owns, such as a distributed
	// locker built by NewPipelineFromConfig.
	closers []io.Closer

	otelTracer  trace.Tracer
	otelMeter   metric.Meter
	otelMetrics *otelMetrics
}

// NewPipeline creates a Pipeline over the given store, model tiers and
// disease catalog. The low-cost tier and store are required; everything
// else has working defaults.
func NewPipeline(store graph.Store, tiers llm.Tiers, catalog *ontology.Catalog, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, NewConfigurationError("NewPipeline", fmt.Errorf("%w: graph store is required", ErrInvalidConfig))
	}
	if tiers.LowCost == nil {
		return nil, NewConfigurationError("NewPipeline", fmt.Errorf("%w: low-cost model is required", ErrInvalidConfig))
	}
	if catalog == nil {
		return nil, NewConfigurationError("NewPipeline", fmt.Errorf("%w: disease catalog is required", ErrInvalidConfig))
	}

	defaultPolicy, err := accept.NewPolicy("")
	if err != nil {
		return nil, NewConfigurationError("NewPipeline", err)
	}

	p := &Pipeline{
		parser:      legal.NewParser(),
		extractor:   relation.NewExtractor(tiers),
		linker:      ontology.NewLinker(catalog),
		store:       store,
		locker:      lock.NewMemoryLocker(),
		policy:      defaultPolicy,
		concurrency: 4,
		callTimeout: 60 * time.Second,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.otelMeter != nil {
		metrics, err := p.initOTelMetrics()
		if err != nil {
			return nil, NewConfigurationError("NewPipeline", err)
		}
		p.otelMetrics = metrics
	}

	return p, nil
}

// Report summarizes one document ingest.
type Report struct {
	// RunID uniquely identifies this ingest run.
	RunID string `json:"run_id"`

	// Product is the document metadata the graph was built under.
	Product graph.Product `json:"product"`

	// Stats is the persisted batch summary.
	Stats graph.Stats `json:"stats"`

	// ParsingConfidence is the structure parser's self-assessment.
	ParsingConfidence float64 `json:"parsing_confidence"`

	// ParsingErrors and ParsingWarnings surface the structure parser's
	// document-level diagnostics.
	ParsingErrors   []string `json:"parsing_errors,omitempty"`
	ParsingWarnings []string `json:"parsing_warnings,omitempty"`

	ClausesTotal    int `json:"clauses_total"`
	ClausesAccepted int `json:"clauses_accepted"`
	ClausesRejected int `json:"clauses_rejected"`

	// Diagnostics carries per-clause validation output for rejected and
	// noteworthy clauses.
	Diagnostics []ClauseDiagnostic `json:"diagnostics,omitempty"`

	Duration time.Duration `json:"duration"`
}

// ClauseDiagnostic is the per-clause quality record surfaced to callers.
type ClauseDiagnostic struct {
	ArticleNum   string   `json:"article_num"`
	ParagraphNum string   `json:"paragraph_num"`
	ModelUsed    string   `json:"model_used,omitempty"`
	Confidence   float64  `json:"confidence"`
	Accepted     bool     `json:"accepted"`
	Errors       []string `json:"errors,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// clauseUnit is one paragraph flattened out of the document structure,
// index-aligned with the builder's clause nodes.
type clauseUnit struct {
	articleNum   string
	paragraphNum string
	text         string
}

// Ingest runs the whole pipeline for one document and persists the
// resulting graph. Clause-level failures (model errors, undecodable
// output, rejected results) never abort the document; they are reported
// in the Report's diagnostics. A document with no recognizable articles
// is still ingested as a Product node with confidence 0 and the parse
// errors in the Report. A failed graph persist is the only fatal
// outcome.
func (p *Pipeline) Ingest(ctx context.Context, product graph.Product, text string) (*Report, error) {
	start := time.Now()
	report := &Report{
		RunID:   uuid.NewString(),
		Product: product,
	}

	ctx, span := p.startIngestSpan(ctx, product.DocumentID)

	doc := p.parser.Parse(text)
	report.ParsingConfidence = doc.ParsingConfidence
	report.ParsingErrors = doc.ParsingErrors
	report.ParsingWarnings = doc.ParsingWarnings
	if len(doc.Articles) == 0 {
		p.logger.Warn("no legal structure recognized, ingesting document shell",
			"document_id", product.DocumentID,
			"parsing_errors", doc.ParsingErrors)
	}

	units := flattenClauses(doc)
	report.ClausesTotal = len(units)

	results, diagnostics := p.extractAll(ctx, units)
	for _, d := range diagnostics {
		if d.Accepted {
			report.ClausesAccepted++
		} else {
			report.ClausesRejected++
		}
		if !d.Accepted || len(d.Errors) > 0 || len(d.Warnings) > 0 {
			report.Diagnostics = append(report.Diagnostics, d)
		}
	}

	builder := graph.NewBuilder(
		graph.WithEmbedder(p.embedder),
		graph.WithBuilderLogger(p.logger),
	)
	batch, err := builder.Build(ctx, product, doc, critical.Extract(text), results, p.embeddingsEnabled)
	if err != nil {
		err = NewInternalError("Pipeline.Ingest", err)
		p.recordIngest(ctx, span, report, time.Since(start), err)
		return nil, err
	}

	stats, err := p.persist(ctx, product, batch)
	if err != nil {
		p.recordIngest(ctx, span, report, time.Since(start), err)
		return nil, err
	}
	report.Stats = stats
	report.Duration = time.Since(start)

	p.logger.Info("document ingested",
		"run_id", report.RunID,
		"document_id", product.DocumentID,
		"clauses", report.ClausesTotal,
		"accepted", report.ClausesAccepted,
		"nodes", stats.TotalNodes,
		"relationships", stats.TotalRelationships,
		"duration", report.Duration)

	p.recordIngest(ctx, span, report, report.Duration, nil)
	return report, nil
}

// extractAll runs critical data extraction, the model cascade, entity
// linking and the acceptance policy for every clause under bounded
// concurrency. Results are index-aligned with units; a rejected clause
// leaves a zero ClauseRelations so the builder still creates its clause
// node without coverage edges.
func (p *Pipeline) extractAll(ctx context.Context, units []clauseUnit) ([]graph.ClauseRelations, []ClauseDiagnostic) {
	results := make([]graph.ClauseRelations, len(units))
	diagnostics := make([]ClauseDiagnostic, len(units))

	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup

	for i, unit := range units {
		wg.Add(1)
		go func(i int, unit clauseUnit) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i], diagnostics[i] = p.extractClause(ctx, unit)
		}(i, unit)
	}
	wg.Wait()

	return results, diagnostics
}

func (p *Pipeline) extractClause(ctx context.Context, unit clauseUnit) (graph.ClauseRelations, ClauseDiagnostic) {
	data := critical.Extract(unit.text)

	cctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	result := p.extractor.Extract(cctx, unit.text, data)
	cancel()

	diag := ClauseDiagnostic{
		ArticleNum:   unit.articleNum,
		ParagraphNum: unit.paragraphNum,
		ModelUsed:    result.ModelUsed,
		Confidence:   result.ExtractionConfidence,
		Errors:       result.ValidationErrors,
		Warnings:     result.ValidationWarnings,
	}

	accepted, err := p.policy.Evaluate(result)
	if err != nil {
		p.logger.Warn("accept policy evaluation failed, rejecting clause",
			"article", unit.articleNum, "paragraph", unit.paragraphNum, "error", err)
		diag.Errors = append(diag.Errors, err.Error())
		p.recordClauseOutcome(ctx, "failed", result.ExtractionConfidence)
		return graph.ClauseRelations{}, diag
	}
	if !accepted {
		p.recordClauseOutcome(ctx, "rejected", result.ExtractionConfidence)
		return graph.ClauseRelations{}, diag
	}

	objects := make([]string, len(result.Relations))
	for j, rel := range result.Relations {
		objects[j] = rel.Object
	}

	diag.Accepted = true
	p.recordClauseOutcome(ctx, "accepted", result.ExtractionConfidence)
	return graph.ClauseRelations{
		Relations: result,
		Links:     p.linker.LinkAll(objects),
	}, diag
}

// persist serializes the batch write behind the per-document lock.
func (p *Pipeline) persist(ctx context.Context, product graph.Product, batch *graph.Batch) (graph.Stats, error) {
	key := product.DocumentID
	if key == "" {
		key = product.Name
	}

	release, err := p.locker.Acquire(ctx, key)
	if err != nil {
		werr := fmt.Errorf("failed to acquire document lock: %w", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return graph.Stats{}, NewTimeoutError("Pipeline.Ingest", werr)
		}
		return graph.Stats{}, NewInternalError("Pipeline.Ingest", werr)
	}
	defer func() {
		if err := release(ctx); err != nil {
			p.logger.Warn("failed to release document lock", "key", key, "error", err)
		}
	}()

	stats, err := p.store.Persist(ctx, batch)
	if err != nil {
		werr := fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
		perr := NewPersistenceError("Pipeline.Ingest", werr)
		if errors.Is(err, context.DeadlineExceeded) {
			perr = NewTimeoutError("Pipeline.Ingest", werr)
		}
		return graph.Stats{}, perr.WithContext(map[string]any{"document_id": product.DocumentID})
	}
	return stats, nil
}

// Close releases resources the pipeline owns. Pipelines built purely
// from caller-supplied dependencies own nothing; Close is then a no-op.
func (p *Pipeline) Close() {
	for _, c := range p.closers {
		CloseWithLog(c, p.logger, fmt.Sprintf("%T", c))
	}
}

// flattenClauses lists the document's paragraphs in document order,
// matching the builder's clause node ordering.
func flattenClauses(doc *legal.Document) []clauseUnit {
	var units []clauseUnit
	for _, article := range doc.Articles {
		for _, paragraph := range article.Paragraphs {
			units = append(units, clauseUnit{
				articleNum:   article.Number,
				paragraphNum: paragraph.Number,
				text:         paragraph.Text,
			})
		}
	}
	return units
}
