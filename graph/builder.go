package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/covergraph/sdk/critical"
	"github.com/covergraph/sdk/embedding"
	"github.com/covergraph/sdk/legal"
	"github.com/covergraph/sdk/ontology"
	"github.com/covergraph/sdk/relation"
)

// implicitParagraphNum labels clause nodes built from articles that had
// no paragraph markers, so the identifying property is never empty.
const implicitParagraphNum = "본문"

// ClauseRelations pairs one clause's relation-extraction result with the
// entity-link results for each relation's object. Links is index-aligned
// with Relations.Relations.
type ClauseRelations struct {
	Relations relation.Result
	Links     []ontology.LinkResult
}

// Builder assembles the typed graph batch for one document. It holds
// only immutable configuration and is safe for concurrent use.
type Builder struct {
	embedder embedding.Embedder
	logger   *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithEmbedder sets the embedding service used to enrich clause nodes.
// Without one, clause nodes are built without vectors even when
// embeddings are requested.
func WithEmbedder(e embedding.Embedder) BuilderOption {
	return func(b *Builder) { b.embedder = e }
}

// WithBuilderLogger sets the logger used for build diagnostics.
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build assembles the full batch in memory: one Product node, one Clause
// node per paragraph, one Coverage node per distinct relation subject,
// one Disease node per distinct canonical match and one Condition node
// per distinct (type, description) pair, plus the typed relationships
// between them. results is index-aligned with the document's paragraphs
// in document order.
//
// Embedding failures are not fatal: the batch is built without vectors
// and the error is logged, since a missing embedding only degrades
// search, not correctness.
func (b *Builder) Build(
	ctx context.Context,
	product Product,
	doc *legal.Document,
	data critical.Data,
	results []ClauseRelations,
	embeddingsEnabled bool,
) (*Batch, error) {
	batch := NewBatch()

	productNode, err := b.buildProductNode(product, doc, data)
	if err != nil {
		return nil, fmt.Errorf("failed to build product node: %w", err)
	}
	batch.AddNode(productNode)

	clauseNodes, err := b.buildClauseNodes(ctx, doc, embeddingsEnabled)
	if err != nil {
		return nil, err
	}
	for _, n := range clauseNodes {
		batch.AddNode(n)
		batch.AddRelationship(Relationship{
			Type:       RelHasClause,
			SourceID:   productNode.ID,
			TargetID:   n.ID,
			Confidence: 1.0,
		})
	}

	for i, cr := range results {
		if i >= len(clauseNodes) {
			b.logger.Warn("more relation results than clauses, ignoring extras",
				"results", len(results), "clauses", len(clauseNodes))
			break
		}
		if err := b.addClauseRelations(batch, productNode, clauseNodes[i], cr); err != nil {
			return nil, err
		}
	}

	return batch, nil
}

func (b *Builder) buildProductNode(product Product, doc *legal.Document, data critical.Data) (Node, error) {
	return NewNode(NodeProduct, map[string]any{
		"product_name":       product.Name,
		"company":            product.Company,
		"product_type":       product.ProductType,
		"version":            product.Version,
		"effective_date":     product.EffectiveDate,
		"document_id":        product.DocumentID,
		"parsing_confidence": doc.ParsingConfidence,
		"amount_count":       len(data.Amounts),
		"period_count":       len(data.Periods),
		"kcd_code_count":     len(data.KCDCodes),
	})
}

// buildClauseNodes creates one node per paragraph in document order,
// optionally enriched with embedding vectors for the clause text.
func (b *Builder) buildClauseNodes(ctx context.Context, doc *legal.Document, embeddingsEnabled bool) ([]Node, error) {
	var nodes []Node
	var texts []string

	for _, article := range doc.Articles {
		for _, p := range article.Paragraphs {
			paragraphNum := p.Number
			if paragraphNum == "" {
				paragraphNum = implicitParagraphNum
			}
			node, err := NewNode(NodeClause, map[string]any{
				"text":          p.Text,
				"article_num":   article.Number,
				"paragraph_num": paragraphNum,
				"article_title": article.Title,
				"page":          article.Page,
				"has_exception": p.HasException,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to build clause node for %s %s: %w",
					article.Number, paragraphNum, err)
			}
			nodes = append(nodes, node)
			texts = append(texts, p.Text)
		}
	}

	if embeddingsEnabled && b.embedder != nil && len(texts) > 0 {
		vectors, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			b.logger.Warn("clause embedding failed, continuing without vectors", "error", err)
		} else if len(vectors) == len(nodes) {
			for i := range nodes {
				nodes[i] = nodes[i].WithEmbedding(vectors[i])
			}
		}
	}

	return nodes, nil
}

// addClauseRelations merges one clause's extracted relations into the
// batch: coverage nodes per subject, disease nodes per canonical match,
// condition nodes per (type, description), and the typed edges between
// them.
func (b *Builder) addClauseRelations(batch *Batch, productNode, clauseNode Node, cr ClauseRelations) error {
	for i, rel := range cr.Relations.Relations {
		coverageNode, err := NewNode(NodeCoverage, map[string]any{
			"name": rel.Subject,
		})
		if err != nil {
			b.logger.Warn("skipping relation with unusable subject", "subject", rel.Subject, "error", err)
			continue
		}
		batch.AddNode(coverageNode)
		batch.AddRelationship(Relationship{
			Type:       RelHasCoverage,
			SourceID:   productNode.ID,
			TargetID:   coverageNode.ID,
			Confidence: 1.0,
		})
		batch.AddRelationship(Relationship{
			Type:       RelDefinedIn,
			SourceID:   coverageNode.ID,
			TargetID:   clauseNode.ID,
			Confidence: 1.0,
		})

		if i < len(cr.Links) && cr.Links[i].Entity != nil {
			if err := b.addDiseaseEdge(batch, coverageNode, rel, cr.Links[i]); err != nil {
				return err
			}
		}

		for _, cond := range rel.Conditions {
			if err := b.addCondition(batch, coverageNode, cond); err != nil {
				b.logger.Warn("skipping unusable condition", "type", cond.Type, "error", err)
			}
		}
	}
	return nil
}

func (b *Builder) addDiseaseEdge(batch *Batch, coverageNode Node, rel relation.Relation, link ontology.LinkResult) error {
	disease := link.Entity
	diseaseNode, err := NewNode(NodeDisease, map[string]any{
		"standard_name": disease.StandardName,
		"category":      disease.Category,
		"severity":      disease.Severity,
		"kcd_codes":     disease.KCDCodes,
	})
	if err != nil {
		return fmt.Errorf("failed to build disease node %q: %w", disease.StandardName, err)
	}
	batch.AddNode(diseaseNode)

	props := map[string]any{
		"surface_text": rel.Object,
		"match_method": link.Method,
		"match_score":  link.Score,
	}
	if rel.Action == relation.ActionExcludes && rel.Reasoning != "" {
		props["exclusion_reason"] = rel.Reasoning
	}

	batch.AddRelationship(Relationship{
		Type:       string(rel.Action),
		SourceID:   coverageNode.ID,
		TargetID:   diseaseNode.ID,
		Confidence: rel.Confidence,
		Properties: props,
	})
	return nil
}

func (b *Builder) addCondition(batch *Batch, coverageNode Node, cond relation.Condition) error {
	description := cond.Description
	if description == "" {
		description = string(cond.Type)
	}
	conditionNode, err := NewNode(NodeCondition, map[string]any{
		"condition_type": string(cond.Type),
		"description":    description,
		"value":          cond.Value,
	})
	if err != nil {
		return err
	}
	batch.AddNode(conditionNode)
	batch.AddRelationship(Relationship{
		Type:       RelHasCondition,
		SourceID:   coverageNode.ID,
		TargetID:   conditionNode.ID,
		Confidence: 1.0,
	})
	return nil
}
