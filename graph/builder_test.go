package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covergraph/sdk/critical"
	"github.com/covergraph/sdk/embedding"
	"github.com/covergraph/sdk/legal"
	"github.com/covergraph/sdk/ontology"
	"github.com/covergraph/sdk/relation"
)

func testProduct() Product {
	return Product{
		Name:          "무배당 암보험",
		Company:       "한국생명",
		ProductType:   "암보험",
		Version:       "2024-01",
		EffectiveDate: "2024-01-01",
		DocumentID:    "doc-001",
	}
}

func testDocument() *legal.Document {
	return &legal.Document{
		Articles: []legal.Article{
			{
				Number: "제1조",
				Title:  "보험금의 지급",
				Page:   1,
				Paragraphs: []legal.Paragraph{
					{Number: "①", Text: "회사는 갑상선암 진단 확정 시 1천만원을 지급합니다."},
					{
						Number:            "②",
						Text:              "계약일부터 90일 이내 진단된 경우를 제외하고 지급합니다.",
						HasException:      true,
						ExceptionKeywords: []string{"제외하고"},
					},
				},
			},
		},
		ParsingConfidence: 0.95,
	}
}

func thyroidCancer() *ontology.Disease {
	return &ontology.Disease{
		StandardName: "갑상선암",
		KCDCodes:     []string{"C73"},
		Category:     "암",
		Severity:     "소액암",
	}
}

func testResults() []ClauseRelations {
	return []ClauseRelations{
		{
			Relations: relation.Result{
				Relations: []relation.Relation{{
					Subject:    "암진단특약",
					Action:     relation.ActionCovers,
					Object:     "갑상선암",
					Confidence: 0.9,
					Conditions: []relation.Condition{
						{Type: relation.ConditionWaitingPeriod, Value: 90, Description: "90일 대기기간"},
						{Type: relation.ConditionPaymentAmount, Value: 10000000, Description: "진단보험금"},
					},
				}},
				ValidationPassed: true,
			},
			Links: []ontology.LinkResult{
				{Entity: thyroidCancer(), Score: 1.0, Method: ontology.MethodExact},
			},
		},
		{
			Relations: relation.Result{
				Relations: []relation.Relation{{
					Subject:    "암진단특약",
					Action:     relation.ActionExcludes,
					Object:     "갑상선암",
					Confidence: 0.85,
					Reasoning:  "계약일부터 90일 이내 진단",
				}},
				ValidationPassed: true,
			},
			Links: []ontology.LinkResult{
				{Entity: thyroidCancer(), Score: 1.0, Method: ontology.MethodExact},
			},
		},
	}
}

func TestBuilderBuildsFullGraph(t *testing.T) {
	builder := NewBuilder()
	batch, err := builder.Build(context.Background(), testProduct(), testDocument(), critical.Data{}, testResults(), false)
	require.NoError(t, err)

	stats := batch.Stats()
	assert.Equal(t, 1, stats.NodesByType["Product"])
	assert.Equal(t, 2, stats.NodesByType["Clause"])
	// Same subject in both clauses merges into one coverage node.
	assert.Equal(t, 1, stats.NodesByType["Coverage"])
	assert.Equal(t, 1, stats.NodesByType["Disease"])
	assert.Equal(t, 2, stats.NodesByType["Condition"])

	assert.Equal(t, 2, stats.RelationshipsByType[RelHasClause])
	assert.Equal(t, 1, stats.RelationshipsByType[RelHasCoverage])
	assert.Equal(t, 2, stats.RelationshipsByType[RelHasCondition])
	// One coverage defined in two distinct clauses.
	assert.Equal(t, 2, stats.RelationshipsByType[RelDefinedIn])
	assert.Equal(t, 1, stats.RelationshipsByType["COVERS"])
	assert.Equal(t, 1, stats.RelationshipsByType["EXCLUDES"])
}

func TestBuilderExclusionReason(t *testing.T) {
	builder := NewBuilder()
	batch, err := builder.Build(context.Background(), testProduct(), testDocument(), critical.Data{}, testResults(), false)
	require.NoError(t, err)

	var found bool
	for _, rel := range batch.Relationships() {
		if rel.Type == "EXCLUDES" {
			found = true
			assert.Equal(t, "계약일부터 90일 이내 진단", rel.Properties["exclusion_reason"])
			assert.InDelta(t, 0.85, rel.Confidence, 1e-9)
		}
	}
	require.True(t, found, "EXCLUDES edge missing")
}

func TestBuilderImplicitParagraphNumber(t *testing.T) {
	doc := &legal.Document{
		Articles: []legal.Article{{
			Number:     "제2조",
			Paragraphs: []legal.Paragraph{{Number: "", Text: "이 약관에서 사용하는 용어의 정의는 다음과 같습니다."}},
		}},
	}

	builder := NewBuilder()
	batch, err := builder.Build(context.Background(), testProduct(), doc, critical.Data{}, nil, false)
	require.NoError(t, err)

	var clause *Node
	for i, n := range batch.Nodes() {
		if n.Type == NodeClause {
			clause = &batch.Nodes()[i]
		}
	}
	require.NotNil(t, clause)
	assert.Equal(t, "본문", clause.Properties["paragraph_num"])
}

func TestBuilderEmbeddings(t *testing.T) {
	embedder := embedding.NewMockEmbedder(8)
	builder := NewBuilder(WithEmbedder(embedder))

	batch, err := builder.Build(context.Background(), testProduct(), testDocument(), critical.Data{}, nil, true)
	require.NoError(t, err)

	for _, n := range batch.Nodes() {
		if n.Type == NodeClause {
			assert.Len(t, n.Embedding, 8, "clause node missing vector")
		} else {
			assert.Empty(t, n.Embedding, "non-clause node carries a vector")
		}
	}
}

func TestBuilderEmbeddingFailureIsNotFatal(t *testing.T) {
	embedder := embedding.NewMockEmbedder(8)
	embedder.FailWith(errors.New("quota exhausted"))
	builder := NewBuilder(WithEmbedder(embedder))

	batch, err := builder.Build(context.Background(), testProduct(), testDocument(), critical.Data{}, nil, true)
	require.NoError(t, err)

	for _, n := range batch.Nodes() {
		assert.Empty(t, n.Embedding)
	}
}

func TestBuilderUnlinkedObjectSkipsDiseaseEdge(t *testing.T) {
	results := testResults()[:1]
	results[0].Links = []ontology.LinkResult{{Method: ontology.MethodNone}}

	builder := NewBuilder()
	batch, err := builder.Build(context.Background(), testProduct(), testDocument(), critical.Data{}, results, false)
	require.NoError(t, err)

	stats := batch.Stats()
	assert.Zero(t, stats.NodesByType["Disease"])
	assert.Zero(t, stats.RelationshipsByType["COVERS"])
	// Coverage node and its structural edges still exist.
	assert.Equal(t, 1, stats.NodesByType["Coverage"])
}

func TestBuilderOutputIsIdempotent(t *testing.T) {
	builder := NewBuilder()
	ctx := context.Background()
	store := NewMemoryStore()

	for i := 0; i < 2; i++ {
		batch, err := builder.Build(ctx, testProduct(), testDocument(), critical.Data{}, testResults(), false)
		require.NoError(t, err)
		_, err = store.Persist(ctx, batch)
		require.NoError(t, err)
	}

	batch, err := builder.Build(ctx, testProduct(), testDocument(), critical.Data{}, testResults(), false)
	require.NoError(t, err)
	assert.Equal(t, batch.Stats().TotalNodes, store.NodeCount(),
		"re-ingesting the same document must not grow the graph")
	assert.Equal(t, batch.Stats().TotalRelationships, store.RelationshipCount())
}
