package sdk

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/covergraph/sdk/accept"
	"github.com/covergraph/sdk/embedding"
	"github.com/covergraph/sdk/legal"
	"github.com/covergraph/sdk/lock"
	"github.com/covergraph/sdk/ontology"
	"github.com/covergraph/sdk/relation"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used by the pipeline and its stages.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithConcurrency sets how many clauses are extracted in parallel.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithCallTimeout bounds each model call during extraction.
func WithCallTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.callTimeout = d
		}
	}
}

// WithEmbedder enables clause embeddings using the given service.
func WithEmbedder(e embedding.Embedder) Option {
	return func(p *Pipeline) {
		p.embedder = e
		p.embeddingsEnabled = e != nil
	}
}

// WithLocker replaces the default in-process locker, typically with the
// etcd-backed one for multi-instance deployments.
func WithLocker(l lock.Locker) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.locker = l
		}
	}
}

// WithAcceptPolicy replaces the default clause acceptance policy.
func WithAcceptPolicy(policy *accept.Policy) Option {
	return func(p *Pipeline) {
		if policy != nil {
			p.policy = policy
		}
	}
}

// WithParser replaces the default legal structure parser.
func WithParser(parser *legal.Parser) Option {
	return func(p *Pipeline) {
		if parser != nil {
			p.parser = parser
		}
	}
}

// WithExtractor replaces the default relation extractor, e.g. to tune
// the escalation threshold or amount tolerance.
func WithExtractor(extractor *relation.Extractor) Option {
	return func(p *Pipeline) {
		if extractor != nil {
			p.extractor = extractor
		}
	}
}

// WithLinker replaces the default entity linker.
func WithLinker(linker *ontology.Linker) Option {
	return func(p *Pipeline) {
		if linker != nil {
			p.linker = linker
		}
	}
}

// WithTracerProvider enables tracing of document ingests.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Pipeline) {
		if tp != nil {
			p.otelTracer = tp.Tracer("covergraph/sdk")
		}
	}
}

// WithMeterProvider enables pipeline metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(p *Pipeline) {
		if mp != nil {
			p.otelMeter = mp.Meter("covergraph/sdk")
		}
	}
}
