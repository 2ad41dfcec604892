package sdk

import (
	"fmt"
	"io"

	"github.com/covergraph/sdk/accept"
	"github.com/covergraph/sdk/config"
	"github.com/covergraph/sdk/graph"
	"github.com/covergraph/sdk/legal"
	"github.com/covergraph/sdk/llm"
	"github.com/covergraph/sdk/lock"
	"github.com/covergraph/sdk/ontology"
	"github.com/covergraph/sdk/relation"
)

// NewPipelineFromConfig builds a Pipeline from a covergraph.yaml
// configuration. The store and model tiers are runtime dependencies and
// are passed in; everything tunable comes from cfg. Caller options are
// applied last and override configuration-derived settings, which is
// how an embedder is attached (embedding providers need credentials the
// config file does not carry). Call Close on the returned Pipeline to
// release config-derived resources such as the distributed locker.
func NewPipelineFromConfig(cfg *config.Config, store graph.Store, tiers llm.Tiers, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, NewConfigurationError("NewPipelineFromConfig",
			fmt.Errorf("%w: config is required", ErrInvalidConfig))
	}
	if cfg.Ontology == nil || cfg.Ontology.Path == "" {
		return nil, NewConfigurationError("NewPipelineFromConfig",
			fmt.Errorf("%w: ontology.path is required", ErrInvalidConfig))
	}

	catalog, err := ontology.LoadCatalog(cfg.Ontology.Path)
	if err != nil {
		return nil, NewConfigurationError("NewPipelineFromConfig",
			fmt.Errorf("failed to load disease catalog: %w", err))
	}

	var policyExpr string
	if cfg.Accept != nil {
		policyExpr = cfg.Accept.Policy
	}
	policy, err := accept.NewPolicy(policyExpr)
	if err != nil {
		return nil, NewConfigurationError("NewPipelineFromConfig", err)
	}

	derived := []Option{
		WithParser(legal.NewParser(
			legal.WithCharsPerPage(cfg.Parser.GetCharsPerPage()),
		)),
		WithExtractor(relation.NewExtractor(tiers,
			relation.WithEscalationThreshold(cfg.Extraction.GetEscalationThreshold()),
			relation.WithAmountTolerance(cfg.Extraction.GetAmountTolerance()),
			relation.WithTemperature(cfg.Extraction.GetTemperature()),
			relation.WithMaxTokens(cfg.Extraction.GetMaxTokens()),
		)),
		WithLinker(ontology.NewLinker(catalog,
			ontology.WithFuzzyThreshold(cfg.Linker.GetFuzzyThreshold()),
		)),
		WithConcurrency(cfg.Extraction.GetConcurrency()),
		WithCallTimeout(cfg.Extraction.GetCallTimeout()),
		WithAcceptPolicy(policy),
	}

	var closers []io.Closer
	if cfg.Lock != nil && len(cfg.Lock.Endpoints) > 0 {
		locker, err := lock.NewEtcdLocker(lock.EtcdConfig{
			Endpoints: cfg.Lock.Endpoints,
			Namespace: cfg.Lock.Namespace,
			TTL:       cfg.Lock.TTL,
		})
		if err != nil {
			return nil, NewConfigurationError("NewPipelineFromConfig",
				fmt.Errorf("failed to create distributed locker: %w", err))
		}
		derived = append(derived, WithLocker(locker))
		closers = append(closers, locker)
	}

	p, err := NewPipeline(store, tiers, catalog, append(derived, opts...)...)
	if err != nil {
		for _, c := range closers {
			CloseWithLog(c, nil, "distributed locker")
		}
		return nil, err
	}
	// The pipeline owns config-derived resources; Close releases them.
	p.closers = closers
	return p, nil
}
