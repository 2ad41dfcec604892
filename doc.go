// Package sdk turns Korean insurance policy documents into a typed
// knowledge graph.
//
// The pipeline runs five stages per document:
//
//  1. Legal structure parsing (package legal): articles, paragraphs and
//     subclauses are recovered from raw OCR text, with exception-clause
//     detection and a parsing confidence score.
//  2. Critical data extraction (package critical): amounts in Korean Won
//     numeral grammar, waiting/observation periods and KCD disease codes
//     are extracted by deterministic rules. This is the ground truth the
//     model output is validated against.
//  3. Relation extraction (package relation): a low-cost model proposes
//     subject-action-object relations per clause, escalating once to a
//     high-accuracy model when its confidence falls below the threshold.
//     Numeric conditions are corrected against the rule-extracted data.
//  4. Entity linking (package ontology): relation objects are resolved
//     to canonical disease entries via exact name, KCD code, synonym and
//     fuzzy lookup, in that order.
//  5. Graph assembly and persistence (package graph): product, clause,
//     coverage, disease and condition nodes with deterministic
//     content-hash IDs are merged into the store, so re-ingesting an
//     unchanged document never duplicates anything.
//
// Example usage:
//
//	store := graph.NewMemoryStore()
//	tiers := llm.Tiers{LowCost: gemini, HighAccuracy: claude}
//	catalog, err := ontology.LoadCatalog("diseases.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pipeline, err := sdk.NewPipeline(store, tiers, catalog,
//	    sdk.WithConcurrency(8),
//	    sdk.WithEmbedder(embedder),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := pipeline.Ingest(ctx, product, policyText)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("persisted %d nodes\n", report.Stats.TotalNodes)
//
// Clause-level failures never abort a document: a clause whose model
// output is undecodable or rejected by the acceptance policy is reported
// in the ingest Report and skipped, and a document with no recognizable
// structure still persists its product node with the parse errors in
// the Report. Only a failed graph persist is fatal.
package sdk
