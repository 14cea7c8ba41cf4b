// pipeline.go
package main

import (
	"context"
	"log"
	"time"
)

// Sink receives finished blog results. Implementations must tolerate
// repeated calls within one run.
type Sink interface {
	Name() string
	Store(result *BlogResult) error
}

// RemoteSink is a sink backed by an external service whose reachability
// can be probed.
type RemoteSink interface {
	Sink
	TestConnection() error
}

// BatchPipeline runs the generation engine over the corpus topics in order
// and forwards successful results to the configured sinks.
type BatchPipeline struct {
	corpus  *Corpus
	engine  *Engine
	sinks   []Sink
	results []BlogResult
	totals  RunningTotals
}

// NewBatchPipeline creates a pipeline. Sinks are invoked in argument order
// for every successful result.
func NewBatchPipeline(corpus *Corpus, engine *Engine, sinks ...Sink) *BatchPipeline {
	return &BatchPipeline{
		corpus: corpus,
		engine: engine,
		sinks:  sinks,
	}
}

// Run generates up to limit blogs from the corpus topics in sheet order.
// A limit of zero or one exceeding the topic count means all topics. The
// returned error is non-nil only when the context is cancelled between
// topics; generation failures are recorded per result instead.
func (bp *BatchPipeline) Run(ctx context.Context, limit int) ([]BlogResult, RunSummary, error) {
	topics := bp.corpus.Topics
	count := limit
	if count <= 0 || count > len(topics) {
		count = len(topics)
	}

	log.Printf("Generating %d blog(s)...", count)

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return bp.results, bp.summarize(), err
		}

		topic := topics[i]
		log.Printf("[%d/%d] Generating: %s", i+1, count, topic.Topic)

		result := bp.engine.Generate(ctx, topic, bp.corpus.SEOKeywords, bp.corpus.LLMKeywords, bp.corpus.Links)
		result.Index = i + 1
		result.GeneratedAt = time.Now()

		if result.Status == StatusSuccess {
			bp.totals.InputTokens += result.InputTokens
			bp.totals.OutputTokens += result.OutputTokens
			bp.totals.Cost += result.Cost
			log.Printf("✓ Generated: %s (%d words, $%.4f; run total $%.4f)", topic.Topic, result.WordCount, result.Cost, bp.totals.Cost)
			bp.store(&result)
		} else {
			log.Printf("✗ Failed %s: %s", topic.Topic, result.Error)
		}

		bp.results = append(bp.results, result)
	}

	summary := bp.summarize()
	log.Printf("Batch complete: %d/%d succeeded, total cost $%.4f", summary.Succeeded, summary.Attempted, summary.TotalCost)
	return bp.results, summary, nil
}

// store forwards one successful result to every sink. Sink failures are
// logged and do not stop the batch.
func (bp *BatchPipeline) store(result *BlogResult) {
	for _, sink := range bp.sinks {
		if err := sink.Store(result); err != nil {
			log.Printf("✗ Sink %s failed for %q: %v", sink.Name(), result.Topic, err)
		}
	}
}

// summarize folds the accumulated results into a RunSummary.
func (bp *BatchPipeline) summarize() RunSummary {
	summary := RunSummary{
		Attempted:         len(bp.results),
		TotalInputTokens:  bp.totals.InputTokens,
		TotalOutputTokens: bp.totals.OutputTokens,
		TotalTokens:       bp.totals.InputTokens + bp.totals.OutputTokens,
		TotalCost:         bp.totals.Cost,
	}
	for _, r := range bp.results {
		if r.Status == StatusSuccess {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	if summary.Succeeded > 0 {
		summary.AvgCostPerBlog = summary.TotalCost / float64(summary.Succeeded)
	}
	if summary.TotalTokens > 0 {
		summary.CostPer1KTokens = summary.TotalCost * 1000 / float64(summary.TotalTokens)
	}
	return summary
}

// Totals returns the batch's running token and cost counters.
func (bp *BatchPipeline) Totals() RunningTotals {
	return bp.totals
}

// Results returns the results accumulated so far.
func (bp *BatchPipeline) Results() []BlogResult {
	return bp.results
}
