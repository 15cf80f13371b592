// Package pipeline orchestrates per-unit correction: it decides which
// stages run for each text unit, in what order, isolates per-unit failures,
// and reports progress. Units are processed independently of one another —
// no cross-unit state, no correction cache — so a failure in one unit never
// taints another and results can be written back by index regardless of
// completion order.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mhryhorenko/pravka/internal/corrector"
	"github.com/mhryhorenko/pravka/internal/document"
	"github.com/mhryhorenko/pravka/internal/rules"
	"github.com/mhryhorenko/pravka/internal/sanitize"
)

// Order selects which stage runs first on each unit. Rules-first lets the
// model see already-normalized phrasing; LLM-first lets the rules do a
// final deterministic pass over the model output, so fixed-phrase rules win
// even if the model reverts them.
type Order int

const (
	RulesFirst Order = iota
	LLMFirst
)

// String implements fmt.Stringer.
func (o Order) String() string {
	if o == LLMFirst {
		return "llm-first"
	}
	return "rules-first"
}

// ParseOrder converts a user-facing order name to an Order.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "rules-first":
		return RulesFirst, nil
	case "llm-first":
		return LLMFirst, nil
	}
	return RulesFirst, fmt.Errorf("unknown order %q (want rules-first or llm-first)", s)
}

// Progress receives (completed, total) after each unit finishes, whether or
// not any stage actually ran on it. Fire-and-forget; it must not block.
type Progress func(completed, total int)

// Config controls a single document run. With both UseRules and UseLLM
// false the pipeline is a no-op and still succeeds.
type Config struct {
	UseRules bool
	UseLLM   bool
	Order    Order
	// Concurrency > 1 corrects that many units at a time. Output is
	// identical to sequential processing: units are independent and
	// results land in their own index slot.
	Concurrency int
	// UnitTimeout bounds each language-model call so a stuck call cannot
	// hang the whole document. Zero means no per-unit bound.
	UnitTimeout time.Duration
	Corrector   corrector.Config
}

// Result summarizes a run for reporting. Doc is the same document that was
// passed in, with every unit's Current reflecting the enabled stages.
type Result struct {
	Doc          *document.Document
	Corrected    int
	Skipped      int
	RuleFailures int
	LLMFailures  int
}

// Pipeline applies the configured stages to each unit of a document.
type Pipeline struct {
	rules    *rules.Set
	corr     corrector.Corrector
	progress Progress
}

// New creates a Pipeline. progress may be nil; corr may be nil when the
// LLM stage will not be enabled.
func New(rs *rules.Set, corr corrector.Corrector, progress Progress) *Pipeline {
	return &Pipeline{rules: rs, corr: corr, progress: progress}
}

// Process runs the configured stages over every unit in index order and
// returns a summary. Per-unit rule and corrector failures are isolated and
// recorded on the unit; only a misconfiguration aborts the run.
func (p *Pipeline) Process(ctx context.Context, doc *document.Document, cfg Config) (*Result, error) {
	if cfg.UseLLM && p.corr == nil {
		return nil, fmt.Errorf("LLM stage enabled but no corrector configured")
	}
	if cfg.UseRules && p.rules == nil {
		return nil, fmt.Errorf("rule stage enabled but no rule set configured")
	}

	total := doc.Len()

	if cfg.Concurrency > 1 && cfg.UseLLM {
		if err := p.processParallel(ctx, doc, cfg, total); err != nil {
			return nil, err
		}
	} else {
		for i, u := range doc.Units() {
			p.processUnit(ctx, u, cfg)
			p.report(i+1, total)
		}
	}

	return tally(doc), nil
}

// processParallel fans units out across cfg.Concurrency workers. Each unit
// mutates only its own slot, so no locking is needed beyond the completion
// counter that drives progress reporting.
func (p *Pipeline) processParallel(ctx context.Context, doc *document.Document, cfg Config, total int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	var mu sync.Mutex
	completed := 0

	for _, u := range doc.Units() {
		u := u
		g.Go(func() error {
			p.processUnit(gctx, u, cfg)

			mu.Lock()
			completed++
			n := completed
			mu.Unlock()
			p.report(n, total)
			return nil
		})
	}
	return g.Wait()
}

func (p *Pipeline) processUnit(ctx context.Context, u *document.Unit, cfg Config) {
	if cfg.Order == LLMFirst {
		if cfg.UseLLM {
			p.runLLM(ctx, u, cfg)
		}
		if cfg.UseRules {
			p.runRules(u)
		}
		return
	}
	if cfg.UseRules {
		p.runRules(u)
	}
	if cfg.UseLLM {
		p.runLLM(ctx, u, cfg)
	}
}

func (p *Pipeline) runRules(u *document.Unit) {
	out, applied, err := p.rules.Apply(u.Current)
	if err != nil {
		// The set already reverted to the pre-stage text.
		u.RuleError = err.Error()
		return
	}
	u.Current = out
	u.RulesApplied = append(u.RulesApplied, applied...)
}

func (p *Pipeline) runLLM(ctx context.Context, u *document.Unit, cfg Config) {
	if !sanitize.Eligible(u.Current) {
		u.Skipped = true
		return
	}

	callCtx := ctx
	if cfg.UnitTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cfg.UnitTimeout)
		defer cancel()
	}

	out, err := p.corr.Correct(callCtx, cfg.Corrector, u.Current)
	if err != nil {
		// Fail open: keep the pre-call text, leave LLMApplied false.
		u.LLMError = err.Error()
		return
	}
	u.Current = out
	u.LLMApplied = true
}

func (p *Pipeline) report(completed, total int) {
	if p.progress != nil {
		p.progress(completed, total)
	}
}

func tally(doc *document.Document) *Result {
	res := &Result{Doc: doc}
	for _, u := range doc.Units() {
		if u.Changed() {
			res.Corrected++
		}
		if u.Skipped {
			res.Skipped++
		}
		if u.RuleError != "" {
			res.RuleFailures++
		}
		if u.LLMError != "" {
			res.LLMFailures++
		}
	}
	return res
}
