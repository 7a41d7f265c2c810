// Package normalization runs the full pipeline over one relation: first
// normal form, candidate keys, key selection and the second normal form
// decomposition.
package normalization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"relnorm/internal/decompose"
	"relnorm/internal/domain"
	"relnorm/internal/heuristic"
	"relnorm/internal/keys"
	"relnorm/internal/normalize"
)

// DefaultPrefix names relations when Options.Prefix is empty.
const DefaultPrefix = "EXCEL_DATA"

// Options tune a single run. Zero values select the defaults.
type Options struct {
	Prefix           string
	Delimiter        string
	Rules            heuristic.Chain
	MaxKeyAttributes int
}

func (o Options) withDefaults() Options {
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if o.Delimiter == "" {
		o.Delimiter = normalize.DefaultDelimiter
	}
	if o.Rules == nil {
		o.Rules = heuristic.Default()
	}
	return o
}

// Result is everything a run produced.
type Result struct {
	RunID         string                      `json:"runId"`
	Outcome       domain.Outcome              `json:"outcome"`
	FirstNF       domain.Relation             `json:"firstNormalForm"`
	CandidateKeys []domain.AttributeSet       `json:"candidateKeys"`
	SelectedKey   domain.AttributeSet         `json:"selectedKey"`
	Relations     []domain.DecomposedRelation `json:"relations"`
	Warnings      []domain.Warning            `json:"warnings"`
}

// Service drives the normalization pipeline.
type Service struct {
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(logger *slog.Logger) *Service {
	return &Service{logger: logger}
}

// Run normalizes raw. Every stage builds a fresh relation; raw is never
// modified. Degenerate inputs (no rows, no candidate key, unmappable names)
// produce warnings rather than errors. The only error is cancellation of
// ctx, which is checked between stages.
func (s *Service) Run(ctx context.Context, raw domain.Relation, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	res := &Result{
		RunID:         domain.NewRunID(),
		FirstNF:       domain.Relation{},
		CandidateKeys: []domain.AttributeSet{},
		Relations:     []domain.DecomposedRelation{},
		Warnings:      []domain.Warning{},
	}
	logger := s.logger.With("run_id", res.RunID, "prefix", opts.Prefix)

	if len(raw) == 0 {
		res.Outcome = domain.OutcomeEmpty
		logger.Info("empty input, nothing to normalize")
		return res, nil
	}
	logger.Debug("normalization started", "rows", len(raw), "columns", len(raw.Columns()), "rules", opts.Rules.Names())

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("normalization canceled: %w", err)
	}
	first := &normalize.FirstNormalizer{Rules: opts.Rules, Delimiter: opts.Delimiter}
	res.FirstNF = first.ToFirstNormalForm(raw)
	logger.Debug("first normal form", "rows", len(res.FirstNF), "columns", len(res.FirstNF.Columns()))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("normalization canceled: %w", err)
	}
	dec := decompose.Decomposer{Prefix: opts.Prefix}
	found, err := keys.Synthesizer{MaxAttributes: opts.MaxKeyAttributes}.CandidateKeys(res.FirstNF)
	switch {
	case errors.Is(err, keys.ErrTooManyAttributes):
		return s.fallback(logger, res, dec, domain.NewWarning(domain.WarnKeySearchLimited,
			"%v; relation %s emitted without keys", err, dec.MainName())), nil
	case err != nil:
		return nil, fmt.Errorf("find candidate keys: %w", err)
	}
	if found != nil {
		res.CandidateKeys = found
	}
	logger.Debug("candidate keys", "count", len(found), "keys", found)

	key, ok := keys.Select(found)
	if !ok {
		return s.fallback(logger, res, dec, domain.NewWarning(domain.WarnNoCandidateKey,
			"no candidate key found (duplicate rows?); relation %s emitted without keys", dec.MainName())), nil
	}
	res.SelectedKey = key
	logger.Debug("selected key", "key", key.String())

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("normalization canceled: %w", err)
	}
	out := dec.Decompose(res.FirstNF, key)
	res.Outcome = out.Outcome
	res.Relations = out.Relations
	res.Warnings = append(res.Warnings, out.Warnings...)
	for _, w := range out.Warnings {
		logger.Warn("normalization warning", "code", w.Code, "message", w.Message)
	}

	logger.Info("normalization finished",
		"outcome", res.Outcome,
		"relations", len(res.Relations),
		"determinant", out.Determinant,
		"dependent", out.Dependent,
	)
	return res, nil
}

func (s *Service) fallback(logger *slog.Logger, res *Result, dec decompose.Decomposer, w domain.Warning) *Result {
	logger.Warn("normalization warning", "code", w.Code, "message", w.Message)
	res.Outcome = domain.OutcomeFallback
	res.Relations = []domain.DecomposedRelation{dec.Unkeyed(res.FirstNF)}
	res.Warnings = append(res.Warnings, w)
	logger.Info("normalization finished", "outcome", res.Outcome, "relations", 1)
	return res
}
