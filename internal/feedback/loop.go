// Package feedback runs interactive relevance-feedback rounds: search, judge,
// score, then stop or expand the query with Rocchio and search again.
package feedback

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"qexpand/internal/domain"
	"qexpand/internal/rocchio"
	"qexpand/internal/text"
	"qexpand/internal/vector"
)

const (
	defaultResultsPerRound = 10
	defaultTermsPerRound   = 2
)

// Config holds the run-wide settings of a Loop.
type Config struct {
	StopWords       text.StopWords
	ResultsPerRound int
	TermsPerRound   int
	Coefficients    rocchio.Coefficients
}

// Round records what happened in one search-and-judge cycle.
type Round struct {
	Number    int
	Query     []string
	Results   int
	Relevant  int
	Precision float64
	Decision  Status
	// Added holds the terms appended for the next round when Decision is StatusRunning.
	Added []string
	// Vocabulary is the cumulative bag of words of relevant results up to this round.
	Vocabulary *vector.TermVector
}

// Outcome is the terminal result of a run.
type Outcome struct {
	RunID     string
	Status    Status
	Query     []string
	Precision float64
	Rounds    []Round
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(loop *Loop) {
		if l != nil {
			loop.logger = l
		}
	}
}

// WithObserver registers an observer for round progress.
func WithObserver(o Observer) Option {
	return func(loop *Loop) {
		if o != nil {
			loop.observer = o
		}
	}
}

// Loop drives feedback rounds until a terminal state is reached.
type Loop struct {
	provider domain.SearchProvider
	judge    domain.Judge
	cfg      Config
	expander *rocchio.Expander
	logger   *zap.Logger
	observer Observer
	tracer   trace.Tracer
}

// NewLoop creates a Loop. Zero ResultsPerRound, TermsPerRound and
// Coefficients fall back to 10, 2 and rocchio.DefaultCoefficients.
func NewLoop(provider domain.SearchProvider, judge domain.Judge, cfg Config, opts ...Option) (*Loop, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if judge == nil {
		return nil, ErrJudgeRequired
	}
	if cfg.ResultsPerRound <= 0 {
		cfg.ResultsPerRound = defaultResultsPerRound
	}
	if cfg.TermsPerRound <= 0 {
		cfg.TermsPerRound = defaultTermsPerRound
	}
	if cfg.Coefficients == (rocchio.Coefficients{}) {
		cfg.Coefficients = rocchio.DefaultCoefficients
	}
	l := &Loop{
		provider: provider,
		judge:    judge,
		cfg:      cfg,
		expander: rocchio.NewExpander(cfg.Coefficients),
		logger:   zap.NewNop(),
		observer: nopObserver{},
		tracer:   otel.Tracer("qexpand/feedback"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Run executes rounds starting from the literal query terms until the judged
// precision reaches target or a failure state is hit. Terminal failures are
// reported in the Outcome; errors are returned only for invalid input,
// provider failures and aborted judgments.
func (l *Loop) Run(ctx context.Context, query []string, target float64) (Outcome, error) {
	if len(query) == 0 {
		return Outcome{}, ErrEmptyQuery
	}
	if math.IsNaN(target) || target < 0 || target > 1 {
		return Outcome{}, fmt.Errorf("%w: got %v", ErrInvalidTarget, target)
	}

	out := Outcome{RunID: uuid.NewString(), Status: StatusRunning}
	logger := l.logger.With(zap.String("run_id", out.RunID))
	current := append([]string(nil), query...)
	vocabulary := vector.New(0)

	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		r, err := l.round(ctx, logger, n, current, target, vocabulary)
		if err != nil {
			return out, err
		}
		out.Rounds = append(out.Rounds, r)
		out.Query = r.Query
		out.Precision = r.Precision
		out.Status = r.Decision
		l.observer.RoundFinished(r, target)

		if r.Decision.Terminal() {
			logger.Info("feedback finished",
				zap.Stringer("status", r.Decision),
				zap.Int("rounds", n),
				zap.Float64("precision", r.Precision),
				zap.Strings("query", r.Query),
			)
			return out, nil
		}
		current = append(append([]string(nil), r.Query...), r.Added...)
	}
}

func (l *Loop) round(ctx context.Context, logger *zap.Logger, n int, query []string, target float64, vocabulary *vector.TermVector) (Round, error) {
	ctx, span := l.tracer.Start(ctx, "feedback.round", trace.WithAttributes(attribute.Int("round", n)))
	defer span.End()

	r := Round{Number: n, Query: query, Decision: StatusRunning}
	joined := strings.Join(query, " ")
	l.observer.RoundStarted(n, query, target)
	logger.Debug("round started", zap.Int("round", n), zap.String("query", joined))

	results, err := l.provider.Search(ctx, joined, l.cfg.ResultsPerRound)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return r, fmt.Errorf("search %q via %s: %w", joined, l.provider.Name(), err)
	}
	if len(results) > l.cfg.ResultsPerRound {
		results = results[:l.cfg.ResultsPerRound]
	}
	r.Results = len(results)

	if n == 1 && len(results) < l.cfg.ResultsPerRound {
		logger.Info("too few results on first round", zap.Int("results", len(results)))
		return l.decide(span, r, StatusInsufficientResults), nil
	}

	var relevant, nonRelevant []*vector.TermVector
	for i, res := range results {
		bag := text.BagOfWords(res.Text(), l.cfg.StopWords)
		req := domain.JudgeRequest{Result: res, Rank: i + 1, Total: len(results), Query: joined}
		ok, err := l.judge.Judge(ctx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return r, fmt.Errorf("judge result %d: %w", i+1, err)
		}
		l.observer.ResultJudged(n, req, ok)
		if ok {
			relevant = append(relevant, bag)
			vector.MergeAdd(vocabulary, bag)
			r.Relevant++
		} else {
			nonRelevant = append(nonRelevant, bag)
		}
	}
	r.Vocabulary = vector.Sum(vocabulary)
	logger.Debug("round judged",
		zap.Int("round", n),
		zap.Int("results", r.Results),
		zap.Int("relevant", r.Relevant),
		zap.Int("vocabulary", vocabulary.Len()),
	)

	if r.Relevant == 0 {
		return l.decide(span, r, StatusNoRelevant), nil
	}
	r.Precision = float64(r.Relevant) / float64(r.Results)
	if r.Precision >= target {
		return l.decide(span, r, StatusSuccess), nil
	}

	queryVec := text.BagOfWords(joined, l.cfg.StopWords)
	expanded := l.expander.Expand(queryVec, relevant, nonRelevant)
	r.Added = rocchio.SelectNewTerms(expanded, excludedTerms(query), l.cfg.TermsPerRound)
	if len(r.Added) == 0 {
		logger.Warn("no candidate terms left to expand query", zap.Int("round", n))
		return l.decide(span, r, StatusNoExpansion), nil
	}
	logger.Info("query expanded",
		zap.Int("round", n),
		zap.Float64("precision", r.Precision),
		zap.Strings("added", r.Added),
	)
	span.SetAttributes(attribute.StringSlice("added", r.Added))
	return l.decide(span, r, StatusRunning), nil
}

func (l *Loop) decide(span trace.Span, r Round, s Status) Round {
	r.Decision = s
	span.SetAttributes(
		attribute.String("decision", s.String()),
		attribute.Float64("precision", r.Precision),
		attribute.Int("relevant", r.Relevant),
	)
	return r
}

// excludedTerms returns the literal query terms plus their normalized tokens,
// so that "Cat" in the query also blocks "cat".
func excludedTerms(query []string) []string {
	out := make([]string, 0, len(query)*2)
	for _, q := range query {
		out = append(out, q)
		out = append(out, text.Tokenize(q)...)
	}
	return out
}
