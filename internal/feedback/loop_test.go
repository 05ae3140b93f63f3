package feedback

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"qexpand/internal/domain"
	"qexpand/internal/text"
)

// fakeProvider returns one canned page per call; the last page repeats.
type fakeProvider struct {
	pages   [][]domain.Result
	queries []string
	err     error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Search(_ context.Context, query string, _ int) ([]domain.Result, error) {
	if p.err != nil {
		return nil, p.err
	}
	i := len(p.queries)
	p.queries = append(p.queries, query)
	if i >= len(p.pages) {
		i = len(p.pages) - 1
	}
	return p.pages[i], nil
}

// urlJudge marks results relevant by URL.
type urlJudge struct {
	relevant map[string]bool
	calls    []domain.JudgeRequest
	err      error
}

func (j *urlJudge) Judge(_ context.Context, req domain.JudgeRequest) (bool, error) {
	if j.err != nil {
		return false, j.err
	}
	j.calls = append(j.calls, req)
	return j.relevant[req.Result.URL], nil
}

type recorder struct {
	started  []int
	judged   int
	finished []Round
}

func (r *recorder) RoundStarted(n int, _ []string, _ float64) { r.started = append(r.started, n) }
func (r *recorder) ResultJudged(int, domain.JudgeRequest, bool) { r.judged++ }
func (r *recorder) RoundFinished(round Round, _ float64) { r.finished = append(r.finished, round) }

func page(texts ...string) []domain.Result {
	out := make([]domain.Result, len(texts))
	for i, t := range texts {
		out[i] = domain.Result{URL: fmt.Sprintf("u%d", i), Title: t}
	}
	return out
}

func relevantURLs(idx ...int) map[string]bool {
	m := make(map[string]bool, len(idx))
	for _, i := range idx {
		m[fmt.Sprintf("u%d", i)] = true
	}
	return m
}

func newTestLoop(t *testing.T, p domain.SearchProvider, j domain.Judge, cfg Config, opts ...Option) *Loop {
	t.Helper()
	if cfg.StopWords.Len() == 0 {
		cfg.StopWords = text.NewStopWords([]string{"the"})
	}
	l, err := NewLoop(p, j, cfg, append(opts, WithLogger(zap.NewNop()))...)
	require.NoError(t, err)
	return l
}

func TestNewLoop_Validation(t *testing.T) {
	_, err := NewLoop(nil, &urlJudge{}, Config{})
	assert.ErrorIs(t, err, ErrProviderRequired)

	_, err = NewLoop(&fakeProvider{}, nil, Config{})
	assert.ErrorIs(t, err, ErrJudgeRequired)

	l, err := NewLoop(&fakeProvider{}, &urlJudge{}, Config{}, WithLogger(nil), WithObserver(nil))
	require.NoError(t, err)
	assert.Equal(t, 10, l.cfg.ResultsPerRound)
	assert.Equal(t, 2, l.cfg.TermsPerRound)
	assert.Equal(t, 0.75, l.cfg.Coefficients.Beta)
}

func TestRun_InvalidInput(t *testing.T) {
	l := newTestLoop(t, &fakeProvider{pages: [][]domain.Result{page("x")}}, &urlJudge{}, Config{})

	_, err := l.Run(context.Background(), nil, 0.5)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	for _, target := range []float64{-0.1, 1.01} {
		_, err = l.Run(context.Background(), []string{"cat"}, target)
		assert.ErrorIs(t, err, ErrInvalidTarget)
	}
}

func TestRun_InsufficientResultsOnFirstRound(t *testing.T) {
	nine := page("a", "b", "c", "d", "e", "f", "g", "h", "i")
	for _, target := range []float64{0, 0.5, 1} {
		j := &urlJudge{relevant: relevantURLs(0, 1, 2, 3, 4, 5, 6, 7, 8)}
		l := newTestLoop(t, &fakeProvider{pages: [][]domain.Result{nine}}, j, Config{})

		out, err := l.Run(context.Background(), []string{"cat"}, target)
		require.NoError(t, err)
		assert.Equal(t, StatusInsufficientResults, out.Status)
		assert.Empty(t, j.calls, "nothing is judged")
	}
}

func TestRun_NoRelevant(t *testing.T) {
	ten := page("a", "b", "c", "d", "e", "f", "g", "h", "i", "j")
	l := newTestLoop(t, &fakeProvider{pages: [][]domain.Result{ten}}, &urlJudge{}, Config{})

	out, err := l.Run(context.Background(), []string{"cat"}, 0.1)
	require.NoError(t, err)
	assert.Equal(t, StatusNoRelevant, out.Status)
	require.Len(t, out.Rounds, 1)
	assert.Equal(t, 10, out.Rounds[0].Results)
	assert.Equal(t, 0.0, out.Precision)
}

func TestRun_SuccessWithoutExpansion(t *testing.T) {
	ten := page(
		"cat mouse", "dog", "cat mouse", "dog", "cat mouse",
		"dog", "cat mouse", "dog", "cat mouse", "dog",
	)
	p := &fakeProvider{pages: [][]domain.Result{ten}}
	j := &urlJudge{relevant: relevantURLs(0, 2, 4, 6, 8)}
	rec := &recorder{}
	l := newTestLoop(t, p, j, Config{}, WithObserver(rec))

	out, err := l.Run(context.Background(), []string{"cat"}, 0.5)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, out.Status)
	assert.Equal(t, []string{"cat"}, out.Query)
	assert.Equal(t, 0.5, out.Precision)
	assert.Len(t, p.queries, 1)
	assert.Empty(t, out.Rounds[0].Added)
	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, []int{1}, rec.started)
	assert.Equal(t, 10, rec.judged)
	assert.Len(t, rec.finished, 1)
	assert.Equal(t, map[string]float64{"cat": 5, "mouse": 5}, out.Rounds[0].Vocabulary.Map())
}

func TestRun_ExpandsThenSucceeds(t *testing.T) {
	first := page("a b b", "c", "c", "c", "c")
	second := page("a b", "a b", "a b", "a b", "a b")
	p := &fakeProvider{pages: [][]domain.Result{first, second}}
	j := &switchingJudge{first: &urlJudge{relevant: relevantURLs(0)}, after: 5}
	l := newTestLoop(t, p, j, Config{ResultsPerRound: 5})

	out, err := l.Run(context.Background(), []string{"a"}, 0.5)
	require.NoError(t, err)

	require.Len(t, out.Rounds, 2)
	r1 := out.Rounds[0]
	assert.Equal(t, StatusRunning, r1.Decision)
	assert.InDelta(t, 0.2, r1.Precision, 1e-12)
	require.NotEmpty(t, r1.Added)
	assert.Equal(t, "b", r1.Added[0])
	assert.Equal(t, []string{"b", "c"}, r1.Added)

	assert.Equal(t, []string{"a", "a b c"}, p.queries)
	assert.Equal(t, StatusSuccess, out.Status)
	assert.Equal(t, []string{"a", "b", "c"}, out.Query)
	assert.Equal(t, 1.0, out.Precision)
}

// switchingJudge delegates the first `after` calls and answers relevant afterwards.
type switchingJudge struct {
	first domain.Judge
	after int
	n     int
}

func (s *switchingJudge) Judge(ctx context.Context, req domain.JudgeRequest) (bool, error) {
	s.n++
	if s.n <= s.after {
		return s.first.Judge(ctx, req)
	}
	return true, nil
}

func TestRun_StallsWhenNoTermsLeft(t *testing.T) {
	ten := page("cat", "cat", "cat", "cat", "cat", "cat", "cat", "cat", "cat", "cat")
	l := newTestLoop(t, &fakeProvider{pages: [][]domain.Result{ten}}, &urlJudge{relevant: relevantURLs(0)}, Config{})

	out, err := l.Run(context.Background(), []string{"Cat"}, 0.9)
	require.NoError(t, err)

	assert.Equal(t, StatusNoExpansion, out.Status)
	assert.Equal(t, []string{"Cat"}, out.Query)
	assert.InDelta(t, 0.1, out.Precision, 1e-12)
}

func TestRun_ShortPageAfterFirstRound(t *testing.T) {
	first := page("x y", "z", "z", "z", "z", "z", "z", "z", "z", "z")
	second := page("x y", "x y", "q")
	p := &fakeProvider{pages: [][]domain.Result{first, second}}
	l := newTestLoop(t, p, &switchingJudge{first: &urlJudge{relevant: relevantURLs(0)}, after: 10}, Config{TermsPerRound: 1})

	out, err := l.Run(context.Background(), []string{"x"}, 0.9)
	require.NoError(t, err)

	require.Len(t, out.Rounds, 2)
	assert.Equal(t, []string{"y"}, out.Rounds[0].Added)
	assert.Equal(t, 3, out.Rounds[1].Results)
	assert.Equal(t, StatusSuccess, out.Status)
}

func TestRun_ProviderError(t *testing.T) {
	boom := errors.New("connection refused")
	l := newTestLoop(t, &fakeProvider{err: boom}, &urlJudge{}, Config{})

	_, err := l.Run(context.Background(), []string{"cat"}, 0.5)
	assert.ErrorIs(t, err, boom)
}

func TestRun_JudgeError(t *testing.T) {
	aborted := errors.New("aborted")
	ten := page("a", "b", "c", "d", "e", "f", "g", "h", "i", "j")
	l := newTestLoop(t, &fakeProvider{pages: [][]domain.Result{ten}}, &urlJudge{err: aborted}, Config{})

	_, err := l.Run(context.Background(), []string{"cat"}, 0.5)
	assert.ErrorIs(t, err, aborted)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := newTestLoop(t, &fakeProvider{pages: [][]domain.Result{page("a")}}, &urlJudge{}, Config{})

	_, err := l.Run(ctx, []string{"cat"}, 0.5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExcludedTerms(t *testing.T) {
	assert.Equal(t, []string{"Cat", "cat", "mouse", "mouse"}, excludedTerms([]string{"Cat", "mouse"}))
	assert.Equal(t, []string{"C++", "c", "don't", "dont"}, excludedTerms([]string{"C++", "don't"}))
	assert.Equal(t, []string{"?!"}, excludedTerms([]string{"?!"}))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "FAIL_NO_EXPANSION_POSSIBLE", StatusNoExpansion.String())
	assert.False(t, StatusRunning.Terminal())
	assert.True(t, StatusSuccess.Terminal())
	assert.False(t, StatusSuccess.Failed())
	assert.True(t, StatusNoRelevant.Failed())
}
