// Package report renders the console output of a feedback run.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"qexpand/internal/domain"
	"qexpand/internal/feedback"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	resultStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Params describes the invocation shown at the top of every round.
type Params struct {
	ClientKey string
	EngineKey string
	Provider  string
}

// Mask hides all but the last four characters of a credential.
func Mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

// Parameters renders the parameter block for a round.
func Parameters(p Params, query []string, target float64) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Parameters:") + "\n")
	if p.Provider != "" {
		fmt.Fprintf(&b, "%s = %s\n", labelStyle.Render("Provider   "), p.Provider)
	}
	if p.ClientKey != "" {
		fmt.Fprintf(&b, "%s = %s\n", labelStyle.Render("Client key "), Mask(p.ClientKey))
	}
	if p.EngineKey != "" {
		fmt.Fprintf(&b, "%s = %s\n", labelStyle.Render("Engine key "), p.EngineKey)
	}
	fmt.Fprintf(&b, "%s = %s\n", labelStyle.Render("Query      "), strings.Join(query, " "))
	fmt.Fprintf(&b, "%s = %g\n", labelStyle.Render("Precision  "), target)
	b.WriteString("\n" + headerStyle.Render("Search Results:") + "\n")
	b.WriteString("=======================")
	return b.String()
}

// Result renders a single search result for judging.
func Result(req domain.JudgeRequest) string {
	body := fmt.Sprintf("URL: %s\nTitle: %s\nSummary: %s", req.Result.URL, req.Result.Title, req.Result.Snippet)
	return headerStyle.Render(fmt.Sprintf("Result %d", req.Rank)) + "\n" + resultStyle.Render(body)
}

// Summary renders the feedback summary that closes a round.
func Summary(r feedback.Round, target float64) string {
	var b strings.Builder
	b.WriteString("\n" + headerStyle.Render("FEEDBACK SUMMARY") + "\n")
	b.WriteString("=======================\n")
	fmt.Fprintf(&b, "Query: %s\n", strings.Join(r.Query, " "))
	fmt.Fprintf(&b, "Precision: %g\n", r.Precision)

	switch r.Decision {
	case feedback.StatusSuccess:
		b.WriteString(successStyle.Render("Target precision reached!"))
	case feedback.StatusInsufficientResults:
		b.WriteString(failStyle.Render(fmt.Sprintf("Received only %d results in the first iteration", r.Results)))
	case feedback.StatusNoRelevant:
		b.WriteString(failStyle.Render("Below desired precision, but can no longer augment the query"))
	case feedback.StatusNoExpansion:
		b.WriteString(failStyle.Render("Below desired precision, but no new terms are left to augment the query"))
	default:
		fmt.Fprintf(&b, "%s\n", warnStyle.Render(fmt.Sprintf("Still below the desired precision of %g", target)))
		b.WriteString("Indexing results ....\n")
		next := append(append([]string(nil), r.Query...), r.Added...)
		fmt.Fprintf(&b, "Augmenting query to: %s", strings.Join(next, " "))
	}
	return b.String()
}

// Console prints round progress to w.
type Console struct {
	w      io.Writer
	params Params
}

// NewConsole creates a console reporter.
func NewConsole(w io.Writer, p Params) *Console {
	return &Console{w: w, params: p}
}

func (c *Console) RoundStarted(_ int, query []string, target float64) {
	fmt.Fprintln(c.w, Parameters(c.params, query, target))
}

func (c *Console) ResultJudged(int, domain.JudgeRequest, bool) {}

func (c *Console) RoundFinished(r feedback.Round, target float64) {
	fmt.Fprintln(c.w, Summary(r, target))
}
