package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"qexpand/internal/domain"
	"qexpand/internal/text"
)

// Model is the Bubble Tea model that asks for a judgment on one result.
type Model struct {
	req      domain.JudgeRequest
	viewport viewport.Model
	decided  bool
	relevant bool
	aborted  bool
}

// New creates a judgment prompt for req.
func New(req domain.JudgeRequest) Model {
	vp := viewport.New(80, 10)
	m := Model{req: req, viewport: vp}
	m.viewport.SetContent(m.renderResult())
	return m
}

// Init does nothing; the prompt waits for a key.
func (m Model) Init() tea.Cmd { return nil }

// Update handles key and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		fw, fh := resultBoxStyle.GetFrameSize()
		reserved := 3 // header, prompt, spacer
		m.viewport.Width = max(20, msg.Width-fw)
		m.viewport.Height = max(3, msg.Height-reserved-fh)
		m.viewport.SetContent(m.renderResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			m.aborted = true
			return m, tea.Quit
		}
		switch msg.String() {
		case "y", "Y":
			m.decided, m.relevant = true, true
			return m, tea.Quit
		case "n", "N", "enter":
			m.decided, m.relevant = true, false
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the result and the prompt. Once decided it collapses to a
// single line so the scrollback keeps a record of each answer.
func (m Model) View() string {
	if m.decided || m.aborted {
		verdict := irrelevantStyle.Render("not relevant")
		switch {
		case m.aborted:
			verdict = irrelevantStyle.Render("aborted")
		case m.relevant:
			verdict = relevantStyle.Render("relevant")
		}
		return fmt.Sprintf("Result %d/%d %s: %s\n", m.req.Rank, m.req.Total, m.req.Result.Title, verdict)
	}
	header := headerStyle.Render(fmt.Sprintf("Result %d/%d", m.req.Rank, m.req.Total))
	prompt := promptStyle.Render("Relevant (Y/N)? ")
	return header + "\n" + resultBoxStyle.Render(m.viewport.View()) + "\n" + prompt
}

// Relevant reports the judgment, if one was made.
func (m Model) Relevant() bool { return m.relevant }

// Decided reports whether the user answered.
func (m Model) Decided() bool { return m.decided }

// Aborted reports whether the user quit instead of answering.
func (m Model) Aborted() bool { return m.aborted }

func (m Model) renderResult() string {
	r := m.req.Result
	url := urlStyle.Render(r.URL)
	title := titleStyle.Render(r.Title)
	body := highlightBestSentence(r.Snippet, m.req.Query)
	return url + "\n" + title + "\n\n" + body
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	resultBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	urlStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle      = lipgloss.NewStyle().Bold(true)
	promptStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	relevantStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	irrelevantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func highlightBestSentence(snippet, query string) string {
	sentences := text.Sentences(snippet)
	if len(sentences) == 0 {
		return snippet
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestScore == 0 {
		return strings.Join(sentences, " ")
	}
	out := make([]string, len(sentences))
	for i, s := range sentences {
		if i == bestIdx {
			out[i] = highlightStyle.Render(s)
		} else {
			out[i] = s
		}
	}
	return strings.Join(out, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := text.Tokenize(s)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	seen := make(map[string]struct{})
	for _, t := range text.Tokenize(sentence) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
