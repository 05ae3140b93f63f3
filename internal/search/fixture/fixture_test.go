package fixture

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
default:
  - url: https://d.example
    title: Default
    snippet: Fallback page.
queries:
  Jaguar:
    - url: https://1.example
      title: Jaguar cat
      snippet: The jaguar is a big cat.
    - url: https://2.example
      title: Jaguar car
      snippet: A British car maker.
    - url: https://3.example
      title: Jaguar OS
      snippet: Mac OS X 10.2.
`

func TestSearch(t *testing.T) {
	p, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "fixture", p.Name())

	res, err := p.Search(context.Background(), "  jaguar ", 10)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, "https://1.example", res[0].URL)
	assert.Equal(t, "The jaguar is a big cat.", res[0].Snippet)

	res, err = p.Search(context.Background(), "jaguar", 2)
	require.NoError(t, err)
	assert.Len(t, res, 2)

	res, err = p.Search(context.Background(), "unknown query", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Default", res[0].Title)
}

func TestSearch_ResultsAreCopies(t *testing.T) {
	p, err := Parse([]byte(sample))
	require.NoError(t, err)
	res, _ := p.Search(context.Background(), "jaguar", 10)
	res[0].Title = "changed"
	again, _ := p.Search(context.Background(), "jaguar", 10)
	assert.Equal(t, "Jaguar cat", again[0].Title)
}

func TestSearch_CancelledContext(t *testing.T) {
	p, err := Parse([]byte(sample))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Search(ctx, "jaguar", 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	p, err := Load(path)
	require.NoError(t, err)
	res, err := p.Search(context.Background(), "JAGUAR", 10)
	require.NoError(t, err)
	assert.Len(t, res, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("queries: [not, a, map]"))
	assert.Error(t, err)
}
