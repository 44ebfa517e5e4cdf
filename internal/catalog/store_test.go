package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/energy"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cards.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const validCatalog = `
cards:
  - id: the_sun
    name: The Sun
    axes: {action: 80, tempo: 70, strategy: 45, visibility: 95}
    energy: {playful: 0.9, drama: 0.6}
    keywords: [Radiant, joyful]
    group: major
    rank: 19
    special: true
  - id: ace_of_cups
    name: Ace of Cups
    axes: {action: 40, tempo: 45, strategy: 15, visibility: 45}
    energy: {romantic: 0.9}
    keywords: [tender]
    group: cups
    rank: 1
`

func TestLoadEmbeddedDeck(t *testing.T) {
	s := NewStore("")
	cards, err := s.Load()
	require.NoError(t, err)
	require.Len(t, cards, 78)
	assert.Equal(t, 78, s.Len())

	majors := 0
	for _, c := range cards {
		if c.Special {
			majors++
			assert.Equal(t, GroupMajor, c.Group)
		}
		assert.NotEmpty(t, c.Keywords, c.ID)
	}
	assert.Equal(t, 22, majors)

	sun, ok := s.Lookup("the_sun")
	require.True(t, ok)
	assert.Equal(t, 0.9, sun.Affinity(energy.Playful))
	assert.Zero(t, sun.Affinity(energy.Utility))
}

func TestLoadIdempotent(t *testing.T) {
	s := NewStore(writeCatalog(t, validCatalog))
	first, err := s.Load()
	require.NoError(t, err)
	second, err := s.Load()
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second load differs (-first +second):\n%s", diff)
	}
	// a fresh store parsing the same file yields the same candidates
	third, err := NewStore(writeCatalog(t, validCatalog)).Load()
	require.NoError(t, err)
	if diff := cmp.Diff(first, third); diff != "" {
		t.Fatalf("reload differs (-first +third):\n%s", diff)
	}
}

func TestParseNormalizesKeywords(t *testing.T) {
	cards, err := Parse([]byte(validCatalog))
	require.NoError(t, err)
	assert.True(t, cards[0].HasKeyword("radiant"))
	assert.False(t, cards[0].HasKeyword("Radiant"))
	assert.Equal(t, [4]float64{8, 7, 4.5, 9.5}, cards[0].Axes.Scaled())
	assert.True(t, cards[1].IsMinor())
}

func TestGetBeforeLoad(t *testing.T) {
	_, err := NewStore("").Get()
	assert.ErrorIs(t, err, ErrCatalogUnavailable)

	_, err = NewStaticStore(nil).Get()
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestLoadFailureKeepsStoreUnavailable(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := s.Load()
	require.Error(t, err)
	_, err = s.Get()
	assert.True(t, errors.Is(err, ErrCatalogUnavailable))
	assert.Zero(t, s.Len())
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "affinity out of range",
			body: "cards:\n  - {id: a, name: A, axes: {action: 1, tempo: 1, strategy: 1, visibility: 1}, energy: {classic: 1.5}, group: cups, rank: 1}\n",
			want: "must be <= 1",
		},
		{
			name: "unknown energy key",
			body: "cards:\n  - {id: a, name: A, axes: {action: 1, tempo: 1, strategy: 1, visibility: 1}, energy: {cosmic: 0.5}, group: cups, rank: 1}\n",
			want: "one of",
		},
		{
			name: "axis above 100",
			body: "cards:\n  - {id: a, name: A, axes: {action: 101, tempo: 1, strategy: 1, visibility: 1}, energy: {classic: 0.5}, group: cups, rank: 1}\n",
			want: "Action",
		},
		{
			name: "missing name",
			body: "cards:\n  - {id: a, axes: {action: 1, tempo: 1, strategy: 1, visibility: 1}, energy: {classic: 0.5}, group: cups, rank: 1}\n",
			want: "Name is required",
		},
		{
			name: "unknown group",
			body: "cards:\n  - {id: a, name: A, axes: {action: 1, tempo: 1, strategy: 1, visibility: 1}, energy: {classic: 0.5}, group: coins, rank: 1}\n",
			want: "Group",
		},
		{
			name: "duplicate id",
			body: "cards:\n  - {id: a, name: A, axes: {action: 1, tempo: 1, strategy: 1, visibility: 1}, energy: {classic: 0.5}, group: cups, rank: 1}\n  - {id: a, name: B, axes: {action: 1, tempo: 1, strategy: 1, visibility: 1}, energy: {classic: 0.5}, group: cups, rank: 2}\n",
			want: "duplicate id",
		},
		{
			name: "empty",
			body: "cards: []\n",
			want: "Cards",
		},
		{
			name: "malformed",
			body: "cards: [",
			want: "decode catalog",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConcurrentLoad(t *testing.T) {
	s := NewStore("")
	var wg sync.WaitGroup
	results := make([][]Candidate, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cards, err := s.Load()
			if err == nil {
				results[i] = cards
			}
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		require.Len(t, r, 78)
		assert.Same(t, &results[0][0], &r[0])
	}
}
