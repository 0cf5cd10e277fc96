package inline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneFullRateKeepsEverything(t *testing.T) {
	counter := Counter{"a": 3, "b": 2, "c": 1}
	pruned := Prune(counter, 1.0)
	assert.Equal(t, counter, pruned)
}

func TestPruneZeroRateKeepsTopClass(t *testing.T) {
	counter := Counter{"a": 9, "b": 9, "c": 2, "d": 1}
	pruned := Prune(counter, 0.0)

	require.NotEmpty(t, pruned)
	assert.Contains(t, pruned, "a")
	assert.Contains(t, pruned, "b")
	assert.NotContains(t, pruned, "c")
	assert.NotContains(t, pruned, "d")
}

func TestPruneKeepsBoundaryTies(t *testing.T) {
	// Rate 0.5 over six entries: emission may only stop at a count
	// boundary, so every entry sharing the boundary count survives.
	counter := Counter{"a": 5, "b": 4, "c": 3, "d": 3, "e": 3, "f": 1}
	pruned := Prune(counter, 0.5)

	assert.Equal(t, Counter{"a": 5, "b": 4, "c": 3, "d": 3, "e": 3}, pruned)
}

func TestPruneEmptyCounter(t *testing.T) {
	assert.Empty(t, Prune(Counter{}, 0.5))
}

func TestPruneDeterministic(t *testing.T) {
	counter := Counter{}
	for _, key := range []string{"q", "w", "e", "r", "t", "y", "u", "i", "o", "p"} {
		counter[key] = len(key) + 2
	}
	first := Prune(counter, 0.3)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Prune(counter, 0.3))
	}
}

func TestTruncateTailUniformCountsUnchanged(t *testing.T) {
	// One count class only: no distribution value exceeds the median,
	// truncation leaves the counter alone.
	counter := Counter{"a": 2, "b": 2, "c": 2}
	assert.Equal(t, counter, truncateTail(counter))
}

func TestTruncateTailDropsCrowdedCounts(t *testing.T) {
	// Ten entries share count 1, three share count 2, counts 7 and 9
	// have one each. The distribution values are {10, 3, 1, 1} with
	// median 2 and upper list [3, 10], clipped at 3: the crowded
	// count-1 class disappears.
	counter := Counter{"e": 7, "f": 9}
	for _, key := range []string{"p", "q", "r"} {
		counter[key] = 2
	}
	for _, key := range []string{"a", "b", "c", "d", "g", "h", "i", "j", "k", "l"} {
		counter[key] = 1
	}

	truncated := truncateTail(counter)

	assert.Equal(t, Counter{"e": 7, "f": 9, "p": 2, "q": 2, "r": 2}, truncated)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, median([]int{1, 2, 3}))
	assert.Equal(t, 2.5, median([]int{1, 2, 3, 4}))
	assert.Equal(t, 5.0, median([]int{5}))
}
