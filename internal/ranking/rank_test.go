package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"redditqueue/internal/queue"
)

func item(id string, priority, age int) queue.ProcessedItem {
	return queue.ProcessedItem{ID: id, Priority: priority, AgeHours: age}
}

func ids(items []queue.ProcessedItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestRankOrdersByPriorityThenAge(t *testing.T) {
	in := []queue.ProcessedItem{
		item("low", 1, 2),
		item("hot-old", 8, 10),
		item("hot-fresh", 8, 1),
		item("negative", -5, 1),
		item("mid", 4, 50),
	}

	out := Rank(in)

	assert.Equal(t, []string{"hot-fresh", "hot-old", "mid", "low", "negative"}, ids(out))
}

func TestRankStableOnFullTies(t *testing.T) {
	in := []queue.ProcessedItem{
		item("first", 3, 5),
		item("second", 3, 5),
		item("third", 3, 5),
	}

	out := Rank(in)

	assert.Equal(t, []string{"first", "second", "third"}, ids(out), "discovery order survives ties")
}

func TestRankDoesNotMutateInput(t *testing.T) {
	in := []queue.ProcessedItem{
		item("a", 1, 0),
		item("b", 9, 0),
	}

	_ = Rank(in)

	assert.Equal(t, []string{"a", "b"}, ids(in))
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}
