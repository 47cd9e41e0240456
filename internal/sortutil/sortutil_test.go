package sortutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"values-v21": 1, "drawable": 2, "layout": 3}
	assert.Equal(t, []string{"drawable", "layout", "values-v21"}, SortedKeys(m))
	assert.Empty(t, SortedKeys(map[string]int{}))
}
