package intelligence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPruneBoundary(t *testing.T) {
	engine := NewDecayEngine(90, 0.1)
	scores := map[int]float64{
		1: 0.1,
		2: 0.1 - 1e-9,
		3: 0.1 + 1e-9,
		4: 0,
	}

	engine.prune(scores)

	assert.Contains(t, scores, 1, "a score exactly at the floor is kept")
	assert.NotContains(t, scores, 2)
	assert.Contains(t, scores, 3)
	assert.NotContains(t, scores, 4)
}
