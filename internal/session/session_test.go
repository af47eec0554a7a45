package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededAccountsAreReady(t *testing.T) {
	m := NewMemory("acc-1", "acc-2", "")
	assert.True(t, m.Ready("acc-1"))
	assert.True(t, m.Ready("acc-2"))
	assert.False(t, m.Ready("acc-3"))
	assert.False(t, m.Ready(""))
	assert.Equal(t, 2, m.Count())
}

func TestMarkReadyAndLost(t *testing.T) {
	m := NewMemory()
	assert.False(t, m.Ready("acc-1"))

	m.MarkReady("acc-1")
	assert.True(t, m.Ready("acc-1"))

	m.MarkLost("acc-1")
	assert.False(t, m.Ready("acc-1"))

	m.MarkLost("never-seen")
	assert.Equal(t, 0, m.Count())
}
