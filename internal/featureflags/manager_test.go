package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_Values(t *testing.T) {
	m := NewManager("a=on,b=off,c=TRUE,d=false,e=1,f=0,g=maybe")

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, m.Enabled(name, 1), name)
	}
	for _, name := range []string{"b", "d", "f", "g", "missing"} {
		assert.False(t, m.Enabled(name, 1), name)
	}
}

func TestEnabled_Rollout(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,broken=x%")

	assert.True(t, m.Enabled("always", 0))
	assert.False(t, m.Enabled("never", 1))
	assert.False(t, m.Enabled("broken", 1))
	assert.False(t, m.Enabled("canary", 0), "anonymous callers are outside every rollout")

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", 42))
	}

	enabled := 0
	for uid := uint(1); uid <= 1000; uid++ {
		if m.Enabled("canary", uid) {
			enabled++
		}
	}
	assert.InDelta(t, 250, enabled, 80)
}

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager("")
	assert.True(t, m.Enabled(StatusTransitions, 1))
	assert.True(t, m.Enabled(CatalogBrowse, 1))
	assert.True(t, m.Enabled(ApplicationSummary, 1))

	m = NewManager(" Status_Transitions = off ")
	assert.False(t, m.Enabled(StatusTransitions, 1))
	assert.True(t, m.Enabled(CatalogBrowse, 1))
}

func TestNamesAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,=on,z=")

	assert.Equal(t, []string{ApplicationSummary, CatalogBrowse, StatusTransitions, "x", "y"}, m.Names())

	snap := m.Snapshot(123)
	assert.Len(t, snap, 5)
	assert.True(t, snap["x"])

	var nilManager *Manager
	assert.False(t, nilManager.Enabled("x", 1))
}
