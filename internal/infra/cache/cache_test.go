package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgendaKey_String(t *testing.T) {
	k := AgendaKey(12, "2025-01-01", "2025-01-31", "", "false")

	assert.Equal(t, "agenda:facility:12:2025-01-01:2025-01-31:-:false", k.String())
}

func TestScopePattern_DoesNotMatchPrefixedFacility(t *testing.T) {
	pattern := scopePattern("idjuv", EntityAgenda, FacilityScope(1))

	assert.Equal(t, "idjuv:agenda:facility:1:*", pattern)
	// Ключ объекта 12 не должен попадать под шаблон объекта 1
	other := "idjuv:" + AgendaKey(12, "2025-01-01").String()
	assert.NotContains(t, other, "idjuv:agenda:facility:1:")
}

func TestGenerationKey_OutsideScopePattern(t *testing.T) {
	gen := generationKey("idjuv", EntityAgenda, FacilityScope(1))

	assert.Equal(t, "idjuv:gen:agenda:facility:1", gen)
	assert.NotContains(t, gen, "idjuv:agenda:facility:1:")
	assert.Equal(t, "agenda:facility:1:g3:2025-01-01", AgendaKey(1, GenerationParam(3), "2025-01-01").String())
}

func TestNoopCache(t *testing.T) {
	ctx := context.Background()
	var c NoopCache

	require.NoError(t, c.Set(ctx, AgendaKey(1), []string{"x"}))

	var dst []string
	found, err := c.Get(ctx, AgendaKey(1), &dst)
	require.NoError(t, err)
	assert.False(t, found)

	gen, err := c.Generation(ctx, EntityAgenda, FacilityScope(1))
	require.NoError(t, err)
	assert.Zero(t, gen)
	assert.NoError(t, c.InvalidateScope(ctx, EntityAgenda, FacilityScope(1)))
}
