package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSession = "projects/terrabook/agent/sessions/abc-123"

func TestFindContext(t *testing.T) {
	contexts := []Context{
		{Name: contextName(testSession, ctxBookingRequested)},
		{Name: contextName(testSession, ctxDateTimeProvided)},
	}

	found := findContext(contexts, ctxDateTimeProvided)
	require.NotNil(t, found)
	assert.Equal(t, contextName(testSession, ctxDateTimeProvided), found.Name)

	assert.Nil(t, findContext(contexts, ctxCancelConfirmation))
	assert.Nil(t, findContext(nil, ctxBookingRequested))
}

func TestFindContextIgnoresSessionPrefix(t *testing.T) {
	other := "projects/other/agent/sessions/zzz"
	contexts := []Context{{Name: contextName(other, ctxTerrainChosen)}}

	assert.NotNil(t, findContext(contexts, ctxTerrainChosen))
}

func TestSlotParamsRoundTrip(t *testing.T) {
	p := slotParams{
		Date:     "2026-03-10",
		Start:    "18:00",
		Display:  "10 mars 2026 à 18:00",
		Terrain:  "Terrain Central",
		UserID:   "u-1",
		OldStart: "16:30",
	}

	ctx := outputContext(testSession, ctxModifyConfirmation, defaultLifespan, p)
	assert.Equal(t, contextName(testSession, ctxModifyConfirmation), ctx.Name)
	assert.Equal(t, defaultLifespan, ctx.LifespanCount)

	got := slotParamsFrom(&ctx)
	assert.Equal(t, p, got)
}

func TestSlotParamsFromNilContext(t *testing.T) {
	assert.Equal(t, slotParams{}, slotParamsFrom(nil))
}

func TestSlotParamsOmitsEmptyFields(t *testing.T) {
	m := slotParams{Date: "2026-03-10"}.toMap()
	assert.Equal(t, map[string]any{"date": "2026-03-10"}, m)
}

func TestStringParamCoercions(t *testing.T) {
	params := map[string]any{
		"text":   "demain",
		"number": float64(18),
		"list":   []any{"samedi", "dimanche"},
		"empty":  []any{},
	}

	assert.Equal(t, "demain", stringParam(params, "text"))
	assert.Equal(t, "18", stringParam(params, "number"))
	assert.Equal(t, "samedi", stringParam(params, "list"))
	assert.Equal(t, "", stringParam(params, "empty"))
	assert.Equal(t, "", stringParam(params, "missing"))
	assert.Equal(t, "", stringParam(nil, "text"))
}
