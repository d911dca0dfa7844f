package parse

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskpilot/internal/model"
)

func TestParseDraftFromReceipt(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, 5, 1, 9, 0, 0, 0, seoul)
	text := "\n\n전기요금 고지서\n내일까지 납부\n금액: 45,000원"

	draft := newTestNormalizer().ParseDraft(text, ref)

	assert.Equal(t, "전기요금 고지서", draft.Title)
	require.NotNil(t, draft.DueAt)
	assert.Equal(t, time.Date(2024, 5, 2, 9, 0, 0, 0, seoul), *draft.DueAt)
	assert.Equal(t, model.BucketWeek, draft.Bucket)
	assert.InDelta(t, 0.5, draft.Score, 1e-9) // date + deadline cues
}

func TestParseDraftWithoutCues(t *testing.T) {
	t.Parallel()

	draft := newTestNormalizer().ParseDraft("쇼핑 리스트\n우유\n계란", time.Now())

	assert.Equal(t, "쇼핑 리스트", draft.Title)
	assert.Nil(t, draft.DueAt)
	assert.Equal(t, model.BucketMonth, draft.Bucket)
	assert.Equal(t, 0.0, draft.Score)
}

func TestParseDraftBlankTextFallsBackToDefaultTitle(t *testing.T) {
	t.Parallel()

	draft := newTestNormalizer().ParseDraft("   \n\n  ", time.Now())
	assert.Equal(t, "OCR Task", draft.Title)
}

func TestParseDraftBoundsTitleAndDescription(t *testing.T) {
	t.Parallel()

	firstLine := strings.Repeat("a", 100)
	text := firstLine + "\n" + strings.Repeat("b", 1000)
	draft := newTestNormalizer().ParseDraft(text, time.Now())

	assert.Equal(t, 60, len([]rune(draft.Title)))
	assert.Equal(t, 400, len([]rune(draft.Description)))
}
