package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccountType(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"GMAIL", "NAVER", "SMS", "KAKAO", "OCR", "OTHER"} {
		at, err := ParseAccountType(s)
		require.NoError(t, err)
		assert.Equal(t, s, at.String())
	}

	_, err := ParseAccountType("gmail")
	assert.Error(t, err)
	_, err = ParseAccountType("TELEGRAM")
	assert.Error(t, err)
}

func TestParseTaskStatus(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"PENDING", "REVIEW", "SNOOZED", "COMPLETED"} {
		st, err := ParseTaskStatus(s)
		require.NoError(t, err)
		assert.True(t, st.Valid())
	}

	_, err := ParseTaskStatus("DONE")
	assert.Error(t, err)
}

func TestParseDueBucket(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"TODAY", "WEEK", "MONTH"} {
		b, err := ParseDueBucket(s)
		require.NoError(t, err)
		assert.True(t, b.Valid())
	}

	_, err := ParseDueBucket("YEAR")
	assert.Error(t, err)
}
