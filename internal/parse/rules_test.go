package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreAllCategories(t *testing.T) {
	t.Parallel()

	// date + time + verb + deadline
	assert.Equal(t, 1.0, Score("내일 오후 2시까지 검토 부탁드립니다"))
	assert.Equal(t, 1.0, Score("please review by tomorrow 14:00, due friday"))
}

func TestScoreNoCues(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Score("hello"))
	assert.Equal(t, 0.0, Score("안녕하세요"))
}

func TestScoreSingleCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"date only", "내일 봅시다", 0.4},
		{"time only", "14:30쯤", 0.2},
		{"verb only", "서류 제출 바랍니다", 0.3},
		{"deadline only", "마감 임박", 0.1},
		{"date and verb", "tomorrow please reply", 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.text), 1e-9)
		})
	}
}

func TestScoreCategoryDoesNotSaturateBeyondWeight(t *testing.T) {
	t.Parallel()

	// Three date cues still contribute a single 0.4.
	assert.InDelta(t, 0.4, Score("오늘 내일 모레"), 1e-9)
	// Multiple verbs still contribute a single 0.3.
	assert.InDelta(t, 0.3, Score("확인 검토 제출 reply submit"), 1e-9)
}

func TestScoreIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, Score("REVIEW DUE TOMORROW"), Score("review due tomorrow"), 1e-9)
}
