package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickFallbackStable(t *testing.T) {
	// Same day, same pick: the whole family sees one tip per day.
	first := pickFallback(fallbackTips)
	second := pickFallback(fallbackTips)
	assert.Equal(t, first, second)
	assert.Contains(t, fallbackTips, first)
}

func TestFallbackListsAreUsable(t *testing.T) {
	assert.NotEmpty(t, fallbackTips)
	assert.NotEmpty(t, fallbackFacts)
	for _, s := range append(append([]string{}, fallbackTips...), fallbackFacts...) {
		assert.GreaterOrEqual(t, len([]rune(s)), minReplyLen, "fallback entries must pass the minimum length check")
	}
}
