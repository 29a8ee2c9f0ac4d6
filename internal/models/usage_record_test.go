package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncatePrompt(t *testing.T) {
	assert.Equal(t, "short", TruncatePrompt("short"))
	assert.Equal(t, "", TruncatePrompt(""))

	long := strings.Repeat("a", PromptExcerptLimit+100)
	truncated := TruncatePrompt(long)
	assert.Len(t, truncated, PromptExcerptLimit)
}

func TestTruncatePrompt_MultibyteSafe(t *testing.T) {
	long := strings.Repeat("日", PromptExcerptLimit+10)
	truncated := TruncatePrompt(long)

	assert.Equal(t, PromptExcerptLimit, len([]rune(truncated)))
	// No broken rune at the cut point.
	assert.True(t, strings.HasSuffix(truncated, "日"))
}
