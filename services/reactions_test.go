package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestReactionIDDeterministic(t *testing.T) {
	a := ReactionID(42, "heart")
	b := ReactionID(42, "heart")
	assert.Equal(t, a, b, "same post and kind must map to the same id")

	_, err := uuid.Parse(a)
	assert.NoError(t, err, "reaction id must be a valid UUID")
}

func TestReactionIDDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, postID := range []uint{1, 2, 42} {
		for _, kind := range KnownReactionKinds {
			id := ReactionID(postID, kind)
			assert.False(t, seen[id], "collision for post %d kind %s", postID, kind)
			seen[id] = true
		}
	}
}

func TestValidReactionKind(t *testing.T) {
	for _, k := range []string{"heart", "star", "laugh", "wow"} {
		assert.True(t, ValidReactionKind(k), k)
	}
	for _, k := range []string{"", "thumbsup", "HEART", "heart "} {
		assert.False(t, ValidReactionKind(k), k)
	}
}
