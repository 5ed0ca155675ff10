package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storynest/storynest/models"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from string
		to   string
		want bool
	}{
		{models.StatusDraft, models.StatusPending, true},
		{models.StatusPending, models.StatusApproved, true},
		{models.StatusPending, models.StatusRejected, true},
		{models.StatusPending, models.StatusPending, true},
		{models.StatusApproved, models.StatusPending, true},
		{models.StatusRejected, models.StatusPending, true},

		{models.StatusDraft, models.StatusApproved, false},
		{models.StatusDraft, models.StatusRejected, false},
		{models.StatusApproved, models.StatusRejected, false},
		{models.StatusRejected, models.StatusApproved, false},
		{models.StatusApproved, models.StatusDraft, false},
		{models.StatusRejected, models.StatusDraft, false},
		{models.StatusPending, models.StatusDraft, false},

		{"bogus", models.StatusPending, false},
		{models.StatusPending, "bogus", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCanSubmit(t *testing.T) {
	// Authors may submit drafts and re-submit pending posts; approved and
	// rejected posts only come back to the queue through a parent's reopen.
	assert.True(t, CanSubmit(models.StatusDraft))
	assert.True(t, CanSubmit(models.StatusPending))
	assert.False(t, CanSubmit(models.StatusApproved))
	assert.False(t, CanSubmit(models.StatusRejected))
	assert.False(t, CanSubmit(""))
	assert.False(t, CanSubmit("bogus"))
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{models.StatusDraft, models.StatusPending, models.StatusApproved, models.StatusRejected} {
		assert.True(t, models.ValidStatus(s), s)
	}
	assert.False(t, models.ValidStatus("published"))
	assert.False(t, models.ValidStatus(""))
}
