package services

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storynest/storynest/models"
)

func postRows(id, userID uint, status string, publishedAt *time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "title", "status", "published_at"}).
		AddRow(id, userID, "My Story", status, publishedAt)
}

func TestSubmitPostDraftGoesToPending(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewModerationService(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `posts`")).
		WillReturnRows(postRows(1, 7, models.StatusDraft, nil))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `posts` SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	// Parent notification lookup; no parents configured, so no mail goes out.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "role", "email"}))

	post, err := svc.SubmitPost(1, 7)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, post.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitPostRefusesReviewedStates(t *testing.T) {
	// An author must not be able to pull an approved post back off the site
	// or resurrect a rejected one; only a parent's reopen does that.
	for _, status := range []string{models.StatusApproved, models.StatusRejected} {
		t.Run(status, func(t *testing.T) {
			db, mock := newMockDB(t)
			svc := NewModerationService(db, nil)

			now := time.Now()
			var published *time.Time
			if status == models.StatusApproved {
				published = &now
			}
			mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `posts`")).
				WillReturnRows(postRows(1, 7, status, published))

			_, err := svc.SubmitPost(1, 7)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			// No UPDATE was scripted: the refusal happens before any mutation.
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSubmitPostOwnershipCheckedFirst(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewModerationService(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `posts`")).
		WillReturnRows(postRows(1, 7, models.StatusDraft, nil))

	_, err := svc.SubmitPost(1, 99)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApprovePostAlreadyApprovedIsNoOp(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewModerationService(db, nil)

	published := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `posts`")).
		WillReturnRows(postRows(1, 7, models.StatusApproved, &published))

	post, awarded, err := svc.ApprovePost(1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, post.Status)
	assert.Empty(t, awarded)
	require.NotNil(t, post.PublishedAt)
	assert.True(t, post.PublishedAt.Equal(published), "published_at must stay at first approval")
	// No UPDATE, no XP grant: the scripted expectations end at the SELECT.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApprovePostNotFoundBeforeMutation(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewModerationService(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `posts`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "status", "published_at"}))

	_, _, err := svc.ApprovePost(404)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectPostAlreadyRejectedIsIdempotent(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewModerationService(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `posts`")).
		WillReturnRows(postRows(1, 7, models.StatusRejected, nil))

	post, err := svc.RejectPost(1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, post.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
