package services

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func badgeCatalogRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "criteria_type", "criteria_threshold"}).
		AddRow(1, "First Story", CriteriaPostCount, 1)
}

func expectCatalogAndEarned(mock sqlmock.Sqlmock, earned *sqlmock.Rows) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `badges`")).
		WillReturnRows(badgeCatalogRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `user_badges`")).
		WillReturnRows(earned)
}

func expectApprovedPosts(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `posts`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status", "created_at"}).
			AddRow(3, 7, "approved", time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `post_tags`")).
		WillReturnRows(sqlmock.NewRows([]string{"post_id", "tag_id"}))
}

func TestEvaluateAwardsOnceThenReturnsEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	ev := NewBadgeEvaluator(db, nil)

	// First pass: nothing earned yet, one approved post meets the threshold,
	// the insert lands.
	expectCatalogAndEarned(mock, sqlmock.NewRows([]string{"id", "user_id", "badge_id"}))
	expectApprovedPosts(mock)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `user_badges`")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	awarded, err := ev.Evaluate(7)
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	assert.Equal(t, uint(1), awarded[0].BadgeID)
	assert.Equal(t, "First Story", awarded[0].BadgeName)

	// Second pass: the badge row now exists, so the evaluator stops before
	// even reading posts and reports nothing new.
	expectCatalogAndEarned(mock, sqlmock.NewRows([]string{"id", "user_id", "badge_id"}).
		AddRow(1, 7, 1))

	awarded, err = ev.Evaluate(7)
	require.NoError(t, err)
	assert.Empty(t, awarded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluateIgnoredDuplicateIsNotReported(t *testing.T) {
	// A concurrent evaluation can win the insert race; the conflict-ignoring
	// upsert then affects zero rows and the badge must not be reported as
	// newly awarded by this call.
	db, mock := newMockDB(t)
	ev := NewBadgeEvaluator(db, nil)

	expectCatalogAndEarned(mock, sqlmock.NewRows([]string{"id", "user_id", "badge_id"}))
	expectApprovedPosts(mock)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `user_badges`")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	awarded, err := ev.Evaluate(7)
	require.NoError(t, err)
	assert.Empty(t, awarded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluateBelowThresholdNoInsert(t *testing.T) {
	db, mock := newMockDB(t)
	ev := NewBadgeEvaluator(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `badges`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "criteria_type", "criteria_threshold"}).
			AddRow(2, "Prolific Author", CriteriaPostCount, 5))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `user_badges`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "badge_id"}))
	expectApprovedPosts(mock)

	awarded, err := ev.Evaluate(7)
	require.NoError(t, err)
	assert.Empty(t, awarded)
	// One post against a threshold of five: no INSERT was scripted or issued.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluateUntrackedCriteriaNeverAutoAwards(t *testing.T) {
	db, mock := newMockDB(t)
	ev := NewBadgeEvaluator(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `badges`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "criteria_type", "criteria_threshold"}).
			AddRow(3, "Helper", "helpful_comments", 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `user_badges`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "badge_id"}))

	awarded, err := ev.Evaluate(7)
	require.NoError(t, err)
	assert.Empty(t, awarded)
	// Untracked criteria short-circuit before the posts read.
	assert.NoError(t, mock.ExpectationsWereMet())
}
