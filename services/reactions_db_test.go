package services

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storynest/storynest/models"
)

func expectPostExists(mock sqlmock.Sqlmock, postID uint) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `id` FROM `posts`")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(postID))
}

func TestToggleDoubleToggleNetsToZero(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewReactionService(db)

	id := ReactionID(5, "heart")

	// First toggle: no row yet, insert happens, reaction is on.
	expectPostExists(mock, 5)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `reactions`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "target_type", "target_id", "kind"}))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `reactions`")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	on, err := svc.Toggle(5, "heart")
	require.NoError(t, err)
	assert.True(t, on)

	// Second toggle: the row exists, delete happens, reaction is off again.
	expectPostExists(mock, 5)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `reactions`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "target_type", "target_id", "kind"}).
			AddRow(id, models.ReactionTargetPost, id, "heart"))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `reactions`")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	on, err = svc.Toggle(5, "heart")
	require.NoError(t, err)
	assert.False(t, on)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleUnknownKindRejectedBeforeAnyQuery(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewReactionService(db)

	_, err := svc.Toggle(5, "thumbsup")
	assert.ErrorIs(t, err, ErrInvalidKind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleMissingPost(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewReactionService(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `id` FROM `posts`")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Toggle(404, "heart")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
