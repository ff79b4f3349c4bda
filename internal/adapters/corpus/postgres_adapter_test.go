package corpus_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimsage/backend/internal/adapters/corpus"
	"github.com/claimsage/backend/internal/domain/entities"
	"github.com/claimsage/backend/internal/domain/repositories"
	"github.com/claimsage/backend/internal/infrastructure/clients/postgres"
)

func newMockAdapter(t *testing.T) (repositories.ClauseRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return corpus.NewPostgresAdapter(postgres.NewClientFromDB(db)), mock
}

func TestPostgresAdapter_LoadAll(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	rows := sqlmock.NewRows([]string{"clause_text", "embedding"}).
		AddRow("Knee surgery has a waiting period of 24 months.", "[0.25,-0.5,1]").
		AddRow("Dental care is covered for dependents.", nil)

	mock.ExpectQuery(`SELECT "clause_text", "embedding" FROM "policy_clauses" ORDER BY "position" ASC`).
		WillReturnRows(rows)

	got, err := adapter.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []float64{0.25, -0.5, 1}, got[0].Embedding)
	assert.False(t, got[1].HasEmbedding())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAdapter_LoadAll_EmptyTable(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(`SELECT "clause_text", "embedding" FROM "policy_clauses"`).
		WillReturnRows(sqlmock.NewRows([]string{"clause_text", "embedding"}))

	_, err := adapter.LoadAll(context.Background())

	assert.ErrorIs(t, err, repositories.ErrCorpusEmpty)
}

func TestPostgresAdapter_LoadAll_MalformedEmbedding(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	rows := sqlmock.NewRows([]string{"clause_text", "embedding"}).
		AddRow("Some clause.", "not-json")

	mock.ExpectQuery(`SELECT "clause_text", "embedding" FROM "policy_clauses"`).
		WillReturnRows(rows)

	_, err := adapter.LoadAll(context.Background())

	assert.ErrorIs(t, err, repositories.ErrCorpusMalformed)
}

func TestPostgresAdapter_RewriteAll(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "policy_clauses"`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "policy_clauses"`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := adapter.RewriteAll(context.Background(), []*entities.Clause{
		{Text: "first", Embedding: []float64{1, 0}},
		{Text: "second"},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
