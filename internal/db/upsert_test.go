package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertBuildsOnConflictStatement(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO "profiles" \("agency_key", "run_id", "profile"\) VALUES \(\$1, \$2, \$3\) ON CONFLICT \("agency_key"\) DO UPDATE SET "run_id" = EXCLUDED\."run_id", "profile" = EXCLUDED\."profile"`).
		WithArgs("randstad", "run-1", []byte(`{}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n, err := Upsert(context.Background(), mock, UpsertConfig{
		Table:        "profiles",
		Columns:      []string{"agency_key", "run_id", "profile"},
		ConflictKeys: []string{"agency_key"},
	}, []any{"randstad", "run-1", []byte(`{}`)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertValidation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = Upsert(context.Background(), mock, UpsertConfig{Table: "profiles"}, nil)
	assert.Error(t, err)

	_, err = Upsert(context.Background(), mock, UpsertConfig{
		Table:        "profiles",
		Columns:      []string{"a", "b"},
		ConflictKeys: []string{"a"},
	}, []any{"only-one"})
	assert.Error(t, err)
}

func TestCopyFromEmptyRowsIsNoop(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	n, err := CopyFrom(context.Background(), mock, "evidence", []string{"run_id", "url"}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"evidence"}, []string{"run_id", "url"}).WillReturnResult(2)

	n, err := CopyFrom(context.Background(), mock, "evidence", []string{"run_id", "url"}, [][]any{
		{"run-1", "https://www.voorbeeld.nl/a"},
		{"run-1", "https://www.voorbeeld.nl/b"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
