package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/claimsage/backend/internal/domain/entities"
	"github.com/claimsage/backend/internal/domain/repositories"
	"github.com/claimsage/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/claimsage/backend/pkg/errors"
)

const clausesTable = "policy_clauses"

// undefinedTable is the Postgres error code for a missing relation.
const undefinedTable = "42P01"

// PostgresAdapter implements ClauseRepository over a Postgres table.
// Clauses are ordered by their position column; embeddings are stored as
// JSON text so float64 vectors round-trip without lossy rounding.
type PostgresAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPostgresAdapter creates a Postgres-backed clause repository.
func NewPostgresAdapter(client *postgres.Client) repositories.ClauseRepository {
	return &PostgresAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// LoadAll loads every clause in position order.
func (a *PostgresAdapter) LoadAll(ctx context.Context) ([]*entities.Clause, error) {
	query, args, err := a.db.Select("clause_text", "embedding").
		From(clausesTable).
		Order(goqu.I("position").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build clause query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == undefinedTable {
			return nil, fmt.Errorf("%w: table %s does not exist", repositories.ErrCorpusNotFound, clausesTable)
		}
		return nil, apperrors.NewInternalError("failed to load clause corpus", err)
	}
	defer rows.Close()

	var clauses []*entities.Clause
	for rows.Next() {
		clause := &entities.Clause{}
		var embedding sql.NullString

		if err := rows.Scan(&clause.Text, &embedding); err != nil {
			return nil, apperrors.NewInternalError("failed to scan clause", err)
		}

		if embedding.Valid && embedding.String != "" {
			if err := json.Unmarshal([]byte(embedding.String), &clause.Embedding); err != nil {
				return nil, fmt.Errorf("%w: bad embedding payload: %v", repositories.ErrCorpusMalformed, err)
			}
		}

		clauses = append(clauses, clause)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate clause corpus", err)
	}

	if len(clauses) == 0 {
		return nil, fmt.Errorf("%w: table %s holds no rows", repositories.ErrCorpusEmpty, clausesTable)
	}

	return clauses, nil
}

// RewriteAll replaces the whole corpus in one transaction, preserving the
// given order via the position column.
func (a *PostgresAdapter) RewriteAll(ctx context.Context, clauses []*entities.Clause) error {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin corpus rewrite", err)
	}
	defer tx.Rollback()

	deleteSQL, deleteArgs, err := a.db.Delete(clausesTable).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build corpus delete", err)
	}
	if _, err := tx.ExecContext(ctx, deleteSQL, deleteArgs...); err != nil {
		return apperrors.NewInternalError("failed to clear clause corpus", err)
	}

	records := make([]goqu.Record, 0, len(clauses))
	for i, clause := range clauses {
		record := goqu.Record{
			"position":    i,
			"clause_text": clause.Text,
		}
		if clause.HasEmbedding() {
			payload, err := json.Marshal(clause.Embedding)
			if err != nil {
				return apperrors.NewInternalError("failed to marshal clause embedding", err)
			}
			record["embedding"] = string(payload)
		} else {
			record["embedding"] = sql.NullString{}
		}
		records = append(records, record)
	}

	if len(records) > 0 {
		insertSQL, insertArgs, err := a.db.Insert(clausesTable).Rows(records).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build corpus insert", err)
		}
		if _, err := tx.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
			return apperrors.NewInternalError("failed to insert clause corpus", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit corpus rewrite", err)
	}
	return nil
}
