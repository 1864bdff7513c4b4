package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nmep/dashboard/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns a Repository backed by the action_items table.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const itemCols = `id, country_code, timeline, title, description, status, priority,
	notes, completed_at, created_at, updated_at`

// listOrder mirrors Less.
const listOrder = `ORDER BY
	CASE timeline WHEN 'short_term' THEN 0 WHEN 'medium_term' THEN 1 ELSE 2 END,
	CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END,
	created_at`

func scanItem(row pgx.Row) (*Item, error) {
	var (
		it                         Item
		timeline, status, priority string
	)
	err := row.Scan(&it.ID, &it.CountryCode, &timeline, &it.Title, &it.Description, &status, &priority,
		&it.Notes, &it.CompletedAt, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	it.Timeline, it.Status, it.Priority = Timeline(timeline), Status(status), Priority(priority)
	return &it, nil
}

func (r *repoPG) ListByCountry(ctx context.Context, countryCode string) ([]*Item, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+itemCols+` FROM action_items WHERE country_code = $1 `+listOrder, countryCode)
	if err != nil {
		return nil, fmt.Errorf("list action items: %w", err)
	}
	defer rows.Close()

	items := []*Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan action item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	it, err := scanItem(r.conn(ctx).QueryRow(ctx, `SELECT `+itemCols+` FROM action_items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return it, err
}

// CreateBatch inserts every item in one transaction.
func (r *repoPG) CreateBatch(ctx context.Context, items []*Item) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		for _, it := range items {
			if it.ID == uuid.Nil {
				it.ID = uuid.New()
			}
			_, err := r.conn(ctx).Exec(ctx, `
				INSERT INTO action_items (id, country_code, timeline, title, description, status, priority,
					notes, completed_at, created_at, updated_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
				it.ID, it.CountryCode, string(it.Timeline), it.Title, it.Description, string(it.Status),
				string(it.Priority), it.Notes, it.CompletedAt, it.CreatedAt, it.UpdatedAt)
			if err != nil {
				return fmt.Errorf("insert action item: %w", err)
			}
		}
		return nil
	})
}

func (r *repoPG) Update(ctx context.Context, it *Item) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE action_items SET title=$2, description=$3, status=$4, priority=$5,
			notes=$6, completed_at=$7, updated_at=$8
		WHERE id = $1`,
		it.ID, it.Title, it.Description, string(it.Status), string(it.Priority),
		it.Notes, it.CompletedAt, it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update action item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM action_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete action item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) DeleteByCountry(ctx context.Context, countryCode string) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM action_items WHERE country_code = $1`, countryCode)
	if err != nil {
		return 0, fmt.Errorf("clear action items: %w", err)
	}
	return tag.RowsAffected(), nil
}
