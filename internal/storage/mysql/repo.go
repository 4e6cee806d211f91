package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tango/internal/domain"
)

func valStr(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertPlace(ctx context.Context, p domain.Place) error {
	if p.ID == "" {
		return errors.New("upsert place: empty id")
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode place %s: %w", p.ID, err)
	}
	_, err = r.db.ExecContext(ctx, upsertPlaceSQL,
		p.ID,
		p.Name,
		strings.ToLower(string(p.Type)),
		valStr(p.City),
		valStr(p.Country),
		valF64(p.RatingAverage),
		p.NumberOfReviews,
		string(raw),
	)
	return err
}

func (r *Repo) ListPlaces(ctx context.Context) ([]domain.Place, error) {
	rows, err := r.db.QueryContext(ctx, listPlacesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Place
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var p domain.Place
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode stored place: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetPlace(ctx context.Context, id string) (domain.Place, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, getPlaceSQL, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Place{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Place{}, err
	}
	var p domain.Place
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Place{}, fmt.Errorf("decode stored place %s: %w", id, err)
	}
	return p, nil
}

// DeleteMissing removes every place whose id is not in keep. An empty keep
// empties the table.
func (r *Repo) DeleteMissing(ctx context.Context, keep []string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if len(keep) == 0 {
		res, err = r.db.ExecContext(ctx, deleteAllPlacesSQL)
	} else {
		args := make([]any, len(keep))
		for i, id := range keep {
			args[i] = id
		}
		q := deleteMissingPrefix + strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",") + ")"
		res, err = r.db.ExecContext(ctx, q, args...)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
