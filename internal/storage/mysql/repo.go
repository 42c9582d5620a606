package mysql

import (
	"context"
	"database/sql"
	"time"

	"holydeo/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertBlockedDate(ctx context.Context, b domain.BlockedDate) error {
	_, err := r.db.ExecContext(ctx, upsertBlockedDateSQL,
		b.PropertyID,
		domain.Midnight(b.Date),
		string(b.Source),
	)
	return err
}

func (r *Repo) DeleteBlockedDate(ctx context.Context, propertyID int64, date time.Time) error {
	_, err := r.db.ExecContext(ctx, deleteBlockedDateSQL, propertyID, domain.Midnight(date))
	return err
}

func (r *Repo) ListBlockedDates(ctx context.Context, propertyID int64, from, to time.Time) ([]domain.BlockedDate, error) {
	rows, err := r.db.QueryContext(ctx, listBlockedDatesSQL,
		propertyID, domain.Midnight(from), domain.Midnight(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BlockedDate
	for rows.Next() {
		var b domain.BlockedDate
		var src string
		if err := rows.Scan(&b.PropertyID, &b.Date, &src); err != nil {
			return nil, err
		}
		b.Date = domain.Midnight(b.Date)
		b.Source = domain.BlockSource(src)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) UpsertSpecialPrice(ctx context.Context, p domain.SpecialPrice) error {
	_, err := r.db.ExecContext(ctx, upsertSpecialPriceSQL,
		p.PropertyID,
		domain.Midnight(p.Date),
		p.Price,
	)
	return err
}

func (r *Repo) DeleteSpecialPrice(ctx context.Context, propertyID int64, date time.Time) error {
	_, err := r.db.ExecContext(ctx, deleteSpecialPriceSQL, propertyID, domain.Midnight(date))
	return err
}

func (r *Repo) ListSpecialPrices(ctx context.Context, propertyID int64, from, to time.Time) ([]domain.SpecialPrice, error) {
	rows, err := r.db.QueryContext(ctx, listSpecialPricesSQL,
		propertyID, domain.Midnight(from), domain.Midnight(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SpecialPrice
	for rows.Next() {
		var p domain.SpecialPrice
		if err := rows.Scan(&p.PropertyID, &p.Date, &p.Price); err != nil {
			return nil, err
		}
		p.Date = domain.Midnight(p.Date)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) ListApprovedBookings(ctx context.Context, propertyID int64, from, to time.Time) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, listApprovedBookingsSQL,
		propertyID, domain.Midnight(to), domain.Midnight(from))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.PropertyID, &b.StartDate, &b.EndDate, &b.Status); err != nil {
			return nil, err
		}
		b.StartDate = domain.Midnight(b.StartDate)
		b.EndDate = domain.Midnight(b.EndDate)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) GetProperty(ctx context.Context, id int64) (domain.Property, error) {
	row := r.db.QueryRowContext(ctx, getPropertySQL, id)

	var p domain.Property
	var name, feedURL sql.NullString
	if err := row.Scan(&p.ID, &name, &feedURL); err != nil {
		if err == sql.ErrNoRows {
			return domain.Property{}, domain.ErrNotFound
		}
		return domain.Property{}, err
	}
	if name.Valid {
		n := name.String
		p.Name = &n
	}
	if feedURL.Valid && feedURL.String != "" {
		u := feedURL.String
		p.FeedURL = &u
	}
	return p, nil
}

func (r *Repo) ListSyncableProperties(ctx context.Context) ([]domain.Property, error) {
	rows, err := r.db.QueryContext(ctx, listSyncablePropertiesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Property
	for rows.Next() {
		var p domain.Property
		var name, feedURL sql.NullString
		if err := rows.Scan(&p.ID, &name, &feedURL); err != nil {
			return nil, err
		}
		if name.Valid {
			n := name.String
			p.Name = &n
		}
		if feedURL.Valid && feedURL.String != "" {
			u := feedURL.String
			p.FeedURL = &u
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) SetFeedURL(ctx context.Context, propertyID int64, url *string) error {
	res, err := r.db.ExecContext(ctx, setFeedURLSQL, valStr(url), propertyID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Distinguish "property missing" from "url unchanged".
		if _, gerr := r.GetProperty(ctx, propertyID); gerr != nil {
			return gerr
		}
	}
	return nil
}
