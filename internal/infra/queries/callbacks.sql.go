package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createPaymentCallback = `INSERT INTO payment_callbacks
	(provider, external_ref, hold_id, outcome, payment_id, message, result, raw_query, received_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func (q *Queries) CreatePaymentCallback(ctx context.Context, db DBTX, c PaymentCallbacks) error {
	_, err := db.Exec(ctx, createPaymentCallback,
		c.Provider, c.ExternalRef, c.HoldID, c.Outcome, c.PaymentID, c.Message, c.Result, c.RawQuery, c.ReceivedAt)
	return err
}

const listPaymentCallbacks = `SELECT id, provider, external_ref, hold_id, outcome, payment_id, message, result, raw_query, received_at
FROM payment_callbacks
WHERE ($1::text IS NULL OR outcome = $1)
  AND ($2::timestamptz IS NULL OR received_at < $2)
ORDER BY received_at DESC
LIMIT $3`

func (q *Queries) ListPaymentCallbacks(ctx context.Context, db DBTX, outcome pgtype.Text, before pgtype.Timestamptz, limit int32) ([]PaymentCallbacks, error) {
	rows, err := db.Query(ctx, listPaymentCallbacks, outcome, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PaymentCallbacks
	for rows.Next() {
		var c PaymentCallbacks
		if err := rows.Scan(&c.ID, &c.Provider, &c.ExternalRef, &c.HoldID, &c.Outcome, &c.PaymentID,
			&c.Message, &c.Result, &c.RawQuery, &c.ReceivedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

