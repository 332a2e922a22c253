package readstore

import (
	"context"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/queries"

	"github.com/google/uuid"
)

type ResourceReadQueries interface {
	ListResourceRates(ctx context.Context, db queries.DBTX, ids []uuid.UUID) ([]queries.Resources, error)
}

type ResourceReadStore struct {
	queries ResourceReadQueries
}

func NewResourceReadStore(q ResourceReadQueries) *ResourceReadStore {
	return &ResourceReadStore{
		queries: q,
	}
}

// HourlyRates returns rates of active resources only; inactive or unknown ids are absent from the map.
func (r *ResourceReadStore) HourlyRates(ctx context.Context, db queries.DBTX, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	rows, err := r.queries.ListResourceRates(ctx, db, ids)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find resource rates", err)
	}

	rates := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		rates[row.ID] = row.HourlyRate
	}
	return rates, nil
}
