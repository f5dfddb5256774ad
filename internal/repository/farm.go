package repository

import (
	"context"
	"time"

	"github.com/deppfellow/tokenfarms-api/internal/database"
	"github.com/deppfellow/tokenfarms-api/internal/model"
	"github.com/pkg/errors"
)

// FarmRepository runs the farm and staker queries. Every call checks one
// connection out of the pool and hands it back before returning.
type FarmRepository struct {
	pool         database.Pool
	queryTimeout time.Duration
}

func NewFarmRepository(pool database.Pool, queryTimeout time.Duration) *FarmRepository {
	return &FarmRepository{
		pool:         pool,
		queryTimeout: queryTimeout,
	}
}

// GetFarm returns the farm named farmName as a zero or one row slice.
func (r *FarmRepository) GetFarm(ctx context.Context, farmName string) ([]database.Row, error) {
	return r.run(ctx, "get farm", getFarmStatement(farmName))
}

// GetFarms returns one page of farms, optionally filtered by creator or
// original creator.
func (r *FarmRepository) GetFarms(ctx context.Context, q model.FarmsQuery) ([]database.Row, error) {
	return r.run(ctx, "get farms", farmsStatement(q))
}

// GetStakers returns one page of a farm's stakers, largest balance first.
func (r *FarmRepository) GetStakers(ctx context.Context, farmName string, p model.Pagination) ([]database.Row, error) {
	return r.run(ctx, "get stakers", stakersStatement(farmName, p))
}

// GetStakedFarms returns one page of the farms staker holds a position in,
// each row carrying staker_balance and staker_last_update_time.
func (r *FarmRepository) GetStakedFarms(
	ctx context.Context,
	staker string,
	p model.Pagination,
	sort model.Sort,
) ([]database.Row, error) {
	return r.run(ctx, "get staked farms", stakedFarmsStatement(staker, p, sort))
}

func (r *FarmRepository) run(ctx context.Context, op string, stmt statement) ([]database.Row, error) {
	if r.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.queryTimeout)
		defer cancel()
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: acquire connection", op)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: query", op)
	}

	if rows == nil {
		rows = []database.Row{}
	}

	return rows, nil
}
