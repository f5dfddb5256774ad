package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/deppfellow/tokenfarms-api/internal/database"
	"github.com/deppfellow/tokenfarms-api/internal/model"
	"github.com/deppfellow/tokenfarms-api/internal/testing/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seed inserts 7 farms (two sharing a timestamp) and stakes bob in three of them.
func seed(t *testing.T, db *database.Database) {
	t.Helper()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	farms := []struct {
		name, creator, original string
		created                 time.Time
	}{
		{"farm.a", "alice", "alice", base},
		{"farm.b", "alice", "carol", base.Add(time.Hour)},
		{"farm.c", "bob", "bob", base.Add(2 * time.Hour)},
		{"farm.d", "alice", "alice", base.Add(2 * time.Hour)},
		{"farm.e", "carol", "carol", base.Add(3 * time.Hour)},
		{"farm.f", "alice", "alice", base.Add(4 * time.Hour)},
		{"farm.g", "bob", "alice", base.Add(5 * time.Hour)},
	}
	for _, f := range farms {
		testdb.Exec(t, db,
			"insert into tokenfarms_farms (farm_name, creator, original_creator, time_created) values ($1, $2, $3, $4)",
			f.name, f.creator, f.original, f.created)
	}

	for i, s := range []struct {
		farm, user string
		balance    int
	}{
		{"farm.a", "bob", 10},
		{"farm.c", "bob", 5},
		{"farm.f", "bob", 7},
		{"farm.a", "carol", 30},
		{"farm.a", "dave", 20},
	} {
		testdb.Exec(t, db,
			"insert into tokenfarms_stakers (farm_name, username, balance, balance_numeric, last_update_time) values ($1, $2, $3, $4, $5)",
			s.farm, s.user, fmt.Sprintf("%d.0000 WAX", s.balance), s.balance, base.Add(time.Duration(i)*time.Minute))
	}
}

func names(rows []database.Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r["farm_name"].(string))
	}
	return out
}

func TestIntegration_GetFarms_PagesAreDisjointAndOrdered(t *testing.T) {
	db := testdb.New(t)
	seed(t, db)
	repo := NewFarmRepository(db, 5*time.Second)
	ctx := context.Background()

	var oldest []string
	for page := 1; page <= 3; page++ {
		rows, err := repo.GetFarms(ctx, model.FarmsQuery{
			Pagination: model.Pagination{Page: page, Limit: 3},
			Sort:       model.SortOldest,
		})
		require.NoError(t, err)
		oldest = append(oldest, names(rows)...)
	}
	assert.Equal(t, []string{"farm.a", "farm.b", "farm.c", "farm.d", "farm.e", "farm.f", "farm.g"}, oldest)

	rows, err := repo.GetFarms(ctx, model.FarmsQuery{
		Pagination: model.Pagination{Page: 1, Limit: 100},
		Sort:       model.SortNewest,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"farm.g", "farm.f", "farm.e", "farm.c", "farm.d", "farm.b", "farm.a"}, names(rows))
}

func TestIntegration_GetFarms_Filters(t *testing.T) {
	db := testdb.New(t)
	seed(t, db)
	repo := NewFarmRepository(db, 5*time.Second)
	page := model.Pagination{Page: 1, Limit: 100}

	rows, err := repo.GetFarms(context.Background(), model.FarmsQuery{Creator: "bob", OriginalCreator: "carol", Pagination: page})
	require.NoError(t, err)
	assert.Equal(t, []string{"farm.g", "farm.c"}, names(rows))

	rows, err = repo.GetFarms(context.Background(), model.FarmsQuery{OriginalCreator: "carol", Pagination: page})
	require.NoError(t, err)
	assert.Equal(t, []string{"farm.e", "farm.b"}, names(rows))
}

func TestIntegration_GetFarm(t *testing.T) {
	db := testdb.New(t)
	seed(t, db)
	repo := NewFarmRepository(db, 5*time.Second)

	rows, err := repo.GetFarm(context.Background(), "farm.c")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "farm.c", rows[0]["farm_name"])
	assert.Equal(t, "bob", rows[0]["creator"])
	assert.Contains(t, rows[0], "reward_pools")

	rows, err = repo.GetFarm(context.Background(), "nothere")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestIntegration_GetStakers_ByBalance(t *testing.T) {
	db := testdb.New(t)
	seed(t, db)
	repo := NewFarmRepository(db, 5*time.Second)

	rows, err := repo.GetStakers(context.Background(), "farm.a", model.Pagination{Page: 1, Limit: 100})
	require.NoError(t, err)

	users := make([]string, 0, len(rows))
	for _, r := range rows {
		users = append(users, r["username"].(string))
	}
	assert.Equal(t, []string{"carol", "dave", "bob"}, users)
}

func TestIntegration_GetStakedFarms(t *testing.T) {
	db := testdb.New(t)
	seed(t, db)
	repo := NewFarmRepository(db, 5*time.Second)

	rows, err := repo.GetStakedFarms(context.Background(), "bob", model.Pagination{Page: 1, Limit: 2}, model.SortOldest)
	require.NoError(t, err)
	assert.Equal(t, []string{"farm.a", "farm.c"}, names(rows))
	assert.Equal(t, "10.0000 WAX", rows[0]["staker_balance"])
	assert.Contains(t, rows[0], "staker_last_update_time")
	assert.Contains(t, rows[0], "creator")

	rows, err = repo.GetStakedFarms(context.Background(), "bob", model.Pagination{Page: 2, Limit: 2}, model.SortOldest)
	require.NoError(t, err)
	assert.Equal(t, []string{"farm.f"}, names(rows))
}
