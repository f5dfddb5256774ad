package repository

import (
	"github.com/deppfellow/tokenfarms-api/internal/model"
)

const (
	farmsTable   = "tokenfarms_farms"
	stakersTable = "tokenfarms_stakers"
)

// statement is a complete SQL text plus its positional arguments.
type statement struct {
	SQL  string
	Args []any
}

// farmFilter is the closed set of WHERE clauses a farm listing can use.
type farmFilter int

const (
	filterNone farmFilter = iota
	filterCreator
	filterOriginalCreator
)

func (f farmFilter) String() string {
	switch f {
	case filterCreator:
		return "creator"
	case filterOriginalCreator:
		return "original_creator"
	default:
		return "none"
	}
}

// selectFarmFilter picks the filter for q. A non-empty creator always wins
// over original_creator; empty strings count as absent.
func selectFarmFilter(q model.FarmsQuery) (farmFilter, string) {
	switch {
	case q.Creator != "":
		return filterCreator, q.Creator
	case q.OriginalCreator != "":
		return filterOriginalCreator, q.OriginalCreator
	default:
		return filterNone, ""
	}
}

// ORDER BY fragments. farm_name breaks time_created ties so pages never
// overlap.
var (
	farmOrder = map[model.Sort]string{
		model.SortNewest: "ORDER BY time_created DESC, farm_name ASC",
		model.SortOldest: "ORDER BY time_created ASC, farm_name ASC",
	}

	stakedFarmOrder = map[model.Sort]string{
		model.SortNewest: "ORDER BY farms.time_created DESC, farms.farm_name ASC",
		model.SortOldest: "ORDER BY farms.time_created ASC, farms.farm_name ASC",
	}

	stakerOrder = "ORDER BY balance_numeric DESC, username ASC"
)

// farmListStatements holds one statement text per (filter, sort) pair.
// Built once; only fixed fragments ever reach the SQL text.
var farmListStatements = func() map[farmFilter]map[model.Sort]string {
	where := map[farmFilter]string{
		filterNone:            "",
		filterCreator:         " WHERE creator = $1",
		filterOriginalCreator: " WHERE original_creator = $1",
	}

	out := make(map[farmFilter]map[model.Sort]string, len(where))
	for filter, clause := range where {
		limit, offset := "$1", "$2"
		if filter != filterNone {
			limit, offset = "$2", "$3"
		}

		out[filter] = make(map[model.Sort]string, len(farmOrder))
		for sort, order := range farmOrder {
			out[filter][sort] = "SELECT * FROM " + farmsTable + clause +
				" " + order + " LIMIT " + limit + " OFFSET " + offset
		}
	}
	return out
}()

var (
	getFarmSQL = "SELECT * FROM " + farmsTable + " WHERE farm_name = $1 LIMIT 1"

	getStakersSQL = "SELECT * FROM " + stakersTable + " WHERE farm_name = $1 " +
		stakerOrder + " LIMIT $2 OFFSET $3"

	stakedFarmsSelect = "SELECT farms.*, stakers.balance AS staker_balance, " +
		"stakers.last_update_time AS staker_last_update_time " +
		"FROM " + stakersTable + " stakers " +
		"JOIN " + farmsTable + " farms ON stakers.farm_name = farms.farm_name " +
		"WHERE stakers.username = $1 "
)

func resolveSort(sort model.Sort) model.Sort {
	if sort.Valid() {
		return sort
	}
	return model.SortNewest
}

func getFarmStatement(farmName string) statement {
	return statement{SQL: getFarmSQL, Args: []any{farmName}}
}

func farmsStatement(q model.FarmsQuery) statement {
	filter, value := selectFarmFilter(q)
	sql := farmListStatements[filter][resolveSort(q.Sort)]

	args := make([]any, 0, 3)
	if filter != filterNone {
		args = append(args, value)
	}
	args = append(args, q.Pagination.Limit, q.Pagination.Offset())

	return statement{SQL: sql, Args: args}
}

func stakersStatement(farmName string, p model.Pagination) statement {
	return statement{
		SQL:  getStakersSQL,
		Args: []any{farmName, p.Limit, p.Offset()},
	}
}

func stakedFarmsStatement(staker string, p model.Pagination, sort model.Sort) statement {
	return statement{
		SQL:  stakedFarmsSelect + stakedFarmOrder[resolveSort(sort)] + " LIMIT $2 OFFSET $3",
		Args: []any{staker, p.Limit, p.Offset()},
	}
}
