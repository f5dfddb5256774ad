package model

import (
	"github.com/deppfellow/tokenfarms-api/internal/database"
	"github.com/deppfellow/tokenfarms-api/internal/validation"
)

// GetFarmRequest is the body of POST /get-farm.
type GetFarmRequest struct {
	FarmName string `json:"farm_name" validate:"required,account"`
}

func (r *GetFarmRequest) Validate() error {
	return validation.Struct(r)
}

// GetFarmsRequest is the body of POST /get-farms.
//
// When both creator and original_creator are sent, only creator filters.
type GetFarmsRequest struct {
	PageParams
	SortParam
	Creator         *string `json:"creator" validate:"omitnil,account"`
	OriginalCreator *string `json:"original_creator" validate:"omitnil,account"`
}

func (r *GetFarmsRequest) Validate() error {
	return validation.Struct(r)
}

// GetStakersRequest is the body of POST /get-stakers. Stakers are always
// ordered by balance, so there is no sort field.
type GetStakersRequest struct {
	PageParams
	FarmName string `json:"farm_name" validate:"required,account"`
}

func (r *GetStakersRequest) Validate() error {
	return validation.Struct(r)
}

// StakedFarmsRequest is the body of POST /staked-only.
type StakedFarmsRequest struct {
	PageParams
	SortParam
	Staker string `json:"staker" validate:"required,account"`
}

func (r *StakedFarmsRequest) Validate() error {
	return validation.Struct(r)
}

// FarmsQuery is the resolved input of a farm listing.
type FarmsQuery struct {
	Creator         string
	OriginalCreator string
	Pagination      Pagination
	Sort            Sort
}

// Query resolves defaults and drops absent filters.
func (r *GetFarmsRequest) Query() FarmsQuery {
	q := FarmsQuery{
		Pagination: r.Pagination(),
		Sort:       r.SortMethod(),
	}
	if r.Creator != nil {
		q.Creator = *r.Creator
	}
	if r.OriginalCreator != nil {
		q.OriginalCreator = *r.OriginalCreator
	}
	return q
}

// FarmResponse is the body of a successful /get-farm call; 0 or 1 row.
type FarmResponse struct {
	Farm []database.Row `json:"farm"`
}

// FarmsResponse is the body of /get-farms and /staked-only.
type FarmsResponse struct {
	Farms []database.Row `json:"farms"`
}

// StakersResponse is the body of /get-stakers.
type StakersResponse struct {
	Stakers []database.Row `json:"stakers"`
}
