package service

import (
	"context"

	"github.com/deppfellow/tokenfarms-api/internal/database"
	"github.com/deppfellow/tokenfarms-api/internal/model"
)

// FarmStore is what FarmService needs from the repository layer.
type FarmStore interface {
	GetFarm(ctx context.Context, farmName string) ([]database.Row, error)
	GetFarms(ctx context.Context, q model.FarmsQuery) ([]database.Row, error)
	GetStakers(ctx context.Context, farmName string, p model.Pagination) ([]database.Row, error)
	GetStakedFarms(ctx context.Context, staker string, p model.Pagination, sort model.Sort) ([]database.Row, error)
}

// FarmService resolves request defaults and wraps results in their
// response envelopes. Requests reaching it are already validated.
type FarmService struct {
	store FarmStore
}

func NewFarmService(store FarmStore) *FarmService {
	return &FarmService{store: store}
}

func (s *FarmService) GetFarm(ctx context.Context, req *model.GetFarmRequest) (*model.FarmResponse, error) {
	rows, err := s.store.GetFarm(ctx, req.FarmName)
	if err != nil {
		return nil, err
	}
	return &model.FarmResponse{Farm: rows}, nil
}

func (s *FarmService) GetFarms(ctx context.Context, req *model.GetFarmsRequest) (*model.FarmsResponse, error) {
	rows, err := s.store.GetFarms(ctx, req.Query())
	if err != nil {
		return nil, err
	}
	return &model.FarmsResponse{Farms: rows}, nil
}

func (s *FarmService) GetStakers(ctx context.Context, req *model.GetStakersRequest) (*model.StakersResponse, error) {
	rows, err := s.store.GetStakers(ctx, req.FarmName, req.Pagination())
	if err != nil {
		return nil, err
	}
	return &model.StakersResponse{Stakers: rows}, nil
}

// GetStakedFarms lists the farms req.Staker has a position in.
func (s *FarmService) GetStakedFarms(ctx context.Context, req *model.StakedFarmsRequest) (*model.FarmsResponse, error) {
	rows, err := s.store.GetStakedFarms(ctx, req.Staker, req.Pagination(), req.SortMethod())
	if err != nil {
		return nil, err
	}
	return &model.FarmsResponse{Farms: rows}, nil
}
