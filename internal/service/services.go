// Package service contains the business logic.
//
// It sits between the handler and repository layers. It receives validated
// data from the handler, resolves defaults and calls repository methods to
// read data.
package service

import (
	"github.com/deppfellow/tokenfarms-api/internal/repository"
)

type Services struct {
	Farms *FarmService
}

func NewServices(repos *repository.Repositories) *Services {
	return &Services{
		Farms: NewFarmService(repos.Farms),
	}
}
