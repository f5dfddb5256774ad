// Package repository handles all interactions with the database.
//
// It holds the SQL statements and the methods that run them, keeping SQL
// out of the service layer. Statement text is only ever assembled from
// fixed fragments; request values travel as bind parameters.
package repository

import (
	"github.com/deppfellow/tokenfarms-api/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Farms *FarmRepository
}

// NewRepositories wires every repository to the server's connection pool.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Farms: NewFarmRepository(s.DB, s.Config.Database.QueryTimeout),
	}
}
