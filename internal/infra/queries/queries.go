// Package queries holds the SQL statements and row types used by the repositories
// and read stores. Every method takes the DBTX to run on, so the same Queries value
// serves pool, connection and transaction callers.
package queries

import "github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/db"

type DBTX = db.DBTX

type Queries struct{}

func New() *Queries {
	return &Queries{}
}
