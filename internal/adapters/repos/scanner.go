package repos

import (
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

type (
	// Scanner abstracts row scanning so the repository can be tested against
	// mocked rows.
	Scanner interface {
		ScanAll(dst any, rows pgx.Rows) error
		ScanOne(dst any, rows pgx.Rows) error
		IsNotFound(err error) bool
	}

	PgxScanner struct{}
)

func NewPgxScanner() *PgxScanner {
	return &PgxScanner{}
}

func (s *PgxScanner) ScanAll(dst any, rows pgx.Rows) error {
	return pgxscan.ScanAll(dst, rows)
}

func (s *PgxScanner) ScanOne(dst any, rows pgx.Rows) error {
	return pgxscan.ScanOne(dst, rows)
}

func (s *PgxScanner) IsNotFound(err error) bool {
	return pgxscan.NotFound(err)
}
