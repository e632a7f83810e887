package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidSelector = errors.New("exactly one of api key or id must be set")
)

// Outcome reports how a write that may hit a store constraint ended.
// Infrastructure failures are returned as errors instead.
type Outcome int

const (
	// OutcomeApplied means the row was written or removed.
	OutcomeApplied Outcome = iota
	// OutcomeConflict means a uniqueness constraint rejected the write.
	OutcomeConflict
	// OutcomeNotFound means a referenced or targeted row does not exist.
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeConflict:
		return "conflict"
	case OutcomeNotFound:
		return "not_found"
	}
	return "unknown"
}

type violation int

const (
	violationNone violation = iota
	violationUnique
	violationForeignKey
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	mysqlDuplicateEntry  = 1062
	mysqlNoReferencedRow = 1452
)

// classify recognises integrity violations from any of the supported drivers,
// whether or not gorm already translated them.
func classify(err error) violation {
	if err == nil {
		return violationNone
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return violationUnique
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return violationForeignKey
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return violationUnique
		case pgForeignKeyViolation:
			return violationForeignKey
		}
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return violationUnique
		case sqlite3.ErrConstraintForeignKey:
			return violationForeignKey
		}
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlDuplicateEntry:
			return violationUnique
		case mysqlNoReferencedRow:
			return violationForeignKey
		}
	}

	return violationNone
}

// outcomeOf converts a write error into an Outcome. Errors that are not
// integrity violations are passed through.
func outcomeOf(err error) (Outcome, error) {
	switch classify(err) {
	case violationUnique:
		return OutcomeConflict, nil
	case violationForeignKey:
		return OutcomeNotFound, nil
	}
	if err != nil {
		return OutcomeNotFound, err
	}
	return OutcomeApplied, nil
}
