package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ListDelimiter = ";;"

var ErrIntegrity = errors.New("data integrity violation")

// Store is a destination the loader writes into within a single transaction.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

type Tx interface {
	// UpsertCourse inserts or updates the course keyed by (dept, code, term)
	// and returns its row id. An existing row keeps its id.
	UpsertCourse(ctx context.Context, course CourseRow) (int64, error)
	// UpsertSections inserts or updates sections keyed by number.
	UpsertSections(ctx context.Context, sections []SectionRow) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Database struct {
	Pool *pgxpool.Pool
}

func Connect(ctx context.Context, connectionString string) (*Database, error) {
	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Database{Pool: pool}, nil
}

func (d *Database) Close() {
	d.Pool.Close()
}

// JoinList serializes a list for storage. An empty list is stored as NULL.
func JoinList(list []string) (*string, error) {
	if len(list) == 0 {
		return nil, nil
	}
	for _, element := range list {
		if strings.Contains(element, ListDelimiter) {
			return nil, fmt.Errorf("%w: element %q contains %q", ErrIntegrity, element, ListDelimiter)
		}
	}
	joined := strings.Join(list, ListDelimiter)
	return &joined, nil
}

func SplitList(joined *string) []string {
	if joined == nil {
		return nil
	}
	return strings.Split(*joined, ListDelimiter)
}

func optionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
