// Package counter supply view counter stores
package counter

import (
	"context"
	"errors"
)

// ErrEmptyID the counter id is empty
var ErrEmptyID = errors.New("counter id must not be empty")

// Store is the counter store,the total of an id is created by the first Incr
type Store interface {
	// Incr atomically increase the total of id by 1 and return the new total,absent id starts from 0
	Incr(ctx context.Context, id string) (total int64, err error)

	// Get the total of id,exist is false when id has never been increased.Get never creates the id
	Get(ctx context.Context, id string) (total int64, exist bool, err error)
}

// Persist is the durable storage of counter totals
type Persist interface {
	// Load the total of id from persist storage
	Load(ctx context.Context, id string) (total int64, exist bool, err error)

	// Store save the total of id,a smaller total than the stored one is ignored
	Store(ctx context.Context, id string, total int64) error
}
