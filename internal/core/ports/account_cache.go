package ports

import (
	"context"

	"github.com/agriconnect/user-service/internal/core/domain"
)

// AccountCache is an optional read-through cache for single account lookups.
// Cached accounts carry no credential hash.
//
// Every Invalidate advances a per-account generation. Get reports the
// generation it observed and Set stores the snapshot only while that
// generation is still current, so a read that raced a write cannot put the
// pre-write snapshot back after the writer invalidated it.
type AccountCache interface {
	Get(ctx context.Context, id string) (account *domain.Account, gen int64, ok bool, err error)
	Set(ctx context.Context, account *domain.Account, gen int64) error
	Invalidate(ctx context.Context, id string) error
}
