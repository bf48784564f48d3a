package sessionrecord

import (
	"context"

	"edusahasra/internal/domain/session"
)

// Store persists per-browser session records, one row per role.
type Store interface {
	Get(ctx context.Context, browserID, role string) (session.Record, bool, error)
	Set(ctx context.Context, browserID string, rec session.Record) error
	Clear(ctx context.Context, browserID, role string) error
	ClearAll(ctx context.Context, browserID string) error
}
