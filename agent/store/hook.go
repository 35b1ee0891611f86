package store

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
)

// queryHook logs every statement at debug level and failures at warn.
type queryHook struct {
	verbose bool
}

var _ bun.QueryHook = (*queryHook)(nil)

func newQueryHook(verbose bool) *queryHook {
	return &queryHook{verbose: verbose}
}

func (h *queryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *queryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	elapsed := time.Since(event.StartTime)

	if event.Err != nil && !isNoRows(event.Err) {
		log.Ctx(ctx).Warn().
			Err(event.Err).
			Str("query", event.Query).
			Dur("elapsed", elapsed).
			Msg("store: query failed")
		return
	}

	if !h.verbose {
		return
	}
	log.Ctx(ctx).Debug().
		Str("query", event.Query).
		Dur("elapsed", elapsed).
		Msg("store: query")
}
