package dashboard

import (
	"context"
	"strconv"
	"sync"

	"restaurant-dashboard/models"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type StatsSource interface {
	ClientStats(ctx context.Context, clientID uint) (*models.ClientStats, error)
}

// ClientStatsLoader fetches per-client stats with at most limit requests in
// flight. Concurrent loads of the same client share one request, and a
// caller leaving early does not fail the others.
type ClientStatsLoader struct {
	src   StatsSource
	limit int
	group singleflight.Group
}

func NewClientStatsLoader(src StatsSource, limit int) *ClientStatsLoader {
	if limit < 1 {
		limit = 1
	}
	return &ClientStatsLoader{src: src, limit: limit}
}

func (l *ClientStatsLoader) Load(ctx context.Context, ids []uint) (map[uint]models.ClientStats, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit)

	var mu sync.Mutex
	out := make(map[uint]models.ClientStats, len(ids))
	for _, id := range ids {
		id := id
		g.Go(func() error {
			// the shared call outlives any one caller; each caller still
			// gives up when its own context ends
			ch := l.group.DoChan(strconv.FormatUint(uint64(id), 10), func() (interface{}, error) {
				return l.src.ClientStats(context.WithoutCancel(gctx), id)
			})
			var res singleflight.Result
			select {
			case <-gctx.Done():
				return gctx.Err()
			case res = <-ch:
			}
			if res.Err != nil {
				return res.Err
			}
			st := *res.Val.(*models.ClientStats)
			st.ClientID = id
			mu.Lock()
			out[id] = st
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Enrich fills OrderCount and TotalSpent of each client. It fits
// views.Options.Enrich.
func (l *ClientStatsLoader) Enrich(ctx context.Context, clients []models.Client) ([]models.Client, error) {
	ids := make([]uint, len(clients))
	for i, c := range clients {
		ids[i] = c.ID
	}
	stats, err := l.Load(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.Client, len(clients))
	for i, c := range clients {
		st := stats[c.ID]
		c.OrderCount = st.OrderCount
		c.TotalSpent = st.TotalSpent
		out[i] = c
	}
	return out, nil
}
