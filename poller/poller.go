// Package poller keeps an approximate count of a customer's open orders
// fresh, without customer-initiated refresh.
package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/DimasRabelo/delivery-frontend/domain"
	"github.com/DimasRabelo/delivery-frontend/session"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const DefaultInterval = 30 * time.Second

// CountClient fetches the open-order count for a bearer token.
type CountClient interface {
	OpenOrderCount(ctx context.Context, token string) (int, error)
}

// Poller watches the session store and runs one recurring fetch task while
// the session belongs to an authenticated customer. The task is cancelled on
// every disqualifying session transition and restarted, never resumed, when
// the session qualifies again. At most one task is live at any time.
type Poller struct {
	sessions *session.Store
	client   CountClient
	interval time.Duration
	sfg      singleflight.Group

	mu     sync.Mutex
	count  int
	token  string
	cancel context.CancelFunc
	subID  uuid.UUID
	closed bool
}

func New(sessions *session.Store, client CountClient, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	p := &Poller{
		sessions: sessions,
		client:   client,
		interval: interval,
	}
	p.subID = sessions.Subscribe(p.onSession)
	p.onSession(sessions.Snapshot())
	return p
}

// Count is derived entirely from the remote service, never locally
// authoritative. It is zero whenever the session does not qualify or the
// last fetch failed.
func (p *Poller) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// Refresh fetches the count out of schedule, deduplicated against the ticker
// through singleflight. It is a no-op while no task is live.
func (p *Poller) Refresh(ctx context.Context) {
	p.mu.Lock()
	token := p.token
	live := p.cancel != nil
	p.mu.Unlock()
	if !live {
		return
	}
	p.refresh(ctx, token)
}

// Close cancels the live task and detaches from the session store.
func (p *Poller) Close() {
	p.sessions.Unsubscribe(p.subID)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.stopLocked()
}

func (p *Poller) onSession(s session.State) {
	eligible := !s.IsLoading && s.IsAuthenticated() && s.User.Role == domain.RoleCustomer

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if eligible && p.cancel != nil && p.token == s.Token {
		// Same qualifying session, keep the running task.
		return
	}

	// Cancel-before-start: never two live tasks.
	p.stopLocked()
	if !eligible {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.token = s.Token
	go p.run(ctx, s.Token)
}

func (p *Poller) stopLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.token = ""
	p.count = 0
}

func (p *Poller) run(ctx context.Context, token string) {
	// Fetch once up front; the ticker only covers subsequent refreshes.
	p.refresh(ctx, token)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.refresh(ctx, token)
		case <-ctx.Done():
			return
		}
	}
}

// refresh stores the fetched count. Any failure zeroes the count and the
// schedule continues: fetch errors are never escalated or surfaced.
func (p *Poller) refresh(ctx context.Context, token string) {
	v, err, _ := p.sfg.Do("count", func() (interface{}, error) {
		return p.client.OpenOrderCount(ctx, token)
	})

	count := 0
	if err != nil {
		log.Printf("order count fetch failed: %v", err)
	} else if n, ok := v.(int); ok && n > 0 {
		count = n
	}

	p.mu.Lock()
	// Drop the result if the session moved on while the fetch was in flight.
	if p.cancel != nil && p.token == token {
		p.count = count
	}
	p.mu.Unlock()
}
