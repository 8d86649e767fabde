package app

import (
	"context"
	"testing"
	"time"

	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/clock"
	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/domain"
	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/notify"
)

func TestEventService_CreateEvent(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	makeSvc := func(opts ...EventServiceOption) (*EventService, *fakeEventRepo) {
		repo := &fakeEventRepo{
			events: map[string]domain.Event{},
			caps:   map[string]domain.OrganizerCap{},
		}
		return NewEventService(repo, clock.NewFixed(now), opts...), repo
	}

	t.Run("stores the event and mints its cap", func(t *testing.T) {
		svc, repo := makeSvc()

		ev, cap, err := svc.CreateEvent(context.Background(), CreateEventInput{
			Name:         "Goose Fest",
			Description:  "honking all night",
			TicketPrice:  100,
			TotalTickets: 50,
			StartOffset:  10 * time.Minute,
			EndOffset:    2 * time.Hour,
			Owner:        "acct-organizer",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ev.ID == "" || cap.ID == "" || ev.ID == cap.ID {
			t.Fatalf("expected distinct ids, got event %q cap %q", ev.ID, cap.ID)
		}
		if ev.Name != "Goose Fest" || ev.TicketPrice != 100 || ev.TotalTickets != 50 {
			t.Fatalf("unexpected event: %+v", ev)
		}
		if ev.SoldTickets != 0 || ev.Pool != 0 {
			t.Fatalf("expected fresh counters, got sold=%d pool=%d", ev.SoldTickets, ev.Pool)
		}
		if !ev.StartsAt.Equal(now.Add(10*time.Minute)) || !ev.EndsAt.Equal(now.Add(2*time.Hour)) {
			t.Fatalf("unexpected window: %v .. %v", ev.StartsAt, ev.EndsAt)
		}
		if cap.EventID != ev.ID || cap.Owner != "acct-organizer" {
			t.Fatalf("unexpected cap: %+v", cap)
		}
		if _, ok := repo.events[ev.ID]; !ok {
			t.Fatalf("expected event persisted")
		}
		if _, ok := repo.caps[cap.ID]; !ok {
			t.Fatalf("expected cap persisted")
		}
	})

	t.Run("broadcasts the creation", func(t *testing.T) {
		rec := &noticeRecorder{}
		svc, _ := makeSvc(WithEventNotifier(rec))

		ev, _, err := svc.CreateEvent(context.Background(), CreateEventInput{
			Name:         "Goose Fest",
			TicketPrice:  100,
			TotalTickets: 50,
			Owner:        "acct-organizer",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(rec.notices) != 1 {
			t.Fatalf("expected 1 notice, got %d", len(rec.notices))
		}
		n := rec.notices[0]
		if n.Kind != notify.KindEventCreated || n.EventID != ev.ID || n.EventName != "Goose Fest" {
			t.Fatalf("unexpected notice: %+v", n)
		}
	})

	t.Run("invalidates the catalog", func(t *testing.T) {
		cache := &catalogRecorder{ok: true}
		svc, _ := makeSvc(WithEventCatalog(cache))

		_, _, err := svc.CreateEvent(context.Background(), CreateEventInput{
			Name:  "Goose Fest",
			Owner: "acct-organizer",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cache.invalidations != 1 {
			t.Fatalf("expected 1 invalidation, got %d", cache.invalidations)
		}
	})

	t.Run("rejects a missing name", func(t *testing.T) {
		svc, _ := makeSvc()
		_, _, err := svc.CreateEvent(context.Background(), CreateEventInput{Owner: "acct-1"})
		if err != domain.ErrEventNameRequired {
			t.Fatalf("expected ErrEventNameRequired, got %v", err)
		}
	})

	t.Run("rejects a missing owner", func(t *testing.T) {
		svc, _ := makeSvc()
		_, _, err := svc.CreateEvent(context.Background(), CreateEventInput{Name: "Goose Fest"})
		if err != domain.ErrAccountRequired {
			t.Fatalf("expected ErrAccountRequired, got %v", err)
		}
	})

	t.Run("rejects a negative price", func(t *testing.T) {
		svc, _ := makeSvc()
		_, _, err := svc.CreateEvent(context.Background(), CreateEventInput{
			Name:        "Goose Fest",
			Owner:       "acct-1",
			TicketPrice: -1,
		})
		if err != domain.ErrInvalidPrice {
			t.Fatalf("expected ErrInvalidPrice, got %v", err)
		}
	})

	t.Run("rejects a negative capacity", func(t *testing.T) {
		svc, _ := makeSvc()
		_, _, err := svc.CreateEvent(context.Background(), CreateEventInput{
			Name:         "Goose Fest",
			Owner:        "acct-1",
			TotalTickets: -1,
		})
		if err != domain.ErrInvalidCapacity {
			t.Fatalf("expected ErrInvalidCapacity, got %v", err)
		}
	})

	t.Run("accepts zero capacity and an inverted window", func(t *testing.T) {
		svc, _ := makeSvc()
		ev, _, err := svc.CreateEvent(context.Background(), CreateEventInput{
			Name:        "Goose Fest",
			Owner:       "acct-1",
			StartOffset: 2 * time.Hour,
			EndOffset:   time.Hour,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ev.TotalTickets != 0 || !ev.EndsAt.Before(ev.StartsAt) {
			t.Fatalf("unexpected event: %+v", ev)
		}
	})
}

func TestEventService_UpdateEventDetails(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	makeSvc := func() (*EventService, *fakeEventRepo) {
		repo := &fakeEventRepo{
			events: map[string]domain.Event{
				"e1": {ID: "e1", Name: "Goose Fest", Description: "old"},
				"e2": {ID: "e2", Name: "Duck Expo"},
			},
			caps: map[string]domain.OrganizerCap{
				"cap-1": {ID: "cap-1", EventID: "e1", Owner: "acct-1"},
				"cap-2": {ID: "cap-2", EventID: "e2", Owner: "acct-2"},
			},
		}
		return NewEventService(repo, clock.NewFixed(now)), repo
	}

	t.Run("replaces the description with the event's cap", func(t *testing.T) {
		svc, repo := makeSvc()

		ev, err := svc.UpdateEventDetails(context.Background(), "cap-1", "e1", "new plan")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ev.Description != "new plan" {
			t.Fatalf("expected updated description, got %q", ev.Description)
		}
		if repo.events["e1"].Description != "new plan" {
			t.Fatalf("expected description persisted, got %q", repo.events["e1"].Description)
		}
	})

	t.Run("rejects a cap minted for another event", func(t *testing.T) {
		svc, repo := makeSvc()

		_, err := svc.UpdateEventDetails(context.Background(), "cap-2", "e1", "hijack")
		if err != domain.ErrUnauthorized {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if repo.events["e1"].Description != "old" {
			t.Fatalf("expected description untouched, got %q", repo.events["e1"].Description)
		}
	})

	t.Run("rejects an unknown cap", func(t *testing.T) {
		svc, _ := makeSvc()

		_, err := svc.UpdateEventDetails(context.Background(), "cap-missing", "e1", "hijack")
		if err != domain.ErrUnauthorized {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects an unknown event", func(t *testing.T) {
		svc, _ := makeSvc()

		_, err := svc.UpdateEventDetails(context.Background(), "cap-1", "e-missing", "drift")
		if err != domain.ErrUnauthorized {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestEventService_CancelEvent(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	makeSvc := func(opts ...EventServiceOption) (*EventService, *fakeEventRepo) {
		repo := &fakeEventRepo{
			events: map[string]domain.Event{
				"e1": {ID: "e1", Name: "Goose Fest", Pool: 300},
			},
			caps: map[string]domain.OrganizerCap{
				"cap-1": {ID: "cap-1", EventID: "e1", Owner: "acct-1"},
				"cap-2": {ID: "cap-2", EventID: "e2", Owner: "acct-2"},
			},
		}
		return NewEventService(repo, clock.NewFixed(now), opts...), repo
	}

	t.Run("sets the flag and broadcasts the marker", func(t *testing.T) {
		rec := &noticeRecorder{}
		svc, repo := makeSvc(WithEventNotifier(rec))

		ev, err := svc.CancelEvent(context.Background(), "cap-1", "e1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !ev.Cancelled || !repo.events["e1"].Cancelled {
			t.Fatalf("expected cancelled flag set")
		}
		if ev.Pool != 300 {
			t.Fatalf("expected pool untouched, got %d", ev.Pool)
		}
		if len(rec.notices) != 1 {
			t.Fatalf("expected 1 notice, got %d", len(rec.notices))
		}
		n := rec.notices[0]
		if n.Kind != notify.KindEventCancelled || n.Description != notify.CancelledMarker {
			t.Fatalf("unexpected notice: %+v", n)
		}
	})

	t.Run("rejects a foreign cap", func(t *testing.T) {
		svc, repo := makeSvc()

		_, err := svc.CancelEvent(context.Background(), "cap-2", "e1")
		if err != domain.ErrUnauthorized {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if repo.events["e1"].Cancelled {
			t.Fatalf("expected flag untouched")
		}
	})
}

func TestEventService_Withdraw(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	makeSvc := func(pool int64) (*EventService, *fakeEventRepo) {
		repo := &fakeEventRepo{
			events: map[string]domain.Event{
				"e1": {ID: "e1", Name: "Goose Fest", Pool: pool},
			},
			caps: map[string]domain.OrganizerCap{
				"cap-1": {ID: "cap-1", EventID: "e1", Owner: "acct-organizer"},
				"cap-2": {ID: "cap-2", EventID: "e2", Owner: "acct-other"},
			},
		}
		return NewEventService(repo, clock.NewFixed(now)), repo
	}

	t.Run("drains the pool to the cap owner", func(t *testing.T) {
		svc, repo := makeSvc(500)

		payout, err := svc.Withdraw(context.Background(), "cap-1", "e1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if payout.Amount != 500 || payout.Recipient != "acct-organizer" {
			t.Fatalf("unexpected payout: %+v", payout)
		}
		if repo.events["e1"].Pool != 0 {
			t.Fatalf("expected empty pool, got %d", repo.events["e1"].Pool)
		}
	})

	t.Run("pays zero from an empty pool", func(t *testing.T) {
		svc, _ := makeSvc(0)

		payout, err := svc.Withdraw(context.Background(), "cap-1", "e1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if payout.Amount != 0 || payout.Recipient != "acct-organizer" {
			t.Fatalf("unexpected payout: %+v", payout)
		}
	})

	t.Run("rejects a foreign cap", func(t *testing.T) {
		svc, repo := makeSvc(500)

		_, err := svc.Withdraw(context.Background(), "cap-2", "e1")
		if err != domain.ErrUnauthorized {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if repo.events["e1"].Pool != 500 {
			t.Fatalf("expected pool untouched, got %d", repo.events["e1"].Pool)
		}
	})
}

func TestEventService_ListEvents(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	makeSvc := func(opts ...EventServiceOption) (*EventService, *fakeEventRepo) {
		repo := &fakeEventRepo{
			events: map[string]domain.Event{
				"e1": {ID: "e1", Name: "Goose Fest"},
			},
			caps:  map[string]domain.OrganizerCap{},
			order: []string{"e1"},
		}
		return NewEventService(repo, clock.NewFixed(now), opts...), repo
	}

	t.Run("serves from the catalog when warm", func(t *testing.T) {
		cache := &catalogRecorder{
			events: []domain.Event{{ID: "cached", Name: "Cached Fest"}},
			ok:     true,
		}
		svc, repo := makeSvc(WithEventCatalog(cache))

		events, err := svc.ListEvents(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(events) != 1 || events[0].ID != "cached" {
			t.Fatalf("expected the cached listing, got %+v", events)
		}
		if repo.listCalls != 0 {
			t.Fatalf("expected no storage read, got %d", repo.listCalls)
		}
	})

	t.Run("fills the catalog on a miss", func(t *testing.T) {
		cache := &catalogRecorder{}
		svc, repo := makeSvc(WithEventCatalog(cache))

		events, err := svc.ListEvents(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(events) != 1 || events[0].ID != "e1" {
			t.Fatalf("expected the stored listing, got %+v", events)
		}
		if repo.listCalls != 1 || cache.sets != 1 {
			t.Fatalf("expected one read and one fill, got reads=%d fills=%d", repo.listCalls, cache.sets)
		}

		if _, err := svc.ListEvents(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if repo.listCalls != 1 {
			t.Fatalf("expected the second listing served from cache, got %d reads", repo.listCalls)
		}
	})

	t.Run("works without a catalog", func(t *testing.T) {
		svc, repo := makeSvc()

		events, err := svc.ListEvents(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(events) != 1 || repo.listCalls != 1 {
			t.Fatalf("expected one stored event, got %+v after %d reads", events, repo.listCalls)
		}
	})
}

type fakeEventRepo struct {
	events    map[string]domain.Event
	caps      map[string]domain.OrganizerCap
	order     []string
	listCalls int
}

func (f *fakeEventRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeEventRepo) CreateEvent(_ context.Context, event domain.Event) error {
	f.events[event.ID] = event
	f.order = append(f.order, event.ID)
	return nil
}

func (f *fakeEventRepo) CreateOrganizerCap(_ context.Context, cap domain.OrganizerCap) error {
	f.caps[cap.ID] = cap
	return nil
}

func (f *fakeEventRepo) GetEventForUpdate(_ context.Context, id string) (domain.Event, error) {
	ev, ok := f.events[id]
	if !ok {
		return domain.Event{}, domain.ErrEventNotFound
	}
	return ev, nil
}

func (f *fakeEventRepo) ListEvents(_ context.Context) ([]domain.Event, error) {
	f.listCalls++
	events := make([]domain.Event, 0, len(f.order))
	for _, id := range f.order {
		events = append(events, f.events[id])
	}
	return events, nil
}

func (f *fakeEventRepo) UpdateDescription(_ context.Context, id, description string) error {
	ev, ok := f.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	ev.Description = description
	f.events[id] = ev
	return nil
}

func (f *fakeEventRepo) MarkCancelled(_ context.Context, id string) error {
	ev, ok := f.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	ev.Cancelled = true
	f.events[id] = ev
	return nil
}

func (f *fakeEventRepo) DrainPool(_ context.Context, id string) error {
	ev, ok := f.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	ev.Pool = 0
	f.events[id] = ev
	return nil
}

func (f *fakeEventRepo) GetOrganizerCap(_ context.Context, capID string) (domain.OrganizerCap, error) {
	cap, ok := f.caps[capID]
	if !ok {
		return domain.OrganizerCap{}, domain.ErrCapNotFound
	}
	return cap, nil
}

type noticeRecorder struct {
	notices []notify.Notice
}

func (r *noticeRecorder) Publish(_ context.Context, n notify.Notice) error {
	r.notices = append(r.notices, n)
	return nil
}

type catalogRecorder struct {
	events        []domain.Event
	ok            bool
	sets          int
	invalidations int
}

func (c *catalogRecorder) Get(context.Context) ([]domain.Event, bool) {
	return c.events, c.ok
}

func (c *catalogRecorder) Set(_ context.Context, events []domain.Event) {
	c.events = events
	c.ok = true
	c.sets++
}

func (c *catalogRecorder) Invalidate(context.Context) {
	c.events = nil
	c.ok = false
	c.invalidations++
}
