// Copyright 2026 The GLPI Notifier Authors
// SPDX-License-Identifier: Apache-2.0

package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/glpinotify/glpinotify/lib/clock"
	"github.com/glpinotify/glpinotify/lib/glpi"
	"github.com/glpinotify/glpinotify/lib/heartbeat"
	"github.com/glpinotify/glpinotify/lib/notify"
	"github.com/glpinotify/glpinotify/lib/seenstate"
)

// Transport is the slice of the GLPI client the poller uses.
type Transport interface {
	ResolveTicketFields(ctx context.Context) (glpi.TicketFields, error)
	SearchNew(ctx context.Context, fields glpi.TicketFields, limit int) ([]glpi.Ticket, error)
	SearchRecent(ctx context.Context, fields glpi.TicketFields, limit int) ([]glpi.Ticket, error)
	DropSession()
	KillSession(ctx context.Context)
}

// Notifier delivers one notification and reports its outcome.
type Notifier interface {
	Deliver(ctx context.Context, notification notify.Notification) (notify.Outcome, error)
}

// Config holds configuration for creating a Poller.
type Config struct {
	// Transport queries the GLPI server. Required.
	Transport Transport

	// Notifier delivers toasts. Required.
	Notifier Notifier

	// Store is the seen-set, already loaded. Required.
	Store *seenstate.Set

	// StatePath is where the seen-set persists. Required.
	StatePath string

	// Heartbeat records cycle liveness. Optional.
	Heartbeat *heartbeat.Writer

	// Interval is the time between cycles. Required, positive.
	Interval time.Duration

	// BatchLimit caps how many rows a search requests. Defaults to 200.
	BatchLimit int

	// FirstRunNotify replays the backlog as notifications on a fresh
	// install instead of seeding the seen-set silently.
	FirstRunNotify bool

	// DebugList logs the most recent tickets when a cycle finds nothing
	// new, to confirm the query itself works.
	DebugList bool

	// Clock defaults to the real clock. Tests inject a fake.
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Poller runs the poll-notify-persist cycle.
type Poller struct {
	transport      Transport
	notifier       Notifier
	store          *seenstate.Set
	statePath      string
	heartbeat      *heartbeat.Writer
	interval       time.Duration
	batchLimit     int
	firstRunNotify bool
	debugList      bool
	clock          clock.Clock
	logger         *slog.Logger

	fields         glpi.TicketFields
	fieldsResolved bool
	firstRun       bool
}

// New creates a Poller from the given configuration.
func New(config Config) (*Poller, error) {
	if config.Transport == nil {
		return nil, fmt.Errorf("poller: Transport is required")
	}
	if config.Notifier == nil {
		return nil, fmt.Errorf("poller: Notifier is required")
	}
	if config.Store == nil {
		return nil, fmt.Errorf("poller: Store is required")
	}
	if config.StatePath == "" {
		return nil, fmt.Errorf("poller: StatePath is required")
	}
	if config.Interval <= 0 {
		return nil, fmt.Errorf("poller: Interval must be positive")
	}

	batchLimit := config.BatchLimit
	if batchLimit <= 0 {
		batchLimit = 200
	}
	pollerClock := config.Clock
	if pollerClock == nil {
		pollerClock = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Poller{
		transport:      config.Transport,
		notifier:       config.Notifier,
		store:          config.Store,
		statePath:      config.StatePath,
		heartbeat:      config.Heartbeat,
		interval:       config.Interval,
		batchLimit:     batchLimit,
		firstRunNotify: config.FirstRunNotify,
		debugList:      config.DebugList,
		clock:          pollerClock,
		logger:         logger,
		firstRun:       config.Store.FirstRun(),
	}, nil
}

// Run polls until ctx is canceled, then invalidates the server session
// and returns. Only a schema error aborts the loop early; every other
// cycle failure is logged and retried on the next interval.
func (poller *Poller) Run(ctx context.Context) error {
	defer func() {
		// ctx is already canceled on the way out; give the goodbye call
		// its own short deadline.
		killCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		poller.transport.KillSession(killCtx)
	}()

	for {
		if err := poller.Tick(ctx); err != nil {
			if glpi.IsSchemaError(err) {
				return err
			}
			if ctx.Err() != nil {
				return nil
			}
			poller.logger.Error("poll cycle failed", "error", err)
			poller.transport.DropSession()
		}

		if !poller.sleepInterval(ctx) {
			return nil
		}
	}
}

// sleepInterval waits out the poll interval in one-second slices so
// cancellation is honored within a second even mid-wait. Returns false
// when ctx was canceled.
func (poller *Poller) sleepInterval(ctx context.Context) bool {
	remaining := poller.interval
	for remaining > 0 {
		if ctx.Err() != nil {
			return false
		}
		step := time.Second
		if remaining < step {
			step = remaining
		}
		poller.clock.Sleep(step)
		remaining -= step
	}
	return ctx.Err() == nil
}

// Tick runs one poll cycle: resolve fields if needed, query, notify
// unseen tickets newest first, persist, heartbeat.
func (poller *Poller) Tick(ctx context.Context) error {
	newCount, err := poller.tick(ctx)
	poller.writeHeartbeat(newCount, err)
	return err
}

func (poller *Poller) tick(ctx context.Context) (int, error) {
	if !poller.fieldsResolved {
		fields, err := poller.transport.ResolveTicketFields(ctx)
		if err != nil {
			return 0, err
		}
		poller.fields = fields
		poller.fieldsResolved = true
	}

	tickets, err := poller.transport.SearchNew(ctx, poller.fields, poller.batchLimit)
	if err != nil {
		return 0, err
	}

	if poller.firstRun && !poller.firstRunNotify {
		return 0, poller.seedFirstRun(tickets)
	}

	unseen := poller.unseenDescending(tickets)
	if len(unseen) == 0 {
		poller.logger.Debug("no new tickets", "checked", len(tickets))
		if poller.debugList {
			poller.logRecent(ctx)
		}
		poller.firstRun = false
		return 0, nil
	}

	notified := 0
	for _, ticket := range unseen {
		outcome, err := poller.notifier.Deliver(ctx, notify.Notification{
			TicketID:  ticket.ID,
			Title:     ticket.Title,
			Requester: ticket.Requester,
		})
		if err != nil {
			// Best-effort persist of the tickets already delivered this
			// cycle; the failed one stays unseen and is retried next
			// cycle.
			if saveErr := poller.store.Save(poller.statePath); saveErr != nil {
				poller.logger.Warn("persisting delivered tickets failed", "error", saveErr)
			}
			return notified, fmt.Errorf("poller: notifying ticket %d: %w", ticket.ID, err)
		}

		poller.store.Add(ticket.ID)
		notified++
		poller.logger.Info("notified",
			"ticket_id", ticket.ID,
			"title", ticket.Title,
			"outcome", outcome.String())
	}

	// One persist per batch, not one per ticket.
	if err := poller.store.Save(poller.statePath); err != nil {
		return notified, err
	}

	poller.firstRun = false
	return notified, nil
}

// seedFirstRun marks the whole batch as seen without notifying. A
// fresh install should not replay the server's backlog as toasts.
func (poller *Poller) seedFirstRun(tickets []glpi.Ticket) error {
	for _, ticket := range tickets {
		poller.store.Add(ticket.ID)
	}
	if err := poller.store.Save(poller.statePath); err != nil {
		return err
	}
	poller.logger.Info("first run, seeded seen set silently", "count", len(tickets))
	poller.firstRun = false
	return nil
}

// unseenDescending filters tickets down to ids not in the seen-set,
// sorted descending so the newest ticket is announced first. Duplicate
// rows in one batch collapse to one notification.
func (poller *Poller) unseenDescending(tickets []glpi.Ticket) []glpi.Ticket {
	byID := make(map[int64]glpi.Ticket)
	for _, ticket := range tickets {
		if poller.store.Contains(ticket.ID) {
			continue
		}
		byID[ticket.ID] = ticket
	}

	unseen := make([]glpi.Ticket, 0, len(byID))
	for _, ticket := range byID {
		unseen = append(unseen, ticket)
	}
	sort.Slice(unseen, func(i, j int) bool { return unseen[i].ID > unseen[j].ID })
	return unseen
}

// logRecent lists the newest tickets regardless of status, so an
// operator staring at an empty cycle can tell "no new tickets" from
// "the query is broken".
func (poller *Poller) logRecent(ctx context.Context) {
	recent, err := poller.transport.SearchRecent(ctx, poller.fields, 5)
	if err != nil {
		poller.logger.Debug("recent ticket listing failed", "error", err)
		return
	}
	for _, ticket := range recent {
		poller.logger.Debug("recent ticket", "ticket_id", ticket.ID, "title", ticket.Title)
	}
}

func (poller *Poller) writeHeartbeat(newCount int, tickErr error) {
	if poller.heartbeat == nil {
		return
	}
	beat := heartbeat.Beat{
		Timestamp: poller.clock.Now(),
		OK:        tickErr == nil,
		NewCount:  newCount,
	}
	if tickErr != nil {
		beat.Error = tickErr.Error()
	}
	if err := poller.heartbeat.Write(beat); err != nil {
		poller.logger.Warn("heartbeat write failed", "error", err)
	}
}
