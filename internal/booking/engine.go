// Package booking is the reservation scheduling engine: it validates
// requests, checks them against the current snapshot of the record store,
// applies lifecycle transitions and answers board/search queries.
//
// Every mutating operation runs read-snapshot, decide, write as one
// serialized span.  The engine holds an in-process mutex for that span and,
// when a distributed Locker is configured, a cluster-wide lock as well, so
// two concurrent submissions can never both pass the conflict check
// against a stale snapshot.
package booking

import (
    "context"
    "errors"
    "strings"
    "sync"
    "time"

    "github.com/google/uuid"
    "go.uber.org/zap"

    "github.com/iliyamo/gear-reservation/internal/catalog"
    "github.com/iliyamo/gear-reservation/internal/metrics"
    "github.com/iliyamo/gear-reservation/internal/model"
    "github.com/iliyamo/gear-reservation/internal/queue"
    "github.com/iliyamo/gear-reservation/internal/repository"
)

// Action names a lifecycle transition.
type Action string

const (
    ActionApprove Action = "approve"
    ActionReject  Action = "reject"
    ActionReturn  Action = "return"
    ActionCancel  Action = "cancel"
)

type transition struct {
    from  []model.Status
    to    model.Status
    event string
}

var transitions = map[Action]transition{
    ActionApprove: {from: []model.Status{model.StatusPending}, to: model.StatusApproved, event: queue.EventApproved},
    ActionReject:  {from: []model.Status{model.StatusPending}, to: model.StatusRejected, event: queue.EventRejected},
    ActionReturn:  {from: []model.Status{model.StatusApproved}, to: model.StatusReturned, event: queue.EventReturned},
    ActionCancel:  {from: []model.Status{model.StatusPending, model.StatusApproved}, to: model.StatusCancelled, event: queue.EventCancelled},
}

func (t transition) allows(s model.Status) bool {
    for _, f := range t.from {
        if f == s {
            return true
        }
    }
    return false
}

// Locker is a cluster-wide mutual exclusion primitive.  Lock blocks until
// the lock is held and returns the func that releases it.
type Locker interface {
    Lock(ctx context.Context) (unlock func(), err error)
}

// EventPublisher receives lifecycle events after they are committed.
type EventPublisher interface {
    PublishReservationEvent(ctx context.Context, ev queue.ReservationEvent) error
}

// Engine is the reservation lifecycle manager.  It is safe for concurrent
// use.
type Engine struct {
    store  repository.RecordStore
    log    *zap.Logger
    mu     sync.Mutex
    locker Locker
    events EventPublisher
    now    func() time.Time
    newID  func() string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLocker adds a distributed lock around every mutation.
func WithLocker(l Locker) Option { return func(e *Engine) { e.locker = l } }

// WithPublisher sends lifecycle events to p after each committed mutation.
func WithPublisher(p EventPublisher) Option { return func(e *Engine) { e.events = p } }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithIDGenerator overrides order id generation.
func WithIDGenerator(gen func() string) Option { return func(e *Engine) { e.newID = gen } }

// NewEngine returns an engine over store.
func NewEngine(store repository.RecordStore, log *zap.Logger, opts ...Option) *Engine {
    if log == nil {
        log = zap.NewNop()
    }
    e := &Engine{
        store: store,
        log:   log,
        now:   time.Now,
        newID: shortUUID,
    }
    for _, opt := range opts {
        opt(e)
    }
    return e
}

// shortUUID yields the first eight hex digits of a random UUID.
func shortUUID() string { return uuid.NewString()[:8] }

// CreateRequest is one booking submission.  Every (resource, slot) pair of
// Resources × Slots becomes one record.
type CreateRequest struct {
    RequesterName string
    Department    string
    Resources     []string
    Date          time.Time
    Slots         []string
    Purpose       string
}

// normalize trims text fields, drops duplicate selections and validates
// everything against the catalog.  It returns the cleaned request and the
// candidate pairs in submission order.
func (r CreateRequest) normalize() (CreateRequest, []SlotKey, error) {
    r.RequesterName = strings.TrimSpace(r.RequesterName)
    r.Department = strings.TrimSpace(r.Department)
    r.Purpose = strings.TrimSpace(r.Purpose)
    switch {
    case r.RequesterName == "":
        return r, nil, &ValidationError{Field: "requester_name", Reason: "is required"}
    case r.Department == "":
        return r, nil, &ValidationError{Field: "department", Reason: "is required"}
    case r.Purpose == "":
        return r, nil, &ValidationError{Field: "purpose", Reason: "is required"}
    case r.Date.IsZero():
        return r, nil, &ValidationError{Field: "date", Reason: "is required"}
    }
    r.Date = time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), 0, 0, 0, 0, time.UTC)

    resources, err := dedupe(r.Resources, "resources", catalog.IsResource)
    if err != nil {
        return r, nil, err
    }
    slots, err := dedupe(r.Slots, "slots", catalog.IsSlot)
    if err != nil {
        return r, nil, err
    }
    r.Resources, r.Slots = resources, slots

    keys := make([]SlotKey, 0, len(resources)*len(slots))
    for _, res := range resources {
        for _, s := range slots {
            keys = append(keys, SlotKey{Resource: res, Slot: s})
        }
    }
    return r, keys, nil
}

func dedupe(in []string, field string, known func(string) bool) ([]string, error) {
    out := make([]string, 0, len(in))
    seen := make(map[string]struct{}, len(in))
    for _, v := range in {
        v = strings.TrimSpace(v)
        if v == "" {
            continue
        }
        if !known(v) {
            return nil, &ValidationError{Field: field, Reason: "unknown value " + v}
        }
        if _, ok := seen[v]; ok {
            continue
        }
        seen[v] = struct{}{}
        out = append(out, v)
    }
    if len(out) == 0 {
        return nil, &ValidationError{Field: field, Reason: "select at least one"}
    }
    return out, nil
}

// CreateReservation books every (resource, slot) pair of req under one new
// order id.  If any pair is already held by a PENDING or APPROVED record,
// nothing is written and a *ConflictError lists all held pairs.
func (e *Engine) CreateReservation(ctx context.Context, req CreateRequest) (string, error) {
    start := time.Now()
    orderID, err := e.create(ctx, req)
    e.observe("create", start, err)
    return orderID, err
}

func (e *Engine) create(ctx context.Context, req CreateRequest) (string, error) {
    req, keys, err := req.normalize()
    if err != nil {
        return "", err
    }

    var rows []model.ReservationRecord
    err = e.serialize(ctx, func() error {
        snapshot, err := e.load(ctx)
        if err != nil {
            return err
        }
        if conflicts := FindConflicts(keys, req.Date, snapshot); len(conflicts) > 0 {
            return &ConflictError{Conflicts: conflicts}
        }

        orderID := e.freshOrderID(snapshot)
        now := e.timestamp()
        rows = make([]model.ReservationRecord, 0, len(keys))
        for _, k := range keys {
            rows = append(rows, model.ReservationRecord{
                OrderID:       orderID,
                RequesterName: req.RequesterName,
                Department:    req.Department,
                Resource:      k.Resource,
                Date:          req.Date,
                Slot:          k.Slot,
                Purpose:       req.Purpose,
                Status:        model.StatusPending,
                SubmittedAt:   now,
            })
        }
        if err := e.store.AppendRows(ctx, rows); err != nil {
            if errors.Is(err, repository.ErrConflict) {
                return e.storeConflict(ctx, keys, req.Date)
            }
            return &StoreError{Op: "append", Err: err}
        }
        return nil
    })
    if err != nil {
        return "", err
    }

    orderID := rows[0].OrderID
    metrics.AddRows(string(model.StatusPending), len(rows))
    e.log.Info("reservation created",
        zap.String("order_id", orderID),
        zap.String("requester", req.RequesterName),
        zap.String("date", model.DateKey(req.Date)),
        zap.Int("rows", len(rows)),
    )
    e.publish(ctx, queue.EventCreated, rows)
    return orderID, nil
}

// storeConflict builds the error for a write refused by the store's own
// exclusivity key, which only happens when another writer bypassed this
// engine's lock.
func (e *Engine) storeConflict(ctx context.Context, keys []SlotKey, date time.Time) error {
    snapshot, err := e.load(ctx)
    if err != nil {
        return err
    }
    conflicts := FindConflicts(keys, date, snapshot)
    e.log.Warn("store refused a write the snapshot allowed", zap.Int("conflicts", len(conflicts)))
    return &ConflictError{Conflicts: conflicts}
}

func (e *Engine) freshOrderID(snapshot []model.ReservationRecord) string {
    used := make(map[string]struct{}, len(snapshot))
    for _, r := range snapshot {
        used[r.OrderID] = struct{}{}
    }
    for {
        id := e.newID()
        if _, taken := used[id]; !taken && id != "" {
            return id
        }
    }
}

// Approve moves the PENDING row (orderID, resource, slot) to APPROVED.
func (e *Engine) Approve(ctx context.Context, orderID, resource, slot string) error {
    return e.transitionRow(ctx, ActionApprove, orderID, resource, slot)
}

// Reject moves the PENDING row (orderID, resource, slot) to REJECTED.
func (e *Engine) Reject(ctx context.Context, orderID, resource, slot string) error {
    return e.transitionRow(ctx, ActionReject, orderID, resource, slot)
}

// Return moves every APPROVED row of orderID to RETURNED.
func (e *Engine) Return(ctx context.Context, orderID string) error {
    return e.transitionOrder(ctx, ActionReturn, orderID)
}

// Cancel moves every PENDING or APPROVED row of orderID to CANCELLED.
func (e *Engine) Cancel(ctx context.Context, orderID string) error {
    return e.transitionOrder(ctx, ActionCancel, orderID)
}

func (e *Engine) transitionRow(ctx context.Context, action Action, orderID, resource, slot string) error {
    orderID, resource, slot = strings.TrimSpace(orderID), strings.TrimSpace(resource), strings.TrimSpace(slot)
    return e.apply(ctx, action, orderID, func(r model.ReservationRecord) bool {
        return r.OrderID == orderID && r.Resource == resource && r.Slot == slot
    }, func() *NotFoundError {
        return &NotFoundError{OrderID: orderID, Resource: resource, Slot: slot, Want: transitions[action].from[0]}
    })
}

func (e *Engine) transitionOrder(ctx context.Context, action Action, orderID string) error {
    orderID = strings.TrimSpace(orderID)
    return e.apply(ctx, action, orderID, func(r model.ReservationRecord) bool {
        return r.OrderID == orderID
    }, func() *NotFoundError {
        nf := &NotFoundError{OrderID: orderID}
        if t := transitions[action]; len(t.from) == 1 {
            nf.Want = t.from[0]
        }
        return nf
    })
}

// apply runs one transition over every record selected by match.  Rows
// whose status does not allow the action are skipped.  When no row
// qualifies the result is InvalidTransition if a selected row is already
// terminal, NotFound otherwise.
func (e *Engine) apply(ctx context.Context, action Action, orderID string, match func(model.ReservationRecord) bool, notFound func() *NotFoundError) error {
    start := time.Now()
    t := transitions[action]

    var changed []model.ReservationRecord
    err := e.serialize(ctx, func() error {
        snapshot, err := e.load(ctx)
        if err != nil {
            return err
        }
        var terminal *model.ReservationRecord
        var updates []model.RowUpdate
        now := e.timestamp()
        for i := range snapshot {
            r := snapshot[i]
            if !match(r) {
                continue
            }
            if !t.allows(r.Status) {
                if r.Status.Terminal() && terminal == nil {
                    terminal = &snapshot[i]
                }
                continue
            }
            updates = append(updates, model.RowUpdate{
                OrderID:     r.OrderID,
                Resource:    r.Resource,
                Slot:        r.Slot,
                Status:      t.to,
                ProcessedAt: now,
            })
            r.Status = t.to
            at := now
            r.ProcessedAt = &at
            changed = append(changed, r)
        }
        if len(updates) == 0 {
            if terminal != nil {
                return &InvalidTransitionError{OrderID: orderID, From: terminal.Status, Action: action}
            }
            return notFound()
        }
        if err := e.store.UpdateRows(ctx, updates); err != nil {
            changed = nil
            return &StoreError{Op: "update", Err: err}
        }
        return nil
    })
    e.observe(string(action), start, err)
    if err != nil {
        return err
    }

    metrics.AddRows(string(t.to), len(changed))
    e.log.Info("reservation "+string(action),
        zap.String("order_id", orderID),
        zap.String("status", string(t.to)),
        zap.Int("rows", len(changed)),
    )
    e.publish(ctx, t.event, changed)
    return nil
}

// serialize runs fn while holding the engine mutex and, if configured, the
// distributed lock.
func (e *Engine) serialize(ctx context.Context, fn func() error) error {
    e.mu.Lock()
    defer e.mu.Unlock()
    if e.locker != nil {
        unlock, err := e.locker.Lock(ctx)
        if err != nil {
            return &StoreError{Op: "lock", Err: err}
        }
        defer unlock()
    }
    return fn()
}

func (e *Engine) load(ctx context.Context) ([]model.ReservationRecord, error) {
    snapshot, err := e.store.LoadAll(ctx)
    if err != nil {
        return nil, &StoreError{Op: "load", Err: err}
    }
    return snapshot, nil
}

// timestamp is now in UTC at second precision, the resolution every store
// persists.
func (e *Engine) timestamp() time.Time {
    return e.now().UTC().Truncate(time.Second)
}

func (e *Engine) publish(ctx context.Context, eventType string, rows []model.ReservationRecord) {
    if e.events == nil || len(rows) == 0 {
        return
    }
    first := rows[0]
    ev := queue.ReservationEvent{
        Type:          eventType,
        OrderID:       first.OrderID,
        RequesterName: first.RequesterName,
        Department:    first.Department,
        Date:          first.DateString(),
        Rows:          make([]queue.EventRow, 0, len(rows)),
        OccurredAt:    e.timestamp().Format(time.RFC3339),
    }
    for _, r := range rows {
        ev.Rows = append(ev.Rows, queue.EventRow{Resource: r.Resource, Slot: r.Slot, Status: string(r.Status)})
    }
    if err := e.events.PublishReservationEvent(ctx, ev); err != nil {
        e.log.Warn("publish reservation event failed",
            zap.String("type", eventType),
            zap.String("order_id", first.OrderID),
            zap.Error(err),
        )
    }
}

func (e *Engine) observe(op string, start time.Time, err error) {
    metrics.ObserveOperation(op, resultLabel(err), time.Since(start))
    if errors.Is(err, ErrStoreUnavailable) {
        e.log.Error("reservation store failure", zap.String("op", op), zap.Error(err))
    }
}

func resultLabel(err error) string {
    switch {
    case err == nil:
        return "ok"
    case errors.Is(err, ErrValidation):
        return "validation"
    case errors.Is(err, ErrConflict):
        return "conflict"
    case errors.Is(err, ErrNotFound):
        return "not_found"
    case errors.Is(err, ErrInvalidTransition):
        return "invalid_transition"
    case errors.Is(err, ErrStoreUnavailable):
        return "store_error"
    }
    return "error"
}

// DailyAvailability returns the slot board of resource on date from the
// current snapshot.
func (e *Engine) DailyAvailability(ctx context.Context, resource string, date time.Time) ([]SlotState, error) {
    snapshot, err := e.load(ctx)
    if err != nil {
        return nil, err
    }
    return DailyAvailability(resource, date, snapshot), nil
}

// Search finds records whose requester name or department contains text.
func (e *Engine) Search(ctx context.Context, text string) ([]model.ReservationRecord, error) {
    if strings.TrimSpace(text) == "" {
        return []model.ReservationRecord{}, nil
    }
    snapshot, err := e.load(ctx)
    if err != nil {
        return nil, err
    }
    return Search(text, snapshot), nil
}

// PendingQueue lists the records awaiting approval.
func (e *Engine) PendingQueue(ctx context.Context) ([]model.ReservationRecord, error) {
    snapshot, err := e.load(ctx)
    if err != nil {
        return nil, err
    }
    return PendingQueue(snapshot), nil
}

// UsageStatistics counts records per resource.
func (e *Engine) UsageStatistics(ctx context.Context) (map[string]int, error) {
    snapshot, err := e.load(ctx)
    if err != nil {
        return nil, err
    }
    return UsageStatistics(snapshot), nil
}

// AllRecords returns the full snapshot in insertion order.
func (e *Engine) AllRecords(ctx context.Context) ([]model.ReservationRecord, error) {
    return e.load(ctx)
}
