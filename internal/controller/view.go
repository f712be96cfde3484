// Package controller holds the role-scoped appointment views. Each
// controller owns a cached, filtered list of records for one actor and
// applies mutations optimistically: snapshot, apply, commit-or-revert.
// Controllers never share mutable state; cross-role consistency happens
// through each side's own reload.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mamacare/appointment-api/internal/model"
	apperrors "github.com/mamacare/appointment-api/pkg/errors"
)

// ErrMutationInFlight rejects a second mutating call for the same
// appointment while the first has not resolved, so a stale optimistic
// update cannot clobber a newer one.
var ErrMutationInFlight = apperrors.NewValidation("another update for this appointment is still in flight")

// Service is the slice of the appointment service the controllers drive.
type Service interface {
	Request(ctx context.Context, actor model.Actor, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	ListForRole(ctx context.Context, actor model.Actor, status *model.AppointmentStatus) ([]*model.Appointment, error)
	SetStatus(ctx context.Context, id uuid.UUID, target model.AppointmentStatus, actor model.Actor) (*model.Appointment, error)
	Reschedule(ctx context.Context, id uuid.UUID, newDateTime time.Time, actor model.Actor) (*model.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID, actor model.Actor) error
}

// Controller is the behavior common to all three role views.
type Controller interface {
	Load(ctx context.Context) error
	SetFilter(ctx context.Context, status *model.AppointmentStatus) error
	Records() []*model.Appointment
	Filter() *model.AppointmentStatus
	Busy() bool
	LastError() error
	ChangeStatus(ctx context.Context, id uuid.UUID, target model.AppointmentStatus) (*model.Appointment, error)
	Reschedule(ctx context.Context, id uuid.UUID, newDateTime time.Time) (*model.Appointment, error)
}

// view carries the cached list and the optimistic-mutation machinery
// shared by the role controllers.
type view struct {
	svc   Service
	actor model.Actor

	mu       sync.Mutex
	records  []*model.Appointment
	filter   *model.AppointmentStatus
	busy     bool
	lastErr  error
	inflight map[uuid.UUID]struct{}
}

func newView(svc Service, actor model.Actor) view {
	return view{
		svc:      svc,
		actor:    actor,
		inflight: make(map[uuid.UUID]struct{}),
	}
}

// Load replaces the cached list wholesale and clears the error slot.
func (v *view) Load(ctx context.Context) error {
	v.mu.Lock()
	filter := v.filter
	v.busy = true
	v.mu.Unlock()

	records, err := v.svc.ListForRole(ctx, v.actor, filter)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.busy = false
	if err != nil {
		v.lastErr = err
		return err
	}
	v.records = records
	v.lastErr = nil
	return nil
}

// SetFilter changes the status filter and refreshes from the store. The
// filtering is server-side so large histories never live in the cache.
func (v *view) SetFilter(ctx context.Context, status *model.AppointmentStatus) error {
	v.mu.Lock()
	v.filter = status
	v.mu.Unlock()
	return v.Load(ctx)
}

// Records returns a defensive copy of the cached list.
func (v *view) Records() []*model.Appointment {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]*model.Appointment, len(v.records))
	for i, r := range v.records {
		out[i] = r.Clone()
	}
	return out
}

func (v *view) Filter() *model.AppointmentStatus {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

func (v *view) Busy() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.busy
}

func (v *view) LastError() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastErr
}

// ChangeStatus applies one transition optimistically.
func (v *view) ChangeStatus(ctx context.Context, id uuid.UUID, target model.AppointmentStatus) (*model.Appointment, error) {
	return v.commitOptimistic(id,
		func(apt *model.Appointment) { apt.Status = target },
		func() (*model.Appointment, error) { return v.svc.SetStatus(ctx, id, target, v.actor) },
	)
}

// Reschedule moves the cached record to the new time optimistically.
func (v *view) Reschedule(ctx context.Context, id uuid.UUID, newDateTime time.Time) (*model.Appointment, error) {
	return v.commitOptimistic(id,
		func(apt *model.Appointment) { apt.DateTime = newDateTime },
		func() (*model.Appointment, error) { return v.svc.Reschedule(ctx, id, newDateTime, v.actor) },
	)
}

// commitOptimistic is the three-step protocol: snapshot the cached record,
// apply the mutation locally, then commit through the service; on failure
// the snapshot is restored and the error surfaced, leaving the cache
// exactly as it was before the call.
func (v *view) commitOptimistic(id uuid.UUID, apply func(*model.Appointment), commit func() (*model.Appointment, error)) (*model.Appointment, error) {
	if err := v.beginMutation(id); err != nil {
		return nil, err
	}
	defer v.endMutation(id)

	snapshot := v.applyLocal(id, apply)

	updated, err := commit()

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		if snapshot != nil {
			v.replaceLocked(snapshot)
		}
		v.lastErr = err
		return nil, err
	}
	v.lastErr = nil
	v.reconcileLocked(updated)
	return updated, nil
}

func (v *view) beginMutation(id uuid.UUID) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, exists := v.inflight[id]; exists {
		return ErrMutationInFlight
	}
	v.inflight[id] = struct{}{}
	return nil
}

func (v *view) endMutation(id uuid.UUID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.inflight, id)
}

// applyLocal mutates the cached record in place and returns a snapshot of
// its pre-image, or nil if the record is not cached (e.g. filtered out).
func (v *view) applyLocal(id uuid.UUID, apply func(*model.Appointment)) *model.Appointment {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, r := range v.records {
		if r.ID == id {
			snapshot := r.Clone()
			apply(r)
			return snapshot
		}
	}
	return nil
}

// reconcileLocked replaces the affected record with the authoritative copy
// (no full reload). A record whose new state no longer matches the filter
// drops out of the cached list.
func (v *view) reconcileLocked(updated *model.Appointment) {
	if v.filter != nil && updated.Status != *v.filter {
		v.removeLocked(updated.ID)
		return
	}
	v.replaceLocked(updated)
}

func (v *view) replaceLocked(apt *model.Appointment) {
	for i, r := range v.records {
		if r.ID == apt.ID {
			v.records[i] = apt.Clone()
			return
		}
	}
}

func (v *view) removeLocked(id uuid.UUID) {
	for i, r := range v.records {
		if r.ID == id {
			v.records = append(v.records[:i], v.records[i+1:]...)
			return
		}
	}
}

// insertLocked appends a record that matches the current filter.
func (v *view) insertLocked(apt *model.Appointment) {
	if v.filter != nil && apt.Status != *v.filter {
		return
	}
	v.records = append(v.records, apt.Clone())
}
