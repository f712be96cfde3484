package appointment

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamacare/appointment-api/internal/model"
	apperrors "github.com/mamacare/appointment-api/pkg/errors"
	"github.com/mamacare/appointment-api/pkg/logger"
	"github.com/mamacare/appointment-api/pkg/metrics"
)

// Prometheus collectors register globally, so the test metrics are created
// once for the whole package.
var testMetrics = metrics.NewMetrics("appointment_service_test")

// fakeRepo is an in-memory store with the same compare-and-swap semantics
// as the postgres implementation: a write only lands when updated_at still
// matches, otherwise it reports a version conflict.
type fakeRepo struct {
	mu            sync.Mutex
	items         map[uuid.UUID]*model.Appointment
	conflictsLeft int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeRepo) Create(_ context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	apt.ID = uuid.New()
	now := time.Now().UTC()
	apt.CreatedAt = now
	apt.UpdatedAt = now
	r.items[apt.ID] = apt.Clone()
	return nil
}

func (r *fakeRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	apt, ok := r.items[id]
	if !ok {
		return nil, apperrors.NewNotFound("appointment")
	}
	return apt.Clone(), nil
}

func (r *fakeRepo) ListByParticipant(_ context.Context, userID uuid.UUID, role model.Role, status *model.AppointmentStatus) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, apt := range r.items {
		var match bool
		switch role {
		case model.RolePatient:
			match = apt.PatientID == userID
		case model.RoleDoctor:
			match = apt.DoctorID == userID
		case model.RoleNurse:
			match = apt.NurseID != nil && *apt.NurseID == userID
		default:
			match = apt.PatientID == userID || apt.DoctorID == userID ||
				(apt.NurseID != nil && *apt.NurseID == userID)
		}
		if !match {
			continue
		}
		if status != nil && apt.Status != *status {
			continue
		}
		out = append(out, apt.Clone())
	}
	return out, nil
}

func (r *fakeRepo) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]interface{}, expectedVersion time.Time) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	apt, ok := r.items[id]
	if !ok {
		return nil, apperrors.NewNotFound("appointment")
	}
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		return nil, apperrors.NewVersionConflict()
	}
	if !apt.UpdatedAt.Equal(expectedVersion) {
		return nil, apperrors.NewVersionConflict()
	}

	for col, val := range fields {
		switch col {
		case "status":
			apt.Status = val.(model.AppointmentStatus)
		case "date_time":
			apt.DateTime = val.(time.Time)
		case "notes":
			n := val.(string)
			apt.Notes = &n
		case "nurse_id":
			nid := val.(uuid.UUID)
			apt.NurseID = &nid
		case "reason":
			apt.Reason = val.(string)
		}
	}
	now := time.Now().UTC()
	if !now.After(apt.UpdatedAt) {
		now = apt.UpdatedAt.Add(time.Nanosecond)
	}
	apt.UpdatedAt = now
	return apt.Clone(), nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return apperrors.NewNotFound("appointment")
	}
	delete(r.items, id)
	return nil
}

type fakeDirectory struct {
	missing map[uuid.UUID]bool
	names   map[uuid.UUID]string
}

func (d *fakeDirectory) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return !d.missing[id], nil
}

func (d *fakeDirectory) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	name := d.names[id]
	if name == "" {
		name = "Adaeze Okafor"
	}
	return &model.Doctor{ID: id, Name: name, Available: true}, nil
}

type enqueued struct {
	TargetID uuid.UUID
	Title    string
	Body     string
	Data     map[string]string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []enqueued
}

func (n *fakeNotifier) Enqueue(_ context.Context, targetID uuid.UUID, title, body string, data map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, enqueued{TargetID: targetID, Title: title, Body: body, Data: data})
	return nil
}

func (n *fakeNotifier) all() []enqueued {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]enqueued, len(n.sent))
	copy(out, n.sent)
	return out
}

func newTestService() (*Service, *fakeRepo, *fakeNotifier) {
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	svc := NewService(repo, &fakeDirectory{
		missing: make(map[uuid.UUID]bool),
		names:   make(map[uuid.UUID]string),
	}, notifier, testMetrics, log)
	return svc, repo, notifier
}

func patientActor() model.Actor { return model.Actor{UserID: uuid.New(), Role: model.RolePatient} }

func mustRequest(t *testing.T, svc *Service, patient model.Actor, doctorID uuid.UUID) *model.Appointment {
	t.Helper()
	apt, err := svc.Request(context.Background(), patient, &model.CreateAppointmentRequest{
		DoctorID:    doctorID,
		PatientName: "Ama Mensah",
		DateTime:    time.Now().Add(48 * time.Hour),
		Reason:      "routine antenatal check",
	})
	require.NoError(t, err)
	return apt
}

func TestRequestValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	patient := patientActor()
	doctorID := uuid.New()

	valid := func() *model.CreateAppointmentRequest {
		return &model.CreateAppointmentRequest{
			DoctorID: doctorID,
			DateTime: time.Now().Add(24 * time.Hour),
			Reason:   "routine antenatal check",
		}
	}

	t.Run("non-patient rejected", func(t *testing.T) {
		_, err := svc.Request(ctx, model.Actor{UserID: uuid.New(), Role: model.RoleDoctor}, valid())
		assert.True(t, apperrors.IsAuth(err))
	})

	t.Run("blank reason rejected", func(t *testing.T) {
		req := valid()
		req.Reason = "   "
		_, err := svc.Request(ctx, patient, req)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("past time rejected", func(t *testing.T) {
		req := valid()
		req.DateTime = time.Now().Add(-time.Hour)
		_, err := svc.Request(ctx, patient, req)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("self-booking rejected", func(t *testing.T) {
		req := valid()
		req.DoctorID = patient.UserID
		_, err := svc.Request(ctx, patient, req)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("unknown doctor rejected", func(t *testing.T) {
		missingID := uuid.New()
		svc.directory.(*fakeDirectory).missing[missingID] = true
		req := valid()
		req.DoctorID = missingID
		_, err := svc.Request(ctx, patient, req)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestRequestCreatesPendingAndNotifiesDoctor(t *testing.T) {
	svc, _, notifier := newTestService()
	patient := patientActor()
	doctorID := uuid.New()

	apt := mustRequest(t, svc, patient, doctorID)

	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	assert.Equal(t, patient.UserID, apt.PatientID)
	assert.Equal(t, doctorID, apt.DoctorID)
	// Doctor name filled from the directory when the request omits it.
	assert.Equal(t, "Adaeze Okafor", apt.DoctorName)

	sent := notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, doctorID, sent[0].TargetID)
	assert.Equal(t, "New Appointment Request", sent[0].Title)
	assert.Equal(t, "appointment_request", sent[0].Data["type"])
}

func TestSetStatusLifecycle(t *testing.T) {
	svc, _, notifier := newTestService()
	ctx := context.Background()
	patient := patientActor()
	doctorID := uuid.New()
	doctor := model.Actor{UserID: doctorID, Role: model.RoleDoctor}

	apt := mustRequest(t, svc, patient, doctorID)

	confirmed, err := svc.SetStatus(ctx, apt.ID, model.AppointmentStatusConfirmed, doctor)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, confirmed.Status)

	scheduled, err := svc.SetStatus(ctx, apt.ID, model.AppointmentStatusScheduled, doctor)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, scheduled.Status)

	completed, err := svc.SetStatus(ctx, apt.ID, model.AppointmentStatusCompleted, doctor)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, completed.Status)

	// Request notice to the doctor plus one status notice to the patient
	// per transition.
	sent := notifier.all()
	require.Len(t, sent, 4)
	for _, n := range sent[1:] {
		assert.Equal(t, patient.UserID, n.TargetID)
		assert.Equal(t, "appointment_update", n.Data["type"])
	}
	assert.Equal(t, "Appointment Confirmed", sent[1].Title)
	assert.Contains(t, sent[1].Body, "Dr. Adaeze Okafor")
}

func TestSetStatusOwnershipAndPolicy(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	patient := patientActor()
	doctorID := uuid.New()
	doctor := model.Actor{UserID: doctorID, Role: model.RoleDoctor}

	apt := mustRequest(t, svc, patient, doctorID)

	t.Run("other doctor cannot confirm", func(t *testing.T) {
		stranger := model.Actor{UserID: uuid.New(), Role: model.RoleDoctor}
		_, err := svc.SetStatus(ctx, apt.ID, model.AppointmentStatusConfirmed, stranger)
		assert.True(t, apperrors.IsAuth(err))
	})

	t.Run("patient cannot confirm", func(t *testing.T) {
		_, err := svc.SetStatus(ctx, apt.ID, model.AppointmentStatusConfirmed, patient)
		assert.True(t, apperrors.IsInvalidTransition(err))
	})

	t.Run("unassigned nurse cannot schedule", func(t *testing.T) {
		_, err := svc.SetStatus(ctx, apt.ID, model.AppointmentStatusConfirmed, doctor)
		require.NoError(t, err)
		nurse := model.Actor{UserID: uuid.New(), Role: model.RoleNurse}
		_, err = svc.SetStatus(ctx, apt.ID, model.AppointmentStatusScheduled, nurse)
		assert.True(t, apperrors.IsAuth(err))
	})

	t.Run("assigned nurse schedules", func(t *testing.T) {
		nurseID := uuid.New()
		fresh := mustRequest(t, svc, patient, doctorID)
		_, err := svc.SetStatus(ctx, fresh.ID, model.AppointmentStatusConfirmed, doctor)
		require.NoError(t, err)

		current, err := svc.repo.Get(ctx, fresh.ID)
		require.NoError(t, err)
		_, err = svc.repo.UpdateFields(ctx, fresh.ID,
			map[string]interface{}{"nurse_id": nurseID}, current.UpdatedAt)
		require.NoError(t, err)

		nurse := model.Actor{UserID: nurseID, Role: model.RoleNurse}
		updated, err := svc.SetStatus(ctx, fresh.ID, model.AppointmentStatusScheduled, nurse)
		require.NoError(t, err)
		assert.Equal(t, model.AppointmentStatusScheduled, updated.Status)
	})

	t.Run("cancel after completion rejected", func(t *testing.T) {
		fresh := mustRequest(t, svc, patient, doctorID)
		_, err := svc.SetStatus(ctx, fresh.ID, model.AppointmentStatusConfirmed, doctor)
		require.NoError(t, err)
		_, err = svc.SetStatus(ctx, fresh.ID, model.AppointmentStatusCompleted, doctor)
		require.NoError(t, err)

		_, err = svc.SetStatus(ctx, fresh.ID, model.AppointmentStatusCancelled, patient)
		assert.True(t, apperrors.IsInvalidTransition(err))
	})
}

func TestSetStatusNoOpStillRequiresParticipation(t *testing.T) {
	svc, _, notifier := newTestService()
	ctx := context.Background()
	patient := patientActor()
	doctorID := uuid.New()

	apt := mustRequest(t, svc, patient, doctorID)
	before := len(notifier.all())

	// Naming the current status must not bypass the ownership check: a
	// non-participant would otherwise receive the full record.
	stranger := model.Actor{UserID: uuid.New(), Role: model.RolePatient}
	got, err := svc.SetStatus(ctx, apt.ID, model.AppointmentStatusPending, stranger)
	assert.True(t, apperrors.IsAuth(err))
	assert.Nil(t, got)

	strangeDoctor := model.Actor{UserID: uuid.New(), Role: model.RoleDoctor}
	got, err = svc.SetStatus(ctx, apt.ID, model.AppointmentStatusPending, strangeDoctor)
	assert.True(t, apperrors.IsAuth(err))
	assert.Nil(t, got)

	// The participant's no-op is still allowed.
	got, err = svc.SetStatus(ctx, apt.ID, model.AppointmentStatusPending, patient)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, got.Status)
	assert.Len(t, notifier.all(), before)
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	patient := patientActor()
	doctorID := uuid.New()

	notes := "bring previous scans"
	dateTime := time.Now().Add(72 * time.Hour)
	created, err := svc.Request(ctx, patient, &model.CreateAppointmentRequest{
		DoctorID:    doctorID,
		DoctorName:  "Adaeze Okafor",
		PatientName: "Ama Mensah",
		DateTime:    dateTime,
		Reason:      "routine antenatal check",
		Notes:       &notes,
	})
	require.NoError(t, err)

	// Populate the one nullable field creation leaves empty.
	nurseID := uuid.New()
	stored, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	updated, err := repo.UpdateFields(ctx, created.ID,
		map[string]interface{}{"nurse_id": nurseID}, stored.UpdatedAt)
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID, patient)
	require.NoError(t, err)
	require.Equal(t, updated, got)

	assert.Equal(t, patient.UserID, got.PatientID)
	assert.Equal(t, doctorID, got.DoctorID)
	require.NotNil(t, got.NurseID)
	assert.Equal(t, nurseID, *got.NurseID)
	assert.Equal(t, "Ama Mensah", got.PatientName)
	assert.Equal(t, "Adaeze Okafor", got.DoctorName)
	assert.True(t, got.DateTime.Equal(dateTime.UTC()))
	assert.Equal(t, "routine antenatal check", got.Reason)
	require.NotNil(t, got.Notes)
	assert.Equal(t, notes, *got.Notes)
	assert.Equal(t, model.AppointmentStatusPending, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestSetStatusIdempotentNoOp(t *testing.T) {
	svc, repo, notifier := newTestService()
	ctx := context.Background()
	patient := patientActor()
	doctorID := uuid.New()
	doctor := model.Actor{UserID: doctorID, Role: model.RoleDoctor}

	apt := mustRequest(t, svc, patient, doctorID)
	confirmed, err := svc.SetStatus(ctx, apt.ID, model.AppointmentStatusConfirmed, doctor)
	require.NoError(t, err)
	before := len(notifier.all())

	again, err := svc.SetStatus(ctx, apt.ID, model.AppointmentStatusConfirmed, doctor)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, again.Status)
	assert.True(t, again.UpdatedAt.Equal(confirmed.UpdatedAt), "no-op must not touch updated_at")
	assert.Len(t, notifier.all(), before, "no-op must not notify")

	stored, err := repo.Get(ctx, apt.ID)
	require.NoError(t, err)
	assert.True(t, stored.UpdatedAt.Equal(confirmed.UpdatedAt))
}

func TestSetStatusRetriesOnceAfterConflict(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	patient := patientActor()
	doctorID := uuid.New()
	doctor := model.Actor{UserID: doctorID, Role: model.RoleDoctor}

	apt := mustRequest(t, svc, patient, doctorID)

	repo.mu.Lock()
	repo.conflictsLeft = 1
	repo.mu.Unlock()

	updated, err := svc.SetStatus(ctx, apt.ID, model.AppointmentStatusConfirmed, doctor)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, updated.Status)
}

func TestSetStatusConcurrentRaceHasOneWinner(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	patient := patientActor()
	doctorID := uuid.New()
	doctor := model.Actor{UserID: doctorID, Role: model.RoleDoctor}

	apt := mustRequest(t, svc, patient, doctorID)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	targets := []model.AppointmentStatus{
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusDeclined,
	}
	for i := range targets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.SetStatus(ctx, apt.ID, targets[i], doctor)
		}(i)
	}
	wg.Wait()

	var successes int
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.True(t, apperrors.IsInvalidTransition(err) || apperrors.IsVersionConflict(err),
				"loser error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)

	stored, err := repo.Get(ctx, apt.ID)
	require.NoError(t, err)
	assert.True(t, stored.Status.Terminal() || stored.Status == model.AppointmentStatusConfirmed)
}

func TestReschedule(t *testing.T) {
	svc, _, notifier := newTestService()
	ctx := context.Background()
	patient := patientActor()
	doctorID := uuid.New()
	doctor := model.Actor{UserID: doctorID, Role: model.RoleDoctor}

	t.Run("nurse may not reschedule", func(t *testing.T) {
		apt := mustRequest(t, svc, patient, doctorID)
		nurse := model.Actor{UserID: uuid.New(), Role: model.RoleNurse}
		_, err := svc.Reschedule(ctx, apt.ID, time.Now().Add(72*time.Hour), nurse)
		assert.True(t, apperrors.IsAuth(err))
	})

	t.Run("past time rejected", func(t *testing.T) {
		apt := mustRequest(t, svc, patient, doctorID)
		_, err := svc.Reschedule(ctx, apt.ID, time.Now().Add(-time.Hour), patient)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("same time rejected", func(t *testing.T) {
		apt := mustRequest(t, svc, patient, doctorID)
		_, err := svc.Reschedule(ctx, apt.ID, apt.DateTime, patient)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("patient reschedule resets confirmed to pending", func(t *testing.T) {
		apt := mustRequest(t, svc, patient, doctorID)
		_, err := svc.SetStatus(ctx, apt.ID, model.AppointmentStatusConfirmed, doctor)
		require.NoError(t, err)

		newTime := time.Now().Add(96 * time.Hour)
		updated, err := svc.Reschedule(ctx, apt.ID, newTime, patient)
		require.NoError(t, err)
		assert.Equal(t, model.AppointmentStatusPending, updated.Status)
		assert.True(t, updated.DateTime.Equal(newTime.UTC()))

		sent := notifier.all()
		last := sent[len(sent)-1]
		assert.Equal(t, doctorID, last.TargetID)
		assert.Equal(t, "Appointment Rescheduled", last.Title)
	})

	t.Run("doctor reschedule keeps status", func(t *testing.T) {
		apt := mustRequest(t, svc, patient, doctorID)
		_, err := svc.SetStatus(ctx, apt.ID, model.AppointmentStatusConfirmed, doctor)
		require.NoError(t, err)

		updated, err := svc.Reschedule(ctx, apt.ID, time.Now().Add(120*time.Hour), doctor)
		require.NoError(t, err)
		assert.Equal(t, model.AppointmentStatusConfirmed, updated.Status)

		sent := notifier.all()
		last := sent[len(sent)-1]
		assert.Equal(t, patient.UserID, last.TargetID)
	})

	t.Run("terminal record cannot be rescheduled", func(t *testing.T) {
		apt := mustRequest(t, svc, patient, doctorID)
		_, err := svc.SetStatus(ctx, apt.ID, model.AppointmentStatusDeclined, doctor)
		require.NoError(t, err)

		_, err = svc.Reschedule(ctx, apt.ID, time.Now().Add(72*time.Hour), patient)
		assert.True(t, apperrors.IsInvalidTransition(err))
	})
}

func TestDelete(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	patient := patientActor()
	doctorID := uuid.New()
	doctor := model.Actor{UserID: doctorID, Role: model.RoleDoctor}

	t.Run("patient may not delete", func(t *testing.T) {
		apt := mustRequest(t, svc, patient, doctorID)
		err := svc.Delete(ctx, apt.ID, patient)
		assert.True(t, apperrors.IsAuth(err))
	})

	t.Run("non-terminal record is kept", func(t *testing.T) {
		apt := mustRequest(t, svc, patient, doctorID)
		err := svc.Delete(ctx, apt.ID, doctor)
		assert.True(t, apperrors.IsInvalidTransition(err))

		stored, err := repo.Get(ctx, apt.ID)
		require.NoError(t, err)
		assert.Equal(t, model.AppointmentStatusPending, stored.Status)
	})

	t.Run("other doctor may not delete", func(t *testing.T) {
		apt := mustRequest(t, svc, patient, doctorID)
		_, err := svc.SetStatus(ctx, apt.ID, model.AppointmentStatusDeclined, doctor)
		require.NoError(t, err)

		stranger := model.Actor{UserID: uuid.New(), Role: model.RoleDoctor}
		err = svc.Delete(ctx, apt.ID, stranger)
		assert.True(t, apperrors.IsAuth(err))
	})

	t.Run("full lifecycle then delete twice", func(t *testing.T) {
		apt := mustRequest(t, svc, patient, doctorID)
		_, err := svc.SetStatus(ctx, apt.ID, model.AppointmentStatusConfirmed, doctor)
		require.NoError(t, err)
		_, err = svc.SetStatus(ctx, apt.ID, model.AppointmentStatusCompleted, doctor)
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, apt.ID, doctor))
		err = svc.Delete(ctx, apt.ID, doctor)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestGetAndList(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	patient := patientActor()
	doctorID := uuid.New()
	doctor := model.Actor{UserID: doctorID, Role: model.RoleDoctor}

	apt := mustRequest(t, svc, patient, doctorID)
	other := mustRequest(t, svc, patient, doctorID)
	_, err := svc.SetStatus(ctx, other.ID, model.AppointmentStatusConfirmed, doctor)
	require.NoError(t, err)

	t.Run("participants can read", func(t *testing.T) {
		got, err := svc.Get(ctx, apt.ID, patient)
		require.NoError(t, err)
		assert.Equal(t, apt.ID, got.ID)

		_, err = svc.Get(ctx, apt.ID, doctor)
		require.NoError(t, err)
	})

	t.Run("outsiders cannot read", func(t *testing.T) {
		outsider := model.Actor{UserID: uuid.New(), Role: model.RolePatient}
		_, err := svc.Get(ctx, apt.ID, outsider)
		assert.True(t, apperrors.IsAuth(err))
	})

	t.Run("unknown role cannot list", func(t *testing.T) {
		_, err := svc.ListForRole(ctx, model.Actor{UserID: uuid.New(), Role: model.RoleUnknown}, nil)
		assert.True(t, apperrors.IsAuth(err))
	})

	t.Run("status filter", func(t *testing.T) {
		pending := model.AppointmentStatusPending
		got, err := svc.ListForRole(ctx, patient, &pending)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, apt.ID, got[0].ID)
	})
}
