package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamacare/appointment-api/internal/model"
	apperrors "github.com/mamacare/appointment-api/pkg/errors"
)

// stubService scripts the responses the controllers see, so the tests can
// exercise the optimistic protocol without a real store.
type stubService struct {
	mu          sync.Mutex
	list        []*model.Appointment
	listFilter  *model.AppointmentStatus
	setStatus   func(id uuid.UUID, target model.AppointmentStatus) (*model.Appointment, error)
	reschedule  func(id uuid.UUID, t time.Time) (*model.Appointment, error)
	deleteErr   error
	requestFunc func(req *model.CreateAppointmentRequest) (*model.Appointment, error)
}

func (s *stubService) Request(_ context.Context, _ model.Actor, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	return s.requestFunc(req)
}

func (s *stubService) ListForRole(_ context.Context, _ model.Actor, status *model.AppointmentStatus) ([]*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listFilter = status
	var out []*model.Appointment
	for _, apt := range s.list {
		if status != nil && apt.Status != *status {
			continue
		}
		out = append(out, apt.Clone())
	}
	return out, nil
}

func (s *stubService) SetStatus(_ context.Context, id uuid.UUID, target model.AppointmentStatus, _ model.Actor) (*model.Appointment, error) {
	return s.setStatus(id, target)
}

func (s *stubService) Reschedule(_ context.Context, id uuid.UUID, t time.Time, _ model.Actor) (*model.Appointment, error) {
	return s.reschedule(id, t)
}

func (s *stubService) Delete(_ context.Context, _ uuid.UUID, _ model.Actor) error {
	return s.deleteErr
}

func sampleAppointment(status model.AppointmentStatus) *model.Appointment {
	return &model.Appointment{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		DateTime:  time.Now().Add(48 * time.Hour),
		Reason:    "routine antenatal check",
		Status:    status,
		UpdatedAt: time.Now(),
	}
}

func TestLoadAndRecordsAreIsolated(t *testing.T) {
	apt := sampleAppointment(model.AppointmentStatusPending)
	svc := &stubService{list: []*model.Appointment{apt}}
	ctrl := NewPatientController(svc, model.Actor{UserID: apt.PatientID, Role: model.RolePatient})

	require.NoError(t, ctrl.Load(context.Background()))
	records := ctrl.Records()
	require.Len(t, records, 1)

	// Mutating a returned record must not leak into the cache.
	records[0].Status = model.AppointmentStatusCancelled
	assert.Equal(t, model.AppointmentStatusPending, ctrl.Records()[0].Status)
}

func TestChangeStatusCommitsAuthoritativeCopy(t *testing.T) {
	apt := sampleAppointment(model.AppointmentStatusPending)
	updated := apt.Clone()
	updated.Status = model.AppointmentStatusConfirmed
	updated.UpdatedAt = time.Now().Add(time.Second)

	svc := &stubService{
		list: []*model.Appointment{apt},
		setStatus: func(uuid.UUID, model.AppointmentStatus) (*model.Appointment, error) {
			return updated, nil
		},
	}
	ctrl := NewDoctorController(svc, model.Actor{UserID: apt.DoctorID, Role: model.RoleDoctor})
	require.NoError(t, ctrl.Load(context.Background()))

	got, err := ctrl.Approve(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, got.Status)

	cached := ctrl.Records()
	require.Len(t, cached, 1)
	assert.Equal(t, model.AppointmentStatusConfirmed, cached[0].Status)
	assert.True(t, cached[0].UpdatedAt.Equal(updated.UpdatedAt))
	assert.NoError(t, ctrl.LastError())
}

func TestChangeStatusRevertsOnFailure(t *testing.T) {
	apt := sampleAppointment(model.AppointmentStatusCompleted)
	failure := apperrors.NewInvalidTransition("completed", "cancelled", "patient")

	svc := &stubService{
		list: []*model.Appointment{apt},
		setStatus: func(uuid.UUID, model.AppointmentStatus) (*model.Appointment, error) {
			return nil, failure
		},
	}
	ctrl := NewPatientController(svc, model.Actor{UserID: apt.PatientID, Role: model.RolePatient})
	require.NoError(t, ctrl.Load(context.Background()))

	_, err := ctrl.Cancel(context.Background(), apt.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidTransition(err))

	// The optimistic write is rolled back and the error is surfaced.
	cached := ctrl.Records()
	require.Len(t, cached, 1)
	assert.Equal(t, model.AppointmentStatusCompleted, cached[0].Status)
	assert.Equal(t, failure, ctrl.LastError())
}

func TestSecondMutationForSameRecordIsRejected(t *testing.T) {
	apt := sampleAppointment(model.AppointmentStatusPending)

	started := make(chan struct{})
	release := make(chan struct{})
	svc := &stubService{
		list: []*model.Appointment{apt},
		setStatus: func(uuid.UUID, model.AppointmentStatus) (*model.Appointment, error) {
			close(started)
			<-release
			updated := apt.Clone()
			updated.Status = model.AppointmentStatusConfirmed
			return updated, nil
		},
	}
	ctrl := NewDoctorController(svc, model.Actor{UserID: apt.DoctorID, Role: model.RoleDoctor})
	require.NoError(t, ctrl.Load(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Approve(context.Background(), apt.ID)
		done <- err
	}()

	<-started
	_, err := ctrl.Decline(context.Background(), apt.ID)
	assert.ErrorIs(t, err, ErrMutationInFlight)

	close(release)
	require.NoError(t, <-done)
}

func TestSetFilterReloadsAndDropsMismatches(t *testing.T) {
	pendingApt := sampleAppointment(model.AppointmentStatusPending)
	confirmedApt := sampleAppointment(model.AppointmentStatusConfirmed)
	svc := &stubService{list: []*model.Appointment{pendingApt, confirmedApt}}

	ctrl := NewDoctorController(svc, model.Actor{UserID: pendingApt.DoctorID, Role: model.RoleDoctor})
	require.NoError(t, ctrl.Load(context.Background()))
	assert.Len(t, ctrl.Records(), 2)

	pending := model.AppointmentStatusPending
	require.NoError(t, ctrl.SetFilter(context.Background(), &pending))
	records := ctrl.Records()
	require.Len(t, records, 1)
	assert.Equal(t, pendingApt.ID, records[0].ID)
	require.NotNil(t, svc.listFilter)
	assert.Equal(t, pending, *svc.listFilter)

	// A successful transition out of the filtered status drops the record
	// from the cached list.
	svc.setStatus = func(uuid.UUID, model.AppointmentStatus) (*model.Appointment, error) {
		updated := pendingApt.Clone()
		updated.Status = model.AppointmentStatusConfirmed
		return updated, nil
	}
	_, err := ctrl.Approve(context.Background(), pendingApt.ID)
	require.NoError(t, err)
	assert.Empty(t, ctrl.Records())
}

func TestDoctorDeleteRemovesLocallyAndRevertsOnFailure(t *testing.T) {
	apt := sampleAppointment(model.AppointmentStatusCompleted)

	t.Run("success removes record", func(t *testing.T) {
		svc := &stubService{list: []*model.Appointment{apt}}
		ctrl := NewDoctorController(svc, model.Actor{UserID: apt.DoctorID, Role: model.RoleDoctor})
		require.NoError(t, ctrl.Load(context.Background()))

		require.NoError(t, ctrl.Delete(context.Background(), apt.ID))
		assert.Empty(t, ctrl.Records())
	})

	t.Run("failure restores record", func(t *testing.T) {
		svc := &stubService{
			list:      []*model.Appointment{apt},
			deleteErr: apperrors.NewStore(assert.AnError),
		}
		ctrl := NewDoctorController(svc, model.Actor{UserID: apt.DoctorID, Role: model.RoleDoctor})
		require.NoError(t, ctrl.Load(context.Background()))

		err := ctrl.Delete(context.Background(), apt.ID)
		require.Error(t, err)
		require.Len(t, ctrl.Records(), 1)
		assert.Equal(t, apt.ID, ctrl.Records()[0].ID)
	})
}

func TestPatientRequestAppendsToCache(t *testing.T) {
	created := sampleAppointment(model.AppointmentStatusPending)
	svc := &stubService{
		requestFunc: func(*model.CreateAppointmentRequest) (*model.Appointment, error) {
			return created, nil
		},
	}
	ctrl := NewPatientController(svc, model.Actor{UserID: created.PatientID, Role: model.RolePatient})
	require.NoError(t, ctrl.Load(context.Background()))

	got, err := ctrl.Request(context.Background(), &model.CreateAppointmentRequest{
		DoctorID: created.DoctorID,
		DateTime: created.DateTime,
		Reason:   created.Reason,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	records := ctrl.Records()
	require.Len(t, records, 1)
	assert.Equal(t, created.ID, records[0].ID)
}

func TestRegistryReusesControllersPerActor(t *testing.T) {
	svc := &stubService{}
	registry := NewRegistry(svc, time.Minute)

	patient := model.Actor{UserID: uuid.New(), Role: model.RolePatient}
	first, err := registry.For(patient)
	require.NoError(t, err)
	second, err := registry.For(patient)
	require.NoError(t, err)
	assert.Same(t, first, second)

	doctor := model.Actor{UserID: uuid.New(), Role: model.RoleDoctor}
	dc, err := registry.Doctor(doctor)
	require.NoError(t, err)
	assert.NotNil(t, dc)

	// A doctor asking for the patient surface is an authorization error.
	_, err = registry.Patient(doctor)
	assert.True(t, apperrors.IsAuth(err))

	_, err = registry.For(model.Actor{UserID: uuid.New(), Role: model.RoleUnknown})
	assert.True(t, apperrors.IsAuth(err))

	_, err = registry.For(model.Actor{UserID: uuid.New(), Role: model.RoleAdmin})
	assert.True(t, apperrors.IsAuth(err))
}
