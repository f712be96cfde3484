package controller

import (
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mamacare/appointment-api/internal/model"
	apperrors "github.com/mamacare/appointment-api/pkg/errors"
)

// Registry hands out one controller per authenticated actor and keeps it
// alive for the session TTL, so repeated requests reuse the same cached
// view instead of rebuilding it per call.
type Registry struct {
	svc   Service
	cache *gocache.Cache
	mu    sync.Mutex
}

func NewRegistry(svc Service, ttl time.Duration) *Registry {
	return &Registry{
		svc:   svc,
		cache: gocache.New(ttl, ttl*2),
	}
}

// For returns the controller matching the actor's role, creating it on
// first use.
func (r *Registry) For(actor model.Actor) (Controller, error) {
	switch actor.Role {
	case model.RolePatient, model.RoleDoctor, model.RoleNurse:
	default:
		return nil, apperrors.NewAuth(fmt.Sprintf("no appointment view for role %q", actor.Role))
	}

	key := string(actor.Role) + ":" + actor.UserID.String()

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.cache.Get(key); ok {
		return cached.(Controller), nil
	}

	var ctrl Controller
	switch actor.Role {
	case model.RolePatient:
		ctrl = NewPatientController(r.svc, actor)
	case model.RoleDoctor:
		ctrl = NewDoctorController(r.svc, actor)
	case model.RoleNurse:
		ctrl = NewNurseController(r.svc, actor)
	}
	r.cache.SetDefault(key, ctrl)
	return ctrl, nil
}

// Patient returns the actor's controller narrowed to the patient type.
func (r *Registry) Patient(actor model.Actor) (*PatientController, error) {
	ctrl, err := r.For(actor)
	if err != nil {
		return nil, err
	}
	pc, ok := ctrl.(*PatientController)
	if !ok {
		return nil, apperrors.NewAuth("only patients may perform this action")
	}
	return pc, nil
}

// Doctor returns the actor's controller narrowed to the doctor type.
func (r *Registry) Doctor(actor model.Actor) (*DoctorController, error) {
	ctrl, err := r.For(actor)
	if err != nil {
		return nil, err
	}
	dc, ok := ctrl.(*DoctorController)
	if !ok {
		return nil, apperrors.NewAuth("only doctors may perform this action")
	}
	return dc, nil
}

// Nurse returns the actor's controller narrowed to the nurse type.
func (r *Registry) Nurse(actor model.Actor) (*NurseController, error) {
	ctrl, err := r.For(actor)
	if err != nil {
		return nil, err
	}
	nc, ok := ctrl.(*NurseController)
	if !ok {
		return nil, apperrors.NewAuth("only nurses may perform this action")
	}
	return nc, nil
}
