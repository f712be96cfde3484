// Package directory exposes the doctor lookup used at request-time
// validation and by the booking UI's doctor picker.
package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/mamacare/appointment-api/internal/model"
	"github.com/mamacare/appointment-api/internal/repository"
	"github.com/mamacare/appointment-api/pkg/logger"
)

type Service struct {
	repo   repository.DoctorRepository
	cache  *gocache.Cache
	logger *logger.Logger
}

func NewService(repo repository.DoctorRepository, ttl time.Duration, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  gocache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// Exists is a read-through cached existence check. Only positive results
// are cached so a doctor created moments ago is not masked for a full TTL.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	key := "doctor:exists:" + id.String()
	if _, found := s.cache.Get(key); found {
		return true, nil
	}

	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return false, err
	}
	if exists {
		s.cache.SetDefault(key, struct{}{})
	}
	return exists, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	key := "doctor:" + id.String()
	if cached, found := s.cache.Get(key); found {
		return cached.(*model.Doctor), nil
	}

	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, doc)
	return doc, nil
}

func (s *Service) ListAvailable(ctx context.Context, specialty *string) ([]*model.Doctor, error) {
	key := "doctors:available"
	if specialty != nil {
		key = fmt.Sprintf("doctors:available:%s", *specialty)
	}
	if cached, found := s.cache.Get(key); found {
		return cached.([]*model.Doctor), nil
	}

	doctors, err := s.repo.ListAvailable(ctx, specialty)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, doctors)
	return doctors, nil
}
