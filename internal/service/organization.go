package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"HRCore/internal/authz"
	"HRCore/internal/model"
	"HRCore/internal/model/dto"
	"HRCore/internal/repository"
	"HRCore/pkg/errors"
	"HRCore/storage/database"
)

var (
	organizationService *OrganizationService
	organizationOnce    sync.Once
)

func Organization() *OrganizationService {
	organizationOnce.Do(func() {
		organizationService = NewOrganizationService(repository.NewOrganizationRepository(database.DB()))
	})
	return organizationService
}

// OrganizationService 工作地点与排班
type OrganizationService struct {
	store OrganizationStore
}

func NewOrganizationService(store OrganizationStore) *OrganizationService {
	return &OrganizationService{store: store}
}

func (s *OrganizationService) ListLocations(ctx context.Context, activeOnly bool) ([]model.Location, error) {
	items, err := s.store.ListLocations(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return items, nil
}

// SaveLocation id 为 0 时新建
func (s *OrganizationService) SaveLocation(ctx context.Context, actor authz.Actor, id int64, req dto.LocationRequest) (*model.Location, error) {
	if err := authz.Authorize(actor, authz.CatalogWrite, authz.Resource{Kind: "location"}); err != nil {
		return nil, err
	}

	loc := &model.Location{Active: true}
	if id != 0 {
		existing, err := s.store.GetLocation(ctx, id)
		if err != nil {
			return nil, lookupErr(err, errors.LocationNotFound, "location")
		}
		loc = existing
	}
	loc.Name = strings.TrimSpace(req.Name)
	loc.Latitude = *req.Latitude
	loc.Longitude = *req.Longitude
	loc.RadiusM = req.RadiusM
	if req.Active != nil {
		loc.Active = *req.Active
	}

	if err := s.store.SaveLocation(ctx, loc); err != nil {
		return nil, fmt.Errorf("failed to save location: %w", err)
	}
	return loc, nil
}

func (s *OrganizationService) ListSchedules(ctx context.Context) ([]model.WorkSchedule, error) {
	items, err := s.store.ListSchedules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list work schedules: %w", err)
	}
	return items, nil
}

func (s *OrganizationService) CreateSchedule(ctx context.Context, actor authz.Actor, req dto.WorkScheduleRequest) (*model.WorkSchedule, error) {
	if err := authz.Authorize(actor, authz.CatalogWrite, authz.Resource{Kind: "work_schedule"}); err != nil {
		return nil, err
	}
	sch := &model.WorkSchedule{Name: strings.TrimSpace(req.Name), WorkMask: int16(*req.WorkMask)}
	if err := s.store.SaveSchedule(ctx, sch); err != nil {
		return nil, fmt.Errorf("failed to save work schedule: %w", err)
	}
	return sch, nil
}
