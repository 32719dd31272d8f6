package service

import (
	"context"
	"fmt"
	"sync"

	"HRCore/internal/authz"
	"HRCore/internal/model"
	"HRCore/internal/model/dto"
	"HRCore/internal/repository"
	"HRCore/pkg/errors"
	"HRCore/storage/database"
)

var (
	policyService *PolicyService
	policyOnce    sync.Once
)

func Policy() *PolicyService {
	policyOnce.Do(func() {
		policyService = NewPolicyService(repository.NewPolicyRepository(database.DB()))
	})
	return policyService
}

// PolicyService 年假政策区间
type PolicyService struct {
	store PolicyStore
}

func NewPolicyService(store PolicyStore) *PolicyService {
	return &PolicyService{store: store}
}

func (s *PolicyService) List(ctx context.Context, activeOnly bool) ([]model.VacationPolicyTier, error) {
	items, err := s.store.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list policy tiers: %w", err)
	}
	return items, nil
}

// Save id 为 0 时新建；区间允许重叠，计算时取 years_from 最小者
func (s *PolicyService) Save(ctx context.Context, actor authz.Actor, id int64, req dto.PolicyRequest) (*model.VacationPolicyTier, error) {
	if err := authz.Authorize(actor, authz.CatalogWrite, authz.Resource{Kind: "policy"}); err != nil {
		return nil, err
	}
	if req.YearsTo < req.YearsFrom {
		return nil, errors.PolicyRangeInvalid
	}

	t := &model.VacationPolicyTier{Active: true}
	if id != 0 {
		existing, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, lookupErr(err, errors.PolicyNotFound, "policy tier")
		}
		t = existing
	}
	t.YearsFrom = req.YearsFrom
	t.YearsTo = req.YearsTo
	t.Days = req.Days
	t.MaxCarryover = req.MaxCarryover
	if req.Active != nil {
		t.Active = *req.Active
	}

	if err := s.store.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save policy tier: %w", err)
	}
	return t, nil
}
