package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leasebill/billing-engine/internal/clock"
	"github.com/leasebill/billing-engine/internal/domain/uow"
	"github.com/leasebill/billing-engine/internal/domain/utility"
	"github.com/leasebill/billing-engine/internal/principal"
	"github.com/leasebill/billing-engine/internal/types"
)

// UtilityStatementService is C9: assigns versions to successive utility
// statements for the same (lease, utility type, period) key and enforces
// at most one final statement per key (spec.md §4.9).
type UtilityStatementService struct {
	uow       uow.UnitOfWork
	clock     clock.Provider
	principal principal.Current
}

func NewUtilityStatementService(unitOfWork uow.UnitOfWork, clk clock.Provider, princ principal.Current) *UtilityStatementService {
	return &UtilityStatementService{uow: unitOfWork, clock: clk, principal: princ}
}

// UpsertInput is the computed utility amount plus identity fields the
// service needs to version and persist a new statement.
type UpsertInput struct {
	LeaseID       string
	Type          types.UtilityType
	PeriodStart   time.Time
	PeriodEnd     time.Time
	IsMeterBased  bool
	UnitsConsumed decimal.Decimal
	Total         decimal.Decimal
	SlabBreakdown []utility.SlabContribution
	IsFinal       bool
}

// Upsert persists in.Total as the next version for the key. Late arrivals
// (current date after PeriodEnd) are accepted without restriction; the
// statement's CreatedAt records the actual arrival time.
func (s *UtilityStatementService) Upsert(ctx context.Context, in UpsertInput) (*utility.Statement, error) {
	orgID := s.principal.OrgID()
	var result *utility.Statement

	err := s.uow.Execute(ctx, func(ctx context.Context, stores uow.Stores) error {
		versions, err := stores.UtilityStatements.Versions(ctx, orgID, in.LeaseID, in.Type, in.PeriodStart, in.PeriodEnd)
		if err != nil {
			return err
		}

		nextVersion := 1
		for _, v := range versions {
			if v.Version >= nextVersion {
				nextVersion = v.Version + 1
			}
		}

		now := s.clock.NowUTC()
		st := &utility.Statement{
			ID:            types.GenerateID(types.PrefixUtilityStmt),
			LeaseID:       in.LeaseID,
			Type:          in.Type,
			PeriodStart:   in.PeriodStart,
			PeriodEnd:     in.PeriodEnd,
			IsMeterBased:  in.IsMeterBased,
			UnitsConsumed: in.UnitsConsumed,
			Total:         in.Total,
			SlabBreakdown: in.SlabBreakdown,
			Version:       nextVersion,
			IsFinal:       in.IsFinal,
			BaseModel: types.BaseModel{
				OrgID:     orgID,
				Status:    types.StatusActive,
				CreatedBy: s.principal.UserID(),
				UpdatedBy: s.principal.UserID(),
				CreatedAt: now,
				UpdatedAt: now,
			},
		}

		if err := stores.UtilityStatements.Insert(ctx, st); err != nil {
			return err
		}
		result = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
