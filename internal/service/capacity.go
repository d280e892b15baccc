package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Gopher0727/TripMate/internal/model"
	"github.com/Gopher0727/TripMate/internal/repository"
	logger "github.com/Gopher0727/TripMate/middleware/log"
)

// AdmitOutcome is the result of one admission attempt.
type AdmitOutcome int

const (
	Admitted AdmitOutcome = iota
	Full
	NotRecruiting
)

func (o AdmitOutcome) String() string {
	switch o {
	case Admitted:
		return "admitted"
	case Full:
		return "full"
	case NotRecruiting:
		return "not_recruiting"
	}
	return fmt.Sprintf("AdmitOutcome(%d)", int(o))
}

// CapacityGuard is the only code path that changes a listing's member count.
// Callers must Acquire the listing inside a transaction before TryAdmit; the row
// lock makes concurrent admissions on one listing take turns.
type CapacityGuard struct {
	logger *logger.Logger
}

func NewCapacityGuard(log *logger.Logger) *CapacityGuard {
	return &CapacityGuard{logger: log}
}

// Acquire loads the listing with an exclusive row lock held until tx ends.
func (g *CapacityGuard) Acquire(ctx context.Context, tx repository.IStore, companionID int64) (*model.Companion, error) {
	companion, err := tx.Companions().FindByID(ctx, companionID, repository.LockUpdate)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCompanionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock companion: %w", err)
	}
	return companion, nil
}

// TryAdmit adds one member to an acquired listing, closing it when the last slot is taken.
// Full and NotRecruiting leave the listing untouched.
func (g *CapacityGuard) TryAdmit(ctx context.Context, tx repository.IStore, companion *model.Companion) (AdmitOutcome, error) {
	if !companion.IsRecruiting() {
		return NotRecruiting, nil
	}
	if !companion.HasOpenSlot() {
		g.logger.DebugContext(ctx, "recruiting listing has no open slot",
			zap.Int64("companion_id", companion.ID),
			zap.Int("current_members", companion.CurrentMembers),
			zap.Int("max_members", companion.MaxMembers),
		)
		return Full, nil
	}

	companion.CurrentMembers++
	if companion.CurrentMembers == companion.MaxMembers {
		companion.Status = model.CompanionClosed
	}
	if err := tx.Companions().Update(ctx, companion); err != nil {
		return Admitted, fmt.Errorf("failed to update companion capacity: %w", err)
	}
	return Admitted, nil
}
