// Package gymctx resolves which gyms a signed-in user can operate on
// and which one is current for the session. Every page-level data
// access is scoped to the (identity, current gym) pair this package
// produces.
package gymctx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fitdesk/fitdesk/pkg/domain"
)

// GymLister lists the gyms visible to an owner. Satisfied by
// *repository.GymsRepository.
type GymLister interface {
	ListActiveByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]*domain.Gym, error)
}

// Context is the resolved gym context handed to page-level consumers.
type Context struct {
	// CurrentGym is the single active gym for this session, nil when
	// the user owns no gyms.
	CurrentGym *domain.Gym `json:"current_gym"`
	// Gyms is every gym the user may switch to, most recently created
	// first.
	Gyms []*domain.Gym `json:"gyms"`
}

// HasMultipleGyms reports whether a gym switcher should be shown.
func (c *Context) HasMultipleGyms() bool {
	return len(c.Gyms) > 1
}

func (c *Context) find(gymID uuid.UUID) *domain.Gym {
	for _, gym := range c.Gyms {
		if gym.ID == gymID {
			return gym
		}
	}
	return nil
}

// Resolver loads a user's gyms and reconciles them with the persisted
// per-session selection.
type Resolver struct {
	gyms       GymLister
	selections SelectionStore
	logger     *slog.Logger
}

// NewResolver creates a gym context resolver.
func NewResolver(gyms GymLister, selections SelectionStore, logger *slog.Logger) *Resolver {
	return &Resolver{
		gyms:       gyms,
		selections: selections,
		logger:     logger,
	}
}

// Resolve loads the gyms owned by userID and picks the current one.
//
// The persisted selection wins when it is still in the visible set.
// A stale or missing selection falls back to the most recently created
// gym and the selection is overwritten, so invalid selections heal
// themselves on the next resolution. A listing failure is returned as
// ErrGymLoadFailed so callers can tell "load failed" apart from "no
// gyms yet"; it is never reported as an empty set.
func (r *Resolver) Resolve(ctx context.Context, userID, sessionID uuid.UUID) (*Context, error) {
	if userID == uuid.Nil {
		return &Context{}, nil
	}

	gyms, err := r.gyms.ListActiveByOwner(ctx, userID)
	if err != nil {
		r.logger.Error("gym listing failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrGymLoadFailed, err)
	}

	gc := &Context{Gyms: gyms}
	if len(gyms) == 0 {
		// Nothing to select. Leave any stored selection alone; it will
		// be overwritten when a gym appears.
		return gc, nil
	}

	selectedID, err := r.selections.Get(ctx, sessionID)
	if err != nil && !errors.Is(err, ErrNoSelection) {
		// Store trouble reads as "no selection yet" so navigation
		// still works; the selection is rewritten below.
		r.logger.Warn("selection store read failed", "session_id", sessionID, "error", err)
		err = ErrNoSelection
	}

	if err == nil {
		if gym := gc.find(selectedID); gym != nil {
			gc.CurrentGym = gym
			return gc, nil
		}
	}

	// No usable selection: default to the newest gym and persist it.
	gc.CurrentGym = gyms[0]
	if err := r.selections.Set(ctx, sessionID, gc.CurrentGym.ID); err != nil {
		// The selection is a UI preference; losing one write only
		// means the fallback runs again next time.
		r.logger.Warn("selection store write failed", "session_id", sessionID, "error", err)
	}
	return gc, nil
}

// Select switches the current gym to gymID if it is in the already
// loaded set. It does not re-fetch; an unknown id is a no-op. Repeated
// calls with the same valid id are idempotent. Returns true when the
// selection was applied.
func (r *Resolver) Select(ctx context.Context, gc *Context, sessionID, gymID uuid.UUID) bool {
	gym := gc.find(gymID)
	if gym == nil {
		return false
	}

	gc.CurrentGym = gym
	if err := r.selections.Set(ctx, sessionID, gym.ID); err != nil {
		r.logger.Warn("selection store write failed", "session_id", sessionID, "error", err)
	}
	return true
}

// ClearSelection drops the persisted selection, used on logout.
func (r *Resolver) ClearSelection(ctx context.Context, sessionID uuid.UUID) {
	if err := r.selections.Delete(ctx, sessionID); err != nil {
		r.logger.Warn("selection store delete failed", "session_id", sessionID, "error", err)
	}
}
