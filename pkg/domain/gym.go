package domain

import (
	"time"

	"github.com/google/uuid"
)

// GymTier is the subscription tier of a gym.
type GymTier string

const (
	// GymTierSolo allows a single active gym per owner.
	GymTierSolo GymTier = "solo"
	// GymTierMulti allows multiple gyms under one owner account.
	GymTierMulti GymTier = "multi"
)

// GymStatus is the subscription status of a gym.
type GymStatus string

const (
	GymStatusActive    GymStatus = "active"
	GymStatusTrial     GymStatus = "trial"
	GymStatusExpired   GymStatus = "expired"
	GymStatusCancelled GymStatus = "cancelled"
)

// Gym represents a tenant organization. Each gym is owned by exactly
// one admin account; trainers and members are linked via memberships.
type Gym struct {
	ID           uuid.UUID
	Name         string
	Slug         string
	OwnerUserID  uuid.UUID
	Tier         GymTier
	Status       GymStatus
	MaxMembers   int
	MaxTrainers  int
	MaxLocations int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// Subscribed reports whether the gym's subscription allows use.
func (g *Gym) Subscribed() bool {
	return g.Status == GymStatusActive || g.Status == GymStatusTrial
}
