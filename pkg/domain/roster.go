package domain

import (
	"time"

	"github.com/google/uuid"
)

// MemberProfile is a gym's record of one of its members. It is scoped to
// a single gym; the same person joining two gyms has two profiles.
type MemberProfile struct {
	ID        uuid.UUID
	GymID     uuid.UUID
	UserID    *uuid.UUID
	FullName  string
	Email     *string
	Phone     *string
	JoinedAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// GymClass is a scheduled class at a gym.
type GymClass struct {
	ID            uuid.UUID
	GymID         uuid.UUID
	TrainerUserID *uuid.UUID
	Title         string
	StartsAt      time.Time
	DurationMin   int
	Capacity      int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}
