package repository

import (
	"citypulse/internal/database"
)

type Repositories struct {
	Reservations *ReservationRepository
	Ledger       *LedgerRepository
	Preferences  *PreferenceRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Reservations: NewReservationRepository(db),
		Ledger:       NewLedgerRepository(db),
		Preferences:  NewPreferenceRepository(db),
	}
}
