package models

import (
	"fmt"
	"time"
)

// WaitlistStatus is the administrative follow-up state of a waitlist entry.
type WaitlistStatus string

const (
	WaitlistPending   WaitlistStatus = "pending"
	WaitlistContacted WaitlistStatus = "contacted"
	WaitlistAreaAdded WaitlistStatus = "area_added"
	WaitlistDeclined  WaitlistStatus = "declined"
)

var waitlistTransitions = map[WaitlistStatus][]WaitlistStatus{
	WaitlistPending:   {WaitlistContacted},
	WaitlistContacted: {WaitlistAreaAdded, WaitlistDeclined},
}

// Valid reports whether s is one of the known statuses.
func (s WaitlistStatus) Valid() bool {
	switch s {
	case WaitlistPending, WaitlistContacted, WaitlistAreaAdded, WaitlistDeclined:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s WaitlistStatus) Terminal() bool {
	return s == WaitlistAreaAdded || s == WaitlistDeclined
}

// CanTransition reports whether moving from s to next is allowed.
func (s WaitlistStatus) CanTransition(next WaitlistStatus) bool {
	for _, allowed := range waitlistTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// WaitlistEntry records interest from a location outside every active service area.
type WaitlistEntry struct {
	ID                      int64          `json:"id"`
	Email                   string         `json:"email"`
	Name                    string         `json:"name,omitempty"`
	Phone                   string         `json:"phone,omitempty"`
	RequestedAddress        string         `json:"requested_address"`
	RequestedLatitude       float64        `json:"requested_latitude"`
	RequestedLongitude      float64        `json:"requested_longitude"`
	NearestAreaCity         string         `json:"nearest_area_city,omitempty"`
	DistanceToNearestAreaKm *float64       `json:"distance_to_nearest_area_km,omitempty"`
	Status                  WaitlistStatus `json:"status"`
	AdminNotes              string         `json:"admin_notes,omitempty"`
	NotifiedAt              *time.Time     `json:"notified_at,omitempty"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
}

// Transition moves the entry to next, stamping NotifiedAt the first time it is contacted.
func (e *WaitlistEntry) Transition(next WaitlistStatus, now time.Time) error {
	if !next.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, next)
	}
	if !e.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, e.Status, next)
	}
	e.Status = next
	if next == WaitlistContacted && e.NotifiedAt == nil {
		e.NotifiedAt = &now
	}
	return nil
}

// WaitlistFilter narrows administrative waitlist listings.
type WaitlistFilter struct {
	Status WaitlistStatus
	Limit  uint64
	Offset uint64
}

// WaitlistCount is the number of waitlist entries whose nearest area is City.
type WaitlistCount struct {
	City  string `json:"city"`
	Count int64  `json:"count"`
}
