package services

import (
	"fmt"
	"time"

	"eventregistration/internal/domain"
)

// lockWindow is how long before the event start edits and resends are disabled.
const lockWindow = 24 * time.Hour

// IsEditLocked reports whether edits are disabled at now for an event
// starting at eventStart. The boundary is inclusive: exactly 24h before the
// start is already locked. A zero eventStart means no event is configured and
// editing is never locked.
func IsEditLocked(now, eventStart time.Time) bool {
	if eventStart.IsZero() {
		return false
	}
	return !now.Before(eventStart.Add(-lockWindow))
}

// EditLockStatus returns the lock status at now, with a human-readable reason
// when locked.
func EditLockStatus(now, eventStart time.Time) domain.LockStatus {
	if !IsEditLocked(now, eventStart) {
		return domain.LockStatus{}
	}
	lockAt := eventStart.Add(-lockWindow)
	return domain.LockStatus{
		Locked:     true,
		LockReason: fmt.Sprintf("Editing is locked 24h before the event (locked since %s).", lockAt.UTC().Format(time.RFC3339)),
	}
}
