package branch

import (
	"time"
)

// Branch carries the working-hours configuration attendance calculations
// depend on. WorkStartTime and WorkEndTime are wall-clock times ("15:04") in
// the branch timezone.
type Branch struct {
	ID                  string
	Name                string
	Timezone            string
	WorkStartTime       string
	WorkEndTime         string
	GracePeriodMinutes  int
	StandardWorkMinutes int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Location resolves the branch timezone, falling back to UTC when the
// configured name is unknown to the host.
func (b Branch) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
