package domain

import "github.com/m04kA/SMC-BarberScheduling/pkg/types"

// Barber represents a barber's directory record as seen by scheduling
type Barber struct {
	ID        int64
	Name      string
	WorkStart types.TimeString
	WorkEnd   types.TimeString
	Active    bool
}

// HasWorkingHours returns true if both window boundaries are configured
func (b *Barber) HasWorkingHours() bool {
	return !b.WorkStart.IsZero() && !b.WorkEnd.IsZero()
}
