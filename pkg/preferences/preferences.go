// Package preferences keeps per-device settings next to the token in local storage.
package preferences

import (
	"strconv"

	"gatherguru/pkg/storage"
)

const (
	KeyTextSize       = "preferredTextSize"
	KeyCurrentBooking = "currentBookingId"

	MinTextSize     = 70
	MaxTextSize     = 150
	DefaultTextSize = 100
)

type Preferences struct {
	local *storage.LocalStore
}

func New(local *storage.LocalStore) *Preferences {
	return &Preferences{local: local}
}

func clamp(n int) int {
	return min(max(n, MinTextSize), MaxTextSize)
}

// TextSize is the font scale in percent. Missing or unreadable values give the default.
func (p *Preferences) TextSize() int {
	v, ok := p.local.Get(KeyTextSize)
	if !ok {
		return DefaultTextSize
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return DefaultTextSize
	}
	return clamp(n)
}

// SetTextSize stores n clamped to 70–150 and returns the stored value.
func (p *Preferences) SetTextSize(n int) (int, error) {
	n = clamp(n)
	return n, p.local.Set(KeyTextSize, strconv.Itoa(n))
}

// CurrentBooking is the booking whose payment is in progress.
func (p *Preferences) CurrentBooking() string {
	v, _ := p.local.Get(KeyCurrentBooking)
	return v
}

func (p *Preferences) SetCurrentBooking(id string) error {
	return p.local.Set(KeyCurrentBooking, id)
}

func (p *Preferences) ClearCurrentBooking() error {
	return p.local.Remove(KeyCurrentBooking)
}
