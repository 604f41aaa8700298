package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/securebank/portal-api/internal/core/domain"
)

// DeviceRegistry is an in-process stand-in for the external device-trust
// service. Devices are keyed per user by their user-agent string.
type DeviceRegistry struct {
	mu      sync.Mutex
	devices map[string][]*domain.TrustedDevice
	nextID  int
	now     func() time.Time
}

func NewDeviceRegistry() *DeviceRegistry {
	return &DeviceRegistry{
		devices: make(map[string][]*domain.TrustedDevice),
		now:     time.Now,
	}
}

func (r *DeviceRegistry) ListByUser(_ context.Context, userID string) ([]*domain.TrustedDevice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.devices[userID]
	out := make([]*domain.TrustedDevice, len(list))
	for i, d := range list {
		clone := *d
		out[i] = &clone
	}
	return out, nil
}

func (r *DeviceRegistry) Revoke(_ context.Context, userID, deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.devices[userID] {
		if d.ID == deviceID {
			d.Trusted = false
			return nil
		}
	}
	return domain.ErrDeviceNotFound
}

// Observe records the device seen on the current request, enrolling it as
// trusted on first sight.
func (r *DeviceRegistry) Observe(_ context.Context, userID, userAgent, ip string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	for _, d := range r.devices[userID] {
		d.Current = d.UserAgent == userAgent
		if d.UserAgent == userAgent {
			d.LastSeen = now
			d.IPAddress = ip
		}
	}
	for _, d := range r.devices[userID] {
		if d.UserAgent == userAgent {
			return nil
		}
	}

	r.nextID++
	r.devices[userID] = append(r.devices[userID], &domain.TrustedDevice{
		ID:        strconv.Itoa(r.nextID),
		UserID:    userID,
		Name:      deviceName(userAgent),
		UserAgent: userAgent,
		IPAddress: ip,
		FirstSeen: now,
		LastSeen:  now,
		Current:   true,
		Trusted:   true,
	})
	return nil
}

func deviceName(userAgent string) string {
	if userAgent == "" {
		return "Unknown device"
	}
	if len(userAgent) > 40 {
		userAgent = userAgent[:40]
	}
	return fmt.Sprintf("Device (%s)", userAgent)
}
