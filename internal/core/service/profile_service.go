package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/securebank/portal-api/internal/core/domain"
	"github.com/securebank/portal-api/internal/core/ports"
)

const notificationListLimit = 50

// ProfileService implements the customer profile surface.
type ProfileService struct {
	users         ports.UserRepository
	notifications ports.NotificationRepository
	documents     ports.DocumentRepository
	audit         ports.AuditRecorder
	log           zerolog.Logger
}

func NewProfileService(users ports.UserRepository, notifications ports.NotificationRepository, documents ports.DocumentRepository, audit ports.AuditRecorder, log zerolog.Logger) *ProfileService {
	return &ProfileService{
		users:         users,
		notifications: notifications,
		documents:     documents,
		audit:         audit,
		log:           log,
	}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// Update changes name and email. An email already held by another user is
// rejected.
func (s *ProfileService) Update(ctx context.Context, userID string, update ports.ProfileUpdate) (*domain.User, error) {
	update.FullName = strings.TrimSpace(update.FullName)
	update.Email = strings.ToLower(strings.TrimSpace(update.Email))

	if existing, err := s.users.FindByEmail(ctx, update.Email); err == nil {
		if existing.ID != userID {
			return nil, domain.ErrEmailExists
		}
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	updated, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.Enqueue(ports.AuditEventInput{
			UserID:      userID,
			EventType:   domain.EventProfileUpdated,
			Description: "Profile details updated",
			RiskLevel:   domain.RiskLow,
		})
	}
	s.log.Info().Str("user_id", userID).Msg("profile updated")
	return updated, nil
}

func (s *ProfileService) Notifications(ctx context.Context, userID string) (*ports.NotificationList, error) {
	items, err := s.notifications.ListByUser(ctx, userID, notificationListLimit)
	if err != nil {
		return nil, err
	}

	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}
	return &ports.NotificationList{
		Notifications: items,
		UnreadCount:   unread,
		TotalCount:    len(items),
	}, nil
}

func (s *ProfileService) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	return s.notifications.MarkRead(ctx, userID, notificationID)
}

func (s *ProfileService) Documents(ctx context.Context, userID string) ([]*domain.Document, error) {
	return s.documents.ListByUser(ctx, userID)
}
