package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lunara-app/backend/config"
	"github.com/lunara-app/backend/internal/models"
)

// PushPayload follows the service-worker notification shape the web client
// renders.
type PushPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Icon  string            `json:"icon,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

// PushSender delivers one payload to one subscription.
type PushSender interface {
	Send(sub *models.PushSubscription, payload []byte) (statusCode int, err error)
}

// webpushSender sends through the Web Push protocol with VAPID auth.
type webpushSender struct {
	publicKey  string
	privateKey string
	subject    string
}

func (w *webpushSender) Send(sub *models.PushSubscription, payload []byte) (int, error) {
	resp, err := webpush.SendNotification(payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      w.subject,
		VAPIDPublicKey:  w.publicKey,
		VAPIDPrivateKey: w.privateKey,
		TTL:             60,
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// NotificationService persists notifications and fans them out to the
// user's push subscriptions.
type NotificationService struct {
	db             *gorm.DB
	sender         PushSender
	vapidPublicKey string
	logger         *zap.Logger
}

func NewNotificationService(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *NotificationService {
	s := &NotificationService{
		db:             db,
		vapidPublicKey: cfg.VAPIDPublicKey,
		logger:         logger,
	}
	if cfg.PushEnabled() {
		s.sender = &webpushSender{
			publicKey:  cfg.VAPIDPublicKey,
			privateKey: cfg.VAPIDPrivateKey,
			subject:    cfg.VAPIDSubject,
		}
	}
	return s
}

// WithSender swaps the push transport (tests).
func (s *NotificationService) WithSender(sender PushSender) *NotificationService {
	s.sender = sender
	return s
}

// VAPIDPublicKey exposes the key the browser needs to subscribe.
func (s *NotificationService) VAPIDPublicKey() string {
	return s.vapidPublicKey
}

// Create persists the notification row and pushes it to every active
// subscription. Push failures never fail the create; expired endpoints are
// deactivated.
func (s *NotificationService) Create(userID uuid.UUID, typ, title, message string, metadata map[string]string) (*models.Notification, error) {
	now := time.Now()
	n := models.Notification{
		UserID:   userID,
		Type:     typ,
		Title:    title,
		Message:  message,
		Metadata: metadata,
		SentAt:   &now,
	}
	if err := s.db.Create(&n).Error; err != nil {
		return nil, err
	}

	s.pushToUser(userID, PushPayload{
		Title: title,
		Body:  message,
		Icon:  "/icons/lunara-192.png",
		Data:  metadata,
	})

	return &n, nil
}

func (s *NotificationService) pushToUser(userID uuid.UUID, payload PushPayload) {
	if s.sender == nil {
		return
	}

	var subs []models.PushSubscription
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&subs).Error; err != nil {
		s.logger.Warn("failed to load push subscriptions", zap.Error(err))
		return
	}
	if len(subs) == 0 {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("failed to marshal push payload", zap.Error(err))
		return
	}

	for i := range subs {
		sub := &subs[i]
		status, err := s.sender.Send(sub, body)
		if err != nil {
			s.logger.Warn("push delivery failed",
				zap.String("endpoint", sub.Endpoint),
				zap.Error(err))
			continue
		}
		if status == http.StatusNotFound || status == http.StatusGone {
			// the push service no longer knows this endpoint
			if err := s.db.Model(sub).Update("is_active", false).Error; err != nil {
				s.logger.Warn("failed to deactivate push subscription", zap.Error(err))
			}
		}
	}
}

// List returns the user's notifications plus their unread count.
func (s *NotificationService) List(userID uuid.UUID, unreadOnly bool) ([]models.Notification, int64, error) {
	q := s.db.Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := q.Order("created_at DESC").Limit(100).Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	var unread int64
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&unread).Error; err != nil {
		return nil, 0, err
	}

	return notifications, unread, nil
}

// MarkRead marks one notification read; ownership is enforced.
func (s *NotificationService) MarkRead(userID, notificationID uuid.UUID) error {
	res := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead marks every notification for the user as read.
func (s *NotificationService) MarkAllRead(userID uuid.UUID) error {
	return s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

// Delete removes one notification; ownership is enforced.
func (s *NotificationService) Delete(userID, notificationID uuid.UUID) error {
	res := s.db.Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistsToday reports whether a notification of the given type was already
// sent to the user today. The day boundary follows today's location: callers
// that suppress per the user's local day pass a clock already shifted into
// the user's timezone.
func (s *NotificationService) ExistsToday(userID uuid.UUID, typ string, metaKey, metaValue string, today time.Time) (bool, error) {
	y, m, d := today.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, today.Location()).UTC()
	var notifications []models.Notification
	err := s.db.Where("user_id = ? AND type = ? AND created_at >= ?", userID, typ, dayStart).
		Find(&notifications).Error
	if err != nil {
		return false, err
	}
	if metaKey == "" {
		return len(notifications) > 0, nil
	}
	for _, n := range notifications {
		if n.Metadata[metaKey] == metaValue {
			return true, nil
		}
	}
	return false, nil
}

// Subscribe upserts a push subscription keyed by endpoint.
func (s *NotificationService) Subscribe(userID uuid.UUID, endpoint, p256dh, auth, userAgent string) (*models.PushSubscription, error) {
	if endpoint == "" || p256dh == "" || auth == "" {
		return nil, errors.New("endpoint and keys are required")
	}

	var sub models.PushSubscription
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("endpoint = ?", endpoint).First(&sub).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sub = models.PushSubscription{
				UserID:    userID,
				Endpoint:  endpoint,
				P256dh:    p256dh,
				Auth:      auth,
				UserAgent: userAgent,
				IsActive:  true,
			}
			return tx.Create(&sub).Error
		}
		if err != nil {
			return err
		}
		sub.UserID = userID
		sub.P256dh = p256dh
		sub.Auth = auth
		sub.UserAgent = userAgent
		sub.IsActive = true
		return tx.Save(&sub).Error
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Unsubscribe removes the subscription for an endpoint.
func (s *NotificationService) Unsubscribe(userID uuid.UUID, endpoint string) error {
	res := s.db.Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&models.PushSubscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
