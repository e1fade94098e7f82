package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ihute/transit-backend/internal/models"
	"github.com/ihute/transit-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// Audited admin actions
const (
	AuditCreateExpress  = "CREATE_EXPRESS"
	AuditCreateRoute    = "CREATE_ROUTE"
	AuditCreateBus      = "CREATE_BUS"
	AuditCreateTrip     = "CREATE_TRIP"
	AuditSetPrice       = "SET_PRICE"
	AuditConfirmPayment = "CONFIRM_PAYMENT"
)

// AdminActor identifies the admin performing a request
type AdminActor struct {
	AdminID   int64
	Role      models.AdminRole
	ExpressID *int64
	IPAddress string
	UserAgent string
}

// AuditEntry describes one admin change. Values are marshalled to JSON.
type AuditEntry struct {
	Action     string
	EntityType string
	EntityID   *int64
	OldValue   interface{}
	NewValue   interface{}
}

// AuditRecorder records admin actions. Failures are logged, never returned.
type AuditRecorder interface {
	LogAdminAction(ctx context.Context, actor AdminActor, entry AuditEntry)
}

// AuditStore persists audit entries
type AuditStore interface {
	Insert(ctx context.Context, entry *models.AuditLog) error
	ListRecent(ctx context.Context, limit int) ([]*models.AuditLog, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

const (
	defaultAuditListLimit = 100
	maxAuditListLimit     = 500
)

// AuditService handles audit logging for admin actions
type AuditService struct {
	repo    AuditStore
	enabled bool
	logger  *logrus.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(repo AuditStore, enabled bool, logger *logrus.Logger) *AuditService {
	return &AuditService{repo: repo, enabled: enabled, logger: logger}
}

// LogAdminAction stores the entry with the actor's IP and parsed device info
func (s *AuditService) LogAdminAction(ctx context.Context, actor AdminActor, entry AuditEntry) {
	if !s.enabled {
		return
	}

	adminID := actor.AdminID
	record := &models.AuditLog{
		AdminID:    &adminID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		OldValue:   s.marshal(entry.OldValue),
		NewValue:   s.marshal(entry.NewValue),
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
		DeviceInfo: utils.ParseUserAgent(actor.UserAgent).JSON(),
	}

	if err := s.repo.Insert(ctx, record); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"admin_id": actor.AdminID,
			"action":   entry.Action,
		}).Error("Failed to write audit log")
	}
}

// ListRecent returns the newest entries. limit defaults to 100 and is capped at 500.
func (s *AuditService) ListRecent(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 {
		limit = defaultAuditListLimit
	}
	if limit > maxAuditListLimit {
		limit = maxAuditListLimit
	}
	return s.repo.ListRecent(ctx, limit)
}

// CleanupOldAuditLogs removes entries older than retention
func (s *AuditService) CleanupOldAuditLogs(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, fmt.Errorf("retention must be positive")
	}
	return s.repo.DeleteOlderThan(ctx, time.Now().Add(-retention))
}

func (s *AuditService) marshal(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to marshal audit value")
		return nil
	}
	return raw
}
