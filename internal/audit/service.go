package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"mandi-backend/internal/models"
	"mandi-backend/internal/store"

	"github.com/sirupsen/logrus"
)

type LogOptions struct {
	UserID      string
	UserName    string
	EntityType  string
	EntityID    string
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

type Service struct {
	store *store.Store
	log   logrus.FieldLogger
}

func NewService(s *store.Store, log logrus.FieldLogger) *Service {
	return &Service{store: s, log: log}
}

func (s *Service) WriteLog(ctx context.Context, opts LogOptions) error {
	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  marshalOrNull(opts.Before),
		AfterData:   marshalOrNull(opts.After),
	}
	if err := store.Create(ctx, s.store, &entry); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// Record writes the log and only reports a failure; the audited write has
// already been committed.
func (s *Service) Record(ctx context.Context, opts LogOptions) {
	if err := s.WriteLog(ctx, opts); err != nil {
		s.log.WithFields(logrus.Fields{
			"entity_type": opts.EntityType,
			"entity_id":   opts.EntityID,
		}).WithError(err).Warn("audit log not written")
	}
}

type Filter struct {
	EntityType string
	EntityID   string
	UserID     string
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.AuditLog, error) {
	eq := map[string]any{}
	if f.EntityType != "" {
		eq["entity_type"] = f.EntityType
	}
	if f.EntityID != "" {
		eq["entity_id"] = f.EntityID
	}
	if f.UserID != "" {
		eq["user_id"] = f.UserID
	}
	return store.Find[models.AuditLog](ctx, s.store, eq, store.Desc("created_at"))
}

// jsonb-style columns hold "null" rather than an empty string.
func marshalOrNull(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
