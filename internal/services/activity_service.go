package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sitedesk/sitedesk/internal/models"
	"github.com/sitedesk/sitedesk/internal/realtime"
	apperrors "github.com/sitedesk/sitedesk/pkg/errors"
	"github.com/sitedesk/sitedesk/pkg/logger"
	"github.com/sitedesk/sitedesk/pkg/mail"
	"github.com/sitedesk/sitedesk/pkg/metrics"
)

// Well-known activity actions appended by the domain services.
const (
	ActionCreated     = "created"
	ActionUpdated     = "updated"
	ActionDeleted     = "deleted"
	ActionArchivedOp  = "archived"
	ActionLowStock    = "low_stock"
	ActionStockMoved  = "stock_transaction"
	ActionMaintenance = "maintenance_logged"
)

const (
	// DefaultFetchLimit bounds the number of events returned by List.
	DefaultFetchLimit = 200
	// DefaultRetentionMax bounds the number of events kept by the sweep.
	DefaultRetentionMax = 1000

	lowStockDedupeWindow = 24 * time.Hour
)

// ActivityItemDTO is an event merged with the caller's overlay state.
// ReadAt and ArchivedAt are null until the user interacts with the event.
type ActivityItemDTO struct {
	ID          string         `json:"id"`
	ActorUserID *string        `json:"actor_user_id"`
	Action      string         `json:"action"`
	EntityTable string         `json:"entity_table"`
	EntityID    *string        `json:"entity_id"`
	Message     string         `json:"message"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	ReadAt      *time.Time     `json:"read_at"`
	ArchivedAt  *time.Time     `json:"archived_at"`
}

// ActivityFeed is the merged feed returned to a user.
type ActivityFeed struct {
	Items       []ActivityItemDTO `json:"items"`
	UnreadCount int               `json:"unread_count"`
}

// LogActivityInput describes an event to append.
type LogActivityInput struct {
	ActorUserID *string
	Action      string
	EntityTable string
	EntityID    *string
	Message     string
	Metadata    map[string]any
}

// StateChangePayload is broadcast to a user's connections after an overlay write.
type StateChangePayload struct {
	EventID    string     `json:"event_id,omitempty"`
	EventIDs   []string   `json:"event_ids,omitempty"`
	ReadAt     *time.Time `json:"read_at"`
	ArchivedAt *time.Time `json:"archived_at"`
}

// ActivityServiceOptions carries the optional collaborators of the service.
type ActivityServiceOptions struct {
	Hub          *realtime.Hub
	Rules        *NotificationRuleService
	Mailer       mail.Mailer
	FetchLimit   int
	RetentionMax int
}

// ActivityService owns the append-only activity log and the per-user overlay.
// Events are immutable; all user interaction happens through state upserts.
type ActivityService struct {
	db           *gorm.DB
	hub          *realtime.Hub
	rules        *NotificationRuleService
	mailer       mail.Mailer
	fetchLimit   int
	retentionMax int
	log          *zap.Logger
}

// NewActivityService constructs an ActivityService.
func NewActivityService(db *gorm.DB, opts ActivityServiceOptions) (*ActivityService, error) {
	if db == nil {
		return nil, errors.New("activity service: db is required")
	}

	fetchLimit := opts.FetchLimit
	if fetchLimit <= 0 {
		fetchLimit = DefaultFetchLimit
	}
	retentionMax := opts.RetentionMax
	if retentionMax <= 0 {
		retentionMax = DefaultRetentionMax
	}

	return &ActivityService{
		db:           db,
		hub:          opts.Hub,
		rules:        opts.Rules,
		mailer:       opts.Mailer,
		fetchLimit:   fetchLimit,
		retentionMax: retentionMax,
		log:          logger.WithModule("activity"),
	}, nil
}

// Log appends an event, broadcasts it on the activity stream and kicks off
// rule-gated email fan-out. The append is authoritative; delivery is best-effort.
func (s *ActivityService) Log(ctx context.Context, input LogActivityInput) (*ActivityItemDTO, error) {
	ctx = ensureContext(ctx)

	action := strings.TrimSpace(input.Action)
	if action == "" {
		return nil, errors.New("activity service: action is required")
	}
	entityTable := strings.TrimSpace(input.EntityTable)
	if entityTable == "" {
		return nil, errors.New("activity service: entity table is required")
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, errors.New("activity service: message is required")
	}

	metadata, err := encodeJSON(input.Metadata)
	if err != nil {
		return nil, fmt.Errorf("activity service: marshal metadata: %w", err)
	}

	event := models.ActivityEvent{
		ActorUserID: input.ActorUserID,
		Action:      action,
		EntityTable: entityTable,
		EntityID:    input.EntityID,
		Message:     message,
		Metadata:    metadata,
	}

	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, fmt.Errorf("activity service: append event: %w", err)
	}

	metrics.ActivityEvents.WithLabelValues(action).Inc()

	item := mapActivityEvent(event, nil)
	if s.hub != nil {
		s.hub.BroadcastStream(realtime.StreamActivity, realtime.Message{
			Event: "activity.created",
			Data:  item,
		})
	}

	s.fanOutEmail(event)

	return &item, nil
}

// LogLowStock appends a low_stock event for the material unless one was
// already appended inside the dedupe window.
func (s *ActivityService) LogLowStock(ctx context.Context, material *models.Material) error {
	ctx = ensureContext(ctx)
	if material == nil || material.ID == "" {
		return errors.New("activity service: material is required")
	}

	recent, err := s.hasRecentEvent(ctx, ActionLowStock, material.ID, lowStockDedupeWindow)
	if err != nil {
		return err
	}
	if recent {
		return nil
	}

	entityID := material.ID
	_, err = s.Log(ctx, LogActivityInput{
		Action:      ActionLowStock,
		EntityTable: "materials",
		EntityID:    &entityID,
		Message:     fmt.Sprintf("%s is low on stock (%.2f remaining)", material.Name, material.Quantity),
		Metadata: map[string]any{
			"quantity":  material.Quantity,
			"threshold": material.LowStockThreshold,
		},
	})
	return err
}

// List returns the latest events merged with the caller's overlay state.
// An empty user id yields an empty feed.
func (s *ActivityService) List(ctx context.Context, userID string, limit int) (*ActivityFeed, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return &ActivityFeed{Items: []ActivityItemDTO{}}, nil
	}

	if limit <= 0 || limit > s.fetchLimit {
		limit = s.fetchLimit
	}

	var events []models.ActivityEvent
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("activity service: list events: %w", err)
	}

	states, err := s.statesFor(ctx, userID, eventIDs(events))
	if err != nil {
		return nil, err
	}

	feed := &ActivityFeed{Items: make([]ActivityItemDTO, 0, len(events))}
	for _, event := range events {
		state := states[event.ID]
		item := mapActivityEvent(event, state)
		if item.ReadAt == nil && item.ArchivedAt == nil {
			feed.UnreadCount++
		}
		feed.Items = append(feed.Items, item)
	}
	return feed, nil
}

// MarkRead sets or clears read_at on the caller's overlay for the event.
// Repeated calls are idempotent; the latest write wins.
func (s *ActivityService) MarkRead(ctx context.Context, userID, eventID string, read bool) (*ActivityItemDTO, error) {
	var readAt *time.Time
	if read {
		now := time.Now().UTC()
		readAt = &now
	}
	return s.patchState(ctx, userID, eventID, map[string]any{"read_at": readAt})
}

// SetArchived sets or clears archived_at on the caller's overlay for the
// event. read_at is left untouched so unarchiving restores the prior state.
func (s *ActivityService) SetArchived(ctx context.Context, userID, eventID string, archived bool) (*ActivityItemDTO, error) {
	var archivedAt *time.Time
	if archived {
		now := time.Now().UTC()
		archivedAt = &now
	}
	return s.patchState(ctx, userID, eventID, map[string]any{"archived_at": archivedAt})
}

// MarkAllRead stamps read_at on every active unread event for the user.
// No rows are written when nothing is unread.
func (s *ActivityService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, errors.New("activity service: user id is required")
	}

	var events []models.ActivityEvent
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(s.fetchLimit).
		Find(&events).Error; err != nil {
		return 0, fmt.Errorf("activity service: list events: %w", err)
	}

	states, err := s.statesFor(ctx, userID, eventIDs(events))
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	var pending []models.ActivityEventState
	var touched []string
	for _, event := range events {
		state := states[event.ID]
		if state != nil && (state.ReadAt != nil || state.ArchivedAt != nil) {
			continue
		}
		pending = append(pending, models.ActivityEventState{
			UserID:  userID,
			EventID: event.ID,
			ReadAt:  &now,
		})
		touched = append(touched, event.ID)
	}

	if len(pending) == 0 {
		return 0, nil
	}

	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "event_id"}},
			DoUpdates: clause.Assignments(map[string]any{"read_at": now}),
		}).
		Create(&pending).Error; err != nil {
		return 0, fmt.Errorf("activity service: mark all read: %w", err)
	}

	s.broadcastState(userID, "activity.read_all", StateChangePayload{
		EventIDs: touched,
		ReadAt:   &now,
	})

	return len(pending), nil
}

// RetentionSweep deletes events beyond the retention cap, oldest first,
// together with their overlay rows. Returns the number of events removed.
func (s *ActivityService) RetentionSweep(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	var keep []string
	if err := s.db.WithContext(ctx).
		Model(&models.ActivityEvent{}).
		Order("created_at DESC").
		Limit(s.retentionMax).
		Pluck("id", &keep).Error; err != nil {
		return 0, fmt.Errorf("activity service: load retained ids: %w", err)
	}
	if len(keep) < s.retentionMax {
		return 0, nil
	}

	result := s.db.WithContext(ctx).
		Where("id NOT IN ?", keep).
		Delete(&models.ActivityEvent{})
	if result.Error != nil {
		return 0, fmt.Errorf("activity service: sweep events: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, nil
	}

	if err := s.db.WithContext(ctx).
		Where("event_id NOT IN ?", keep).
		Delete(&models.ActivityEventState{}).Error; err != nil {
		return result.RowsAffected, fmt.Errorf("activity service: sweep states: %w", err)
	}

	s.log.Info("retention sweep removed events", zap.Int64("count", result.RowsAffected))
	return result.RowsAffected, nil
}

func (s *ActivityService) patchState(ctx context.Context, userID, eventID string, assignments map[string]any) (*ActivityItemDTO, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	eventID = strings.TrimSpace(eventID)
	if userID == "" || eventID == "" {
		return nil, errors.New("activity service: user id and event id are required")
	}

	var event models.ActivityEvent
	if err := s.db.WithContext(ctx).First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("activity service: load event: %w", err)
	}

	state := models.ActivityEventState{
		UserID:  userID,
		EventID: eventID,
	}
	if readAt, ok := assignments["read_at"].(*time.Time); ok {
		state.ReadAt = readAt
	}
	if archivedAt, ok := assignments["archived_at"].(*time.Time); ok {
		state.ArchivedAt = archivedAt
	}

	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "event_id"}},
			DoUpdates: clause.Assignments(assignments),
		}).
		Create(&state).Error; err != nil {
		return nil, fmt.Errorf("activity service: upsert state: %w", err)
	}

	var stored models.ActivityEventState
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		First(&stored).Error; err != nil {
		return nil, fmt.Errorf("activity service: reload state: %w", err)
	}

	s.broadcastState(userID, "activity.state", StateChangePayload{
		EventID:    eventID,
		ReadAt:     stored.ReadAt,
		ArchivedAt: stored.ArchivedAt,
	})

	item := mapActivityEvent(event, &stored)
	return &item, nil
}

func (s *ActivityService) statesFor(ctx context.Context, userID string, ids []string) (map[string]*models.ActivityEventState, error) {
	states := make(map[string]*models.ActivityEventState, len(ids))
	if len(ids) == 0 {
		return states, nil
	}

	var rows []models.ActivityEventState
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND event_id IN ?", userID, ids).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("activity service: load states: %w", err)
	}

	for i := range rows {
		states[rows[i].EventID] = &rows[i]
	}
	return states, nil
}

func (s *ActivityService) hasRecentEvent(ctx context.Context, action, entityID string, window time.Duration) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.ActivityEvent{}).
		Where("action = ? AND entity_id = ? AND created_at > ?", action, entityID, time.Now().Add(-window)).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("activity service: dedupe lookup: %w", err)
	}
	return count > 0, nil
}

func (s *ActivityService) broadcastState(userID, event string, payload StateChangePayload) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToUser(realtime.StreamActivityState, userID, realtime.Message{
		Event: event,
		Data:  payload,
	})
}

// fanOutEmail delivers the event by email to opted-in admins. Failures are
// logged and never surface to the caller.
func (s *ActivityService) fanOutEmail(event models.ActivityEvent) {
	if s.mailer == nil || s.rules == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		recipients, err := s.rules.EmailRecipients(ctx, event.Action)
		if err != nil {
			s.log.Warn("email fan-out recipients", zap.Error(err))
			return
		}
		if len(recipients) == 0 {
			return
		}

		err = s.mailer.Send(ctx, mail.Message{
			To:      recipients,
			Subject: fmt.Sprintf("[SiteDesk] %s", event.Action),
			Body:    event.Message,
		})
		if err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
			s.log.Warn("email fan-out send", zap.Error(err))
		}
	}()
}

func mapActivityEvent(event models.ActivityEvent, state *models.ActivityEventState) ActivityItemDTO {
	item := ActivityItemDTO{
		ID:          event.ID,
		ActorUserID: event.ActorUserID,
		Action:      event.Action,
		EntityTable: event.EntityTable,
		EntityID:    event.EntityID,
		Message:     event.Message,
		Metadata:    decodeJSON(event.Metadata),
		CreatedAt:   event.CreatedAt,
	}
	if state != nil {
		item.ReadAt = state.ReadAt
		item.ArchivedAt = state.ArchivedAt
	}
	return item
}

func eventIDs(events []models.ActivityEvent) []string {
	ids := make([]string, 0, len(events))
	for _, event := range events {
		ids = append(ids, event.ID)
	}
	return normaliseIDs(ids)
}
