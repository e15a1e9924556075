package services

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/sitedesk/sitedesk/pkg/logger"
)

// logActivity appends an event on behalf of a domain service. The append is
// best-effort; a failure never blocks the domain write that triggered it.
func logActivity(ctx context.Context, activity *ActivityService, actorID, action, entityTable, entityID, message string, metadata map[string]any) {
	if activity == nil {
		return
	}

	input := LogActivityInput{
		Action:      action,
		EntityTable: entityTable,
		Message:     message,
		Metadata:    metadata,
	}
	if actorID = strings.TrimSpace(actorID); actorID != "" {
		input.ActorUserID = &actorID
	}
	if entityID = strings.TrimSpace(entityID); entityID != "" {
		input.EntityID = &entityID
	}

	if _, err := activity.Log(ctx, input); err != nil {
		logger.WithModule("activity").Warn("append activity event", zap.Error(err))
	}
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func normaliseIDs(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func defaultIfEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func encodeJSON(data map[string]any) (datatypes.JSON, error) {
	if data == nil {
		return nil, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func decodeJSON(data datatypes.JSON) map[string]any {
	if len(data) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
