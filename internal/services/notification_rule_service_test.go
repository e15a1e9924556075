package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sitedesk/sitedesk/internal/database/testutil"
	"github.com/sitedesk/sitedesk/internal/models"
)

func TestNotificationRuleDefaultsToEnabled(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewNotificationRuleService(db)
	require.NoError(t, err)

	enabled, err := svc.Enabled(context.Background(), "user-1", "low_stock")
	require.NoError(t, err)
	require.True(t, enabled)
}

func TestNotificationRuleToggleKeepsConfig(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewNotificationRuleService(db)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.UpdateConfig(ctx, "user-1", "low_stock", map[string]any{"email": true})
	require.NoError(t, err)

	rule, err := svc.SetEnabled(ctx, "user-1", "low_stock", false)
	require.NoError(t, err)
	require.False(t, rule.Enabled)
	require.Equal(t, true, rule.Config["email"])

	rule, err = svc.SetEnabled(ctx, "user-1", "low_stock", true)
	require.NoError(t, err)
	require.True(t, rule.Enabled)
	require.Equal(t, true, rule.Config["email"])

	enabled, err := svc.Enabled(ctx, "user-1", "low_stock")
	require.NoError(t, err)
	require.True(t, enabled)
}

func TestNotificationRuleUpsertKeyedPerUserAndType(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewNotificationRuleService(db)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.SetEnabled(ctx, "user-1", "low_stock", false)
	require.NoError(t, err)
	_, err = svc.SetEnabled(ctx, "user-1", "low_stock", false)
	require.NoError(t, err)
	_, err = svc.SetEnabled(ctx, "user-1", "created", false)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.NotificationRule{}).
		Where("user_id = ?", "user-1").
		Count(&count).Error)
	require.EqualValues(t, 2, count)

	rules, err := svc.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, rules, 2)
}

func TestNotificationRuleEmailRecipients(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewNotificationRuleService(db)
	require.NoError(t, err)
	ctx := context.Background()

	seedUser(t, db, "admin-1", "admin@example.com", models.RoleAdmin)
	seedUser(t, db, "admin-2", "quiet@example.com", models.RoleAdmin)
	seedUser(t, db, "member-1", "member@example.com", models.RoleMember)

	// Opted-in admin receives mail; a disabled rule suppresses it.
	_, err = svc.UpdateConfig(ctx, "admin-1", "low_stock", map[string]any{"email": true})
	require.NoError(t, err)
	_, err = svc.UpdateConfig(ctx, "admin-2", "low_stock", map[string]any{"email": true})
	require.NoError(t, err)
	_, err = svc.SetEnabled(ctx, "admin-2", "low_stock", false)
	require.NoError(t, err)
	_, err = svc.UpdateConfig(ctx, "member-1", "low_stock", map[string]any{"email": true})
	require.NoError(t, err)

	recipients, err := svc.EmailRecipients(ctx, "low_stock")
	require.NoError(t, err)
	require.Equal(t, []string{"admin@example.com"}, recipients)
}

func TestNotificationRuleFirstDisablePersists(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewNotificationRuleService(db)
	require.NoError(t, err)
	ctx := context.Background()

	// Disabling a type the user has never touched must create a disabled row,
	// not fall back to the enabled default.
	rule, err := svc.SetEnabled(ctx, "user-1", "low_stock", false)
	require.NoError(t, err)
	require.False(t, rule.Enabled)

	var stored models.NotificationRule
	require.NoError(t, db.Where("user_id = ? AND type = ?", "user-1", "low_stock").First(&stored).Error)
	require.False(t, stored.Enabled)

	enabled, err := svc.Enabled(ctx, "user-1", "low_stock")
	require.NoError(t, err)
	require.False(t, enabled)
}
