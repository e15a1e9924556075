package models

// Application roles. The first authenticated user is promoted to admin via the
// bootstrap endpoint; everyone else defaults to member.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// UserRole assigns a named role to a user.
type UserRole struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_user_roles_user_role" json:"user_id"`
	Role   string `gorm:"type:varchar(32);not null;uniqueIndex:idx_user_roles_user_role" json:"role"`
}
