package domain

import "time"

// Role enumerates the account roles known to the platform. Every user holds
// exactly one role.
type Role string

const (
	RoleCitizen            Role = "CITIZEN"
	RolePublicRelations    Role = "PUBLIC_RELATIONS"
	RoleAdministrator      Role = "ADMINISTRATOR"
	RoleTechnicalWater     Role = "TECHNICAL_WATER"
	RoleTechnicalLighting  Role = "TECHNICAL_LIGHTING"
	RoleTechnicalWaste     Role = "TECHNICAL_WASTE"
	RoleTechnicalRoads     Role = "TECHNICAL_ROADS"
	RoleTechnicalGreen     Role = "TECHNICAL_GREEN"
	RoleExternalMaintainer Role = "EXTERNAL_MAINTAINER"
	RoleExternalCompany    Role = "EXTERNAL_COMPANY"
)

// AllRoles lists every valid role value.
var AllRoles = []Role{
	RoleCitizen,
	RolePublicRelations,
	RoleAdministrator,
	RoleTechnicalWater,
	RoleTechnicalLighting,
	RoleTechnicalWaste,
	RoleTechnicalRoads,
	RoleTechnicalGreen,
	RoleExternalMaintainer,
	RoleExternalCompany,
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	for _, role := range AllRoles {
		if role == r {
			return true
		}
	}
	return false
}

// IsTechnical reports whether r is one of the municipal technical department
// roles.
func (r Role) IsTechnical() bool {
	switch r {
	case RoleTechnicalWater, RoleTechnicalLighting, RoleTechnicalWaste, RoleTechnicalRoads, RoleTechnicalGreen:
		return true
	}
	return false
}

// IsExternal reports whether r belongs to an external maintainer or company.
func (r Role) IsExternal() bool {
	return r == RoleExternalMaintainer || r == RoleExternalCompany
}

// NotificationPreference selects the delivery channel for notifications.
type NotificationPreference string

const (
	NotifyByEmail    NotificationPreference = "EMAIL"
	NotifyByTelegram NotificationPreference = "TELEGRAM"
	NotifyNone       NotificationPreference = "NONE"
)

// IsValid reports whether p is a known preference.
func (p NotificationPreference) IsValid() bool {
	switch p {
	case NotifyByEmail, NotifyByTelegram, NotifyNone:
		return true
	}
	return false
}

// User is the account aggregate for citizens and municipal staff.
type User struct {
	ID               int64
	Name             string
	Email            string
	PasswordHash     string
	Role             Role
	IsVerified       bool
	VerificationCode *string
	CodeExpiresAt    *time.Time
	TelegramHandle   *string
	TelegramChatID   *int64
	NotificationPref NotificationPreference
	Department       *Department
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CitizenPhoto is the single optional profile photo owned by a user.
type CitizenPhoto struct {
	ID        int64
	UserID    int64
	URL       string
	Filename  string
	CreatedAt time.Time
}
