package model

import "github.com/google/uuid"

type UserRole string

const (
	UserRoleFleetManager     UserRole = "FLEET_MANAGER"
	UserRoleDispatcher       UserRole = "DISPATCHER"
	UserRoleSafetyOfficer    UserRole = "SAFETY_OFFICER"
	UserRoleFinancialAnalyst UserRole = "FINANCIAL_ANALYST"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleFleetManager, UserRoleDispatcher, UserRoleSafetyOfficer, UserRoleFinancialAnalyst:
		return true
	default:
		return false
	}
}

type Principal struct {
	UserID uuid.UUID
	Role   UserRole
}

func (p Principal) IsFleetManager() bool {
	return p.Role == UserRoleFleetManager
}

func (p Principal) IsDispatcher() bool {
	return p.Role == UserRoleDispatcher
}

func (p Principal) IsSafetyOfficer() bool {
	return p.Role == UserRoleSafetyOfficer
}

func (p Principal) IsFinancialAnalyst() bool {
	return p.Role == UserRoleFinancialAnalyst
}

func (p Principal) HasRole(roles ...UserRole) bool {
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}
