package authz

import (
	"github.com/echosuccess/participium-sub000/internal/domain"
)

// Action identifies an operation subject to role authorization.
type Action string

const (
	ActionCreateReport       Action = "report:create"
	ActionViewReports        Action = "report:view"
	ActionListPendingReports Action = "report:list_pending"
	ActionApproveReport      Action = "report:approve"
	ActionRejectReport       Action = "report:reject"
	ActionListAssignable     Action = "report:list_assignable"
	ActionAssignExternal     Action = "report:assign_external"
	ActionUpdateReportStatus Action = "report:update_status"
	ActionSendReportMessage  Action = "report:send_message"
	ActionCreateInternalNote Action = "report:internal_note"
	ActionManageAccounts     Action = "admin:manage_accounts"
	ActionManageOwnProfile   Action = "profile:manage"
)

// Policy is the immutable authorization configuration loaded once at startup.
// Every endpoint consults this single source of truth instead of scattering
// role conditionals through handlers.
type Policy struct {
	allowed      map[domain.Role]map[Action]struct{}
	categoryDept map[domain.Category]domain.Department
	roleDept     map[domain.Role]domain.Department
}

// NewPolicy builds the default role/action matrix and the category/department
// maps.
func NewPolicy() *Policy {
	grants := map[domain.Role][]Action{
		domain.RoleCitizen: {
			ActionCreateReport,
			ActionViewReports,
			ActionSendReportMessage,
			ActionManageOwnProfile,
		},
		domain.RolePublicRelations: {
			ActionViewReports,
			ActionListPendingReports,
			ActionListAssignable,
			ActionApproveReport,
			ActionRejectReport,
			ActionManageOwnProfile,
		},
		domain.RoleAdministrator: {
			ActionViewReports,
			ActionManageAccounts,
			ActionManageOwnProfile,
		},
	}
	for _, technical := range []domain.Role{
		domain.RoleTechnicalWater,
		domain.RoleTechnicalLighting,
		domain.RoleTechnicalWaste,
		domain.RoleTechnicalRoads,
		domain.RoleTechnicalGreen,
	} {
		grants[technical] = []Action{
			ActionViewReports,
			ActionListAssignable,
			ActionAssignExternal,
			ActionUpdateReportStatus,
			ActionSendReportMessage,
			ActionCreateInternalNote,
			ActionManageOwnProfile,
		}
	}
	for _, external := range []domain.Role{
		domain.RoleExternalMaintainer,
		domain.RoleExternalCompany,
	} {
		grants[external] = []Action{
			ActionViewReports,
			ActionUpdateReportStatus,
			ActionSendReportMessage,
			ActionCreateInternalNote,
			ActionManageOwnProfile,
		}
	}

	allowed := make(map[domain.Role]map[Action]struct{}, len(grants))
	for role, actions := range grants {
		set := make(map[Action]struct{}, len(actions))
		for _, action := range actions {
			set[action] = struct{}{}
		}
		allowed[role] = set
	}

	return &Policy{
		allowed: allowed,
		categoryDept: map[domain.Category]domain.Department{
			domain.CategoryWaterSupply:       domain.DepartmentWater,
			domain.CategoryPublicLighting:    domain.DepartmentLighting,
			domain.CategoryWaste:             domain.DepartmentWaste,
			domain.CategoryRoadsAndFurniture: domain.DepartmentRoads,
			domain.CategoryPublicGreen:       domain.DepartmentGreen,
		},
		roleDept: map[domain.Role]domain.Department{
			domain.RoleTechnicalWater:    domain.DepartmentWater,
			domain.RoleTechnicalLighting: domain.DepartmentLighting,
			domain.RoleTechnicalWaste:    domain.DepartmentWaste,
			domain.RoleTechnicalRoads:    domain.DepartmentRoads,
			domain.RoleTechnicalGreen:    domain.DepartmentGreen,
		},
	}
}

// Allows reports whether role may perform action.
func (p *Policy) Allows(role domain.Role, action Action) bool {
	set, ok := p.allowed[role]
	if !ok {
		return false
	}
	_, ok = set[action]
	return ok
}

// DepartmentFor returns the municipal department responsible for a category.
func (p *Policy) DepartmentFor(category domain.Category) (domain.Department, bool) {
	dept, ok := p.categoryDept[category]
	return dept, ok
}

// CompatibleTechnical reports whether user is municipal technical staff whose
// department matches the report category.
func (p *Policy) CompatibleTechnical(user *domain.User, category domain.Category) bool {
	if user == nil || !user.Role.IsTechnical() {
		return false
	}
	dept, ok := p.categoryDept[category]
	if !ok {
		return false
	}
	return p.roleDept[user.Role] == dept
}

// CompatibleExternal reports whether user is an external maintainer or company
// serving the category's department.
func (p *Policy) CompatibleExternal(user *domain.User, category domain.Category) bool {
	if user == nil || !user.Role.IsExternal() || user.Department == nil {
		return false
	}
	dept, ok := p.categoryDept[category]
	if !ok {
		return false
	}
	return *user.Department == dept
}

// MunicipalityRoles lists roles an administrator may assign to municipality
// accounts. CITIZEN accounts are created through self-signup only.
func (p *Policy) MunicipalityRoles() []domain.Role {
	roles := make([]domain.Role, 0, len(domain.AllRoles)-1)
	for _, role := range domain.AllRoles {
		if role == domain.RoleCitizen {
			continue
		}
		roles = append(roles, role)
	}
	return roles
}
