package authz

import (
	"testing"

	"github.com/echosuccess/participium-sub000/internal/domain"
)

func TestPolicyMatrix(t *testing.T) {
	policy := NewPolicy()

	cases := []struct {
		role   domain.Role
		action Action
		want   bool
	}{
		{domain.RoleCitizen, ActionCreateReport, true},
		{domain.RoleCitizen, ActionApproveReport, false},
		{domain.RoleCitizen, ActionCreateInternalNote, false},
		{domain.RoleCitizen, ActionListAssignable, false},
		{domain.RolePublicRelations, ActionListPendingReports, true},
		{domain.RolePublicRelations, ActionListAssignable, true},
		{domain.RolePublicRelations, ActionApproveReport, true},
		{domain.RolePublicRelations, ActionRejectReport, true},
		{domain.RolePublicRelations, ActionCreateReport, false},
		{domain.RolePublicRelations, ActionManageAccounts, false},
		{domain.RoleAdministrator, ActionManageAccounts, true},
		{domain.RoleAdministrator, ActionApproveReport, false},
		{domain.RoleTechnicalLighting, ActionUpdateReportStatus, true},
		{domain.RoleTechnicalLighting, ActionListAssignable, true},
		{domain.RoleTechnicalLighting, ActionAssignExternal, true},
		{domain.RoleTechnicalLighting, ActionCreateInternalNote, true},
		{domain.RoleTechnicalLighting, ActionApproveReport, false},
		{domain.RoleExternalMaintainer, ActionUpdateReportStatus, true},
		{domain.RoleExternalMaintainer, ActionAssignExternal, false},
		{domain.RoleExternalCompany, ActionCreateInternalNote, true},
		{domain.Role("UNKNOWN"), ActionViewReports, false},
	}
	for _, tc := range cases {
		if got := policy.Allows(tc.role, tc.action); got != tc.want {
			t.Errorf("Allows(%s, %s) = %v, want %v", tc.role, tc.action, got, tc.want)
		}
	}
}

func TestCompatibleTechnical(t *testing.T) {
	policy := NewPolicy()

	lighting := &domain.User{Role: domain.RoleTechnicalLighting}
	if !policy.CompatibleTechnical(lighting, domain.CategoryPublicLighting) {
		t.Error("lighting technician must match PUBLIC_LIGHTING")
	}
	if policy.CompatibleTechnical(lighting, domain.CategoryWaste) {
		t.Error("lighting technician must not match WASTE")
	}
	if policy.CompatibleTechnical(&domain.User{Role: domain.RoleCitizen}, domain.CategoryWaste) {
		t.Error("citizens are never compatible technicals")
	}
	if policy.CompatibleTechnical(nil, domain.CategoryWaste) {
		t.Error("nil user must not be compatible")
	}
}

func TestCompatibleExternal(t *testing.T) {
	policy := NewPolicy()

	green := domain.DepartmentGreen
	external := &domain.User{Role: domain.RoleExternalCompany, Department: &green}
	if !policy.CompatibleExternal(external, domain.CategoryPublicGreen) {
		t.Error("green external must match PUBLIC_GREEN")
	}
	if policy.CompatibleExternal(external, domain.CategoryRoadsAndFurniture) {
		t.Error("green external must not match ROADS_AND_FURNITURE")
	}
	if policy.CompatibleExternal(&domain.User{Role: domain.RoleExternalCompany}, domain.CategoryPublicGreen) {
		t.Error("external without a department is never compatible")
	}
}

func TestMunicipalityRolesExcludeCitizen(t *testing.T) {
	policy := NewPolicy()
	for _, role := range policy.MunicipalityRoles() {
		if role == domain.RoleCitizen {
			t.Fatal("CITIZEN must not be assignable to municipality accounts")
		}
	}
	if len(policy.MunicipalityRoles()) != len(domain.AllRoles)-1 {
		t.Fatalf("municipality roles = %d, want %d", len(policy.MunicipalityRoles()), len(domain.AllRoles)-1)
	}
}
