package domain

import "testing"

func TestReportStatusTransitions(t *testing.T) {
	allowed := map[[2]ReportStatus]bool{
		{StatusPendingApproval, StatusAssigned}: true,
		{StatusPendingApproval, StatusRejected}: true,
		{StatusAssigned, StatusInProgress}:      true,
		{StatusInProgress, StatusSuspended}:     true,
		{StatusInProgress, StatusResolved}:      true,
		{StatusSuspended, StatusInProgress}:     true,
	}

	all := []ReportStatus{
		StatusPendingApproval, StatusAssigned, StatusInProgress,
		StatusSuspended, StatusResolved, StatusRejected,
	}
	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]ReportStatus{from, to}]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []ReportStatus{StatusResolved, StatusRejected} {
		if !s.IsTerminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
	for _, s := range []ReportStatus{StatusPendingApproval, StatusAssigned, StatusInProgress, StatusSuspended} {
		if s.IsTerminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
}

func TestCategoryIsValid(t *testing.T) {
	for _, c := range AllCategories {
		if !c.IsValid() {
			t.Errorf("%s must be valid", c)
		}
	}
	if Category("POTHOLES").IsValid() {
		t.Error("unknown category must be invalid")
	}
}

func TestRoleClassification(t *testing.T) {
	if !RoleTechnicalWater.IsTechnical() || RoleExternalCompany.IsTechnical() {
		t.Error("IsTechnical misclassifies roles")
	}
	if !RoleExternalMaintainer.IsExternal() || RoleTechnicalGreen.IsExternal() {
		t.Error("IsExternal misclassifies roles")
	}
	if Role("SUPERUSER").IsValid() {
		t.Error("unknown role must be invalid")
	}
}
