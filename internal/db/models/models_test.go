package models

import (
	"testing"
	"time"
)

func TestRoleIsValid(t *testing.T) {
	for _, r := range AllRoles() {
		if !r.IsValid() {
			t.Errorf("%s should be valid", r)
		}
	}
	if Role("admin").IsValid() {
		t.Error("admin is not a defined role")
	}
	if Role("").IsValid() {
		t.Error("empty role should be invalid")
	}
}

func TestRoleMetaCoversAllRoles(t *testing.T) {
	for _, r := range AllRoles() {
		m := r.Meta()
		if m.Label == "" || m.Icon == "" || m.Color == "" {
			t.Errorf("role %s has incomplete metadata: %+v", r, m)
		}
	}
	if len(roleMeta) != len(AllRoles()) {
		t.Errorf("roleMeta has %d entries, AllRoles has %d", len(roleMeta), len(AllRoles()))
	}
}

func TestRoleMetaUnknownFallback(t *testing.T) {
	m := Role("intern").Meta()
	if m.Label != "intern" {
		t.Errorf("unknown role label = %q, want raw role string", m.Label)
	}
}

func TestToolStatusIsValid(t *testing.T) {
	valid := []ToolStatus{ToolStatusPending, ToolStatusApproved, ToolStatusRejected}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if ToolStatus("archived").IsValid() {
		t.Error("archived is not a defined status")
	}
}

func TestActionIsValid(t *testing.T) {
	valid := []Action{
		ActionLogin, ActionLogout,
		ActionCreateTool, ActionUpdateTool, ActionDeleteTool,
		ActionApproveTool, ActionRejectTool,
		ActionEnable2FA, ActionDisable2FA,
		ActionCreateCategory, ActionUpdateCategory, ActionDeleteCategory,
	}
	for _, a := range valid {
		if !a.IsValid() {
			t.Errorf("%s should be valid", a)
		}
	}
	if Action("drop_table").IsValid() {
		t.Error("drop_table is not a defined action")
	}
}

func TestResourceTypeIsValid(t *testing.T) {
	for _, rt := range []ResourceType{ResourceAuth, ResourceTool, ResourceCategory, ResourceProfile, ResourceSystem} {
		if !rt.IsValid() {
			t.Errorf("%s should be valid", rt)
		}
	}
	if ResourceType("module").IsValid() {
		t.Error("module is not a defined resource type")
	}
}

func TestProfileIsOwner(t *testing.T) {
	p := &Profile{Role: RoleOwner}
	if !p.IsOwner() {
		t.Error("owner profile should report IsOwner")
	}
	p.Role = RoleQA
	if p.IsOwner() {
		t.Error("qa profile should not report IsOwner")
	}
}

func TestLoginCodeIsUsable(t *testing.T) {
	now := time.Now()

	fresh := &LoginCode{ExpiresAt: now.Add(10 * time.Minute)}
	if !fresh.IsUsable() {
		t.Error("fresh code should be usable")
	}

	expired := &LoginCode{ExpiresAt: now.Add(-time.Minute)}
	if expired.IsUsable() {
		t.Error("expired code should not be usable")
	}
	if !expired.IsExpired() {
		t.Error("expired code should report IsExpired")
	}

	consumed := &LoginCode{ExpiresAt: now.Add(10 * time.Minute), ConsumedAt: &now}
	if consumed.IsUsable() {
		t.Error("consumed code should not be usable")
	}
}
