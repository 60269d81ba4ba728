package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/events"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

func TestCreateIncidentAssignsTier1(t *testing.T) {
	f := newEngineFixture()
	f.addTechnician("t-a", "Alice", domain.TierOne, []string{fixtureSubName}, true, 1)

	incident, err := f.createIncident(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if incident.Status != domain.IncidentStatusOpen {
		t.Fatalf("expected OPEN, got %s", incident.Status)
	}
	if incident.HandlerID == nil || *incident.HandlerID != "t-a" {
		t.Fatalf("expected handler t-a, got %v", incident.HandlerID)
	}
	if !strings.HasPrefix(incident.Number, "INC-") {
		t.Fatalf("unexpected incident number %q", incident.Number)
	}

	entries := f.history.forIncident(incident.ID)
	if len(entries) != 1 || entries[0].AssigneeName != "Alice" {
		t.Fatalf("expected one history entry naming Alice, got %+v", entries)
	}
	if len(f.dispatcher.byType(events.EventIncidentCreated)) != 1 {
		t.Fatalf("expected a created event")
	}
	if len(f.dispatcher.byType(events.EventIncidentAssigned)) != 1 {
		t.Fatalf("expected an assigned event")
	}
}

func TestCreateIncidentQueuesWhenAllSaturated(t *testing.T) {
	f := newEngineFixture()
	f.addTechnician("t-a", "Alice", domain.TierOne, []string{fixtureSubName}, true, 1)
	for i := 0; i < 3; i++ {
		f.addActiveIncident("t-a")
	}

	incident, err := f.createIncident(context.Background())
	if err != nil {
		t.Fatalf("capacity exhaustion must not be an error: %v", err)
	}
	if incident.Status != domain.IncidentStatusPending {
		t.Fatalf("expected PENDING_ASSIGNMENT, got %s", incident.Status)
	}
	if incident.HandlerID != nil {
		t.Fatalf("pending incident must have no handler, got %v", *incident.HandlerID)
	}
	if len(f.dispatcher.byType(events.EventIncidentAssigned)) != 0 {
		t.Fatalf("no assigned event for a queued incident")
	}
}

func TestCreateIncidentSkillGate(t *testing.T) {
	f := newEngineFixture()
	// Active and idle but with no overlapping skill tags.
	f.addTechnician("t-a", "Alice", domain.TierOne, []string{"Printing"}, true, 1)

	incident, err := f.createIncident(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if incident.Status != domain.IncidentStatusPending {
		t.Fatalf("unskilled technician must not be assigned, got %s", incident.Status)
	}
}

func TestCreateIncidentUnknownCategoryFails(t *testing.T) {
	f := newEngineFixture()
	_, err := f.service.CreateIncident(context.Background(), "user-1", IncidentCreateInput{
		Category: "VPN Tunnel",
		Title:    "cannot connect",
	})
	assertValidation(t, err, "category not found")
}

func TestCreateIncidentInactiveTechnicianSkipped(t *testing.T) {
	f := newEngineFixture()
	f.addTechnician("t-a", "Alice", domain.TierOne, []string{fixtureSubName}, false, 1)

	incident, err := f.createIncident(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if incident.Status != domain.IncidentStatusPending {
		t.Fatalf("inactive technician must not be assigned, got %s", incident.Status)
	}
}

func TestUpdateCategoryChangeReassigns(t *testing.T) {
	f := newEngineFixture()
	f.addTechnician("t-a", "Alice", domain.TierOne, []string{fixtureSubName}, true, 1)
	f.addCategoryPath("team-fac", "Facilities", "Electrical", "Power Outage")
	facTech := &domain.Technician{
		ID: "t-f", Name: "Frank", Email: "frank@example.com",
		TeamID: "team-fac", TeamName: "Facilities", Tier: domain.TierOne,
		Skills: []string{"Electrical"}, Active: true,
	}
	_ = f.technicians.Create(context.Background(), facTech)

	incident, err := f.createIncident(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newCategory := "Power Outage"
	updated, err := f.service.UpdateIncident(context.Background(), TechnicianActor("t-a"), incident.ID, IncidentUpdateInput{
		Category: &newCategory,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Category != newCategory {
		t.Fatalf("category not updated: %s", updated.Category)
	}
	if updated.HandlerID == nil || *updated.HandlerID != "t-f" {
		t.Fatalf("expected reassignment to t-f, got %v", updated.HandlerID)
	}
}

func TestUpdateCategoryChangeFailureForcesPending(t *testing.T) {
	f := newEngineFixture()
	f.addTechnician("t-a", "Alice", domain.TierOne, []string{fixtureSubName}, true, 1)
	f.addCategoryPath("team-fac", "Facilities", "Electrical", "Power Outage")

	incident, err := f.createIncident(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// No Facilities technician exists; the simultaneous Tier2 request must
	// be overridden by the failed re-resolution.
	newCategory := "Power Outage"
	updated, err := f.service.UpdateIncident(context.Background(), TechnicianActor("t-a"), incident.ID, IncidentUpdateInput{
		Category:    &newCategory,
		AssignTier2: true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.IncidentStatusPending {
		t.Fatalf("expected PENDING_ASSIGNMENT, got %s", updated.Status)
	}
	if updated.HandlerID != nil {
		t.Fatalf("handler must be cleared, got %v", *updated.HandlerID)
	}
}

func TestUpdateTier2Escalation(t *testing.T) {
	f := newEngineFixture()
	f.addTechnician("t-a", "Alice", domain.TierOne, []string{fixtureSubName}, true, 1)
	f.addTechnician("t-b", "Bruno", domain.TierTwo, []string{fixtureTeamName}, true, 2)

	incident, err := f.createIncident(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := f.service.UpdateIncident(context.Background(), TechnicianActor("t-a"), incident.ID, IncidentUpdateInput{
		AssignTier2: true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.HandlerID == nil || *updated.HandlerID != "t-b" {
		t.Fatalf("expected Tier2 handler t-b, got %v", updated.HandlerID)
	}
	if len(f.dispatcher.byType(events.EventIncidentTransferred)) != 1 {
		t.Fatalf("expected a transferred event")
	}
}

func TestUpdateTier2ExhaustionQueues(t *testing.T) {
	f := newEngineFixture()
	f.addTechnician("t-a", "Alice", domain.TierOne, []string{fixtureSubName}, true, 1)

	incident, err := f.createIncident(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := f.service.UpdateIncident(context.Background(), TechnicianActor("t-a"), incident.ID, IncidentUpdateInput{
		AssignTier2: true,
	})
	if err != nil {
		t.Fatalf("tier2 exhaustion must not be an error: %v", err)
	}
	if updated.Status != domain.IncidentStatusPendingTier2 {
		t.Fatalf("expected PENDING_TIER2_ASSIGNMENT, got %s", updated.Status)
	}
	if updated.HandlerID != nil {
		t.Fatalf("handler must be cleared, got %v", *updated.HandlerID)
	}
}

func TestUpdateTeamAdminEscalationIgnoresCapacity(t *testing.T) {
	f := newEngineFixture()
	f.addTechnician("t-a", "Alice", domain.TierOne, []string{fixtureSubName}, true, 1)
	f.addAdmin("adm-1", "Head", true)
	// Admin already carries a full queue; escalation still lands on them.
	for i := 0; i < 3; i++ {
		f.addActiveIncident("adm-1")
	}

	incident, err := f.createIncident(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := f.service.UpdateIncident(context.Background(), TechnicianActor("t-a"), incident.ID, IncidentUpdateInput{
		AssignTeamAdmin: true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.HandlerID == nil || *updated.HandlerID != "adm-1" {
		t.Fatalf("expected admin handler, got %v", updated.HandlerID)
	}
}

func TestUpdateTeamAdminMissingIsError(t *testing.T) {
	f := newEngineFixture()
	f.addTechnician("t-a", "Alice", domain.TierOne, []string{fixtureSubName}, true, 1)

	incident, err := f.createIncident(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.service.UpdateIncident(context.Background(), TechnicianActor("t-a"), incident.ID, IncidentUpdateInput{
		AssignTeamAdmin: true,
	})
	assertValidation(t, err, "no active team admin for team")
}

func TestUpdateTeamAdminRequiresHandler(t *testing.T) {
	f := newEngineFixture()
	f.addAdmin("adm-1", "Head", true)
	incident := f.addPendingIncident(fixtureItemName, domain.IncidentStatusPending)

	_, err := f.service.UpdateIncident(context.Background(), SystemActorRef(), incident.ID, IncidentUpdateInput{
		AssignTeamAdmin: true,
	})
	assertValidation(t, err, "no current handler to escalate from")
}

func TestManualAssignmentValidation(t *testing.T) {
	f := newEngineFixture()
	f.addTechnician("t-a", "Alice", domain.TierOne, []string{fixtureSubName}, true, 1)
	f.addTechnician("t-idle", "Iris", domain.TierOne, []string{fixtureSubName}, false, 2)
	f.addTechnician("t-noskill", "Nora", domain.TierOne, []string{"Printing"}, true, 3)
	f.addTechnician("t-busy", "Bert", domain.TierOne, []string{fixtureSubName}, true, 4)
	for i := 0; i < 3; i++ {
		f.addActiveIncident("t-busy")
	}

	incident, err := f.createIncident(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cases := []struct {
		handler string
		message string
	}{
		{"t-idle", "technician is not active"},
		{"t-noskill", "technician is not skilled for category"},
		{"t-busy", "technician is at capacity"},
	}
	for _, tc := range cases {
		handler := tc.handler
		_, err := f.service.UpdateIncident(context.Background(), TechnicianActor("t-a"), incident.ID, IncidentUpdateInput{
			HandlerID: &handler,
		})
		assertValidation(t, err, tc.message)
	}

	missing := "t-ghost"
	_, err = f.service.UpdateIncident(context.Background(), TechnicianActor("t-a"), incident.ID, IncidentUpdateInput{
		HandlerID: &missing,
	})
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND for unknown handler, got %v", err)
	}
}

func TestManualAssignmentResolvesPending(t *testing.T) {
	f := newEngineFixture()
	incident := f.addPendingIncident(fixtureItemName, domain.IncidentStatusPending)
	f.addTechnician("t-a", "Alice", domain.TierOne, []string{fixtureSubName}, true, 1)

	handler := "t-a"
	updated, err := f.service.UpdateIncident(context.Background(), SystemActorRef(), incident.ID, IncidentUpdateInput{
		HandlerID: &handler,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.IncidentStatusOpen {
		t.Fatalf("manual assignment should reopen a pending incident, got %s", updated.Status)
	}
}

func TestCloseIncident(t *testing.T) {
	f := newEngineFixture()
	f.addTechnician("t-a", "Alice", domain.TierOne, []string{fixtureSubName}, true, 1)

	incident, err := f.createIncident(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	closed := domain.IncidentStatusClosed
	updated, err := f.service.UpdateIncident(context.Background(), UserActor("user-1"), incident.ID, IncidentUpdateInput{
		Status: &closed,
	})
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if updated.Status != domain.IncidentStatusClosed || updated.ClosedAt == nil {
		t.Fatalf("expected closed with timestamp, got %+v", updated)
	}
	if len(f.dispatcher.byType(events.EventIncidentClosed)) != 1 {
		t.Fatalf("expected a closed event")
	}

	// A closed incident accepts no further status edits.
	open := domain.IncidentStatusOpen
	if _, err := f.service.UpdateIncident(context.Background(), UserActor("user-1"), incident.ID, IncidentUpdateInput{
		Status: &open,
	}); err == nil {
		t.Fatalf("reopening a closed incident should fail")
	}
}

func TestPendingStatusRejectedFromCallers(t *testing.T) {
	f := newEngineFixture()
	f.addTechnician("t-a", "Alice", domain.TierOne, []string{fixtureSubName}, true, 1)

	incident, err := f.createIncident(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	pending := domain.IncidentStatusPending
	_, err = f.service.UpdateIncident(context.Background(), TechnicianActor("t-a"), incident.ID, IncidentUpdateInput{
		Status: &pending,
	})
	assertValidation(t, err, "pending statuses are set by the routing engine")
}

func TestHistoryRecordedOnEveryUpdate(t *testing.T) {
	f := newEngineFixture()
	f.addTechnician("t-a", "Alice", domain.TierOne, []string{fixtureSubName}, true, 1)

	incident, err := f.createIncident(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	hold := domain.IncidentStatusHold
	if _, err := f.service.UpdateIncident(context.Background(), TechnicianActor("t-a"), incident.ID, IncidentUpdateInput{
		Status:  &hold,
		Comment: "waiting on parts",
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	entries := f.history.forIncident(incident.ID)
	if len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(entries))
	}
	last := entries[len(entries)-1]
	if last.Status != domain.IncidentStatusHold || last.Comment != "waiting on parts" {
		t.Fatalf("unexpected last entry: %+v", last)
	}
	if last.ActorType != domain.ActorTypeTechnician {
		t.Fatalf("expected technician actor, got %s", last.ActorType)
	}
}
