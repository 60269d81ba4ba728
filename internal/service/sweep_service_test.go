package service

import (
	"context"
	"testing"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/events"
)

func TestSweepAssignsOldestFirst(t *testing.T) {
	f := newEngineFixture()
	first := f.addPendingIncident(fixtureItemName, domain.IncidentStatusPending)
	second := f.addPendingIncident(fixtureItemName, domain.IncidentStatusPending)
	third := f.addPendingIncident(fixtureItemName, domain.IncidentStatusPending)
	fourth := f.addPendingIncident(fixtureItemName, domain.IncidentStatusPending)
	f.addTechnician("t-a", "Alice", domain.TierOne, []string{fixtureSubName}, true, 1)

	assigned, err := f.sweeper.RunPendingSweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if assigned != 3 {
		t.Fatalf("one technician at ceiling 3 should take 3 incidents, got %d", assigned)
	}

	for _, id := range []string{first.ID, second.ID, third.ID} {
		incident, _ := f.incidents.GetByID(context.Background(), id)
		if incident.Status != domain.IncidentStatusOpen || incident.HandlerID == nil {
			t.Fatalf("oldest incidents should be assigned, got %+v", incident)
		}
	}
	leftover, _ := f.incidents.GetByID(context.Background(), fourth.ID)
	if leftover.Status != domain.IncidentStatusPending {
		t.Fatalf("newest incident should remain queued, got %s", leftover.Status)
	}

	entries := f.history.forIncident(first.ID)
	if len(entries) != 1 || entries[0].ActorType != domain.ActorTypeSystem {
		t.Fatalf("sweep assignments must be system-authored: %+v", entries)
	}
	if entries[0].Comment != "assigned from pending queue" {
		t.Fatalf("unexpected comment %q", entries[0].Comment)
	}
}

func TestSweepIsIdempotentWhenNothingFits(t *testing.T) {
	f := newEngineFixture()
	incident := f.addPendingIncident(fixtureItemName, domain.IncidentStatusPending)

	for i := 0; i < 2; i++ {
		assigned, err := f.sweeper.RunPendingSweep(context.Background())
		if err != nil {
			t.Fatalf("sweep %d: %v", i, err)
		}
		if assigned != 0 {
			t.Fatalf("no technicians exist; expected 0 assignments, got %d", assigned)
		}
	}

	got, _ := f.incidents.GetByID(context.Background(), incident.ID)
	if got.Status != domain.IncidentStatusPending {
		t.Fatalf("repeated sweeps must not change a stuck incident, got %s", got.Status)
	}
	if len(f.history.forIncident(incident.ID)) != 0 {
		t.Fatalf("no history entries expected for a no-op sweep")
	}
}

func TestSweepHandlesTier2Pool(t *testing.T) {
	f := newEngineFixture()
	incident := f.addPendingIncident(fixtureItemName, domain.IncidentStatusPendingTier2)
	f.addTechnician("t-2", "Bruno", domain.TierTwo, []string{fixtureTeamName}, true, 1)

	assigned, err := f.sweeper.RunPendingSweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if assigned != 1 {
		t.Fatalf("expected 1 tier2 assignment, got %d", assigned)
	}

	got, _ := f.incidents.GetByID(context.Background(), incident.ID)
	if got.Status != domain.IncidentStatusOpen || got.HandlerID == nil || *got.HandlerID != "t-2" {
		t.Fatalf("tier2 pending incident should land on t-2, got %+v", got)
	}
	if len(f.dispatcher.byType(events.EventIncidentAssigned)) != 1 {
		t.Fatalf("expected an assigned event")
	}
}

func TestSweepSkipsUnresolvableCategory(t *testing.T) {
	f := newEngineFixture()
	broken := f.addPendingIncident("Retired Label", domain.IncidentStatusPending)
	healthy := f.addPendingIncident(fixtureItemName, domain.IncidentStatusPending)
	f.addTechnician("t-a", "Alice", domain.TierOne, []string{fixtureSubName}, true, 1)

	assigned, err := f.sweeper.RunPendingSweep(context.Background())
	if err != nil {
		t.Fatalf("a broken category must not abort the sweep: %v", err)
	}
	if assigned != 1 {
		t.Fatalf("expected 1 assignment, got %d", assigned)
	}

	stuck, _ := f.incidents.GetByID(context.Background(), broken.ID)
	if stuck.Status != domain.IncidentStatusPending {
		t.Fatalf("unresolvable incident should stay queued, got %s", stuck.Status)
	}
	ok, _ := f.incidents.GetByID(context.Background(), healthy.ID)
	if ok.Status != domain.IncidentStatusOpen {
		t.Fatalf("later incident should still be processed, got %s", ok.Status)
	}
}

func TestBackfillPrefersOwnTeam(t *testing.T) {
	f := newEngineFixture()
	f.addCategoryPath("team-fac", "Facilities", "Electrical", "Power Outage")

	// Cross-team incident is older, but the technician's own team wins.
	crossTeam := f.addPendingIncident("Power Outage", domain.IncidentStatusPending)
	ownTeam := f.addPendingIncident(fixtureItemName, domain.IncidentStatusPending)

	tech := f.addTechnician("t-a", "Alice", domain.TierOne, []string{fixtureSubName, "Electrical"}, true, 1)
	// Two occupied slots leave room for exactly one backfill.
	f.addActiveIncident(tech.ID)
	f.addActiveIncident(tech.ID)

	if err := f.sweeper.BackfillTechnician(context.Background(), tech.ID); err != nil {
		t.Fatalf("backfill: %v", err)
	}

	own, _ := f.incidents.GetByID(context.Background(), ownTeam.ID)
	if own.Status != domain.IncidentStatusOpen || own.HandlerID == nil || *own.HandlerID != tech.ID {
		t.Fatalf("own-team incident should be taken first, got %+v", own)
	}
	cross, _ := f.incidents.GetByID(context.Background(), crossTeam.ID)
	if cross.Status != domain.IncidentStatusPending {
		t.Fatalf("cross-team incident should wait, got %s", cross.Status)
	}
}

func TestBackfillFallsBackCrossTeam(t *testing.T) {
	f := newEngineFixture()
	f.addCategoryPath("team-fac", "Facilities", "Electrical", "Power Outage")
	crossTeam := f.addPendingIncident("Power Outage", domain.IncidentStatusPending)

	tech := f.addTechnician("t-a", "Alice", domain.TierOne, []string{fixtureSubName, "Electrical"}, true, 1)

	if err := f.sweeper.BackfillTechnician(context.Background(), tech.ID); err != nil {
		t.Fatalf("backfill: %v", err)
	}

	cross, _ := f.incidents.GetByID(context.Background(), crossTeam.ID)
	if cross.Status != domain.IncidentStatusOpen || cross.HandlerID == nil || *cross.HandlerID != tech.ID {
		t.Fatalf("cross-team incident should be taken when own team is empty, got %+v", cross)
	}
}

func TestBackfillSkipsInactiveOrSaturated(t *testing.T) {
	f := newEngineFixture()
	pending := f.addPendingIncident(fixtureItemName, domain.IncidentStatusPending)

	inactive := f.addTechnician("t-off", "Olga", domain.TierOne, []string{fixtureSubName}, false, 1)
	if err := f.sweeper.BackfillTechnician(context.Background(), inactive.ID); err != nil {
		t.Fatalf("backfill inactive: %v", err)
	}

	busy := f.addTechnician("t-busy", "Bert", domain.TierOne, []string{fixtureSubName}, true, 2)
	for i := 0; i < 3; i++ {
		f.addActiveIncident(busy.ID)
	}
	if err := f.sweeper.BackfillTechnician(context.Background(), busy.ID); err != nil {
		t.Fatalf("backfill saturated: %v", err)
	}

	got, _ := f.incidents.GetByID(context.Background(), pending.ID)
	if got.Status != domain.IncidentStatusPending {
		t.Fatalf("neither technician should take the incident, got %s", got.Status)
	}
}

func TestBackfillUsesTier2PoolForTier2Technician(t *testing.T) {
	f := newEngineFixture()
	tier2Pending := f.addPendingIncident(fixtureItemName, domain.IncidentStatusPendingTier2)
	regularPending := f.addPendingIncident(fixtureItemName, domain.IncidentStatusPending)

	tech := f.addTechnician("t-2", "Bruno", domain.TierTwo, []string{fixtureTeamName}, true, 1)

	if err := f.sweeper.BackfillTechnician(context.Background(), tech.ID); err != nil {
		t.Fatalf("backfill: %v", err)
	}

	escalated, _ := f.incidents.GetByID(context.Background(), tier2Pending.ID)
	if escalated.Status != domain.IncidentStatusOpen {
		t.Fatalf("tier2 technician should drain the tier2 pool, got %s", escalated.Status)
	}
	regular, _ := f.incidents.GetByID(context.Background(), regularPending.ID)
	if regular.Status != domain.IncidentStatusPending {
		t.Fatalf("regular pool belongs to tier1, got %s", regular.Status)
	}
}
