package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/repository"
)

// In-memory fakes backing the service tests. Each fake honors the same
// contract as the pgx repositories, including pgx.ErrNoRows on misses.

type fakeIncidentRepo struct {
	mu        sync.Mutex
	incidents map[string]*domain.Incident
	seq       int
}

func newFakeIncidentRepo() *fakeIncidentRepo {
	return &fakeIncidentRepo{incidents: make(map[string]*domain.Incident)}
}

var fixtureEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func (r *fakeIncidentRepo) nextStamp() time.Time {
	r.seq++
	return fixtureEpoch.Add(time.Duration(r.seq) * time.Second)
}

func (r *fakeIncidentRepo) Create(_ context.Context, incident *domain.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp := r.nextStamp()
	incident.ID = fmt.Sprintf("inc-%d", r.seq)
	incident.CreatedAt = stamp
	incident.UpdatedAt = stamp
	copied := *incident
	r.incidents[incident.ID] = &copied
	return nil
}

func (r *fakeIncidentRepo) Update(_ context.Context, incident *domain.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.incidents[incident.ID]; !ok {
		return pgx.ErrNoRows
	}
	incident.UpdatedAt = r.nextStamp()
	copied := *incident
	r.incidents[incident.ID] = &copied
	return nil
}

func (r *fakeIncidentRepo) GetByID(_ context.Context, id string) (*domain.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	incident, ok := r.incidents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *incident
	return &copied, nil
}

func (r *fakeIncidentRepo) GetByNumber(_ context.Context, number string) (*domain.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, incident := range r.incidents {
		if incident.Number == number {
			copied := *incident
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeIncidentRepo) ListWithFilter(_ context.Context, filter repository.IncidentFilter) ([]domain.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Incident
	for _, incident := range r.incidents {
		if filter.InformantID != nil && incident.InformantID != *filter.InformantID {
			continue
		}
		if filter.HandlerID != nil && (incident.HandlerID == nil || *incident.HandlerID != *filter.HandlerID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, incident.Status) {
			continue
		}
		result = append(result, *incident)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt.After(result[j].UpdatedAt) })
	return result, nil
}

func (r *fakeIncidentRepo) ListPending(_ context.Context, status domain.IncidentStatus) ([]domain.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Incident
	for _, incident := range r.incidents {
		if incident.Status == status {
			result = append(result, *incident)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt.Before(result[j].UpdatedAt) })
	return result, nil
}

func (r *fakeIncidentRepo) CountActiveByHandler(_ context.Context, handlerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, incident := range r.incidents {
		if incident.HandlerID != nil && *incident.HandlerID == handlerID && incident.Status.IsActive() {
			count++
		}
	}
	return count, nil
}

func containsStatus(statuses []domain.IncidentStatus, status domain.IncidentStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type fakeTechnicianRepo struct {
	mu          sync.Mutex
	technicians map[string]*domain.Technician
	order       []string
}

func newFakeTechnicianRepo() *fakeTechnicianRepo {
	return &fakeTechnicianRepo{technicians: make(map[string]*domain.Technician)}
}

func (r *fakeTechnicianRepo) Create(_ context.Context, tech *domain.Technician) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tech.ID == "" {
		tech.ID = fmt.Sprintf("tech-%d", len(r.order)+1)
	}
	copied := *tech
	r.technicians[tech.ID] = &copied
	r.order = append(r.order, tech.ID)
	return nil
}

func (r *fakeTechnicianRepo) Update(_ context.Context, tech *domain.Technician) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.technicians[tech.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *tech
	r.technicians[tech.ID] = &copied
	return nil
}

func (r *fakeTechnicianRepo) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tech, ok := r.technicians[id]
	if !ok {
		return pgx.ErrNoRows
	}
	tech.Active = active
	return nil
}

func (r *fakeTechnicianRepo) GetByID(_ context.Context, id string) (*domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tech, ok := r.technicians[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *tech
	return &copied, nil
}

func (r *fakeTechnicianRepo) GetByEmail(_ context.Context, email string) (*domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tech := range r.technicians {
		if tech.Email == email {
			copied := *tech
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTechnicianRepo) List(_ context.Context, filter repository.TechnicianFilter) ([]domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Technician
	for _, id := range r.order {
		tech := r.technicians[id]
		switch {
		case filter.TeamID != nil && filter.TeamName != nil:
			if tech.TeamID != *filter.TeamID && tech.TeamName != *filter.TeamName {
				continue
			}
		case filter.TeamID != nil:
			if tech.TeamID != *filter.TeamID {
				continue
			}
		case filter.TeamName != nil:
			if tech.TeamName != *filter.TeamName {
				continue
			}
		}
		if filter.Tier != nil && domain.NormalizeTier(string(tech.Tier)) != domain.NormalizeTier(string(*filter.Tier)) {
			continue
		}
		if filter.Active != nil && tech.Active != *filter.Active {
			continue
		}
		result = append(result, *tech)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].SortOrder < result[j].SortOrder })
	return result, nil
}

type fakeTeamAdminRepo struct {
	mu     sync.Mutex
	admins map[string]*domain.TeamAdmin
	order  []string
}

func newFakeTeamAdminRepo() *fakeTeamAdminRepo {
	return &fakeTeamAdminRepo{admins: make(map[string]*domain.TeamAdmin)}
}

func (r *fakeTeamAdminRepo) Create(_ context.Context, admin *domain.TeamAdmin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if admin.ID == "" {
		admin.ID = fmt.Sprintf("admin-%d", len(r.order)+1)
	}
	copied := *admin
	r.admins[admin.ID] = &copied
	r.order = append(r.order, admin.ID)
	return nil
}

func (r *fakeTeamAdminRepo) Update(_ context.Context, admin *domain.TeamAdmin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.admins[admin.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *admin
	r.admins[admin.ID] = &copied
	return nil
}

func (r *fakeTeamAdminRepo) GetByID(_ context.Context, id string) (*domain.TeamAdmin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin, ok := r.admins[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *admin
	return &copied, nil
}

func (r *fakeTeamAdminRepo) GetByEmail(_ context.Context, email string) (*domain.TeamAdmin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, admin := range r.admins {
		if admin.Email == email {
			copied := *admin
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTeamAdminRepo) List(_ context.Context, filter repository.TeamAdminFilter) ([]domain.TeamAdmin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TeamAdmin
	for _, id := range r.order {
		admin := r.admins[id]
		switch {
		case filter.TeamID != nil && filter.TeamName != nil:
			if admin.TeamID != *filter.TeamID && admin.TeamName != *filter.TeamName {
				continue
			}
		case filter.TeamID != nil:
			if admin.TeamID != *filter.TeamID {
				continue
			}
		case filter.TeamName != nil:
			if admin.TeamName != *filter.TeamName {
				continue
			}
		}
		if filter.Active != nil && admin.Active != *filter.Active {
			continue
		}
		result = append(result, *admin)
		if filter.Limit > 0 && len(result) >= filter.Limit {
			break
		}
	}
	return result, nil
}

type fakeCategoryRepo struct {
	mains map[string]*domain.MainCategory
	subs  map[string]*domain.SubCategory
	items map[string]*domain.CategoryItem
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{
		mains: make(map[string]*domain.MainCategory),
		subs:  make(map[string]*domain.SubCategory),
		items: make(map[string]*domain.CategoryItem),
	}
}

func (r *fakeCategoryRepo) CreateMain(_ context.Context, main *domain.MainCategory) error {
	if main.ID == "" {
		main.ID = fmt.Sprintf("main-%d", len(r.mains)+1)
	}
	copied := *main
	r.mains[main.ID] = &copied
	return nil
}

func (r *fakeCategoryRepo) CreateSub(_ context.Context, sub *domain.SubCategory) error {
	if sub.ID == "" {
		sub.ID = fmt.Sprintf("sub-%d", len(r.subs)+1)
	}
	copied := *sub
	r.subs[sub.ID] = &copied
	return nil
}

func (r *fakeCategoryRepo) CreateItem(_ context.Context, item *domain.CategoryItem) error {
	if item.ID == "" {
		item.ID = fmt.Sprintf("item-%d", len(r.items)+1)
	}
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeCategoryRepo) GetItemByName(_ context.Context, name string) (*domain.CategoryItem, error) {
	for _, item := range r.items {
		if item.Name == name {
			copied := *item
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeCategoryRepo) GetSubByID(_ context.Context, id string) (*domain.SubCategory, error) {
	sub, ok := r.subs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *sub
	return &copied, nil
}

func (r *fakeCategoryRepo) GetMainByID(_ context.Context, id string) (*domain.MainCategory, error) {
	main, ok := r.mains[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *main
	return &copied, nil
}

func (r *fakeCategoryRepo) ListMain(_ context.Context) ([]domain.MainCategory, error) {
	var result []domain.MainCategory
	for _, main := range r.mains {
		result = append(result, *main)
	}
	return result, nil
}

func (r *fakeCategoryRepo) ListSubByMain(_ context.Context, mainID string) ([]domain.SubCategory, error) {
	var result []domain.SubCategory
	for _, sub := range r.subs {
		if sub.MainCategoryID == mainID {
			result = append(result, *sub)
		}
	}
	return result, nil
}

func (r *fakeCategoryRepo) ListItemsBySub(_ context.Context, subID string) ([]domain.CategoryItem, error) {
	var result []domain.CategoryItem
	for _, item := range r.items {
		if item.SubCategoryID == subID {
			result = append(result, *item)
		}
	}
	return result, nil
}

type fakeTeamRepo struct {
	teams map[string]*domain.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[string]*domain.Team)}
}

func (r *fakeTeamRepo) Create(_ context.Context, team *domain.Team) error {
	if team.ID == "" {
		team.ID = fmt.Sprintf("team-%d", len(r.teams)+1)
	}
	copied := *team
	r.teams[team.ID] = &copied
	return nil
}

func (r *fakeTeamRepo) Update(_ context.Context, team *domain.Team) error {
	if _, ok := r.teams[team.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *team
	r.teams[team.ID] = &copied
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id string) (*domain.Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *team
	return &copied, nil
}

func (r *fakeTeamRepo) GetByName(_ context.Context, name string) (*domain.Team, error) {
	for _, team := range r.teams {
		if team.Name == name {
			copied := *team
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTeamRepo) ListActive(_ context.Context) ([]domain.Team, error) {
	var result []domain.Team
	for _, team := range r.teams {
		if team.IsActive {
			result = append(result, *team)
		}
	}
	return result, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.IncidentHistory
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{}
}

func (r *fakeHistoryRepo) Create(_ context.Context, entry *domain.IncidentHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = fmt.Sprintf("hist-%d", len(r.entries)+1)
	entry.CreatedAt = fixtureEpoch.Add(time.Duration(len(r.entries)) * time.Second)
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByIncident(_ context.Context, incidentID string) ([]domain.IncidentHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.IncidentHistory
	for _, entry := range r.entries {
		if entry.IncidentID == incidentID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (r *fakeHistoryRepo) forIncident(incidentID string) []domain.IncidentHistory {
	entries, _ := r.ListByIncident(context.Background(), incidentID)
	return entries
}

type fakeLocationRepo struct {
	locations map[string]*domain.Location
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{locations: make(map[string]*domain.Location)}
}

func (r *fakeLocationRepo) Create(_ context.Context, location *domain.Location) error {
	if location.ID == "" {
		location.ID = fmt.Sprintf("loc-%d", len(r.locations)+1)
	}
	copied := *location
	r.locations[location.ID] = &copied
	return nil
}

func (r *fakeLocationRepo) Update(_ context.Context, location *domain.Location) error {
	if _, ok := r.locations[location.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *location
	r.locations[location.ID] = &copied
	return nil
}

func (r *fakeLocationRepo) GetByID(_ context.Context, id string) (*domain.Location, error) {
	location, ok := r.locations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *location
	return &copied, nil
}

func (r *fakeLocationRepo) ListActive(_ context.Context) ([]domain.Location, error) {
	var result []domain.Location
	for _, location := range r.locations {
		if location.IsActive {
			result = append(result, *location)
		}
	}
	return result, nil
}

type fakeAttachmentRepo struct {
	mu          sync.Mutex
	attachments []domain.AttachmentReference
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{}
}

func (r *fakeAttachmentRepo) Create(_ context.Context, attachment *domain.AttachmentReference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	attachment.ID = fmt.Sprintf("att-%d", len(r.attachments)+1)
	r.attachments = append(r.attachments, *attachment)
	return nil
}

func (r *fakeAttachmentRepo) ListByIncident(_ context.Context, incidentID string) ([]domain.AttachmentReference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.AttachmentReference
	for _, attachment := range r.attachments {
		if attachment.IncidentID == incidentID {
			result = append(result, attachment)
		}
	}
	return result, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

// engineFixture wires the routing stack over the fakes with a seeded
// category tree: team "IT Team" owning main category "IT Team", sub-category
// "Network Issues" and leaf item "Network Connection".
type engineFixture struct {
	incidents   *fakeIncidentRepo
	technicians *fakeTechnicianRepo
	admins      *fakeTeamAdminRepo
	categories  *fakeCategoryRepo
	teams       *fakeTeamRepo
	history     *fakeHistoryRepo
	locations   *fakeLocationRepo
	attachments *fakeAttachmentRepo
	dispatcher  *recordingDispatcher
	assignment  *AssignmentService
	sweeper     *SweepService
	service     *IncidentService
}

const (
	fixtureTeamID   = "team-it"
	fixtureTeamName = "IT Team"
	fixtureSubName  = "Network Issues"
	fixtureItemName = "Network Connection"
)

func newEngineFixture() *engineFixture {
	f := &engineFixture{
		incidents:   newFakeIncidentRepo(),
		technicians: newFakeTechnicianRepo(),
		admins:      newFakeTeamAdminRepo(),
		categories:  newFakeCategoryRepo(),
		teams:       newFakeTeamRepo(),
		history:     newFakeHistoryRepo(),
		locations:   newFakeLocationRepo(),
		attachments: newFakeAttachmentRepo(),
		dispatcher:  &recordingDispatcher{},
	}

	f.teams.teams[fixtureTeamID] = &domain.Team{ID: fixtureTeamID, Name: fixtureTeamName, IsActive: true}
	main := &domain.MainCategory{ID: "main-it", Name: fixtureTeamName, TeamID: fixtureTeamID}
	f.categories.mains[main.ID] = main
	sub := &domain.SubCategory{ID: "sub-net", MainCategoryID: main.ID, Name: fixtureSubName}
	f.categories.subs[sub.ID] = sub
	item := &domain.CategoryItem{ID: "item-net", SubCategoryID: sub.ID, Name: fixtureItemName}
	f.categories.items[item.ID] = item

	gate := NewWorkloadGate(f.incidents, DefaultMaxActiveAssignments)
	resolver := NewCategoryResolver(f.categories, f.teams)
	rotation := NewRotationSelector(NewMemoryRotationStore(), gate)
	f.assignment = NewAssignmentService(AssignmentDependencies{
		TechnicianRepo: f.technicians,
		TeamAdminRepo:  f.admins,
		Resolver:       resolver,
		Rotation:       rotation,
		Gate:           gate,
	})
	f.sweeper = NewSweepService(SweepDependencies{
		IncidentRepo:   f.incidents,
		TechnicianRepo: f.technicians,
		HistoryRepo:    f.history,
		Assignment:     f.assignment,
		Dispatcher:     f.dispatcher,
	})
	// The incident service under test runs without the detached backfill
	// hooks so assertions see only synchronous effects.
	f.service = NewIncidentService(IncidentDependencies{
		IncidentRepo:   f.incidents,
		TechnicianRepo: f.technicians,
		LocationRepo:   f.locations,
		AttachmentRepo: f.attachments,
		HistoryRepo:    f.history,
		Assignment:     f.assignment,
		Dispatcher:     f.dispatcher,
	})
	return f
}

func (f *engineFixture) addTechnician(id, name string, tier domain.TechnicianTier, skills []string, active bool, sortOrder int) *domain.Technician {
	tech := &domain.Technician{
		ID:        id,
		Name:      name,
		Email:     strings.ToLower(name) + "@example.com",
		TeamID:    fixtureTeamID,
		TeamName:  fixtureTeamName,
		Tier:      tier,
		Skills:    skills,
		Active:    active,
		SortOrder: sortOrder,
	}
	_ = f.technicians.Create(context.Background(), tech)
	return tech
}

func (f *engineFixture) addAdmin(id, name string, active bool) *domain.TeamAdmin {
	admin := &domain.TeamAdmin{
		ID:       id,
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		TeamID:   fixtureTeamID,
		TeamName: fixtureTeamName,
		Active:   active,
	}
	_ = f.admins.Create(context.Background(), admin)
	return admin
}

// addCategoryPath seeds a second routing path for cross-team scenarios.
func (f *engineFixture) addCategoryPath(teamID, teamName, subName, itemName string) {
	if _, ok := f.teams.teams[teamID]; !ok {
		f.teams.teams[teamID] = &domain.Team{ID: teamID, Name: teamName, IsActive: true}
	}
	mainID := "main-" + teamID
	f.categories.mains[mainID] = &domain.MainCategory{ID: mainID, Name: teamName, TeamID: teamID}
	subID := "sub-" + subName
	f.categories.subs[subID] = &domain.SubCategory{ID: subID, MainCategoryID: mainID, Name: subName}
	itemID := "item-" + itemName
	f.categories.items[itemID] = &domain.CategoryItem{ID: itemID, SubCategoryID: subID, Name: itemName}
}

// addActiveIncident seeds a workload-occupying incident for a handler.
func (f *engineFixture) addActiveIncident(handlerID string) *domain.Incident {
	incident := &domain.Incident{
		Number:      fmt.Sprintf("INC-SEED%d", f.incidents.seq+1),
		Category:    fixtureItemName,
		Title:       "seeded load",
		Status:      domain.IncidentStatusOpen,
		Priority:    domain.IncidentPriorityMedium,
		HandlerID:   &handlerID,
		InformantID: "user-1",
	}
	_ = f.incidents.Create(context.Background(), incident)
	return incident
}

// addPendingIncident seeds an unassigned incident awaiting the sweep.
func (f *engineFixture) addPendingIncident(category string, status domain.IncidentStatus) *domain.Incident {
	incident := &domain.Incident{
		Number:      fmt.Sprintf("INC-PEND%d", f.incidents.seq+1),
		Category:    category,
		Title:       "queued",
		Status:      status,
		Priority:    domain.IncidentPriorityMedium,
		InformantID: "user-1",
	}
	_ = f.incidents.Create(context.Background(), incident)
	return incident
}

func (f *engineFixture) createIncident(ctx context.Context) (*domain.Incident, error) {
	return f.service.CreateIncident(ctx, "user-1", IncidentCreateInput{
		Category: fixtureItemName,
		Title:    "cannot reach network share",
	})
}
