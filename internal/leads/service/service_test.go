package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	pipelinedomain "leadflow_backend/internal/pipeline/domain"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	leads    map[uuid.UUID]repository.Lead
	order    []uuid.UUID
	actions  map[uuid.UUID][]repository.Action
	archived []repository.ArchivedLead
	now      time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		leads:   map[uuid.UUID]repository.Lead{},
		actions: map[uuid.UUID][]repository.Action{},
		now:     time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRepo) tick() time.Time {
	f.now = f.now.Add(time.Minute)
	return f.now
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	lead := repository.Lead{
		ID:          uuid.New(),
		Name:        params.Name,
		Email:       params.Email,
		Phone:       params.Phone,
		Company:     params.Company,
		Stage:       params.Stage,
		AssignedTo:  params.AssignedTo,
		Notes:       params.Notes,
		CreatedAt:   f.tick(),
		LastContact: f.now,
		UpdatedAt:   f.now,
	}
	f.leads[lead.ID] = lead
	f.order = append(f.order, lead.ID)
	return lead, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeRepo) Update(_ context.Context, id uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&lead.Name, params.Name)
	apply(&lead.Email, params.Email)
	apply(&lead.Phone, params.Phone)
	apply(&lead.Company, params.Company)
	apply(&lead.Stage, params.Stage)
	apply(&lead.AssignedTo, params.AssignedTo)
	apply(&lead.Notes, params.Notes)
	lead.UpdatedAt = f.tick()
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeRepo) List(_ context.Context, _ repository.ListLeadsParams) ([]repository.Lead, int, error) {
	all := f.all()
	return all, len(all), nil
}

func (f *fakeRepo) ListAll(_ context.Context) ([]repository.Lead, error) {
	return f.all(), nil
}

func (f *fakeRepo) all() []repository.Lead {
	leads := make([]repository.Lead, 0, len(f.order))
	for _, id := range f.order {
		if lead, ok := f.leads[id]; ok {
			leads = append(leads, lead)
		}
	}
	return leads
}

func (f *fakeRepo) DedupPool(_ context.Context) ([]domain.Contact, error) {
	pool := make([]domain.Contact, 0, len(f.order))
	for _, lead := range f.all() {
		pool = append(pool, domain.Contact{
			ID:        lead.ID,
			Name:      lead.Name,
			Phone:     lead.Phone,
			Email:     lead.Email,
			CreatedAt: lead.CreatedAt,
		})
	}
	return pool, nil
}

func (f *fakeRepo) AppendNote(_ context.Context, id uuid.UUID, note string) error {
	lead, ok := f.leads[id]
	if !ok {
		return repository.ErrNotFound
	}
	if lead.Notes == "" {
		lead.Notes = note
	} else {
		lead.Notes += "\n" + note
	}
	f.leads[id] = lead
	return nil
}

func (f *fakeRepo) TransferOwnership(_ context.Context, id uuid.UUID, assignee, note string) error {
	lead, ok := f.leads[id]
	if !ok {
		return repository.ErrNotFound
	}
	lead.AssignedTo = assignee
	f.leads[id] = lead
	return f.AppendNote(context.Background(), id, note)
}

func (f *fakeRepo) Archive(_ context.Context, id uuid.UUID, reason string) (bool, error) {
	lead, ok := f.leads[id]
	if !ok {
		return false, nil
	}
	delete(f.leads, id)
	f.archived = append(f.archived, repository.ArchivedLead{
		ID: lead.ID, Name: lead.Name, Reason: reason,
		CreatedAt: lead.CreatedAt, DeletedAt: f.tick(),
	})
	return true, nil
}

func (f *fakeRepo) ListArchived(_ context.Context) ([]repository.ArchivedLead, error) {
	return f.archived, nil
}

func (f *fakeRepo) RecordAction(_ context.Context, params repository.RecordActionParams) (repository.Action, error) {
	lead, ok := f.leads[params.LeadID]
	if !ok {
		return repository.Action{}, repository.ErrNotFound
	}
	action := repository.Action{
		ID:         uuid.New(),
		LeadID:     params.LeadID,
		NextAction: params.NextAction,
		Notes:      params.Notes,
		StageSet:   params.StageSet,
		CreatedAt:  f.tick(),
	}
	f.actions[params.LeadID] = append(f.actions[params.LeadID], action)
	if params.StageSet != "" {
		lead.Stage = params.StageSet
	}
	lead.LastContact = f.now
	f.leads[params.LeadID] = lead
	return action, nil
}

func (f *fakeRepo) ListActions(_ context.Context, leadID uuid.UUID) ([]repository.Action, error) {
	return f.actions[leadID], nil
}

type fakeStages struct {
	defs []pipelinedomain.StageDefinition
}

func (f *fakeStages) Definitions(_ context.Context) ([]pipelinedomain.StageDefinition, error) {
	return f.defs, nil
}

func (f *fakeStages) ValidateStage(_ context.Context, stage string) error {
	return nil
}

func newTestService(repo *fakeRepo, defs []pipelinedomain.StageDefinition) *Service {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	return New(repo, &fakeStages{defs: defs}, "EG", bus, log)
}

func TestCreateStoresNormalizedPhone(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)

	resp, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		Name:  "Ahmed",
		Phone: "0100 111 2222",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if resp.Lead.Phone != "+201001112222" {
		t.Errorf("stored phone = %q, want E.164 +201001112222", resp.Lead.Phone)
	}
	if resp.Duplicate != nil {
		t.Error("first lead must not be flagged as duplicate")
	}
}

func TestCreateDuplicateForcesDuplicateStage(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, transport.CreateLeadRequest{
		Name:  "Ahmed",
		Phone: "+20 100-111-2222",
		Stage: "New",
	})
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}

	second, err := svc.Create(ctx, transport.CreateLeadRequest{
		Name:  "Ahmad",
		Phone: "0100 111 2222",
		Stage: "New",
	})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	if second.Lead.Stage != pipelinedomain.StageDuplicate {
		t.Errorf("stage = %q, want %q", second.Lead.Stage, pipelinedomain.StageDuplicate)
	}
	if second.Duplicate == nil {
		t.Fatal("expected duplicate info on the response")
	}
	if second.Duplicate.OriginalID != first.Lead.ID {
		t.Errorf("original = %s, want %s", second.Duplicate.OriginalID, first.Lead.ID)
	}
	if stored := repo.leads[second.Lead.ID]; stored.Stage != pipelinedomain.StageDuplicate {
		t.Errorf("persisted stage = %q, want %q", stored.Stage, pipelinedomain.StageDuplicate)
	}
}

func TestCheckDuplicateExcludesSelf(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, transport.CreateLeadRequest{Name: "Ahmed", Phone: "+201001112222"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	resp, err := svc.CheckDuplicate(ctx, transport.CheckDuplicateRequest{
		Phone:     "+201001112222",
		ExcludeID: created.Lead.ID,
	})
	if err != nil {
		t.Fatalf("CheckDuplicate: %v", err)
	}
	if resp.IsDuplicate {
		t.Error("a lead checked against itself must not be a duplicate")
	}
}

func TestResolveDuplicateWarnAppendsSystemNote(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	original, _ := svc.Create(ctx, transport.CreateLeadRequest{Name: "Ahmed", Phone: "+201001112222"})
	dup, _ := svc.Create(ctx, transport.CreateLeadRequest{Name: "Ahmad", Phone: "0100 111 2222"})

	resp, err := svc.ResolveDuplicate(ctx, dup.Lead.ID, transport.ResolveDuplicateRequest{Resolution: ResolutionWarn})
	if err != nil {
		t.Fatalf("ResolveDuplicate: %v", err)
	}
	if !strings.Contains(resp.Lead.Notes, "[system]") {
		t.Errorf("notes = %q, want a [system] line", resp.Lead.Notes)
	}
	if !strings.Contains(resp.Lead.Notes, original.Lead.ID.String()) {
		t.Errorf("notes = %q, want the original id", resp.Lead.Notes)
	}
	if _, gone := repo.leads[dup.Lead.ID]; !gone {
		t.Error("warn must keep the duplicate record")
	}
}

func TestResolveDuplicateTransferAdoptsOriginalOwner(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, transport.CreateLeadRequest{
		Name: "Ahmed", Phone: "+201001112222", AssignedTo: "sara",
	})
	if err != nil {
		t.Fatalf("Create original: %v", err)
	}
	dup, _ := svc.Create(ctx, transport.CreateLeadRequest{Name: "Ahmad", Phone: "0100 111 2222"})

	resp, err := svc.ResolveDuplicate(ctx, dup.Lead.ID, transport.ResolveDuplicateRequest{Resolution: ResolutionTransfer})
	if err != nil {
		t.Fatalf("ResolveDuplicate: %v", err)
	}
	if resp.Lead.AssignedTo != "sara" {
		t.Errorf("assignee = %q, want the original's owner sara", resp.Lead.AssignedTo)
	}
	if !strings.Contains(resp.Lead.Notes, "[system]") {
		t.Errorf("notes = %q, want the transfer audit note", resp.Lead.Notes)
	}
}

func TestResolveDuplicateKeepOriginalArchivesDuplicate(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	original, _ := svc.Create(ctx, transport.CreateLeadRequest{Name: "Ahmed", Phone: "+201001112222"})
	dup, _ := svc.Create(ctx, transport.CreateLeadRequest{Name: "Ahmad", Phone: "0100 111 2222"})

	if _, err := svc.ResolveDuplicate(ctx, dup.Lead.ID, transport.ResolveDuplicateRequest{Resolution: ResolutionKeepOriginal}); err != nil {
		t.Fatalf("ResolveDuplicate: %v", err)
	}

	if _, stillThere := repo.leads[dup.Lead.ID]; stillThere {
		t.Error("keep_original must archive the duplicate")
	}
	if _, kept := repo.leads[original.Lead.ID]; !kept {
		t.Error("keep_original must not touch the original")
	}
	if len(repo.archived) != 1 {
		t.Fatalf("archived count = %d, want 1", len(repo.archived))
	}
	if repo.archived[0].Reason != archiveReasonDuplicate {
		t.Errorf("archive reason = %q, want %q", repo.archived[0].Reason, archiveReasonDuplicate)
	}
}

func TestResolveDuplicateKeepOriginalRetryIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	svc.Create(ctx, transport.CreateLeadRequest{Name: "Ahmed", Phone: "+201001112222"})
	dup, _ := svc.Create(ctx, transport.CreateLeadRequest{Name: "Ahmad", Phone: "0100 111 2222"})

	req := transport.ResolveDuplicateRequest{Resolution: ResolutionKeepOriginal}
	if _, err := svc.ResolveDuplicate(ctx, dup.Lead.ID, req); err != nil {
		t.Fatalf("first ResolveDuplicate: %v", err)
	}
	if _, err := svc.ResolveDuplicate(ctx, dup.Lead.ID, req); err != nil {
		t.Errorf("retry on an archived duplicate must be a no-op, got %v", err)
	}
	if len(repo.archived) != 1 {
		t.Errorf("archived count = %d, want 1 after retry", len(repo.archived))
	}
}

func TestResolveDuplicateWithoutMatchFails(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	lead, _ := svc.Create(ctx, transport.CreateLeadRequest{Name: "Ahmed", Phone: "+201001112222"})

	if _, err := svc.ResolveDuplicate(ctx, lead.Lead.ID, transport.ResolveDuplicateRequest{Resolution: ResolutionWarn}); err == nil {
		t.Error("resolving a lead with no duplicate must fail")
	}
}

func TestRecordActionMovesStageViaClassifier(t *testing.T) {
	repo := newFakeRepo()
	defs := []pipelinedomain.StageDefinition{
		{Name: "No Answer", Type: pipelinedomain.IntentFollowUp},
		{Name: "Pending", Type: pipelinedomain.IntentFollowUp},
		{Name: "Closed Won", Type: pipelinedomain.IntentReservation},
	}
	svc := newTestService(repo, defs)
	ctx := context.Background()

	lead, _ := svc.Create(ctx, transport.CreateLeadRequest{Name: "Ahmed", Phone: "+201001112222"})

	action, err := svc.RecordAction(ctx, lead.Lead.ID, transport.RecordActionRequest{
		NextAction: pipelinedomain.IntentFollowUp,
		Notes:      "called, call back tomorrow",
	})
	if err != nil {
		t.Fatalf("RecordAction: %v", err)
	}
	if action.StageSet != "Pending" {
		t.Errorf("stage set = %q, want Pending", action.StageSet)
	}
	if repo.leads[lead.Lead.ID].Stage != "Pending" {
		t.Errorf("lead stage = %q, want Pending", repo.leads[lead.Lead.ID].Stage)
	}
}

func TestRecordActionUnknownIntentLeavesStage(t *testing.T) {
	repo := newFakeRepo()
	defs := []pipelinedomain.StageDefinition{
		{Name: "Pending", Type: pipelinedomain.IntentFollowUp},
	}
	svc := newTestService(repo, defs)
	ctx := context.Background()

	lead, _ := svc.Create(ctx, transport.CreateLeadRequest{
		Name: "Ahmed", Phone: "+201001112222", Stage: "New",
	})

	action, err := svc.RecordAction(ctx, lead.Lead.ID, transport.RecordActionRequest{
		NextAction: "send brochure",
	})
	if err != nil {
		t.Fatalf("RecordAction: %v", err)
	}
	if action.StageSet != "" {
		t.Errorf("stage set = %q, want unchanged", action.StageSet)
	}
	if repo.leads[lead.Lead.ID].Stage != "New" {
		t.Errorf("lead stage = %q, want New", repo.leads[lead.Lead.ID].Stage)
	}
	if len(repo.actions[lead.Lead.ID]) != 1 {
		t.Error("the action must still be recorded")
	}
}

func TestListDuplicatesPairsEachDuplicateOnce(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	original, _ := svc.Create(ctx, transport.CreateLeadRequest{Name: "Ahmed", Phone: "+201001112222"})
	dup1, _ := svc.Create(ctx, transport.CreateLeadRequest{Name: "Ahmad", Phone: "0100 111 2222"})
	dup2, _ := svc.Create(ctx, transport.CreateLeadRequest{Name: "A. Mohamed", Phone: "+20 100-111-2222"})
	svc.Create(ctx, transport.CreateLeadRequest{Name: "Unrelated", Phone: "+201119998888"})

	pairs, err := svc.ListDuplicates(ctx)
	if err != nil {
		t.Fatalf("ListDuplicates: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("pairs = %d, want 2", len(pairs))
	}
	for _, pair := range pairs {
		if pair.Original.ID != original.Lead.ID {
			t.Errorf("pair original = %s, want earliest-created %s", pair.Original.ID, original.Lead.ID)
		}
	}
	seen := map[uuid.UUID]bool{pairs[0].Duplicate.ID: true, pairs[1].Duplicate.ID: true}
	if !seen[dup1.Lead.ID] || !seen[dup2.Lead.ID] {
		t.Error("each duplicate must appear exactly once")
	}
}

func TestListDuplicatesReportsTiedCreatedAtPairOnce(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)

	// Bulk imports can land matching leads on the same timestamp.
	created := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	for _, name := range []string{"Ahmed", "Ahmad"} {
		lead := repository.Lead{
			ID:        uuid.New(),
			Name:      name,
			Phone:     "+201001112222",
			Stage:     "New",
			CreatedAt: created,
		}
		repo.leads[lead.ID] = lead
		repo.order = append(repo.order, lead.ID)
	}

	pairs, err := svc.ListDuplicates(context.Background())
	if err != nil {
		t.Fatalf("ListDuplicates: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("pairs = %d, want 1 for leads created at the same instant", len(pairs))
	}
	if pairs[0].Original.ID == pairs[0].Duplicate.ID {
		t.Error("a pair must name two distinct leads")
	}
	if !pairs[0].Original.CreatedAt.Equal(pairs[0].Duplicate.CreatedAt) {
		t.Error("tied timestamps must survive into the reported pair")
	}
}
