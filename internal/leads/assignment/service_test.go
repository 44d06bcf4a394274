package assignment

import (
	"context"
	"testing"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/transport"
	pipelinedomain "leadflow_backend/internal/pipeline/domain"
	rotationdomain "leadflow_backend/internal/rotation/domain"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeAssigner struct {
	calls    int
	lastIDs  []uuid.UUID
	assignee string
	stage    string
}

func (f *fakeAssigner) AssignLeads(_ context.Context, ids []uuid.UUID, assignee, stage string) (int, error) {
	f.calls++
	f.lastIDs = ids
	f.assignee = assignee
	f.stage = stage
	return len(ids), nil
}

type fakeSettings struct {
	settings rotationdomain.Settings
}

func (f *fakeSettings) Settings(_ context.Context) (rotationdomain.Settings, error) {
	return f.settings, nil
}

type fakeEnqueuer struct {
	calls int
	runAt time.Time
	ids   []uuid.UUID
}

func (f *fakeEnqueuer) EnqueueDelayedAssignment(_ context.Context, ids []uuid.UUID, assignee string, at time.Time) error {
	f.calls++
	f.ids = ids
	f.runAt = at
	return nil
}

func newTestService(repo *fakeAssigner, settings rotationdomain.Settings, enqueuer DelayedEnqueuer, at time.Time) *Service {
	log := logger.New("development")
	svc := New(repo, &fakeSettings{settings: settings}, enqueuer, events.NewInMemoryBus(log), log)
	svc.now = func() time.Time { return at }
	return svc
}

func inWindow() time.Time {
	return time.Date(2024, time.March, 4, 11, 0, 0, 0, time.UTC)
}

func outOfWindow() time.Time {
	return time.Date(2024, time.March, 4, 20, 0, 0, 0, time.UTC)
}

func batch(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func TestAssignHappyPathSetsPendingStage(t *testing.T) {
	repo := &fakeAssigner{}
	svc := newTestService(repo, rotationdomain.DefaultSettings(), nil, inWindow())

	resp, err := svc.Assign(context.Background(), transport.AssignLeadsRequest{
		LeadIDs:  batch(3),
		Assignee: "sara",
	})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if resp.Assigned != 3 {
		t.Errorf("assigned = %d, want 3", resp.Assigned)
	}
	if repo.stage != pipelinedomain.StagePending {
		t.Errorf("stage = %q, want %q", repo.stage, pipelinedomain.StagePending)
	}
	if repo.assignee != "sara" {
		t.Errorf("assignee = %q, want sara", repo.assignee)
	}
}

func TestAssignRotationDisabledRejectsWholeBatch(t *testing.T) {
	repo := &fakeAssigner{}
	settings := rotationdomain.DefaultSettings()
	settings.AllowAssignRotation = false
	svc := newTestService(repo, settings, nil, inWindow())

	resp, err := svc.Assign(context.Background(), transport.AssignLeadsRequest{
		LeadIDs:  batch(5),
		Assignee: "sara",
	})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if resp.Assigned != 0 {
		t.Errorf("assigned = %d, want 0", resp.Assigned)
	}
	if resp.Reason != rotationdomain.ReasonRotationDisabled {
		t.Errorf("reason = %q, want %q", resp.Reason, rotationdomain.ReasonRotationDisabled)
	}
	if repo.calls != 0 {
		t.Error("a blocked batch must never reach the store")
	}
}

func TestAssignDelayedOutsideWindowRejects(t *testing.T) {
	repo := &fakeAssigner{}
	settings := rotationdomain.DefaultSettings()
	settings.DelayAssignRotation = true
	svc := newTestService(repo, settings, nil, outOfWindow())

	resp, err := svc.Assign(context.Background(), transport.AssignLeadsRequest{
		LeadIDs:  batch(2),
		Assignee: "sara",
	})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if resp.Reason != rotationdomain.ReasonDelayed {
		t.Errorf("reason = %q, want %q", resp.Reason, rotationdomain.ReasonDelayed)
	}
	if repo.calls != 0 {
		t.Error("a delayed batch must never reach the store")
	}
}

func TestAssignOutsideWindowWithoutDelayProceeds(t *testing.T) {
	repo := &fakeAssigner{}
	svc := newTestService(repo, rotationdomain.DefaultSettings(), nil, outOfWindow())

	resp, err := svc.Assign(context.Background(), transport.AssignLeadsRequest{
		LeadIDs:  batch(1),
		Assignee: "sara",
	})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if resp.Assigned != 1 {
		t.Errorf("assigned = %d, want 1: the window alone must not block", resp.Assigned)
	}
}

func TestAssignQueueIfBlockedSchedulesAtNextOpening(t *testing.T) {
	repo := &fakeAssigner{}
	enqueuer := &fakeEnqueuer{}
	settings := rotationdomain.DefaultSettings()
	settings.DelayAssignRotation = true
	at := outOfWindow()
	svc := newTestService(repo, settings, enqueuer, at)

	ids := batch(2)
	resp, err := svc.Assign(context.Background(), transport.AssignLeadsRequest{
		LeadIDs:        ids,
		Assignee:       "sara",
		QueueIfBlocked: true,
	})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if !resp.Queued {
		t.Fatal("expected the batch to be queued")
	}
	if repo.calls != 0 {
		t.Error("a queued batch must not be assigned immediately")
	}
	if enqueuer.calls != 1 {
		t.Fatalf("enqueuer calls = %d, want 1", enqueuer.calls)
	}
	want := rotationdomain.NextWindowOpen(settings, at)
	if !enqueuer.runAt.Equal(want) {
		t.Errorf("run at = %v, want next opening %v", enqueuer.runAt, want)
	}
}

func TestAssignQueueIfBlockedNeverDefersDisabledRotation(t *testing.T) {
	repo := &fakeAssigner{}
	enqueuer := &fakeEnqueuer{}
	settings := rotationdomain.DefaultSettings()
	settings.AllowAssignRotation = false
	svc := newTestService(repo, settings, enqueuer, inWindow())

	resp, err := svc.Assign(context.Background(), transport.AssignLeadsRequest{
		LeadIDs:        batch(1),
		Assignee:       "sara",
		QueueIfBlocked: true,
	})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if resp.Queued {
		t.Error("disabled rotation must be a hard stop, not a deferral")
	}
	if enqueuer.calls != 0 {
		t.Error("nothing may be enqueued when rotation is disabled")
	}
}

func TestAssignBlankAssigneeFailsBeforeGuard(t *testing.T) {
	for _, assignee := range []string{"", "   ", "\t"} {
		repo := &fakeAssigner{}
		settings := rotationdomain.DefaultSettings()
		settings.AllowAssignRotation = false
		svc := newTestService(repo, settings, nil, inWindow())

		if _, err := svc.Assign(context.Background(), transport.AssignLeadsRequest{
			LeadIDs:  batch(1),
			Assignee: assignee,
		}); err == nil {
			t.Errorf("assignee %q must be rejected", assignee)
		}
		if repo.calls != 0 {
			t.Errorf("assignee %q: validation failures must never reach the store", assignee)
		}
	}
}
