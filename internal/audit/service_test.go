package audit

import (
	"context"
	"testing"
)

func TestService_AppendRequiresTypeAndConsultation(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.Append(context.Background(), Event{Type: EventTypeStatusChange}); err == nil {
		t.Fatalf("expected error")
	}
	if err := svc.Append(context.Background(), Event{ConsultationID: "c1"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestService_AppendsImmutableEvents(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogStatusChange(context.Background(), "u1", "doctor", "c1", "scheduled", "in_progress"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event")
	}
	if evs[0].Type != EventTypeStatusChange {
		t.Fatalf("expected status_change")
	}
	if evs[0].FromStatus != "scheduled" || evs[0].ToStatus != "in_progress" {
		t.Fatalf("expected transition captured, got %+v", evs[0])
	}
	if evs[0].ID == "" || evs[0].CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp filled")
	}
}

func TestService_LogAssignmentCapturesProvider(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogAssignment(context.Background(), "admin1", "admin", "c1", "prov1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	evs := repo.Events()
	if len(evs) != 1 || evs[0].ProviderID != "prov1" {
		t.Fatalf("expected provider captured, got %+v", evs)
	}
}
