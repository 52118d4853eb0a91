package repository

import (
	"context"
	"testing"

	"github.com/contractreg/contractreg/internal/contract"
)

func TestSubscribeReceivesMutations(t *testing.T) {
	repo := newTestRepo(t)

	var events []Event
	unsubscribe := repo.Subscribe(func(ev Event) {
		events = append(events, ev)
	})
	defer unsubscribe()

	created, err := repo.Add(context.Background(), validContract("C-100"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := repo.Update(context.Background(), created.ID, Patch{Title: strPtr("Neu")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := repo.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	want := []EventType{EventCreated, EventUpdated, EventDeleted}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, typ := range want {
		if events[i].Type != typ {
			t.Errorf("event %d: got %q, want %q", i, events[i].Type, typ)
		}
		if len(events[i].Records) != 1 {
			t.Errorf("event %d carries %d records, want 1", i, len(events[i].Records))
		}
	}

	// The deleted event carries the record as it was before removal.
	if got := contract.StringValue(events[2].Records[0].Title); got != "Neu" {
		t.Errorf("deleted event title = %q, want Neu", got)
	}
}

func TestSubscribeBulkImport(t *testing.T) {
	repo := newTestRepo(t)

	var got *Event
	defer repo.Subscribe(func(ev Event) { got = &ev })()

	_, err := repo.AddMany(context.Background(), []contract.Contract{
		validContract("C-100"),
		validContract("C-200"),
	})
	if err != nil {
		t.Fatalf("AddMany: %v", err)
	}

	if got == nil {
		t.Fatal("no event received")
	}
	if got.Type != EventBulkImported {
		t.Errorf("type = %q, want bulk_imported", got.Type)
	}
	if len(got.Records) != 2 {
		t.Errorf("event carries %d records, want 2", len(got.Records))
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	repo := newTestRepo(t)

	calls := 0
	unsubscribe := repo.Subscribe(func(Event) { calls++ })

	if _, err := repo.Add(context.Background(), validContract("C-100")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	unsubscribe()
	if _, err := repo.Add(context.Background(), validContract("C-200")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if calls != 1 {
		t.Errorf("listener called %d times, want 1", calls)
	}
}

func TestNoEventOnFailedMutation(t *testing.T) {
	repo := newTestRepo(t)

	calls := 0
	defer repo.Subscribe(func(Event) { calls++ })()

	if _, err := repo.Add(context.Background(), contract.Contract{}); err == nil {
		t.Fatal("expected validation error")
	}
	if calls != 0 {
		t.Errorf("listener called %d times after failed mutation, want 0", calls)
	}
}

func TestListenersInvokedInSubscriptionOrder(t *testing.T) {
	repo := newTestRepo(t)

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		defer repo.Subscribe(func(Event) { order = append(order, i) })()
	}

	if _, err := repo.Add(context.Background(), validContract("C-100")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	for i, got := range order {
		if got != i {
			t.Fatalf("invocation order = %v, want ascending", order)
		}
	}
}
