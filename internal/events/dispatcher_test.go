package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherInvokesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []string
	d.Subscribe(EventQuestionCreated, func(ctx context.Context, event Event) error {
		got = append(got, event.PostID)
		return nil
	})
	d.Subscribe(EventQuestionCreated, func(ctx context.Context, event Event) error {
		got = append(got, event.PostID+"-second")
		return nil
	})
	d.Subscribe(EventQuestionAnswered, func(ctx context.Context, event Event) error {
		t.Error("handler for another event type must not fire")
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventQuestionCreated, PostID: "p1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(got) != 2 || got[0] != "p1" || got[1] != "p1-second" {
		t.Fatalf("unexpected handler invocations: %v", got)
	}
}

func TestDispatcherSwallowsHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()

	fired := false
	d.Subscribe(EventQuestionDeleted, func(ctx context.Context, event Event) error {
		return errors.New("handler failure")
	})
	d.Subscribe(EventQuestionDeleted, func(ctx context.Context, event Event) error {
		fired = true
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventQuestionDeleted}); err != nil {
		t.Fatalf("publish must not propagate handler errors: %v", err)
	}
	if !fired {
		t.Fatal("later handlers must run despite earlier failures")
	}
}
