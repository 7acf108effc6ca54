package events

import (
	"testing"
)

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	var first, second []TaskInvalidation
	bus.Subscribe(func(ev TaskInvalidation) { first = append(first, ev) })
	bus.Subscribe(func(ev TaskInvalidation) { second = append(second, ev) })

	bus.Publish(TaskInvalidation{ToolName: "add_task", Result: "created task 3"})

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("deliveries = %d, %d, want 1 each", len(first), len(second))
	}
	if first[0].ToolName != "add_task" || first[0].Result != "created task 3" {
		t.Errorf("event = %+v", first[0])
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	got := 0
	unsubscribe := bus.Subscribe(func(TaskInvalidation) { got++ })

	bus.Publish(TaskInvalidation{ToolName: "delete_task"})
	unsubscribe()
	unsubscribe() // second call is harmless
	bus.Publish(TaskInvalidation{ToolName: "delete_task"})

	if got != 1 {
		t.Errorf("deliveries = %d, want 1", got)
	}
}

func TestDeliveryFollowsSubscriptionOrder(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	var order []string
	bus.Subscribe(func(TaskInvalidation) { order = append(order, "a") })
	bus.Subscribe(func(TaskInvalidation) { order = append(order, "b") })
	bus.Subscribe(func(TaskInvalidation) { order = append(order, "c") })

	bus.Publish(TaskInvalidation{ToolName: "update_task"})

	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("order = %v, want [a b c]", order)
	}
}

func TestHandlerMaySubscribeDuringPublish(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	lateCalls := 0
	bus.Subscribe(func(TaskInvalidation) {
		bus.Subscribe(func(TaskInvalidation) { lateCalls++ })
	})

	// The handler added mid-publish sees only later events.
	bus.Publish(TaskInvalidation{ToolName: "add_task"})
	if lateCalls != 0 {
		t.Errorf("late handler calls = %d, want 0 for the triggering event", lateCalls)
	}
	bus.Publish(TaskInvalidation{ToolName: "add_task"})
	if lateCalls == 0 {
		t.Error("late handler never invoked on subsequent publish")
	}
}

func TestPublishWithNoSubscribers(t *testing.T) {
	t.Parallel()

	// Must not panic.
	NewBus().Publish(TaskInvalidation{ToolName: "complete_task"})
}
