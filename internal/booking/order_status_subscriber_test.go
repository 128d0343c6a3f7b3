package booking

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tableclub/reserva/pkg/event"
)

func TestNewOrderStatusSubscriber(t *testing.T) {
	sub := NewOrderStatusSubscriber(nil, nil, nil)
	if sub == nil {
		t.Fatal("NewOrderStatusSubscriber() returned nil")
	}
	if sub.logger == nil {
		t.Error("NewOrderStatusSubscriber() should set noop logger when nil")
	}
}

func TestOrderStatusSubscriberStartNilSubscriber(t *testing.T) {
	sub := NewOrderStatusSubscriber(nil, nil, nil)
	if err := sub.Start(context.Background()); err == nil {
		t.Error("Start() with nil subscriber should return error")
	}
}

func TestOrderStatusSubscriberHandleEvent(t *testing.T) {
	f := newLifecycleFixture()
	table := f.seedTable(t, "A", 4)

	order := NewOrder()
	order.TableID = table.ID
	order.BeforeCreate()
	f.orderRepo.Put(order)

	sub := NewOrderStatusSubscriber(nil, f.lifecycle, nil)

	payload, err := json.Marshal(event.OrderStatusEvent{
		EventType:  event.EventOrderOpened,
		OrderID:    order.ID.String(),
		TableID:    table.ID.String(),
		Status:     OrderStatusPending,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("cannot marshal event: %v", err)
	}

	if err := sub.handleEvent(context.Background(), payload); err != nil {
		t.Fatalf("handleEvent() error = %v", err)
	}

	if got := f.tableStatus(t, table.ID); got != TableStatusOccupied {
		t.Errorf("table status = %q, want occupied after order opened", got)
	}

	order.Status = OrderStatusClosed
	payload, _ = json.Marshal(event.OrderStatusEvent{
		EventType:  event.EventOrderClosed,
		OrderID:    order.ID.String(),
		TableID:    table.ID.String(),
		Status:     OrderStatusClosed,
		OccurredAt: time.Now().UTC(),
	})
	if err := sub.handleEvent(context.Background(), payload); err != nil {
		t.Fatalf("handleEvent() error = %v", err)
	}

	if got := f.tableStatus(t, table.ID); got != TableStatusAvailable {
		t.Errorf("table status = %q, want available after order closed", got)
	}
}

func TestOrderStatusSubscriberHandleEventFaults(t *testing.T) {
	f := newLifecycleFixture()
	sub := NewOrderStatusSubscriber(nil, f.lifecycle, nil)

	tests := []struct {
		name string
		msg  []byte
	}{
		{name: "malformedJSON", msg: []byte("{nope")},
		{name: "badTableID", msg: mustMarshalOrderEvent(t, "not-a-uuid")},
		{name: "unknownTable", msg: mustMarshalOrderEvent(t, uuid.New().String())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Faulty events are logged and swallowed so the subscription
			// keeps draining.
			if err := sub.handleEvent(context.Background(), tt.msg); err != nil {
				t.Errorf("handleEvent() error = %v, want nil", err)
			}
		})
	}
}

func mustMarshalOrderEvent(t *testing.T, tableID string) []byte {
	t.Helper()
	payload, err := json.Marshal(event.OrderStatusEvent{
		EventType:  event.EventOrderOpened,
		OrderID:    uuid.New().String(),
		TableID:    tableID,
		Status:     OrderStatusPending,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("cannot marshal event: %v", err)
	}
	return payload
}
