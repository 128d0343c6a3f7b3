package booking

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"

	"github.com/tableclub/reserva/pkg/event"
)

// OrderStatusSubscriber listens for order status changes published by the
// order service and refreshes the derived status of the affected table. An
// order opening or closing flips occupancy without any reservation activity,
// so the projection has to be recomputed on these events too.
type OrderStatusSubscriber struct {
	subscriber events.Subscriber
	lifecycle  *Lifecycle
	logger     aqm.Logger
}

func NewOrderStatusSubscriber(sub events.Subscriber, lifecycle *Lifecycle, logger aqm.Logger) *OrderStatusSubscriber {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &OrderStatusSubscriber{
		subscriber: sub,
		lifecycle:  lifecycle,
		logger:     logger,
	}
}

func (s *OrderStatusSubscriber) Start(ctx context.Context) error {
	s.logger.Info("starting order status subscriber", "topic", event.OrderStatusTopic)
	if s.subscriber == nil {
		return fmt.Errorf("order status subscriber not configured")
	}
	return s.subscriber.Subscribe(ctx, event.OrderStatusTopic, s.handleEvent)
}

func (s *OrderStatusSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var evt event.OrderStatusEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		s.logger.Info("invalid order status event", "error", err)
		return nil
	}

	tableID, err := uuid.Parse(evt.TableID)
	if err != nil {
		s.logger.Info("invalid table id in order event", "table_id", evt.TableID)
		return nil
	}

	// Orders run on the current service day.
	if err := s.lifecycle.RecomputeTableStatus(ctx, tableID, todayDate()); err != nil {
		s.logger.Error("cannot recompute table status from order event", "error", err, "table_id", tableID.String())
		return nil
	}

	s.logger.Debug("table status refreshed from order event", "table_id", tableID.String(), "order_id", evt.OrderID)
	return nil
}
