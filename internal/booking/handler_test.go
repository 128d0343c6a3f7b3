package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aquamarinepk/aqm"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type handlerFixture struct {
	*lifecycleFixture
	handler *Handler
}

func newHandlerFixture() *handlerFixture {
	f := newLifecycleFixture()
	handler := NewHandler(HandlerDeps{
		TableRepo:       f.tableRepo,
		SlotRepo:        f.slotRepo,
		ReservationRepo: f.reservationRepo,
		Engine:          NewEngine(f.tableRepo, f.slotRepo, f.reservationRepo, nil),
		Lifecycle:       f.lifecycle,
	}, aqm.NewConfig(), nil)
	return &handlerFixture{lifecycleFixture: f, handler: handler}
}

func (f *handlerFixture) do(t *testing.T, method, target, id string, body interface{}, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("cannot marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if id != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestNewHandler(t *testing.T) {
	h := NewHandler(HandlerDeps{}, aqm.NewConfig(), nil)
	if h == nil {
		t.Fatal("NewHandler() returned nil")
	}
	if h.logger == nil {
		t.Error("NewHandler() should set noop logger when nil")
	}
}

func TestHandlerGetTable(t *testing.T) {
	f := newHandlerFixture()
	table := f.seedTable(t, "12", 4)

	tests := []struct {
		name           string
		tableID        string
		expectedStatus int
	}{
		{
			name:           "validTable",
			tableID:        table.ID.String(),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "tableNotFound",
			tableID:        uuid.New().String(),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalidID",
			tableID:        "not-a-uuid",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, "/tables/"+tt.tableID, tt.tableID, nil, f.handler.GetTable)
			if w.Code != tt.expectedStatus {
				t.Errorf("GetTable() status = %d, want %d", w.Code, tt.expectedStatus)
			}
		})
	}
}

func TestHandlerCreateTable(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{
			name:           "valid",
			body:           TableCreateRequest{Number: "12", Capacity: 4},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "validationFailure",
			body:           TableCreateRequest{Number: "", Capacity: 0},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "emptyBody",
			body:           nil,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture()
			w := f.do(t, http.MethodPost, "/tables", "", tt.body, f.handler.CreateTable)
			if w.Code != tt.expectedStatus {
				t.Errorf("CreateTable() status = %d, want %d", w.Code, tt.expectedStatus)
			}
		})
	}
}

func TestHandlerCreateTableMalformedJSON(t *testing.T) {
	f := newHandlerFixture()

	req := httptest.NewRequest(http.MethodPost, "/tables", bytes.NewReader([]byte("{not-json")))
	w := httptest.NewRecorder()
	f.handler.CreateTable(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("CreateTable() status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandlerListTables(t *testing.T) {
	areaID := uuid.MustParse("550e8400-e29b-41d4-a716-446655440030")

	tests := []struct {
		name           string
		queryParams    string
		expectedStatus int
	}{
		{
			name:           "listAll",
			queryParams:    "",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "filterByArea",
			queryParams:    "?area_id=" + areaID.String(),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "filterByStatus",
			queryParams:    "?status=available",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalidAreaID",
			queryParams:    "?area_id=not-a-uuid",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture()
			f.seedTable(t, "12", 4)
			w := f.do(t, http.MethodGet, "/tables"+tt.queryParams, "", nil, f.handler.ListTables)
			if w.Code != tt.expectedStatus {
				t.Errorf("ListTables() status = %d, want %d", w.Code, tt.expectedStatus)
			}
		})
	}
}

func TestHandlerSetTableMaintenance(t *testing.T) {
	f := newHandlerFixture()
	table := f.seedTable(t, "12", 4)

	w := f.do(t, http.MethodPut, "/tables/"+table.ID.String()+"/maintenance", table.ID.String(),
		TableMaintenanceRequest{Maintenance: true, Reason: "broken leg"}, f.handler.SetTableMaintenance)
	if w.Code != http.StatusOK {
		t.Fatalf("SetTableMaintenance() status = %d, want %d", w.Code, http.StatusOK)
	}

	if got := f.tableStatus(t, table.ID); got != TableStatusMaintenance {
		t.Errorf("table status = %q, want maintenance", got)
	}

	stored, _ := f.tableRepo.Get(context.Background(), table.ID)
	if len(stored.Notes) != 1 {
		t.Errorf("maintenance reason not recorded as note")
	}

	// Clearing the flag hands the status back to the derived projection.
	w = f.do(t, http.MethodPut, "/tables/"+table.ID.String()+"/maintenance", table.ID.String(),
		TableMaintenanceRequest{Maintenance: false}, f.handler.SetTableMaintenance)
	if w.Code != http.StatusOK {
		t.Fatalf("SetTableMaintenance(off) status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := f.tableStatus(t, table.ID); got != TableStatusAvailable {
		t.Errorf("table status after clearing maintenance = %q, want available", got)
	}
}

func TestHandlerFindAvailability(t *testing.T) {
	f := newHandlerFixture()
	slot := f.seedSlot(t)
	f.seedTable(t, "A", 4)

	tests := []struct {
		name           string
		queryParams    string
		expectedStatus int
	}{
		{
			name:           "valid",
			queryParams:    "?date=2024-06-01&slot_id=" + slot.ID.String() + "&guest_count=2",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalidSlotID",
			queryParams:    "?date=2024-06-01&slot_id=nope&guest_count=2",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalidGuestCount",
			queryParams:    "?date=2024-06-01&slot_id=" + slot.ID.String() + "&guest_count=two",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalidDate",
			queryParams:    "?date=someday&slot_id=" + slot.ID.String() + "&guest_count=2",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknownSlot",
			queryParams:    "?date=2024-06-01&slot_id=" + uuid.New().String() + "&guest_count=2",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, "/availability"+tt.queryParams, "", nil, f.handler.FindAvailability)
			if w.Code != tt.expectedStatus {
				t.Errorf("FindAvailability() status = %d, want %d", w.Code, tt.expectedStatus)
			}
		})
	}
}

func TestHandlerCreateReservation(t *testing.T) {
	f := newHandlerFixture()
	slot := f.seedSlot(t)
	small := f.seedTable(t, "A", 2)
	regular := f.seedTable(t, "B", 4)

	valid := func(tableID uuid.UUID, guests int) CreateReservationRequest {
		return CreateReservationRequest{
			TableIDs:    []uuid.UUID{tableID},
			Date:        "2024-06-01",
			SlotID:      slot.ID,
			GuestCount:  guests,
			ContactName: "Dana Reyes",
			ContactInfo: "dana@example.com",
		}
	}

	w := f.do(t, http.MethodPost, "/reservations", "", valid(regular.ID, 3), f.handler.CreateReservation)
	if w.Code != http.StatusCreated {
		t.Fatalf("CreateReservation() status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var envelope aqm.SuccessResponse
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("cannot decode response envelope: %v", err)
	}

	t.Run("doubleBookingConflict", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/reservations", "", valid(regular.ID, 2), f.handler.CreateReservation)
		if w.Code != http.StatusConflict {
			t.Errorf("CreateReservation() status = %d, want %d", w.Code, http.StatusConflict)
		}
	})

	t.Run("insufficientCapacity", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/reservations", "", valid(small.ID, 6), f.handler.CreateReservation)
		if w.Code != http.StatusConflict {
			t.Errorf("CreateReservation() status = %d, want %d", w.Code, http.StatusConflict)
		}
	})

	t.Run("validationFailure", func(t *testing.T) {
		req := valid(small.ID, 2)
		req.ContactName = ""
		w := f.do(t, http.MethodPost, "/reservations", "", req, f.handler.CreateReservation)
		if w.Code != http.StatusBadRequest {
			t.Errorf("CreateReservation() status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("unknownTable", func(t *testing.T) {
		req := valid(uuid.New(), 2)
		w := f.do(t, http.MethodPost, "/reservations", "", req, f.handler.CreateReservation)
		if w.Code != http.StatusNotFound {
			t.Errorf("CreateReservation() status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

func TestHandlerTransitions(t *testing.T) {
	f := newHandlerFixture()
	slot := f.seedSlot(t)
	table := f.seedTable(t, "A", 4)

	reservation, err := f.lifecycle.CreateReservation(context.Background(), f.createRequest(slot, []uuid.UUID{table.ID}, 2))
	if err != nil {
		t.Fatalf("CreateReservation() error = %v", err)
	}
	id := reservation.ID.String()

	// Seating before confirmation is a transition fault, not a bad request.
	w := f.do(t, http.MethodPost, "/reservations/"+id+"/seat", id, nil, f.handler.transitionHandler(ActionSeat))
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("seat from pending status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}

	w = f.do(t, http.MethodPost, "/reservations/"+id+"/confirm", id, nil, f.handler.transitionHandler(ActionConfirm))
	if w.Code != http.StatusOK {
		t.Errorf("confirm status = %d, want %d", w.Code, http.StatusOK)
	}

	w = f.do(t, http.MethodPost, "/reservations/"+id+"/seat", id, nil, f.handler.transitionHandler(ActionSeat))
	if w.Code != http.StatusOK {
		t.Errorf("seat status = %d, want %d", w.Code, http.StatusOK)
	}

	unknown := uuid.New().String()
	w = f.do(t, http.MethodPost, "/reservations/"+unknown+"/confirm", unknown, nil, f.handler.transitionHandler(ActionConfirm))
	if w.Code != http.StatusNotFound {
		t.Errorf("confirm unknown reservation status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHandlerMoveReservation(t *testing.T) {
	f := newHandlerFixture()
	slot := f.seedSlot(t)
	a := f.seedTable(t, "A", 4)
	b := f.seedTable(t, "B", 4)
	c := f.seedTable(t, "C", 4)

	if _, err := f.lifecycle.CreateReservation(context.Background(), f.createRequest(slot, []uuid.UUID{a.ID}, 2)); err != nil {
		t.Fatalf("first CreateReservation() error = %v", err)
	}
	second, err := f.lifecycle.CreateReservation(context.Background(), f.createRequest(slot, []uuid.UUID{b.ID}, 2))
	if err != nil {
		t.Fatalf("second CreateReservation() error = %v", err)
	}

	id := second.ID.String()

	w := f.do(t, http.MethodPost, "/reservations/"+id+"/move", id,
		MoveReservationRequest{TableIDs: []uuid.UUID{a.ID}}, f.handler.MoveReservation)
	if w.Code != http.StatusConflict {
		t.Errorf("move onto claimed table status = %d, want %d", w.Code, http.StatusConflict)
	}

	w = f.do(t, http.MethodPost, "/reservations/"+id+"/move", id,
		MoveReservationRequest{TableIDs: []uuid.UUID{c.ID}}, f.handler.MoveReservation)
	if w.Code != http.StatusOK {
		t.Errorf("move onto free table status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestHandlerUpdatePaymentStatus(t *testing.T) {
	f := newHandlerFixture()
	slot := f.seedSlot(t)
	table := f.seedTable(t, "A", 4)

	reservation, err := f.lifecycle.CreateReservation(context.Background(), f.createRequest(slot, []uuid.UUID{table.ID}, 2))
	if err != nil {
		t.Fatalf("CreateReservation() error = %v", err)
	}
	id := reservation.ID.String()

	w := f.do(t, http.MethodPatch, "/reservations/"+id+"/payment", id,
		PaymentStatusRequest{PaymentStatus: PaymentStatusPaid}, f.handler.UpdatePaymentStatus)
	if w.Code != http.StatusOK {
		t.Errorf("UpdatePaymentStatus() status = %d, want %d", w.Code, http.StatusOK)
	}

	w = f.do(t, http.MethodPatch, "/reservations/"+id+"/payment", id,
		PaymentStatusRequest{PaymentStatus: "comped"}, f.handler.UpdatePaymentStatus)
	if w.Code != http.StatusBadRequest {
		t.Errorf("UpdatePaymentStatus(comped) status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandlerRegisterRoutes(t *testing.T) {
	f := newHandlerFixture()
	slot := f.seedSlot(t)
	f.seedTable(t, "A", 4)

	r := chi.NewRouter()
	f.handler.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/availability?date=2024-06-01&slot_id="+slot.ID.String()+"&guest_count=2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("routed GET /availability status = %d, want %d", w.Code, http.StatusOK)
	}

	req = httptest.NewRequest(http.MethodGet, "/slots/", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("routed GET /slots status = %d, want %d", w.Code, http.StatusOK)
	}
}
