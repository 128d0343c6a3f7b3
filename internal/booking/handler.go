package booking

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const MaxBodyBytes = 1 << 20

type Handler struct {
	tableRepo       TableRepo
	slotRepo        SlotRepo
	reservationRepo ReservationRepo
	engine          *Engine
	lifecycle       *Lifecycle
	logger          aqm.Logger
	config          *aqm.Config
	tlm             *telemetry.HTTP
}

type HandlerDeps struct {
	TableRepo       TableRepo
	SlotRepo        SlotRepo
	ReservationRepo ReservationRepo
	Engine          *Engine
	Lifecycle       *Lifecycle
}

func NewHandler(hd HandlerDeps, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		tableRepo:       hd.TableRepo,
		slotRepo:        hd.SlotRepo,
		reservationRepo: hd.ReservationRepo,
		engine:          hd.Engine,
		lifecycle:       hd.Lifecycle,
		logger:          logger,
		config:          config,
		tlm:             telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/availability", h.FindAvailability)

	r.Route("/tables", func(r chi.Router) {
		r.Post("/", h.CreateTable)
		r.Get("/", h.ListTables)
		r.Get("/{id}", h.GetTable)
		r.Patch("/{id}", h.UpdateTable)
		r.Delete("/{id}", h.DeleteTable)
		r.Put("/{id}/maintenance", h.SetTableMaintenance)
	})

	r.Route("/slots", func(r chi.Router) {
		r.Get("/", h.ListSlots)
	})

	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", h.CreateReservation)
		r.Get("/", h.ListReservations)
		r.Get("/{id}", h.GetReservation)

		r.Post("/{id}/confirm", h.transitionHandler(ActionConfirm))
		r.Post("/{id}/seat", h.transitionHandler(ActionSeat))
		r.Post("/{id}/complete", h.transitionHandler(ActionComplete))
		r.Post("/{id}/cancel", h.transitionHandler(ActionCancel))
		r.Post("/{id}/no-show", h.transitionHandler(ActionNoShow))

		r.Post("/{id}/move", h.MoveReservation)
		r.Patch("/{id}/payment", h.UpdatePaymentStatus)
	})
}

// Availability

func (h *Handler) FindAvailability(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.FindAvailability")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	date := r.URL.Query().Get("date")

	slotID, err := uuid.Parse(r.URL.Query().Get("slot_id"))
	if err != nil {
		log.Debug("invalid slot id", "slot_id", r.URL.Query().Get("slot_id"))
		aqm.RespondError(w, http.StatusBadRequest, "Invalid slot_id parameter")
		return
	}

	guestCount, err := strconv.Atoi(r.URL.Query().Get("guest_count"))
	if err != nil {
		log.Debug("invalid guest count", "guest_count", r.URL.Query().Get("guest_count"))
		aqm.RespondError(w, http.StatusBadRequest, "Invalid guest_count parameter")
		return
	}

	availability, err := h.engine.FindAvailableTables(ctx, date, slotID, guestCount)
	if err != nil {
		h.respondDomainError(w, log, err, "Could not compute availability")
		return
	}

	aqm.RespondSuccess(w, availability)
}

// Table Handlers

func (h *Handler) CreateTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req TableCreateRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	validationErrors := ValidateTableCreate(ctx, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		aqm.RespondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	table := NewTable()
	table.Number = req.Number
	table.AreaID = req.AreaID
	table.Capacity = req.Capacity
	table.BeforeCreate()

	if err := h.tableRepo.Create(ctx, table); err != nil {
		log.Error("cannot create table", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not create table")
		return
	}

	links := aqm.RESTfulLinksFor(table)
	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, table, links...)
}

func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	table, err := h.tableRepo.Get(ctx, id)
	if err != nil {
		log.Error("error loading table", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Table not found")
		return
	}

	if table == nil {
		aqm.RespondError(w, http.StatusNotFound, "Table not found")
		return
	}

	links := aqm.RESTfulLinksFor(table)
	aqm.RespondSuccess(w, table, links...)
}

func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListTables")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var tables []*Table
	var err error

	if areaIDStr := r.URL.Query().Get("area_id"); areaIDStr != "" {
		areaID, parseErr := uuid.Parse(areaIDStr)
		if parseErr != nil {
			log.Debug("invalid area id", "area_id", areaIDStr)
			aqm.RespondError(w, http.StatusBadRequest, "Invalid area_id parameter")
			return
		}
		tables, err = h.tableRepo.ListByArea(ctx, areaID)
	} else if status := r.URL.Query().Get("status"); status != "" {
		tables, err = h.tableRepo.ListByStatus(ctx, status)
	} else {
		tables, err = h.tableRepo.List(ctx)
	}

	if err != nil {
		log.Error("error retrieving tables", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve tables")
		return
	}

	aqm.RespondCollection(w, tables, "table")
}

func (h *Handler) UpdateTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req TableUpdateRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	validationErrors := ValidateTableUpdate(ctx, id, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		aqm.RespondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	table, err := h.tableRepo.Get(ctx, id)
	if err != nil || table == nil {
		log.Error("table not found", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Table not found")
		return
	}

	if req.Number != "" {
		table.Number = req.Number
	}
	if req.AreaID != nil {
		table.AreaID = req.AreaID
	}
	if req.Capacity > 0 {
		table.Capacity = req.Capacity
	}

	table.BeforeUpdate()

	if err := h.tableRepo.Save(ctx, table); err != nil {
		log.Error("cannot update table", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update table")
		return
	}

	links := aqm.RESTfulLinksFor(table)
	aqm.RespondSuccess(w, table, links...)
}

func (h *Handler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteTable")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	if err := h.tableRepo.Delete(ctx, id); err != nil {
		log.Error("cannot delete table", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not delete table")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetTableMaintenance(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SetTableMaintenance")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req TableMaintenanceRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	table, err := h.tableRepo.Get(ctx, id)
	if err != nil || table == nil {
		log.Error("table not found", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Table not found")
		return
	}

	table.SetMaintenance(req.Maintenance)
	if req.Reason != "" {
		table.AddNote(req.Reason, "maintenance")
	}
	table.BeforeUpdate()

	if err := h.tableRepo.Save(ctx, table); err != nil {
		log.Error("cannot update table maintenance", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update table")
		return
	}

	// Coming out of maintenance the status belongs to the derived projection
	// again, so hand it back.
	if !req.Maintenance {
		date := r.URL.Query().Get("date")
		if date == "" {
			date = todayDate()
		}
		if err := h.lifecycle.RecomputeTableStatus(ctx, table.ID, date); err != nil {
			log.Error("cannot recompute table status", "error", err, "id", id.String())
		}
	}

	links := aqm.RESTfulLinksFor(table)
	aqm.RespondSuccess(w, table, links...)
}

// Slot Handlers

func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListSlots")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	slots, err := h.slotRepo.List(ctx)
	if err != nil {
		log.Error("error retrieving slots", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve slots")
		return
	}

	aqm.RespondCollection(w, slots, "booking-slot")
}

// Reservation Handlers

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateReservation")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req CreateReservationRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	validationErrors := ValidateReservationCreate(ctx, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		aqm.RespondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	reservation, err := h.lifecycle.CreateReservation(ctx, req)
	if err != nil {
		h.respondDomainError(w, log, err, "Could not create reservation")
		return
	}

	links := aqm.RESTfulLinksFor(reservation)
	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, reservation, links...)
}

func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetReservation")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	reservation, err := h.reservationRepo.Get(ctx, id)
	if err != nil {
		log.Error("error loading reservation", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Reservation not found")
		return
	}

	if reservation == nil {
		aqm.RespondError(w, http.StatusNotFound, "Reservation not found")
		return
	}

	links := aqm.RESTfulLinksFor(reservation)
	aqm.RespondSuccess(w, reservation, links...)
}

func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListReservations")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	date := r.URL.Query().Get("date")
	slotIDStr := r.URL.Query().Get("slot_id")

	var reservations []*Reservation
	var err error

	switch {
	case date != "" && slotIDStr != "":
		slotID, parseErr := uuid.Parse(slotIDStr)
		if parseErr != nil {
			log.Debug("invalid slot id", "slot_id", slotIDStr)
			aqm.RespondError(w, http.StatusBadRequest, "Invalid slot_id parameter")
			return
		}
		reservations, err = h.reservationRepo.ListActiveForSlot(ctx, date, slotID)
	case date != "":
		reservations, err = h.reservationRepo.ListByDate(ctx, date)
	default:
		reservations, err = h.reservationRepo.List(ctx)
	}

	if err != nil {
		log.Error("error retrieving reservations", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve reservations")
		return
	}

	aqm.RespondCollection(w, reservations, "reservation")
}

func (h *Handler) transitionHandler(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w, r, finish := h.tlm.Start(w, r, "Handler.Transition."+action)
		defer finish()

		log := h.log(r)
		ctx := r.Context()

		id, ok := h.parseIDParam(w, r, log)
		if !ok {
			return
		}

		reservation, err := h.lifecycle.Transition(ctx, id, action)
		if err != nil {
			h.respondDomainError(w, log, err, "Could not apply transition")
			return
		}

		links := aqm.RESTfulLinksFor(reservation)
		aqm.RespondSuccess(w, reservation, links...)
	}
}

func (h *Handler) MoveReservation(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.MoveReservation")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req MoveReservationRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	reservation, err := h.lifecycle.MoveReservation(ctx, id, req.TableIDs)
	if err != nil {
		h.respondDomainError(w, log, err, "Could not move reservation")
		return
	}

	links := aqm.RESTfulLinksFor(reservation)
	aqm.RespondSuccess(w, reservation, links...)
}

func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdatePaymentStatus")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req PaymentStatusRequest
	if !h.decode(w, r, log, &req) {
		return
	}

	reservation, err := h.lifecycle.UpdatePaymentStatus(ctx, id, req.PaymentStatus)
	if err != nil {
		h.respondDomainError(w, log, err, "Could not update payment status")
		return
	}

	links := aqm.RESTfulLinksFor(reservation)
	aqm.RespondSuccess(w, reservation, links...)
}

// Helper methods

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}

func (h *Handler) respondDomainError(w http.ResponseWriter, log aqm.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		log.Debug("invalid input", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		log.Debug("resource not found", "error", err)
		aqm.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrTableConflict),
		errors.Is(err, ErrInsufficientCapacity),
		errors.Is(err, ErrPaymentOutstanding),
		errors.Is(err, ErrOpenOrders):
		log.Debug("booking rejected", "error", err)
		aqm.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		log.Debug("transition rejected", "error", err)
		aqm.RespondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Error(fallback, "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, fallback)
	}
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log aqm.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		log.Debug("missing id parameter")
		aqm.RespondError(w, http.StatusBadRequest, "Missing id parameter")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr, "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, log aqm.Logger, out interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return false
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		aqm.RespondError(w, http.StatusBadRequest, "Request body is empty")
		return false
	}

	if err := json.Unmarshal(body, out); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return false
	}

	return true
}
