package booking

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

func ValidateTableCreate(ctx context.Context, req TableCreateRequest) []string {
	var errors []string

	if strings.TrimSpace(req.Number) == "" {
		errors = append(errors, "number is required")
	}

	if req.Capacity <= 0 {
		errors = append(errors, "capacity must be greater than 0")
	}

	return errors
}

func ValidateTableUpdate(ctx context.Context, id uuid.UUID, req TableUpdateRequest) []string {
	var errors []string

	if id == uuid.Nil {
		errors = append(errors, "invalid table id")
	}

	if req.Capacity < 0 {
		errors = append(errors, "capacity cannot be negative")
	}

	return errors
}

func ValidateReservationCreate(ctx context.Context, req CreateReservationRequest) []string {
	var errors []string

	if len(req.TableIDs) == 0 {
		errors = append(errors, "table_ids is required")
	}
	for _, id := range req.TableIDs {
		if id == uuid.Nil {
			errors = append(errors, "table_ids contains an invalid id")
			break
		}
	}

	if _, err := ParseDate(req.Date); err != nil {
		errors = append(errors, "date must be in "+DateFormat+" form")
	}

	if req.SlotID == uuid.Nil {
		errors = append(errors, "slot_id is required")
	}

	if req.GuestCount <= 0 {
		errors = append(errors, "guest_count must be greater than 0")
	}

	if strings.TrimSpace(req.ContactName) == "" {
		errors = append(errors, "contact_name is required")
	}

	if strings.TrimSpace(req.ContactInfo) == "" {
		errors = append(errors, "contact_info is required")
	}

	for _, item := range req.PreOrderItems {
		if item.Quantity <= 0 {
			errors = append(errors, "pre_order_items quantity must be greater than 0")
			break
		}
		if item.Price < 0 {
			errors = append(errors, "pre_order_items price cannot be negative")
			break
		}
	}

	return errors
}
