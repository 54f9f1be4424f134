package http

import (
	"context"
	"net/http"

	"github.com/MKhiriev/go-pseudo-ledger/internal/utils"
	"github.com/MKhiriev/go-pseudo-ledger/models"
)

type assignmentBody struct {
	Participant string `json:"participant"`
	Item        string `json:"item"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Key         string `json:"key,omitempty"`
}

type paymentBody struct {
	Amount int64                `json:"amount"`
	Method models.PaymentMethod `json:"method,omitempty"`
}

type quantityBody struct {
	Quantity int64 `json:"quantity"`
}

func (h *Handler) recordAssignment(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		writeError(w, r, err, "*Handler.recordAssignment")
		return
	}

	var body assignmentBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err, "*Handler.recordAssignment")
		return
	}

	key, err := decodeKey(body.Key)
	if err != nil {
		writeError(w, r, err, "*Handler.recordAssignment")
		return
	}

	assignment, err := h.services.LedgerService.RecordAssignment(r.Context(), models.AssignmentRequest{
		GroupID:     groupID,
		Participant: body.Participant,
		Item:        body.Item,
		Quantity:    body.Quantity,
		UnitPrice:   body.UnitPrice,
		Key:         key,
	})
	if err != nil {
		writeError(w, r, err, "*Handler.recordAssignment")
		return
	}

	utils.WriteJSON(w, assignment, http.StatusCreated)
}

func (h *Handler) listAssignments(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		writeError(w, r, err, "*Handler.listAssignments")
		return
	}

	assignments, err := h.services.LedgerService.ListAssignments(r.Context(), groupID)
	if err != nil {
		writeError(w, r, err, "*Handler.listAssignments")
		return
	}

	utils.WriteJSON(w, assignments, http.StatusOK)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	assignmentID, err := pathID(r, "assignmentID")
	if err != nil {
		writeError(w, r, err, "*Handler.listPayments")
		return
	}

	payments, err := h.services.LedgerService.ListPayments(r.Context(), assignmentID)
	if err != nil {
		writeError(w, r, err, "*Handler.listPayments")
		return
	}

	utils.WriteJSON(w, payments, http.StatusOK)
}

func (h *Handler) ledgerSummary(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		writeError(w, r, err, "*Handler.ledgerSummary")
		return
	}

	summary, err := h.services.LedgerService.GetLedgerSummary(r.Context(), groupID)
	if err != nil {
		writeError(w, r, err, "*Handler.ledgerSummary")
		return
	}

	utils.WriteJSON(w, summary, http.StatusOK)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	h.payment(w, r, "*Handler.recordPayment", h.services.LedgerService.RecordPayment)
}

func (h *Handler) recordRefund(w http.ResponseWriter, r *http.Request) {
	h.payment(w, r, "*Handler.recordRefund", h.services.LedgerService.RecordRefund)
}

func (h *Handler) payment(w http.ResponseWriter, r *http.Request, funcName string,
	record func(ctx context.Context, req models.PaymentRequest) (models.PaymentResult, error)) {
	assignmentID, err := pathID(r, "assignmentID")
	if err != nil {
		writeError(w, r, err, funcName)
		return
	}

	var body paymentBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err, funcName)
		return
	}

	result, err := record(r.Context(), models.PaymentRequest{
		AssignmentID: assignmentID,
		Amount:       body.Amount,
		Method:       body.Method,
	})
	if err != nil {
		writeError(w, r, err, funcName)
		return
	}

	utils.WriteJSON(w, result, http.StatusCreated)
}

func (h *Handler) recordConsumption(w http.ResponseWriter, r *http.Request) {
	assignmentID, err := pathID(r, "assignmentID")
	if err != nil {
		writeError(w, r, err, "*Handler.recordConsumption")
		return
	}

	var body quantityBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err, "*Handler.recordConsumption")
		return
	}

	assignment, err := h.services.LedgerService.RecordConsumption(r.Context(), models.ConsumptionRequest{
		AssignmentID: assignmentID,
		Quantity:     body.Quantity,
	})
	if err != nil {
		writeError(w, r, err, "*Handler.recordConsumption")
		return
	}

	utils.WriteJSON(w, assignment, http.StatusOK)
}

func (h *Handler) amendAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID, err := pathID(r, "assignmentID")
	if err != nil {
		writeError(w, r, err, "*Handler.amendAssignment")
		return
	}

	var body quantityBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err, "*Handler.amendAssignment")
		return
	}

	assignment, err := h.services.LedgerService.AmendAssignment(r.Context(), models.AmendRequest{
		AssignmentID: assignmentID,
		Quantity:     body.Quantity,
	})
	if err != nil {
		writeError(w, r, err, "*Handler.amendAssignment")
		return
	}

	utils.WriteJSON(w, assignment, http.StatusOK)
}
