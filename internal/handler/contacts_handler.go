package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/cardcrm/internal/dto"
	"github.com/octobees/cardcrm/internal/service"
	"github.com/octobees/cardcrm/internal/service/outreach"
)

// ContactsHandler exposes the contact collection.
type ContactsHandler struct {
	contacts *service.ContactsService
}

// NewContactsHandler wires a handler backed by the contacts service.
func NewContactsHandler(contacts *service.ContactsService) *ContactsHandler {
	return &ContactsHandler{contacts: contacts}
}

// List handles GET /contacts requests.
func (h *ContactsHandler) List(c echo.Context) error {
	return Success(c, http.StatusOK, "", h.contacts.List(c.QueryParam("q")))
}

// Board handles GET /contacts/board requests.
func (h *ContactsHandler) Board(c echo.Context) error {
	return Success(c, http.StatusOK, "", h.contacts.Board())
}

// Create handles POST /contacts requests.
func (h *ContactsHandler) Create(c echo.Context) error {
	var req dto.ContactInput
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	contact, err := h.contacts.Create(c.Request().Context(), req)
	if err != nil {
		return serviceError(c, err, http.StatusInternalServerError, "failed to save contact")
	}
	return Success(c, http.StatusCreated, "contact created", contact)
}

// Get handles GET /contacts/:id requests.
func (h *ContactsHandler) Get(c echo.Context) error {
	contact, err := h.contacts.Get(c.Param("id"))
	if err != nil {
		return serviceError(c, err, http.StatusInternalServerError, "failed to load contact")
	}
	return Success(c, http.StatusOK, "", contact)
}

// Update handles PATCH /contacts/:id requests.
func (h *ContactsHandler) Update(c echo.Context) error {
	var patch dto.ContactPatch
	if err := c.Bind(&patch); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	contact, err := h.contacts.Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return serviceError(c, err, http.StatusInternalServerError, "failed to update contact")
	}
	return Success(c, http.StatusOK, "contact updated", contact)
}

// Delete handles DELETE /contacts/:id requests.
func (h *ContactsHandler) Delete(c echo.Context) error {
	if err := h.contacts.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return serviceError(c, err, http.StatusInternalServerError, "failed to delete contact")
	}
	return Success(c, http.StatusOK, "contact deleted", nil)
}

// Links handles GET /contacts/:id/links requests.
func (h *ContactsHandler) Links(c echo.Context) error {
	rows, err := h.contacts.Links(c.Param("id"))
	if err != nil {
		return serviceError(c, err, http.StatusInternalServerError, "failed to resolve links")
	}
	return Success(c, http.StatusOK, "", rows)
}

// Score handles GET /contacts/:id/score requests.
func (h *ContactsHandler) Score(c echo.Context) error {
	score, err := h.contacts.Score(c.Param("id"))
	if err != nil {
		return serviceError(c, err, http.StatusInternalServerError, "failed to score contact")
	}
	return Success(c, http.StatusOK, "", score)
}

// Send handles POST /contacts/:id/send requests.
func (h *ContactsHandler) Send(c echo.Context) error {
	var req dto.SendRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	result, err := h.contacts.Send(c.Request().Context(), c.Param("id"), req)
	if errors.Is(err, service.ErrNoNumber) {
		return ErrorWithData(c, http.StatusUnprocessableEntity, err.Error(), result)
	}
	if err != nil && result.Decision.Outcome == outreach.OutcomeDispatch {
		// The link is still usable; hand it back so the message is not lost.
		status, ok := statusFor(err)
		if !ok {
			status = http.StatusInternalServerError
		}
		return ErrorWithData(c, status, "message ready but contact not saved", result)
	}
	if err != nil {
		return serviceError(c, err, http.StatusInternalServerError, "failed to route message")
	}
	if result.Decision.Outcome == outreach.OutcomeChoose {
		return Success(c, http.StatusOK, "choose a number", result)
	}
	return Success(c, http.StatusOK, "message ready", result)
}

// Strategy handles POST /contacts/:id/strategy requests.
func (h *ContactsHandler) Strategy(c echo.Context) error {
	contact, err := h.contacts.GenerateStrategy(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(c, err, http.StatusBadGateway, "failed to generate strategy")
	}
	return Success(c, http.StatusOK, "strategy generated", contact)
}
