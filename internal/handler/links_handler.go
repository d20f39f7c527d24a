package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/cardcrm/internal/entity"
	"github.com/octobees/cardcrm/internal/service"
	"github.com/octobees/cardcrm/internal/service/links"
	"github.com/octobees/cardcrm/internal/service/phone"
)

// LinksHandler exposes the stateless helpers: link resolution, number normalization and templates.
type LinksHandler struct {
	contacts *service.ContactsService
}

// NewLinksHandler wires a handler backed by the contacts service.
func NewLinksHandler(contacts *service.ContactsService) *LinksHandler {
	return &LinksHandler{contacts: contacts}
}

type resolveResponse struct {
	Type  entity.ChannelType `json:"type"`
	Value string             `json:"value"`
	URI   string             `json:"uri"`
}

// Resolve handles GET /links/resolve?type=&value= requests.
func (h *LinksHandler) Resolve(c echo.Context) error {
	channel, ok := entity.ParseChannelType(strings.ToLower(strings.TrimSpace(c.QueryParam("type"))))
	if !ok {
		return Error(c, http.StatusBadRequest, "unknown link type")
	}
	value := c.QueryParam("value")
	uri, ok := links.Resolve(channel, value)
	if !ok {
		return Error(c, http.StatusUnprocessableEntity, "value does not resolve to a link")
	}
	return Success(c, http.StatusOK, "", resolveResponse{Type: channel, Value: value, URI: uri})
}

// Normalize handles GET /phones/normalize?value= requests.
func (h *LinksHandler) Normalize(c echo.Context) error {
	value := c.QueryParam("value")
	if strings.TrimSpace(value) == "" {
		return Error(c, http.StatusBadRequest, "value is required")
	}
	return Success(c, http.StatusOK, "", phone.Candidates(value))
}

// Templates handles GET /templates requests.
func (h *LinksHandler) Templates(c echo.Context) error {
	return Success(c, http.StatusOK, "", h.contacts.Templates())
}
