package http

import (
	"net/http"

	"github.com/payrollhq/payrun-backend-go/internal/handler/http/response"
	catalogService "github.com/payrollhq/payrun-backend-go/internal/service/catalog"
)

type CatalogHandler interface {
	ListComponents(w http.ResponseWriter, r *http.Request)
}

type catalogHandlerImpl struct {
	catalog *catalogService.Service
}

func NewCatalogHandler(catalog *catalogService.Service) CatalogHandler {
	return &catalogHandlerImpl{catalog: catalog}
}

func (h *catalogHandlerImpl) ListComponents(w http.ResponseWriter, r *http.Request) {
	components, degraded := h.catalog.List(r.Context())
	response.SuccessWithMeta(w, components, &response.Meta{Degraded: degraded})
}
