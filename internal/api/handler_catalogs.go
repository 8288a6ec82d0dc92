package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"silant-backend/internal/model"
	"silant-backend/internal/mw"
)

// catalogPath is the collection path of a catalog kind, e.g.
// "service_type" -> "/service_types".
func catalogPath(kind model.CatalogKind) string {
	return "/" + string(kind) + "s"
}

// ListCatalog returns a handler for GET on a catalog collection.
func (h *Handler) ListCatalog(kind model.CatalogKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := h.svc.ListCatalog(c.Request.Context(), mw.Actor(c), kind)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

// GetCatalogEntry returns a handler for GET on one catalog entry.
func (h *Handler) GetCatalogEntry(kind model.CatalogKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			c.Error(err)
			return
		}
		e, err := h.svc.GetCatalogEntry(c.Request.Context(), mw.Actor(c), kind, id)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, e)
	}
}
