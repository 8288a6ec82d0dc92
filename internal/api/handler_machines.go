package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"silant-backend/internal/apperr"
	"silant-backend/internal/mw"
	"silant-backend/internal/service"
)

// ListMachines handles GET /api/machines.
func (h *Handler) ListMachines(c *gin.Context) {
	q, page, err := h.listQuery(c, machineFilters)
	if err != nil {
		c.Error(err)
		return
	}
	rows, count, err := h.svc.ListMachines(c.Request.Context(), mw.Actor(c), q)
	if err != nil {
		c.Error(err)
		return
	}
	respondPage(c, page, count, mapSlice(rows, newMachineResponse))
}

// GetMachine handles GET /api/machines/:id.
func (h *Handler) GetMachine(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}
	m, err := h.svc.GetMachine(c.Request.Context(), mw.Actor(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newMachineResponse(m))
}

// CreateMachine handles POST /api/machines.
func (h *Handler) CreateMachine(c *gin.Context) {
	var in service.MachineInput
	if err := bindJSON(c, &in); err != nil {
		c.Error(err)
		return
	}
	m, err := h.svc.CreateMachine(c.Request.Context(), mw.Actor(c), in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, newMachineResponse(m))
}

// UpdateMachine handles PUT and PATCH /api/machines/:id.
func (h *Handler) UpdateMachine(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}
	var in service.MachineInput
	if err := bindJSON(c, &in); err != nil {
		c.Error(err)
		return
	}
	m, err := h.svc.UpdateMachine(c.Request.Context(), mw.Actor(c), id, in, isPatch(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newMachineResponse(m))
}

// DeleteMachine handles DELETE /api/machines/:id.
func (h *Handler) DeleteMachine(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}
	if err := h.svc.DeleteMachine(c.Request.Context(), mw.Actor(c), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SearchMachine handles the anonymous GET /api/machines/search. Only the
// technical specification of the machine is ever returned.
func (h *Handler) SearchMachine(c *gin.Context) {
	spec, err := h.svc.SearchMachine(c.Request.Context(), c.Query("serial_number"))
	if err != nil {
		if appErr := apperr.From(err); appErr.Code == apperr.CodeValidation {
			c.JSON(http.StatusBadRequest, gin.H{"error": service.MsgSerialRequired})
			return
		}
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, spec)
}

func isPatch(c *gin.Context) bool {
	return c.Request.Method == http.MethodPatch
}
