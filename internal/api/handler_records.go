package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"silant-backend/internal/mw"
	"silant-backend/internal/service"
)

// ListMaintenances handles GET /api/maintenances.
func (h *Handler) ListMaintenances(c *gin.Context) {
	q, page, err := h.listQuery(c, maintenanceFilters)
	if err != nil {
		c.Error(err)
		return
	}
	rows, count, err := h.svc.ListMaintenances(c.Request.Context(), mw.Actor(c), q)
	if err != nil {
		c.Error(err)
		return
	}
	respondPage(c, page, count, mapSlice(rows, newMaintenanceResponse))
}

// GetMaintenance handles GET /api/maintenances/:id.
func (h *Handler) GetMaintenance(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}
	m, err := h.svc.GetMaintenance(c.Request.Context(), mw.Actor(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newMaintenanceResponse(m))
}

// CreateMaintenance handles POST /api/maintenances.
func (h *Handler) CreateMaintenance(c *gin.Context) {
	var in service.MaintenanceInput
	if err := bindJSON(c, &in); err != nil {
		c.Error(err)
		return
	}
	m, err := h.svc.CreateMaintenance(c.Request.Context(), mw.Actor(c), in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, newMaintenanceResponse(m))
}

// UpdateMaintenance handles PUT and PATCH /api/maintenances/:id.
func (h *Handler) UpdateMaintenance(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}
	var in service.MaintenanceInput
	if err := bindJSON(c, &in); err != nil {
		c.Error(err)
		return
	}
	m, err := h.svc.UpdateMaintenance(c.Request.Context(), mw.Actor(c), id, in, isPatch(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newMaintenanceResponse(m))
}

// DeleteMaintenance handles DELETE /api/maintenances/:id.
func (h *Handler) DeleteMaintenance(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}
	if err := h.svc.DeleteMaintenance(c.Request.Context(), mw.Actor(c), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListComplaints handles GET /api/complaints.
func (h *Handler) ListComplaints(c *gin.Context) {
	q, page, err := h.listQuery(c, complaintFilters)
	if err != nil {
		c.Error(err)
		return
	}
	rows, count, err := h.svc.ListComplaints(c.Request.Context(), mw.Actor(c), q)
	if err != nil {
		c.Error(err)
		return
	}
	respondPage(c, page, count, mapSlice(rows, newComplaintResponse))
}

// GetComplaint handles GET /api/complaints/:id.
func (h *Handler) GetComplaint(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}
	cm, err := h.svc.GetComplaint(c.Request.Context(), mw.Actor(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newComplaintResponse(cm))
}

// CreateComplaint handles POST /api/complaints.
func (h *Handler) CreateComplaint(c *gin.Context) {
	var in service.ComplaintInput
	if err := bindJSON(c, &in); err != nil {
		c.Error(err)
		return
	}
	cm, err := h.svc.CreateComplaint(c.Request.Context(), mw.Actor(c), in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, newComplaintResponse(cm))
}

// UpdateComplaint handles PUT and PATCH /api/complaints/:id.
func (h *Handler) UpdateComplaint(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}
	var in service.ComplaintInput
	if err := bindJSON(c, &in); err != nil {
		c.Error(err)
		return
	}
	cm, err := h.svc.UpdateComplaint(c.Request.Context(), mw.Actor(c), id, in, isPatch(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newComplaintResponse(cm))
}

// DeleteComplaint handles DELETE /api/complaints/:id.
func (h *Handler) DeleteComplaint(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.Error(err)
		return
	}
	if err := h.svc.DeleteComplaint(c.Request.Context(), mw.Actor(c), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
