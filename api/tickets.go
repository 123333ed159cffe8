package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/avdeev-m/ticketline/internal/domain"
	"github.com/avdeev-m/ticketline/internal/service/tickets"
	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	service tickets.TicketUseCase
}

func NewTicketHandler(service tickets.TicketUseCase) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) Register(router *gin.RouterGroup) {
	router.POST("/scan", h.scan)
	router.PUT("/:id/reminder", h.updateReminder)
	router.GET("/:id", h.get)
}

type scanRequest struct {
	QRData string `json:"qr_data"`
}

type updateReminderRequest struct {
	Reminder domain.ReminderOffset `json:"reminder"`
}

type ticketResponse struct {
	ID             string `json:"id"`
	TicketNumber   string `json:"ticket_number"`
	EventID        string `json:"event_id"`
	Status         string `json:"status"`
	Price          int64  `json:"price"`
	ReminderOffset string `json:"reminder"`
	ScannedAt      string `json:"scanned_at,omitempty"`
}

func toTicketResponse(t *domain.Ticket) ticketResponse {
	resp := ticketResponse{
		ID:             t.ID,
		TicketNumber:   t.TicketNumber,
		EventID:        t.EventID,
		Status:         string(t.Status),
		Price:          t.Price,
		ReminderOffset: string(t.ReminderOffset),
	}
	if t.ScannedAt != nil {
		resp.ScannedAt = t.ScannedAt.Format(time.RFC3339)
	}
	return resp
}

func (h *TicketHandler) scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.service.ScanTicket(c.Request.Context(), req.QRData)
	if err != nil {
		if errors.Is(err, domain.ErrTicketAlreadyUsed) && ticket != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "ticket": toTicketResponse(ticket)})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTicketResponse(ticket))
}

func (h *TicketHandler) updateReminder(c *gin.Context) {
	var req updateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.service.UpdateReminder(c.Request.Context(), c.Param("id"), req.Reminder)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTicketResponse(ticket))
}

func (h *TicketHandler) get(c *gin.Context) {
	ticket, err := h.service.GetByNumber(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTicketResponse(ticket))
}
