package api

import (
	"net/http"
	"time"

	"github.com/avdeev-m/ticketline/internal/domain"
	"github.com/avdeev-m/ticketline/internal/service/events"
	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	service events.EventUseCase
}

func NewEventHandler(service events.EventUseCase) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
}

type eventResponse struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Venue            string `json:"venue"`
	StartDate        string `json:"start_date"`
	TicketPrice      int64  `json:"ticket_price"`
	AvailableTickets int    `json:"available_tickets"`
	Status           string `json:"status"`
}

func toEventResponse(e *domain.Event) eventResponse {
	return eventResponse{
		ID:               e.ID,
		Title:            e.Title,
		Venue:            e.Venue,
		StartDate:        e.StartDate.Format(time.RFC3339),
		TicketPrice:      e.TicketPrice,
		AvailableTickets: e.AvailableTickets,
		Status:           string(e.Status),
	}
}

func (h *EventHandler) list(c *gin.Context) {
	all, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]eventResponse, 0, len(all))
	for i := range all {
		resp = append(resp, toEventResponse(&all[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EventHandler) get(c *gin.Context) {
	event, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEventResponse(event))
}
