package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/middleware"
	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/repository"

	"github.com/gin-gonic/gin"
)

type notificationResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Description string  `json:"description"`
	ReferenceID *string `json:"reference_id"`
	IsRead      bool    `json:"is_read"`
	CreatedAt   string  `json:"created_at"`
}

// NotificationsHandler serves the caller's own notification feed.
type NotificationsHandler struct{ repo repository.NotificationRepository }

func NewNotificationsHandler(repo repository.NotificationRepository) *NotificationsHandler {
	return &NotificationsHandler{repo: repo}
}

func (h *NotificationsHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rows, err := h.repo.ListByAccount(c.Request.Context(), middleware.AccountID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]notificationResponse, 0, len(rows))
	for _, n := range rows {
		r := notificationResponse{
			ID:          n.ID.String(),
			Type:        n.Type,
			Message:     n.Message,
			Description: n.Description,
			IsRead:      n.IsRead,
			CreatedAt:   n.CreatedAt.Format(time.RFC3339),
		}
		if n.ReferenceID != nil {
			ref := n.ReferenceID.String()
			r.ReferenceID = &ref
		}
		out = append(out, r)
	}
	c.JSON(http.StatusOK, out)
}
