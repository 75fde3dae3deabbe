package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"careagenda/internal/agenda"
	"careagenda/internal/agendaerrors"
)

// APIResponse is the uniform envelope of every route.
type APIResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message,omitempty"`
	Data     interface{}      `json:"data,omitempty"`
	Error    string           `json:"error,omitempty"`
	Conflict *agenda.Conflict `json:"conflict,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data: gin.H{
			"status": "ok",
			"uptime": time.Since(s.startTime).String(),
		},
	})
}

func (s *Server) handlePrepare(c *gin.Context) {
	var req agenda.PrepareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "requete invalide: " + err.Error()})
		return
	}

	result, err := s.service.Prepare(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: result})
}

func (s *Server) handleConfirm(c *gin.Context) {
	var req agenda.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "requete invalide: " + err.Error()})
		return
	}

	outcome, err := s.service.Confirm(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, "confirm", err)
		return
	}
	if outcome.Conflict != nil {
		c.JSON(http.StatusConflict, APIResponse{
			Success:  false,
			Message:  outcome.Conflict.Message,
			Conflict: outcome.Conflict,
		})
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: outcome.Committed})
}

func (s *Server) handleUpdate(c *gin.Context) {
	var req agenda.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "requete invalide: " + err.Error()})
		return
	}

	eventID, err := s.service.Update(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, "update", err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: gin.H{"eventId": eventID}})
}

func (s *Server) handleCancel(c *gin.Context) {
	var req agenda.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Error: "requete invalide: " + err.Error()})
		return
	}

	eventID, err := s.service.Cancel(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, "cancel", err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: gin.H{"eventId": eventID}})
}

// writeError maps the typed taxonomy onto HTTP statuses. Unclassified
// errors are treated as caller mistakes, not upstream faults.
func (s *Server) writeError(c *gin.Context, operation string, err error) {
	status := http.StatusBadRequest
	switch {
	case agendaerrors.IsEventNotFound(err):
		status = http.StatusNotFound
	case agendaerrors.IsCommitFailure(err):
		status = http.StatusBadGateway
	}
	s.logger.Warn("%s failed: %v", operation, err)
	c.JSON(status, APIResponse{Success: false, Error: err.Error()})
}
