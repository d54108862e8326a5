package handlers

import (
	"brokerage-app-server/internal/engine"
	"brokerage-app-server/internal/middleware"
	"brokerage-app-server/internal/models"
	"brokerage-app-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// ClientHandler handles client pipeline requests.
type ClientHandler struct {
	Engine *engine.Engine
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(eng *engine.Engine) *ClientHandler {
	return &ClientHandler{Engine: eng}
}

func actorFromContext(c *gin.Context) (engine.Actor, bool) {
	userID, okID := middleware.GetUserIDFromContext(c)
	role, okRole := middleware.GetUserRoleFromContext(c)
	if !okID || !okRole {
		utils.Unauthorized(c, "User not authenticated")
		return engine.Actor{}, false
	}
	return engine.Actor{ID: userID, Role: role}, true
}

// IntakeRequest represents the public intake form payload.
type IntakeRequest struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName"`
	Email       string `json:"email" binding:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber"`
	Origin      string `json:"origin"`
	Notes       string `json:"notes"`
}

// CreatePendingClient handles the public intake form. No authentication:
// this is the website contact funnel. The client lands in Pending with no
// broker until the back office assigns one.
func (h *ClientHandler) CreatePendingClient(c *gin.Context) {
	var req IntakeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	client, err := h.Engine.CreatePendingClient(engine.ClientIntake{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Origin:      req.Origin,
		Notes:       req.Notes,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}

	utils.Created(c, "Client created successfully", client)
}

// CreateClientRequest represents the staff client creation payload.
type CreateClientRequest struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName"`
	Email       string `json:"email" binding:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber"`
	Origin      string `json:"origin"`
	Notes       string `json:"notes"`
	BrokerID    string `json:"brokerId"`
}

// CreateClient handles staff creating a client directly (skipping intake).
func (h *ClientHandler) CreateClient(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req CreateClientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	client, err := h.Engine.CreateStaffClient(engine.ClientIntake{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Origin:      req.Origin,
		Notes:       req.Notes,
	}, req.BrokerID, actor)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	utils.Created(c, "Client created successfully", client)
}

// GetClients handles listing clients for the acting staff member.
func (h *ClientHandler) GetClients(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	filter := engine.ClientFilter{
		Status: models.ClientStatus(c.Query("status")),
		Origin: c.Query("origin"),
	}
	clients, err := h.Engine.ListClients(filter, actor)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	utils.Success(c, "Clients fetched successfully", clients)
}

// GetClientByID handles fetching a single client.
func (h *ClientHandler) GetClientByID(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	client, err := h.Engine.GetClient(c.Param("id"), actor)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	utils.Success(c, "Client fetched successfully", client)
}

// AssignBrokerRequest represents the broker assignment payload.
type AssignBrokerRequest struct {
	BrokerID string `json:"brokerId" binding:"required,uuid"`
}

// AssignBroker handles assigning a broker to a pending client.
func (h *ClientHandler) AssignBroker(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req AssignBrokerRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	client, err := h.Engine.AssignBroker(c.Param("id"), req.BrokerID, actor)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	utils.Success(c, "Broker assigned successfully", client)
}

// UpdateClientStatusRequest represents the kanban move payload.
type UpdateClientStatusRequest struct {
	Status models.ClientStatus `json:"status" binding:"required"`
}

// UpdateClientStatus handles moving a client between pipeline stages.
func (h *ClientHandler) UpdateClientStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req UpdateClientStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	client, err := h.Engine.SetClientStatus(c.Param("id"), req.Status, actor)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	utils.Success(c, "Client status updated successfully", client)
}

// DeleteClient handles deleting a client with its documents and appointments.
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	if err := h.Engine.DeleteClient(c.Param("id"), actor); err != nil {
		writeEngineError(c, err)
		return
	}

	utils.Success(c, "Client deleted successfully", nil)
}

// ResyncSchedulingStatus re-issues the scheduling status mirror for one
// client. The recovery path after a reported partial sync.
func (h *ClientHandler) ResyncSchedulingStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	client, err := h.Engine.ResyncSchedulingStatus(c.Param("id"), actor)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	utils.Success(c, "Scheduling status resynced successfully", client)
}
