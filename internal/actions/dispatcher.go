package actions

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saintvisionai/crm-bridge/internal/auth"
	"github.com/saintvisionai/crm-bridge/internal/ghl"
)

// Dispatcher maps an `action` query parameter onto exactly one outbound GHL
// call and reshapes the result into a uniform {success, ...} envelope.
// No action composes multiple CRM operations.
type Dispatcher struct {
	ghl ghl.API
	log *slog.Logger
}

func NewDispatcher(api ghl.API, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{ghl: api, log: logger}
}

// Register mounts POST /api/crm on an authenticated route group.
func (d *Dispatcher) Register(r gin.IRoutes) {
	r.POST("/api/crm", d.handle)
}

type createContactRequest struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Notes      string `json:"notes"`
	Source     string `json:"source"`
	LocationID string `json:"locationId" binding:"required"`
}

type createOpportunityRequest struct {
	Title      string  `json:"title" binding:"required"`
	Value      float64 `json:"value"`
	ContactID  string  `json:"contactId"`
	LocationID string  `json:"locationId" binding:"required"`
	PipelineID string  `json:"pipelineId"`
	StageID    string  `json:"stageId"`
}

type logConversationRequest struct {
	ContactID string `json:"contactId" binding:"required"`
	Summary   string `json:"summary" binding:"required"`
}

type sendMessageRequest struct {
	ContactID string `json:"contactId" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

func (d *Dispatcher) handle(c *gin.Context) {
	action := c.Query("action")
	d.log.Info("action requested",
		slog.String("action", action), slog.String("caller", auth.CallerID(c)))
	switch action {
	case "create-contact":
		d.createContact(c)
	case "create-opportunity":
		d.createOpportunity(c)
	case "log-conversation":
		d.logConversation(c)
	case "send-message":
		d.sendMessage(c)
	case "get-locations":
		d.getLocations(c)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("unknown action %q", action),
		})
	}
}

func (d *Dispatcher) createContact(c *gin.Context) {
	var req createContactRequest
	if !bindJSON(c, &req) {
		return
	}
	contact, err := d.ghl.CreateContact(c.Request.Context(), ghl.Contact{
		LocationID: req.LocationID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Source:     req.Source,
	})
	if err != nil {
		d.fail(c, "create-contact", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"contact": contact,
		"message": "contact created",
	})
}

func (d *Dispatcher) createOpportunity(c *gin.Context) {
	var req createOpportunityRequest
	if !bindJSON(c, &req) {
		return
	}
	opp, err := d.ghl.CreateOpportunity(c.Request.Context(), ghl.Opportunity{
		LocationID:    req.LocationID,
		PipelineID:    req.PipelineID,
		StageID:       req.StageID,
		Name:          req.Title,
		MonetaryValue: req.Value,
		ContactID:     req.ContactID,
		Status:        "open",
	})
	if err != nil {
		d.fail(c, "create-opportunity", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"opportunity": opp,
		"message":     "opportunity created",
	})
}

// logConversation records a conversation summary as a completed CRM task on
// the contact, which is how the upstream platform keeps call notes.
func (d *Dispatcher) logConversation(c *gin.Context) {
	var req logConversationRequest
	if !bindJSON(c, &req) {
		return
	}
	task, err := d.ghl.CreateTask(c.Request.Context(), ghl.Task{
		ContactID: req.ContactID,
		Title:     "Conversation log",
		Body:      req.Summary,
		Completed: true,
	})
	if err != nil {
		d.fail(c, "log-conversation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task":    task,
		"message": "conversation logged",
	})
}

func (d *Dispatcher) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := d.ghl.SendSMS(c.Request.Context(), req.ContactID, req.Message); err != nil {
		d.fail(c, "send-message", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "message sent",
	})
}

func (d *Dispatcher) getLocations(c *gin.Context) {
	locations, err := d.ghl.GetLocations(c.Request.Context())
	if err != nil {
		d.fail(c, "get-locations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"locations": locations,
	})
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "invalid request body",
			"message": err.Error(),
		})
		return false
	}
	return true
}

// fail converts a GHL client error into the uniform failure envelope.
// API errors keep their upstream status text; everything else is a 500.
func (d *Dispatcher) fail(c *gin.Context, action string, err error) {
	d.log.Error("action failed",
		slog.String("action", action), slog.String("error", err.Error()))

	status := http.StatusInternalServerError
	var apiErr *ghl.APIError
	if errors.Is(err, ghl.ErrDisabled) {
		status = http.StatusServiceUnavailable
	} else if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
		"message": fmt.Sprintf("%s failed", action),
	})
}
