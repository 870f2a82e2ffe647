package provision

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/saintvisionai/crm-bridge/internal/billing"
	"github.com/saintvisionai/crm-bridge/internal/ghl"
	"github.com/saintvisionai/crm-bridge/internal/models"
	"github.com/saintvisionai/crm-bridge/internal/store"
)

// Request describes the client to provision.
type Request struct {
	SubscriptionID string `json:"subscriptionId" binding:"required"`
	Plan           string `json:"plan" binding:"required"`
	CompanyName    string `json:"companyName" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone"`
	Timezone       string `json:"timezone"`
	CustomDomain   string `json:"customDomain"`
	UserID         string `json:"userId" binding:"required"`
}

// Result reports what was created.
type Result struct {
	WorkspaceID   string     `json:"workspaceId"`
	GHLLocationID string     `json:"ghlLocationId"`
	APIKeyID      string     `json:"apiKeyId"`
	Limits        PlanLimits `json:"limits"`
}

// Provisioner runs the linear client-provisioning sequence: verify payment,
// resolve plan limits, create the GHL sub-account, mint a scoped API key,
// persist the local record, optionally register a custom domain, then send a
// welcome notification.
//
// The first failing step aborts the rest. Completed side effects are NOT
// rolled back; each is logged with its external id so operators can clean up
// by hand. (A sub-account created before a later failure stays created.)
type Provisioner struct {
	store    store.Store
	ghl      ghl.API
	billing  billing.Verifier
	agencyID string
	log      *slog.Logger
}

func New(st store.Store, api ghl.API, verifier billing.Verifier, agencyID string, logger *slog.Logger) *Provisioner {
	return &Provisioner{
		store:    st,
		ghl:      api,
		billing:  verifier,
		agencyID: agencyID,
		log:      logger,
	}
}

func (p *Provisioner) Provision(ctx context.Context, req Request) (Result, error) {
	// Step 1: payment must be in good standing before anything is created.
	sub, err := p.billing.VerifySubscription(ctx, req.SubscriptionID)
	if err != nil {
		return Result{}, fmt.Errorf("verify subscription: %w", err)
	}
	if !sub.Active {
		return Result{}, fmt.Errorf("subscription %s is %s, not active", sub.ID, sub.Status)
	}

	// Step 2: plan limits come from the fixed table.
	limits, err := LimitsFor(req.Plan)
	if err != nil {
		return Result{}, err
	}

	// Step 3: create the sub-account on GHL.
	location, err := p.ghl.CreateSubAccount(ctx, ghl.SubAccountRequest{
		CompanyID: p.agencyID,
		Name:      req.CompanyName,
		Email:     req.Email,
		Phone:     req.Phone,
		Timezone:  req.Timezone,
	})
	if err != nil {
		return Result{}, fmt.Errorf("create sub-account: %w", err)
	}
	p.log.Info("sub-account created",
		slog.String("location", location.ID), slog.String("plan", req.Plan))

	// Step 4: mint a location-scoped API key.
	key, err := p.ghl.CreateAPIKey(ctx, location.ID, req.CompanyName+" integration")
	if err != nil {
		return Result{}, fmt.Errorf("create api key (sub-account %s left in place): %w", location.ID, err)
	}
	p.log.Info("api key created",
		slog.String("location", location.ID), slog.String("key_id", key.ID))

	// Step 5: persist the local client record.
	workspaceID := uuid.NewString()
	if err := p.store.InsertClientAccount(ctx, models.ClientAccount{
		WorkspaceID:   workspaceID,
		Plan:          limits.Plan,
		GHLLocationID: location.ID,
		Status:        "active",
	}); err != nil {
		return Result{}, fmt.Errorf("persist client record (sub-account %s left in place): %w", location.ID, err)
	}

	// Step 6: optional custom domain.
	if req.CustomDomain != "" {
		if err := p.ghl.RegisterDomain(ctx, location.ID, req.CustomDomain); err != nil {
			return Result{}, fmt.Errorf("register domain (sub-account %s left in place): %w", location.ID, err)
		}
	}

	// Step 7: welcome notification.
	if err := p.store.InsertNotification(ctx, models.Notification{
		UserID:  req.UserID,
		Type:    models.NotificationWelcome,
		Title:   "Welcome aboard",
		Message: fmt.Sprintf("Your %s workspace is ready.", req.CompanyName),
		Data:    map[string]any{"workspace_id": workspaceID, "plan": limits.Plan},
	}); err != nil {
		// The client is provisioned at this point; a missed welcome note is
		// not worth failing the whole flow over.
		p.log.Error("welcome notification failed", slog.String("error", err.Error()))
	}

	return Result{
		WorkspaceID:   workspaceID,
		GHLLocationID: location.ID,
		APIKeyID:      key.ID,
		Limits:        limits,
	}, nil
}
