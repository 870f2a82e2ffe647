package webhook

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/saintvisionai/crm-bridge/internal/sync"
)

// maxBodyBytes bounds inbound webhook bodies. GHL payloads are small; 1 MiB
// is generous.
const maxBodyBytes = 1 << 20

// Receiver accepts inbound GHL webhooks.
//
// The contract favors the sender: a POST is acknowledged with 200 before any
// validation, audit write or store I/O, so delivery success is never coupled
// to processing success. The raw body goes straight to the background worker;
// everything else happens there.
type Receiver struct {
	worker *sync.Worker
	log    *slog.Logger
}

func NewReceiver(worker *sync.Worker, logger *slog.Logger) *Receiver {
	return &Receiver{worker: worker, log: logger}
}

// Register mounts POST /webhooks/ghl. Other methods get 405 from the router.
func (rc *Receiver) Register(r gin.IRoutes) {
	r.POST("/webhooks/ghl", rc.handle)
}

func (rc *Receiver) handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))

	// Acknowledge and flush so the sender holds its receipt even if this
	// process stalls afterwards. Nothing below may alter the response.
	c.JSON(http.StatusOK, gin.H{
		"received":  true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	c.Writer.Flush()

	if err != nil {
		rc.log.Warn("webhook body read failed", slog.String("error", err.Error()))
		return
	}

	t := sync.Task{ID: uuid.NewString(), Raw: body}
	if !rc.worker.TryEnqueue(t) {
		rc.log.Error("webhook queue full, dropping event", slog.String("task", t.ID))
		return
	}
	rc.log.Info("webhook accepted", slog.String("task", t.ID))
}
