package provision

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saintvisionai/crm-bridge/internal/billing"
	"github.com/saintvisionai/crm-bridge/internal/ghl"
)

// RegisterRoutes mounts POST /api/provision on an authenticated route group.
func RegisterRoutes(r gin.IRoutes, p *Provisioner) {
	r.POST("/api/provision", func(c *gin.Context) {
		var req Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "invalid request body",
				"message": err.Error(),
			})
			return
		}

		result, err := p.Provision(c.Request.Context(), req)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ghl.ErrDisabled) || errors.Is(err, billing.ErrDisabled) {
				status = http.StatusServiceUnavailable
			}
			c.JSON(status, gin.H{
				"success": false,
				"error":   err.Error(),
				"message": "provisioning failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"result":  result,
			"message": "client provisioned",
		})
	})
}
