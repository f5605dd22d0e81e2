package controllers

import (
	"context"
	"net/http"
	"time"

	"vetclinic-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	db *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

// Health reports whether the database answers within two seconds.
func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := hc.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	utils.RespondWithData(c, http.StatusOK, "", gin.H{"status": "ok", "time": time.Now().UTC()})
}
