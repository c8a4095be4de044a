package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthController 存活检查
type HealthController struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewHealthController rdb 可为 nil
func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	return &HealthController{db: db, rdb: rdb}
}

// Check 检查数据库与 Redis
// @Summary 健康检查
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /healthz [get]
func (c *HealthController) Check(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"database": "ok"}
	healthy := true

	sqlDB, err := c.db.DB()
	if err == nil {
		err = sqlDB.PingContext(pingCtx)
	}
	if err != nil {
		status["database"] = err.Error()
		healthy = false
	}

	if c.rdb != nil {
		if err := c.rdb.Ping(pingCtx).Err(); err != nil {
			status["redis"] = err.Error()
			healthy = false
		} else {
			status["redis"] = "ok"
		}
	}

	if !healthy {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"code": 503, "message": "unhealthy", "data": status})
		return
	}
	respondOK(ctx, "ok", status)
}
