package controllers

import (
	"context"
	"net/http"
	"time"

	dbpkg "mindmeld/db"

	"github.com/gin-gonic/gin"
)

// GET /health
func Health(c *gin.Context) {
	store := dbpkg.StoreInstance(c)
	if store == nil {
		RespondError(c, "round store não configurado no contexto", http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		RespondError(c, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	RespondSuccess(c, gin.H{"status": "ok"})
}
