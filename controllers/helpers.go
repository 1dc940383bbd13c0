package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ParamUUID lê um parâmetro de rota que precisa ser um uuid.
func ParamUUID(c *gin.Context, name string) (string, bool) {
	v := c.Param(name)
	if v == "" {
		RespondError(c, name+" is required", http.StatusBadRequest)
		return "", false
	}
	id, err := uuid.Parse(v)
	if err != nil {
		RespondError(c, name+" is not a valid id", http.StatusBadRequest)
		return "", false
	}
	return id.String(), true
}
