package controllers

import (
	"github.com/Hosanna-Mosa/c-t-sub002/middleware"
	"github.com/Hosanna-Mosa/c-t-sub002/services"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, svcErr *services.ServiceError) {
	c.JSON(svcErr.StatusCode, gin.H{"success": false, "message": svcErr.Message})
}

func respondBadRequest(c *gin.Context, err error) {
	respondError(c, services.ValidationError(err.Error()))
}

func actorFrom(c *gin.Context) services.Actor {
	return services.Actor{
		UserID:  middleware.GetUserID(c),
		Email:   middleware.GetEmail(c),
		IsAdmin: middleware.IsAdmin(c),
	}
}
