package v1

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/apperror"
)

// actorFrom reads the identity AuthMiddleware stored on the context.
func actorFrom(c *gin.Context) domain.Actor {
	id, _ := c.Get(string(domain.KeyUserID))
	userID, _ := id.(int64)
	return domain.Actor{
		ID:   userID,
		Role: domain.Role(c.GetString(string(domain.KeyUserRole))),
	}
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest("Invalid " + name)
	}
	return id, nil
}

// queryID parses a required positive integer query parameter.
func queryID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest("Invalid or missing " + name)
	}
	return id, nil
}

// bindJSON binds the body, reporting failures as bad requests.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperror.BadRequest("Invalid request body: " + err.Error())
	}
	return nil
}
