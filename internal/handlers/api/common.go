package handlers

import (
	"time"

	"referralhub/internal/middleware"
	"referralhub/internal/utils"
	"referralhub/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// respondError writes err through the response envelope. Internal failures
// are logged here and reach the caller only as a generic 500.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	appErr := utils.AsAppError(err)
	if appErr.Kind == utils.KindInternal {
		log.WithContext(c.Request.Context()).WithError(appErr.Err).
			WithField("endpoint", c.FullPath()).Error("Request failed")
	}
	utils.AppErrorResponse(c, appErr)
}

// identity returns the caller's org and user as set by AuthRequired.
func identity(c *gin.Context) (orgID, userID primitive.ObjectID, ok bool) {
	orgValue, exists := c.Get(middleware.ContextOrgID)
	if !exists {
		utils.UnauthorizedResponse(c)
		return orgID, userID, false
	}
	userValue, exists := c.Get(middleware.ContextUserID)
	if !exists {
		utils.UnauthorizedResponse(c)
		return orgID, userID, false
	}

	orgID, okOrg := orgValue.(primitive.ObjectID)
	userID, okUser := userValue.(primitive.ObjectID)
	if !okOrg || !okUser {
		utils.UnauthorizedResponse(c)
		return orgID, userID, false
	}
	return orgID, userID, true
}

func bindJSON(c *gin.Context, request interface{}) bool {
	if err := c.ShouldBindJSON(request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return false
	}
	return true
}

func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name)
		return id, false
	}
	return id, true
}

func queryObjectID(c *gin.Context, name string) (*primitive.ObjectID, bool) {
	value := c.Query(name)
	if value == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name)
		return nil, false
	}
	return &id, true
}

func queryTime(c *gin.Context, name string) (*time.Time, bool) {
	value := c.Query(name)
	if value == "" {
		return nil, true
	}
	t, err := utils.ParseTimeParam(value)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name)
		return nil, false
	}
	return &t, true
}

func listMeta(params *utils.PaginationParams, total int64, count int) *utils.Meta {
	return &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Total:      total,
		Count:      count,
	}
}
