package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tivrax/storefront/middleware"
	"github.com/tivrax/storefront/services"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

func respondError(ctx *gin.Context, err *services.ServiceError) {
	body := gin.H{"error": err.Message}
	if len(err.Fields) > 0 {
		body["fields"] = err.Fields
	}
	ctx.JSON(err.StatusCode, body)
}

// currentUser writes a 401 and returns false when no user is on the context.
func currentUser(ctx *gin.Context) (string, bool) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}

func uuidParam(ctx *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + label + " ID format"})
		return uuid.Nil, false
	}
	return id, true
}

// parsePaginationParams extracts and validates pagination parameters
func parsePaginationParams(ctx *gin.Context) (int, int) {
	pageInt := DefaultPage
	limitInt := DefaultLimit

	if p, err := strconv.Atoi(ctx.DefaultQuery("page", "1")); err == nil && p > 0 {
		pageInt = p
	}
	if l, err := strconv.Atoi(ctx.DefaultQuery("limit", "10")); err == nil && l > 0 {
		limitInt = l
	}
	if limitInt > MaxLimit {
		limitInt = MaxLimit
	}
	return pageInt, limitInt
}
