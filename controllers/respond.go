package controllers

import (
	"net/http"
	"strconv"

	"marketplace-service/services"

	"github.com/gin-gonic/gin"
)

// respondError writes the structured failure envelope: success flag,
// human message, machine-readable kind, plus any actionable context the
// service attached.
func respondError(c *gin.Context, err *services.ServiceError) {
	body := gin.H{
		"success": false,
		"error":   string(err.Kind),
		"message": err.Message,
	}
	for k, v := range err.Details {
		body[k] = v
	}
	c.JSON(err.StatusCode, body)
}

func respondOK(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{
		"success": true,
		"message": message,
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

func respondInvalidPayload(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   string(services.KindValidation),
		"message": "Invalid request payload",
		"details": err.Error(),
	})
}

// parsePaginationParams extracts and validates pagination parameters
func parsePaginationParams(c *gin.Context) (int, int) {
	const MaxLimit = 100
	const DefaultPage = 1
	const DefaultLimit = 10

	pageInt := DefaultPage
	limitInt := DefaultLimit

	if p, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && p > 0 {
		pageInt = p
	}
	if l, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil && l > 0 {
		limitInt = l
		if limitInt > MaxLimit {
			limitInt = MaxLimit
		}
	}

	return pageInt, limitInt
}

// parseLimitOffset extracts limit/offset parameters for the admin listing.
func parseLimitOffset(c *gin.Context) (int, int) {
	const MaxLimit = 100

	limit := 20
	offset := 0

	if l, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && l > 0 {
		limit = l
		if limit > MaxLimit {
			limit = MaxLimit
		}
	}
	if o, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && o >= 0 {
		offset = o
	}

	return limit, offset
}
