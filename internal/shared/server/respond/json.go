package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status. API payloads carry
// answer keys and scores, so they are never cached by intermediaries.
func JSON(c *gin.Context, status int, payload any) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Created writes a 201 Created JSON response.
func Created(c *gin.Context, payload any) {
	JSON(c, http.StatusCreated, payload)
}
