// Package api exposes the statement parser over HTTP.
package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"mepoupeze/fatura-csv/internal/itauparser"
	"mepoupeze/fatura-csv/internal/logging"
	"mepoupeze/fatura-csv/internal/parsererror"
)

var log = logging.GetLogger()

// SetLogger allows setting a custom logger for this package.
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// NewRouter builds the HTTP router: POST /api/v1/parse accepts the extracted
// statement text (multipart "file" field or raw body) and returns the parse
// result; GET /health is the liveness probe.
func NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", handleHealth)

	v1 := router.Group("/api/v1")
	v1.POST("/parse", handleParse)

	return router
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func handleParse(c *gin.Context) {
	reader, cleanup, err := requestBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer cleanup()

	result, err := itauparser.Parse(reader)
	if err != nil {
		var invalid *parsererror.InvalidFormatError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
			return
		}
		log.WithError(err).Error("statement parse failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to parse statement"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// requestBody returns the uploaded statement text: the multipart "file"
// field when present, the raw request body otherwise.
func requestBody(c *gin.Context) (io.Reader, func(), error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Request.Body, func() {}, nil
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, err
	}
	return file, func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close uploaded file")
		}
	}, nil
}
