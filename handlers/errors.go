package handlers

import (
	"errors"
	"net/http"

	"proposalforge-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var statusByKind = map[service.ErrorKind]int{
	service.KindValidation: http.StatusBadRequest,
	service.KindAuth:       http.StatusUnauthorized,
	service.KindQuota:      http.StatusForbidden,
	service.KindNotFound:   http.StatusNotFound,
	service.KindUpstream:   http.StatusInternalServerError,
	service.KindInternal:   http.StatusInternalServerError,
}

// respondError writes err as {"error": message}. Upstream and internal
// detail is logged and never sent to the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		errors.As(service.NewInternalError(err), &svcErr)
	}

	status, ok := statusByKind[svcErr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.String("kind", string(svcErr.Kind)),
		zap.Int("status", status),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", append(fields, zap.Error(err))...)
	} else {
		logger.Debug("request rejected", append(fields, zap.String("reason", svcErr.Message))...)
	}

	body := gin.H{"error": svcErr.Message}
	if svcErr.Field != "" {
		body["field"] = svcErr.Field
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}
