package middleware

import (
	"net/http"
	"strings"

	"backoffice/internal/common"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// RequestLogger routes echo access logs into logrus.
func RequestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Path(), "/health") || strings.HasPrefix(c.Path(), "/swagger")
		},
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"remote_ip":  v.RemoteIP,
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	})
}

// Audit records every mutating request with the acting account and organization. Reads
// are not audited.
func Audit(logger *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			method := c.Request().Method
			if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
				return err
			}

			ctx := c.Request().Context()
			fields := logrus.Fields{
				"action": method + " " + c.Path(),
				"ip":     c.RealIP(),
				"status": c.Response().Status,
			}
			if userID, ok := common.GetUserIDFromContext(ctx); ok {
				fields["user_id"] = userID
			}
			if tenantID, ok := common.GetTenantIDFromContext(ctx); ok {
				fields["organization_id"] = tenantID
			}
			for _, name := range c.ParamNames() {
				fields["param_"+name] = c.Param(name)
			}

			entry := logger.WithFields(fields)
			if err != nil {
				entry.WithError(err).Warn("audit")
			} else {
				entry.Info("audit")
			}
			return err
		}
	}
}
