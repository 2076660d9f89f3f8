package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dropship/backend/internal/infrastructure/telemetry"
)

// Profiling label names. All are low cardinality.
const (
	ProfilingLabelMethod     = "method"
	ProfilingLabelRoute      = "route"
	ProfilingLabelController = "controller"
)

// Profiling attaches pyroscope labels to the request so CPU and allocation
// profiles can be filtered by route
func Profiling(enabled bool, skipPaths ...string) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if skipPath(c.Request.URL.Path, skipPaths, nil) {
			c.Next()
			return
		}
		telemetry.WithProfilingLabels(c.Request.Context(), profilingLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func profilingLabels(c *gin.Context) map[string]string {
	labels := map[string]string{ProfilingLabelMethod: c.Request.Method}
	if route := c.FullPath(); route != "" {
		labels[ProfilingLabelRoute] = route
		if controller := controllerFromRoute(route); controller != "" {
			labels[ProfilingLabelController] = controller
		}
	}
	return labels
}

// controllerFromRoute returns the resource segment after /api/v1,
// e.g. "/api/v1/orders/:id/dispatch" -> "orders"
func controllerFromRoute(route string) string {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	for i, part := range parts {
		if part == "api" && i+2 < len(parts) {
			return parts[i+2]
		}
	}
	return ""
}
