// internal/handlers/health.go
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/ammerola/stockroom/internal/core/ports"
	"github.com/ammerola/stockroom/internal/pkg/config"
)

// Service states reported by the health endpoints
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// dependency is one backing service the health endpoints report on. Only
// required dependencies decide readiness; the rest degrade the service.
type dependency struct {
	name     string
	required bool
	check    func(ctx context.Context) ServiceInfo
}

// HealthHandler reports on the store, the optional read cache and the
// optional low-stock notification queue.
type HealthHandler struct {
	deps        []dependency
	version     string
	environment string
	logger      *slog.Logger
	startTime   time.Time
}

// NewHealthHandler creates a new health handler. redisClient and
// asynqInspector may be nil when the cache or the queue is disabled.
func NewHealthHandler(
	store ports.HealthChecker,
	redisClient redis.UniversalClient,
	asynqInspector *asynq.Inspector,
	cfg *config.Config,
	logger *slog.Logger,
) *HealthHandler {
	h := &HealthHandler{
		version:     cfg.App.Version,
		environment: cfg.App.Environment,
		logger:      logger.With(slog.String("handler", "health")),
		startTime:   time.Now(),
	}

	h.deps = append(h.deps, dependency{name: "store", required: true, check: storeCheck(store)})
	if redisClient != nil {
		h.deps = append(h.deps, dependency{name: "redis", check: cacheCheck(redisClient)})
	}
	if asynqInspector != nil {
		queues := slices.Sorted(maps.Keys(cfg.Asynq.Queues))
		h.deps = append(h.deps, dependency{name: "asynq", check: queueCheck(asynqInspector, queues)})
	}
	return h
}

// HealthStatus is the /health body. A failed required dependency makes the
// service unhealthy, a failed optional one degraded.
type HealthStatus struct {
	Status      string                 `json:"status"`
	Version     string                 `json:"version"`
	Environment string                 `json:"environment"`
	Uptime      string                 `json:"uptime"`
	Timestamp   time.Time              `json:"timestamp"`
	Services    map[string]ServiceInfo `json:"services"`
}

// ServiceInfo is the result of one dependency check
type ServiceInfo struct {
	Status       string                 `json:"status"`
	Required     bool                   `json:"required"`
	Message      string                 `json:"message,omitempty"`
	ResponseTime string                 `json:"response_time,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// Health handles the /health endpoint
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	services := h.checkAll(ctx)

	health := HealthStatus{
		Status:      statusHealthy,
		Version:     h.version,
		Environment: h.environment,
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Timestamp:   time.Now(),
		Services:    services,
	}
	for _, info := range services {
		if info.Status == statusHealthy {
			continue
		}
		if info.Required {
			health.Status = statusUnhealthy
			break
		}
		health.Status = statusDegraded
	}

	statusCode := http.StatusOK
	if health.Status == statusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	h.write(ctx, w, statusCode, health)
}

// Readiness handles the /ready endpoint
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ready := true
	details := make(map[string]string, len(h.deps))
	for name, info := range h.checkAll(ctx) {
		if info.Status == statusHealthy {
			details[name] = "ready"
			continue
		}
		details[name] = "not ready"
		if info.Required {
			ready = false
		}
	}

	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}
	h.write(ctx, w, statusCode, map[string]interface{}{
		"ready":   ready,
		"details": details,
	})
}

// checkAll runs every dependency check concurrently
func (h *HealthHandler) checkAll(ctx context.Context) map[string]ServiceInfo {
	results := make([]ServiceInfo, len(h.deps))

	var g errgroup.Group
	for i, dep := range h.deps {
		g.Go(func() error {
			start := time.Now()
			info := dep.check(ctx)
			info.Required = dep.required
			info.ResponseTime = time.Since(start).String()
			results[i] = info
			return nil
		})
	}
	_ = g.Wait()

	services := make(map[string]ServiceInfo, len(h.deps))
	for i, dep := range h.deps {
		info := results[i]
		if info.Status != statusHealthy {
			level := slog.LevelWarn
			if dep.required {
				level = slog.LevelError
			}
			h.logger.Log(ctx, level, "health check failed",
				slog.String("service", dep.name),
				slog.String("error", info.Message))
		}
		services[dep.name] = info
	}
	return services
}

func (h *HealthHandler) write(ctx context.Context, w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.ErrorContext(ctx, "failed to encode health response",
			slog.String("error", err.Error()))
	}
}

func unhealthy(err error) ServiceInfo {
	return ServiceInfo{Status: statusUnhealthy, Message: err.Error()}
}

// storeCheck pings the item and ledger store and reports its driver stats
func storeCheck(store ports.HealthChecker) func(ctx context.Context) ServiceInfo {
	return func(ctx context.Context) ServiceInfo {
		if err := store.Ping(ctx); err != nil {
			return unhealthy(err)
		}
		return ServiceInfo{Status: statusHealthy, Details: store.Health(ctx)}
	}
}

// cacheCheck pings the read cache. Reads fall back to the store while it
// is down.
func cacheCheck(client redis.UniversalClient) func(ctx context.Context) ServiceInfo {
	return func(ctx context.Context) ServiceInfo {
		if err := client.Ping(ctx).Err(); err != nil {
			info := unhealthy(err)
			info.Details = map[string]interface{}{"reads": "served from store"}
			return info
		}
		return ServiceInfo{Status: statusHealthy}
	}
}

// queueCheck reports the backlog of the low-stock notification queues and
// how many workers consume them.
func queueCheck(inspector *asynq.Inspector, queues []string) func(ctx context.Context) ServiceInfo {
	return func(ctx context.Context) ServiceInfo {
		servers, err := inspector.Servers()
		if err != nil {
			return unhealthy(err)
		}

		backlog := make(map[string]interface{}, len(queues))
		for _, queue := range queues {
			info, err := inspector.GetQueueInfo(queue)
			if err != nil {
				// asynq only knows a queue once a task was enqueued to it
				continue
			}
			backlog[queue] = map[string]int{
				"pending":  info.Pending,
				"active":   info.Active,
				"retry":    info.Retry,
				"archived": info.Archived,
			}
		}

		return ServiceInfo{
			Status: statusHealthy,
			Details: map[string]interface{}{
				"workers": len(servers),
				"queues":  backlog,
			},
		}
	}
}
