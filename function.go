// Package pilotprefs is the Cloud Functions entry point for pilot preference updates.
package pilotprefs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/cloudevents/sdk-go/v2/event"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pilotprefs/internal/app"
	"github.com/kailas-cloud/pilotprefs/internal/config"
	logpkg "github.com/kailas-cloud/pilotprefs/internal/logger"
	"github.com/kailas-cloud/pilotprefs/internal/version"
)

const defaultFunctionEnv = "function"

var entry = &lazyApp{build: build}

func init() {
	functions.HTTP("updatePilotKnowledge", updatePilotKnowledge)
	functions.CloudEvent("updatePilotKnowledgeEvent", updatePilotKnowledgeEvent)
}

// lazyApp builds the application on first use. A failed build is not cached,
// so a transient outage at cold start is retried on the next invocation.
type lazyApp struct {
	mu    sync.Mutex
	app   *app.App
	build func(ctx context.Context) (*app.App, error)
}

func (l *lazyApp) get(ctx context.Context) (*app.App, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.app != nil {
		return l.app, nil
	}
	a, err := l.build(ctx)
	if err != nil {
		return nil, err
	}
	l.app = a
	return a, nil
}

func build(ctx context.Context) (*app.App, error) {
	env := config.GetEnv()
	if env == "local" {
		env = defaultFunctionEnv
	}

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	logger.Info("Starting pilotprefs function",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.String("db_driver", cfg.Database.Driver),
	)

	store, err := app.NewStore(cfg.Database)
	if err != nil {
		return nil, err //nolint:wrapcheck // already wrapped
	}

	a, err := app.New(context.WithoutCancel(ctx), cfg, store, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build app: %w", err)
	}
	return a, nil
}

// updatePilotKnowledge serves the callable over HTTPS. The function URL itself maps to the update route.
func updatePilotKnowledge(w http.ResponseWriter, r *http.Request) {
	a, err := entry.get(r.Context())
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]map[string]string{
			"error": {"status": "INTERNAL", "message": "internal error"},
		})
		return
	}
	if r.URL.Path == "" || r.URL.Path == "/" {
		r.URL.Path = "/updatePilotKnowledge"
	}
	a.Handler.ServeHTTP(w, r)
}

// updatePilotKnowledgeEvent serves the Pub/Sub trigger.
func updatePilotKnowledgeEvent(ctx context.Context, e event.Event) error {
	a, err := entry.get(ctx)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	return a.Events.Handle(ctx, e) //nolint:wrapcheck // handler errors are final
}
