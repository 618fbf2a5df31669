package setup

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tbs-portal/portal/frontend/internal/apiclient"
	"github.com/tbs-portal/portal/frontend/internal/handler"
	"github.com/tbs-portal/portal/frontend/internal/markdown"
	"github.com/tbs-portal/portal/frontend/internal/service"
	"github.com/tbs-portal/portal/frontend/templates"
	"github.com/tbs-portal/portal/shared/config"
	"github.com/tbs-portal/portal/shared/jwt"
	"github.com/tbs-portal/portal/shared/logger"
	"github.com/tbs-portal/portal/shared/middleware/metrics"
	"github.com/tbs-portal/portal/shared/middleware/ratelimiter"
	"github.com/tbs-portal/portal/shared/validation"
)

const (
	baseTemplate           = "base.html"
	partialsTemplate       = "partials.html"
	devTemplatePath        = "frontend/templates"
	templateReloadInterval = 5 * time.Second
)

type Dependencies struct {
	Handler     *handler.Handler
	Public      config.Public
	Metrics     *metrics.Metrics
	Registry    *prometheus.Registry
	FormLimiter *ratelimiter.UserRateLimiter
	// AccountLimiter throttles login and reset-code requests per email,
	// whichever address they come from.
	AccountLimiter *ratelimiter.UserRateLimiter
	CancelFunc     context.CancelFunc
}

// Cleanup stops the background goroutines started by SetupDependencies.
func (d *Dependencies) Cleanup() {
	d.CancelFunc()
	d.FormLimiter.Stop()
	d.AccountLimiter.Stop()
}

func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	ctx, cancel := context.WithCancel(context.Background())

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	tmpl, err := loadTemplates(templates.FS)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	textProcessor := markdown.New()
	notice, err := textProcessor.RenderNotice(cfg.Public.Notice)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to render notice: %w", err)
	}

	client := apiclient.New(cfg.Public.APIBaseURL, cfg.Public.RequestTimeout, apiclient.WithObserver(m.ObserveBackend))
	rules := validation.Rules{EmailDomains: cfg.Public.AllowedEmailDomains}
	auth := service.NewAuth(client, validation.NewValidator(rules), textProcessor.PlainText, m)
	sessions := jwt.New(cfg.SessionKey(), cfg.ResetSessionTTL())

	h := handler.New(tmpl, cfg.Public, auth, sessions, notice)
	startTemplateReloader(ctx, h, devTemplatePath)

	limiter := ratelimiter.PerMinute(cfg.Public.FormPostsPerMinute)
	accountLimiter := ratelimiter.PerMinute(cfg.Public.AccountPostsPerMinute)

	return &Dependencies{
		Handler:        h,
		Public:         cfg.Public,
		Metrics:        m,
		Registry:       registry,
		FormLimiter:    limiter,
		AccountLimiter: accountLimiter,
		CancelFunc:     cancel,
	}, nil
}

func dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("invalid dict call: number of arguments must be even")
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings")
		}
		m[key] = values[i+1]
	}
	return m, nil
}

// seconds rounds a millisecond delay up to whole seconds for meta refresh.
func seconds(ms int64) string {
	return strconv.FormatInt((ms+999)/1000, 10)
}

var funcs = template.FuncMap{
	"dict":    dict,
	"seconds": seconds,
}

// loadTemplates parses every page in fsys together with the base layout and
// the shared partials.
func loadTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	out := make(map[string]*template.Template)
	for _, f := range files {
		name := f.Name()
		if path.Ext(name) != ".html" || name == baseTemplate || name == partialsTemplate {
			continue
		}
		t, err := template.New(baseTemplate).Funcs(funcs).ParseFS(fsys, baseTemplate, name, partialsTemplate)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

// startTemplateReloader re-reads templates from disk in development so edits
// show up without a rebuild.
func startTemplateReloader(ctx context.Context, h *handler.Handler, tmplPath string) {
	if os.Getenv("ENV") != "development" {
		return
	}
	if _, err := os.Stat(tmplPath); err != nil {
		logger.Log.Warn("template reloader disabled", "path", tmplPath, "error", err)
		return
	}

	ticker := time.NewTicker(templateReloadInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tmpl, err := loadTemplates(os.DirFS(tmplPath))
				if err != nil {
					logger.Log.Error("reloading templates", "error", err)
					continue
				}
				h.SetTemplates(tmpl)
			}
		}
	}()
}
