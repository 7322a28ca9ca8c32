package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
	"github.com/popcornsocial/popcorn/internal/infrastructure/backend"
	"github.com/popcornsocial/popcorn/internal/infrastructure/config"
	"github.com/popcornsocial/popcorn/internal/infrastructure/logger"
	"github.com/popcornsocial/popcorn/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

var errNotSignedIn = errors.New(`not signed in, run "popcorn login" first`)

type rootOptions struct {
	envFile     string
	sessionPath string
	metrics     bool
}

// app is the per-invocation wiring shared by every command.
type app struct {
	cfg     *config.Config
	logger  *logger.ZapLogger
	backend contract.IBackend
	session string
	out     io.Writer

	// registry collects the interaction counters of this invocation, printed with --metrics.
	registry     *prometheus.Registry
	interactions *metrics.InteractionMetrics
}

func newApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	var files []string
	if opts.envFile != "" {
		files = append(files, opts.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}
	appLogger, err := logger.NewZapLogger(cfg.GetLogLevel())
	if err != nil {
		return nil, err
	}
	be, err := backend.New(cfg, appLogger.Named("backend"))
	if err != nil {
		return nil, err
	}
	path := opts.sessionPath
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config dir: %w", err)
		}
		path = filepath.Join(dir, "popcorn", "session.json")
	}
	registry := prometheus.NewRegistry()
	return &app{
		cfg:          cfg,
		logger:       appLogger,
		backend:      be,
		session:      path,
		out:          cmd.OutOrStdout(),
		registry:     registry,
		interactions: metrics.NewInteractionMetrics(registry),
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

func (a *app) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format+"\n", args...)
}

// writeMetrics prints the gathered counters in the Prometheus text format.
func (a *app) writeMetrics() error {
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(a.out, mf); err != nil {
			return err
		}
	}
	return nil
}

// storedSession is the session file layout. Backend guards against reusing a
// supabase token with json-server and vice versa.
type storedSession struct {
	Backend string         `json:"backend"`
	Session entity.Session `json:"session"`
}

func (a *app) saveSession(sess *entity.Session) error {
	if err := os.MkdirAll(filepath.Dir(a.session), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	data, err := json.MarshalIndent(storedSession{Backend: a.backend.Name(), Session: *sess}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(a.session, data, 0o600)
}

func (a *app) loadSession() (*entity.Session, error) {
	data, err := os.ReadFile(a.session)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", a.session, err)
	}
	if stored.Backend != a.backend.Name() {
		return nil, nil
	}
	return &stored.Session, nil
}

func (a *app) clearSession() error {
	if err := os.Remove(a.session); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// context attaches the stored session, if any, to ctx.
func (a *app) context(ctx context.Context) (context.Context, error) {
	sess, err := a.loadSession()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return ctx, nil
	}
	return entity.ContextWithSession(ctx, *sess), nil
}

// describe turns backend failures into messages a person can act on.
func describe(err error) error {
	switch {
	case errors.Is(err, entity.ErrAuthRequired):
		return fmt.Errorf("%w (%v)", errNotSignedIn, err)
	case errors.Is(err, entity.ErrPermissionDenied):
		return fmt.Errorf("not allowed: %w", err)
	case errors.Is(err, entity.ErrNotFound):
		return fmt.Errorf("not found: %w", err)
	}
	return err
}

// withApp adapts a command body that needs the wiring.
func withApp(opts *rootOptions, run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, opts)
		if err != nil {
			return err
		}
		defer a.close()
		err = describe(run(cmd, a, args))
		if opts.metrics {
			if merr := a.writeMetrics(); merr != nil {
				a.logger.Warnf("%v", merr)
			}
		}
		return err
	}
}

func parseKind(s string) (entity.TargetKind, error) {
	switch entity.TargetKind(s) {
	case entity.TargetKindPost, entity.TargetKindCollection:
		return entity.TargetKind(s), nil
	}
	return "", fmt.Errorf("kind must be post or collection, got %q", s)
}
