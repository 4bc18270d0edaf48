// Package cmd implements the nestegg CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/nestegg/internal/cli"
	"github.com/theirongolddev/nestegg/internal/config"
	"github.com/theirongolddev/nestegg/internal/fx"
	"github.com/theirongolddev/nestegg/internal/pipeline"
	"github.com/theirongolddev/nestegg/internal/projcache"
	"github.com/theirongolddev/nestegg/internal/projection"
	"github.com/theirongolddev/nestegg/internal/rates"
	"github.com/theirongolddev/nestegg/internal/store"
)

var (
	flagDB       string
	flagToday    string
	flagCurrency string
	flagFX       float64
	flagNoCache  bool
	flagQuiet    bool
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "nestegg",
	Short: "Savings milestones and passive-income projections",
	Long:  "Track certificates, cash and expenses, see where you stand on the milestone ladder, and project when the next tier is reached.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		_ = godotenv.Load()
		configureLogger()
		return nil
	},
	RunE:          runSnapshot,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", store.DefaultPath(), "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&flagToday, "today", "", "Evaluate as of this date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVarP(&flagCurrency, "currency", "c", "", "Plan currency override")
	rootCmd.PersistentFlags().Float64Var(&flagFX, "fx", 0, "Manual local→plan exchange rate")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the projection cache")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// configureLogger applies the --log-level flag, falling back to the config
// file and then to warn.
func configureLogger() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	level := flagLogLevel
	if level == "" {
		if cfg, err := config.Load(); err == nil {
			level = cfg.General.LogLevel
		}
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.WarnLevel
	}
	logrus.SetLevel(lvl)
}

// runtimeEnv is everything a command needs to compute against the store.
type runtimeEnv struct {
	cfg      config.Config
	schedule *rates.Schedule
	store    *store.Store
	ws       *pipeline.Workspace
	today    civil.Date

	closers []func() error
}

// openEnv is the shared loading path used by all data commands.
func openEnv(ctx context.Context) (*runtimeEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return openEnvWith(ctx, cfg)
}

func openEnvWith(ctx context.Context, cfg config.Config) (*runtimeEnv, error) {
	schedule, err := cfg.Schedule()
	if err != nil {
		return nil, err
	}
	birth, err := cfg.BirthDate()
	if err != nil {
		return nil, err
	}
	ladder, err := config.LoadLadder(cfg.Ladder.Path)
	if err != nil {
		return nil, err
	}
	today, err := resolveToday()
	if err != nil {
		return nil, err
	}

	eng := projection.New(schedule, birth)
	if cfg.Projection.ReinvestStep > 0 {
		eng.ReinvestStep = decimal.NewFromFloat(cfg.Projection.ReinvestStep)
	}
	if cfg.Projection.ReinvestTermMonths > 0 {
		eng.ReinvestTermMonths = cfg.Projection.ReinvestTermMonths
	}
	if cfg.Projection.HorizonMonths > 0 {
		eng.HorizonMonths = cfg.Projection.HorizonMonths
	}

	st, err := store.Open(flagDB)
	if err != nil {
		return nil, err
	}

	env := &runtimeEnv{
		cfg:      cfg,
		schedule: schedule,
		store:    st,
		today:    today,
		closers:  []func() error{st.Close},
	}
	env.ws = &pipeline.Workspace{
		Engine:       eng,
		Rates:        schedule,
		Ladder:       ladder,
		PlanCurrency: planCurrency(cfg),
		Cache:        env.openCache(ctx),
	}
	return env, nil
}

// Close releases the store and cache connections.
func (e *runtimeEnv) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			logrus.WithError(err).Debug("close failed")
		}
	}
}

// openCache picks redis when configured and reachable, else an in-process
// cache. --no-cache disables both.
func (e *runtimeEnv) openCache(ctx context.Context) projcache.Cache {
	if flagNoCache {
		return nil
	}
	addr := config.RedisAddr(e.cfg)
	if addr == "" {
		return projcache.NewMemory()
	}

	ttl := time.Duration(e.cfg.Cache.TTLMinutes) * time.Minute
	rc := projcache.NewRedis(addr, ttl)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		logrus.WithError(err).WithField("addr", addr).Warn("redis unavailable, using in-process cache")
		_ = rc.Close()
		return projcache.NewMemory()
	}
	e.closers = append(e.closers, rc.Close)
	return rc
}

// resolveFX picks the local→plan quote for this run.
func (e *runtimeEnv) resolveFX(ctx context.Context, refresh bool) *fx.Rate {
	res := &fx.Resolver{
		Manual:  manualFX(e.cfg),
		Store:   e.store,
		MaxAge:  e.cfg.FXMaxAge(),
		Refresh: refresh,
	}
	if strings.EqualFold(e.cfg.FX.Provider, "yahoo") {
		res.Provider = fx.NewYahooClient()
	}
	return res.Resolve(ctx, e.cfg.General.LocalCurrency, e.ws.PlanCurrency)
}

// state resolves FX and computes the current snapshot.
func (e *runtimeEnv) state(ctx context.Context) (*pipeline.State, error) {
	st, err := e.ws.Compute(e.store, e.resolveFX(ctx, false), e.today)
	if err != nil {
		return nil, err
	}
	if len(st.Unconverted) > 0 && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  No exchange rate for %s, amounts counted as %s\n",
			strings.Join(st.Unconverted, ", "), e.ws.PlanCurrency)
	}
	return st, nil
}

// invalidate drops cached projections after records or rates change.
func (e *runtimeEnv) invalidate(ctx context.Context) {
	if e.ws.Cache == nil {
		return
	}
	if err := e.ws.Cache.Invalidate(ctx); err != nil {
		logrus.WithError(err).Warn("projection cache invalidation failed")
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func planCurrency(cfg config.Config) string {
	if flagCurrency != "" {
		return strings.ToUpper(flagCurrency)
	}
	return config.PlanCurrency(cfg)
}

func manualFX(cfg config.Config) *fx.Rate {
	if flagFX > 0 {
		return &fx.Rate{
			Base:   strings.ToUpper(cfg.General.LocalCurrency),
			Quote:  planCurrency(cfg),
			Value:  decimal.NewFromFloat(flagFX),
			AsOf:   time.Now(),
			Source: "flag",
		}
	}
	if r := config.ManualFXRate(cfg); r != nil {
		r.Quote = planCurrency(cfg)
		return r
	}
	return nil
}

func resolveToday() (civil.Date, error) {
	if flagToday == "" {
		return civil.DateOf(time.Now()), nil
	}
	d, err := civil.ParseDate(flagToday)
	if err != nil {
		return civil.Date{}, fmt.Errorf("--today: %w", err)
	}
	return d, nil
}

func parseDecimal(name, v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(v, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

func progressLine(label string) pipeline.ProgressFunc {
	return func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  %s [%d/%d]", label, current, total)
		if current == total {
			fmt.Fprint(os.Stderr, "\r\033[K")
		}
	}
}

var errNoRecords = errors.New("no records yet, add some with `nestegg instruments add` or `nestegg accounts set`")

func formatNumber(n int64) string {
	return cli.FormatNumber(n)
}

func floatDecimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
