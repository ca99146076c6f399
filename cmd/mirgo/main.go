package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"mirgo/internal/assets"
	"mirgo/internal/config"
	"mirgo/internal/network"
	"mirgo/internal/physics"
	"mirgo/internal/scripting"
	"mirgo/internal/stats"
	"mirgo/internal/world"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML config file")
	scene := flag.String("scene", "", "root scene to load, overrides world.root_scene")
	flag.Parse()

	if err := run(*configPath, *scene); err != nil {
		fmt.Fprintln(os.Stderr, "mirgo:", err)
		os.Exit(1)
	}
}

func run(configPath, sceneOverride string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if sceneOverride != "" {
		cfg.World.RootScene = sceneOverride
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	var fs *stats.FrameStats
	if cfg.Metrics.Enabled {
		fs = stats.NewFrameStats()
		srv := serveMetrics(cfg.Metrics.Addr, fs, log)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	netReg := network.NewRegistry(log.Named("net"))
	scenes := assets.NewManager(cfg.World.ScenesDir, log.Named("assets"),
		assets.WithNetAssigner(netReg),
		assets.WithComponent("script", scripting.Factory(cfg.World.ScenesDir, log.Named("lua"))),
	)

	w := world.New(
		world.WithLogger(log.Named("world")),
		world.WithStats(fs),
		world.WithSceneLoader(scenes),
		world.WithNetLookup(netReg),
		world.WithMaxSubSteps(cfg.Physics.MaxSubSteps),
		world.WithPhysicsOptions(
			physics.WithGravity(vec3(cfg.Physics.Gravity)),
			physics.WithFixedTimeStep(cfg.Physics.FixedTimeStep),
			physics.WithCellSize(cfg.Physics.CellSize),
		),
	)
	defer w.Destroy()
	w.EnableInternalEdgeSmoothing(cfg.Physics.InternalEdgeSmoothing)
	w.SetGameTickEnabled(cfg.World.GameTick)

	if err := w.QueueRootScene(cfg.World.RootScene); err != nil {
		return err
	}

	log.Info("starting",
		zap.String("config", configPath),
		zap.String("scene", cfg.World.RootScene),
		zap.Bool("metrics", cfg.Metrics.Enabled),
	)

	app := newApp(cfg, w, scenes, netReg, log)
	app.loop()
	return nil
}

func serveMetrics(addr string, fs *stats.FrameStats, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", fs.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("metrics listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()
	return srv
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

func vec3(v [3]float32) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}
