package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/duskfall/server/internal/config"
	"github.com/duskfall/server/internal/core/event"
	coresys "github.com/duskfall/server/internal/core/system"
	"github.com/duskfall/server/internal/data"
	"github.com/duskfall/server/internal/handler"
	"github.com/duskfall/server/internal/lobby"
	gonet "github.com/duskfall/server/internal/net"
	"github.com/duskfall/server/internal/persist"
	"github.com/duskfall/server/internal/scripting"
	"github.com/duskfall/server/internal/system"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            Duskfall  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      arena survival · game server         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("DUSKFALL_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Match archive (optional): connect and migrate only when a DSN is set
	var matchRepo *persist.MatchRepo
	if cfg.Database.DSN != "" {
		printSection("database")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			cancel()
			return fmt.Errorf("run migrations: %w", err)
		}
		cancel()

		matchRepo = persist.NewMatchRepo(db)
		printOK("match archive connected")
	} else {
		printOK("match archive disabled (no dsn)")
	}

	// 4. Load data tables
	printSection("data tables")

	monsters, err := data.LoadMonsterTable("data/yaml/monster_list.yaml")
	if err != nil {
		return fmt.Errorf("load monster table: %w", err)
	}
	printStat("monster archetypes", monsters.Count())
	if monsters.Get(cfg.Monster.DefaultArchetype) == nil {
		return fmt.Errorf("default archetype %q not in monster table", cfg.Monster.DefaultArchetype)
	}

	obstacles, err := data.LoadObstacleTable("data/yaml/obstacle_list.yaml")
	if err != nil {
		return fmt.Errorf("load obstacle table: %w", err)
	}
	printStat("obstacle templates", obstacles.Count())

	// 5. Lua scripting engine
	printSection("scripting")

	lua, err := scripting.NewEngine("scripts", log)
	if err != nil {
		return fmt.Errorf("init scripting: %w", err)
	}
	defer lua.Close()
	printOK("lua engine ready")

	// 6. Game state
	bus := event.NewBus()
	registry := lobby.NewRegistry(lobby.Settings{
		MaxLobbies:    cfg.Game.MaxLobbies,
		Capacity:      cfg.Game.LobbyCapacity,
		MinPlayers:    cfg.Game.MinPlayers,
		InitialRadius: cfg.Arena.Radius,
		FinalRadius:   cfg.Arena.FinalRadius,
		MaxHealth:     cfg.Game.MaxHealth,
	}, log)
	sessions := gonet.NewSessionTable()

	deps := &handler.Deps{
		Config:    cfg,
		Log:       log,
		Registry:  registry,
		Sessions:  sessions,
		Monsters:  monsters,
		Obstacles: obstacles,
		Bus:       bus,
	}
	dispatcher := handler.NewDispatcher(deps)
	handler.RegisterNotifications(deps)

	if matchRepo != nil {
		event.Subscribe(bus, func(ev system.MatchEndedEvent) {
			res := persist.MatchResult{
				LobbyCode:  ev.LobbyCode,
				Reason:     ev.Reason,
				DurationMS: ev.DurationMS,
				EndedAt:    ev.EndedAt,
			}
			for _, p := range ev.Players {
				res.Players = append(res.Players, persist.MatchPlayer{
					PlayerID: p.PlayerID,
					Username: p.Username,
					Score:    p.Score,
					Winner:   p.Winner,
				})
			}
			matchRepo.SaveAsync(res)
		})
	}

	// 7. Simulation systems
	runner := coresys.NewRunner()
	runner.Register(system.NewEventSystem(bus))
	runner.Register(system.NewMonsterAISystem(registry, monsters, lua, bus))
	runner.Register(system.NewSpawnSystem(registry, monsters, cfg.Monster, bus))
	runner.Register(system.NewRegenSystem(registry, cfg.Regen))
	runner.Register(system.NewShrinkSystem(registry, cfg.Arena, bus))
	runner.Register(system.NewOrbRespawnSystem(registry, cfg.Orbs))
	runner.Register(system.NewAttachTimeoutSystem(registry, cfg.Attachment))
	runner.Register(system.NewSpectateSystem(registry, cfg.Game))
	runner.Register(system.NewMatchEndSystem(registry, bus))
	runner.Register(system.NewBroadcastSystem(registry, sessions, cfg.Game.SimTickHz, cfg.Game.BroadcastHz))
	runner.Register(system.NewCleanupSystem(registry, sessions))

	// 8. Network server
	printSection("network")

	server := gonet.NewServer(
		cfg.Network.BindAddress,
		cfg.Network.InboxSize,
		cfg.Network.OutQueueSize,
		cfg.Network.ReadLimit,
		cfg.Network.WriteTimeout,
		log,
	)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()
	printReady(fmt.Sprintf("listening on ws://%s/ws", cfg.Network.BindAddress))
	fmt.Println()

	log.Info("server started",
		zap.String("bind", cfg.Network.BindAddress),
		zap.Int("sim_hz", cfg.Game.SimTickHz),
		zap.Int("broadcast_hz", cfg.Game.BroadcastHz))

	// 9. Game loop. One goroutine owns every lobby, player, and monster;
	// network goroutines only move bytes in and out of channels.
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	tickInterval := time.Second / time.Duration(cfg.Game.SimTickHz)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			runner.Tick(dt)
		case in := <-server.Inbox():
			dispatcher.Dispatch(in)
		case sess := <-server.NewSessions():
			sessions.Add(sess)
		case sess := <-server.DeadSessions():
			handler.HandleDisconnect(sess, deps)
			sessions.Remove(sess.ID)
		case err := <-serverErr:
			if err != nil {
				return fmt.Errorf("network server: %w", err)
			}
			return nil
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := server.Shutdown(ctx)
			cancel()
			if err != nil {
				log.Warn("shutdown incomplete", zap.Error(err))
			}
			log.Info("server stopped")
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var encCfg zapcore.EncoderConfig
	var enc zapcore.Encoder
	if cfg.Format == "json" {
		encCfg = zap.NewProductionEncoderConfig()
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		encCfg.ConsoleSeparator = "  "
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	sink := zapcore.AddSync(os.Stdout)
	if cfg.File != "" {
		rotating := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		})
		sink = zapcore.NewMultiWriteSyncer(sink, rotating)
	}

	core := zapcore.NewCore(enc, sink, zap.NewAtomicLevelAt(level))
	return zap.New(core), nil
}
