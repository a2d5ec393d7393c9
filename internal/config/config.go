package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Network    NetworkConfig    `toml:"network"`
	Game       GameConfig       `toml:"game"`
	Arena      ArenaConfig      `toml:"arena"`
	Monster    MonsterConfig    `toml:"monster"`
	Blink      BlinkConfig      `toml:"blink"`
	Attachment AttachmentConfig `toml:"attachment"`
	Timer      TimerConfig      `toml:"timer"`
	Regen      RegenConfig      `toml:"regen"`
	Orbs       OrbConfig        `toml:"orbs"`
	Database   DatabaseConfig   `toml:"database"`
	Logging    LoggingConfig    `toml:"logging"`
	RateLimit  RateLimitConfig  `toml:"rate_limit"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	StartTime int64  // set at boot, not from config
}

type NetworkConfig struct {
	BindAddress  string        `toml:"bind_address"`
	OutQueueSize int           `toml:"out_queue_size"`
	InboxSize    int           `toml:"inbox_size"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	ReadLimit    int64         `toml:"read_limit"`
}

type GameConfig struct {
	SimTickHz     int           `toml:"sim_tick_hz"`
	BroadcastHz   int           `toml:"broadcast_hz"`
	MaxLobbies    int           `toml:"max_lobbies"`
	LobbyCapacity int           `toml:"lobby_capacity"`
	MinPlayers    int           `toml:"min_players"`
	MaxHealth     float64       `toml:"max_health"`
	SpectateDelay time.Duration `toml:"spectate_delay"` // DEAD → SPECTATING
}

type ArenaConfig struct {
	Radius            float64       `toml:"radius"`
	FinalRadius       float64       `toml:"final_radius"`
	ShrinkStart       time.Duration `toml:"shrink_start"`
	ShrinkDuration    time.Duration `toml:"shrink_duration"`
	OutsideDamagePerS float64       `toml:"outside_damage_per_sec"`
	ObstacleCount     int           `toml:"obstacle_count"`
}

type MonsterConfig struct {
	DefaultArchetype string        `toml:"default_archetype"`
	SpawnDelay       time.Duration `toml:"spawn_delay"`
	RampDelay        time.Duration `toml:"ramp_delay"`
	SpawnDistance    float64       `toml:"spawn_distance"`
	BlindSpotHalfDeg float64       `toml:"blind_spot_half_angle_deg"`
}

type BlinkConfig struct {
	Cooldown time.Duration `toml:"cooldown"`
}

type AttachmentConfig struct {
	RequestTimeout time.Duration `toml:"request_timeout"`
}

type TimerConfig struct {
	Radius float64 `toml:"radius"` // timer announcements only reach players this close
}

type RegenConfig struct {
	Interval time.Duration `toml:"interval"`
	Amount   float64       `toml:"amount"`
}

type OrbConfig struct {
	InitialCount int           `toml:"initial_count"`
	Value        int           `toml:"value"`
	RespawnDelay time.Duration `toml:"respawn_delay"`
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty = match archive disabled
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"` // "json" or "console"
	File       string `toml:"file"`   // empty = stdout only
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

type RateLimitConfig struct {
	Enabled        bool          `toml:"enabled"`
	InputInterval  time.Duration `toml:"input_interval"`
	BlinkInterval  time.Duration `toml:"blink_interval"`
	OrbInterval    time.Duration `toml:"orb_interval"`
	AttachInterval time.Duration `toml:"attach_interval"`
	TimerInterval  time.Duration `toml:"timer_interval"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "Duskfall",
		},
		Network: NetworkConfig{
			BindAddress:  "0.0.0.0:8777",
			OutQueueSize: 256,
			InboxSize:    1024,
			WriteTimeout: 10 * time.Second,
			ReadLimit:    16 * 1024,
		},
		Game: GameConfig{
			SimTickHz:     60,
			BroadcastHz:   30,
			MaxLobbies:    64,
			LobbyCapacity: 8,
			MinPlayers:    2,
			MaxHealth:     100,
			SpectateDelay: 5 * time.Second,
		},
		Arena: ArenaConfig{
			Radius:            100,
			FinalRadius:       10,
			ShrinkStart:       120 * time.Second,
			ShrinkDuration:    60 * time.Second,
			OutsideDamagePerS: 5,
			ObstacleCount:     12,
		},
		Monster: MonsterConfig{
			DefaultArchetype: "stalker",
			SpawnDelay:       30 * time.Second,
			RampDelay:        120 * time.Second,
			SpawnDistance:    12,
			BlindSpotHalfDeg: 60,
		},
		Blink: BlinkConfig{
			Cooldown: 5 * time.Second,
		},
		Attachment: AttachmentConfig{
			RequestTimeout: 15 * time.Second,
		},
		Timer: TimerConfig{
			Radius: 30,
		},
		Regen: RegenConfig{
			Interval: 2 * time.Second,
			Amount:   1,
		},
		Orbs: OrbConfig{
			InitialCount: 20,
			Value:        10,
			RespawnDelay: 8 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             "",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  64,
			MaxBackups: 3,
		},
		RateLimit: RateLimitConfig{
			Enabled:        true,
			InputInterval:  10 * time.Millisecond,
			BlinkInterval:  250 * time.Millisecond,
			OrbInterval:    50 * time.Millisecond,
			AttachInterval: 500 * time.Millisecond,
			TimerInterval:  1 * time.Second,
		},
	}
}
