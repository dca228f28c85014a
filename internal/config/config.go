package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Game      GameConfig      `mapstructure:"game"`
	Artifact  ArtifactConfig  `mapstructure:"artifact"`
	Log       LogConfig       `mapstructure:"log"`
	System    SystemConfig    `mapstructure:"system"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// WebSocketConfig 事件推送配置
type WebSocketConfig struct {
	Path            string        `mapstructure:"path"`
	ReadBufferSize  int           `mapstructure:"read_buffer_size"`
	WriteBufferSize int           `mapstructure:"write_buffer_size"`
	MaxMessageSize  int64         `mapstructure:"max_message_size"`
	PingInterval    time.Duration `mapstructure:"ping_interval"`
	PongTimeout     time.Duration `mapstructure:"pong_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
}

// GameConfig 游戏会话配置
type GameConfig struct {
	MoveTimeout       time.Duration   `mapstructure:"move_timeout"`
	WaitingTimeout    time.Duration   `mapstructure:"waiting_timeout"`
	FinishedRetention time.Duration   `mapstructure:"finished_retention"`
	SweepInterval     time.Duration   `mapstructure:"sweep_interval"`
	MaxSessions       int             `mapstructure:"max_sessions"`
	RecordHistory     bool            `mapstructure:"record_history"`
	Blackjack         BlackjackConfig `mapstructure:"blackjack"`
	DeathRoll         DeathRollConfig `mapstructure:"deathroll"`
	Duel              DuelConfig      `mapstructure:"duel"`
	Pokemon           PokemonConfig   `mapstructure:"pokemon"`
}

// BlackjackConfig 21点配置
type BlackjackConfig struct {
	Decks          int `mapstructure:"decks"`
	MaxPlayers     int `mapstructure:"max_players"`
	ReshuffleBelow int `mapstructure:"reshuffle_below"`
	DealerStand    int `mapstructure:"dealer_stand"`
}

// DeathRollConfig 死亡骰子配置
type DeathRollConfig struct {
	DefaultCeiling int `mapstructure:"default_ceiling"`
	MinCeiling     int `mapstructure:"min_ceiling"`
	MaxCeiling     int `mapstructure:"max_ceiling"`
}

// DuelConfig 决斗配置
type DuelConfig struct {
	MinDelay  time.Duration `mapstructure:"min_delay"`
	MaxDelay  time.Duration `mapstructure:"max_delay"`
	TieWindow time.Duration `mapstructure:"tie_window"`
}

// PokemonConfig 宝可梦对战配置
type PokemonConfig struct {
	DefaultLevel int `mapstructure:"default_level"`
	MaxTeamSize  int `mapstructure:"max_team_size"`
}

// ArtifactConfig 神器配置
type ArtifactConfig struct {
	Name              string        `mapstructure:"name"`
	Store             string        `mapstructure:"store"` // file | db | memory
	Path              string        `mapstructure:"path"`
	MoodThreshold     int           `mapstructure:"mood_threshold"`
	GamblingIncrement int           `mapstructure:"gambling_increment"`
	MarketIncrement   int           `mapstructure:"market_increment"`
	NightIncrement    int           `mapstructure:"night_increment"`
	NightStartHour    int           `mapstructure:"night_start_hour"`
	NightEndHour      int           `mapstructure:"night_end_hour"`
	EerieLinger       time.Duration `mapstructure:"eerie_linger"`
	TouchMax          int           `mapstructure:"touch_max"`
	DisturbSwing      int           `mapstructure:"disturb_swing"`
	DisturbCooldown   time.Duration `mapstructure:"disturb_cooldown"`
	Timezone          string        `mapstructure:"timezone"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string            `mapstructure:"level"`
	Format  string            `mapstructure:"format"`
	Output  string            `mapstructure:"output"`
	File    LogFileConfig     `mapstructure:"file"`
	Modules map[string]string `mapstructure:"modules"`
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// SystemConfig 系统配置
type SystemConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// Location 解析神器使用的时区，未配置时回退到系统时区配置，再回退到本地时区
func (c *Config) Location() (*time.Location, error) {
	tz := c.Artifact.Timezone
	if tz == "" {
		tz = c.System.Timezone
	}
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(tz)
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown server mode %q", c.Server.Mode)
	}
	a := c.Artifact
	if a.NightStartHour < 0 || a.NightStartHour > 23 || a.NightEndHour < 0 || a.NightEndHour > 24 {
		return fmt.Errorf("artifact night window out of range: %d-%d", a.NightStartHour, a.NightEndHour)
	}
	if a.MoodThreshold < 0 {
		return fmt.Errorf("artifact mood_threshold must be >= 0, got %d", a.MoodThreshold)
	}
	if a.TouchMax < 0 || a.DisturbSwing < 0 {
		return fmt.Errorf("artifact touch_max/disturb_swing must be >= 0, got %d/%d", a.TouchMax, a.DisturbSwing)
	}
	switch a.Store {
	case "file", "db", "memory":
	default:
		return fmt.Errorf("unknown artifact store %q", a.Store)
	}
	d := c.Game.DeathRoll
	if d.MinCeiling < 2 || d.MaxCeiling < d.MinCeiling ||
		d.DefaultCeiling < d.MinCeiling || d.DefaultCeiling > d.MaxCeiling {
		return fmt.Errorf("invalid deathroll ceiling range %d..%d (default %d)", d.MinCeiling, d.MaxCeiling, d.DefaultCeiling)
	}
	if c.Game.Duel.MaxDelay < c.Game.Duel.MinDelay {
		return fmt.Errorf("duel max_delay %s < min_delay %s", c.Game.Duel.MaxDelay, c.Game.Duel.MinDelay)
	}
	if c.Game.Blackjack.Decks < 1 {
		return fmt.Errorf("blackjack decks must be >= 1")
	}
	if c.Game.Blackjack.MaxPlayers < 1 {
		return fmt.Errorf("blackjack max_players must be >= 1, got %d", c.Game.Blackjack.MaxPlayers)
	}
	// 0 表示关闭超时
	if c.Game.MoveTimeout < 0 || c.Game.WaitingTimeout < 0 {
		return fmt.Errorf("game move_timeout/waiting_timeout must be >= 0")
	}
	return nil
}

var (
	cfg  *Config
	once sync.Once
	mu   sync.RWMutex
	v    *viper.Viper
)

// Init 初始化全局配置
func Init(configPath string) error {
	var err error
	once.Do(func() {
		var c *Config
		v, c, err = load(configPath)
		if err != nil {
			return
		}
		mu.Lock()
		cfg = c
		mu.Unlock()
	})
	return err
}

// Load 读取配置但不设置全局实例
func Load(configPath string) (*Config, error) {
	_, c, err := load(configPath)
	return c, err
}

func load(configPath string) (*viper.Viper, *Config, error) {
	vp := viper.New()

	if configPath != "" {
		vp.SetConfigFile(configPath)
	} else {
		vp.SetConfigName("config")
		vp.SetConfigType("yaml")
		vp.AddConfigPath("./config")
		vp.AddConfigPath(".")
	}

	vp.SetEnvPrefix("BUGG")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	setDefaults(vp)

	if err := vp.ReadInConfig(); err != nil {
		// 配置文件不存在时使用默认配置
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, err
		}
	}

	c := &Config{}
	if err := vp.Unmarshal(c); err != nil {
		return nil, nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	return vp, c, nil
}

// Settings 返回合并默认值、配置文件和环境变量后的原始键值，用于导出
func Settings(configPath string) (map[string]interface{}, error) {
	vp, _, err := load(configPath)
	if err != nil {
		return nil, err
	}
	return vp.AllSettings(), nil
}

// Default 返回全部默认值组成的配置
func Default() *Config {
	vp := viper.New()
	setDefaults(vp)
	c := &Config{}
	_ = vp.Unmarshal(c)
	return c
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 服务器
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8088)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// 数据库
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./data/bugg.db")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.auto_migrate", true)

	// 事件推送
	v.SetDefault("websocket.path", "/ws")
	v.SetDefault("websocket.read_buffer_size", 1024)
	v.SetDefault("websocket.write_buffer_size", 1024)
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_timeout", "60s")
	v.SetDefault("websocket.write_timeout", "10s")

	// 游戏会话
	v.SetDefault("game.move_timeout", "2m")
	v.SetDefault("game.waiting_timeout", "5m")
	v.SetDefault("game.finished_retention", "10m")
	v.SetDefault("game.sweep_interval", "1m")
	v.SetDefault("game.max_sessions", 1000)
	v.SetDefault("game.record_history", true)
	v.SetDefault("game.blackjack.decks", 1)
	v.SetDefault("game.blackjack.max_players", 6)
	v.SetDefault("game.blackjack.reshuffle_below", 15)
	v.SetDefault("game.blackjack.dealer_stand", 17)
	v.SetDefault("game.deathroll.default_ceiling", 100)
	v.SetDefault("game.deathroll.min_ceiling", 2)
	v.SetDefault("game.deathroll.max_ceiling", 10000)
	v.SetDefault("game.duel.min_delay", "2s")
	v.SetDefault("game.duel.max_delay", "5s")
	v.SetDefault("game.duel.tie_window", "200ms")
	v.SetDefault("game.pokemon.default_level", 50)
	v.SetDefault("game.pokemon.max_team_size", 6)

	// 神器
	v.SetDefault("artifact.name", "The Cracked Compass")
	v.SetDefault("artifact.store", "file")
	v.SetDefault("artifact.path", "./data/artifact.json")
	v.SetDefault("artifact.mood_threshold", 50)
	v.SetDefault("artifact.gambling_increment", 1)
	v.SetDefault("artifact.market_increment", 1)
	v.SetDefault("artifact.night_increment", 1)
	v.SetDefault("artifact.night_start_hour", 0)
	v.SetDefault("artifact.night_end_hour", 6)
	v.SetDefault("artifact.eerie_linger", "1h")
	v.SetDefault("artifact.touch_max", 2)
	v.SetDefault("artifact.disturb_swing", 25)
	v.SetDefault("artifact.disturb_cooldown", "10m")
	v.SetDefault("artifact.timezone", "")

	// 日志
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.filename", "bugg.log")
	v.SetDefault("log.file.max_size", 50)
	v.SetDefault("log.file.max_age", 14)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.compress", true)

	// 系统
	v.SetDefault("system.timezone", "Local")
}

// Get 获取配置实例
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Watch 监听配置文件变化
func Watch(callback func(*Config)) {
	if v == nil {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		newCfg := &Config{}
		if err := v.Unmarshal(newCfg); err != nil {
			fmt.Printf("配置重载失败: %v\n", err)
			return
		}
		if err := newCfg.Validate(); err != nil {
			fmt.Printf("配置校验失败，保留旧配置: %v\n", err)
			return
		}

		mu.Lock()
		cfg = newCfg
		mu.Unlock()

		if callback != nil {
			callback(newCfg)
		}

		fmt.Printf("配置已重新加载: %s\n", e.Name)
	})
	v.WatchConfig()
}
