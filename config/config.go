package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"dasharena/sim"
	"dasharena/utils"
)

var ErrInvalidEnv = errors.New("invalid environment variable")

// Env はプロセス環境から読む実行時設定です。
type Env struct {
	Addr              string
	Port              string
	LogLevel          slog.Level
	SyncHz            float64
	MatchTimeout      time.Duration
	LobbyInfoInterval time.Duration
	IdleTimeout       time.Duration
	PingInterval      time.Duration
	TuningFile        string
	BotCount          int
	ServerURL         string
}

func (e Env) ListenAddr() string { return e.Addr + ":" + e.Port }

// TickInterval は SyncHz から求めたルームの tick 間隔です。
func (e Env) TickInterval() time.Duration {
	return time.Duration(float64(time.Second) / e.SyncHz)
}

// Load は .env があれば読み込んでから環境変数を解釈します。.env が無いことはエラーにしません。
func Load(files ...string) (Env, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Env{}, fmt.Errorf("loading .env: %w", err)
	}

	var (
		env  Env
		errs []error
	)
	env.Addr = utils.GetEnvDefault("ADDR", "localhost")
	env.Port = utils.GetEnvDefault("PORT", "9090")
	env.TuningFile = utils.GetEnvDefault("TUNING_FILE", "")
	env.ServerURL = utils.GetEnvDefault("SERVER_URL", "ws://localhost:9090/ws")

	if err := env.LogLevel.UnmarshalText([]byte(utils.GetEnvDefault("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("%w: LOG_LEVEL: %v", ErrInvalidEnv, err))
	}
	env.SyncHz = parse(&errs, "SYNC_HZ", "60", func(s string) (float64, error) {
		v, err := strconv.ParseFloat(s, 64)
		if err == nil && !(v > 0 && utils.IsFinite(v)) {
			err = errors.New("must be positive")
		}
		return v, err
	})
	env.MatchTimeout = parse(&errs, "MATCH_TIMEOUT", "90s", time.ParseDuration)
	env.LobbyInfoInterval = parse(&errs, "LOBBY_INFO_INTERVAL", "5s", positiveDuration)
	env.IdleTimeout = parse(&errs, "IDLE_TIMEOUT", "30s", time.ParseDuration)
	env.PingInterval = parse(&errs, "PING_INTERVAL", "10s", time.ParseDuration)
	env.BotCount = parse(&errs, "BOT_COUNT", "2", strconv.Atoi)

	if err := errors.Join(errs...); err != nil {
		return Env{}, err
	}
	return env, nil
}

func parse[T any](errs *[]error, key, def string, fn func(string) (T, error)) T {
	raw := utils.GetEnvDefault(key, def)
	v, err := fn(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s=%q: %v", ErrInvalidEnv, key, raw, err))
	}
	return v
}

func positiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err == nil && d <= 0 {
		err = errors.New("must be positive")
	}
	return d, err
}

// LoadTuning は sim.DefaultConfig に path のファイルを重ねます。path が空ならデフォルトのままです。
// 形式は拡張子 (json, yaml, toml) から判定します。
func LoadTuning(path string) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return sim.Config{}, fmt.Errorf("reading tuning file %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return sim.Config{}, fmt.Errorf("decoding tuning file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return sim.Config{}, err
	}
	return cfg, nil
}
