package config

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"GoldGrid/internal/calculator"
	"GoldGrid/internal/model"
	"GoldGrid/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"`
		Debug    bool   `yaml:"debug"`
	} `yaml:"telegram"`
	Market struct {
		Source         string  `yaml:"source"` // yahoo | rest | mock
		BaseURL        string  `yaml:"base_url"`
		APIKey         string  `yaml:"api_key"`
		Symbol         string  `yaml:"symbol"`
		FXSymbol       string  `yaml:"fx_symbol"`
		HistoryDays    int     `yaml:"history_days"`
		Factor         float64 `yaml:"factor"`
		Premium        float64 `yaml:"premium"`
		FallbackFXRate float64 `yaml:"fallback_fx_rate"`
		RequestsPerSec float64 `yaml:"requests_per_sec"`
	} `yaml:"market"`
	Indicators struct {
		MomentumPeriod int `yaml:"momentum_period"`
		ShortSpan      int `yaml:"short_span"`
		LongSpan       int `yaml:"long_span"`
	} `yaml:"indicators"`
	Grid struct {
		Gaps           []float64 `yaml:"gaps"`
		MinProfit      float64   `yaml:"min_profit"`
		SpreadBuffer   float64   `yaml:"spread_buffer"`
		BaseCapital    float64   `yaml:"base_capital"`
		PriceIncrement float64   `yaml:"price_increment"`
		FireThreshold  float64   `yaml:"fire_threshold"`
		DeepOversold   float64   `yaml:"deep_oversold"`
		Overbought     float64   `yaml:"overbought"`
	} `yaml:"grid"`
	Storage struct {
		StateFile     string `yaml:"state_file"`
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
		RedisKey      string `yaml:"redis_key"`
	} `yaml:"storage"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		EvaluateCron string `yaml:"evaluate_cron"`
		SummaryCron  string `yaml:"summary_cron"`
	} `yaml:"schedule"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("BASE_CAPITAL"); v != "" {
		capital, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("BASE_CAPITAL: %w", err)
		}
		c.Grid.BaseCapital = capital
	}
	if v := os.Getenv("STATE_FILE"); v != "" {
		c.Storage.StateFile = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Storage.RedisAddr = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_EVALUATE"); v != "" {
		c.Schedule.EvaluateCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Market.Source == "" {
		c.Market.Source = "yahoo"
	}
	if c.Market.Symbol == "" {
		c.Market.Symbol = "GOLD"
	}
	if c.Market.FXSymbol == "" {
		c.Market.FXSymbol = "USDTHB"
	}
	if c.Market.HistoryDays == 0 {
		c.Market.HistoryDays = 180
	}
	if c.Market.Factor == 0 {
		c.Market.Factor = 0.473
	}
	if c.Market.Premium == 0 {
		c.Market.Premium = 100
	}
	if c.Market.RequestsPerSec == 0 {
		c.Market.RequestsPerSec = 2
	}
	if c.Indicators.MomentumPeriod == 0 {
		c.Indicators.MomentumPeriod = 14
	}
	if c.Indicators.ShortSpan == 0 {
		c.Indicators.ShortSpan = 50
	}
	if c.Indicators.LongSpan == 0 {
		c.Indicators.LongSpan = 200
	}
	if len(c.Grid.Gaps) == 0 {
		c.Grid.Gaps = []float64{500, 600, 800, 1000}
	}
	if c.Grid.MinProfit == 0 {
		c.Grid.MinProfit = 300
	}
	if c.Grid.SpreadBuffer == 0 {
		c.Grid.SpreadBuffer = 100
	}
	if c.Grid.BaseCapital == 0 {
		c.Grid.BaseCapital = 10000
	}
	if c.Grid.PriceIncrement == 0 {
		c.Grid.PriceIncrement = 50
	}
	if c.Grid.FireThreshold == 0 {
		c.Grid.FireThreshold = 45
	}
	if c.Grid.DeepOversold == 0 {
		c.Grid.DeepOversold = 30
	}
	if c.Grid.Overbought == 0 {
		c.Grid.Overbought = 70
	}
	if c.Storage.StateFile == "" {
		c.Storage.StateFile = "data/portfolio.json"
	}
	if c.Storage.RedisKey == "" {
		c.Storage.RedisKey = "goldgrid:portfolio"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/goldgrid.db"
	}
	if c.Schedule.EvaluateCron == "" {
		c.Schedule.EvaluateCron = "0 */15 * * * *"
	}
	if c.Schedule.SummaryCron == "" {
		c.Schedule.SummaryCron = "0 0 18 * * *"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks the values the engine cannot run without. Telegram
// credentials are checked separately by RequireTelegram since the one-shot
// CLI commands do not need them.
func (c *Config) Validate() error {
	if len(c.Grid.Gaps) != model.SlotCount-1 {
		return fmt.Errorf("grid.gaps needs %d entries, got %d", model.SlotCount-1, len(c.Grid.Gaps))
	}
	for i, g := range c.Grid.Gaps {
		if g <= 0 {
			return fmt.Errorf("grid.gaps[%d] must be positive", i)
		}
	}
	if c.Grid.MinProfit < 0 || c.Grid.SpreadBuffer < 0 || c.Grid.PriceIncrement < 0 {
		return fmt.Errorf("grid amounts must be non-negative")
	}
	if c.Grid.BaseCapital < 0 || math.IsNaN(c.Grid.BaseCapital) || math.IsInf(c.Grid.BaseCapital, 0) {
		return fmt.Errorf("grid.base_capital must be a non-negative number")
	}
	if c.Indicators.MomentumPeriod <= 0 || c.Indicators.ShortSpan <= 0 || c.Indicators.LongSpan <= 0 {
		return fmt.Errorf("indicator periods must be positive")
	}
	if c.Market.HistoryDays <= 0 {
		return fmt.Errorf("market.history_days must be positive")
	}
	if c.Market.FallbackFXRate < 0 {
		return fmt.Errorf("market.fallback_fx_rate must be non-negative")
	}
	switch c.Market.Source {
	case "yahoo", "mock":
	case "rest":
		if c.Market.BaseURL == "" {
			return fmt.Errorf("market.base_url is required for the rest source")
		}
	default:
		return fmt.Errorf("unknown market.source %q", c.Market.Source)
	}
	return nil
}

// RequireTelegram checks the bot credentials needed by the daemon.
func (c *Config) RequireTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// GridConfig converts the grid section into the engine's value type.
func (c *Config) GridConfig() model.GridConfig {
	g := model.GridConfig{
		MinProfit:      c.Grid.MinProfit,
		SpreadBuffer:   c.Grid.SpreadBuffer,
		BaseCapital:    c.Grid.BaseCapital,
		PriceIncrement: c.Grid.PriceIncrement,
		FireThreshold:  c.Grid.FireThreshold,
		DeepOversold:   c.Grid.DeepOversold,
		Overbought:     c.Grid.Overbought,
	}
	copy(g.Gaps[:], c.Grid.Gaps)
	return g
}

// Settings bundles everything one evaluation cycle needs.
func (c *Config) Settings() strategy.Settings {
	return strategy.Settings{
		Indicators: calculator.Params{
			MomentumPeriod: c.Indicators.MomentumPeriod,
			ShortSpan:      c.Indicators.ShortSpan,
			LongSpan:       c.Indicators.LongSpan,
		},
		Grid: c.GridConfig(),
		Conversion: strategy.Conversion{
			Factor:  c.Market.Factor,
			Premium: c.Market.Premium,
		},
	}
}
