package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig возвращается Validate при недопустимых значениях
var ErrInvalidConfig = errors.New("некорректная конфигурация")

// maxTerrainHeight высота чанка (128) за вычетом запаса под дерево
const maxTerrainHeight = 128 - 8

// Config корневая структура конфигурации песочницы
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Terrain   TerrainConfig   `yaml:"terrain"`
	Player    PlayerConfig    `yaml:"player"`
	Logging   LoggingConfig   `yaml:"logging"`
	Debug     DebugConfig     `yaml:"debug"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// WorldConfig параметры стриминга чанков
type WorldConfig struct {
	Seed               int64         `yaml:"seed"`
	ViewRadius         int           `yaml:"view_radius"`          // R: радиус окна в чанках
	MaxSchedulePerCall int           `yaml:"max_schedule_per_call"` // M: новых задач генерации за вызов
	MaxDrainPerFrame   int           `yaml:"max_drain_per_frame"`   // 0: без ограничения
	MaxUploadsPerFrame int           `yaml:"max_uploads_per_frame"` // U: загрузок мешей за кадр
	Workers            int           `yaml:"workers"`               // 0: по числу CPU, <0: синхронно
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
}

// TerrainConfig параметры генератора ландшафта
type TerrainConfig struct {
	Frequency  float64 `yaml:"frequency"`
	MinHeight  int     `yaml:"min_height"`
	MaxHeight  int     `yaml:"max_height"`
	Ores       bool    `yaml:"ores"`
	Trees      bool    `yaml:"trees"`
	TreeChance int     `yaml:"tree_chance"` // T: дерево с вероятностью 1/T на столбец травы
	CoalVeins  int     `yaml:"coal_veins"`
	IronVeins  int     `yaml:"iron_veins"`
}

// PlayerConfig параметры игрока
type PlayerConfig struct {
	Radius    float32 `yaml:"radius"`
	Height    float32 `yaml:"height"`
	MoveSpeed float32 `yaml:"move_speed"`
	JumpSpeed float32 `yaml:"jump_speed"`
	Reach     float32 `yaml:"reach"`
}

// LoggingConfig параметры логирования
type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"` // пусто: без файлов
}

// DebugConfig отладочный HTTP-интерфейс
type DebugConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// TelemetryConfig трассировка OpenTelemetry
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Seed:               123456789,
			ViewRadius:         3,
			MaxSchedulePerCall: 4,
			MaxDrainPerFrame:   0,
			MaxUploadsPerFrame: 10,
			Workers:            0,
			ShutdownTimeout:    2 * time.Second,
		},
		Terrain: TerrainConfig{
			Frequency:  0.05,
			MinHeight:  20,
			MaxHeight:  50,
			Ores:       true,
			Trees:      true,
			TreeChance: 48,
			CoalVeins:  18,
			IronVeins:  8,
		},
		Player: PlayerConfig{
			Radius:    0.18,
			Height:    0.9,
			MoveSpeed: 3.0,
			JumpSpeed: 4.0,
			Reach:     8.0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Debug: DebugConfig{
			Enabled: false,
			Port:    0,
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			ServiceName: "voxel-sandbox",
		},
	}
}

// GetDebugPort возвращает порт отладочного API с поддержкой fallback значений
func (d *DebugConfig) GetDebugPort() int {
	return getIntWithEnvFallback(d.Port, "VOXEL_DEBUG_PORT", 2112)
}

// Validate проверяет диапазоны значений
func (c *Config) Validate() error {
	switch {
	case c.World.ViewRadius < 1:
		return fmt.Errorf("%w: view_radius должен быть >= 1, получено %d", ErrInvalidConfig, c.World.ViewRadius)
	case c.World.MaxSchedulePerCall < 1:
		return fmt.Errorf("%w: max_schedule_per_call должен быть >= 1", ErrInvalidConfig)
	case c.World.MaxUploadsPerFrame < 1:
		return fmt.Errorf("%w: max_uploads_per_frame должен быть >= 1", ErrInvalidConfig)
	case c.World.MaxDrainPerFrame < 0:
		return fmt.Errorf("%w: max_drain_per_frame не может быть отрицательным", ErrInvalidConfig)
	case c.World.ShutdownTimeout <= 0:
		return fmt.Errorf("%w: shutdown_timeout должен быть положительным", ErrInvalidConfig)
	case c.Terrain.Frequency <= 0:
		return fmt.Errorf("%w: frequency должна быть положительной", ErrInvalidConfig)
	case c.Terrain.MinHeight < 1 || c.Terrain.MaxHeight < c.Terrain.MinHeight:
		return fmt.Errorf("%w: ожидается 1 <= min_height <= max_height, получено %d..%d",
			ErrInvalidConfig, c.Terrain.MinHeight, c.Terrain.MaxHeight)
	case c.Terrain.MaxHeight > maxTerrainHeight:
		return fmt.Errorf("%w: max_height не может превышать %d", ErrInvalidConfig, maxTerrainHeight)
	case c.Terrain.Trees && c.Terrain.TreeChance < 1:
		return fmt.Errorf("%w: tree_chance должен быть >= 1", ErrInvalidConfig)
	case c.Player.Radius <= 0 || c.Player.Height <= 0:
		return fmt.Errorf("%w: размеры игрока должны быть положительными", ErrInvalidConfig)
	}
	return nil
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configValue int, envVar string, defaultValue int) int {
	if configValue > 0 {
		return configValue
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}

	return defaultValue
}

// applyEnv переопределяет сид из VOXEL_SEED
func (c *Config) applyEnv() error {
	if envVal := os.Getenv("VOXEL_SEED"); envVal != "" {
		seed, err := strconv.ParseInt(envVal, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: VOXEL_SEED=%q: %v", ErrInvalidConfig, envVal, err)
		}
		c.World.Seed = seed
	}
	return nil
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV VOXEL_CONFIG; если и он не задан,
// возвращаются значения по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
