package config

import (
	"encoding/json"
	"fmt"
	"os"

	skm "github.com/flywave/go-skm"
)

// Config 选项文件中的转换设置
type Config struct {
	Skin    bool `json:"skin"`
	InPlace bool `json:"in_place"`
	// Shape 预先指定候选形状序号，为nil时交互询问
	Shape *int `json:"shape,omitempty"`
}

// Load 读取JSON选项文件，文件中未出现的字段保持零值
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Shape != nil && *cfg.Shape < 0 {
		return Config{}, fmt.Errorf("config: %s: negative shape %d", path, *cfg.Shape)
	}
	return cfg, nil
}

// Flags 命令行参数，未在命令行给出的字段为nil
type Flags struct {
	Skin    *bool
	InPlace *bool
	Shape   *int
}

// Resolve 命令行给出的参数覆盖选项文件
func (c *Config) Resolve(flags Flags) {
	if flags.Skin != nil {
		c.Skin = *flags.Skin
	}
	if flags.InPlace != nil {
		c.InPlace = *flags.InPlace
	}
	if flags.Shape != nil {
		n := *flags.Shape
		c.Shape = &n
	}
}

func (c Config) Options() skm.Options {
	return skm.Options{Skin: c.Skin, InPlace: c.InPlace}
}

// Chooser 指定了形状序号时返回固定序号的选择器，否则返回 fallback
func (c Config) Chooser(fallback skm.ShapeChooser) skm.ShapeChooser {
	if c.Shape != nil {
		return skm.IndexChooser(*c.Shape)
	}
	return fallback
}
