// Package config loads scanlate settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/huyinayena-commits/EasyScanlate/pkg/textnorm"
	"github.com/huyinayena-commits/EasyScanlate/pkg/transcript"
)

type Config struct {
	OCR      OCRConfig      `yaml:"ocr"`
	Paths    PathsConfig    `yaml:"paths"`
	Text     TextConfig     `yaml:"text"`
	Render   RenderConfig   `yaml:"render"`
	Logging  LoggingConfig  `yaml:"logging"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
}

type OCRConfig struct {
	Language string `yaml:"language"`
	// Threshold binarizes pages at this gray level (1-255). 0 keeps gray pages.
	Threshold int `yaml:"threshold"`
}

type PathsConfig struct {
	KotatsuDir       string `yaml:"kotatsu_dir"`
	TranscriptSuffix string `yaml:"transcript_suffix"`
	UploadBase       string `yaml:"upload_base"`
}

// TextConfig replaces the built-in normalization tables when set. CharMap
// keys and values must be single characters.
type TextConfig struct {
	WatermarkPhrases []string          `yaml:"watermark_phrases"`
	CharMap          map[string]string `yaml:"char_map"`
}

type RenderConfig struct {
	PageLabel string `yaml:"page_label"`
	TextLabel string `yaml:"text_label"`
	EmptyText string `yaml:"empty_text"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	JWTSecret   string `yaml:"jwt_secret"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
	// AutoMigrate defaults to true when unset.
	AutoMigrate *bool `yaml:"auto_migrate"`
}

// ShouldAutoMigrate reports whether schema migrations run at startup.
func (d DatabaseConfig) ShouldAutoMigrate() bool {
	return d.AutoMigrate == nil || *d.AutoMigrate
}

const (
	DefaultLanguage   = "ind"
	DefaultKotatsuDir = "/storage/emulated/0/KOTATSU/"
	DefaultAddr       = ":8081"
	devJWTSecret      = "dev-insecure-secret-change"
)

// Default returns a Config with every default applied.
func Default() *Config {
	c := &Config{}
	_ = c.Validate()
	return c
}

// Load reads path, applies environment overrides and validates the result.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	c := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, c); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&c.OCR.Language, "SCANLATE_LANG")
	set(&c.Paths.KotatsuDir, "SCANLATE_KOTATSU_DIR")
	set(&c.Logging.Level, "SCANLATE_LOG_LEVEL")
	set(&c.Database.DSN, "DB_DSN")
	set(&c.Server.JWTSecret, "JWT_SECRET")
	set(&c.Paths.UploadBase, "UPLOAD_BASE")
	set(&c.Server.Addr, "SERVER_ADDR")
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		switch strings.ToLower(v) {
		case "false", "0", "no":
			f := false
			c.Database.AutoMigrate = &f
		default:
			t := true
			c.Database.AutoMigrate = &t
		}
	}
}

// Validate checks field formats and fills defaults.
func (c *Config) Validate() error {
	for k, v := range c.Text.CharMap {
		if utf8.RuneCountInString(k) != 1 || utf8.RuneCountInString(v) != 1 {
			return fmt.Errorf("text.char_map entry %q: %q must map one character to one character", k, v)
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	if c.OCR.Threshold < 0 || c.OCR.Threshold > 255 {
		return fmt.Errorf("ocr.threshold %d is outside 0-255", c.OCR.Threshold)
	}
	if c.Server.MaxUploadMB < 0 {
		return fmt.Errorf("server.max_upload_mb must not be negative")
	}

	if c.OCR.Language == "" {
		c.OCR.Language = DefaultLanguage
	}
	if c.Paths.KotatsuDir == "" {
		c.Paths.KotatsuDir = DefaultKotatsuDir
	}
	if c.Paths.TranscriptSuffix == "" {
		c.Paths.TranscriptSuffix = "_transcript.md"
	}
	if c.Paths.UploadBase == "" {
		c.Paths.UploadBase = "uploads"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.JWTSecret == "" {
		c.Server.JWTSecret = devJWTSecret
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 200
	}
	d := transcript.DefaultLabels()
	if c.Render.PageLabel == "" {
		c.Render.PageLabel = d.Page
	}
	if c.Render.TextLabel == "" {
		c.Render.TextLabel = d.Text
	}
	if c.Render.EmptyText == "" {
		c.Render.EmptyText = d.Empty
	}
	return nil
}

// Tables returns the normalization tables: configured entries replace the
// corresponding built-in table, absent ones keep it.
func (c *Config) Tables() textnorm.Tables {
	t := textnorm.DefaultTables()
	if len(c.Text.WatermarkPhrases) > 0 {
		t.WatermarkPhrases = append([]string(nil), c.Text.WatermarkPhrases...)
	}
	if len(c.Text.CharMap) > 0 {
		t.CharMap = make(map[rune]rune, len(c.Text.CharMap))
		for k, v := range c.Text.CharMap {
			kr, _ := utf8.DecodeRuneInString(k)
			vr, _ := utf8.DecodeRuneInString(v)
			t.CharMap[kr] = vr
		}
	}
	return t
}

func (c *Config) Labels() transcript.Labels {
	return transcript.Labels{
		Page:  c.Render.PageLabel,
		Text:  c.Render.TextLabel,
		Empty: c.Render.EmptyText,
	}
}

// UsingDevSecret reports whether no JWT secret was configured.
func (c *Config) UsingDevSecret() bool {
	return c.Server.JWTSecret == devJWTSecret
}
