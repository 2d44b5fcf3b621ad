// Package config provides configuration management for DocChunk
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/docchunk/docchunk/pkg/interfaces"
)

// BaseConfig provides common configuration functionality
type BaseConfig struct {
	Schema    string `yaml:"schema,omitempty" json:"schema,omitempty"`
	mu        sync.RWMutex
	validator *validator.Validate
}

// NewBaseConfig creates a new base configuration
func NewBaseConfig() *BaseConfig {
	return &BaseConfig{
		validator: validator.New(),
	}
}

// Validate validates the configuration
func (c *BaseConfig) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.validator.Struct(c)
}

// ValidateStruct validates an arbitrary tagged struct with the shared
// validator instance
func (c *BaseConfig) ValidateStruct(s interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.validator == nil {
		c.validator = validator.New()
	}
	return c.validator.Struct(s)
}

// FromJSONFile loads configuration from a JSON file
func (c *BaseConfig) FromJSONFile(path string, target interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return v.Unmarshal(target)
}

// FromYAMLFile loads configuration from a YAML file
func (c *BaseConfig) FromYAMLFile(path string, target interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return v.Unmarshal(target)
}

// ToYAMLFile saves configuration to a YAML file
func (c *BaseConfig) ToYAMLFile(path string, source interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(source)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Get retrieves a configuration value from a tagged struct by json key
func (c *BaseConfig) Get(source interface{}, key string, defaultValue interface{}) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	val := reflect.ValueOf(source)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		tagName := fieldType.Tag.Get("json")
		if tagName == "" {
			tagName = strings.ToLower(fieldType.Name)
		} else {
			tagName = strings.Split(tagName, ",")[0]
		}

		if tagName == key {
			if field.CanInterface() {
				return field.Interface()
			}
		}
	}

	return defaultValue
}

// SplitterSettings represents the file-level configuration of a single
// splitter. Nil word lists mean family defaults; empty lists disable
// filtering explicitly. MinWords zero means unset: Map omits the key
// and the splitter's built-in floor applies, so filtering cannot be
// disabled by setting 0 — omit the key instead.
type SplitterSettings struct {
	Family        string   `yaml:"family" json:"family" validate:"required,oneof=regex punkt sat wtp html markdown pdf docx doc recursive"`
	Granularity   string   `yaml:"granularity" json:"granularity" validate:"required,oneof=sentence paragraph"`
	Model         string   `yaml:"model,omitempty" json:"model,omitempty"`
	ModelPath     string   `yaml:"model_path,omitempty" json:"model_path,omitempty"`
	UseCUDA       bool     `yaml:"use_cuda,omitempty" json:"use_cuda,omitempty"`
	UseONNX       *bool    `yaml:"use_onnx,omitempty" json:"use_onnx,omitempty"`
	Lang          string   `yaml:"lang,omitempty" json:"lang,omitempty"`
	StopWords     []string `yaml:"stop_words,omitempty" json:"stop_words,omitempty"`
	BadWords      []string `yaml:"bad_words,omitempty" json:"bad_words,omitempty"`
	MinWords      int      `yaml:"min_words,omitempty" json:"min_words,omitempty" validate:"omitempty,gt=0"`
	IncludeTitle  *bool    `yaml:"include_title,omitempty" json:"include_title,omitempty"`
	SkipLists     *bool    `yaml:"skip_lists,omitempty" json:"skip_lists,omitempty"`
	UseDOM        bool     `yaml:"use_dom,omitempty" json:"use_dom,omitempty"`
	MaxChunkChars int      `yaml:"max_chunk_chars,omitempty" json:"max_chunk_chars,omitempty" validate:"omitempty,gt=0"`
	ChunkOverlap  int      `yaml:"chunk_overlap,omitempty" json:"chunk_overlap,omitempty" validate:"omitempty,gte=0"`
}

// Map converts the settings into the generic option map consumed by the
// splitter factory. Only keys the user actually set are included so the
// factory's own defaults stay in charge.
func (s *SplitterSettings) Map() map[string]interface{} {
	m := make(map[string]interface{})
	if s.Model != "" {
		m["model"] = s.Model
	}
	if s.ModelPath != "" {
		m["model_path"] = s.ModelPath
	}
	if s.UseCUDA {
		m["use_cuda"] = s.UseCUDA
	}
	if s.UseONNX != nil {
		m["use_onnx"] = *s.UseONNX
	}
	if s.Lang != "" {
		m["lang"] = s.Lang
	}
	if s.StopWords != nil {
		m["stop_words"] = s.StopWords
	}
	if s.BadWords != nil {
		m["bad_words"] = s.BadWords
	}
	if s.MinWords > 0 {
		m["min_words"] = s.MinWords
	}
	if s.IncludeTitle != nil {
		m["include_title"] = *s.IncludeTitle
	}
	if s.SkipLists != nil {
		m["skip_lists"] = *s.SkipLists
	}
	if s.UseDOM {
		m["use_dom"] = s.UseDOM
	}
	if s.MaxChunkChars > 0 {
		m["max_chunk_chars"] = s.MaxChunkChars
	}
	if s.ChunkOverlap > 0 {
		m["chunk_overlap"] = s.ChunkOverlap
	}
	return m
}

// NewSplitterSettings creates splitter settings with the default family
func NewSplitterSettings() *SplitterSettings {
	return &SplitterSettings{
		Family:      "regex",
		Granularity: "sentence",
	}
}

// FetchSettings represents HTTP retrieval configuration
type FetchSettings struct {
	Timeout   time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	UserAgent string        `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
}

// NewFetchSettings creates default fetch settings
func NewFetchSettings() *FetchSettings {
	return &FetchSettings{
		Timeout:   30 * time.Second,
		UserAgent: "DocChunk/1.0",
	}
}

// LoggingSettings represents logging configuration
type LoggingSettings struct {
	Level string `yaml:"level,omitempty" json:"level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	File  string `yaml:"file,omitempty" json:"file,omitempty"`
}

// NewLoggingSettings creates default logging settings
func NewLoggingSettings() *LoggingSettings {
	return &LoggingSettings{
		Level: "info",
	}
}

// PipelineConfig represents the main DocChunk configuration
type PipelineConfig struct {
	BaseConfig     `yaml:",inline"`
	Splitter       *SplitterSettings `yaml:"splitter" json:"splitter" validate:"required"`
	Fetch          *FetchSettings    `yaml:"fetch,omitempty" json:"fetch,omitempty"`
	Logging        *LoggingSettings  `yaml:"logging,omitempty" json:"logging,omitempty"`
	MetricsEnabled bool              `yaml:"metrics_enabled" json:"metrics_enabled"`
}

// NewPipelineConfig creates a new pipeline configuration
func NewPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		BaseConfig:     *NewBaseConfig(),
		Splitter:       NewSplitterSettings(),
		Fetch:          NewFetchSettings(),
		Logging:        NewLoggingSettings(),
		MetricsEnabled: false,
	}
}

// Validate validates the pipeline configuration including nested settings
func (c *PipelineConfig) Validate() error {
	if c.validator == nil {
		c.validator = validator.New()
	}
	if err := c.validator.Struct(c); err != nil {
		return err
	}
	if c.Splitter != nil {
		if err := c.validator.Struct(c.Splitter); err != nil {
			return err
		}
	}
	if c.Logging != nil {
		if err := c.validator.Struct(c.Logging); err != nil {
			return err
		}
	}
	return nil
}

// FromYAMLFile loads a pipeline configuration from a YAML file
func (c *PipelineConfig) FromYAMLFile(path string) error {
	return c.BaseConfig.FromYAMLFile(path, c)
}

// FromJSONFile loads a pipeline configuration from a JSON file
func (c *PipelineConfig) FromJSONFile(path string) error {
	return c.BaseConfig.FromJSONFile(path, c)
}

// ToYAMLFile saves the pipeline configuration to a YAML file
func (c *PipelineConfig) ToYAMLFile(path string) error {
	return c.BaseConfig.ToYAMLFile(path, c)
}

// ConfigManager implements the configuration manager interface
type ConfigManager struct {
	config map[string]interface{}
	mu     sync.RWMutex
	viper  *viper.Viper
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() interfaces.ConfigManager {
	return &ConfigManager{
		config: make(map[string]interface{}),
		viper:  viper.New(),
	}
}

// Load loads configuration from a file
func (cm *ConfigManager) Load(ctx context.Context, path string) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.viper.SetConfigFile(path)

	if err := cm.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	cm.config = cm.viper.AllSettings()
	return nil
}

// Get retrieves a configuration value
func (cm *ConfigManager) Get(key string) interface{} {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return cm.viper.Get(key)
}

// Set sets a configuration value
func (cm *ConfigManager) Set(key string, value interface{}) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.viper.Set(key, value)
	cm.config[key] = value
	return nil
}

// Save saves configuration to a file
func (cm *ConfigManager) Save(ctx context.Context, path string) error {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return cm.viper.WriteConfigAs(path)
}

// Watch watches for configuration changes
func (cm *ConfigManager) Watch(ctx context.Context, callback func(key string, value interface{})) error {
	cm.viper.WatchConfig()
	cm.viper.OnConfigChange(func(e fsnotify.Event) {
		cm.mu.Lock()
		defer cm.mu.Unlock()

		cm.config = cm.viper.AllSettings()

		for key, value := range cm.config {
			callback(key, value)
		}
	})

	return nil
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv(prefix string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return v
}

// MergeConfigs merges multiple configurations
func MergeConfigs(configs ...map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	for _, config := range configs {
		for key, value := range config {
			result[key] = value
		}
	}

	return result
}
