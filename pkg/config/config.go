/*
Package config manages TOML config for wordtag services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/arvhem/wordtag/internal/utils"
	"github.com/arvhem/wordtag/pkg/lex"
	"github.com/arvhem/wordtag/pkg/lexicon"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Engine     EngineConfig     `toml:"engine"`
	Lexicon    LexiconConfig    `toml:"lexicon"`
	Recognizer RecognizerConfig `toml:"recognizer"`
	Server     ServerConfig     `toml:"server"`
	CLI        CliConfig        `toml:"cli"`
}

// EngineConfig has resolver and tracker options.
type EngineConfig struct {
	MaxNgram  int      `toml:"max_ngram"`
	CacheSize int      `toml:"cache_size"`
	StopTags  []string `toml:"stop_tags"`
}

// Options converts the section into engine options.
func (e EngineConfig) Options() lex.Options {
	return lex.Options{
		MaxNgram:  e.MaxNgram,
		CacheSize: e.CacheSize,
		StopTags:  e.StopTags,
	}
}

// LexiconConfig points at the lexicon directory and table order.
type LexiconConfig struct {
	Dir        string   `toml:"dir"`
	Tables     []string `toml:"tables"`
	DefaultTag string   `toml:"default_tag"`
}

// Options converts the section into lexicon open options.
func (l LexiconConfig) Options() lexicon.Options {
	return lexicon.Options{
		Tables:     l.Tables,
		DefaultTag: l.DefaultTag,
	}
}

// RecognizerConfig declares the recognizer chain in front of the
// dictionary: standard rule or group names in order, plus inline
// literal and pattern rules the names may refer to.
type RecognizerConfig struct {
	Rules    []string      `toml:"rules"`
	TLDFile  string        `toml:"tld_file"`
	Literals []LiteralRule `toml:"literal"`
	Patterns []PatternRule `toml:"pattern"`
}

// LiteralRule is an inline exact-match rule ([[recognizer.literal]]).
type LiteralRule struct {
	Tag    string   `toml:"tag"`
	Values []string `toml:"values"`
}

// PatternRule is an inline whole-word regex rule ([[recognizer.pattern]]).
type PatternRule struct {
	Tag     string `toml:"tag"`
	Pattern string `toml:"pattern"`
}

// Specs resolves the configured rule names into chain specs. A name
// matching an inline rule's tag takes the inline definition; anything
// else is passed through by name for the standard catalog to resolve.
// With no names configured, the inline rules apply in declaration
// order. Unknown names fail later, at chain construction.
func (rc RecognizerConfig) Specs() []lex.RuleSpec {
	if len(rc.Rules) == 0 {
		var specs []lex.RuleSpec
		for _, lit := range rc.Literals {
			specs = append(specs, lex.Literal(lit.Tag, lit.Values...))
		}
		for _, pat := range rc.Patterns {
			specs = append(specs, lex.Pattern(pat.Tag, pat.Pattern))
		}
		return specs
	}
	specs := make([]lex.RuleSpec, 0, len(rc.Rules))
	for _, name := range rc.Rules {
		specs = append(specs, rc.resolve(name))
	}
	return specs
}

func (rc RecognizerConfig) resolve(name string) lex.RuleSpec {
	for _, lit := range rc.Literals {
		if lit.Tag == name {
			return lex.Literal(lit.Tag, lit.Values...)
		}
	}
	for _, pat := range rc.Patterns {
		if pat.Tag == name {
			return lex.Pattern(pat.Tag, pat.Pattern)
		}
	}
	return lex.Named(name)
}

// ServerConfig has server related options.
type ServerConfig struct {
	ReloadEvery int `toml:"reload_every"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	ShowTrace  bool `toml:"show_trace"`
	NgramLimit int  `toml:"ngram_limit"`
}

// GetConfigDir picks the first writable config location: ~/.config,
// then the macOS application-support directory, then the directory
// holding the binary.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("No home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "wordtag")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	// macOS convention, tried when ~/.config is not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "wordtag")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Executable directory unavailable: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath names config.toml under the config directory.
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads the config from the explicit path when
// one is given, else from the default location, else falls back to
// built-in defaults. The returned path is the file actually used, or
// empty for pure defaults.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Custom config %s did not load: %v. Trying the default path", customConfigPath, err)
			} else {
				log.Debugf("Config loaded from %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config %s missing: %v. Trying the default path", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("No default config path: %v. Using built-in defaults", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Config at %s neither loaded nor created: %v. Using built-in defaults", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Config loaded from default path %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxNgram:  lex.DefaultMaxNgram,
			CacheSize: lex.DefaultCacheSize,
		},
		Lexicon: LexiconConfig{
			Dir: "data",
		},
		Recognizer: RecognizerConfig{
			Rules: []string{"SPECIALS", "SPLIT"},
		},
		Server: ServerConfig{
			ReloadEvery: 100,
		},
		CLI: CliConfig{
			ShowTrace:  true,
			NgramLimit: 24,
		},
	}
}

// InitConfig loads the config file, writing a default one first when
// none exists. Trouble on the way degrades to built-in defaults rather
// than failing the run.
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Cannot create config directory %s: %v. Using built-in defaults", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Cannot write default config to %s: %v. Using built-in defaults", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Wrote default config to %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Config %s did not load: %v. Using built-in defaults", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig reads a TOML config over the defaults. A file the strict
// decode rejects goes through partial recovery instead of failing.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse re-reads the file as a raw map and keeps the
// well-typed keys, leaving defaults for the broken ones.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Nothing usable in %s: %v. Using all defaults", configPath, err)
		return config, nil
	}

	if engineSection, ok := utils.ExtractSection(tempConfig, "engine"); ok {
		extractEngineConfig(engineSection, &config.Engine)
	}
	if lexiconSection, ok := utils.ExtractSection(tempConfig, "lexicon"); ok {
		extractLexiconConfig(lexiconSection, &config.Lexicon)
	}
	if recognizerSection, ok := utils.ExtractSection(tempConfig, "recognizer"); ok {
		extractRecognizerConfig(recognizerSection, &config.Recognizer)
	}
	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if cliSection, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(cliSection, &config.CLI)
	}
	return config, nil
}

// extractEngineConfig recovers well-typed engine keys.
func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.ExtractInt64(data, "max_ngram"); ok {
		engine.MaxNgram = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		engine.CacheSize = val
	}
	if val, ok := utils.ExtractStringSlice(data, "stop_tags"); ok {
		engine.StopTags = val
	}
}

// extractLexiconConfig recovers well-typed lexicon keys.
func extractLexiconConfig(data map[string]any, lexicon *LexiconConfig) {
	if val, ok := utils.ExtractString(data, "dir"); ok {
		lexicon.Dir = val
	}
	if val, ok := utils.ExtractStringSlice(data, "tables"); ok {
		lexicon.Tables = val
	}
	if val, ok := utils.ExtractString(data, "default_tag"); ok {
		lexicon.DefaultTag = val
	}
}

// extractRecognizerConfig extracts the scalar recognizer fields from a
// map; inline rule tables are not recovered partially.
func extractRecognizerConfig(data map[string]any, rec *RecognizerConfig) {
	if val, ok := utils.ExtractStringSlice(data, "rules"); ok {
		rec.Rules = val
	}
	if val, ok := utils.ExtractString(data, "tld_file"); ok {
		rec.TLDFile = val
	}
}

// extractServerConfig recovers well-typed server keys.
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "reload_every"); ok {
		server.ReloadEvery = val
	}
}

// extractCliConfig recovers well-typed cli keys.
func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractBool(data, "show_trace"); ok {
		cli.ShowTrace = val
	}
	if val, ok := utils.ExtractInt64(data, "ngram_limit"); ok {
		cli.NgramLimit = val
	}
}

// RebuildConfigFile overwrites the default config.toml with stock
// values.
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(defaultPath)
	if err := utils.EnsureDir(configDir); err != nil {
		return err
	}
	config := DefaultConfig()
	return utils.SaveTOMLFile(config, defaultPath)
}

// GetActiveConfigPath reports which config file a run is using, in
// absolute form for display.
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig writes the config out as TOML.
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes engine and server values and saves to file
func (c *Config) Update(configPath string, maxNgram, cacheSize, reloadEvery *int) error {
	if maxNgram != nil {
		c.Engine.MaxNgram = *maxNgram
	}
	if cacheSize != nil {
		c.Engine.CacheSize = *cacheSize
	}
	if reloadEvery != nil {
		c.Server.ReloadEvery = *reloadEvery
	}
	return SaveConfig(c, configPath)
}
