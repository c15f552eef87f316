package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	Account AccountConfig `toml:"account"`
	Options OptionsConfig `toml:"options"`
	Dumps   DumpsConfig   `toml:"dumps"`
}

type AccountConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	UserAgent    string `toml:"user_agent"`
}

type OptionsConfig struct {
	SaveLocation      string   `toml:"save_location"`
	Subreddits        []string `toml:"subreddits"`
	PostsPerSubreddit int      `toml:"posts_per_subreddit"`
	MonthsBack        int      `toml:"months_back"`
	PageSize          int      `toml:"page_size"` // Reddit caps listing pages at 100
	SelfPostsOnly     bool     `toml:"self_posts_only"`
}

type DumpsConfig struct {
	DataDir string `toml:"data_dir"`
	BaseURL string `toml:"base_url"`
}

const (
	defaultUserAgent         = "reddit-harvester/0.3 (corpus collection tool)"
	defaultPostsPerSubreddit = 3000
	defaultMonthsBack        = 24
	maxPageSize              = 100
	defaultDumpBaseURL       = "https://files.pushshift.io/reddit/submissions/"
)

func GetConfigPath() string {
	currentDirConfig := "config.toml"
	if _, err := os.Stat(currentDirConfig); err == nil {
		return currentDirConfig
	}

	return filepath.Join(GetConfigDir(), "config.toml")
}

func GetConfigDir() string {
	var configDir string
	var err error

	if runtime.GOOS == "darwin" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatal(err)
		}
		configDir = filepath.Join(homeDir, ".config")
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			log.Fatal(err)
		}
	}

	return filepath.Join(configDir, "reddit-harvester")
}

func SaveConfig(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), os.ModePerm); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	return encoder.Encode(cfg)
}

func CopyFile(srcPath string, dstPath string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}

func EnsureConfigExists(configPath string) error {
	if _, err := os.Stat(filepath.Dir(configPath)); os.IsNotExist(err) {
		err = os.MkdirAll(filepath.Dir(configPath), os.ModePerm)
		if err != nil {
			return err
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		exampleConfig := filepath.Join("example-config.toml")
		if _, err := os.Stat(exampleConfig); err == nil {
			if err := CopyFile(exampleConfig, configPath); err == nil {
				return nil
			}
			log.Printf("Failed to copy example config, falling back to defaults")
		}

		defaultConfig := CreateDefaultConfig()
		if err := SaveConfig(defaultConfig, configPath); err != nil {
			return fmt.Errorf("failed to ensure config exists: %v", err)
		}
	}

	return nil
}

func LoadConfig(configPath string) (*Config, error) {
	var config Config
	_, err := toml.DecodeFile(configPath, &config)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(&config)

	if config.Account.UserAgent == "" {
		config.Account.UserAgent = defaultUserAgent
	}
	if config.Options.SaveLocation == "" {
		return nil, fmt.Errorf("save_location is empty in %v", configPath)
	}
	if len(config.Options.Subreddits) == 0 {
		return nil, fmt.Errorf("no subreddits configured in %v", configPath)
	}

	for i, name := range config.Options.Subreddits {
		normalized := NormalizeSubreddit(name)
		if !IsValidSubredditName(normalized) {
			return nil, fmt.Errorf("invalid subreddit name %q in %v", name, configPath)
		}
		config.Options.Subreddits[i] = normalized
	}

	if config.Options.PostsPerSubreddit <= 0 {
		config.Options.PostsPerSubreddit = defaultPostsPerSubreddit
	}
	if config.Options.MonthsBack <= 0 {
		config.Options.MonthsBack = defaultMonthsBack
	}
	if config.Options.PageSize <= 0 || config.Options.PageSize > maxPageSize {
		config.Options.PageSize = maxPageSize
	}
	if config.Dumps.DataDir == "" {
		config.Dumps.DataDir = filepath.Join(config.Options.SaveLocation, "pushshift_data")
	}
	if config.Dumps.BaseURL == "" {
		config.Dumps.BaseURL = defaultDumpBaseURL
	}

	config.Options.SaveLocation = filepath.ToSlash(config.Options.SaveLocation)
	config.Dumps.DataDir = filepath.ToSlash(config.Dumps.DataDir)

	return &config, nil
}

// applyEnvOverrides keeps the .env credential surface working: values in the
// environment win over the ones in config.toml.
func applyEnvOverrides(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("REDDIT_CLIENT_ID"); v != "" {
		cfg.Account.ClientID = v
	}
	if v := os.Getenv("REDDIT_CLIENT_SECRET"); v != "" {
		cfg.Account.ClientSecret = v
	}
	if v := os.Getenv("REDDIT_USER_AGENT"); v != "" {
		cfg.Account.UserAgent = v
	}
}

func CreateDefaultConfig() *Config {
	return &Config{
		Account: AccountConfig{
			ClientID:     "",
			ClientSecret: "",
			UserAgent:    defaultUserAgent,
		},
		Options: OptionsConfig{
			SaveLocation:      "/path/to/save/data/to",
			Subreddits:        []string{"antiwork", "depression", "Anxiety"},
			PostsPerSubreddit: defaultPostsPerSubreddit,
			MonthsBack:        defaultMonthsBack,
			PageSize:          maxPageSize,
			SelfPostsOnly:     true,
		},
		Dumps: DumpsConfig{
			DataDir: "",
			BaseURL: defaultDumpBaseURL,
		},
	}
}

// NormalizeSubreddit strips an optional r/ prefix.
func NormalizeSubreddit(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "r/") {
		name = name[2:]
	}
	return name
}

// IsValidSubredditName checks the 1-21 character alphanumeric/underscore rule.
func IsValidSubredditName(name string) bool {
	if len(name) < 1 || len(name) > 21 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
