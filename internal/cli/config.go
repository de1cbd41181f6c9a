package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/claimcheck/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// secretKeys are never written to config files, only read from the environment
var secretKeys = []string{"llm.api_key", "search.api_key", "search.engine_id", "post.api_key", "cache.redis_password"}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage claimcheck configuration",
	Long: `Manage claimcheck configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (CLAIMCHECK_*, plus API keys such as OPENAI_API_KEY)
3. Config file (~/.claimcheck/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after merging defaults, config file, env vars and flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println("  Current Configuration")
		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println()
		fmt.Println(string(yamlData))

		fmt.Println("Credentials:")
		fmt.Printf("  LLM (%s):     %s\n", cfg.LLM.Provider, credentialState(cfg.LLM.APIKey, cfg.LLM.Provider == "ollama"))
		fmt.Printf("  Search key:     %s\n", credentialState(cfg.Search.APIKey, false))
		fmt.Printf("  Search engine:  %s\n", credentialState(cfg.Search.EngineID, false))
		fmt.Printf("  Post API:       %s\n", credentialState(cfg.Post.APIKey, false))
		if len(cfg.Cache.RedisAddr) > 0 {
			fmt.Printf("  Redis password: %s\n", credentialState(cfg.Cache.RedisPassword, true))
		}
		fmt.Println()

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.claimcheck/config.yaml with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configDir := filepath.Join(home, ".claimcheck")
		configPath := filepath.Join(configDir, "config.yaml")

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'claimcheck config show' to view it, or delete it first to recreate", configPath)
		}

		if err := os.MkdirAll(configDir, 0o755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		if err := os.WriteFile(configPath, []byte(defaultConfigFile()), 0o600); err != nil {
			return fmt.Errorf("error writing config: %w", err)
		}

		fmt.Printf("✓ Created default configuration: %s\n", configPath)
		fmt.Printf("\nTo view the configuration:\n")
		fmt.Printf("  claimcheck config show\n")
		fmt.Printf("\nTo customize, edit the file with your preferred editor:\n")
		fmt.Printf("  $EDITOR %s\n\n", configPath)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

// defaultConfigFile renders the defaults as a commented YAML document
func defaultConfigFile() string {
	var b strings.Builder
	b.WriteString("# claimcheck configuration file\n")
	b.WriteString("#\n")
	b.WriteString("# Configuration hierarchy (highest to lowest priority):\n")
	b.WriteString("#   1. CLI flags\n")
	b.WriteString("#   2. Environment variables (CLAIMCHECK_*, e.g. CLAIMCHECK_LLM_PROVIDER=ollama)\n")
	b.WriteString("#   3. This config file\n")
	b.WriteString("#   4. Built-in defaults\n\n")

	data, err := yaml.Marshal(model.DefaultConfig())
	if err == nil {
		b.Write(data)
	}

	b.WriteString("\n# API keys are read from the environment or a .env file:\n")
	b.WriteString("#   OPENAI_API_KEY=sk-...        (llm.provider: openai)\n")
	b.WriteString("#   ANTHROPIC_API_KEY=sk-ant-... (llm.provider: anthropic)\n")
	b.WriteString("#   GEMINI_API_KEY=...           (llm.provider: gemini)\n")
	b.WriteString("#   OLLAMA_BASE_URL=http://localhost:11434\n")
	b.WriteString("#   GOOGLE_API_KEY=... GOOGLE_CX=...   (web search)\n")
	b.WriteString("#   RAPIDAPI_KEY=... RAPIDAPI_HOST=... (post fetching)\n")
	b.WriteString("#   CLAIMCHECK_CACHE_REDIS_PASSWORD=... (when cache.redis_addrs is set)\n")
	return b.String()
}

// loadConfig merges defaults, config file, environment and bound flags
func loadConfig() (*model.Config, error) {
	return decodeConfig(viper.GetViper(), os.Getenv)
}

// decodeConfig layers v over the defaults and fills credentials from getenv
func decodeConfig(v *viper.Viper, getenv func(string) string) (*model.Config, error) {
	cfg := model.DefaultConfig()

	if err := setDefaults(v, cfg); err != nil {
		return nil, err
	}
	for _, key := range secretKeys {
		_ = v.BindEnv(key)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvKeys(cfg, getenv)
	return cfg, nil
}

// setDefaults registers every default so CLAIMCHECK_* variables can override it
func setDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var sections map[string]map[string]any
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	for section, values := range sections {
		for key, value := range values {
			v.SetDefault(section+"."+key, value)
		}
	}
	return nil
}

// applyEnvKeys fills credentials from the conventional provider variables
func applyEnvKeys(cfg *model.Config, getenv func(string) string) {
	if cfg.LLM.APIKey == "" {
		switch strings.ToLower(cfg.LLM.Provider) {
		case "openai":
			cfg.LLM.APIKey = getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = getenv("ANTHROPIC_API_KEY")
		case "gemini", "google":
			cfg.LLM.APIKey = getenv("GEMINI_API_KEY")
		}
	}
	if cfg.LLM.BaseURL == "" && strings.EqualFold(cfg.LLM.Provider, "ollama") {
		cfg.LLM.BaseURL = getenv("OLLAMA_BASE_URL")
	}

	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = getenv("GOOGLE_API_KEY")
	}
	if cfg.Search.EngineID == "" {
		cfg.Search.EngineID = getenv("GOOGLE_CX")
	}

	if cfg.Post.APIKey == "" {
		cfg.Post.APIKey = getenv("RAPIDAPI_KEY")
	}
	if cfg.Post.APIHost == "" {
		cfg.Post.APIHost = getenv("RAPIDAPI_HOST")
	}
}

func credentialState(value string, optional bool) string {
	switch {
	case value != "":
		return "set"
	case optional:
		return "not required"
	default:
		return "missing"
	}
}
