package commands

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/scheduler-client/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration stored in ~/.scheduler/config.yml.
type Config struct {
	Scheduler         string     `json:"scheduler,omitempty"         yaml:"scheduler,omitempty"`
	API               string     `json:"api,omitempty"               yaml:"api,omitempty"`
	TokenURL          string     `json:"token_url,omitempty"         yaml:"token_url,omitempty"`
	Token             string     `json:"token,omitempty"             yaml:"token,omitempty"`
	TokenExpiresAt    *time.Time `json:"token_expires_at,omitempty"  yaml:"token_expires_at,omitempty"`
	RefreshToken      string     `json:"refresh_token,omitempty"     yaml:"refresh_token,omitempty"`
	Username          string     `json:"username,omitempty"          yaml:"username,omitempty"`
	ClientID          string     `json:"client_id,omitempty"         yaml:"client_id,omitempty"`
	ClientSecret      string     `json:"client_secret,omitempty"     yaml:"client_secret,omitempty"`
	SpaceGUID         string     `json:"space_guid,omitempty"        yaml:"space_guid,omitempty"`
	Output            string     `json:"output,omitempty"            yaml:"output,omitempty"`
	PerPage           int        `json:"per_page,omitempty"          yaml:"per_page,omitempty"`
	Concurrency       int        `json:"concurrency,omitempty"       yaml:"concurrency,omitempty"`
	SkipSSLValidation bool       `json:"skip_ssl_validation"         yaml:"skip_ssl_validation"`
}

// configSetters assigns a raw value to a settable key. An empty value resets the key.
var configSetters = map[string]func(*Config, string) error{
	"scheduler":  func(c *Config, v string) error { c.Scheduler = v; return nil },
	"api":        func(c *Config, v string) error { c.API = v; return nil },
	"token_url":  func(c *Config, v string) error { c.TokenURL = v; return nil },
	"username":   func(c *Config, v string) error { c.Username = v; return nil },
	"client_id":  func(c *Config, v string) error { c.ClientID = v; return nil },
	"space_guid": func(c *Config, v string) error { c.SpaceGUID = v; return nil },
	"output": func(c *Config, v string) error {
		if v != "" && !slices.Contains([]string{constants.FormatTable, constants.FormatJSON, constants.FormatYAML}, v) {
			return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, v)
		}

		c.Output = v

		return nil
	},
	"per_page": func(c *Config, v string) error {
		perPage, err := parsePositive(v)
		if err != nil {
			return err
		}

		c.PerPage = min(perPage, constants.MaxPerPage)

		return nil
	},
	"concurrency": func(c *Config, v string) error {
		concurrency, err := parsePositive(v)
		if err != nil {
			return err
		}

		c.Concurrency = concurrency

		return nil
	},
	"skip_ssl_validation": func(c *Config, v string) error {
		switch v {
		case "", "false":
			c.SkipSSLValidation = false
		case constants.BooleanTrue:
			c.SkipSSLValidation = true
		default:
			return constants.ErrInvalidEnabledFlag
		}

		return nil
	},
}

func parsePositive(value string) (int, error) {
	if value == "" {
		return 0, nil
	}

	number, err := strconv.Atoi(value)
	if err != nil || number <= 0 {
		return 0, fmt.Errorf("%w: %s", constants.ErrInvalidNumber, value)
	}

	return number, nil
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the settings stored in ~/.scheduler/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config := loadConfig()
			masked := *config

			if masked.Token != "" {
				masked.Token = constants.MaskedSecret
			}

			if masked.RefreshToken != "" {
				masked.RefreshToken = constants.MaskedSecret
			}

			if masked.ClientSecret != "" {
				masked.ClientSecret = constants.MaskedSecret
			}

			return outputResult(cmd, &masked, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Scheduler", formatConfigValue(masked.Scheduler))
				_ = table.Append("API", formatConfigValue(masked.API))
				_ = table.Append("Token URL", formatConfigValue(masked.TokenURL))
				_ = table.Append("Username", formatConfigValue(masked.Username))
				_ = table.Append("Client ID", formatConfigValue(masked.ClientID))
				_ = table.Append("Space GUID", formatConfigValue(masked.SpaceGUID))
				_ = table.Append("Token", formatConfigValue(masked.Token))
				_ = table.Append("Token Expires", formatTime(masked.TokenExpiresAt))
				_ = table.Append("Per Page", strconv.Itoa(effectivePerPage(&masked)))
				_ = table.Append("Concurrency", strconv.Itoa(effectiveConcurrency(&masked)))
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + strings.Join(configKeys(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfigValue(cmd, args[0], args[1])
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfigValue(cmd, args[0], "")
		},
	}
}

func updateConfigValue(cmd *cobra.Command, key, value string) error {
	setter, ok := configSetters[key]
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	config := loadConfig()

	err := setter(config, value)
	if err != nil {
		return err
	}

	err = saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if value == "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", key)
	} else {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s\n", key, value)
	}

	return nil
}

func configKeys() []string {
	return slices.Sorted(maps.Keys(configSetters))
}

// loadConfig reads the effective configuration from viper, so flags and
// SCHEDULER_* variables override the config file.
func loadConfig() *Config {
	config := &Config{
		Scheduler:         viper.GetString("scheduler"),
		API:               viper.GetString("api"),
		TokenURL:          viper.GetString("token_url"),
		Token:             viper.GetString("token"),
		RefreshToken:      viper.GetString("refresh_token"),
		Username:          viper.GetString("username"),
		ClientID:          viper.GetString("client_id"),
		ClientSecret:      viper.GetString("client_secret"),
		SpaceGUID:         viper.GetString("space_guid"),
		Output:            viper.GetString("output"),
		PerPage:           viper.GetInt("per_page"),
		Concurrency:       viper.GetInt("concurrency"),
		SkipSSLValidation: viper.GetBool("skip_ssl_validation"),
	}

	if viper.IsSet("token_expires_at") {
		expiresAt := viper.GetTime("token_expires_at")
		if !expiresAt.IsZero() {
			config.TokenExpiresAt = &expiresAt
		}
	}

	return config
}

func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".scheduler", "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	syncViper(config)

	return nil
}

// syncViper makes later reads in this process see the saved values.
func syncViper(config *Config) {
	viper.Set("scheduler", config.Scheduler)
	viper.Set("api", config.API)
	viper.Set("token_url", config.TokenURL)
	viper.Set("token", config.Token)
	viper.Set("refresh_token", config.RefreshToken)
	viper.Set("username", config.Username)
	viper.Set("client_id", config.ClientID)
	viper.Set("client_secret", config.ClientSecret)
	viper.Set("space_guid", config.SpaceGUID)
	viper.Set("output", config.Output)
	viper.Set("per_page", config.PerPage)
	viper.Set("concurrency", config.Concurrency)
	viper.Set("skip_ssl_validation", config.SkipSSLValidation)

	if config.TokenExpiresAt != nil {
		viper.Set("token_expires_at", *config.TokenExpiresAt)
	} else {
		viper.Set("token_expires_at", time.Time{})
	}
}

func effectivePerPage(config *Config) int {
	if config.PerPage > 0 {
		return min(config.PerPage, constants.MaxPerPage)
	}

	return constants.DefaultPerPage
}

func effectiveConcurrency(config *Config) int {
	if config.Concurrency > 0 {
		return config.Concurrency
	}

	return constants.DefaultPageConcurrency
}

func formatConfigValue(value string) string {
	if value == "" {
		return "-"
	}

	return value
}

func formatTime(value *time.Time) string {
	if value == nil || value.IsZero() {
		return "-"
	}

	return value.Format(time.RFC3339)
}
