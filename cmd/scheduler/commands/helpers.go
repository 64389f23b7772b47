package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fivetwenty-io/scheduler-client/internal/auth"
	"github.com/fivetwenty-io/scheduler-client/internal/client"
	"github.com/fivetwenty-io/scheduler-client/internal/constants"
	"github.com/fivetwenty-io/scheduler-client/pkg/scheduler"
	"github.com/fivetwenty-io/scheduler-client/pkg/schedulerclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// outputResult writes value in the configured output format. render fills the
// table used for the default format.
func outputResult(cmd *cobra.Command, value interface{}, render func(table *tablewriter.Table)) error {
	out := cmd.OutOrStdout()

	switch format := viper.GetString("output"); format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		return encoder.Encode(value)
	case constants.FormatYAML:
		return yaml.NewEncoder(out).Encode(value)
	case constants.FormatTable, "":
		table := tablewriter.NewWriter(out)
		render(table)

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, format)
	}
}

// CreateClient builds a scheduler client from the effective configuration.
func CreateClient(ctx context.Context, cmd *cobra.Command) (scheduler.Client, error) {
	config := loadConfig()
	if config.Scheduler == "" {
		return nil, constants.ErrNoSchedulerEndpoint
	}

	logger := NewLogger(cmd.ErrOrStderr(), viper.GetBool("verbose"))

	tokenManager, err := createTokenManager(ctx, config, logger)
	if err != nil {
		return nil, err
	}

	schedulerConfig := &scheduler.Config{
		Endpoint:        schedulerclient.NormalizeEndpoint(config.Scheduler),
		PageConcurrency: effectiveConcurrency(config),
		PageSize:        effectivePerPage(config),
		Debug:           viper.GetBool("verbose"),
		Logger:          logger,
	}

	schedulerClient, err := client.NewWithTokenManager(schedulerConfig, tokenManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return schedulerClient, nil
}

// createTokenManager returns nil when no credentials are configured, a static
// manager for a bare token, and otherwise a manager that refreshes through UAA
// and writes new tokens back to the config file.
func createTokenManager(ctx context.Context, config *Config, logger *Logger) (auth.TokenManager, error) {
	canRefresh := config.RefreshToken != "" || (config.ClientID != "" && config.ClientSecret != "")
	if !canRefresh {
		if config.Token == "" {
			return nil, nil //nolint:nilnil
		}

		return auth.NewStaticTokenManager(config.Token), nil
	}

	tokenURL := config.TokenURL
	if tokenURL == "" {
		if config.API == "" {
			return nil, constants.ErrNoAPIEndpoint
		}

		discovered, err := schedulerclient.DiscoverTokenURL(ctx, config.API, config.SkipSSLValidation)
		if err != nil {
			return nil, err
		}

		tokenURL = discovered
	}

	tokenManager := auth.NewConfigTokenManager(&auth.OAuth2Config{
		TokenURL:     tokenURL,
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Username:     config.Username,
		RefreshToken: config.RefreshToken,
		AccessToken:  config.Token,
	}, NewConfigPersister(), func(err error) {
		logger.Warn("Failed to save refreshed token", map[string]interface{}{"error": err.Error()})
	})

	if config.Token != "" && config.TokenExpiresAt != nil {
		tokenManager.SetToken(config.Token, *config.TokenExpiresAt)
	}

	return tokenManager, nil
}

// resolveSpaceGUID prefers the --space flag over the configured space.
func resolveSpaceGUID(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	spaceGUID := viper.GetString("space_guid")
	if spaceGUID == "" {
		return "", constants.ErrSpaceRequired
	}

	return spaceGUID, nil
}

func promptLine(in io.Reader, out io.Writer, prompt string) string {
	_, _ = fmt.Fprint(out, prompt)

	line, _ := bufio.NewReader(in).ReadString('\n')

	return strings.TrimSpace(line)
}

// promptPassword reads a password without echo when stdin is a terminal.
func promptPassword(in io.Reader, out io.Writer) (string, error) {
	_, _ = fmt.Fprint(out, "Password: ")

	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		password, err := term.ReadPassword(int(file.Fd()))
		_, _ = fmt.Fprintln(out)

		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}

		return string(password), nil
	}

	line, _ := bufio.NewReader(in).ReadString('\n')

	return strings.TrimSpace(line), nil
}

func truncate(value string, length int) string {
	if len(value) <= length {
		return value
	}

	return value[:length-3] + "..."
}
