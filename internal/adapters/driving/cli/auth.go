package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage source credentials",
	Long: `Add, list, and remove per-source access tokens.

Each source is connected with a bearer token (a Google OAuth access
token, a Notion integration token, a Slack user token, or an Atlassian
API token). Stored credentials grant the "<source>:read" scope, which
search, updates, and document fetching check per request.

Examples:
  # Connect Notion (token prompted without echo)
  fetcha auth add notion

  # Connect Confluence non-interactively
  fetcha auth add confluence --token "xxx" --email "me@example.com"

  # See what is connected
  fetcha auth list

  # Disconnect a source
  fetcha auth remove slack`,
}

var (
	authToken  string
	authEmail  string
	authScopes []string
)

var authAddCmd = &cobra.Command{
	Use:   "add [source]",
	Short: "Store a token for a source",
	Long: `Stores an access token for one source. Valid sources: gdrive,
notion, slack, confluence.

When --token is omitted the token is read from stdin without echo.
Confluence additionally needs --email (the Atlassian account the API
token belongs to) and confluence.base_url in the config file.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthAdd,
}

var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connected sources",
	RunE:  runAuthList,
}

var authRemoveCmd = &cobra.Command{
	Use:   "remove [source]",
	Short: "Delete the stored token for a source",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthRemove,
}

func init() {
	authAddCmd.Flags().StringVar(&authToken, "token", "", "access token (prompted when omitted)")
	authAddCmd.Flags().StringVar(&authEmail, "email", "", "account email the token belongs to")
	authAddCmd.Flags().StringSliceVar(&authScopes, "scopes", nil, "granted scopes (default: read scope for the source)")

	authCmd.AddCommand(authAddCmd)
	authCmd.AddCommand(authListCmd)
	authCmd.AddCommand(authRemoveCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthAdd(cmd *cobra.Command, args []string) error {
	if credentialsStore == nil {
		return errors.New("credentials store not configured")
	}

	src, err := domain.ParseSource(args[0])
	if err != nil {
		return fmt.Errorf("source %q: %w", args[0], err)
	}

	token := authToken
	if token == "" {
		cmd.Printf("Token for %s: ", src)
		token = readSecret()
		cmd.Println()
	}
	if token == "" {
		return errors.New("no token provided")
	}

	scopes := authScopes
	if len(scopes) == 0 {
		scopes = []string{src.ReadScope()}
	}

	ctx := context.Background()
	now := time.Now().UTC()
	creds := &domain.SourceCredentials{
		ID:           uuid.NewString(),
		Source:       src,
		AccessToken:  token,
		AccountEmail: authEmail,
		Scopes:       scopes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := credentialsStore.Save(ctx, creds); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}

	if err := ensureUserProfile(); err != nil {
		return err
	}

	cmd.Printf("Connected %s.\n", src)
	return nil
}

func runAuthList(cmd *cobra.Command, _ []string) error {
	if credentialsStore == nil {
		return errors.New("credentials store not configured")
	}

	all, err := credentialsStore.List(context.Background())
	if err != nil {
		return fmt.Errorf("listing credentials: %w", err)
	}

	if len(all) == 0 {
		cmd.Println("No sources connected. Run 'fetcha auth add [source]' to connect one.")
		return nil
	}

	for i := range all {
		c := &all[i]
		cmd.Printf("  %-12s token %s", c.Source, maskToken(c.AccessToken))
		if c.AccountEmail != "" {
			cmd.Printf("  (%s)", c.AccountEmail)
		}
		cmd.Println()
		cmd.Printf("               scopes: %s\n", strings.Join(c.Scopes, ", "))
	}
	return nil
}

func runAuthRemove(cmd *cobra.Command, args []string) error {
	if credentialsStore == nil {
		return errors.New("credentials store not configured")
	}

	src, err := domain.ParseSource(args[0])
	if err != nil {
		return fmt.Errorf("source %q: %w", args[0], err)
	}

	if err := credentialsStore.Delete(context.Background(), src); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%s is not connected", src)
		}
		return fmt.Errorf("removing credentials: %w", err)
	}

	cmd.Printf("Disconnected %s.\n", src)
	return nil
}

// ensureUserProfile assigns a stable caller id on first connect so cache
// keys and permission checks have an identity to bind to.
func ensureUserProfile() error {
	if configStore == nil {
		return nil
	}
	if configStore.GetString("user.id") == "" {
		if err := configStore.Set("user.id", uuid.NewString()); err != nil {
			return fmt.Errorf("saving user profile: %w", err)
		}
	}
	if authEmail != "" && configStore.GetString("user.email") == "" {
		if err := configStore.Set("user.email", authEmail); err != nil {
			return fmt.Errorf("saving user profile: %w", err)
		}
	}
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readSecret() string {
	// Read without echo when attached to a terminal
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
