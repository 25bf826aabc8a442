// Package cli provides CLI commands for the slawatch application.
package cli

import (
	gocontext "context"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/slawatch/internal/config"
	"github.com/example/slawatch/internal/ctxutil"
	"github.com/example/slawatch/internal/wire"
)

// UserAgent is recorded on audit entries written from the CLI.
const UserAgent = "slawatch-cli"

var (
	// globalActorID is the operator identity for the current invocation.
	globalActorID string
	// globalDir is where .slawatch/config.json and .env are looked up.
	globalDir string
)

// BindGlobalFlags registers the persistent flags shared by every command.
func BindGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&globalActorID, "actor", "", "Operator identity recorded in the activity log (default $USER)")
	root.PersistentFlags().StringVar(&globalDir, "dir", "", "Directory holding .slawatch/config.json and .env (default current directory)")
}

// GetActorID returns the operator identity, falling back to $USER.
func GetActorID() string {
	if globalActorID != "" {
		return globalActorID
	}
	return os.Getenv("USER")
}

// NewContext creates a context.Background() with the actor and request
// metadata embedded. CLI commands should use this instead of context.Background().
func NewContext() gocontext.Context {
	ctx := gocontext.Background()
	if actor := GetActorID(); actor != "" {
		ctx = ctxutil.WithActorID(ctx, actor)
	}
	return ctxutil.WithRequestMeta(ctx, ctxutil.RequestMeta{UserAgent: UserAgent})
}

func configDir() (string, error) {
	if globalDir != "" {
		return globalDir, nil
	}
	return os.Getwd()
}

// loadConfig resolves configuration for the current invocation.
func loadConfig() (*config.Config, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	return config.Load(dir)
}

// openApp builds the application graph. Callers must Close the result.
func openApp() (*wire.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return wire.New(cfg, wire.Options{})
}
