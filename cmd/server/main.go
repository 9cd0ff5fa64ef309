package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/video-analyzer/internal/config"
	"github.com/codebuildervaibhav/video-analyzer/internal/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "video-analyzer",
		Short:         "Transcript, summary and playback sync server for online videos",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runServer(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to the YAML config file")

	root.AddCommand(newAuthorizeDriveCmd(&configPath))
	return root
}

// newAuthorizeDriveCmd stores a Google Drive OAuth token. Run once without
// --code to get the consent URL, then again with the code it returns.
func newAuthorizeDriveCmd(configPath *string) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "authorize-drive",
		Short: "Authorize Google Drive uploads for exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			creds := cfg.GoogleDrive.CredentialsFile

			if code == "" {
				url, err := storage.AuthCodeURL(creds)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Open this link in your browser, then rerun with --code:\n%s\n", url)
				return nil
			}

			if err := storage.Authorize(context.Background(), creds, cfg.GoogleDrive.TokenFile, code); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", cfg.GoogleDrive.TokenFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "authorization code from the consent page")
	return cmd
}
