/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/Harshith014/resumeUploader/config"
	"github.com/Harshith014/resumeUploader/internal/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the resume uploader API server",
	Long: `Starts the resume uploader API server. Usage:

	resumeuploader server

The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		srv, err := server.New(cmd.Context(), cfg)
		if err != nil {
			log.Error().Err(err).Msg("failed to start server")
			return err
		}
		if err := srv.Run(cmd.Context()); err != nil {
			log.Error().Err(err).Msg("server error")
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
