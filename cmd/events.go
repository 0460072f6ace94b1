/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"

	"github.com/Harshith014/resumeUploader/config"
	"github.com/Harshith014/resumeUploader/internal/mq"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect user events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Log user events as they are published",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		broker, err := mq.New(cmd.Context(), cfg.MQ)
		if err != nil {
			return err
		}
		defer broker.Close()

		log.Info().Str("backend", cfg.MQ.Backend).Str("channel", broker.Channel()).Msg("tailing events")
		err = broker.Subscribe(cmd.Context(), broker.Channel(), func(ctx context.Context, msg mq.Message) error {
			event, err := mq.DecodeEvent(msg)
			if err != nil {
				// A malformed message would be redelivered forever.
				log.Warn().Err(err).Str("message_id", msg.ID).Msg("dropping undecodable event")
				return nil
			}
			log.Info().
				Str("message_id", msg.ID).
				Str("type", event.Type).
				Int("user_id", event.UserID).
				Str("asset", event.Asset).
				Time("occurred_at", event.OccurredAt).
				Msg("user event")
			return nil
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
