package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ebisawa/chatrelic/internal/bilibili"
	"github.com/ebisawa/chatrelic/internal/presence"
)

// RoomOptions holds flags for the room command.
type RoomOptions struct {
	*RootOptions
	APIBase string
}

// NewRoomCommand creates the room command.
func NewRoomCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RoomOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "room <room-id>",
		Short: "Query a live room's current status",
		Long: `Query a live room's current status on demand.

Prints the same status block the presence watcher announces, headed by
直播中 or 不在直播.

Exit codes:
  0 - Room queried
  1 - Room does not exist
  2 - Command error (network failure, bad room id, etc.)

Example:
  chatrelic room 92613`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoom(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.APIBase, "api-base", bilibili.DefaultBaseURL, "live API base URL")

	return cmd
}

func runRoom(opts *RoomOptions, roomID string, cmd *cobra.Command) error {
	if _, err := strconv.ParseInt(roomID, 10, 64); err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("room id %q is not numeric", roomID), err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client := bilibili.New(bilibili.WithBaseURL(opts.APIBase))
	status, err := client.Status(ctx, roomID)
	if err != nil {
		return WrapExitError(ExitCommandError, "query live room", err)
	}
	if !status.Exists {
		return NewExitError(ExitFailure, fmt.Sprintf("live room %s does not exist", roomID))
	}

	headline := "不在直播"
	if status.Live {
		headline = "直播中"
	}
	fmt.Fprintln(cmd.OutOrStdout(), presence.RenderOnline(headline, roomID, status))
	return nil
}
