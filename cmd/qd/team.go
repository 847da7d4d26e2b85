package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var teamCmd = &cobra.Command{
	Use:     "team",
	Short:   "Create and list teams",
	GroupID: "teams",
}

var teamCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a team",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		team, err := membersClient.CreateTeam(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("creating team: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), team)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created team %s (%d)\n", team.Name, team.ID)
		return nil
	},
}

var teamListCmd = &cobra.Command{
	Use:   "list",
	Short: "List teams with their member counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := httpOnly()
		if err != nil {
			return err
		}
		teams, err := c.ListTeams(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing teams: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), teams)
		}
		return printTeamTable(cmd.OutOrStdout(), teams)
	},
}

var teamStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show age statistics per team",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := httpOnly()
		if err != nil {
			return err
		}
		stats, err := c.TeamStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("team stats: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), stats)
		}
		return printStatsTable(cmd.OutOrStdout(), stats)
	},
}

func init() {
	teamCmd.AddCommand(teamCreateCmd)
	teamCmd.AddCommand(teamListCmd)
	teamCmd.AddCommand(teamStatsCmd)
}
