package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/querydsl/internal/client"
)

var memberCmd = &cobra.Command{
	Use:     "member",
	Short:   "Show, create, update and delete members",
	GroupID: "members",
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

var memberShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a member with its team",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		m, err := membersClient.GetMember(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("getting member: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), m)
		}
		return printMember(cmd.OutOrStdout(), m)
	},
}

var memberCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		age, _ := cmd.Flags().GetInt("age")
		req := &client.CreateMemberRequest{Username: args[0], Age: age}
		if cmd.Flags().Changed("team") {
			teamID, _ := cmd.Flags().GetInt64("team")
			req.TeamID = &teamID
		}

		m, err := membersClient.CreateMember(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("creating member: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), m)
		}
		return printMember(cmd.OutOrStdout(), m)
	},
}

var memberUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a member's username, age or team",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := httpOnly()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		req := &client.UpdateMemberRequest{}
		if cmd.Flags().Changed("username") {
			v, _ := cmd.Flags().GetString("username")
			req.Username = &v
		}
		if cmd.Flags().Changed("age") {
			v, _ := cmd.Flags().GetInt("age")
			req.Age = &v
		}
		if cmd.Flags().Changed("team") {
			v, _ := cmd.Flags().GetInt64("team")
			req.TeamID = &v
		}
		req.ClearTeam, _ = cmd.Flags().GetBool("no-team")

		m, err := c.UpdateMember(cmd.Context(), id, req)
		if err != nil {
			return fmt.Errorf("updating member: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), m)
		}
		return printMember(cmd.OutOrStdout(), m)
	},
}

var memberDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := httpOnly()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := c.DeleteMember(cmd.Context(), id); err != nil {
			return fmt.Errorf("deleting member: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted member %d\n", id)
		return nil
	},
}

var bulkCmd = &cobra.Command{
	Use:   "bulk <rename|add_age|delete>",
	Short: "Run a set-based update or delete over members",
	Long: `Run one statement over many members at once:

  rename   members younger than --age get --username
  add_age  every member's age grows by --delta
  delete   members older than --age are removed`,
	GroupID:   "members",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"rename", "add_age", "delete"},
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := httpOnly()
		if err != nil {
			return err
		}
		req := &client.BulkRequest{Operation: args[0]}
		req.Username, _ = cmd.Flags().GetString("username")
		if cmd.Flags().Changed("age") {
			v, _ := cmd.Flags().GetInt("age")
			req.Age = &v
		}
		if cmd.Flags().Changed("delta") {
			v, _ := cmd.Flags().GetInt("delta")
			req.Delta = &v
		}

		n, err := c.Bulk(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("bulk %s: %w", args[0], err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]int64{"affected": n})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d members affected\n", args[0], n)
		return nil
	},
}

func init() {
	memberCreateCmd.Flags().Int("age", 0, "age")
	memberCreateCmd.Flags().Int64("team", 0, "team id")
	_ = memberCreateCmd.MarkFlagRequired("age")

	memberUpdateCmd.Flags().String("username", "", "new username")
	memberUpdateCmd.Flags().Int("age", 0, "new age")
	memberUpdateCmd.Flags().Int64("team", 0, "move to team id")
	memberUpdateCmd.Flags().Bool("no-team", false, "remove the member from its team")
	memberUpdateCmd.MarkFlagsMutuallyExclusive("team", "no-team")

	bulkCmd.Flags().Int("age", 0, "age threshold for rename and delete")
	bulkCmd.Flags().String("username", "", "new username for rename")
	bulkCmd.Flags().Int("delta", 0, "years to add for add_age")

	memberCmd.AddCommand(memberShowCmd)
	memberCmd.AddCommand(memberCreateCmd)
	memberCmd.AddCommand(memberUpdateCmd)
	memberCmd.AddCommand(memberDeleteCmd)
}
