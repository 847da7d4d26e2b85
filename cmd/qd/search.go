package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/querydsl/internal/client"
	"github.com/alfredjeanlab/querydsl/internal/model"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search members by username, team and age range",
	Long: `Search members. Every filter is optional; omitted filters impose no
constraint. With --page, --size or --sort the results come back one page at
a time, counted with the chosen --strategy.`,
	GroupID: "members",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cond := conditionFromFlags(cmd)

		paged := cmd.Flags().Changed("page") || cmd.Flags().Changed("size") ||
			cmd.Flags().Changed("sort") || cmd.Flags().Changed("strategy")
		if !paged {
			rows, err := membersClient.Search(cmd.Context(), cond)
			if err != nil {
				return fmt.Errorf("searching members: %w", err)
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), rows)
			}
			return printMemberTeamTable(cmd.OutOrStdout(), rows)
		}

		req, err := pageRequestFromFlags(cmd)
		if err != nil {
			return err
		}
		req.Condition = cond
		page, err := membersClient.SearchPage(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("searching members: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), page)
		}
		return printPage(cmd.OutOrStdout(), page)
	},
}

// conditionFromFlags reads the filter flags. Age bounds are only set when
// given, so 0 stays a real bound.
func conditionFromFlags(cmd *cobra.Command) model.MemberSearchCondition {
	var cond model.MemberSearchCondition
	cond.Username, _ = cmd.Flags().GetString("username")
	cond.TeamName, _ = cmd.Flags().GetString("team")
	if cmd.Flags().Changed("age-goe") {
		n, _ := cmd.Flags().GetInt("age-goe")
		cond.AgeGoe = &n
	}
	if cmd.Flags().Changed("age-loe") {
		n, _ := cmd.Flags().GetInt("age-loe")
		cond.AgeLoe = &n
	}
	return cond
}

func pageRequestFromFlags(cmd *cobra.Command) (*client.SearchPageRequest, error) {
	index, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("size")
	sorts, _ := cmd.Flags().GetStringArray("sort")
	strategy, _ := cmd.Flags().GetString("strategy")

	cs, err := model.ParseCountStrategy(strategy)
	if err != nil {
		return nil, err
	}
	req := &client.SearchPageRequest{
		Page:     model.PageRequest{Index: index, Size: size},
		Strategy: cs,
	}
	for _, s := range sorts {
		o, err := model.ParseSortOrder(s)
		if err != nil {
			return nil, err
		}
		req.Page.Sort = append(req.Page.Sort, o)
	}
	return req, nil
}

func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().String("username", "", "exact username")
	cmd.Flags().String("team", "", "exact team name")
	cmd.Flags().Int("age-goe", 0, "minimum age (inclusive)")
	cmd.Flags().Int("age-loe", 0, "maximum age (inclusive)")
	cmd.Flags().Int("page", 0, "zero-based page index")
	cmd.Flags().Int("size", model.DefaultPageSize, "page size")
	cmd.Flags().StringArray("sort", nil, "sort key as property[,asc|desc] (id, username, age, teamName); repeatable")
	cmd.Flags().String("strategy", "simple", "count strategy (simple or optimized)")
}

func init() {
	addSearchFlags(searchCmd)
}
