package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/alfredjeanlab/querydsl/internal/client"
	"github.com/alfredjeanlab/querydsl/internal/model"
	"github.com/alfredjeanlab/querydsl/internal/ui"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func optionalID(id *int64) (string, string) {
	if id == nil {
		return "-", ui.Null()
	}
	s := strconv.FormatInt(*id, 10)
	return s, s
}

func optionalText(s *string) (string, string) {
	if s == nil {
		return "-", ui.Null()
	}
	return *s, ui.RenderAccent(*s)
}

func printMemberTeamTable(w io.Writer, rows []*model.MemberTeam) error {
	t := ui.NewTable("id", "username", "age", "team_id", "team")
	for _, r := range rows {
		teamID, teamIDStyled := optionalID(r.TeamID)
		teamName, teamNameStyled := optionalText(r.TeamName)
		id := strconv.FormatInt(r.MemberID, 10)
		age := strconv.Itoa(r.Age)
		t.StyledRow(
			[]string{id, r.Username, age, teamID, teamName},
			[]string{id, r.Username, age, teamIDStyled, teamNameStyled},
		)
	}
	return t.Render(w)
}

func printPage(w io.Writer, p *client.Page) error {
	if err := printMemberTeamTable(w, p.Content); err != nil {
		return err
	}
	summary := fmt.Sprintf("page %d of %d, %d members", p.Page+1, p.TotalPages, p.TotalElements)
	if p.TotalPages == 0 {
		summary = "no members"
	}
	_, err := fmt.Fprintln(w, ui.RenderMuted(summary))
	return err
}

func printMember(w io.Writer, m *model.Member) error {
	fmt.Fprintf(w, "ID:        %d\n", m.ID)
	fmt.Fprintf(w, "Username:  %s\n", m.Username)
	fmt.Fprintf(w, "Age:       %d\n", m.Age)
	switch {
	case m.Team != nil:
		fmt.Fprintf(w, "Team:      %s (%d)\n", ui.RenderAccent(m.Team.Name), m.Team.ID)
	case m.TeamID != nil:
		fmt.Fprintf(w, "Team:      %d\n", *m.TeamID)
	default:
		fmt.Fprintf(w, "Team:      %s\n", ui.Null())
	}
	return nil
}

func printTeamTable(w io.Writer, teams []*model.Team) error {
	t := ui.NewTable("id", "name", "members")
	for _, team := range teams {
		t.Row(strconv.FormatInt(team.ID, 10), team.Name, strconv.Itoa(len(team.Members)))
	}
	return t.Render(w)
}

func printStatsTable(w io.Writer, stats []*model.TeamStats) error {
	t := ui.NewTable("team", "members", "sum", "avg", "max", "min")
	for _, s := range stats {
		t.Row(
			s.TeamName,
			strconv.FormatInt(s.Members, 10),
			strconv.FormatInt(s.AgeSum, 10),
			strconv.FormatFloat(s.AverageAge, 'f', 1, 64),
			strconv.Itoa(s.MaxAge),
			strconv.Itoa(s.MinAge),
		)
	}
	return t.Render(w)
}
