package main

import (
	"bytes"
	"testing"

	"github.com/alfredjeanlab/querydsl/internal/client"
	"github.com/alfredjeanlab/querydsl/internal/model"
	"github.com/alfredjeanlab/querydsl/internal/ui"
)

func init() {
	ui.ForceNoColor()
}

func strPtr(s string) *string { return &s }
func idPtr(n int64) *int64    { return &n }

func TestPrintPage(t *testing.T) {
	var buf bytes.Buffer
	err := printPage(&buf, &client.Page{
		Content: []*model.MemberTeam{
			{MemberID: 35, Username: "member35", Age: 35, TeamID: idPtr(2), TeamName: strPtr("teamB")},
			{MemberID: 101, Username: "drifter", Age: 7},
		},
		TotalElements: 12,
		TotalPages:    6,
		Page:          1,
		Size:          2,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "ID   USERNAME  AGE  TEAM_ID  TEAM\n" +
		"35   member35  35   2        teamB\n" +
		"101  drifter   7    -        -\n" +
		"page 2 of 6, 12 members\n"
	if buf.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", buf.String(), want)
	}

	buf.Reset()
	if err := printPage(&buf, &client.Page{}); err != nil {
		t.Fatal(err)
	}
	if want := "ID  USERNAME  AGE  TEAM_ID  TEAM\nno members\n"; buf.String() != want {
		t.Errorf("empty page =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestPrintMember(t *testing.T) {
	var buf bytes.Buffer
	m := &model.Member{ID: 3, Username: "member3", Age: 30}
	m.ChangeTeam(&model.Team{ID: 2, Name: "teamB"})
	if err := printMember(&buf, m); err != nil {
		t.Fatal(err)
	}
	want := "ID:        3\nUsername:  member3\nAge:       30\nTeam:      teamB (2)\n"
	if buf.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestPrintStatsTable(t *testing.T) {
	var buf bytes.Buffer
	err := printStatsTable(&buf, []*model.TeamStats{
		{TeamName: "teamA", Members: 50, AgeSum: 2450, AverageAge: 49, MaxAge: 98, MinAge: 0},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "TEAM   MEMBERS  SUM   AVG   MAX  MIN\nteamA  50       2450  49.0  98   0\n"
	if buf.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", buf.String(), want)
	}
}
