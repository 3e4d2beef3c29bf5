// Package roster loads the team and player seed data that populates the
// ledger once at startup.
package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/transferleague/auctionhouse/ledger"
)

var (
	teamHeader   = []string{"team_id", "name", "budget", "wage"}
	playerHeader = []string{"player_id", "team_id", "name", "wage"}
)

// Load reads both seed files and returns a populated ledger. Every player
// starts unlisted with a Regular listing type and empty bid history.
func Load(teamsPath, playersPath string) (*ledger.Ledger, error) {
	teams, err := LoadTeams(teamsPath)
	if err != nil {
		return nil, err
	}
	players, err := LoadPlayers(playersPath)
	if err != nil {
		return nil, err
	}

	l := ledger.New()
	for _, t := range teams {
		l.AddTeam(t)
	}
	for _, p := range players {
		l.AddPlayer(p)
	}
	return l, nil
}

// LoadTeams parses a teams CSV: team_id,name,budget,wage.
func LoadTeams(path string) ([]ledger.TeamAccount, error) {
	rows, err := readAll(path, teamHeader)
	if err != nil {
		return nil, err
	}

	out := make([]ledger.TeamAccount, 0, len(rows))
	for i, row := range rows {
		budget, err := strconv.ParseInt(row[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: budget: %w", path, i+2, err)
		}
		wage, err := strconv.ParseInt(row[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: wage: %w", path, i+2, err)
		}
		out = append(out, ledger.TeamAccount{
			ID:     row[0],
			Name:   row[1],
			Budget: budget,
			Wage:   wage,
		})
	}
	return out, nil
}

// LoadPlayers parses a players CSV: player_id,team_id,name,wage. The wage
// column is what the owning team currently pays the player.
func LoadPlayers(path string) ([]ledger.PlayerRecord, error) {
	rows, err := readAll(path, playerHeader)
	if err != nil {
		return nil, err
	}

	out := make([]ledger.PlayerRecord, 0, len(rows))
	for i, row := range rows {
		wage, err := strconv.ParseInt(row[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: wage: %w", path, i+2, err)
		}
		out = append(out, ledger.PlayerRecord{
			ID:     row[0],
			TeamID: row[1],
			Name:   row[2],
			Type:   ledger.Regular,
			Wage:   wage,
		})
	}
	return out, nil
}

func readAll(path string, want []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(want)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", path, err)
	}
	for i, col := range want {
		if header[i] != col {
			return nil, fmt.Errorf("%s: header column %d is %q, want %q", path, i, header[i], col)
		}
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
