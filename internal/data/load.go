package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// LoadGameLogs reads a game-log CSV written in csvHeader order.
func LoadGameLogs(path string) ([]GameLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadGameLogs(f)
}

func ReadGameLogs(r io.Reader) ([]GameLog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read game logs: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("read game logs: no data rows")
	}
	out := make([]GameLog, 0, len(rows)-1)
	for i, row := range rows[1:] {
		g, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("game log line %d: %w", i+2, err)
		}
		out = append(out, g)
	}
	return out, nil
}

type rowParser struct {
	row []string
	err error
}

func (p *rowParser) parseFloat(col int) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(p.row[col], 64)
	if err != nil {
		p.err = fmt.Errorf("%s: %w", csvHeader[col], err)
	}
	return v
}

func (p *rowParser) parseInt(col int) int {
	if p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(p.row[col])
	if err != nil {
		p.err = fmt.Errorf("%s: %w", csvHeader[col], err)
	}
	return v
}

func (p *rowParser) parseBool(col int) bool {
	if p.err != nil {
		return false
	}
	v, err := strconv.ParseBool(p.row[col])
	if err != nil {
		p.err = fmt.Errorf("%s: %w", csvHeader[col], err)
	}
	return v
}

func (p *rowParser) parseDate(col int) time.Time {
	if p.err != nil {
		return time.Time{}
	}
	v, err := time.Parse(dateLayout, p.row[col])
	if err != nil {
		p.err = fmt.Errorf("%s: %w", csvHeader[col], err)
	}
	return v
}

func parseRow(row []string) (GameLog, error) {
	p := &rowParser{row: row}
	g := GameLog{
		GameID:            row[0],
		PlayerID:          row[1],
		PlayerName:        row[2],
		Team:              row[3],
		Opponent:          row[4],
		GameDate:          p.parseDate(5),
		Home:              p.parseBool(6),
		RestDays:          p.parseInt(7),
		AvgAssistsLast5:   p.parseFloat(8),
		AvgAssistsSeason:  p.parseFloat(9),
		AvgMinutesLast5:   p.parseFloat(10),
		UsageRate:         p.parseFloat(11),
		TeamPace:          p.parseFloat(12),
		OpponentPace:      p.parseFloat(13),
		OpponentDefRating: p.parseFloat(14),
		TeammatesOut:      p.parseInt(15),
		Assists:           p.parseFloat(16),
	}
	return g, p.err
}
