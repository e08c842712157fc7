package data

import "time"

// GameLog is one player-game row as delivered by the upstream box-score feed, already joined
// with schedule and opponent context. Assists is the regression target.
type GameLog struct {
	GameID            string    `json:"game_id"`
	PlayerID          string    `json:"player_id"`
	PlayerName        string    `json:"player_name"`
	Team              string    `json:"team"`
	Opponent          string    `json:"opponent"`
	GameDate          time.Time `json:"game_date"`
	Home              bool      `json:"home"`
	RestDays          int       `json:"rest_days"`
	AvgAssistsLast5   float64   `json:"avg_assists_last5"`
	AvgAssistsSeason  float64   `json:"avg_assists_season"`
	AvgMinutesLast5   float64   `json:"avg_minutes_last5"`
	UsageRate         float64   `json:"usage_rate"`
	TeamPace          float64   `json:"team_pace"`
	OpponentPace      float64   `json:"opponent_pace"`
	OpponentDefRating float64   `json:"opponent_def_rating"`
	TeammatesOut      int       `json:"teammates_out"`
	Assists           float64   `json:"assists"`
}

// csvHeader is the column order of the game-log CSV files.
var csvHeader = []string{
	"game_id", "player_id", "player_name", "team", "opponent", "game_date", "home", "rest_days",
	"avg_assists_last5", "avg_assists_season", "avg_minutes_last5", "usage_rate",
	"team_pace", "opponent_pace", "opponent_def_rating", "teammates_out", "assists",
}

const dateLayout = "2006-01-02"
