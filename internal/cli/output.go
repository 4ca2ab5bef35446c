package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/api/response"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/arcade"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/codes"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/records"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter writing to w and errW
func NewOutput(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(o.errW, string(data))
	} else {
		fmt.Fprintf(o.errW, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Health:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	case []model.LeaderboardEntry:
		o.printLeaderboard(v)
	case []codes.PoolStats:
		o.printPoolStats(v)
	case response.ProvisionResult:
		fmt.Fprintf(o.w, "Added %d code(s) to level %s\n", v.Added, v.Level)
	case []response.PlayerRecord:
		o.printPlayerRecords(v)
	case response.PlayerRecord:
		o.printPlayerRecord(v)
	case records.SessionView:
		o.printSessionView(v)
	case arcade.ScoreUpdateAck:
		o.printScoreAck(v)
	case arcade.DeleteDataAck:
		o.printDeleteAck(v)
	case TokenHash:
		fmt.Fprintln(o.w, v.Hash)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// TokenHash is the output of the token hash command
type TokenHash struct {
	Hash string `json:"hash"`
}

func (o *Output) table(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(o.w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	return table
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func formatNews(news *bool) string {
	if news == nil {
		return "-"
	}
	return model.NewsValue(*news)
}

func (o *Output) printLeaderboard(entries []model.LeaderboardEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(o.w, "No scores yet")
		return
	}
	table := o.table([]string{"Rank", "Username", "Score"})
	for i, e := range entries {
		table.Append([]string{strconv.Itoa(i + 1), e.Username, formatScore(e.Score)})
	}
	table.Render()
}

func (o *Output) printPoolStats(stats []codes.PoolStats) {
	table := o.table([]string{"Level", "Total", "Unused"})
	for _, st := range stats {
		table.Append([]string{st.Level, strconv.Itoa(st.Total), strconv.Itoa(st.Unused)})
	}
	table.Render()
}

func (o *Output) printPlayerRecords(players []response.PlayerRecord) {
	if len(players) == 0 {
		fmt.Fprintln(o.w, "No matching players")
		return
	}
	table := o.table([]string{"ID", "Username", "Email", "Score", "News", "Codes", "Last Updated"})
	for _, p := range players {
		table.Append([]string{
			p.ID,
			p.Username,
			p.Email,
			formatScore(p.Score),
			formatNews(p.News),
			formatClaims(p.Codes),
			p.LastUpdated.Format(time.RFC3339),
		})
	}
	table.Render()
	if len(players) > 1 {
		fmt.Fprintf(o.w, "%d records share this username\n", len(players))
	}
}

func formatClaims(claims []response.CodeClaim) string {
	parts := make([]string, len(claims))
	for i, c := range claims {
		if c.Level != "" {
			parts[i] = c.Code + " (" + c.Level + ")"
		} else {
			parts[i] = c.Code
		}
	}
	return strings.Join(parts, ", ")
}

func (o *Output) printPlayerRecord(p response.PlayerRecord) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.Username, p.ID)
	if p.Email != "" {
		fmt.Fprintf(o.w, "Email: %s\n", p.Email)
	}
	fmt.Fprintf(o.w, "Score: %s\n", formatScore(p.Score))
	fmt.Fprintf(o.w, "News: %s\n", formatNews(p.News))
	if len(p.Codes) > 0 {
		fmt.Fprintf(o.w, "Codes: %s\n", formatClaims(p.Codes))
	}
	fmt.Fprintf(o.w, "Last Updated: %s\n", p.LastUpdated.Format(time.RFC3339))
}

func (o *Output) printSessionView(v records.SessionView) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", v.Username, v.PlayerID)
	if v.Email != "" {
		fmt.Fprintf(o.w, "Email: %s\n", v.Email)
	}
	fmt.Fprintf(o.w, "Score: %s\n", formatScore(v.Score))
	fmt.Fprintf(o.w, "News: %t\n", v.News)
	fmt.Fprintf(o.w, "Codes: %s\n", v.Codes)
}

func (o *Output) printScoreAck(a arcade.ScoreUpdateAck) {
	fmt.Fprintf(o.w, "Score saved for %s\n", a.PlayerID)
	if a.Unlocked != "" {
		fmt.Fprintf(o.w, "Unlocked: %s\n", a.Unlocked)
	}
	if len(a.Codes) > 0 {
		fmt.Fprintf(o.w, "Codes: %s\n", strings.Join(a.Codes, ", "))
	}
}

func (o *Output) printDeleteAck(arcade.DeleteDataAck) {
	fmt.Fprintln(o.w, "Player data deleted")
}
