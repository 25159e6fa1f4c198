package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/AHARH1ST777/wordweave/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// AttemptsSparkline plots attempts per game, oldest to newest, truncated to
// the last width games when width > 0. Fewer attempts plot lower.
func AttemptsSparkline(games []model.GameRecord, width int) string {
	if width > 0 && len(games) > width {
		games = games[len(games)-width:]
	}
	values := make([]float64, len(games))
	for i, g := range games {
		values[i] = float64(g.Attempts)
	}
	return Sparkline(values)
}

// RenderReport prints the aggregate summary, the recent games table, and the
// attempts sparkline. width sizes the sparkline; appSeconds is the total
// time-with-app-open counter.
func RenderReport(w io.Writer, rec model.LedgerRecord, appSeconds int64, games []model.GameRecord, width int) error {
	if _, err := fmt.Fprintln(w, "Статистика"); err != nil {
		return err
	}
	for _, line := range SummaryLines(rec, appSeconds) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	if len(games) == 0 {
		_, err := fmt.Fprintln(w, "Сыгранных игр пока нет.")
		return err
	}

	if _, err := fmt.Fprintln(w, "Последние игры"); err != nil {
		return err
	}
	headers := []string{"Когда", "Режим", "Итог", "Попытки", "Время", "Слово"}
	rows := make([][]string, 0, len(games))
	for i := len(games) - 1; i >= 0; i-- {
		g := games[i]
		outcome := "поражение"
		if g.Won {
			outcome = "победа"
		}
		rows = append(rows, []string{
			g.FinishedAt.Local().Format("02.01 15:04"),
			modeLabel(g.Mode),
			outcome,
			fmt.Sprintf("%d", g.Attempts),
			FormatDuration(time.Duration(g.DurationMs) * time.Millisecond),
			g.TargetWord,
		})
	}
	rightAlign := map[int]bool{3: true, 4: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if spark := AttemptsSparkline(games, width); spark != "" {
		if _, err := fmt.Fprintf(w, "\nПопытки по играм: %s\n", spark); err != nil {
			return err
		}
	}
	return nil
}

// SummaryLines formats the aggregate for both the CLI report and the TUI
// stats overlay.
func SummaryLines(rec model.LedgerRecord, appSeconds int64) []string {
	winRate := 0.0
	avgAttempts := 0.0
	if rec.TotalGames > 0 {
		winRate = float64(rec.TotalWins) / float64(rec.TotalGames) * 100
		avgAttempts = float64(rec.TotalAttempts) / float64(rec.TotalGames)
	}
	best := "—"
	if rec.BestScore != nil {
		best = fmt.Sprintf("%d", *rec.BestScore)
	}
	return []string{
		fmt.Sprintf("Игр сыграно: %d", rec.TotalGames),
		fmt.Sprintf("Побед: %d (%.0f%%)", rec.TotalWins, winRate),
		fmt.Sprintf("Попыток в среднем: %.1f", avgAttempts),
		fmt.Sprintf("Лучший результат: %s", best),
		fmt.Sprintf("Время в игре: %s", FormatDuration(time.Duration(rec.TotalPlayTime)*time.Second)),
		fmt.Sprintf("Время в приложении: %s", FormatDuration(time.Duration(appSeconds)*time.Second)),
	}
}

// FormatDuration renders a duration as often-short Russian units.
func FormatDuration(d time.Duration) string {
	total := int64(d.Seconds())
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dч %02dм", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dм %02dс", minutes, seconds)
	default:
		return fmt.Sprintf("%dс", seconds)
	}
}

func modeLabel(mode model.Mode) string {
	switch mode {
	case model.ModeMultiplayer:
		return "дуэль"
	default:
		return "соло"
	}
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i := 0; i < colCount; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return b.String()
}

func padCell(value string, width int, rightAlign bool) string {
	valueWidth := runewidth.StringWidth(value)
	if valueWidth >= width {
		return value
	}
	padding := width - valueWidth
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}
