package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/AHARH1ST777/wordweave/internal/model"
	"github.com/AHARH1ST777/wordweave/internal/session"
	"github.com/AHARH1ST777/wordweave/internal/stats"
)

const similarityBarWidth = 12

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	messageStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	opponentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B06AB3"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	targetStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Underline(true)
	overlayStyle  = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))

	rankHotStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#27AE60"))
	rankWarmStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F39C12"))
	rankMildStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E67E22"))
	rankColdStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C"))
)

var rulesLines = []string{
	"Как играть:",
	"",
	"• Введите любое существительное — система покажет,",
	"  насколько оно близко к загаданному слову.",
	"• Чем меньше ранг, тем ближе к ответу.",
	"• Используйте подсказки из истории попыток.",
	"• В дуэли побеждает тот, кто угадает слово первым!",
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch {
	case m.showRules:
		content = overlayStyle.Render(strings.Join(rulesLines, "\n"))
	case m.showStats:
		content = overlayStyle.Render(renderStats(m.ledger.Snapshot(), m.timer.Seconds()))
	default:
		snap := m.machine.Snapshot()
		switch snap.Phase {
		case model.PhaseWaiting:
			content = m.renderWaiting(snap)
		case model.PhasePlaying:
			content = m.renderPlaying(snap)
		case model.PhaseFinished:
			content = renderFinished(snap)
		default:
			content = renderMenu(snap)
		}
	}
	footer := footerStyle.Render(m.footerHints())
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) footerHints() string {
	if m.showRules || m.showStats {
		return "любая клавиша — закрыть"
	}
	switch m.machine.Snapshot().Phase {
	case model.PhaseWaiting:
		return "esc — отмена"
	case model.PhasePlaying:
		return "enter — проверить · esc — в меню"
	case model.PhaseFinished:
		return "enter — играть снова · s — статистика · q — выход"
	default:
		return "1 — соло · 2 — дуэль · r — правила · s — статистика · q — выход"
	}
}

func renderMenu(snap session.Snapshot) string {
	lines := []string{
		titleStyle.Render("🎯 Угадай слово"),
		subtitleStyle.Render("Угадайте загаданное слово по семантической близости"),
		"",
		"[1] Соло режим — играйте в своём темпе",
		"[2] С соперником — кто быстрее угадает",
	}
	if snap.Message != "" {
		lines = append(lines, "", messageStyle.Render(snap.Message))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderWaiting(snap session.Snapshot) string {
	return m.spin.View() + " " + messageStyle.Render(snap.Message)
}

func (m *Model) renderPlaying(snap session.Snapshot) string {
	lines := []string{messageStyle.Render(snap.Message), ""}
	lines = append(lines, fmt.Sprintf("Ваши попытки: %d", snap.Attempts))
	if snap.Mode == model.ModeMultiplayer {
		opponent := fmt.Sprintf("Попытки соперника: %d", snap.Opponent.Attempts)
		if snap.Opponent.LastWord != "" {
			opponent += fmt.Sprintf(" (последнее: %s)", snap.Opponent.LastWord)
		}
		lines = append(lines, opponentStyle.Render(opponent))
	}
	lines = append(lines, "", m.input.View())
	if len(snap.History) > 0 {
		lines = append(lines, "", subtitleStyle.Render("История попыток (по близости):"))
		lines = append(lines, renderHistory(snap.History)...)
	}
	return strings.Join(lines, "\n")
}

func renderFinished(snap session.Snapshot) string {
	lines := []string{messageStyle.Render(snap.Message)}
	if snap.TargetWord != "" {
		lines = append(lines, "", "Загаданное слово: "+targetStyle.Render(snap.TargetWord))
	}
	lines = append(lines, "", fmt.Sprintf("Всего попыток: %d", snap.Attempts))
	return strings.Join(lines, "\n")
}

// renderHistory renders guesses in the server-supplied order: ascending
// rank, closest first.
func renderHistory(history []model.GuessRecord) []string {
	wordWidth := 0
	for _, g := range history {
		if w := runewidth.StringWidth(g.Word); w > wordWidth {
			wordWidth = w
		}
	}
	lines := make([]string, 0, len(history))
	for _, g := range history {
		style := rankStyle(g.Rank)
		word := g.Word + strings.Repeat(" ", wordWidth-runewidth.StringWidth(g.Word))
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			style.Render(fmt.Sprintf("#%-5d", g.Rank)),
			word,
			style.Render(similarityBar(g.Similarity)),
			fmt.Sprintf("%5.1f%%", g.Similarity*100),
		))
	}
	return lines
}

func renderStats(rec model.LedgerRecord, appSeconds int64) string {
	lines := append([]string{titleStyle.Render("Статистика"), ""}, stats.SummaryLines(rec, appSeconds)...)
	return strings.Join(lines, "\n")
}

// similarityBar draws a fixed-width fill proportional to similarity in [0,1].
func similarityBar(similarity float64) string {
	if similarity < 0 {
		similarity = 0
	}
	if similarity > 1 {
		similarity = 1
	}
	filled := int(similarity*similarityBarWidth + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", similarityBarWidth-filled)
}

// rankStyle picks the history row color. Thresholds follow the original
// game's palette, not the coarser text buckets.
func rankStyle(rank int) lipgloss.Style {
	switch {
	case rank <= 10:
		return rankHotStyle
	case rank <= 50:
		return rankWarmStyle
	case rank <= 200:
		return rankMildStyle
	default:
		return rankColdStyle
	}
}
