package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mmcdole/sift/internal/domain"
	"github.com/mmcdole/sift/internal/tui/styles"
)

// View renders the current state.
func (m Model) View() string {
	var body string
	switch m.state {
	case StateProgress:
		body = m.viewProgress()
	case StateTrash:
		body = m.viewTrash()
	case StateAlbums:
		body = m.viewAlbums()
	case StateConfirmReset:
		body = m.viewConfirmReset()
	default:
		body = m.viewTriage()
	}

	footer := m.help.View(m.keys)
	if m.status != "" {
		footer = m.status + "\n" + footer
	}
	return body + "\n\n" + footer
}

func (m Model) viewTriage() string {
	var b strings.Builder

	title := "sift"
	if m.queueScope.Kind == domain.FilterKindAlbum {
		title += " · album"
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spin.View() + " scanning library...")
		return b.String()
	}

	if m.queueIndex >= len(m.queue) {
		b.WriteString(styles.KeptStyle.Render("All caught up."))
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf(
			"%d swiped · %d in trash", m.overlay.SwipedCount(), m.overlay.TrashedCount())))
		return b.String()
	}

	item := m.queue[m.queueIndex]
	var card strings.Builder
	card.WriteString(styles.TitleStyle.Render(item.ID))
	card.WriteString("\n")
	card.WriteString(styles.SubtitleStyle.Render(item.Kind.String()))
	if item.HasCreationDate() {
		card.WriteString(styles.SubtitleStyle.Render("  ·  " + item.CreatedAt.Format("Jan 2, 2006")))
	}
	var flags []string
	if item.IsFavorite {
		flags = append(flags, "favorite")
	}
	if item.IsScreenshot {
		flags = append(flags, "screenshot")
	}
	if len(flags) > 0 {
		card.WriteString("\n")
		card.WriteString(styles.AccentStyle.Render(strings.Join(flags, " · ")))
	}
	b.WriteString(styles.CardStyle.Render(card.String()))
	b.WriteString("\n\n")

	b.WriteString(styles.DimStyle.Render(fmt.Sprintf(
		"%d of %d remaining · %d swipes left today",
		len(m.queue)-m.queueIndex, len(m.queue), m.ledger.Remaining())))

	return b.String()
}

func (m Model) viewProgress() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Progress"))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spin.View() + " computing...")
		return b.String()
	}

	b.WriteString(styles.SubtitleStyle.Render("Categories"))
	b.WriteString("\n")
	if len(m.categories) == 0 {
		b.WriteString(styles.DimStyle.Render("  nothing swiped yet"))
		b.WriteString("\n")
	} else {
		for _, cat := range domain.Categories() {
			if frac, ok := m.categories[cat]; ok {
				b.WriteString(m.progressLine(cat.String(), frac))
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render("Time"))
	b.WriteString("\n")
	for _, label := range sortedKeys(m.buckets) {
		if frac := m.buckets[label]; frac > 0 {
			b.WriteString(m.progressLine(label, frac))
		}
	}

	if len(m.albumFracs) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.SubtitleStyle.Render("Albums"))
		b.WriteString("\n")
		for _, title := range sortedKeys(m.albumFracs) {
			b.WriteString(m.progressLine(title, m.albumFracs[title]))
		}
	}

	return b.String()
}

// progressLine renders one "label  [bar]  42%" row.
func (m Model) progressLine(label string, frac float64) string {
	return fmt.Sprintf("  %-14s %s %3.0f%%\n", label, m.bar.ViewAs(frac), frac*100)
}

func (m Model) viewTrash() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Trash"))
	b.WriteString("\n\n")

	if len(m.trashIDs) == 0 {
		b.WriteString(styles.DimStyle.Render("trash is empty"))
		return b.String()
	}

	for i, id := range m.trashIDs {
		line := id
		if i == m.trashIndex {
			line = styles.SelectedStyle.Render(line)
		} else {
			line = "  " + styles.SubtitleStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("u recover · x delete forever · esc back"))
	return b.String()
}

func (m Model) viewAlbums() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Albums"))
	b.WriteString("\n\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spin.View() + " loading...")
		return b.String()
	}

	if len(m.filtered) == 0 {
		b.WriteString(styles.DimStyle.Render("no matching albums"))
		return b.String()
	}

	for i, album := range m.filtered {
		line := fmt.Sprintf("%s (%d)", album.Title, album.ItemCount)
		if i == m.albumIndex {
			line = styles.SelectedStyle.Render(line)
		} else {
			line = "  " + styles.SubtitleStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("enter triage album · esc back"))
	return b.String()
}

func (m Model) viewConfirmReset() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Reset all triage history?"))
	b.WriteString("\n\n")
	b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf(
		"%d swiped items and %d trashed items will be forgotten.",
		m.overlay.SwipedCount(), m.overlay.TrashedCount())))
	b.WriteString("\n\n")
	b.WriteString(styles.ErrorStyle.Render("y") + styles.DimStyle.Render(" confirm · ") +
		styles.AccentStyle.Render("n") + styles.DimStyle.Render(" cancel"))
	return b.String()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
