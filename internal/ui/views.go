package ui

import (
	"fmt"
	"strings"

	"github.com/five82/ava/internal/loadable"
	"github.com/five82/ava/internal/model"
)

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + user + sync status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: view tabs + slot state
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n\n")

	b.WriteString(m.renderContent())
	b.WriteString("\n")

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render("ava", styles.Logo)}

	user := m.snapshot.UserData.User
	if u, ok := user.Value(); ok && user.Ready() {
		parts = append(parts, bg.Render(u.DisplayName(), styles.Text))
	} else {
		parts = append(parts, bg.Render("signed out (L to sign in)", styles.MutedText))
	}

	sys := m.snapshot.System
	switch {
	case sys.IsOffline():
		parts = append(parts, bg.Render(fmt.Sprintf("offline (%d failed refreshes)", sys.ConsecutiveFailures), styles.DangerText))
	case sys.Active:
		parts = append(parts, bg.Render(m.spinner.View()+" syncing", styles.InfoText))
	case !sys.LastRefresh.IsZero():
		parts = append(parts, bg.Render("synced "+formatDate(sys.LastRefresh), styles.MutedText))
	}

	line := bg.Join(parts, "  |  ")
	return styles.Header.Width(max(m.width, 1)).Render(line)
}

func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()

	tabs := []struct {
		view  View
		label string
	}{
		{ViewConversations, "Conversations"},
		{ViewJournals, "Journals"},
		{ViewLogs, "Logs"},
	}
	parts := make([]string, 0, len(tabs)+1)
	for _, tab := range tabs {
		active := tab.view == m.currentView || (tab.view == ViewConversations && m.currentView == ViewChat)
		if active {
			parts = append(parts, styles.Selected.Render(" "+tab.label+" "))
		} else {
			parts = append(parts, styles.MutedText.Render(" "+tab.label+" "))
		}
	}
	if _, kind, ok := m.currentSlot(); ok {
		parts = append(parts, kindBadge(kind, styles))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	if m.form != nil {
		return m.renderForm()
	}
	if m.notice != "" {
		return styles.WarningText.Render(truncate(m.notice, m.width))
	}
	return m.help.View(m.keys)
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	user := m.snapshot.UserData.User
	if !user.Ready() && m.currentView != ViewLogs {
		return m.renderSignedOut()
	}
	switch m.currentView {
	case ViewConversations:
		return m.renderConversations()
	case ViewChat:
		return m.renderChat()
	case ViewJournals:
		return m.renderJournals()
	case ViewLogs:
		return m.renderLogs()
	default:
		return ""
	}
}

func (m Model) renderSignedOut() string {
	styles := m.theme.Styles()
	return renderSlot(m.snapshot.UserData.User, slotView[model.User]{
		idle: "Not signed in. Press L to sign in or register.",
		body: func(u model.User) string { return styles.Text.Render("Signed in as " + u.DisplayName()) },
	}, styles, m.spinner.View())
}

func (m Model) renderConversations() string {
	styles := m.theme.Styles()
	return renderSlot(m.snapshot.ConversationData.Conversations, slotView[[]model.Conversation]{
		allowPartial: true,
		idle:         "No conversations loaded. Press r to load.",
		body: func(items []model.Conversation) string {
			if len(items) == 0 {
				return styles.FaintText.Render("No conversations yet. Press n to start one.")
			}
			rows := make([]string, len(items))
			for i, c := range items {
				row := fmt.Sprintf("%-6d %-*s %s", c.ID, m.nameWidth(), truncate(c.Name, m.nameWidth()), formatDate(c.DateCreated))
				rows[i] = m.renderRow(row, i == m.selectedRow)
			}
			return strings.Join(rows, "\n")
		},
	}, styles, m.spinner.View())
}

func (m Model) renderChat() string {
	styles := m.theme.Styles()
	title := styles.AccentText.Bold(true).Render(m.conversationName(m.activeConversation))
	body := renderSlot(m.chatSlot(), slotView[[]model.Chat]{
		idle: "Chats not loaded. Press r to load.",
		body: func([]model.Chat) string { return m.chatViewport.View() },
	}, styles, m.spinner.View())
	return title + "\n" + body
}

// renderChatLines renders chats oldest first, one message per line.
func (m Model) renderChatLines(chats []model.Chat) string {
	styles := m.theme.Styles()
	if len(chats) == 0 {
		return styles.FaintText.Render("No messages yet. Press n to write one.")
	}
	lines := make([]string, 0, len(chats))
	for _, c := range chats {
		var who string
		if c.IsUserMessage {
			who = styles.AccentText.Render("you")
		} else {
			who = styles.InfoText.Render("ava")
		}
		line := who + "  " + styles.Text.Render(c.Message)
		switch c.SendState {
		case model.SendStateSending:
			line += " " + styles.FaintText.Render("(sending)")
		case model.SendStateFailed:
			line += " " + styles.DangerText.Render("(not sent, r to resend)")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderJournals() string {
	styles := m.theme.Styles()
	list := renderSlot(m.snapshot.JournalData.Journals, slotView[[]model.Journal]{
		allowPartial: true,
		idle:         "No journals loaded. Press r to load.",
		body: func(items []model.Journal) string {
			if len(items) == 0 {
				return styles.FaintText.Render("No journal entries yet. Press n to write one.")
			}
			rows := make([]string, len(items))
			for i, j := range items {
				row := fmt.Sprintf("%-16s %-*s %s", formatDate(j.DateCreated), m.nameWidth(), truncate(j.Name, m.nameWidth()), truncate(firstLine(j.Message), 40))
				rows[i] = m.renderRow(row, i == m.selectedRow)
			}
			return strings.Join(rows, "\n")
		},
	}, styles, m.spinner.View())

	byDate := m.snapshot.JournalData.ByDate
	if byDate.Kind() == loadable.KindNotRequested {
		return list
	}
	today := renderSlot(byDate, slotView[[]model.Journal]{
		body: func(items []model.Journal) string {
			if len(items) == 0 {
				return styles.FaintText.Render("Nothing written on this day.")
			}
			names := make([]string, len(items))
			for i, j := range items {
				names[i] = "- " + truncate(j.Name, m.nameWidth())
			}
			return styles.Text.Render(strings.Join(names, "\n"))
		},
	}, styles, m.spinner.View())
	return list + "\n\n" + styles.AccentText.Bold(true).Render("By date") + "\n" + today
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	if m.logPath == "" {
		return styles.FaintText.Render("No log file configured.")
	}
	if len(m.logLines) == 0 {
		return styles.FaintText.Render("Log is empty: " + m.logPath)
	}
	return m.logViewport.View()
}

func (m Model) renderRow(text string, selected bool) string {
	styles := m.theme.Styles()
	if selected {
		return styles.Selected.Width(max(m.width, 1)).Render(text)
	}
	return styles.Text.Render(text)
}

func (m Model) nameWidth() int {
	return min(max(m.width/3, 12), 48)
}

func (m Model) conversationName(id int64) string {
	items, _ := m.snapshot.ConversationData.Conversations.Value()
	for _, c := range items {
		if c.ID == id {
			return c.Name
		}
	}
	return fmt.Sprintf("Conversation %d", id)
}
