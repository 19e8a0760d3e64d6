package ui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	averrors "github.com/five82/ava/internal/errors"
	"github.com/five82/ava/internal/logfields"
	"github.com/five82/ava/internal/loadable"
	"github.com/five82/ava/internal/logtail"
	"github.com/five82/ava/internal/model"
	"github.com/five82/ava/internal/prefs"
	"github.com/five82/ava/internal/service"
	"github.com/five82/ava/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewConversations View = iota
	ViewChat
	ViewJournals
	ViewLogs
)

// Name is the preference name of the view.
func (v View) Name() string {
	switch v {
	case ViewJournals:
		return "journals"
	case ViewLogs:
		return "logs"
	default:
		return "conversations"
	}
}

func viewFromName(name string) View {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "journals":
		return ViewJournals
	case "logs":
		return ViewLogs
	default:
		return ViewConversations
	}
}

const logViewLines = 200

// Options configures the UI.
type Options struct {
	Context       context.Context
	Store         *state.Store
	Engine        *service.Engine
	Auth          *service.AuthService
	Conversations *service.ConversationService
	Chats         *service.ChatService
	Journals      *service.JournalService
	ThemeName     string
	ViewName      string
	PrefsPath     string
	LogPath       string
	Logger        *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	eng       *service.Engine
	auth      *service.AuthService
	convs     *service.ConversationService
	chats     *service.ChatService
	journals  *service.JournalService
	logger    *slog.Logger
	sub       *state.Subscription[state.AppState]
	prefsPath string
	logPath   string

	// UI state
	theme       Theme
	keys        keyMap
	help        help.Model
	spinner     spinner.Model
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool

	// Data state
	snapshot     state.AppState
	bootstrapped bool

	// Selection
	selectedRow        int
	activeConversation int64
	pendingDelete      int64

	// Chat and log scrolling
	chatViewport viewport.Model
	logViewport  viewport.Model
	logLines     []string

	// Input
	form   *form
	input  textinput.Model
	notice string
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:          ctx,
		store:        opts.Store,
		eng:          opts.Engine,
		auth:         opts.Auth,
		convs:        opts.Conversations,
		chats:        opts.Chats,
		journals:     opts.Journals,
		logger:       logger,
		prefsPath:    prefsPath,
		logPath:      opts.LogPath,
		theme:        GetTheme(themeName),
		keys:         DefaultKeyMap(),
		help:         help.New(),
		spinner:      sp,
		currentView:  viewFromName(opts.ViewName),
		snapshot:     state.NewAppState(),
		input:        textinput.New(),
		chatViewport: viewport.New(0, 0),
		logViewport:  viewport.New(0, 0),
	}
	if m.store != nil {
		m.sub = state.Observe(ctx, m.store, state.Root())
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.sub != nil {
		cmds = append(cmds, waitForState(m.sub))
	}
	if m.currentView == ViewLogs {
		cmds = append(cmds, readLogsCmd(m.logPath))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.form != nil {
			return m.handleFormKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.resizeViewports()
		return m, nil

	case stateMsg:
		m.snapshot = state.AppState(msg)
		m.clampSelection()
		m.updateChatViewport()
		cmd := m.bootstrap()
		return m, tea.Batch(cmd, waitForState(m.sub))

	case requestDoneMsg:
		if msg.err != nil && !averrors.Is(msg.err, averrors.CategorySuperseded) {
			m.notice = msg.label + ": " + msg.err.Error()
		}
		return m, nil

	case logLinesMsg:
		if msg.err != nil {
			m.notice = "read log: " + msg.err.Error()
			return m, nil
		}
		m.logLines = msg.lines
		m.updateLogViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// bootstrap loads the lists once a user is signed in.
func (m *Model) bootstrap() tea.Cmd {
	if m.bootstrapped || !m.snapshot.UserData.User.Ready() {
		return nil
	}
	m.bootstrapped = true
	var cmds []tea.Cmd
	if m.convs != nil {
		cmds = append(cmds, m.await("load conversations", m.convs.LoadList(false)))
	}
	if m.journals != nil {
		cmds = append(cmds, m.await("load journals", m.journals.LoadList(false)))
	}
	return tea.Batch(cmds...)
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	k := msg.String()
	if k != "d" {
		m.pendingDelete = 0
	}

	switch k {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "T":
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case "tab":
		return m.switchView(m.nextView())

	case "esc":
		m.notice = ""
		if m.currentView == ViewChat {
			m.currentView = ViewConversations
		}
		return m, nil

	case "L":
		cmd := m.openLoginForm()
		return m, cmd

	case "R":
		return m, m.reload(true)

	case "r":
		return m, m.retry()
	}

	switch m.currentView {
	case ViewConversations:
		return m.handleConversationKey(k)
	case ViewChat:
		return m.handleChatKey(msg)
	case ViewJournals:
		return m.handleJournalKey(k)
	case ViewLogs:
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleConversationKey(k string) (tea.Model, tea.Cmd) {
	items, _ := m.snapshot.ConversationData.Conversations.Value()
	if m.moveSelection(k, len(items)) {
		return m, nil
	}
	switch k {
	case "enter":
		if len(items) == 0 {
			return m, nil
		}
		return m.openChat(items[m.selectedRow].ID)
	case "m":
		if m.convs != nil {
			return m, m.await("load more conversations", m.convs.LoadMore())
		}
	case "n":
		if m.convs == nil {
			return m, nil
		}
		convs := m.convs
		cmd := m.openForm(&form{
			label:   "new conversation",
			prompts: []string{"Name"},
			submit: func(values []string) *service.Request {
				return convs.Create(values[0])
			},
		})
		return m, cmd
	case "d":
		if len(items) == 0 || m.convs == nil {
			return m, nil
		}
		c := items[m.selectedRow]
		if m.pendingDelete != c.ID {
			m.pendingDelete = c.ID
			m.notice = "press d again to delete " + c.Name
			return m, nil
		}
		m.pendingDelete = 0
		m.notice = ""
		return m, m.await("delete conversation", m.convs.Delete(c.ID))
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n", "enter":
		if m.chats == nil {
			return m, nil
		}
		chats, id := m.chats, m.activeConversation
		cmd := m.openForm(&form{
			label:   "send message",
			prompts: []string{"Message"},
			submit: func(values []string) *service.Request {
				return chats.Send(id, values[0])
			},
		})
		return m, cmd
	}
	var cmd tea.Cmd
	m.chatViewport, cmd = m.chatViewport.Update(msg)
	return m, cmd
}

func (m Model) handleJournalKey(k string) (tea.Model, tea.Cmd) {
	items, _ := m.snapshot.JournalData.Journals.Value()
	if m.moveSelection(k, len(items)) {
		return m, nil
	}
	switch k {
	case "m":
		if m.journals != nil {
			return m, m.await("load more journals", m.journals.LoadMore())
		}
	case "t":
		if m.journals != nil {
			return m, m.await("journals of today", m.journals.LoadByDate(time.Now(), false))
		}
	case "n":
		if m.journals == nil {
			return m, nil
		}
		journals := m.journals
		cmd := m.openForm(&form{
			label:   "new journal",
			prompts: []string{"Title", "Entry"},
			submit: func(values []string) *service.Request {
				return journals.Add(model.Journal{Name: values[0], Message: values[1]})
			},
		})
		return m, cmd
	case "d":
		if len(items) == 0 || m.journals == nil {
			return m, nil
		}
		j := items[m.selectedRow]
		if m.pendingDelete != j.ID {
			m.pendingDelete = j.ID
			m.notice = "press d again to delete " + j.Name
			return m, nil
		}
		m.pendingDelete = 0
		m.notice = ""
		return m, m.await("delete journal", m.journals.Delete(j.ID))
	}
	return m, nil
}

// moveSelection applies navigation keys to the selected row.
func (m *Model) moveSelection(k string, count int) bool {
	switch k {
	case "j", "down":
		if m.selectedRow < count-1 {
			m.selectedRow++
		}
	case "k", "up":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "g", "home":
		m.selectedRow = 0
	case "G", "end":
		m.selectedRow = max(count-1, 0)
	default:
		return false
	}
	return true
}

func (m *Model) clampSelection() {
	var count int
	switch m.currentView {
	case ViewConversations:
		items, _ := m.snapshot.ConversationData.Conversations.Value()
		count = len(items)
	case ViewJournals:
		items, _ := m.snapshot.JournalData.Journals.Value()
		count = len(items)
	default:
		return
	}
	m.selectedRow = min(m.selectedRow, max(count-1, 0))
}

func (m Model) nextView() View {
	switch m.currentView {
	case ViewConversations, ViewChat:
		return ViewJournals
	case ViewJournals:
		return ViewLogs
	default:
		return ViewConversations
	}
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	m.selectedRow = 0
	m.notice = ""
	m.savePrefs()
	if v == ViewLogs {
		return m, readLogsCmd(m.logPath)
	}
	return m, nil
}

func (m Model) openChat(id int64) (tea.Model, tea.Cmd) {
	m.activeConversation = id
	m.currentView = ViewChat
	m.notice = ""
	m.updateChatViewport()
	if m.chats == nil {
		return m, nil
	}
	return m, m.await("load chats", m.chats.LoadChats(id, false))
}

// currentSlot returns the key and kind of the slot shown by the current view.
func (m Model) currentSlot() (string, loadable.Kind, bool) {
	switch m.currentView {
	case ViewConversations:
		return state.ConversationsPath.Key(), m.snapshot.ConversationData.Conversations.Kind(), true
	case ViewChat:
		return state.ChatsFor(m.activeConversation).Key(), m.chatSlot().Kind(), true
	case ViewJournals:
		return state.JournalsPath.Key(), m.snapshot.JournalData.Journals.Kind(), true
	}
	return "", loadable.KindNotRequested, false
}

func (m Model) chatSlot() loadable.Loadable[[]model.Chat] {
	return m.snapshot.ChatData.Chats[m.activeConversation]
}

// retry replays the failed operation of the current slot, resends a failed
// chat message, or reloads the slot.
func (m Model) retry() tea.Cmd {
	if m.currentView == ViewLogs {
		return readLogsCmd(m.logPath)
	}
	key, kind, ok := m.currentSlot()
	if ok && kind == loadable.KindFailed && m.eng != nil && m.eng.CanRetry(key) {
		req, err := m.eng.Retry(key)
		if err != nil {
			return func() tea.Msg { return requestDoneMsg{label: "retry", err: err} }
		}
		m.logger.Debug("retry issued", logfields.Slot(key))
		return m.await("retry", req)
	}
	if m.currentView == ViewChat && m.chats != nil {
		chats, _ := m.chatSlot().Value()
		for _, c := range chats {
			if c.SendState == model.SendStateFailed {
				return m.await("resend", m.chats.Resend(c))
			}
		}
	}
	return m.reload(false)
}

func (m Model) reload(force bool) tea.Cmd {
	switch m.currentView {
	case ViewConversations:
		if m.convs != nil {
			return m.await("load conversations", m.convs.LoadList(force))
		}
	case ViewChat:
		if m.chats != nil {
			return m.await("load chats", m.chats.LoadChats(m.activeConversation, force))
		}
	case ViewJournals:
		if m.journals != nil {
			return m.await("load journals", m.journals.LoadList(force))
		}
	case ViewLogs:
		return readLogsCmd(m.logPath)
	}
	return nil
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, View: m.currentView.Name()}); err != nil {
		m.logger.Warn("save preferences failed", logfields.Error(err))
	}
}

func (m *Model) resizeViewports() {
	bodyHeight := max(m.height-4, 1)
	m.chatViewport.Width = m.width
	m.chatViewport.Height = bodyHeight - 1
	m.logViewport.Width = m.width
	m.logViewport.Height = bodyHeight
	m.updateChatViewport()
	m.updateLogViewport()
}

func (m *Model) updateChatViewport() {
	chats, _ := m.chatSlot().Value()
	m.chatViewport.SetContent(m.renderChatLines(chats))
	m.chatViewport.GotoBottom()
}

func (m *Model) updateLogViewport() {
	m.logViewport.SetContent(strings.Join(m.logLines, "\n"))
	m.logViewport.GotoBottom()
}

// Messages

type stateMsg state.AppState

type requestDoneMsg struct {
	label string
	err   error
}

type logLinesMsg struct {
	lines []string
	err   error
}

// Commands

// waitForState delivers the next root value of the subscription.
func waitForState(sub *state.Subscription[state.AppState]) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		v, ok := <-sub.C
		if !ok {
			return nil
		}
		return stateMsg(v)
	}
}

// await reports the outcome of req once it finishes.
func (m Model) await(label string, req *service.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return requestDoneMsg{label: label, err: req.Wait(ctx)}
	}
}

func readLogsCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, logtail.Options{Lines: logViewLines})
		return logLinesMsg{lines: lines, err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	if m.sub != nil {
		defer m.sub.Cancel()
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
