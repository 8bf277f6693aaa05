package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/geminichat/internal/chat"
	"github.com/diogo/geminichat/internal/config"
	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
	"github.com/diogo/geminichat/internal/observability"
	"github.com/diogo/geminichat/internal/render"
	"github.com/diogo/geminichat/internal/reveal"
)

const copiedNoticeDuration = time.Second

// Animation tick message
type animationTickMsg time.Time

// Message types for one turn, in the order they arrive
type (
	turnEncodedMsg struct {
		turn    *chat.Turn
		payload *models.InlineData
		err     error
	}
	loadingDueMsg struct {
		turn *chat.Turn
	}
	requestDueMsg struct {
		turn *chat.Turn
	}
	responseMsg struct {
		turn *chat.Turn
		text string
		err  error
	}
	revealTickMsg struct {
		reveal *reveal.Reveal
	}
	copiedResetMsg struct {
		id string
	}
)

// Deps is what the view needs to run turns
type Deps struct {
	Session   *chat.Session
	Encoder   chat.FileEncoder
	Asker     chat.Asker
	Timing    chat.Timing
	Config    config.Config
	ModelName string
}

// Model represents the TUI state
type Model struct {
	session   *chat.Session
	encoder   chat.FileEncoder
	asker     chat.Asker
	timing    chat.Timing
	cfg       config.Config
	modelName string

	ctx    context.Context
	cancel context.CancelFunc

	// UI components
	viewport  viewport.Model
	textarea  textarea.Model
	spinner   spinner.Model
	pathInput textinput.Model

	// State
	ready          bool
	animationFrame int
	alert          string
	confirmClear   bool
	promptingPath  bool
	selectedID     string
	copiedID       string
	renderCache    map[string]string

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a new chat TUI model
func NewChatModel(deps Deps) Model {
	ta := textarea.New()
	ta.Placeholder = "Enter a prompt here"
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter")
	ta.Focus()
	styleTextarea(&ta)

	pi := textinput.New()
	pi.Placeholder = "/path/to/file"
	pi.Prompt = models.FileMarker + " "
	pi.CharLimit = 1024

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		session:     deps.Session,
		encoder:     deps.Encoder,
		asker:       deps.Asker,
		timing:      deps.Timing,
		cfg:         deps.Config,
		modelName:   deps.ModelName,
		ctx:         ctx,
		cancel:      cancel,
		textarea:    ta,
		spinner:     s,
		pathInput:   pi,
		renderCache: make(map[string]string),
	}
}

func styleTextarea(ta *textarea.Model) {
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.spinner.Tick}
	if m.session.IsGenerating() || hasLoading(m.session.Messages()) {
		cmds = append(cmds, animationTick())
	}
	return tea.Batch(cmds...)
}

// quit stops in-flight work and ends the program
func (m Model) quit() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	return tea.Quit
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// after delivers msg once d has passed
func after(d time.Duration, msg tea.Msg) tea.Cmd {
	if d <= 0 {
		return func() tea.Msg { return msg }
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		if m.alert != "" {
			m.alert = ""
			return m, nil
		}
		if m.confirmClear {
			return m.updateConfirmClear(msg)
		}
		if m.promptingPath {
			return m.updatePathPrompt(msg)
		}
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}

		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd

	case turnEncodedMsg:
		if msg.err != nil {
			m.session.Abort(msg.turn)
			m.alert = models.EncodeFailedAlert
			observability.Logger().Warn("failed to encode attachment", "turn_id", msg.turn.ID, "error", msg.err)
			return m, nil
		}
		return m.postOutgoing(msg.turn, msg.payload)

	case loadingDueMsg:
		if !m.session.AppendLoading(msg.turn) {
			return m, nil
		}
		m.animationFrame = 0
		m.refresh()
		return m, tea.Batch(after(m.timing.RequestDelay, requestDueMsg{turn: msg.turn}), animationTick())

	case requestDueMsg:
		return m, m.askCmd(msg.turn)

	case responseMsg:
		if msg.err != nil {
			m.session.Fail(msg.turn, msg.err)
			m.refresh()
			return m, nil
		}
		rv, ok := m.session.StartReveal(msg.turn, msg.text)
		if !ok {
			m.refresh()
			return m, nil
		}
		return m, after(m.timing.TypingInterval, revealTickMsg{reveal: rv})

	case revealTickMsg:
		done := m.session.Advance(msg.reveal)
		m.refresh()
		if done {
			return m, nil
		}
		return m, after(m.timing.TypingInterval, msg)

	case copiedResetMsg:
		if m.copiedID == msg.id {
			m.copiedID = ""
		}
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case animationTickMsg:
		if hasLoading(m.session.Messages()) {
			m.animationFrame++
			m.refresh()
			cmds = append(cmds, animationTick())
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey runs the chat shortcuts. handled is false for keys that belong
// to the textarea.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	key := msg.String()

	switch key {
	case "esc":
		return m, m.quit(), true

	case "enter":
		input := strings.TrimSpace(m.textarea.Value())
		if input == "/exit" || input == "/quit" {
			return m, m.quit(), true
		}
		next, cmd := m.submit(input)
		return next, cmd, true

	case "ctrl+o":
		m.promptingPath = true
		m.pathInput.Reset()
		m.pathInput.Focus()
		m.textarea.Blur()
		return m, textinput.Blink, true

	case "ctrl+x":
		m.session.RemoveFile()
		return m, nil, true

	case "ctrl+t":
		theme := m.session.ToggleTheme()
		m.applyTheme(theme)
		return m, nil, true

	case "ctrl+d":
		m.confirmClear = true
		return m, nil, true

	case "ctrl+y":
		next, cmd := m.copySelected()
		return next, cmd, true

	case "ctrl+up":
		m.moveSelection(-1)
		return m, nil, true

	case "ctrl+down":
		m.moveSelection(1)
		return m, nil, true

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd, true
	}

	if slot, ok := suggestionSlot(key); ok {
		if s, ok := models.SuggestionAt(slot); ok {
			next, cmd := m.submit(s.Text)
			return next, cmd, true
		}
	}

	return m, nil, false
}

// suggestionSlot maps ctrl+N and alt+N to suggestion N
func suggestionSlot(key string) (int, bool) {
	for _, prefix := range []string{"ctrl+", "alt+"} {
		if rest, ok := strings.CutPrefix(key, prefix); ok && len(rest) == 1 && rest[0] >= '1' && rest[0] <= '9' {
			return int(rest[0] - '0'), true
		}
	}
	return 0, false
}

// submit starts a turn. Nothing happens when the session refuses it.
func (m Model) submit(text string) (Model, tea.Cmd) {
	turn, ok := m.session.Begin(text)
	if !ok {
		return m, nil
	}
	if turn.Attachment == nil {
		return m.postOutgoing(turn, nil)
	}
	return m, m.encodeCmd(turn)
}

func (m Model) postOutgoing(turn *chat.Turn, payload *models.InlineData) (Model, tea.Cmd) {
	if !m.session.PostOutgoing(turn, payload) {
		return m, nil
	}
	m.textarea.Reset()
	m.selectedID = ""
	m.refresh()
	m.viewport.GotoBottom()
	return m, after(m.timing.LoadingDelay, loadingDueMsg{turn: turn})
}

func (m Model) encodeCmd(turn *chat.Turn) tea.Cmd {
	ctx := m.ctx
	enc := m.encoder
	return func() tea.Msg {
		data, err := enc.Encode(ctx, *turn.Attachment)
		if err != nil {
			return turnEncodedMsg{turn: turn, err: err}
		}
		return turnEncodedMsg{turn: turn, payload: &data}
	}
}

func (m Model) askCmd(turn *chat.Turn) tea.Cmd {
	ctx := observability.WithTurnID(m.ctx, turn.ID)
	asker := m.asker
	return func() tea.Msg {
		text, err := asker.Ask(ctx, turn.Prompt, turn.Payload)
		return responseMsg{turn: turn, text: text, err: err}
	}
}

func (m Model) updateConfirmClear(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		m.session.Clear()
		m.selectedID = ""
		m.copiedID = ""
		m.renderCache = make(map[string]string)
		m.confirmClear = false
		m.refresh()
	case "n", "esc":
		m.confirmClear = false
	}
	return m, nil
}

func (m Model) updatePathPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePathPrompt()
		return m, nil

	case "enter":
		path := strings.TrimSpace(m.pathInput.Value())
		m.closePathPrompt()
		if path == "" {
			return m, nil
		}
		if _, err := m.session.SelectFile(path); err != nil {
			m.alert = fileAlert(err)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m *Model) closePathPrompt() {
	m.promptingPath = false
	m.pathInput.Blur()
	m.textarea.Focus()
}

// fileAlert is the notice shown for a rejected file
func fileAlert(err error) string {
	switch {
	case errors.Is(err, apierrors.ErrFileTooLarge):
		return models.FileTooLargeAlert
	case errors.Is(err, apierrors.ErrUnsupportedType):
		return models.UnsupportedAlert
	default:
		return err.Error()
	}
}

func (m Model) copySelected() (Model, tea.Cmd) {
	id := m.selectedOrLatest()
	if id == "" {
		return m, nil
	}
	if msg, ok := m.session.Message(id); !ok || msg.IsLoading {
		return m, nil
	}
	if err := m.session.CopyMessage(id); err != nil {
		observability.Logger().Warn("copy failed", "error", err)
		m.alert = models.ClipboardAlert
		return m, nil
	}
	m.copiedID = id
	m.refresh()
	return m, after(copiedNoticeDuration, copiedResetMsg{id: id})
}

// selectedOrLatest returns the selected reply, or the newest one
func (m Model) selectedOrLatest() string {
	ids := m.session.IncomingIDs()
	if len(ids) == 0 {
		return ""
	}
	for _, id := range ids {
		if id == m.selectedID {
			return id
		}
	}
	return ids[len(ids)-1]
}

func (m *Model) moveSelection(delta int) {
	ids := m.session.IncomingIDs()
	if len(ids) == 0 {
		return
	}
	current := len(ids) - 1
	selected := m.selectedOrLatest()
	for i, id := range ids {
		if id == selected {
			current = i
		}
	}
	next := current + delta
	if next < 0 {
		next = 0
	}
	if next >= len(ids) {
		next = len(ids) - 1
	}
	m.selectedID = ids[next]
	m.refresh()
}

func (m *Model) applyTheme(theme models.Theme) {
	render.SetTUITheme(theme)
	UpdateTheme()
	styleTextarea(&m.textarea)
	m.spinner.Style = loadingStyle
	m.renderCache = make(map[string]string)
	m.refresh()
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 4
	inputHeight := 7
	statusHeight := 1
	padding := 2

	vpHeight := height - headerHeight - inputHeight - statusHeight - padding
	if vpHeight < 5 {
		vpHeight = 5
	}
	contentWidth := width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
	m.pathInput.Width = contentWidth - 8
	m.renderCache = make(map[string]string)
	m.refresh()
	m.viewport.GotoBottom()
}

// refresh rebuilds the viewport content from the session
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages(m.session.Messages()))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m Model) renderMessages(msgs []models.Message) string {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}
	selected := m.selectedOrLatest()
	if m.selectedID == "" {
		selected = ""
	}

	for i, msg := range msgs {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.IsOutgoing() {
			label := userLabelStyle.Render("⬤ You")
			bubble := userBubbleStyle.Width(bubbleWidth).Render(msg.Text)
			content.WriteString(label + "\n" + bubble)
			content.WriteString("\n")
			continue
		}

		label := assistantLabelStyle.Render("✦ Gemini")
		if msg.ID == selected {
			label = selectedMarkStyle.Render("▸ ") + label
		}
		if msg.ID == m.copiedID {
			label += noticeStyle.Render("  ✓ copied")
		}
		content.WriteString(label + "\n")

		switch {
		case msg.IsLoading:
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(m.renderLoadingAnimation(bubbleWidth - 4)))
		case msg.IsError:
			content.WriteString(errorBubbleStyle.Width(bubbleWidth).Render("⚠ " + msg.Text))
		case m.session.IsGenerating() && msg.ID == msgs[len(msgs)-1].ID:
			// still being revealed
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(msg.Text))
		default:
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(m.markdown(msg, bubbleWidth-4)))
		}
		content.WriteString("\n")
	}

	return content.String()
}

// markdown renders a completed reply, caching by id
func (m Model) markdown(msg models.Message, width int) string {
	if out, ok := m.renderCache[msg.ID]; ok && msg.ID != "" {
		return out
	}
	opts := render.OptionsFromConfig(m.cfg, m.session.Theme(), width)
	out := render.MarkdownOrPlain(msg.Text, opts)
	if msg.ID != "" && m.renderCache != nil {
		m.renderCache[msg.ID] = out
	}
	return out
}

func hasLoading(msgs []models.Message) bool {
	for _, msg := range msgs {
		if msg.IsLoading {
			return true
		}
	}
	return false
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	if m.alert != "" {
		return m.renderModal(modalTitleStyle.Render("Notice")+"\n"+m.alert+"\n\n"+hintStyle.Render("press any key"), contentWidth)
	}
	if m.confirmClear {
		return m.renderModal(modalTitleStyle.Render("Delete chat")+"\n"+models.ClearConfirmPrompt+"\n\n"+hintStyle.Render("y / n"), contentWidth)
	}

	var sections []string
	msgs := m.session.Messages()

	sections = append(sections, m.renderHeader(contentWidth, len(msgs) == 0))

	var messagesContent string
	if len(msgs) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	sections = append(sections, m.renderInput(contentWidth))
	sections = append(sections, disclaimerStyle.Width(contentWidth).Render(models.Disclaimer))
	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(width int, empty bool) string {
	if empty {
		greeting := gradientText(models.Greeting, 0)
		return headerStyle.Width(width).Render(lipgloss.JoinVertical(
			lipgloss.Left,
			greeting,
			greetingSubtitleStyle.Render(models.Subtitle),
		))
	}

	parts := []string{
		titleStyle.Render("✦ Gemini Chat"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.modelName),
	}
	if m.session.IsGenerating() {
		parts = append(parts, hintStyle.Render("  •  "), m.spinner.View())
	}
	return headerStyle.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Center, parts...))
}

// renderWelcome lists the suggestions while the chat is empty
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4

	var lines []string
	for i, s := range models.Suggestions {
		key := suggestionKeyStyle.Render(fmt.Sprintf("Alt+%d", i+1))
		lines = append(lines, suggestionStyle.Width(width).Render(fmt.Sprintf("%s  %s  %s", key, s.Text, s.Icon)))
	}
	content := lipgloss.JoinVertical(lipgloss.Left, lines...)

	topPadding := (m.viewport.Height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

// renderLoadingAnimation draws three gradient bars sweeping across width
func (m Model) renderLoadingAnimation(width int) string {
	if width < 10 {
		width = 10
	}
	widths := []int{width, width, width * 3 / 5}
	var bars []string
	for row, w := range widths {
		var bar strings.Builder
		for i := 0; i < w; i++ {
			colorIdx := (i/2 + m.animationFrame + row) % len(gradientColors)
			bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render("▀"))
		}
		bars = append(bars, bar.String())
	}
	return strings.Join(bars, "\n")
}

func (m Model) renderInput(width int) string {
	var parts []string

	if att, ok := m.session.PendingAttachment(); ok {
		chip := fileChipStyle.Render(fmt.Sprintf("%s %s  %s", models.FileMarker, att.Name, formatSize(att.Size)))
		parts = append(parts, chip+hintStyle.Render("  ctrl+x to remove"))
	}

	if m.promptingPath {
		parts = append(parts, inputLabelStyle.Render("Attach file"), m.pathInput.View())
	} else {
		parts = append(parts, inputLabelStyle.Render("You"), m.textarea.View())
	}

	return inputPanelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

type shortcut struct {
	key  string
	desc string
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []shortcut{
		{"Enter", "Send"},
		{"^O", "Attach"},
		{"^Y", "Copy"},
		{"^T", "Theme"},
		{"^D", "Clear"},
		{"Esc", "Quit"},
	}
	if m.promptingPath {
		shortcuts = []shortcut{{"Enter", "Attach"}, {"Esc", "Cancel"}}
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

func (m Model) renderModal(body string, width int) string {
	boxWidth := width * 2 / 3
	if boxWidth < 50 {
		boxWidth = 50
	}
	box := modalStyle.Width(boxWidth).Render(body)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// RunChat starts the chat TUI
func RunChat(deps Deps) error {
	render.SetTUITheme(deps.Session.Theme())
	UpdateTheme()

	m := NewChatModel(deps)
	defer m.cancel()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
