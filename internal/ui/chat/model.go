// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file implements the session orchestrator. It owns the transcript,
// the active chat id, the chat list, the in-flight send state, and the
// single audio playback token, and is the sole boundary that converts
// backend failures into user-visible transcript messages.
package chat

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/jeranaias/toolify-tui/internal/api"
	"github.com/jeranaias/toolify-tui/internal/attachment"
	"github.com/jeranaias/toolify-tui/internal/audio"
	"github.com/jeranaias/toolify-tui/internal/config"
	"github.com/jeranaias/toolify-tui/internal/model"
	"github.com/jeranaias/toolify-tui/internal/recorder"
	"github.com/jeranaias/toolify-tui/internal/ui/components"
	"github.com/jeranaias/toolify-tui/internal/ui/styles"
)

// Fixed substitutes so the optimistic user bubble is never blank.
const (
	fileOnlyPrompt = "What is this tool?"
	voiceOnlyLabel = "Voice message"
)

// focusArea is which pane owns the keyboard.
type focusArea int

const (
	focusComposer focusArea = iota
	focusChips
	focusSidebar
)

// Options configures the chat model.
type Options struct {
	Language  string // default response language
	FirstName string // signed-in user's first name, "" when anonymous
	ReadOnly  bool   // signed-out: no sends, no history
	Logger    *log.Logger
}

// Model is the chat view and session orchestrator.
type Model struct {
	theme  *styles.Theme
	keys   KeyMap
	logger *log.Logger

	backend  Backend
	session  *model.Session
	recorder *recorder.Recorder
	attach   *attachment.Manager
	player   *audio.Player
	finished chan PlaybackFinishedMsg

	composer  Composer
	sidebar   Sidebar
	welcome   components.Welcome
	spinner   components.Spinner
	recInd    components.RecordingIndicator
	statusBar *components.StatusBar
	renderer  *components.Renderer

	language    string
	readOnly    bool
	inFlight    bool
	loadingChat bool
	chatGen     uint64
	notice      string
	focus       focusArea

	width  int
	height int
}

// New creates the chat model. The recorder and player arrive constructed
// so tests and main can choose their capture source and sink.
func New(theme *styles.Theme, backend Backend, rec *recorder.Recorder, player *audio.Player, opts Options) Model {
	attach := attachment.NewManager()

	lang := opts.Language
	if lang == "" {
		lang = "en"
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	m := Model{
		theme:     theme,
		keys:      DefaultKeyMap(),
		logger:    logger,
		backend:   backend,
		session:   model.NewSession(),
		recorder:  rec,
		attach:    attach,
		player:    player,
		finished:  make(chan PlaybackFinishedMsg, 4),
		composer:  NewComposer(attach),
		sidebar:   NewSidebar(),
		welcome:   components.NewWelcome(theme, opts.FirstName),
		spinner:   components.NewThinkingSpinner(),
		recInd:    components.NewRecordingIndicator(),
		statusBar: components.NewStatusBar(theme),
		renderer:  components.NewRenderer(76),
		language:  lang,
		readOnly:  opts.ReadOnly,
	}
	m.statusBar.Language = lang
	m.statusBar.SignedOut = opts.ReadOnly

	player.OnFinished(func(messageID string, err error) {
		m.finished <- PlaybackFinishedMsg{MessageID: messageID, Err: err}
	})

	return m
}

// Session exposes the transcript, used by the app model and tests.
func (m Model) Session() *model.Session {
	return m.session
}

// InFlight reports whether a send or manual request is outstanding.
func (m Model) InFlight() bool {
	return m.inFlight
}

// Init starts the playback listener and the best-effort chat list
// bootstrap for signed-in users.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listenPlaybackCmd()}
	if !m.readOnly {
		cmds = append(cmds, m.loadChatsCmd())
	}
	return tea.Batch(cmds...)
}

// Update routes messages to the orchestrator's handlers.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil
	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReplyMsg:
		return m.handleReply(msg)
	case ChatsLoadedMsg:
		return m.handleChatsLoaded(msg), nil
	case TranscriptMsg:
		return m.handleTranscript(msg), nil
	case ManualMsg:
		return m.handleManual(msg), nil
	case SafetyGuideMsg:
		return m.handleSafetyGuide(msg), nil

	case RecordingStartedMsg:
		return m.handleRecordingStarted(msg)
	case RecordingStoppedMsg:
		return m.handleRecordingStopped(msg), nil
	case RecordTickMsg:
		if m.composer.Recording() {
			return m, recordTickCmd()
		}
		return m, nil

	case PlaybackToggledMsg:
		return m.handlePlaybackToggled(msg), nil
	case PlaybackFinishedMsg:
		if msg.Err != nil {
			m.notice = "Audio playback failed."
		}
		m.statusBar.Status = components.StatusReady
		return m, m.listenPlaybackCmd()

	case AttachmentAddedMsg:
		return m.handleAttachmentAdded(msg)
	case PreviewReadyMsg:
		m.attach.SetPreview(msg.FileID, msg.DataURL)
		return m, nil

	case StatusMsg:
		m.notice = msg.Text
		return m, nil
	}

	// Spinner ticks and other component messages.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)
	m.recInd, cmd = m.recInd.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.statusBar.SetWidth(msg.Width)

	contentWidth := msg.Width
	if !m.theme.CompactLayout() {
		contentWidth -= m.sidebar.Width()
	}
	m.composer.SetWidth(contentWidth - 4)
	m.renderer.SetWidth(contentWidth - 6)
	m.sidebar.SetSize(m.sidebar.Width(), msg.Height-6)
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if keyMatches(msg, m.keys.Quit) {
		m.player.Stop()
		return m, tea.Quit
	}

	switch {
	case keyMatches(msg, m.keys.FocusNav):
		return m.cycleFocus(), nil

	case keyMatches(msg, m.keys.Record):
		return m.toggleRecording()

	case keyMatches(msg, m.keys.NewChat):
		m = m.newChat()
		return m, nil

	case keyMatches(msg, m.keys.Play):
		return m.playLastAssistant()

	case keyMatches(msg, m.keys.Attach):
		m.composer.SetValue("/attach ")
		m.setFocus(focusComposer)
		return m, nil

	case keyMatches(msg, m.keys.Remove):
		m.attach.RemoveAt(m.attach.Count() - 1)
		m.statusBar.Attachments = m.attach.Count()
		return m, nil
	}

	switch m.focus {
	case focusSidebar:
		return m.handleSidebarKey(msg)
	case focusChips:
		return m.handleChipsKey(msg)
	default:
		return m.handleComposerKey(msg)
	}
}

func (m Model) handleComposerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case keyMatches(msg, m.keys.Newline):
		m.composer.InsertNewline()
		return m, nil
	case keyMatches(msg, m.keys.Send):
		return m.submit()
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case keyMatches(msg, m.keys.Up):
		m.sidebar.MoveUp()
		return m, nil
	case keyMatches(msg, m.keys.Down):
		m.sidebar.MoveDown()
		return m, nil
	case keyMatches(msg, m.keys.Send):
		if c, ok := m.sidebar.Selected(); ok {
			return m.selectChat(c.ID)
		}
	}
	return m, nil
}

func (m Model) handleChipsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "right", "down":
		m.welcome.Next()
	case "left", "up":
		m.welcome.Prev()
	case "enter":
		if chip := m.welcome.Selected(); chip != "" {
			m.composer.SetValue(chip)
		}
		m.setFocus(focusComposer)
	}
	return m, nil
}

func (m Model) cycleFocus() Model {
	switch m.focus {
	case focusComposer:
		if m.session.IsEmpty() && !m.readOnly {
			m.setFocus(focusChips)
		} else if len(m.sidebar.Chats()) > 0 {
			m.setFocus(focusSidebar)
		}
	case focusChips:
		if len(m.sidebar.Chats()) > 0 {
			m.setFocus(focusSidebar)
		} else {
			m.setFocus(focusComposer)
		}
	default:
		m.setFocus(focusComposer)
	}
	return m
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	m.composer.Blur()
	m.sidebar.Blur()
	m.welcome.Blur()

	switch f {
	case focusComposer:
		m.composer.Focus()
	case focusSidebar:
		m.sidebar.Focus()
	case focusChips:
		m.welcome.Focus()
	}
}

// =============================================================================
// SEND FLOW
// =============================================================================

// submit handles the primary action from the composer. Pressing it while
// recording stops the recording instead of sending.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.composer.PrimaryAction() == ActionStop {
		return m.toggleRecording()
	}

	if slash := parseSlashCommand(m.composer.Value()); slash != nil {
		m.composer.SetValue("")
		return m.runSlashCommand(slash)
	}

	if m.readOnly {
		m.notice = "Sign in to chat."
		return m, nil
	}
	// Sends are blocked while a prior send is still in flight.
	if m.inFlight {
		return m, nil
	}

	draft := m.composer.TakeDraft()
	if draft.IsEmpty() {
		return m, nil
	}
	return m.send(draft)
}

// send appends the optimistic user message and dispatches the request.
func (m Model) send(draft Draft) (tea.Model, tea.Cmd) {
	display := draft.Text
	if display == "" {
		if len(draft.Files) > 0 {
			display = fileOnlyPrompt
		} else {
			display = voiceOnlyLabel
		}
	}

	userMsg := m.session.AppendUser(display)
	if len(draft.Files) > 0 {
		userMsg.ImagePath = draft.Files[0].Path
	}
	if draft.Voice != nil {
		userMsg.AudioPath = draft.Voice.Path
	}

	req := api.SendRequest{
		Message:   draft.Text,
		SessionID: m.session.ActiveChatID,
	}
	// File-only sends carry the fixed prompt so the vision chain has a
	// question to answer. Voice-only sends leave the text empty; the
	// backend transcribes.
	if draft.Text == "" && len(draft.Files) > 0 {
		req.Message = fileOnlyPrompt
	}
	if len(draft.Files) > 0 {
		f := draft.Files[0]
		req.File = &api.FileUpload{Name: f.Name, MIME: f.MIME, Data: f.Data}
	}
	if draft.Voice != nil {
		req.Voice = draft.Voice.Data
	}

	m.inFlight = true
	m.notice = ""
	m.statusBar.Status = components.StatusSending
	m.statusBar.Attachments = 0
	return m, tea.Batch(m.spinner.Start(), m.sendCmd(req))
}

// handleReply resolves one send. The in-flight gate always releases,
// success or failure.
func (m Model) handleReply(msg ReplyMsg) (tea.Model, tea.Cmd) {
	m.inFlight = false
	m.spinner.Stop()
	m.statusBar.Status = components.StatusReady

	if msg.Err != nil {
		m.session.AppendError(api.UserMessage(msg.Err))
		m.statusBar.Status = components.StatusError
		return m, nil
	}

	reply := m.session.AppendAssistant(msg.Resp.Content)
	reply.Language = msg.Resp.Language
	if !msg.Resp.Timestamp.IsZero() {
		reply.Timestamp = msg.Resp.Timestamp
	}

	// A new server-side session: adopt the id and refresh the chat list,
	// once.
	if m.session.AdoptChatID(msg.Resp.SessionID) {
		return m, m.loadChatsCmd()
	}
	return m, nil
}

// =============================================================================
// HISTORY
// =============================================================================

// handleChatsLoaded applies the chat list. Failures are background noise:
// logged, never surfaced.
func (m Model) handleChatsLoaded(msg ChatsLoadedMsg) Model {
	if msg.Err != nil {
		m.logger.Warn("chat list refresh failed", "err", msg.Err)
		return m
	}
	m.sidebar.SetChats(msg.Chats)
	return m
}

// selectChat fetches a chat's transcript under a fresh request
// generation, so a slow response for a superseded selection cannot
// overwrite a newer one.
func (m Model) selectChat(chatID string) (tea.Model, tea.Cmd) {
	m.chatGen++
	m.loadingChat = true
	return m, m.loadTranscriptCmd(chatID, m.chatGen)
}

// handleTranscript replaces the transcript on success. A failure leaves
// the previously displayed messages untouched.
func (m Model) handleTranscript(msg TranscriptMsg) Model {
	if msg.Gen != m.chatGen {
		return m // stale response for a superseded selection
	}
	m.loadingChat = false

	if msg.Err != nil {
		m.notice = api.UserMessage(msg.Err)
		return m
	}
	m.session.ReplaceAll(msg.Messages)
	m.session.ActiveChatID = msg.ChatID
	for _, c := range m.sidebar.Chats() {
		if c.ID == msg.ChatID {
			m.statusBar.ChatTitle = c.DisplayTitle()
			break
		}
	}
	return m
}

// newChat clears the session and cancels any active playback.
func (m Model) newChat() Model {
	m.session.Reset()
	m.player.Stop()
	m.notice = ""
	m.statusBar.Status = components.StatusReady
	m.statusBar.ChatTitle = ""
	return m
}

// =============================================================================
// MANUALS
// =============================================================================

// generateManual requests a manual for a named tool or the first pending
// photo.
func (m Model) generateManual(toolName string) (tea.Model, tea.Cmd) {
	if m.inFlight {
		return m, nil
	}

	req := api.ManualRequest{
		ToolName: toolName,
		Language: m.language,
	}
	if toolName == "" && m.attach.Count() > 0 {
		f := m.attach.Files()[0]
		req.File = &api.FileUpload{Name: f.Name, MIME: f.MIME, Data: f.Data}
	}

	m.inFlight = true
	m.statusBar.Status = components.StatusSending
	return m, tea.Batch(m.spinner.Start(), m.manualCmd(req))
}

func (m Model) handleManual(msg ManualMsg) Model {
	m.inFlight = false
	m.spinner.Stop()
	m.statusBar.Status = components.StatusReady

	if msg.Err != nil {
		m.session.AppendError(api.UserMessage(msg.Err))
		m.statusBar.Status = components.StatusError
		return m
	}
	m.session.AppendAssistant(formatManual(msg.Manual))
	return m
}

func (m Model) handleSafetyGuide(msg SafetyGuideMsg) Model {
	m.inFlight = false
	m.spinner.Stop()
	m.statusBar.Status = components.StatusReady

	if msg.Err != nil {
		m.session.AppendError(api.UserMessage(msg.Err))
		m.statusBar.Status = components.StatusError
		return m
	}
	m.session.AppendAssistant(formatSafetyGuide(msg.Guide))
	return m
}

func formatManual(manual *api.Manual) string {
	out := "# " + manual.ToolName + "\n\n"
	if manual.Summary != "" {
		out += manual.Summary + "\n\n"
	}
	return out + manual.Manual
}

func formatSafetyGuide(guide *api.SafetyGuide) string {
	return "# Safety: " + guide.ToolName + "\n\n" + guide.SafetyGuide
}

// =============================================================================
// RECORDING
// =============================================================================

// toggleRecording starts or stops the microphone.
func (m Model) toggleRecording() (tea.Model, tea.Cmd) {
	if m.recorder.State() == recorder.Recording {
		return m, m.stopRecordingCmd()
	}
	return m, m.startRecordingCmd()
}

// handleRecordingStarted surfaces permission failures as an immediate
// alert without touching chat state.
func (m Model) handleRecordingStarted(msg RecordingStartedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, recorder.ErrPermission) {
			m.notice = api.MsgMicDenied
		} else {
			m.notice = api.UserMessage(msg.Err)
		}
		return m, nil
	}
	m.composer.SetRecording(true)
	m.statusBar.Status = components.StatusRecording
	return m, tea.Batch(m.recInd.Start(), recordTickCmd())
}

func (m Model) handleRecordingStopped(msg RecordingStoppedMsg) Model {
	m.composer.SetRecording(false)
	m.recInd.Stop()
	m.statusBar.Status = components.StatusReady

	if msg.Err != nil {
		m.notice = "Recording failed. Please try again."
		return m
	}
	m.composer.SetVoice(msg.Clip)
	return m
}

// =============================================================================
// PLAYBACK
// =============================================================================

// playLastAssistant toggles spoken audio for the newest real assistant
// message.
func (m Model) playLastAssistant() (tea.Model, tea.Cmd) {
	msgs := m.session.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		msg := msgs[i]
		if msg.Role == model.RoleAssistant && !msg.IsError {
			lang := msg.Language
			if lang == "" {
				lang = m.language
			}
			m.statusBar.Status = components.StatusPlaying
			return m, m.togglePlaybackCmd(msg.ID, msg.Content, lang)
		}
	}
	return m, nil
}

// handlePlaybackToggled surfaces playback failures as a status notice,
// keeping the transcript to real conversation turns.
func (m Model) handlePlaybackToggled(msg PlaybackToggledMsg) Model {
	if msg.Err != nil {
		m.notice = api.UserMessage(msg.Err)
		m.statusBar.Status = components.StatusReady
		return m
	}
	if !msg.Started {
		m.statusBar.Status = components.StatusReady
	}
	return m
}

// =============================================================================
// ATTACHMENTS
// =============================================================================

func (m Model) handleAttachmentAdded(msg AttachmentAddedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.notice = "Could not read file: " + msg.Err.Error()
		return m, nil
	}
	m.statusBar.Attachments = m.attach.Count()
	if msg.File.IsImage() {
		return m, previewCmd(msg.File)
	}
	return m, nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func (m Model) runSlashCommand(cmd *slashCommand) (tea.Model, tea.Cmd) {
	switch cmd.name {
	case "new":
		return m.newChat(), nil
	case "chats":
		if m.readOnly {
			m.notice = "Sign in to see chat history."
			return m, nil
		}
		return m, m.loadChatsCmd()
	case "manual":
		return m.generateManual(cmd.arg)
	case "safety":
		if m.inFlight {
			return m, nil
		}
		m.inFlight = true
		m.statusBar.Status = components.StatusSending
		req := api.ManualRequest{ToolName: cmd.arg, Language: m.language}
		return m, tea.Batch(m.spinner.Start(), m.safetyGuideCmd(req))
	case "attach":
		if cmd.arg == "" {
			m.notice = "Usage: /attach <path>"
			return m, nil
		}
		return m, m.addAttachmentCmd(cmd.arg)
	case "lang":
		for _, l := range config.SupportedLanguages {
			if l == cmd.arg {
				m.language = cmd.arg
				m.statusBar.Language = cmd.arg
				m.notice = "Language set to " + config.LanguageName(cmd.arg) + "."
				return m, nil
			}
		}
		m.notice = "Unsupported language: " + cmd.arg
		return m, nil
	}
	return m, nil
}

// keyMatches is a readability alias for key.Matches.
func keyMatches(msg tea.KeyMsg, b key.Binding) bool {
	return key.Matches(msg, b)
}
