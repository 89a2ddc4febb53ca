package ui

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/sokolawesome/mediasession/internal/config"
	"github.com/sokolawesome/mediasession/internal/media"
	"github.com/sokolawesome/mediasession/internal/player"
	"github.com/sokolawesome/mediasession/internal/scanner"
)

const (
	seekStep    = 5.0
	maxLogLines = 200
	logHeight   = 6
)

var (
	selectedItemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	playingItemStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	nowPlayingStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	logPaneStyle      = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderTop(true).BorderForeground(lipgloss.Color("238"))
)

// Player is the part of the mpv player the UI drives directly.
type Player interface {
	Play(path string) error
	TogglePause() error
	Stop() error
	Seek(seconds float64) error
}

// Session receives the modes that only the UI implements.
type Session interface {
	SetShuffle(shuffle bool) error
	SetRepeat(mode media.RepeatMode) error
}

// StateMsg carries a player state update.
type StateMsg player.State

// EventMsg carries a remote request the bridge forwarded to the UI.
type EventMsg media.Event

type logMsg string

type Model struct {
	songs   []scanner.MusicFile
	cursor  int
	current int

	player  Player
	session Session
	log     logrus.FieldLogger

	states  <-chan player.State
	logChan <-chan string

	state          player.State
	shuffle        bool
	repeatPlaylist bool

	keys     keyMap
	help     help.Model
	progress progress.Model
	logs     viewport.Model
	logLines []string
	width    int
	height   int

	// droppedLogs reports log lines lost before reaching the pane.
	droppedLogs func() int64
}

func NewModel(songs []scanner.MusicFile, p Player, s Session, hotkeys config.Hotkeys,
	states <-chan player.State, logChan <-chan string, log logrus.FieldLogger,
) (*Model, error) {
	if len(songs) == 0 {
		return nil, fmt.Errorf("no music files found")
	}

	return &Model{
		songs:    songs,
		current:  -1,
		player:   p,
		session:  s,
		log:      log,
		states:   states,
		logChan:  logChan,
		keys:     newKeyMap(hotkeys),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		logs:     viewport.New(80, logHeight),
	}, nil
}

// ShowDroppedLogs makes the log pane report lines the log writer discarded.
func (model *Model) ShowDroppedLogs(dropped func() int64) {
	model.droppedLogs = dropped
}

func (model *Model) Init() tea.Cmd {
	return tea.Batch(waitForState(model.states), waitForLog(model.logChan))
}

func waitForState(states <-chan player.State) tea.Cmd {
	if states == nil {
		return nil
	}
	return func() tea.Msg {
		state, ok := <-states
		if !ok {
			return nil
		}
		return StateMsg(state)
	}
}

func waitForLog(logChan <-chan string) tea.Cmd {
	if logChan == nil {
		return nil
	}
	return func() tea.Msg {
		line, ok := <-logChan
		if !ok {
			return nil
		}
		return logMsg(line)
	}
}

func (model *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		previous := model.state
		model.state = player.State(msg)
		if model.state.Ended && !previous.Ended {
			model.advance(1, false)
		}
		return model, waitForState(model.states)

	case EventMsg:
		return model, model.handleEvent(media.Event(msg))

	case logMsg:
		model.logLines = append(model.logLines, string(msg))
		if len(model.logLines) > maxLogLines {
			model.logLines = model.logLines[len(model.logLines)-maxLogLines:]
		}
		model.logs.SetContent(strings.Join(model.logLines, "\n"))
		model.logs.GotoBottom()
		return model, waitForLog(model.logChan)

	case tea.WindowSizeMsg:
		model.width, model.height = msg.Width, msg.Height
		model.logs.Width = msg.Width
		model.progress.Width = max(msg.Width-20, 10)
		model.help.Width = msg.Width

	case tea.KeyMsg:
		return model, model.handleKey(msg)
	}

	return model, nil
}

func (model *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	var err error
	switch {
	case key.Matches(msg, model.keys.Quit):
		return tea.Quit
	case key.Matches(msg, model.keys.Up):
		model.cursor--
		if model.cursor < 0 {
			model.cursor = len(model.songs) - 1
		}
	case key.Matches(msg, model.keys.Down):
		model.cursor++
		if model.cursor >= len(model.songs) {
			model.cursor = 0
		}
	case key.Matches(msg, model.keys.Select):
		model.playIndex(model.cursor)
	case key.Matches(msg, model.keys.PlayPause):
		if model.current < 0 {
			model.playIndex(model.cursor)
			return nil
		}
		err = model.player.TogglePause()
	case key.Matches(msg, model.keys.Next):
		model.advance(1, true)
	case key.Matches(msg, model.keys.Previous):
		model.advance(-1, true)
	case key.Matches(msg, model.keys.Stop):
		model.current = -1
		err = model.player.Stop()
	case key.Matches(msg, model.keys.SeekForward):
		err = model.player.Seek(seekStep)
	case key.Matches(msg, model.keys.SeekBackward):
		err = model.player.Seek(-seekStep)
	}
	if err != nil {
		model.log.WithError(err).Warn("player command failed")
	}
	return nil
}

// handleEvent serves the remote requests the player could not.
func (model *Model) handleEvent(e media.Event) tea.Cmd {
	switch e.Kind {
	case media.EventNext:
		model.advance(1, true)
	case media.EventPrevious:
		model.advance(-1, true)
	case media.EventQuit:
		return tea.Quit
	case media.EventSetShuffle:
		model.shuffle = e.Shuffle
		if err := model.session.SetShuffle(e.Shuffle); err != nil {
			model.log.WithError(err).Warn("could not publish shuffle")
		}
	case media.EventSetRepeat:
		model.repeatPlaylist = e.Repeat == media.RepeatPlaylist
		if err := model.session.SetRepeat(e.Repeat); err != nil {
			model.log.WithError(err).Warn("could not publish repeat mode")
		}
	default:
		model.log.WithField("event", e.String()).Debug("remote request ignored")
	}
	return nil
}

// advance moves through the track list. Explicit requests wrap around; the
// end of a track only wraps when playlist repeat is on.
func (model *Model) advance(step int, explicit bool) {
	if len(model.songs) == 0 {
		return
	}
	if model.shuffle {
		model.playIndex(rand.IntN(len(model.songs)))
		return
	}

	from := model.current
	if from < 0 {
		from = model.cursor
		if step > 0 {
			step = 0
		}
	}
	next := from + step
	if next < 0 || next >= len(model.songs) {
		if !explicit && !model.repeatPlaylist {
			model.current = -1
			return
		}
		next = (next + len(model.songs)) % len(model.songs)
	}
	model.playIndex(next)
}

func (model *Model) playIndex(i int) {
	model.current = i
	model.cursor = i
	if err := model.player.Play(model.songs[i].Path); err != nil {
		model.log.WithError(err).WithField("path", model.songs[i].Path).Warn("could not play file")
	}
}

func (model *Model) View() string {
	var builder strings.Builder

	builder.WriteString(model.nowPlaying())
	builder.WriteString("\n\n")

	start, end := model.visibleRange()
	for i := start; i < end; i++ {
		song := model.songs[i].Title()
		switch {
		case i == model.cursor:
			builder.WriteString(selectedItemStyle.Render("> " + song))
		case i == model.current:
			builder.WriteString(playingItemStyle.Render("♪ " + song))
		default:
			builder.WriteString("  " + song)
		}
		builder.WriteString("\n")
	}

	builder.WriteString(logPaneStyle.Render(model.logs.View()))
	builder.WriteString("\n")
	if model.droppedLogs != nil {
		if n := model.droppedLogs(); n > 0 {
			builder.WriteString(dimStyle.Render(fmt.Sprintf("%d log lines dropped", n)))
			builder.WriteString("\n")
		}
	}
	builder.WriteString(model.help.View(model.keys))
	return builder.String()
}

func (model *Model) nowPlaying() string {
	if model.current < 0 || model.state.Idle {
		return dimStyle.Render("Nothing playing")
	}

	title := model.state.Title
	if title == "" {
		title = model.songs[model.current].Title()
	}
	if model.state.Artist != "" {
		title = model.state.Artist + " - " + title
	}

	icon := "▶"
	if !model.state.IsPlaying {
		icon = "⏸"
	}

	percent := 0.0
	if model.state.Duration > 0 {
		percent = model.state.Position / model.state.Duration
	}
	return fmt.Sprintf("%s %s\n%s %s / %s", icon, nowPlayingStyle.Render(title),
		model.progress.ViewAs(percent), clock(model.state.Position), clock(model.state.Duration))
}

// visibleRange keeps the cursor on screen below the header and above the
// log pane and help.
func (model *Model) visibleRange() (int, int) {
	rows := len(model.songs)
	if model.height > 0 {
		rows = max(model.height-logHeight-7, 1)
	}
	start := 0
	if model.cursor >= rows {
		start = model.cursor - rows + 1
	}
	return start, min(start+rows, len(model.songs))
}

func clock(seconds float64) string {
	d := time.Duration(seconds) * time.Second
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
