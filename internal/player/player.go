package player

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type State struct {
	Path      string
	Title     string
	Artist    string
	Album     string
	IsPlaying bool
	Idle      bool
	// Ended is set when the last file played to its end and cleared when
	// the next one starts.
	Ended    bool
	Volume   int
	Position float64
	Duration float64
	Speed    float64
	LoopFile bool
	Error    string
}

// Player drives an mpv process over its JSON IPC socket. One connection is
// kept open for both commands and property change events.
type Player struct {
	cmd        *exec.Cmd
	socketPath string
	log        logrus.FieldLogger

	writeMu sync.Mutex
	conn    net.Conn

	mu          sync.RWMutex
	state       State
	subscribers []chan State

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

type mpvEvent struct {
	Event  string `json:"event"`
	Name   string `json:"name"`
	Data   any    `json:"data"`
	Reason string `json:"reason"`
	// Error is set on command replies, which share the socket with events.
	Error string `json:"error"`
}

func newPlayer(socketPath string, volume int, log logrus.FieldLogger) *Player {
	ctx, cancel := context.WithCancel(context.Background())
	return &Player{
		socketPath:  socketPath,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
		state:       State{Volume: volume, Speed: 1, Idle: true},
		subscribers: make([]chan State, 0),
		done:        make(chan struct{}),
	}
}

// New starts mpv in idle mode listening on socketPath.
func New(socketPath string, volume int, log logrus.FieldLogger) (*Player, error) {
	p := newPlayer(socketPath, volume, log)

	if err := p.start(); err != nil {
		p.cancel()
		return nil, fmt.Errorf("start player: %w", err)
	}

	return p, nil
}

func (p *Player) start() error {
	if err := p.cleanupSocket(); err != nil {
		return fmt.Errorf("cleanup socket: %w", err)
	}

	p.cmd = exec.CommandContext(p.ctx, "mpv",
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--input-ipc-server="+p.socketPath,
		"--volume="+fmt.Sprintf("%d", p.state.Volume),
	)

	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	conn, err := p.waitForSocket()
	if err != nil {
		p.cleanup()
		return fmt.Errorf("wait for socket: %w", err)
	}
	p.conn = conn

	go p.eventLoop(conn)

	if err := p.observeProperties(); err != nil {
		p.cleanup()
		return fmt.Errorf("observe properties: %w", err)
	}

	return nil
}

func (p *Player) cleanupSocket() error {
	if err := os.Remove(p.socketPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (p *Player) waitForSocket() (net.Conn, error) {
	timeout := time.After(5 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			return nil, fmt.Errorf("socket timeout")
		case <-ticker.C:
			if conn, err := net.Dial("unix", p.socketPath); err == nil {
				return conn, nil
			}
		case <-p.ctx.Done():
			return nil, p.ctx.Err()
		}
	}
}

func (p *Player) observeProperties() error {
	for id, prop := range observedProperties {
		if err := p.sendCommand([]any{"observe_property", id + 1, prop}); err != nil {
			return fmt.Errorf("observe %s: %w", prop, err)
		}
	}
	return nil
}

func (p *Player) Subscribe() <-chan State {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan State, 10)
	p.subscribers = append(p.subscribers, ch)
	return ch
}

func (p *Player) GetState() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Player) Play(path string) error {
	return p.sendCommand([]any{"loadfile", path, "replace"})
}

func (p *Player) TogglePause() error {
	return p.sendCommand([]any{"cycle", "pause"})
}

func (p *Player) SetPause(paused bool) error {
	return p.sendCommand([]any{"set_property", "pause", paused})
}

func (p *Player) Stop() error {
	return p.sendCommand([]any{"stop"})
}

func (p *Player) SetVolume(volume int) error {
	if volume < 0 || volume > 100 {
		return fmt.Errorf("volume must be 0-100")
	}
	return p.sendCommand([]any{"set_property", "volume", volume})
}

// Seek moves relative to the current position.
func (p *Player) Seek(seconds float64) error {
	return p.sendCommand([]any{"seek", seconds})
}

// SeekTo jumps to an absolute position.
func (p *Player) SeekTo(seconds float64) error {
	return p.sendCommand([]any{"seek", seconds, "absolute"})
}

func (p *Player) SetSpeed(speed float64) error {
	if speed <= 0 {
		return fmt.Errorf("speed must be positive")
	}
	return p.sendCommand([]any{"set_property", "speed", speed})
}

func (p *Player) SetLoopFile(loop bool) error {
	value := "no"
	if loop {
		value = "inf"
	}
	return p.sendCommand([]any{"set_property", "loop-file", value})
}

func (p *Player) sendCommand(command []any) error {
	if p.conn == nil {
		return fmt.Errorf("player not connected")
	}

	cmd := map[string]any{"command": command}
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if _, err := p.conn.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write command: %w", err)
	}

	return nil
}

func (p *Player) cleanup() {
	if p.conn != nil {
		p.conn.Close()
	}
	if p.cmd != nil && p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
}

func (p *Player) Shutdown() error {
	if err := p.sendCommand([]any{"quit"}); err != nil {
		p.log.WithError(err).Debug("mpv quit command failed")
	}

	var waitErr error
	if p.cmd != nil {
		done := make(chan error, 1)
		go func() { done <- p.cmd.Wait() }()
		select {
		case waitErr = <-done:
		case <-time.After(3 * time.Second):
			p.cancel()
			waitErr = <-done
		}
	}
	p.cancel()

	if p.conn != nil {
		p.conn.Close()
		<-p.done
	}

	if err := p.cleanupSocket(); err != nil {
		return fmt.Errorf("cleanup socket: %w", err)
	}
	if waitErr != nil {
		return fmt.Errorf("wait for mpv: %w", waitErr)
	}
	return nil
}
