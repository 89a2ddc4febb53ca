package player

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// observedProperties are registered with observe_property; the id of each is
// its index plus one.
var observedProperties = []string{
	"pause",
	"media-title",
	"metadata",
	"path",
	"volume",
	"time-pos",
	"duration",
	"speed",
	"loop-file",
	"idle-active",
}

func (p *Player) eventLoop(r io.Reader) {
	defer close(p.done)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-p.ctx.Done():
			return
		default:
			p.handleEvent(scanner.Text())
		}
	}
}

func (p *Player) handleEvent(line string) {
	var event mpvEvent
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		p.log.WithError(err).Debug("undecodable mpv message")
		return
	}

	if event.Event == "" {
		if event.Error != "" && event.Error != "success" {
			p.log.WithField("error", event.Error).Warn("mpv rejected a command")
		}
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch event.Event {
	case "property-change":
		p.updateProperty(event.Name, event.Data)
	case "start-file":
		p.state.Ended = false
		p.state.Error = ""
	case "playback-restart":
		p.state.IsPlaying = true
		p.state.Error = ""
	case "end-file":
		p.state.IsPlaying = false
		p.state.Position = 0
		switch event.Reason {
		case "eof":
			p.state.Ended = true
		case "error":
			p.state.Error = "playback failed"
		}
	default:
		return
	}

	p.notifySubscribers()
}

func (p *Player) updateProperty(name string, value any) {
	switch name {
	case "pause":
		if paused, ok := value.(bool); ok {
			p.state.IsPlaying = !paused
		}
	case "media-title":
		if title, ok := value.(string); ok {
			p.state.Title = title
		}
	case "metadata":
		tags, _ := value.(map[string]any)
		p.state.Artist = tag(tags, "artist")
		p.state.Album = tag(tags, "album")
	case "path":
		path, _ := value.(string)
		p.state.Path = path
	case "volume":
		if vol, ok := value.(float64); ok {
			p.state.Volume = int(vol)
		}
	case "time-pos":
		pos, _ := value.(float64)
		p.state.Position = pos
	case "duration":
		dur, _ := value.(float64)
		p.state.Duration = dur
	case "speed":
		if speed, ok := value.(float64); ok {
			p.state.Speed = speed
		}
	case "loop-file":
		switch loop := value.(type) {
		case bool:
			p.state.LoopFile = loop
		case string:
			p.state.LoopFile = loop != "no"
		case float64:
			p.state.LoopFile = loop > 0
		}
	case "idle-active":
		if idle, ok := value.(bool); ok {
			p.state.Idle = idle
			if idle {
				p.state.IsPlaying = false
			}
		}
	}
}

// tag looks up a metadata tag; mpv keeps the case used by the file.
func tag(tags map[string]any, name string) string {
	for key, value := range tags {
		if strings.EqualFold(key, name) {
			s, _ := value.(string)
			return s
		}
	}
	return ""
}

func (p *Player) notifySubscribers() {
	state := p.state
	for _, ch := range p.subscribers {
		select {
		case ch <- state:
		default:
		}
	}
}
