package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/sokolawesome/mediasession/internal/config"
)

type keyMap struct {
	Up           key.Binding
	Down         key.Binding
	Select       key.Binding
	PlayPause    key.Binding
	Next         key.Binding
	Previous     key.Binding
	Stop         key.Binding
	SeekForward  key.Binding
	SeekBackward key.Binding
	Quit         key.Binding
}

func newKeyMap(h config.Hotkeys) keyMap {
	return keyMap{
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		PlayPause:    binding(h.PlayPause, "play/pause"),
		Next:         binding(h.Next, "next"),
		Previous:     binding(h.Previous, "previous"),
		Stop:         binding(h.Stop, "stop"),
		SeekForward:  binding(h.SeekForward, "+5s"),
		SeekBackward: binding(h.SeekBackward, "-5s"),
		Quit:         key.NewBinding(key.WithKeys(keyName(h.Quit), "ctrl+c"), key.WithHelp(h.Quit, "quit")),
	}
}

func binding(k, help string) key.Binding {
	return key.NewBinding(key.WithKeys(keyName(k)), key.WithHelp(k, help))
}

// keyName maps config names to bubbletea key strings.
func keyName(k string) string {
	if k == "space" {
		return " "
	}
	return k
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.PlayPause, k.Next, k.Previous, k.Stop, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.PlayPause, k.Stop, k.Next, k.Previous},
		{k.SeekForward, k.SeekBackward, k.Quit},
	}
}
