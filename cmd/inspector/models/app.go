// Package models implements the inspector's bubbletea model: a live view
// of one real client connection to the voxel server, adapted from the
// debug tool's single-App-model-with-view-switching shape.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/VoidMesh/voxelserver/cmd/inspector/components"
	"github.com/VoidMesh/voxelserver/cmd/inspector/netclient"
)

// App is the inspector's root model: connection state plus received-frame
// counters, refreshed by netclient events delivered over a channel.
type App struct {
	client  *netclient.Client
	events  <-chan netclient.Event
	spinner spinner.Model

	width, height int

	connected     bool
	clientID      uint32
	lastChunk     [2]int32
	chunksSeen    int
	keepalives    int
	bytesReceived int
	lastErr       string
	log           []string
}

// eventMsg wraps one netclient.Event as a tea.Msg.
type eventMsg netclient.Event

// New builds the inspector App connected to addr.
func New(addr string) (*App, error) {
	c, events, err := netclient.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("inspector: %w", err)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = components.OkStyle

	return &App{client: c, events: events, spinner: sp}, nil
}

func (m *App) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

func (m *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return eventMsg{Kind: netclient.EventClosed}
		}
		return eventMsg(ev)
	}
}

func (m *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.client.Close()
			return m, tea.Quit
		}
		return m, nil

	case eventMsg:
		m.apply(netclient.Event(msg))
		if msg.Kind == netclient.EventClosed {
			return m, nil
		}
		return m, m.waitForEvent()

	case spinner.TickMsg:
		if m.connected {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *App) apply(ev netclient.Event) {
	m.bytesReceived += ev.Bytes
	switch ev.Kind {
	case netclient.EventInit:
		m.connected = true
		m.clientID = ev.ClientID
	case netclient.EventChunk:
		m.chunksSeen++
		m.lastChunk = [2]int32{ev.CX, ev.CZ}
	case netclient.EventKeepalive:
		m.keepalives++
	case netclient.EventError:
		m.lastErr = ev.Err.Error()
	case netclient.EventClosed:
		m.connected = false
	}

	line := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), ev.String())
	m.log = append(m.log, line)
	if len(m.log) > 12 {
		m.log = m.log[len(m.log)-12:]
	}
}

func (m *App) View() string {
	var b strings.Builder

	b.WriteString(components.TitleStyle.Render("voxelserver inspector") + "\n\n")

	status := fmt.Sprintf("%s waiting for handshake...", m.spinner.View())
	if m.connected {
		status = components.OkStyle.Render(fmt.Sprintf("connected as client %d", m.clientID))
	}
	b.WriteString(status + "\n\n")

	stats := fmt.Sprintf(
		"chunks received: %d\nlast chunk: (%d, %d)\nkeepalives: %d\nbytes received: %d",
		m.chunksSeen, m.lastChunk[0], m.lastChunk[1], m.keepalives, m.bytesReceived,
	)
	b.WriteString(components.BorderStyle.Render(stats) + "\n\n")

	if m.lastErr != "" {
		b.WriteString(components.WarnStyle.Render("last error: "+m.lastErr) + "\n\n")
	}

	b.WriteString(components.BorderStyle.Render(strings.Join(m.log, "\n")) + "\n\n")

	b.WriteString(components.StatusBarStyle.Width(m.width).Render("press q to quit"))
	return b.String()
}
