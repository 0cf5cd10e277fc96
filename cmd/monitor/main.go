// Command monitor is the terminal dashboard over the queue fabric: queue
// depths, worker heartbeats and the tail of the shared logging queue.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/redis/go-redis/v9"

	"github.com/lab/denoiser/internal/config"
	"github.com/lab/denoiser/internal/logging"
	"github.com/lab/denoiser/internal/queue"
	"github.com/lab/denoiser/internal/worker"
)

const (
	refreshInterval = 2 * time.Second
	logTailSize     = 200
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	workerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
)

type snapshot struct {
	commands int64
	finished int64
	workers  []worker.Heartbeat
	logLines []string
	err      error
}

type tickMsg time.Time

type model struct {
	rdb  *redis.Client
	view viewport.Model

	snap     snapshot
	logLines []string
	ready    bool
}

func main() {
	configPath := flag.String("config", "conf.yaml", "configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "monitor:", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr(), DB: cfg.RedisDB()})
	defer rdb.Close()

	program := tea.NewProgram(model{rdb: rdb}, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "monitor:", err)
		os.Exit(1)
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.refresh, tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refresh gathers one snapshot of the fabric.
func (m model) refresh() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), refreshInterval)
	defer cancel()

	snap := snapshot{}

	var err error
	if snap.commands, err = queue.NewManager(m.rdb, queue.CommandQueue).Len(ctx); err != nil {
		snap.err = err
		return snap
	}
	if snap.finished, err = queue.NewManager(m.rdb, queue.FinishedQueue).Len(ctx); err != nil {
		snap.err = err
		return snap
	}

	entries, err := m.rdb.HGetAll(ctx, worker.HeartbeatHash).Result()
	if err != nil {
		snap.err = err
		return snap
	}
	for _, payload := range entries {
		var beat worker.Heartbeat
		if err := json.Unmarshal([]byte(payload), &beat); err == nil {
			snap.workers = append(snap.workers, beat)
		}
	}
	sort.Slice(snap.workers, func(i, j int) bool { return snap.workers[i].UID < snap.workers[j].UID })

	logQueue := queue.NewManager(m.rdb, logging.LogQueue)
	for {
		payload, err := logQueue.Pop(ctx)
		if err != nil {
			break
		}
		var record logging.Record
		if err := json.Unmarshal(payload, &record); err != nil {
			continue
		}
		line := fmt.Sprintf("%-5s [%s] %s", record.Level, record.UID, ansi.Strip(record.Message))
		snap.logLines = append(snap.logLines, line)
	}

	return snap
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		headerHeight := 8
		if !m.ready {
			m.view = viewport.New(msg.Width, msg.Height-headerHeight)
			m.ready = true
		} else {
			m.view.Width = msg.Width
			m.view.Height = msg.Height - headerHeight
		}

	case tickMsg:
		return m, tea.Batch(m.refresh, tick())

	case snapshot:
		m.snap = msg
		if len(msg.logLines) > 0 {
			m.logLines = append(m.logLines, msg.logLines...)
			if len(m.logLines) > logTailSize {
				m.logLines = m.logLines[len(m.logLines)-logTailSize:]
			}
			m.view.SetContent(joinLines(m.logLines))
			m.view.GotoBottom()
		}
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if !m.ready {
		return "starting..."
	}

	var b []string
	b = append(b, titleStyle.Render("denoiser pipeline"))

	if m.snap.err != nil {
		b = append(b, errorStyle.Render("redis: "+m.snap.err.Error()))
	} else {
		b = append(b, fmt.Sprintf("%s %s   %s %s",
			labelStyle.Render("commands:"), valueStyle.Render(fmt.Sprint(m.snap.commands)),
			labelStyle.Render("finished:"), valueStyle.Render(fmt.Sprint(m.snap.finished)),
		))

		if len(m.snap.workers) == 0 {
			b = append(b, labelStyle.Render("no workers alive"))
		}
		for _, beat := range m.snap.workers {
			b = append(b, workerStyle.Render(fmt.Sprintf(
				"%s  cpu %5.1f%%  mem %5.1f%%  jobs %d",
				beat.UID, beat.CPUPercent, beat.MemPercent, beat.JobsDone,
			)))
		}
	}

	b = append(b, labelStyle.Render("— logs ——————————————————————————— q to quit"))
	b = append(b, m.view.View())
	return joinLines(b)
}

func joinLines(lines []string) string {
	out := ""
	for i, line := range lines {
		if i > 0 {
			out += "\n"
		}
		out += line
	}
	return out
}
