package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"slibuy-scraper/models"
	"slibuy-scraper/services"
	"slibuy-scraper/utils"
)

// Backend is everything the TUI needs from the store and the scraper.
// Methods returning a cache return the whole merged cache after the
// change has been persisted.
type Backend interface {
	Load(ctx context.Context) (map[string]*models.Listing, *utils.KeySet, models.Settings, error)
	SaveSettings(ctx context.Context, s models.Settings) error
	ToggleWatch(ctx context.Context, id string) (bool, error)
	Refresh(ctx context.Context, l *models.Listing) (map[string]*models.Listing, error)
	Rescrape(ctx context.Context) (map[string]*models.Listing, error)
}

// --- Messages ---

type loadedMsg struct {
	cache    map[string]*models.Listing
	watch    *utils.KeySet
	settings models.Settings
	err      error
}

type cacheMsg struct {
	cache map[string]*models.Listing
	what  string
	err   error
}

type watchMsg struct {
	id  string
	on  bool
	err error
}

type errMsg struct{ err error }

type panelMode int

const (
	panelNone panelMode = iota
	panelBulk
	panelImage
)

// --- Model ---

type Model struct {
	ctx     context.Context
	backend Backend
	now     func() time.Time

	cache    map[string]*models.Listing
	watch    *utils.KeySet
	settings models.Settings
	views    []*services.View

	cursor    int
	offset    int
	query     string
	searching bool
	panel     panelMode
	busy      string
	status    string
	loading   bool
	err       error
	width     int
	height    int
}

func NewModel(ctx context.Context, backend Backend) Model {
	return Model{
		ctx:      ctx,
		backend:  backend,
		now:      time.Now,
		cache:    map[string]*models.Listing{},
		watch:    utils.NewKeySet(),
		settings: models.DefaultSettings(),
		loading:  true,
	}
}

// WithClock replaces time.Now for tests.
func (m Model) WithClock(now func() time.Time) Model {
	m.now = now
	return m
}

func (m Model) Init() tea.Cmd {
	return loadState(m.ctx, m.backend)
}

func loadState(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		cache, watch, settings, err := b.Load(ctx)
		return loadedMsg{cache: cache, watch: watch, settings: settings, err: err}
	}
}

func saveSettings(ctx context.Context, b Backend, s models.Settings) tea.Cmd {
	return func() tea.Msg {
		if err := b.SaveSettings(ctx, s); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func toggleWatch(ctx context.Context, b Backend, id string) tea.Cmd {
	return func() tea.Msg {
		on, err := b.ToggleWatch(ctx, id)
		return watchMsg{id: id, on: on, err: err}
	}
}

func refreshOne(ctx context.Context, b Backend, l *models.Listing) tea.Cmd {
	return func() tea.Msg {
		cache, err := b.Refresh(ctx, l)
		return cacheMsg{cache: cache, what: "refreshed " + l.ID, err: err}
	}
}

func rescrape(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		cache, err := b.Rescrape(ctx)
		return cacheMsg{cache: cache, what: "rescrape finished", err: err}
	}
}

func openURL(url string) tea.Cmd {
	return func() tea.Msg {
		if err := OpenURL(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

// Views returns the rows currently shown.
func (m Model) Views() []*services.View { return m.views }

// Selected returns the row under the cursor, or nil.
func (m Model) Selected() *services.View {
	if m.cursor < 0 || m.cursor >= len(m.views) {
		return nil
	}
	return m.views[m.cursor]
}

// Settings returns the live view settings.
func (m Model) Settings() models.Settings { return m.settings }

func (m *Model) rebuild() {
	var selected string
	if v := m.Selected(); v != nil {
		selected = v.ID
	}
	m.views = services.Build(m.cache, m.settings, m.query, m.watch, m.now())
	m.cursor = 0
	for i, v := range m.views {
		if v.ID == selected {
			m.cursor = i
			break
		}
	}
	m.clamp()
}

func (m *Model) clamp() {
	if m.cursor >= len(m.views) {
		m.cursor = len(m.views) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	rows := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m Model) listHeight() int {
	h := m.height
	if h == 0 {
		h = 24
	}
	h -= 4 // header, blank, status, help
	if m.panel != panelNone {
		h -= 4
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clamp()
		return m, nil

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.cache, m.watch, m.settings = msg.cache, msg.watch, msg.settings
		if m.cache == nil {
			m.cache = map[string]*models.Listing{}
		}
		if m.watch == nil {
			m.watch = utils.NewKeySet()
		}
		m.rebuild()
		return m, nil

	case cacheMsg:
		m.busy = ""
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
		} else {
			m.status = msg.what
		}
		if msg.cache != nil {
			m.cache = msg.cache
		}
		m.rebuild()
		return m, nil

	case watchMsg:
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
			return m, nil
		}
		if msg.on {
			m.watch.Add(msg.id)
			m.status = "watching " + msg.id
		} else {
			m.watch.Remove(msg.id)
			m.status = "unwatched " + msg.id
		}
		m.rebuild()
		return m, nil

	case errMsg:
		m.status = "error: " + msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
	case tea.KeyEsc:
		m.searching = false
		m.query = ""
		m.rebuild()
	case tea.KeyBackspace:
		if r := []rune(m.query); len(r) > 0 {
			m.query = string(r[:len(r)-1])
			m.rebuild()
		}
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeySpace:
		m.query += " "
		m.rebuild()
	case tea.KeyRunes:
		m.query += string(msg.Runes)
		m.rebuild()
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.cursor--
		m.clamp()
	case "down", "j":
		m.cursor++
		m.clamp()
	case "pgup":
		m.cursor -= m.listHeight()
		m.clamp()
	case "pgdown":
		m.cursor += m.listHeight()
		m.clamp()
	case "home", "g":
		m.cursor = 0
		m.clamp()
	case "end", "G":
		m.cursor = len(m.views) - 1
		m.clamp()
	case "/":
		m.searching = true
	case "esc":
		if m.panel != panelNone {
			m.panel = panelNone
		} else if m.query != "" {
			m.query = ""
			m.rebuild()
		}
	case "s":
		key := services.ParseSortKey(m.settings.SortKey).Next()
		m.settings.SortKey = string(key)
		m.settings.SortDesc = services.DefaultDesc(key)
		return m.settingsChanged()
	case "S":
		m.settings.SortDesc = !m.settings.SortDesc
		return m.settingsChanged()
	case "e":
		m.settings.HideEnded = !m.settings.HideEnded
		return m.settingsChanged()
	case "W":
		m.settings.WatchOnly = !m.settings.WatchOnly
		return m.settingsChanged()
	case "t":
		m.settings.TargetsOnly = !m.settings.TargetsOnly
		return m.settingsChanged()
	case "h":
		m.settings.HideBlacklist = !m.settings.HideBlacklist
		return m.settingsChanged()
	case "b":
		m.panel = togglePanel(m.panel, panelBulk)
		m.clamp()
	case "i":
		m.panel = togglePanel(m.panel, panelImage)
		m.clamp()
	case "enter", "o":
		if v := m.Selected(); v != nil && v.Link != "" {
			return m, openURL(v.Link)
		}
	case "w":
		if v := m.Selected(); v != nil {
			return m, toggleWatch(m.ctx, m.backend, v.ID)
		}
	case "r":
		if m.busy != "" {
			return m, nil
		}
		if v := m.Selected(); v != nil {
			m.busy = "refreshing " + v.ID
			return m, refreshOne(m.ctx, m.backend, v.Listing.Clone())
		}
	case "R":
		if m.busy != "" {
			return m, nil
		}
		m.busy = "rescraping all pages"
		return m, rescrape(m.ctx, m.backend)
	}
	return m, nil
}

func (m Model) settingsChanged() (tea.Model, tea.Cmd) {
	m.rebuild()
	return m, saveSettings(m.ctx, m.backend, m.settings)
}

func togglePanel(cur, p panelMode) panelMode {
	if cur == p {
		return panelNone
	}
	return p
}

// --- View ---

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("44")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.\n", m.err)
	}
	if m.loading {
		return "Loading cache...\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(m.header()))
	b.WriteString("\n\n")

	if len(m.views) == 0 {
		b.WriteString(dimStyle.Render("  No listings match. Press R to scrape or e/W/t/h to relax filters."))
		b.WriteString("\n")
	}

	now := m.now()
	end := m.offset + m.listHeight()
	if end > len(m.views) {
		end = len(m.views)
	}
	for i := m.offset; i < end; i++ {
		line := m.row(m.views[i], now)
		if i == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if p := m.panelText(now); p != "" {
		b.WriteString(panelStyle.Render(p))
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("/ search  s/S sort  o open  w watch  r refresh  R rescrape  b bulk  i image  e ended  W watched  t targets  h blacklist  q quit"))
	return b.String()
}

func (m Model) header() string {
	dir := "↑"
	if m.settings.SortDesc {
		dir = "↓"
	}
	var flags []string
	if m.settings.HideEnded {
		flags = append(flags, "hide-ended")
	}
	if m.settings.WatchOnly {
		flags = append(flags, "watched")
	}
	if m.settings.TargetsOnly {
		flags = append(flags, "targets")
	}
	if m.settings.HideBlacklist {
		flags = append(flags, "hide-blacklist")
	}
	if m.settings.Range != models.RangeAll {
		flags = append(flags, string(m.settings.Range))
	}
	h := fmt.Sprintf("SliBuy  %d/%d listings  sort: %s %s", len(m.views), len(m.cache), m.settings.SortKey, dir)
	if len(flags) > 0 {
		h += "  [" + strings.Join(flags, " ") + "]"
	}
	return h
}

func (m Model) row(v *services.View, now time.Time) string {
	width := m.width
	if width == 0 {
		width = 100
	}
	pct := "     -"
	if v.PctOfMSRP != nil {
		pct = fmt.Sprintf("%5.1f%%", *v.PctOfMSRP)
	}
	prefix := fmt.Sprintf("%-3s %-8s %s %9s %7s %-8s ",
		Marks(v), v.ID, pct, PriceText(v), EndsText(v.Listing, now), v.Status.String())
	title := truncate(v.Title, width-len([]rune(prefix))-2)
	if v.PctOfMSRP != nil && v.ID != m.selectedID() {
		colored := lipgloss.NewStyle().Foreground(lipgloss.Color(services.ColorForPercent(*v.PctOfMSRP))).Render(pct)
		prefix = strings.Replace(prefix, pct, colored, 1)
	}
	return prefix + title
}

func (m Model) selectedID() string {
	if v := m.Selected(); v != nil {
		return v.ID
	}
	return ""
}

func (m Model) panelText(now time.Time) string {
	v := m.Selected()
	if v == nil {
		return ""
	}
	switch m.panel {
	case panelBulk:
		group := services.GroupOf(services.SortedRecords(m.cache), v.GroupKey)
		st := services.ComputeBulkStats(v.GroupKey, group, now)
		return "Bulk: " + v.GroupKey + "\n" + services.BulkSummary(st)
	case panelImage:
		if v.ImageURL == "" {
			return "Image: none"
		}
		return "Image: " + v.ImageURL
	}
	return ""
}

func (m Model) statusLine() string {
	switch {
	case m.searching:
		return "/" + m.query + "█"
	case m.busy != "":
		return warnStyle.Render(m.busy + "...")
	case m.query != "":
		return "search: " + m.query + dimStyle.Render("  (esc clears)")
	}
	return m.status
}
