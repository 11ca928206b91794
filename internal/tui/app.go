package tui

import (
	"context"
	"sort"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/sift/internal/domain"
	"github.com/mmcdole/sift/internal/events"
	"github.com/mmcdole/sift/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateTriage ApplicationState = iota
	StateProgress
	StateTrash
	StateAlbums
	StateConfirmReset
)

// Overlay is the slice of the swipe service the TUI drives.
type Overlay interface {
	IsSwiped(id string) bool
	MarkSwiped(item domain.MediaItem, toTrash bool)
	Recover(ids []string)
	PermanentlyDelete(ids []string)
	ResetAll()
	TrashedIDs() []string
	SwipedCount() int
	TrashedCount() int
}

// ProgressQuerier answers the three progress queries.
type ProgressQuerier interface {
	CategoryProgress(ctx context.Context) map[domain.Category]float64
	BucketProgress(ctx context.Context, labels []string) map[string]float64
	AlbumProgress(ctx context.Context, albums []domain.Album) map[string]float64
}

// Quota gates swipes on the daily allowance.
type Quota interface {
	Remaining() int
	Consume() bool
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Services
	overlay     Overlay
	cache       ProgressQuerier
	source      domain.MediaSource
	ledger      Quota
	reloader    Reloader
	reconciler  Reconciler
	removeFiles FileRemover
	busCh       <-chan events.Event

	// UI state
	state   ApplicationState
	keys    KeyMap
	help    help.Model
	spin    spinner.Model
	bar     progress.Model
	filter  textinput.Model
	width   int
	height  int
	loading bool
	status  string

	// Triage queue
	queue      []domain.MediaItem
	queueIndex int
	queueScope domain.Filter // FilterAll or a single album

	// Progress data
	categories map[domain.Category]float64
	buckets    map[string]float64
	albumFracs map[string]float64

	// Trash view
	trashIDs   []string
	trashIndex int

	// Album picker
	albums     []domain.Album
	filtered   []domain.Album
	albumIndex int
}

// NewModel creates the TUI model.
func NewModel(overlay Overlay, cache ProgressQuerier, source domain.MediaSource, ledger Quota,
	reloader Reloader, reconciler Reconciler, removeFiles FileRemover, busCh <-chan events.Event) Model {

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.AccentStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30

	ti := textinput.New()
	ti.Placeholder = "filter albums"
	ti.CharLimit = 64

	return Model{
		overlay:     overlay,
		cache:       cache,
		source:      source,
		ledger:      ledger,
		reloader:    reloader,
		reconciler:  reconciler,
		removeFiles: removeFiles,
		busCh:       busCh,
		state:       StateTriage,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		spin:        sp,
		bar:         bar,
		filter:      ti,
		loading:     true,
		queueScope:  domain.FilterAll(),
	}
}

// Init starts the queue load and the bus listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadQueueCmd(), m.spin.Tick, listenBusCmd(m.busCh))
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if msg.Width > 44 {
			m.bar.Width = msg.Width - 24
			if m.bar.Width > 50 {
				m.bar.Width = 50
			}
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case QueueLoadedMsg:
		m.queue = msg.Items
		m.queueIndex = 0
		m.loading = false
		return m, nil

	case ProgressLoadedMsg:
		m.categories = msg.Categories
		m.buckets = msg.Buckets
		m.albumFracs = msg.Albums
		m.loading = false
		return m, nil

	case AlbumsLoadedMsg:
		m.albums = msg.Albums
		m.filtered = msg.Albums
		m.albumIndex = 0
		m.loading = false
		return m, nil

	case TrashDeletedMsg:
		m.status = "deleted"
		m.trashIDs = m.overlay.TrashedIDs()
		if m.trashIndex >= len(m.trashIDs) {
			m.trashIndex = len(m.trashIDs) - 1
		}
		return m, nil

	case LibraryRescannedMsg:
		m.status = "library rescanned"
		m.loading = true
		return m, tea.Batch(m.loadQueueCmd(), m.spin.Tick)

	case BusEventMsg:
		cmds := []tea.Cmd{listenBusCmd(m.busCh)}
		switch msg.Event.Kind {
		case events.KindProgressInvalidated, events.KindOverlayReset:
			if m.state == StateProgress {
				cmds = append(cmds, m.loadProgressCmd())
			}
		case events.KindTrashChanged:
			if m.state == StateTrash {
				m.trashIDs = m.overlay.TrashedIDs()
				if m.trashIndex >= len(m.trashIDs) && m.trashIndex > 0 {
					m.trashIndex = len(m.trashIDs) - 1
				}
			}
		}
		return m, tea.Batch(cmds...)

	case ErrMsg:
		m.status = styles.ErrorStyle.Render(msg.Error())
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case StateConfirmReset:
		return m.handleConfirmResetKey(msg)
	case StateAlbums:
		return m.handleAlbumKey(msg)
	case StateTrash:
		return m.handleTrashKey(msg)
	case StateProgress:
		return m.handleProgressKey(msg)
	default:
		return m.handleTriageKey(msg)
	}
}

func (m Model) handleTriageKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, keys.Keep):
		return m.swipeCurrent(false)

	case key.Matches(msg, keys.Trash):
		return m.swipeCurrent(true)

	case key.Matches(msg, keys.Progress):
		m.state = StateProgress
		m.loading = true
		return m, tea.Batch(m.loadProgressCmd(), m.spin.Tick)

	case key.Matches(msg, keys.TrashBin):
		m.state = StateTrash
		m.trashIDs = m.overlay.TrashedIDs()
		m.trashIndex = 0
		return m, nil

	case key.Matches(msg, keys.Albums):
		m.state = StateAlbums
		m.loading = true
		m.filter.SetValue("")
		m.filter.Focus()
		return m, tea.Batch(m.loadAlbumsCmd(), m.spin.Tick)

	case key.Matches(msg, keys.Refresh):
		m.loading = true
		return m, tea.Batch(m.rescanCmd(), m.spin.Tick)

	case key.Matches(msg, keys.ResetAll):
		m.state = StateConfirmReset
		return m, nil

	case key.Matches(msg, keys.Back):
		if m.queueScope.Kind != domain.FilterKindAll {
			// Leave the album scope, back to the whole library.
			m.queueScope = domain.FilterAll()
			m.loading = true
			return m, tea.Batch(m.loadQueueCmd(), m.spin.Tick)
		}
		return m, nil
	}
	return m, nil
}

// swipeCurrent records the triage decision for the item under review.
func (m Model) swipeCurrent(toTrash bool) (tea.Model, tea.Cmd) {
	if m.queueIndex >= len(m.queue) {
		return m, nil
	}
	if !m.ledger.Consume() {
		m.status = styles.ErrorStyle.Render("daily swipe limit reached")
		return m, nil
	}

	item := m.queue[m.queueIndex]
	m.overlay.MarkSwiped(item, toTrash)
	m.queueIndex++
	if toTrash {
		m.status = styles.TrashedStyle.Render(styles.TrashedChar + " trashed")
	} else {
		m.status = styles.KeptStyle.Render(styles.KeptChar + " kept")
	}
	return m, nil
}

func (m Model) handleProgressKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Progress):
		m.state = StateTriage
		return m, nil
	case key.Matches(msg, keys.Refresh):
		m.loading = true
		return m, tea.Batch(m.loadProgressCmd(), m.spin.Tick)
	}
	return m, nil
}

func (m Model) handleTrashKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Back), key.Matches(msg, keys.TrashBin):
		m.state = StateTriage
		return m, nil

	case key.Matches(msg, keys.Up):
		if m.trashIndex > 0 {
			m.trashIndex--
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.trashIndex < len(m.trashIDs)-1 {
			m.trashIndex++
		}
		return m, nil

	case key.Matches(msg, keys.Recover):
		if m.trashIndex < len(m.trashIDs) {
			m.overlay.Recover([]string{m.trashIDs[m.trashIndex]})
			m.trashIDs = m.overlay.TrashedIDs()
			if m.trashIndex >= len(m.trashIDs) && m.trashIndex > 0 {
				m.trashIndex--
			}
			m.status = "recovered (stays swiped)"
		}
		return m, nil

	case key.Matches(msg, keys.Delete):
		if m.trashIndex < len(m.trashIDs) {
			id := m.trashIDs[m.trashIndex]
			return m, m.deleteTrashCmd([]string{id})
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleAlbumKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.state = StateTriage
		m.filter.Blur()
		return m, nil

	case "up":
		if m.albumIndex > 0 {
			m.albumIndex--
		}
		return m, nil

	case "down":
		if m.albumIndex < len(m.filtered)-1 {
			m.albumIndex++
		}
		return m, nil

	case "enter":
		if m.albumIndex < len(m.filtered) {
			// Scope the review queue to the picked album.
			m.queueScope = domain.FilterAlbum(m.filtered[m.albumIndex].ID)
			m.state = StateTriage
			m.filter.Blur()
			m.loading = true
			return m, tea.Batch(m.loadQueueCmd(), m.spin.Tick)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.filtered = filterAlbums(m.albums, m.filter.Value())
	if m.albumIndex >= len(m.filtered) {
		m.albumIndex = 0
	}
	return m, cmd
}

func (m Model) handleConfirmResetKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys
	switch {
	case key.Matches(msg, keys.Confirm):
		m.overlay.ResetAll()
		m.state = StateTriage
		m.status = "triage history cleared"
		m.loading = true
		return m, tea.Batch(m.loadQueueCmd(), m.spin.Tick)
	case key.Matches(msg, keys.Deny):
		m.state = StateTriage
		return m, nil
	}
	return m, nil
}

// filterAlbums ranks albums against the query, best matches first.
func filterAlbums(albums []domain.Album, query string) []domain.Album {
	if query == "" {
		return albums
	}

	titles := make([]string, len(albums))
	for i, a := range albums {
		titles[i] = a.Title
	}

	ranks := fuzzy.RankFindFold(query, titles)
	sort.Sort(ranks)
	out := make([]domain.Album, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, albums[r.OriginalIndex])
	}
	return out
}
