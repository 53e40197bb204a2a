package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/san-kum/pointerquest/internal/clock"
	"github.com/san-kum/pointerquest/internal/config"
	"github.com/san-kum/pointerquest/internal/engine"
	"github.com/san-kum/pointerquest/internal/lessons"
	"github.com/san-kum/pointerquest/internal/progress"
	"github.com/san-kum/pointerquest/internal/scene"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	controlBuffer  = 16
)

// Control is a command sent by a browser client.
type Control struct {
	Type     string  `json:"type"` // start, pause, toggle, scenario, language, speed, reset
	Scenario string  `json:"scenario,omitempty"`
	Language string  `json:"language,omitempty"`
	Speed    float64 `json:"speed,omitempty"`
}

// NodeState is one scene node in world space.
type NodeState struct {
	Name     string        `json:"name"`
	Shape    lessons.Shape `json:"shape"`
	Color    string        `json:"color"`
	Size     float64       `json:"size"`
	Position [3]float64    `json:"position"`
	Rotation [3]float64    `json:"rotation"`
	Scale    [3]float64    `json:"scale"`
	Opacity  float64       `json:"opacity"`
	Visible  bool          `json:"visible"`

	Memory    lessons.MemoryKind `json:"memory,omitempty"`
	Thickness float64            `json:"thickness"`
	Progress  float64            `json:"progress,omitempty"`
}

// FrameMessage is sent to the client after every frame.
type FrameMessage struct {
	State scene.UIState `json:"state"`
	Nodes []NodeState   `json:"nodes"`
	Error string        `json:"error,omitempty"`
}

type LessonSummary struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Scenarios []string `json:"scenarios"`
}

type StreamConfig struct {
	Addr string
	// Origins lists the allowed Origin headers. Empty means same host
	// only; "*" allows any.
	Origins []string
	FPS     int
	Mount   engine.Options
}

// StreamServer drives one instance per WebSocket connection.
type StreamServer struct {
	cfg      StreamConfig
	reg      *lessons.Registry
	store    *progress.Store
	logger   *log.Logger
	upgrader websocket.Upgrader
	http     *http.Server
}

func NewStreamServer(reg *lessons.Registry, store *progress.Store, cfg StreamConfig, logger *log.Logger) *StreamServer {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "pointerquest-ws"})
	}
	if cfg.Addr == "" {
		cfg.Addr = config.DefaultWSAddr
	}
	if cfg.FPS <= 0 {
		cfg.FPS = config.DefaultFPS
	}
	s := &StreamServer{cfg: cfg, reg: reg, store: store, logger: logger}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *StreamServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(s.cfg.Origins) == 0 {
		return sameHost(origin, r.Host)
	}
	for _, o := range s.cfg.Origins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func sameHost(origin, host string) bool {
	for _, scheme := range []string{"http://", "https://"} {
		if origin == scheme+host {
			return true
		}
	}
	return false
}

// Handler serves /ws and /lessons.
func (s *StreamServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/lessons", s.serveLessons)
	return mux
}

func (s *StreamServer) serveLessons(w http.ResponseWriter, r *http.Request) {
	lang := s.cfg.Mount.Language
	if l, ok := lessons.ParseLanguage(r.URL.Query().Get("lang")); ok {
		lang = l
	}
	list := s.reg.List()
	out := make([]LessonSummary, 0, len(list))
	for _, l := range list {
		out = append(out, LessonSummary{
			ID:        l.ID,
			Title:     l.Title.In(lang),
			Summary:   l.Summary.In(lang),
			Scenarios: l.ScenarioIDs(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		s.logger.Warn("could not write lessons", "error", err)
	}
}

// mountFor builds the instance requested by the query string:
// ?lesson=...&scenario=...&lang=...&speed=...
func (s *StreamServer) mountFor(r *http.Request) (*engine.Instance, error) {
	q := r.URL.Query()
	l, err := s.reg.Get(q.Get("lesson"))
	if err != nil {
		return nil, err
	}
	opts := s.cfg.Mount
	opts.Scenario = q.Get("scenario")
	if v := q.Get("lang"); v != "" {
		lang, ok := lessons.ParseLanguage(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s", engine.ErrUnknownLanguage, v)
		}
		opts.Language = lang
	}
	if v := q.Get("speed"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("bad speed %q: %w", v, err)
		}
		opts.Speed = f
	}
	return engine.New(l, opts)
}

func (s *StreamServer) serveWS(w http.ResponseWriter, r *http.Request) {
	inst, err := s.mountFor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	s.logger.Info("stream opened", "remote", r.RemoteAddr, "lesson", inst.Lesson().ID, "scenario", inst.Scenario())
	st := newStream(conn, inst, s.logger)
	s.begin(r.Context(), st, r.RemoteAddr)
	err = st.run(r.Context(), s.cfg.FPS)
	s.finish(st)
	s.logger.Info("stream closed", "remote", r.RemoteAddr, "frames", inst.Frames(), "error", err)
}

func (s *StreamServer) begin(ctx context.Context, st *stream, remote string) {
	if s.store == nil {
		return
	}
	id, err := s.store.Begin(ctx, st.inst.Lesson().ID, st.inst.Scenario(), "ws:"+remote)
	if err != nil {
		s.logger.Warn("could not record session", "error", err)
		return
	}
	st.session = id
}

func (s *StreamServer) finish(st *stream) {
	if s.store == nil || st.session == "" {
		return
	}
	sum := progress.Summary{
		Scenario: st.inst.Scenario(),
		Frames:   st.inst.Frames(),
		Elapsed:  st.inst.Elapsed(),
		Switches: st.switches,
	}
	if err := s.store.Finish(context.Background(), st.session, sum); err != nil {
		s.logger.Warn("could not finish session", "id", st.session, "error", err)
	}
}

// ListenAndServe serves until ctx is done.
func (s *StreamServer) ListenAndServe(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.logger.Info("starting stream server", "address", s.cfg.Addr)

	errc := make(chan error, 1)
	go func() { errc <- s.http.ListenAndServe() }()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	s.logger.Info("shutting down...")
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdown)
}

// stream is one connection. Only the loop goroutine touches inst; the
// reader hands controls over on a channel.
type stream struct {
	conn     *websocket.Conn
	inst     *engine.Instance
	logger   *log.Logger
	controls chan Control
	session  string
	switches int
	lastPing time.Time
}

func newStream(conn *websocket.Conn, inst *engine.Instance, logger *log.Logger) *stream {
	return &stream{
		conn:     conn,
		inst:     inst,
		logger:   logger,
		controls: make(chan Control, controlBuffer),
	}
}

func (st *stream) run(ctx context.Context, fps int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go st.readPump(ctx, cancel)

	st.lastPing = time.Now()
	var sendErr error
	err := clock.NewLoop(fps).Run(ctx, func(delta time.Duration) bool {
		var msg string
	drain:
		for {
			select {
			case c := <-st.controls:
				if err := st.apply(c); err != nil {
					msg = err.Error()
				}
			default:
				break drain
			}
		}
		ui := st.inst.Frame(delta)
		if sendErr = st.send(FrameMessage{State: ui, Nodes: nodesOf(st.inst.Graph()), Error: msg}); sendErr != nil {
			return false
		}
		return true
	})
	if sendErr != nil {
		return sendErr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// readPump decodes controls until the peer goes away, then cancels the loop.
func (st *stream) readPump(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	st.conn.SetReadLimit(maxMessageSize)
	_ = st.conn.SetReadDeadline(time.Now().Add(pongWait))
	st.conn.SetPongHandler(func(string) error {
		return st.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var c Control
		if err := st.conn.ReadJSON(&c); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				st.logger.Debug("read failed", "error", err)
			}
			var (
				syntax   *json.SyntaxError
				mismatch *json.UnmarshalTypeError
			)
			if errors.As(err, &syntax) || errors.As(err, &mismatch) {
				continue
			}
			return
		}
		select {
		case st.controls <- c:
		case <-ctx.Done():
			return
		}
	}
}

func (st *stream) apply(c Control) error {
	switch c.Type {
	case "start":
		st.inst.Start()
	case "pause":
		st.inst.Pause()
	case "toggle":
		st.inst.Toggle()
	case "reset":
		st.inst.Reset()
	case "speed":
		st.inst.SetSpeed(c.Speed)
	case "scenario":
		if err := st.inst.SelectScenario(c.Scenario); err != nil {
			return err
		}
		st.switches++
	case "language":
		lang, ok := lessons.ParseLanguage(c.Language)
		if !ok {
			return fmt.Errorf("%w: %s", engine.ErrUnknownLanguage, c.Language)
		}
		return st.inst.SetLanguage(lang)
	default:
		return fmt.Errorf("unknown control %q", c.Type)
	}
	return nil
}

func (st *stream) send(msg FrameMessage) error {
	_ = st.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if time.Since(st.lastPing) >= pingPeriod {
		if err := st.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			return err
		}
		st.lastPing = time.Now()
	}
	return st.conn.WriteJSON(msg)
}

// nodesOf flattens g into world-space node states.
func nodesOf(g *scene.Graph) []NodeState {
	out := make([]NodeState, 0, g.Len())
	hidden := map[*scene.Node]bool{}
	g.Walk(func(n *scene.Node, toWorld func(scene.Vec3) scene.Vec3) {
		for _, c := range n.Children {
			if hidden[n] || !n.Visible {
				hidden[c] = true
			}
		}
		p := toWorld(scene.Vec3{})
		out = append(out, NodeState{
			Name:     n.Name,
			Shape:    n.Shape,
			Color:    n.Color,
			Size:     n.Size,
			Position: [3]float64{p.X, p.Y, p.Z},
			Rotation: [3]float64{n.Rotation.X, n.Rotation.Y, n.Rotation.Z},
			Scale:    [3]float64{n.Scale.X, n.Scale.Y, n.Scale.Z},
			Opacity:  n.Opacity,
			Visible:  n.Visible && !hidden[n],

			Memory:    n.Memory,
			Thickness: n.Thickness,
			Progress:  n.Progress,
		})
	})
	return out
}
