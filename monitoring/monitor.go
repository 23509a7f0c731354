// Package monitoring serves the eye controller over HTTP: its state, a
// command endpoint and the resource use of the process.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/roboeyes/command"
	"github.com/sarchlab/roboeyes/display"
	"github.com/sarchlab/roboeyes/eye"
	"github.com/sarchlab/roboeyes/monitoring/web"
	"github.com/sarchlab/roboeyes/timing"
)

// Monitor turns a running controller into a web server.
type Monitor struct {
	controller *eye.Controller
	screens    []*display.Screen
	fps        *FPSMeter
	portNumber int
	timeout    time.Duration
	devAssets  bool

	server   *http.Server
	listener net.Listener
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{timeout: 2 * time.Second}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithTimeout sets how long a request waits for the render goroutine.
func (m *Monitor) WithTimeout(d time.Duration) *Monitor {
	m.timeout = d
	return m
}

// WithDevAssets makes the monitor serve the control page from the source
// tree instead of the copy embedded in the binary.
func (m *Monitor) WithDevAssets(dev bool) *Monitor {
	if dev {
		fmt.Fprintf(os.Stderr,
			"Monitor serves its page from %s\n", web.SourceDir())
	}

	m.devAssets = dev

	return m
}

// RegisterController sets the controller to monitor.
func (m *Monitor) RegisterController(c *eye.Controller) {
	m.controller = c
}

// RegisterScreen registers a screen whose layers can be inspected.
func (m *Monitor) RegisterScreen(s *display.Screen) {
	m.screens = append(m.screens, s)
}

// RegisterFPSMeter sets the meter reported by /api/fps.
func (m *Monitor) RegisterFPSMeter(f *FPSMeter) {
	m.fps = f
}

// Router creates the HTTP routes.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/now", m.now).Methods(http.MethodGet)
	r.HandleFunc("/api/status", m.status).Methods(http.MethodGet)
	r.HandleFunc("/api/eye/{id}", m.eyeDetails).Methods(http.MethodGet)
	r.HandleFunc("/api/list_screens", m.listScreens).Methods(http.MethodGet)
	r.HandleFunc("/api/screen/{name}", m.screen).Methods(http.MethodGet)
	r.HandleFunc("/api/look", m.look).Methods(http.MethodPost)
	r.HandleFunc("/api/blink", m.blink).Methods(http.MethodPost)
	r.HandleFunc("/api/plan", m.plan).Methods(http.MethodPost)
	r.HandleFunc("/api/material", m.material).Methods(http.MethodPost)
	r.HandleFunc("/api/cmd", m.cmd).Methods(http.MethodPost)
	r.HandleFunc("/api/fps", m.reportFPS).Methods(http.MethodGet)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)
	r.PathPrefix("/").Handler(http.FileServer(web.Assets(m.devAssets)))

	return r
}

// StartServer starts serving in the background and returns the monitor URL.
func (m *Monitor) StartServer() (string, error) {
	if m.controller == nil {
		panic("monitoring: controller is not registered")
	}

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", fmt.Errorf("monitoring: listening on %s: %w", actualPort, err)
	}

	m.listener = listener
	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	url := fmt.Sprintf("http://localhost:%d", listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring eyes with %s\n", url)

	go func() {
		err := m.server.Serve(listener)
		if !errors.Is(err, http.ErrServerClosed) {
			dieOnErr(err)
		}
	}()

	return url, nil
}

// OpenInBrowser opens the monitor page in the default browser.
func (m *Monitor) OpenInBrowser(url string) error {
	return browser.OpenURL(url)
}

// Shutdown stops the server.
func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), m.timeout)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.controller.Driver().CurrentTime()
	fmt.Fprintf(w, "{\"now\":%d}", now)
}

func (m *Monitor) status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := m.requestContext(r)
	defer cancel()

	st, err := command.Do(ctx, m.controller,
		func(c *eye.Controller) (eye.Status, error) {
			return c.Status(), nil
		})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, st)
}

func (m *Monitor) eyeDetails(w http.ResponseWriter, r *http.Request) {
	id, err := eye.ParseID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := m.requestContext(r)
	defer cancel()

	buf, err := command.Do(ctx, m.controller,
		func(c *eye.Controller) (*bytes.Buffer, error) {
			e := c.Eye(id)
			if e == nil {
				return nil, fmt.Errorf("%w: %s", eye.ErrUnknownEye, id)
			}

			buf := bytes.NewBuffer(nil)
			serializer := goseth.NewSerializer()
			serializer.SetRoot(e)
			serializer.SetMaxDepth(1)

			return buf, serializer.Serialize(buf)
		})
	if err != nil {
		writeError(w, err)
		return
	}

	_, err = buf.WriteTo(w)
	dieOnErr(err)
}

func (m *Monitor) listScreens(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.screens))
	for _, s := range m.screens {
		names = append(names, s.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) screen(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var screen *display.Screen
	for _, s := range m.screens {
		if s.Name() == name {
			screen = s
		}
	}

	if screen == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Screen not found"))
		dieOnErr(err)

		return
	}

	ctx, cancel := m.requestContext(r)
	defer cancel()

	st, err := command.Do(ctx, m.controller,
		func(*eye.Controller) (display.ScreenState, error) {
			return screen.Snapshot(), nil
		})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, st)
}

type lookReq struct {
	Eye string `json:"eye"`
	X   int    `json:"x"`
	Y   int    `json:"y"`
}

func (m *Monitor) look(w http.ResponseWriter, r *http.Request) {
	var req lookReq
	if !decodeJSON(w, r, &req) {
		return
	}

	cmd := command.Look{X: req.X, Y: req.Y, Eyes: eye.IDs}
	if req.Eye != "" && req.Eye != "both" {
		id, err := eye.ParseID(req.Eye)
		if err != nil {
			writeError(w, err)
			return
		}

		cmd.Eyes = []eye.ID{id}
	}

	m.run(w, r, cmd)
}

type blinkReq struct {
	Eye string `json:"eye"`
}

func (m *Monitor) blink(w http.ResponseWriter, r *http.Request) {
	var req blinkReq
	if !decodeJSON(w, r, &req) {
		return
	}

	id, ok := m.optionalEye(w, req.Eye)
	if !ok {
		return
	}

	m.run(w, r, command.BlinkNow{Eye: id})
}

type planReq struct {
	IntervalMs uint64 `json:"interval_ms"`
	Count      int    `json:"count"`
	Eye        string `json:"eye"`
}

func (m *Monitor) plan(w http.ResponseWriter, r *http.Request) {
	var req planReq
	if !decodeJSON(w, r, &req) {
		return
	}

	id, ok := m.optionalEye(w, req.Eye)
	if !ok {
		return
	}

	m.run(w, r, command.BlinkPlan{
		Interval: timing.VTimeInMs(req.IntervalMs),
		Count:    req.Count,
		Eye:      id,
	})
}

type materialReq struct {
	Eye       string `json:"eye"`
	Eyeball   string `json:"eyeball"`
	Eyelid    string `json:"eyelid"`
	MaxOffset int    `json:"max_offset"`
}

func (m *Monitor) material(w http.ResponseWriter, r *http.Request) {
	var req materialReq
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := eye.ParseID(req.Eye)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.MaxOffset < 0 {
		writeError(w, fmt.Errorf("%w: max_offset cannot be negative", command.ErrUsage))
		return
	}

	m.run(w, r, command.Material{
		Eye:       id,
		Eyeball:   req.Eyeball,
		Eyelid:    req.Eyelid,
		MaxOffset: req.MaxOffset,
	})
}

func (m *Monitor) cmd(w http.ResponseWriter, r *http.Request) {
	line, err := io.ReadAll(io.LimitReader(r.Body, 4096))
	dieOnErr(err)

	cmd, err := command.Parse(string(line))
	if err != nil {
		writeError(w, err)
		return
	}

	m.run(w, r, cmd)
}

func (m *Monitor) run(w http.ResponseWriter, r *http.Request, cmd command.Command) {
	ctx, cancel := m.requestContext(r)
	defer cancel()

	out, err := command.Run(ctx, m.controller, cmd)
	if err != nil {
		writeError(w, err)
		return
	}

	_, err = fmt.Fprintln(w, out)
	dieOnErr(err)
}

func (m *Monitor) optionalEye(w http.ResponseWriter, name string) (*eye.ID, bool) {
	if name == "" || name == "both" {
		return nil, true
	}

	id, err := eye.ParseID(name)
	if err != nil {
		writeError(w, err)
		return nil, false
	}

	return &id, true
}

type fpsRsp struct {
	FPS float64 `json:"fps"`
}

func (m *Monitor) reportFPS(w http.ResponseWriter, _ *http.Request) {
	rsp := fpsRsp{}
	if m.fps != nil {
		rsp.FPS = m.fps.FPS()
	}

	writeJSON(w, rsp)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusBadRequest

	switch {
	case errors.Is(err, command.ErrNotApplied):
		code = http.StatusServiceUnavailable
	case errors.Is(err, eye.ErrUnknownEye):
		code = http.StatusNotFound
	}

	http.Error(w, err.Error(), code)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
