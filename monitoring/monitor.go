// Package monitoring exposes trace sessions over HTTP for inspection
// and control: list sessions, peek at their state, start and stop
// tracing, tune the cache threshold, and profile the host process.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/tracelab/qtrace/trace"
)

// Monitor serves a control surface over a set of named trace sessions.
type Monitor struct {
	portNumber  int
	openBrowser bool

	sessionsLock sync.Mutex
	sessionNames []string
	sessions     map[string]*trace.Session
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		sessions: make(map[string]*trace.Session),
	}
}

// WithPortNumber sets the port number of the monitoring server.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the control page in the default
// browser.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterSession adds a session under a name. Registering the same
// name again replaces the session.
func (m *Monitor) RegisterSession(name string, s *trace.Session) {
	m.sessionsLock.Lock()
	defer m.sessionsLock.Unlock()

	if _, ok := m.sessions[name]; !ok {
		m.sessionNames = append(m.sessionNames, name)
	}
	m.sessions[name] = s
}

// StartServer starts the monitor as a web server, on the configured
// port or a random one.
func (m *Monitor) StartServer() {
	http.Handle("/", m.router())

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring trace sessions with %s\n", url)

	if m.openBrowser {
		_ = browser.OpenURL(url + "/api/sessions")
	}

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/sessions", m.listSessions)
	r.HandleFunc("/api/session/{name}", m.sessionDetails)
	r.HandleFunc("/api/session/{name}/status", m.sessionStatus)
	r.HandleFunc("/api/session/{name}/start", m.startSession)
	r.HandleFunc("/api/session/{name}/stop", m.stopSession)
	r.HandleFunc("/api/session/{name}/threshold", m.setThreshold)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

func (m *Monitor) listSessions(w http.ResponseWriter, _ *http.Request) {
	m.sessionsLock.Lock()
	defer m.sessionsLock.Unlock()

	fmt.Fprint(w, "[")
	for i, name := range m.sessionNames {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w, "%q", name)
	}
	fmt.Fprint(w, "]")
}

func (m *Monitor) sessionDetails(w http.ResponseWriter, r *http.Request) {
	session := m.findSessionOr404(w, mux.Vars(r)["name"])
	if session == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(session)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type statusRsp struct {
	Enabled       bool   `json:"enabled"`
	TraceFile     string `json:"trace_file,omitempty"`
	ThresholdUs   int    `json:"threshold_us"`
	QueriesTraced int64  `json:"queries_traced"`
}

func (m *Monitor) sessionStatus(w http.ResponseWriter, r *http.Request) {
	session := m.findSessionOr404(w, mux.Vars(r)["name"])
	if session == nil {
		return
	}

	rsp := statusRsp{
		Enabled:       session.Enabled(),
		ThresholdUs:   session.Threshold(),
		QueriesTraced: session.QueriesTraced(),
	}
	if path, ok := session.TraceFile(); ok {
		rsp.TraceFile = path
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) startSession(w http.ResponseWriter, r *http.Request) {
	session := m.findSessionOr404(w, mux.Vars(r)["name"])
	if session == nil {
		return
	}

	path, err := session.Start()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	fmt.Fprintf(w, "{\"trace_file\":%q}", path)
}

func (m *Monitor) stopSession(w http.ResponseWriter, r *http.Request) {
	session := m.findSessionOr404(w, mux.Vars(r)["name"])
	if session == nil {
		return
	}

	path, err := session.Stop()
	if errors.Is(err, trace.ErrNotEnabled) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	fmt.Fprintf(w, "{\"trace_file\":%q}", path)
}

func (m *Monitor) setThreshold(w http.ResponseWriter, r *http.Request) {
	session := m.findSessionOr404(w, mux.Vars(r)["name"])
	if session == nil {
		return
	}

	micros, err := strconv.Atoi(r.URL.Query().Get("us"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	applied, err := session.SetCacheThreshold(micros)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	fmt.Fprintf(w, "{\"threshold_us\":%d}", applied)
}

func (m *Monitor) findSessionOr404(
	w http.ResponseWriter,
	name string,
) *trace.Session {
	m.sessionsLock.Lock()
	session := m.sessions[name]
	m.sessionsLock.Unlock()

	if session == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Session not found"))
		dieOnErr(err)
	}

	return session
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

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
