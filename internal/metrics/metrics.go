package metrics

import (
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Lookup metrics
	lookupsByKind   map[string]int64
	noMatchByKind   map[string]int64
	AmbiguousTotal  int64
	malformedFields map[string]int64

	// Source metrics
	SourceFetchesTotal int64
	SourceErrorsTotal  int64
	CacheHitsTotal     int64
	CacheMissesTotal   int64
	lastFetchDuration  time.Duration
	tableRows          map[string]int

	// WebSocket metrics
	WebSocketConnectionsTotal    int64
	WebSocketDisconnectionsTotal int64
	activeConnections            int64

	// HTTP metrics
	httpRequestsTotal map[string]map[int]int64 // endpoint -> status -> count

	startTime time.Time
}

var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = newMetrics()
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		lookupsByKind:     make(map[string]int64),
		noMatchByKind:     make(map[string]int64),
		malformedFields:   make(map[string]int64),
		tableRows:         make(map[string]int),
		httpRequestsTotal: make(map[string]map[int]int64),
		startTime:         time.Now(),
	}
}

// RecordLookup counts a report lookup for a period kind
func (m *Metrics) RecordLookup(kind string) {
	m.mu.Lock()
	m.lookupsByKind[kind]++
	m.mu.Unlock()
}

// RecordNoMatch counts a lookup that matched no rows
func (m *Metrics) RecordNoMatch(kind string) {
	m.mu.Lock()
	m.noMatchByKind[kind]++
	m.mu.Unlock()
}

// RecordAmbiguousMatch counts rows beyond the first on an exact-match filter
func (m *Metrics) RecordAmbiguousMatch(extra int) {
	m.mu.Lock()
	m.AmbiguousTotal += int64(extra)
	m.mu.Unlock()
}

// RecordMalformedField counts a value excluded because it did not parse
func (m *Metrics) RecordMalformedField(field string) {
	m.mu.Lock()
	m.malformedFields[field]++
	m.mu.Unlock()
}

// RecordSourceFetch records a fetch against the backing store
func (m *Metrics) RecordSourceFetch(table string, rows int, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SourceFetchesTotal++
	m.lastFetchDuration = duration
	if err != nil {
		m.SourceErrorsTotal++
		return
	}
	m.tableRows[table] = rows
}

// RecordCacheHit increments the snapshot cache hit counter
func (m *Metrics) RecordCacheHit() {
	m.mu.Lock()
	m.CacheHitsTotal++
	m.mu.Unlock()
}

// RecordCacheMiss increments the snapshot cache miss counter
func (m *Metrics) RecordCacheMiss() {
	m.mu.Lock()
	m.CacheMissesTotal++
	m.mu.Unlock()
}

// RecordWebSocketConnect increments connection counters
func (m *Metrics) RecordWebSocketConnect() {
	m.mu.Lock()
	m.WebSocketConnectionsTotal++
	m.activeConnections++
	m.mu.Unlock()
}

// RecordWebSocketDisconnect increments disconnection counter
func (m *Metrics) RecordWebSocketDisconnect() {
	m.mu.Lock()
	m.WebSocketDisconnectionsTotal++
	m.activeConnections--
	m.mu.Unlock()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(endpoint string, statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.httpRequestsTotal[endpoint] == nil {
		m.httpRequestsTotal[endpoint] = make(map[int]int64)
	}
	m.httpRequestsTotal[endpoint][statusCode]++
}

// Lookups returns the number of lookups made for a period kind
func (m *Metrics) Lookups(kind string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lookupsByKind[kind]
}

// Malformed returns how often a field was excluded as malformed
func (m *Metrics) Malformed(field string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.malformedFields[field]
}

// Ambiguous returns the total number of ambiguous extra matches
func (m *Metrics) Ambiguous() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.AmbiguousTotal
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		write := func(name string, value interface{}, labels ...string) {
			labelStr := ""
			if len(labels) > 0 {
				labelStr = "{"
				for i := 0; i < len(labels); i += 2 {
					if i > 0 {
						labelStr += ","
					}
					labelStr += labels[i] + "=\"" + labels[i+1] + "\""
				}
				labelStr += "}"
			}

			switch v := value.(type) {
			case int:
				w.Write([]byte(name + labelStr + " " + strconv.Itoa(v) + "\n"))
			case int64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatInt(v, 10) + "\n"))
			case float64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(v, 'f', 6, 64) + "\n"))
			}
		}

		write("champkpi_uptime_seconds", time.Since(m.startTime).Seconds())

		for _, kind := range sortedKeys(m.lookupsByKind) {
			write("champkpi_lookups_total", m.lookupsByKind[kind], "period", kind)
		}
		for _, kind := range sortedKeys(m.noMatchByKind) {
			write("champkpi_no_match_total", m.noMatchByKind[kind], "period", kind)
		}
		write("champkpi_ambiguous_matches_total", m.AmbiguousTotal)
		for _, field := range sortedKeys(m.malformedFields) {
			write("champkpi_malformed_fields_total", m.malformedFields[field], "field", field)
		}

		write("champkpi_source_fetches_total", m.SourceFetchesTotal)
		write("champkpi_source_errors_total", m.SourceErrorsTotal)
		write("champkpi_source_fetch_duration_seconds", m.lastFetchDuration.Seconds())
		write("champkpi_cache_hits_total", m.CacheHitsTotal)
		write("champkpi_cache_misses_total", m.CacheMissesTotal)
		for table, rows := range m.tableRows {
			write("champkpi_table_rows", rows, "table", table)
		}

		write("champkpi_websocket_connections_total", m.WebSocketConnectionsTotal)
		write("champkpi_websocket_disconnections_total", m.WebSocketDisconnectionsTotal)
		write("champkpi_websocket_active_connections", m.activeConnections)

		for endpoint, statusCodes := range m.httpRequestsTotal {
			for status, count := range statusCodes {
				write("champkpi_http_requests_total", count, "endpoint", endpoint, "status", strconv.Itoa(status))
			}
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
