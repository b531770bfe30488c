package crawler

import (
	"fmt"
	"sync"
	"time"

	"covidfeed/internal/logger"
)

// AttemptResult records the result of a single fetch attempt.
type AttemptResult struct {
	Timestamp  time.Time
	URL        string
	Error      string
	Attempt    int
	Duration   time.Duration
	StatusCode int
	Success    bool
}

// AttemptStats summarizes an AttemptLog.
type AttemptStats struct {
	TotalAttempts   int
	SuccessCount    int
	FailureCount    int
	URLCount        int
	AverageDuration time.Duration
}

func (s AttemptStats) String() string {
	return fmt.Sprintf("attempts=%d success=%d failure=%d urls=%d avg=%s",
		s.TotalAttempts, s.SuccessCount, s.FailureCount, s.URLCount, s.AverageDuration)
}

// AttemptLog keeps every fetch attempt per URL, in order.
type AttemptLog struct {
	byURL map[string][]AttemptResult
	order []string
	mu    sync.Mutex
}

// NewAttemptLog creates an empty log.
func NewAttemptLog() *AttemptLog {
	return &AttemptLog{byURL: make(map[string][]AttemptResult)}
}

// Record appends the outcome of one attempt. resp may be nil when the request
// never produced a response.
func (l *AttemptLog) Record(url string, attempt int, resp *Response, err error) {
	result := AttemptResult{
		Timestamp: time.Now(),
		URL:       url,
		Attempt:   attempt,
		Success:   err == nil,
	}

	if resp != nil {
		result.StatusCode = resp.StatusCode
		result.Duration = resp.Duration
	}

	if err != nil {
		result.Error = err.Error()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.byURL[url]; !ok {
		l.order = append(l.order, url)
	}

	l.byURL[url] = append(l.byURL[url], result)
}

// Get returns the attempts made for url.
func (l *AttemptLog) Get(url string) []AttemptResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]AttemptResult(nil), l.byURL[url]...)
}

// Stats aggregates the log.
func (l *AttemptLog) Stats() AttemptStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	var (
		stats AttemptStats
		total time.Duration
	)

	stats.URLCount = len(l.order)

	for _, url := range l.order {
		for _, a := range l.byURL[url] {
			stats.TotalAttempts++
			total += a.Duration

			if a.Success {
				stats.SuccessCount++
			} else {
				stats.FailureCount++
			}
		}
	}

	if stats.TotalAttempts > 0 {
		stats.AverageDuration = total / time.Duration(stats.TotalAttempts)
	}

	return stats
}

// LogSummary writes the aggregate and every failed attempt to log.
func (l *AttemptLog) LogSummary(log *logger.Logger) {
	stats := l.Stats()
	log.Info("fetch summary",
		"attempts", stats.TotalAttempts,
		"success", stats.SuccessCount,
		"failure", stats.FailureCount,
		"urls", stats.URLCount,
		"avg_duration", stats.AverageDuration.Round(time.Millisecond),
	)

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, url := range l.order {
		for _, a := range l.byURL[url] {
			if !a.Success {
				log.Warn("failed attempt", "url", a.URL, "attempt", a.Attempt, "status", a.StatusCode, "error", a.Error)
			}
		}
	}
}
