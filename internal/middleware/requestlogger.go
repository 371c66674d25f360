package middleware

import (
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ame-28/AI-Vision-Analyzer/internal/models"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/storage"
)

// RequestLogger batches analysis request logs into postgres without
// blocking the request path.
type RequestLogger struct {
	db      *storage.Postgres
	entries chan models.RequestLog
	done    chan struct{}

	// mu guards closed so a request finishing while the server drains
	// cannot send on the closed entries channel.
	mu     sync.RWMutex
	closed bool
}

func NewRequestLogger(db *storage.Postgres, bufferSize int) *RequestLogger {
	rl := &RequestLogger{
		db:      db,
		entries: make(chan models.RequestLog, bufferSize),
		done:    make(chan struct{}),
	}

	go rl.worker()

	return rl
}

// worker batch-inserts entries, flushing on size or every few seconds
func (rl *RequestLogger) worker() {
	batch := make([]models.RequestLog, 0, 100)
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case entry, ok := <-rl.entries:
			if !ok {
				rl.insertBatch(batch)
				close(rl.done)
				return
			}
			batch = append(batch, entry)

			if len(batch) >= 100 {
				rl.insertBatch(batch)
				batch = make([]models.RequestLog, 0, 100)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				rl.insertBatch(batch)
				batch = make([]models.RequestLog, 0, 100)
			}
		}
	}
}

func (rl *RequestLogger) insertBatch(batch []models.RequestLog) {
	if len(batch) == 0 {
		return
	}

	if err := rl.db.DB.Create(&batch).Error; err != nil {
		log.Printf("Failed to insert request logs: %v", err)
	}
}

// Close flushes any queued entries before shutdown. Entries arriving
// after Close are dropped.
func (rl *RequestLogger) Close() {
	rl.mu.Lock()
	if rl.closed {
		rl.mu.Unlock()
		return
	}
	rl.closed = true
	close(rl.entries)
	rl.mu.Unlock()

	<-rl.done
}

func (rl *RequestLogger) enqueue(entry models.RequestLog) {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	if rl.closed {
		return
	}

	select {
	case rl.entries <- entry:
	default:
		// Channel full, drop rather than block the request
		log.Printf("Request log channel full, dropping entry")
	}
}

// Handler logs every HTTP request handled by the gateway.
func (rl *RequestLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)

		entry := models.RequestLog{
			Timestamp:      start,
			RequestID:      c.GetString("request_id"),
			Identity:       c.GetString("identity"),
			Tier:           c.GetString("tier"),
			Method:         c.Request.Method,
			Path:           c.Request.URL.Path,
			StatusCode:     c.Writer.Status(),
			ResponseTimeMs: int(duration.Milliseconds()),
			IPAddress:      c.ClientIP(),
			UserAgent:      c.Request.UserAgent(),
		}

		rl.enqueue(entry)
	}
}
