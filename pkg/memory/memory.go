// Package memory holds short-term conversation state per (user, session):
// a bounded ring of turns plus lightweight derived context that enriches
// classification and generation on later turns.
package memory

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultMaxTurns bounds the per-session turn buffer.
const DefaultMaxTurns = 20

// Metadata keys recognized on assistant turns.
const (
	MetaSQL           = "sql"
	MetaResultSummary = "result_summary"
)

// Turn is one message in a session.
type Turn struct {
	Role      string            `json:"role"` // "user" or "assistant"
	Text      string            `json:"text"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Context is the derived state carried across turns. Topics and aggregation
// hints accumulate (deduplicated); the time range is last-write-wins.
type Context struct {
	Topics            []string
	TimeRange         string
	Aggregations      []string
	LastSQL           string
	LastResultSummary string
}

type session struct {
	mu    sync.Mutex
	turns []Turn
	ctx   Context
}

// Store owns all sessions. Session lookup takes the store lock briefly;
// turn updates take only the session's own lock, so concurrent sessions
// never serialize on each other.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	maxTurns int
}

// NewStore creates a memory store with the given per-session turn bound.
// maxTurns <= 0 uses DefaultMaxTurns.
func NewStore(maxTurns int) *Store {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Store{sessions: make(map[string]*session), maxTurns: maxTurns}
}

func sessionKey(userID, sessionID string) string {
	if sessionID == "" {
		return userID
	}
	return userID + ":" + sessionID
}

// businessTerms map question keywords (English and Vietnamese) to the topic
// recorded in the session context.
var businessTerms = []string{
	"revenue", "doanh thu", "sales", "bán hàng",
	"customer", "khách hàng", "order", "đơn hàng",
	"product", "sản phẩm", "category", "danh mục",
}

// timePhrases overwrite the single current time range, last-write-wins.
var timePhrases = map[string]string{
	"last month":  "last_month",
	"tháng trước": "last_month",
	"this year":   "this_year",
	"năm nay":     "this_year",
	"last year":   "last_year",
	"năm trước":   "last_year",
	"today":       "today",
	"hôm nay":     "today",
}

var aggregationHints = []struct {
	hint     string
	keywords []string
}{
	{"sum", []string{"total", "tổng", "sum"}},
	{"count", []string{"count", "đếm", "how many", "bao nhiêu"}},
	{"avg", []string{"average", "trung bình", "avg"}},
}

// AddTurn appends a turn to the session, evicting the oldest turn past the
// buffer bound, and updates derived context. User turns feed the keyword
// extractor; assistant turns record the last SQL and result summary.
func (s *Store) AddTurn(userID, sessionID, role, text string, metadata map[string]string) {
	sess := s.session(userID, sessionID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.turns = append(sess.turns, Turn{
		Role:      role,
		Text:      text,
		Metadata:  metadata,
		Timestamp: time.Now(),
	})
	if len(sess.turns) > s.maxTurns {
		sess.turns = sess.turns[len(sess.turns)-s.maxTurns:]
	}

	switch role {
	case "user":
		extractContext(&sess.ctx, text)
	case "assistant":
		if sql, ok := metadata[MetaSQL]; ok {
			sess.ctx.LastSQL = sql
		}
		if summary, ok := metadata[MetaResultSummary]; ok {
			sess.ctx.LastResultSummary = summary
		}
	}
}

func extractContext(ctx *Context, text string) {
	lower := strings.ToLower(text)

	for _, term := range businessTerms {
		if strings.Contains(lower, term) && !contains(ctx.Topics, term) {
			ctx.Topics = append(ctx.Topics, term)
		}
	}
	for phrase, value := range timePhrases {
		if strings.Contains(lower, phrase) {
			ctx.TimeRange = value
		}
	}
	for _, agg := range aggregationHints {
		for _, kw := range agg.keywords {
			if strings.Contains(lower, kw) && !contains(ctx.Aggregations, agg.hint) {
				ctx.Aggregations = append(ctx.Aggregations, agg.hint)
			}
		}
	}
}

// GetContext returns a copy of the session's derived context.
func (s *Store) GetContext(userID, sessionID string) Context {
	sess := s.peek(userID, sessionID)
	if sess == nil {
		return Context{}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	ctx := sess.ctx
	ctx.Topics = append([]string(nil), sess.ctx.Topics...)
	ctx.Aggregations = append([]string(nil), sess.ctx.Aggregations...)
	return ctx
}

// RenderContext formats the derived context and the last few raw turns as a
// prompt fragment. Downstream stages read it but never mutate it.
func (s *Store) RenderContext(userID, sessionID string) string {
	sess := s.peek(userID, sessionID)
	if sess == nil {
		return ""
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	var lines []string
	lines = append(lines, "## Conversation Context")

	if len(sess.ctx.Topics) > 0 {
		lines = append(lines, "- Topics discussed: "+strings.Join(sess.ctx.Topics, ", "))
	}
	if sess.ctx.TimeRange != "" {
		lines = append(lines, "- Time range: "+sess.ctx.TimeRange)
	}
	if len(sess.ctx.Aggregations) > 0 {
		lines = append(lines, "- Aggregations: "+strings.Join(sess.ctx.Aggregations, ", "))
	}
	if sess.ctx.LastSQL != "" {
		lines = append(lines, "- Last SQL: "+truncate(sess.ctx.LastSQL, 200))
	}

	if len(sess.turns) > 0 {
		lines = append(lines, "", "## Recent Messages")
		start := len(sess.turns) - 3
		if start < 0 {
			start = 0
		}
		for _, turn := range sess.turns[start:] {
			role := "User"
			if turn.Role == "assistant" {
				role = "Assistant"
			}
			lines = append(lines, fmt.Sprintf("- %s: %s", role, truncate(turn.Text, 200)))
		}
	}

	return strings.Join(lines, "\n")
}

// History returns a copy of the session's turns, oldest first.
func (s *Store) History(userID, sessionID string) []Turn {
	sess := s.peek(userID, sessionID)
	if sess == nil {
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return append([]Turn(nil), sess.turns...)
}

// ClearSession drops one session's turns and derived context.
func (s *Store) ClearSession(userID, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey(userID, sessionID))
}

func (s *Store) session(userID, sessionID string) *session {
	key := sessionKey(userID, sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok {
		sess = &session{}
		s.sessions[key] = sess
	}
	return sess
}

func (s *Store) peek(userID, sessionID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[sessionKey(userID, sessionID)]
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// truncate cuts on a rune boundary: Vietnamese questions must never be
// sliced mid-character.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
