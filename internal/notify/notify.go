package notify

import "sync"

// Level classifies a notice the way the terminal renders it.
type Level string

const (
	LevelSuccess Level = "sucesso"
	LevelError   Level = "erro"
	LevelInfo    Level = "info"
)

// Notice is one user-facing notification.
type Notice struct {
	Level    Level  `json:"tipo"`
	Mensagem string `json:"mensagem"`
}

// Notifier is the side channel lookups and controllers use to surface
// user-facing messages independently of their return values.
type Notifier interface {
	Success(mensagem string)
	Error(mensagem string)
	Info(mensagem string)
}

// Collector accumulates notices for one terminal session; the API layer
// drains it into each response.
type Collector struct {
	mu      sync.Mutex
	notices []Notice
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Success(mensagem string) { c.add(LevelSuccess, mensagem) }
func (c *Collector) Error(mensagem string)   { c.add(LevelError, mensagem) }
func (c *Collector) Info(mensagem string)    { c.add(LevelInfo, mensagem) }

func (c *Collector) add(level Level, mensagem string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, Notice{Level: level, Mensagem: mensagem})
}

// Drain returns the accumulated notices and resets the collector.
func (c *Collector) Drain() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notices
	c.notices = nil
	return out
}

// Discard is a Notifier that drops every notice. Useful for operations whose
// messages are surfaced some other way.
type Discard struct{}

func (Discard) Success(string) {}
func (Discard) Error(string)   {}
func (Discard) Info(string)    {}
