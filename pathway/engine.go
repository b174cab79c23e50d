package pathway

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	DefaultSparkChance = 0.3
	DefaultSparkLinger = 5 * time.Second
)

// Spark is a short-lived "curiosity spark" shown after a first-time completion.
type Spark struct {
	NodeID    string    `json:"nodeId"`
	Topic     string    `json:"topic"`
	ShownAt   time.Time `json:"shownAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Completion is the outcome of a successful CompleteNode call.
type Completion struct {
	Pathway   Pathway  `json:"pathway"`
	NodeID    string   `json:"nodeId"`
	FirstTime bool     `json:"firstTime"`
	Unlocked  []string `json:"unlocked"`
	Spark     *Spark   `json:"spark,omitempty"`
}

// Engine applies completions. It holds no pathway state and is safe for
// concurrent use as long as the configured clock and random source are.
type Engine struct {
	now         func() time.Time
	random      func() float64
	sparkChance float64
	sparkLinger time.Duration
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRandom replaces the source used to decide sparks. It must return values in [0, 1).
func WithRandom(random func() float64) Option {
	return func(e *Engine) {
		if random != nil {
			e.random = random
		}
	}
}

func WithSparkChance(p float64) Option {
	return func(e *Engine) {
		if p < 0 {
			p = 0
		}
		if p > 1 {
			p = 1
		}
		e.sparkChance = p
	}
}

func WithSparkLinger(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.sparkLinger = d
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:         time.Now,
		random:      rand.Float64,
		sparkChance: DefaultSparkChance,
		sparkLinger: DefaultSparkLinger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CompleteNode marks nodeID completed and unlocks its direct successors.
// The input is never modified; the returned Completion carries a fresh copy.
// Completing an already completed node is a revisit: no state change besides UpdatedAt.
func (e *Engine) CompleteNode(p Pathway, nodeID string) (Completion, error) {
	idx := -1
	for i, n := range p.Nodes {
		if n.ID == nodeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Completion{}, fmt.Errorf("%w: %q", ErrNodeNotFound, nodeID)
	}
	if !p.Nodes[idx].Unlocked {
		return Completion{}, fmt.Errorf("%w: %q", ErrGateClosed, nodeID)
	}

	out := p.Clone()
	firstTime := !out.Nodes[idx].Completed
	out.Nodes[idx].Completed = true

	targets := make(map[string]struct{})
	for _, id := range Successors(out, nodeID) {
		targets[id] = struct{}{}
	}
	var unlocked []string
	for i := range out.Nodes {
		if _, ok := targets[out.Nodes[i].ID]; !ok {
			continue
		}
		if !out.Nodes[i].Unlocked {
			out.Nodes[i].Unlocked = true
			unlocked = append(unlocked, out.Nodes[i].ID)
		}
	}

	now := e.now()
	out.UpdatedAt = now

	c := Completion{
		Pathway:   out,
		NodeID:    nodeID,
		FirstTime: firstTime,
		Unlocked:  unlocked,
	}
	if firstTime && e.sparkChance > 0 && e.random() < e.sparkChance {
		c.Spark = &Spark{
			NodeID:    nodeID,
			Topic:     out.Nodes[idx].Topic,
			ShownAt:   now,
			ExpiresAt: now.Add(e.sparkLinger),
		}
	}
	return c, nil
}
