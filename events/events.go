// Package events publishes pathway progress notifications.
package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/andrewpaige1/eduengage-api/logger"
)

const (
	TypePathwayUpdated = "pathway.updated"
	TypeCuriositySpark = "curiosity.spark"
)

type Event struct {
	Type      string    `json:"type"`
	PathwayID string    `json:"pathwayId"`
	OwnerID   string    `json:"ownerId"`
	At        time.Time `json:"at"`
	Payload   any       `json:"payload,omitempty"`
}

type Notifier interface {
	Publish(ctx context.Context, ev Event) error
}

// LogNotifier writes every event to the log.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(baseLog *logger.Logger) *LogNotifier {
	return &LogNotifier{log: baseLog.With("component", "LogNotifier")}
}

func (n *LogNotifier) Publish(_ context.Context, ev Event) error {
	n.log.Info("event", "type", ev.Type, "pathway_id", ev.PathwayID, "owner_id", ev.OwnerID, "at", ev.At)
	return nil
}

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.Err
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
