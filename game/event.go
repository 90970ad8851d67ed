package game

import (
	"sync"

	"github.com/olivierh59500/gravity-puzzle-go/logging"
	"github.com/olivierh59500/gravity-puzzle-go/simulation"
	"go.uber.org/zap"
)

// EventType identifies what an Event reports
type EventType int

const (
	EventMerge EventType = iota
	EventScore
	EventLevelStart
	EventLevelComplete
	EventGameComplete
	EventPhase
)

func (t EventType) String() string {
	switch t {
	case EventMerge:
		return "merge"
	case EventScore:
		return "score"
	case EventLevelStart:
		return "level_start"
	case EventLevelComplete:
		return "level_complete"
	case EventGameComplete:
		return "game_complete"
	case EventPhase:
		return "phase"
	default:
		return "unknown"
	}
}

// Event is a transient notification for render, audio and score observers
type Event struct {
	Type  EventType
	Tick  int // Session tick the event was raised on
	Level int
	Score int // Running total after the event
	Delta int // Score change carried by EventScore, bonus for completions
	Merge simulation.MergeEvent
	Phase Phase
}

// EventQueue is a FIFO of events drained by the host once per frame
type EventQueue struct {
	mu     sync.Mutex
	events []Event
}

// NewEventQueue creates an empty queue
func NewEventQueue() *EventQueue {
	return &EventQueue{events: make([]Event, 0, 32)}
}

// Push appends an event
func (q *EventQueue) Push(ev Event) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
}

// Consume returns all queued events in order and empties the queue
func (q *EventQueue) Consume() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = make([]Event, 0, cap(out))
	return out
}

// Len returns the number of queued events
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Sink observes events; it must not feed back into the simulation
type Sink interface {
	HandleEvent(ev Event)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(ev Event)

func (f SinkFunc) HandleEvent(ev Event) { f(ev) }

// Dispatch delivers every event to every sink, in order
func Dispatch(events []Event, sinks ...Sink) {
	for _, ev := range events {
		for _, s := range sinks {
			if s != nil {
				s.HandleEvent(ev)
			}
		}
	}
}

// LogSink writes events to a logger
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink that logs merges at debug and milestones at info
func NewLogSink(logger *zap.Logger) *LogSink {
	logger = logging.OrNop(logger)
	return &LogSink{logger: logger}
}

func (s *LogSink) HandleEvent(ev Event) {
	switch ev.Type {
	case EventMerge:
		s.logger.Debug("Particles merged",
			zap.Int("survivor", ev.Merge.SurvivorID),
			zap.Int("absorbed", ev.Merge.AbsorbedID),
			zap.Float64("mass", ev.Merge.Mass),
			zap.Int("tick", ev.Tick))
	case EventLevelStart:
		s.logger.Info("Level started", zap.Int("level", ev.Level))
	case EventLevelComplete:
		s.logger.Info("Level complete",
			zap.Int("level", ev.Level),
			zap.Int("bonus", ev.Delta),
			zap.Int("score", ev.Score))
	case EventGameComplete:
		s.logger.Info("Game complete", zap.Int("score", ev.Score))
	}
}
