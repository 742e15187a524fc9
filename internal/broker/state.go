package broker

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Payload is the opaque per-message type flowing through the core. The
// core never inspects it; Transport decodes/encodes at the HTTP boundary
// (SPEC_FULL §3) so the broker stays codec-agnostic.
type Payload = json.RawMessage

// SharedState is the process-lifetime collection of every topic plus the
// persistence event queue (spec §4.4). Message topics and task topics are
// independently guarded maps — there is no global lock and no lock
// composition across collections, matching the teacher's per-collection
// mutex discipline (modules/eventbus/memory.go's subscription registry).
type SharedState struct {
	logger *slog.Logger

	messageMu     sync.RWMutex
	messageTopics map[string]*MessageTopic[Payload]

	taskMu     sync.RWMutex
	taskTopics map[string]*TaskTopic[Payload]

	events *EventQueue

	closeOnce sync.Once
}

// NewSharedState creates an empty broker state with its own event queue.
func NewSharedState(logger *slog.Logger) *SharedState {
	return &SharedState{
		logger:        logger,
		messageTopics: make(map[string]*MessageTopic[Payload]),
		taskTopics:    make(map[string]*TaskTopic[Payload]),
		events:        NewEventQueue(),
	}
}

// Events returns the shared persistence event queue drained by the worker
// pool (spec §4.1/§4.7).
func (s *SharedState) Events() *EventQueue { return s.events }

// Close marks the state closed: the event queue stops accepting new
// events. Idempotent. It does not touch topic collections — in-memory
// topic state simply vanishes with the process, per spec §5.
func (s *SharedState) Close() {
	s.closeOnce.Do(func() {
		s.events.Close()
		s.logger.Info("shared state closed")
	})
}

func (s *SharedState) allMessageTopics() []*MessageTopic[Payload] {
	s.messageMu.RLock()
	defer s.messageMu.RUnlock()
	out := make([]*MessageTopic[Payload], 0, len(s.messageTopics))
	for _, t := range s.messageTopics {
		out = append(out, t)
	}
	return out
}

func (s *SharedState) messageTopic(name string) (*MessageTopic[Payload], bool) {
	s.messageMu.RLock()
	defer s.messageMu.RUnlock()
	t, ok := s.messageTopics[name]
	return t, ok
}

func (s *SharedState) createMessageTopic(name string, logger *slog.Logger) (*MessageTopic[Payload], error) {
	s.messageMu.Lock()
	defer s.messageMu.Unlock()
	if _, ok := s.messageTopics[name]; ok {
		return nil, ErrTopicAlreadyExists
	}
	t := NewMessageTopic[Payload](name, logger)
	s.messageTopics[name] = t
	return t, nil
}

func (s *SharedState) deleteMessageTopic(name string) error {
	s.messageMu.Lock()
	defer s.messageMu.Unlock()
	if _, ok := s.messageTopics[name]; !ok {
		return ErrTopicNotFound
	}
	delete(s.messageTopics, name)
	return nil
}

func (s *SharedState) allTaskTopics() []*TaskTopic[Payload] {
	s.taskMu.RLock()
	defer s.taskMu.RUnlock()
	out := make([]*TaskTopic[Payload], 0, len(s.taskTopics))
	for _, t := range s.taskTopics {
		out = append(out, t)
	}
	return out
}

func (s *SharedState) taskTopic(name string) (*TaskTopic[Payload], bool) {
	s.taskMu.RLock()
	defer s.taskMu.RUnlock()
	t, ok := s.taskTopics[name]
	return t, ok
}

func (s *SharedState) createTaskTopic(name string, logger *slog.Logger) (*TaskTopic[Payload], error) {
	s.taskMu.Lock()
	defer s.taskMu.Unlock()
	if _, ok := s.taskTopics[name]; ok {
		return nil, ErrTopicAlreadyExists
	}
	t := NewTaskTopic[Payload](name, logger)
	s.taskTopics[name] = t
	return t, nil
}

func (s *SharedState) deleteTaskTopic(name string) error {
	s.taskMu.Lock()
	defer s.taskMu.Unlock()
	if _, ok := s.taskTopics[name]; !ok {
		return ErrTopicNotFound
	}
	delete(s.taskTopics, name)
	return nil
}
