package chat

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/mindfulu-platform/pkg/logging"
)

// Archive mirrors transcript messages to durable storage. It is write-behind:
// failures are logged and never affect the in-memory transcript.
type Archive interface {
	Append(ctx context.Context, sessionID string, msg Message) error
}

// Observer receives session metrics.
type Observer interface {
	ObserveMessage(author Author)
	ObserveRejected(reason string)
	ObserveReply(latency time.Duration, err error)
}

var errEmptyReply = errors.New("chat: generator returned an empty reply")

// Options configures a Session. Zero values fall back to the reference
// behavior: canned replies with a 1.5s-2.5s typing delay.
type Options struct {
	ID        string
	Greeting  string
	Generator ReplyGenerator
	Delay     DelayPolicy
	Clock     Clock
	Archive   Archive
	Observer  Observer
	Logger    *logging.Logger
}

func (o Options) withDefaults() Options {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Greeting == "" {
		o.Greeting = DefaultGreeting
	}
	if o.Generator == nil {
		o.Generator = NewCannedReplies(nil)
	}
	if o.Delay == nil {
		o.Delay = NewUniformDelay(1500*time.Millisecond, 2500*time.Millisecond, nil)
	}
	if o.Clock == nil {
		o.Clock = RealClock{}
	}
	if o.Logger == nil {
		o.Logger = logging.Default()
	}
	return o
}

// Session is one visitor's conversation. The transcript and pending flag are
// only mutated through SendMessage and the reply it schedules.
type Session struct {
	id        string
	generator ReplyGenerator
	delay     DelayPolicy
	clock     Clock
	archive   Archive
	observer  Observer
	logger    *logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	transcript []Message
	nextID     uint64
	pending    bool
	closed     bool
	lastErr    error
	lastActive time.Time

	// outbox holds events and archive writes in transcript order. Items are
	// queued while holding mu and drained by dispatch, which never takes mu,
	// so a slow listener or archive cannot stall the session.
	qMu      sync.Mutex
	qIdle    *sync.Cond
	outbox   []outboxItem
	draining bool
	wake     chan struct{}

	subMu   sync.Mutex
	subs    map[int]Listener
	nextSub int
}

type outboxItem struct {
	mirror *Message
	event  *Event
}

// NewSession starts a session seeded with the assistant greeting.
func NewSession(opts Options) *Session {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:        opts.ID,
		generator: opts.Generator,
		delay:     opts.Delay,
		clock:     opts.Clock,
		archive:   opts.Archive,
		observer:  opts.Observer,
		logger:    opts.Logger.Component("chat"),
		ctx:       ctx,
		cancel:    cancel,
		subs:      make(map[int]Listener),
		wake:      make(chan struct{}, 1),
	}
	s.qIdle = sync.NewCond(&s.qMu)
	greeting := s.appendLocked(AuthorAssistant, opts.Greeting)
	s.lastActive = greeting.SentAt
	s.enqueue(outboxItem{mirror: &greeting})
	go s.dispatch()
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Subscribe registers a listener and returns a function that removes it.
func (s *Session) Subscribe(l Listener) func() {
	if l == nil {
		return func() {}
	}
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = l
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// SendMessage appends a user message and schedules exactly one assistant
// reply. Blank text and sends while a reply is pending are rejected without
// touching the transcript.
func (s *Session) SendMessage(text string) (Message, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Message{}, ErrSessionClosed
	}
	if strings.TrimSpace(text) == "" {
		s.mu.Unlock()
		s.reject("empty")
		return Message{}, ErrEmptyMessage
	}
	if s.pending {
		s.mu.Unlock()
		s.reject("pending")
		return Message{}, ErrReplyPending
	}

	msg := s.appendLocked(AuthorUser, text)
	s.pending = true
	s.lastErr = nil
	s.lastActive = msg.SentAt
	delay := s.delay.Next()
	s.wg.Add(1)
	go s.deliver(text, delay)
	s.enqueue(
		outboxItem{mirror: &msg, event: &Event{Type: EventMessage, SessionID: s.id, Message: msg}},
		outboxItem{event: &Event{Type: EventTyping, SessionID: s.id}},
	)
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.ObserveMessage(AuthorUser)
	}
	return msg, nil
}

// deliver runs the deferred half of a turn. It never touches a closed session.
func (s *Session) deliver(userText string, delay time.Duration) {
	defer s.wg.Done()

	started := s.clock.Now()
	reply, genErr := s.generator.Generate(s.ctx, userText)
	if wait := delay - s.clock.Now().Sub(started); wait > 0 {
		select {
		case <-s.ctx.Done():
			return
		case <-s.clock.After(wait):
		}
	}
	if genErr == nil && strings.TrimSpace(reply) == "" {
		genErr = errEmptyReply
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Debug("discarding reply for closed session", "session_id", s.id)
		return
	}
	s.pending = false
	if genErr != nil {
		err := fmt.Errorf("%w: %w", ErrReplyGenerationFailed, genErr)
		s.lastErr = err
		s.enqueue(outboxItem{event: &Event{Type: EventError, SessionID: s.id, Err: err}})
		s.mu.Unlock()
		s.logger.Error("reply generation failed", "session_id", s.id, "error", genErr)
		if s.observer != nil {
			s.observer.ObserveReply(s.clock.Now().Sub(started), err)
		}
		return
	}
	msg := s.appendLocked(AuthorAssistant, reply)
	s.lastActive = msg.SentAt
	s.enqueue(outboxItem{mirror: &msg, event: &Event{Type: EventMessage, SessionID: s.id, Message: msg}})
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.ObserveMessage(AuthorAssistant)
		s.observer.ObserveReply(s.clock.Now().Sub(started), nil)
	}
}

// Pending reports whether an assistant reply is outstanding.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// LastError returns the most recent reply failure, cleared by the next send.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Len returns the transcript length.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transcript)
}

// LastActive returns when the transcript last grew.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Snapshot copies the transcript.
func (s *Session) Snapshot() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.transcript...)
}

// Messages yields the transcript in order. Each iteration starts from a fresh
// copy, so the sequence can be ranged over repeatedly.
func (s *Session) Messages() iter.Seq[Message] {
	return func(yield func(Message) bool) {
		for _, m := range s.Snapshot() {
			if !yield(m) {
				return
			}
		}
	}
}

// Close tears the session down. An outstanding reply is cancelled and will
// never be appended.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.pending = false
	s.mu.Unlock()
	s.cancel()

	s.qMu.Lock()
	s.qIdle.Broadcast()
	s.qMu.Unlock()
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Done is closed when the session is torn down.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Wait blocks until any scheduled reply has finished or been discarded and
// its events have reached the listeners. After Close it only waits for the
// reply goroutine.
func (s *Session) Wait() {
	s.wg.Wait()
	s.qMu.Lock()
	for (len(s.outbox) > 0 || s.draining) && s.ctx.Err() == nil {
		s.qIdle.Wait()
	}
	s.qMu.Unlock()
}

func (s *Session) appendLocked(author Author, text string) Message {
	s.nextID++
	msg := Message{
		ID:     s.nextID,
		Author: author,
		Text:   text,
		SentAt: s.clock.Now().UTC(),
	}
	s.transcript = append(s.transcript, msg)
	return msg
}

// enqueue must be called with mu held so queue order matches transcript order.
func (s *Session) enqueue(items ...outboxItem) {
	s.qMu.Lock()
	s.outbox = append(s.outbox, items...)
	s.qMu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// dispatch delivers queued items one at a time until the session is closed.
// Items still queued at close are dropped.
func (s *Session) dispatch() {
	for {
		if s.ctx.Err() != nil {
			s.stopDispatch()
			return
		}
		select {
		case <-s.ctx.Done():
			s.stopDispatch()
			return
		case <-s.wake:
		}
		for s.ctx.Err() == nil {
			s.qMu.Lock()
			if len(s.outbox) == 0 {
				s.draining = false
				s.qIdle.Broadcast()
				s.qMu.Unlock()
				break
			}
			item := s.outbox[0]
			s.outbox = s.outbox[1:]
			s.draining = true
			s.qMu.Unlock()

			if item.mirror != nil {
				s.mirror(*item.mirror)
			}
			if item.event != nil {
				s.emit(*item.event)
			}
		}
	}
}

func (s *Session) stopDispatch() {
	s.qMu.Lock()
	s.outbox = nil
	s.draining = false
	s.qIdle.Broadcast()
	s.qMu.Unlock()
}

func (s *Session) emit(ev Event) {
	s.subMu.Lock()
	listeners := make([]Listener, 0, len(s.subs))
	for _, l := range s.subs {
		listeners = append(listeners, l)
	}
	s.subMu.Unlock()
	for _, l := range listeners {
		l(ev)
	}
}

func (s *Session) mirror(msg Message) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Append(s.ctx, s.id, msg); err != nil {
		s.logger.Warn("transcript archive append failed", "session_id", s.id, "message_id", msg.ID, "error", err)
	}
}

func (s *Session) reject(reason string) {
	if s.observer != nil {
		s.observer.ObserveRejected(reason)
	}
}
