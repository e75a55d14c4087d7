package core

// State is the shared value threaded through a workflow run: the ordered
// conversation transcript plus a key/value scratch area for nodes and tools.
//
// A State is owned by a single run loop and is not safe for concurrent
// mutation; Clone produces an independent snapshot for checkpointing.
type State struct {
	Messages []Message      `json:"messages"`
	Values   map[string]any `json:"values,omitempty"`
}

// NewState constructs a State seeded with the given messages.
func NewState(msgs ...Message) *State {
	s := &State{Values: map[string]any{}}
	s.AddMessages(msgs...)
	return s
}

// AddMessages appends messages to the transcript in order.
func (s *State) AddMessages(msgs ...Message) {
	s.Messages = append(s.Messages, msgs...)
}

// LastMessage returns the most recent transcript entry.
func (s *State) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// LastMessageFrom returns the most recent assistant message attributed to the
// named agent.
func (s *State) LastMessageFrom(name string) (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		m := s.Messages[i]
		if m.Role == RoleAssistant && m.Name == name {
			return m, true
		}
	}
	return Message{}, false
}

// Get returns a scratch value and an existence flag.
func (s *State) Get(key string) (any, bool) {
	if s.Values == nil {
		return nil, false
	}
	v, ok := s.Values[key]
	return v, ok
}

// Set stores a scratch value.
func (s *State) Set(key string, value any) {
	if s.Values == nil {
		s.Values = map[string]any{}
	}
	s.Values[key] = value
}

// Clone returns a deep copy safe for independent mutation.
func (s *State) Clone() *State {
	c := &State{
		Messages: make([]Message, 0, len(s.Messages)),
		Values:   make(map[string]any, len(s.Values)),
	}
	for _, m := range s.Messages {
		c.Messages = append(c.Messages, m.Clone())
	}
	for k, v := range s.Values {
		c.Values[k] = v
	}
	return c
}

// Command is a node's routing directive: messages to fold into the shared
// state plus the name of the next node to hand control to. An empty Goto
// defers to the node's static edge; the graph package's End sentinel
// terminates the run.
type Command struct {
	Goto   string
	Update []Message
}
