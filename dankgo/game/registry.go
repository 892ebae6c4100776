package game

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"

	"github.com/danktimes/dankgo/dankgo/game/settings"
	"github.com/danktimes/dankgo/dankgo/plugins"
)

// Registry owns every live chat, keyed by chat id. The setting template
// registry and plugin host are shared by reference with each chat it
// creates.
type Registry struct {
	mu        sync.RWMutex
	chats     map[snowflake.ID]*Chat
	templates *settings.Registry
	events    *plugins.Host
}

func NewRegistry(templates *settings.Registry, events *plugins.Host) *Registry {
	return &Registry{
		chats:     make(map[snowflake.ID]*Chat),
		templates: templates,
		events:    events,
	}
}

func (r *Registry) Get(id snowflake.ID) *Chat {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chats[id]
}

// GetOrCreate returns the chat for id, creating a stopped one on first
// contact.
func (r *Registry) GetOrCreate(id snowflake.ID) *Chat {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.chats[id]; ok {
		return c
	}
	c := NewChat(id, r.templates, r.events)
	r.chats[id] = c
	return c
}

// Put installs a restored chat, replacing any existing entry.
func (r *Registry) Put(c *Chat) {
	r.mu.Lock()
	r.chats[c.ID] = c
	r.mu.Unlock()
}

func (r *Registry) Remove(id snowflake.ID) {
	r.mu.Lock()
	delete(r.chats, id)
	r.mu.Unlock()
}

func (r *Registry) All() []*Chat {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Chat, 0, len(r.chats))
	for _, c := range r.chats {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chats)
}
