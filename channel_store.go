package psd

import (
	"github.com/pkg/errors"

	"github.com/go-photoshop/gopsd/compression"
)

// ChannelStore is the per-layer mapping role_id -> channel. It preserves
// role-kind identity (color vs. alpha vs. the two mask kinds) and is the
// unit a parallel decode operates over: each slot is independently
// owned, so concurrent Decode calls across distinct ids touch disjoint
// memory.
type ChannelStore struct {
	channels map[ChannelRoleID]*Channel
}

func NewChannelStore() *ChannelStore {
	return &ChannelStore{channels: make(map[ChannelRoleID]*Channel)}
}

func (s *ChannelStore) Get(id ChannelRoleID) (*Channel, bool) {
	c, ok := s.channels[id]
	return c, ok
}

func (s *ChannelStore) Put(c *Channel) {
	s.channels[c.RoleID] = c
}

// Extract removes a channel from the store entirely, returning it. This
// differs from Channel.Extract (which only discards the decoded/payload
// caches) by also removing the slot from the map: ownership moves to
// the caller and the slot is gone, not just emptied.
func (s *ChannelStore) Extract(id ChannelRoleID) (*Channel, error) {
	c, ok := s.channels[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "channel role %d", id)
	}
	delete(s.channels, id)
	return c, nil
}

func (s *ChannelStore) IDs() []ChannelRoleID {
	ids := make([]ChannelRoleID, 0, len(s.channels))
	for id := range s.channels {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

func (s *ChannelStore) Len() int { return len(s.channels) }

// SetCompression re-targets every channel in the store to a single
// compression method, used by the document-wide set_compression
// operation. After this call no channel's codec differs from method.
func (s *ChannelStore) SetCompression(method compression.Method) {
	for _, c := range s.channels {
		c.SetCompression(method)
	}
}
