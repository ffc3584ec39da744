package fix

// Message is a FIX message: a message-type code plus an ordered tag
// container. Header fields injected by the codec (8, 9, 34, 49, 52, 56, 10)
// live in the same container on decoded messages.
type Message struct {
	Container
	Type MsgType
}

// NewMessage returns an empty message of the given type.
func NewMessage(t MsgType) *Message {
	return &Message{Container: *NewContainer(), Type: t}
}

// NewMessageWith builds a message and sets the given tag/value pairs in
// order: NewMessageWith(MsgTypeLogon, TagEncryptMethod, 0, TagHeartBtInt, 30).
func NewMessageWith(t MsgType, pairs ...any) *Message {
	m := NewMessage(t)
	for i := 0; i+1 < len(pairs); i += 2 {
		switch tag := pairs[i].(type) {
		case Tag:
			_ = m.Set(tag, pairs[i+1])
		case int:
			_ = m.Set(Tag(tag), pairs[i+1])
		}
	}
	return m
}

// Query returns the values of the requested tags as a map. Tag 35 resolves
// to the message type; absent tags are omitted; ambiguous tags render as
// "#err#".
func (m *Message) Query(tags ...Tag) map[Tag]string {
	out := make(map[Tag]string, len(tags))
	for _, tag := range tags {
		if tag == TagMsgType {
			out[tag] = string(m.Type)
			continue
		}
		v, err := m.Get(tag)
		switch {
		case err == nil:
			out[tag] = v
		case m.Contains(tag):
			out[tag] = "#err#"
		}
	}
	return out
}

// Equal reports equality of type and canonical container form.
func (m *Message) Equal(o *Message) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.Type == o.Type && m.Container.Equal(&o.Container)
}
