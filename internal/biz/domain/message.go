package domain

import "github.com/google/uuid"

// MsgType represents the kind of content a message carries
type MsgType string

const (
	MsgTypeChat   MsgType = "chat"
	MsgTypeAudio  MsgType = "audio"
	MsgTypePTT    MsgType = "ptt"
	MsgTypeVCard  MsgType = "vcard"
	MsgTypeSystem MsgType = "system"
	// MsgTypeStop is a poison pill: the consuming worker observes it,
	// terminates its loop and never forwards it.
	MsgTypeStop MsgType = "stop"
)

// ClientType represents the transport channel a sender is bound to
type ClientType string

const (
	ClientWhatsAppWeb      ClientType = "whatsapp_web"
	ClientWhatsAppBusiness ClientType = "whatsapp_business"
	ClientEmulator         ClientType = "emulator"
)

// ValidMsgType reports whether t is an inbound message type the bot accepts
func ValidMsgType(t MsgType) bool {
	switch t {
	case MsgTypeChat, MsgTypeAudio, MsgTypePTT, MsgTypeVCard:
		return true
	}
	return false
}

// ValidClientType reports whether c names a known transport channel
func ValidClientType(c ClientType) bool {
	switch c {
	case ClientWhatsAppWeb, ClientWhatsAppBusiness, ClientEmulator:
		return true
	}
	return false
}

// Message is one inbound or outbound unit of conversation. It is immutable
// once constructed; a reply is a new Message derived from the original,
// never a mutation.
type Message struct {
	ID          string
	Sender      string
	Type        MsgType
	Body        string
	ClientType  ClientType
	Metadata    map[string]any
	Attachments map[string]any

	// ReplyCh, when non-nil, lets a synchronous caller block for the
	// router's direct answer instead of polling the outbound queue.
	// Buffered with capacity 1 so the router never blocks on it.
	ReplyCh chan *Message
}

// NewMessage creates a message envelope
func NewMessage(sender string, msgType MsgType, body string, clientType ClientType) *Message {
	return &Message{
		ID:         uuid.New().String(),
		Sender:     sender,
		Type:       msgType,
		Body:       body,
		ClientType: clientType,
	}
}

// StopMessage creates the poison pill used for clean shutdown
func StopMessage() *Message {
	return &Message{ID: uuid.New().String(), Type: MsgTypeStop}
}

// IsStop reports whether the message is the poison pill
func (m *Message) IsStop() bool {
	return m.Type == MsgTypeStop
}

// Reply derives a new outbound message addressed back to the sender
func (m *Message) Reply(body string) *Message {
	return &Message{
		ID:         uuid.New().String(),
		Sender:     m.Sender,
		Type:       MsgTypeChat,
		Body:       body,
		ClientType: m.ClientType,
	}
}

// ReplyWithAttachments derives a reply carrying attachments
func (m *Message) ReplyWithAttachments(body string, attachments map[string]any) *Message {
	reply := m.Reply(body)
	reply.Attachments = attachments
	return reply
}

// WithReplyChannel derives a copy of the message carrying a one-shot reply
// channel for synchronous callers
func (m *Message) WithReplyChannel(ch chan *Message) *Message {
	clone := *m
	clone.ReplyCh = ch
	return &clone
}
