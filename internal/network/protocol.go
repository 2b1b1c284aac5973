package network

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/amalg/go-tetris/internal/game"
)

// MaxMessageSize bounds a single message body.
const MaxMessageSize = 1 << 20

var ErrMessageTooLarge = errors.New("message too large")

// MsgType identifies the type of network message.
type MsgType string

const (
	MsgHello   MsgType = "hello"
	MsgWelcome MsgType = "welcome"
	MsgFrame   MsgType = "frame"
	MsgError   MsgType = "error"
)

// Envelope wraps all messages with a type discriminator for deserialization.
type Envelope struct {
	Type    MsgType         `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// HelloMsg is sent by a watcher when it connects.
type HelloMsg struct {
	Name string `json:"name"`
}

// WelcomeMsg answers a hello.
type WelcomeMsg struct {
	WatcherID string `json:"watcher_id"`
	Player    string `json:"player"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// FrameMsg carries one snapshot of the watched game.
type FrameMsg struct {
	Snapshot game.Snapshot `json:"snapshot"`
}

// ErrorMsg notifies a watcher of an error.
type ErrorMsg struct {
	Message string `json:"message"`
}

// Encode writes a message as a 4-byte big-endian length followed by the
// JSON envelope.
func Encode(w io.Writer, msgType MsgType, payload any) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	body, err := json.Marshal(Envelope{
		Type:    msgType,
		Payload: payloadBytes,
	})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if len(body) > MaxMessageSize {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(body))
	}

	// One write so concurrent readers never see a header without its body.
	buf := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(buf, uint32(len(body)))
	copy(buf[4:], body)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Decode reads a length-prefixed JSON message from the reader.
func Decode(r io.Reader) (*Envelope, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, fmt.Errorf("read length: %w", err)
	}
	if length > MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return &env, nil
}

// DecodePayload unmarshals the payload from an envelope into the target struct.
func DecodePayload(env *Envelope, target any) error {
	return json.Unmarshal(env.Payload, target)
}
