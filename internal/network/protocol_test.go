package network

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amalg/go-tetris/internal/game"
)

func TestEncodeDecodeFrame(t *testing.T) {
	engine := game.NewEngine()
	engine.Spawn()
	snap := engine.Snapshot()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, MsgFrame, FrameMsg{Snapshot: snap}))

	env, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, MsgFrame, env.Type)

	var frame FrameMsg
	require.NoError(t, DecodePayload(env, &frame))
	assert.Equal(t, snap, frame.Snapshot)
}

func TestDecodeRejectsOversizedMessage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, uint32(MaxMessageSize+1)))

	_, err := Decode(&buf)
	assert.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestDecodeTruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, MsgHello, HelloMsg{Name: "Bob"}))
	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-2])

	_, err := Decode(truncated)
	assert.Error(t, err)
}
