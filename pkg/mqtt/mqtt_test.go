package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectWithoutBrokerDisablesPublishing(t *testing.T) {
	m := New()
	require.NoError(t, m.Connect("", "ltcd"))

	done := make(chan struct{})
	go func() {
		m.Service()
		close(done)
	}()

	assert.True(t, m.Publish(Message{Topic: "ltc/timecode", Payload: []byte("{}")}))
	require.NoError(t, m.Close())
	<-done
}

func TestPublishDropsWhenQueueIsFull(t *testing.T) {
	m := New()
	for i := 0; i < queueSize; i++ {
		require.True(t, m.Publish(Message{Topic: "t"}))
	}

	for i := 0; i < 30; i++ {
		assert.False(t, m.Publish(Message{Topic: "t"}))
	}
	assert.Equal(t, uint64(30), m.Dropped())
	assert.Equal(t, uint64(30), m.droppedRun)

	// draining one message ends the run, the total stays
	<-m.C
	require.True(t, m.Publish(Message{Topic: "t"}))
	assert.Zero(t, m.droppedRun)
	assert.Equal(t, uint64(30), m.Dropped())
}
