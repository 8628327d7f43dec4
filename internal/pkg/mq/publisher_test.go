package mq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	b, err := Encode(map[string]string{"type": "booking.created", "booking_id": "b1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"booking.created","booking_id":"b1"}`, string(b))

	_, err = Encode(make(chan int))
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	var n Noop
	assert.NoError(t, n.PublishJSON(context.Background(), "booking.created", struct{}{}))
	assert.NoError(t, n.Close())
}

func TestNewPublisherBadURL(t *testing.T) {
	_, err := NewPublisher("not a broker url", "hall-booking.events")
	assert.Error(t, err)
}
