package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/solat"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/timetable"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func newToken(complete bool, err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	if complete {
		close(t.done)
	}
	return t
}

func (t *fakeToken) Wait() bool                     { <-t.done; return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type sent struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeClient struct {
	token        *fakeToken
	messages     []sent
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.messages = append(c.messages, sent{topic, qos, retained, payload.([]byte)})
	return c.token
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func sampleTimes() solat.DayTimes {
	return solat.DayTimes{
		Zone:   "SGR01",
		Date:   "2025-09-05",
		Status: timetable.StatusMatched,
		Times:  map[string]string{timetable.FieldFajr: "05:53:00"},
	}
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "solat/SGR01/today", Topic(DefaultTopic, "SGR01"))
	assert.Equal(t, "masjid/display", Topic("masjid/display", "SGR01"))
}

func TestPublish(t *testing.T) {
	fc := &fakeClient{token: newToken(true, nil)}
	p := newPublisher(fc, withDefaults(Config{Retained: true}))

	require.NoError(t, p.Publish(context.Background(), sampleTimes()))
	require.Len(t, fc.messages, 1)

	msg := fc.messages[0]
	assert.Equal(t, "solat/SGR01/today", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.True(t, msg.retained)

	var got solat.DayTimes
	require.NoError(t, json.Unmarshal(msg.payload, &got))
	assert.Equal(t, "05:53:00", got.Times[timetable.FieldFajr])

	p.Close()
	assert.True(t, fc.disconnected)
}

func TestPublish_BrokerError(t *testing.T) {
	fc := &fakeClient{token: newToken(true, errors.New("not authorised"))}
	p := newPublisher(fc, withDefaults(Config{}))

	err := p.Publish(context.Background(), sampleTimes())
	assert.ErrorContains(t, err, "not authorised")
}

func TestPublish_Timeout(t *testing.T) {
	fc := &fakeClient{token: newToken(false, nil)}
	p := newPublisher(fc, withDefaults(Config{Timeout: 10 * time.Millisecond}))

	err := p.Publish(context.Background(), sampleTimes())
	assert.ErrorIs(t, err, ErrPublishTimeout)
}

func TestPublish_ContextCancelled(t *testing.T) {
	fc := &fakeClient{token: newToken(false, nil)}
	p := newPublisher(fc, withDefaults(Config{Timeout: time.Minute}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, sampleTimes()), context.Canceled)
}

func TestConnect_RequiresBroker(t *testing.T) {
	_, err := Connect(Config{})
	assert.Error(t, err)
}
