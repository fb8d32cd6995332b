package channel

import "github.com/y7ut/settingsgrid/settings"

// Direction tells which way a tapped message travelled.
type Direction string

const (
	Inbound  Direction = "in"
	Outbound Direction = "out"
)

// Recorder is told about every message passing a tapped channel.
type Recorder interface {
	Record(dir Direction, endpoint, text string)
}

type tapped struct {
	settings.LiveChannel
	rec      Recorder
	endpoint string
}

// Tap wraps ch so that rec sees each successfully queued outbound message and
// each inbound message before it is handled.
func Tap(ch settings.LiveChannel, rec Recorder) settings.LiveChannel {
	return &tapped{LiveChannel: ch, rec: rec}
}

func (t *tapped) Connect(endpoint string) error {
	t.endpoint = endpoint
	return t.LiveChannel.Connect(endpoint)
}

func (t *tapped) Send(text string) error {
	if err := t.LiveChannel.Send(text); err != nil {
		return err
	}
	t.rec.Record(Outbound, t.endpoint, text)
	return nil
}

func (t *tapped) OnMessage(handler func(text string) error) {
	t.LiveChannel.OnMessage(func(text string) error {
		t.rec.Record(Inbound, t.endpoint, text)
		return handler(text)
	})
}
