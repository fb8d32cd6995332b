package sender

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/y7ut/settingsgrid/channel"
)

// Writer is the part of kafka.Writer the audit trail uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func InitTopicWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
}

// Audit publishes the traffic of tapped channels to Kafka. Messages are
// keyed by endpoint and written in batches of at most size, either when a
// batch is full or on every flush tick.
type Audit struct {
	writer  Writer
	headers []kafka.Header
	size    int
	flush   time.Duration
	queue   chan kafka.Message
	now     func() time.Time
}

func NewAudit(w Writer, source string, size int, flush time.Duration) *Audit {
	if size <= 0 {
		size = 100
	}
	if flush <= 0 {
		flush = 3 * time.Second
	}
	return &Audit{
		writer:  w,
		headers: []kafka.Header{{Key: "source_agent", Value: []byte(source)}},
		size:    size,
		flush:   flush,
		queue:   make(chan kafka.Message, size*2),
		now:     time.Now,
	}
}

// Record queues one message. It never blocks: when the queue is full the
// message is dropped and logged.
func (a *Audit) Record(dir channel.Direction, endpoint, text string) {
	headers := append(append([]kafka.Header(nil), a.headers...), kafka.Header{Key: "direction", Value: []byte(dir)})
	msg := kafka.Message{
		Key:     []byte(endpoint),
		Value:   []byte(text),
		Headers: headers,
		Time:    a.now(),
	}
	select {
	case a.queue <- msg:
	default:
		log.Printf("audit queue full, dropped %s message for %s", dir, endpoint)
	}
}

// Run drains the queue until ctx is done, then flushes what is left and
// closes the writer.
func (a *Audit) Run(ctx context.Context) {
	tick := time.NewTicker(a.flush)
	defer tick.Stop()

	pending := make([]kafka.Message, 0, a.size)
	for {
		select {
		case <-ctx.Done():
		drain:
			for {
				select {
				case msg := <-a.queue:
					pending = append(pending, msg)
				default:
					break drain
				}
			}
			pending = a.write(pending)
			if err := a.writer.Close(); err != nil {
				log.Println("failed to close kafka writer:", err)
			}
			log.Println("closeing Kafka Sender ")
			return
		case <-tick.C:
			pending = a.write(pending)
		case msg := <-a.queue:
			pending = append(pending, msg)
			if len(pending) >= a.size {
				pending = a.write(pending)
			}
		}
	}
}

// write sends pending in batches and returns the emptied buffer.
func (a *Audit) write(pending []kafka.Message) []kafka.Message {
	for len(pending) > 0 {
		n := len(pending)
		if n > a.size {
			n = a.size
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := a.writer.WriteMessages(ctx, pending[:n]...)
		cancel()
		if err != nil {
			log.Println("failed to write messages:", err)
		} else {
			log.Printf("Sender total %d\n", n)
		}
		pending = pending[n:]
	}
	return pending[:0]
}

var _ channel.Recorder = (*Audit)(nil)
