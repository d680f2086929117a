package notifier

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	"pastehub/pkg/models"
)

const ViewsQueue = "text-views"

type Broadcaster interface {
	Broadcast(event string, data interface{})
}

type Consumer interface {
	Consume(queue string, handler func([]byte) error) error
}

// TextViewUpdate is the realtime event emitted for every consumed view
// message.
type TextViewUpdate struct {
	TextID    string `json:"textId"`
	Timestamp string `json:"timestamp"`
}

// TextUpdated is the realtime event emitted when an author edits a text.
type TextUpdated struct {
	TextID      string              `json:"textId"`
	UpdatedText models.UpdateFields `json:"updatedText"`
}

// Notifier bridges the view-event queue to connected websocket subscribers
// and relays synchronous edit notifications.
type Notifier struct {
	broker     Consumer
	hub        Broadcaster
	retryDelay time.Duration
	done       chan struct{}
}

func New(broker Consumer, hub Broadcaster) *Notifier {
	return &Notifier{
		broker:     broker,
		hub:        hub,
		retryDelay: 5 * time.Second,
		done:       make(chan struct{}),
	}
}

// Start attaches the queue consumer in the background. While the broker is
// unreachable the attach is retried at a fixed delay, indefinitely.
func (n *Notifier) Start() {
	go func() {
		for {
			err := n.broker.Consume(ViewsQueue, n.handleMessage)
			if err == nil {
				log.Printf("[NOTIFIER] consuming %s", ViewsQueue)
				return
			}
			log.Printf("[NOTIFIER] consumer attach failed: %v — retry in %s", err, n.retryDelay)

			select {
			case <-n.done:
				return
			case <-time.After(n.retryDelay):
			}
		}
	}()
}

// handleMessage fans one view message out to every subscriber. A parse
// failure is returned so the broker drops the message.
func (n *Notifier) handleMessage(body []byte) error {
	var msg models.ViewMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return err
	}

	n.hub.Broadcast("text-view-update", TextViewUpdate{
		TextID:    strconv.Itoa(msg.TextID),
		Timestamp: msg.Timestamp.Format(time.RFC3339),
	})
	return nil
}

// BroadcastEdit pushes an item-updated event straight to subscribers, no
// queue in between. Nobody connected means the notification is lost.
func (n *Notifier) BroadcastEdit(textID int, fields models.UpdateFields) {
	n.hub.Broadcast("text-updated", TextUpdated{
		TextID:      strconv.Itoa(textID),
		UpdatedText: fields,
	})
}

func (n *Notifier) Stop() {
	select {
	case <-n.done:
	default:
		close(n.done)
	}
}
