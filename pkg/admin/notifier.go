package admin

import (
	"fmt"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

const historyLimit = 20

// Dispatch asks the notification actor to hand a deep link to the customer.
type Dispatch struct {
	OrderID string
	Phone   string
	Status  string
	URL     string
}

// History requests the dispatches sent for one order, oldest first.
type History struct {
	OrderID string
}

// HistoryResponse answers a History request.
type HistoryResponse struct {
	Notifications []Notification
}

type Notification struct {
	Phone  string    `json:"phone"`
	Status string    `json:"status"`
	URL    string    `json:"url"`
	SentAt time.Time `json:"sent_at"`
}

// NotificationActor processes dispatches one at a time and remembers the most
// recent ones per order.
type NotificationActor struct {
	logger  *zap.Logger
	history map[string][]Notification
	now     func() time.Time
}

func (a *NotificationActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		a.history = make(map[string][]Notification)
		a.logger.Info("Notification actor started")

	case *Dispatch:
		a.logger.Info("Sending notification",
			zap.String("order_id", msg.OrderID),
			zap.String("recipient", msg.Phone),
			zap.String("status", msg.Status))

		sent := append(a.history[msg.OrderID], Notification{
			Phone:  msg.Phone,
			Status: msg.Status,
			URL:    msg.URL,
			SentAt: a.now(),
		})
		if len(sent) > historyLimit {
			sent = sent[len(sent)-historyLimit:]
		}
		a.history[msg.OrderID] = sent

	case *History:
		sent := a.history[msg.OrderID]
		out := make([]Notification, len(sent))
		copy(out, sent)
		ctx.Respond(&HistoryResponse{Notifications: out})

	case *actor.Stopping:
		a.logger.Info("Notification actor stopping")
	}
}

// Notifier fronts a NotificationActor running in its own actor system.
type Notifier struct {
	system  *actor.ActorSystem
	pid     *actor.PID
	timeout time.Duration
}

func NewNotifier(logger *zap.Logger) (*Notifier, error) {
	system := actor.NewActorSystem()

	props := actor.PropsFromProducer(func() actor.Actor {
		return &NotificationActor{logger: logger.Named("notification-actor"), now: time.Now}
	})
	pid, err := system.Root.SpawnNamed(props, "notification-actor")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn notification actor: %w", err)
	}

	return &Notifier{system: system, pid: pid, timeout: 5 * time.Second}, nil
}

// Send is fire-and-forget.
func (n *Notifier) Send(d Dispatch) {
	n.system.Root.Send(n.pid, &d)
}

// History returns the dispatches recorded for an order.
func (n *Notifier) History(orderID string) ([]Notification, error) {
	result, err := n.system.Root.RequestFuture(n.pid, &History{OrderID: orderID}, n.timeout).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get notification history: %w", err)
	}
	resp, ok := result.(*HistoryResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected notification history response %T", result)
	}
	return resp.Notifications, nil
}

func (n *Notifier) Close() {
	n.system.Root.Stop(n.pid)
	n.system.Shutdown()
}
