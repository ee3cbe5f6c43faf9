package notifier

import (
	"bpm-backend/models"
	"sync"
)

// Recorder запоминает события вместо доставки
type Recorder struct {
	mu     sync.Mutex
	events []models.NotifyEvent
}

func (r *Recorder) Send(events ...models.NotifyEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, event := range events {
		if len(event.Recipients) == 0 {
			continue
		}
		r.events = append(r.events, event)
	}
}

func (r *Recorder) Events() []models.NotifyEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.NotifyEvent(nil), r.events...)
}

func (r *Recorder) OfKind(kind models.NotifyEventKind) []models.NotifyEvent {
	result := []models.NotifyEvent{}
	for _, event := range r.Events() {
		if event.Kind == kind {
			result = append(result, event)
		}
	}
	return result
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// RecipientIDs идентификаторы получателей события
func RecipientIDs(event models.NotifyEvent) []string {
	result := make([]string, 0, len(event.Recipients))
	for _, recipient := range event.Recipients {
		result = append(result, recipient.UserID)
	}
	return result
}
