// Package notify delivers marketplace notifications. Delivery is best-effort
// from the bidding and settlement paths: a failed delivery is logged by the
// caller and never rolls back a committed bid or sale.
package notify

import (
	"fmt"
	"sort"
	"sync"
	"time"

	model "auction-house/internal/models"
	"auction-house/utils"
)

// Notifier is the outbound notification interface consumed by the services
type Notifier interface {
	Notify(recipientID, senderID string, kind model.NotificationKind, message, listingID string) error
}

// Inbox is an in-memory Notifier that stores notifications per recipient and
// supports the read-side queries the marketplace exposes (list, unread count,
// mark read).
type Inbox struct {
	mu    sync.RWMutex
	byID  map[string]*model.Notification
	byRcp map[string][]*model.Notification // key: recipientID
}

// NewInbox creates an empty notification inbox
func NewInbox() *Inbox {
	return &Inbox{
		byID:  make(map[string]*model.Notification),
		byRcp: make(map[string][]*model.Notification),
	}
}

// Notify stores a notification for the recipient
func (in *Inbox) Notify(recipientID, senderID string, kind model.NotificationKind, message, listingID string) error {
	if recipientID == "" {
		return fmt.Errorf("notify: missing recipient")
	}

	n := &model.Notification{
		NotificationID: utils.GenerateID(),
		RecipientID:    recipientID,
		SenderID:       senderID,
		Kind:           kind,
		Message:        message,
		ListingID:      listingID,
		CreatedAt:      time.Now().UTC(),
	}

	in.mu.Lock()
	in.byID[n.NotificationID] = n
	in.byRcp[recipientID] = append(in.byRcp[recipientID], n)
	in.mu.Unlock()

	return nil
}

// ListForRecipient returns a recipient's notifications, newest first
func (in *Inbox) ListForRecipient(recipientID string) []model.Notification {
	in.mu.RLock()
	defer in.mu.RUnlock()

	notifications := make([]model.Notification, 0, len(in.byRcp[recipientID]))
	for _, n := range in.byRcp[recipientID] {
		notifications = append(notifications, *n)
	}
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications
}

// UnreadCount returns the number of unread notifications for a recipient
func (in *Inbox) UnreadCount(recipientID string) int {
	in.mu.RLock()
	defer in.mu.RUnlock()

	count := 0
	for _, n := range in.byRcp[recipientID] {
		if !n.Read {
			count++
		}
	}
	return count
}

// MarkRead marks a notification as read. Only the recipient may do so.
func (in *Inbox) MarkRead(notificationID, recipientID string) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	n, ok := in.byID[notificationID]
	if !ok || n.RecipientID != recipientID {
		return fmt.Errorf("mark notification %s read: not found for recipient", notificationID)
	}
	n.Read = true
	return nil
}

// LogOnFailure wraps a Notifier call with the best-effort discipline: the
// error is logged and swallowed so it can never escalate to the caller.
func LogOnFailure(n Notifier, recipientID, senderID string, kind model.NotificationKind, message, listingID string) {
	if n == nil {
		return
	}
	if err := n.Notify(recipientID, senderID, kind, message, listingID); err != nil {
		utils.Error("notification delivery failed", map[string]any{
			"recipient_id": recipientID,
			"kind":         string(kind),
			"listing_id":   listingID,
			"error":        err.Error(),
		})
	}
}
