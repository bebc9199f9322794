package store

import (
	"log/slog"

	"gorm.io/gorm"
)

// Notifier raises a trigger whenever a row in the pigs or devices table is
// created, updated or deleted. The trigger channel has capacity one and sends
// never block: bursts of writes collapse into a single pending trigger.
type Notifier struct {
	logger *slog.Logger
	ch     chan struct{}
}

// NewNotifier creates a notifier that is not yet attached to a database.
func NewNotifier(l *slog.Logger) *Notifier {
	return &Notifier{
		logger: l,
		ch:     make(chan struct{}, 1),
	}
}

// C returns the trigger channel. A receive drains at most one pending trigger
// regardless of how many table changes preceded it.
func (n *Notifier) C() <-chan struct{} {
	return n.ch
}

// Register attaches change callbacks to the given database handle. Only
// changes to the pigs and devices tables raise triggers; observation inserts
// are covered by the periodic refresh.
func (n *Notifier) Register(db *gorm.DB) error {
	cb := func(tx *gorm.DB) {
		if tx.Error != nil || tx.Statement == nil {
			return
		}
		switch tx.Statement.Table {
		case Pig{}.TableName(), Device{}.TableName():
			n.Notify()
		}
	}

	if err := db.Callback().Create().After("gorm:create").Register("farmsight:notify_create", cb); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").Register("farmsight:notify_update", cb); err != nil {
		return err
	}
	if err := db.Callback().Delete().After("gorm:delete").Register("farmsight:notify_delete", cb); err != nil {
		return err
	}

	n.logger.Debug("change notifier registered",
		"tables", []string{Pig{}.TableName(), Device{}.TableName()})
	return nil
}

// Notify raises a trigger without blocking. If a trigger is already pending
// the call is a no-op.
func (n *Notifier) Notify() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}
