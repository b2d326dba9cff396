package services

import (
	"context"
	"log"
	"strings"
	"time"

	"parish-backend-go/internal/models"
	"parish-backend-go/internal/store"
)

// LoginLog records admin session durations.
type LoginLog struct {
	entries *store.Collection[models.LoginLogEntry]
	locks   *store.Locks
	now     func() time.Time
}

func NewLoginLog(s store.Store, locks *store.Locks, now func() time.Time) *LoginLog {
	if locks == nil {
		locks = store.NewLocks()
	}
	if now == nil {
		now = time.Now
	}
	return &LoginLog{
		entries: store.NewCollection[models.LoginLogEntry](s, store.LoginLogs),
		locks:   locks,
		now:     now,
	}
}

func (l *LoginLog) Open(ctx context.Context, email, name string) error {
	unlock := l.locks.Lock(store.LoginLogs)
	defer unlock()

	entries, err := l.entries.LoadForUpdate(ctx)
	if err != nil {
		log.Printf("login log open %s: %v", email, err)
		return err
	}
	entries = append(entries, models.LoginLogEntry{
		Email:     email,
		Name:      name,
		LoginTime: l.now().UTC().Truncate(time.Second),
	})
	if err := l.entries.Save(ctx, entries); err != nil {
		log.Printf("login log open %s: %v", email, err)
		return err
	}
	return nil
}

// Close ends the most recent open entry for email. It reports whether an
// entry was closed.
func (l *LoginLog) Close(ctx context.Context, email string) (bool, error) {
	unlock := l.locks.Lock(store.LoginLogs)
	defer unlock()

	entries, err := l.entries.LoadForUpdate(ctx)
	if err != nil {
		log.Printf("login log close %s: %v", email, err)
		return false, err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		entry := &entries[i]
		if entry.LogoutTime != nil || !strings.EqualFold(entry.Email, email) {
			continue
		}
		logout := l.now().UTC().Truncate(time.Second)
		duration := int64(logout.Sub(entry.LoginTime) / time.Second)
		entry.LogoutTime = &logout
		entry.DurationSeconds = &duration
		if err := l.entries.Save(ctx, entries); err != nil {
			log.Printf("login log close %s: %v", email, err)
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (l *LoginLog) List(ctx context.Context) []models.LoginLogEntry {
	unlock := l.locks.Lock(store.LoginLogs)
	defer unlock()
	return l.entries.Load(ctx)
}
