package treesync

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/rjeczalik/notify"

	"github.com/filekit/treesync/internal/utils"
)

const eventBufferSize = 64

// WatchSubscription is an owned, cancelable recursive watch.
type WatchSubscription interface {
	Close() error
}

// WatchProvider establishes a recursive watch on a root and delivers
// change batches to fn until the subscription is closed.
type WatchProvider interface {
	Watch(root string, fn func(ChangeBatch)) (WatchSubscription, error)
}

// NotifyWatchProvider implements WatchProvider on top of the OS
// filesystem notification APIs.
type NotifyWatchProvider struct{}

func NewNotifyWatchProvider() *NotifyWatchProvider {
	return &NotifyWatchProvider{}
}

func (p *NotifyWatchProvider) Watch(root string, fn func(ChangeBatch)) (WatchSubscription, error) {
	if !utils.DirExists(root) {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrWatchSetup, root)
	}

	events := make(chan notify.EventInfo, eventBufferSize)
	recursivePath := root + "/..."
	if err := notify.Watch(recursivePath, events, notify.Create, notify.Remove, notify.Rename, notify.Write); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrWatchSetup, root, err)
	}

	slog.Info("watch start", "dir", root)

	sub := &notifySubscription{
		root:   root,
		events: events,
		done:   make(chan struct{}),
	}
	sub.wg.Add(1)
	go sub.pump(fn)

	return sub, nil
}

type notifySubscription struct {
	root      string
	events    chan notify.EventInfo
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func (s *notifySubscription) Close() error {
	s.closeOnce.Do(func() {
		slog.Info("watch stop", "dir", s.root)
		notify.Stop(s.events)
		close(s.done)
		s.wg.Wait()
	})
	return nil
}

// pump forwards OS events as change batches. Events already sitting in
// the buffer are drained into the same batch so a burst arrives as one
// piece instead of many single-record batches.
func (s *notifySubscription) pump(fn func(ChangeBatch)) {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.events:
			if !ok {
				return
			}
			records := []RawChangeRecord{toRecord(ev)}
		drain:
			for {
				select {
				case more, ok := <-s.events:
					if !ok {
						break drain
					}
					records = append(records, toRecord(more))
				default:
					break drain
				}
			}
			fn(NewChangeBatch(records))
		}
	}
}

// toRecord maps an OS event to a change record. A rename reports the
// old path, which no longer exists, so it classifies as a deletion.
func toRecord(ev notify.EventInfo) RawChangeRecord {
	var kind ChangeKind
	switch ev.Event() {
	case notify.Create:
		kind = ChangeAdded
	case notify.Remove, notify.Rename:
		kind = ChangeDeleted
	default:
		kind = ChangeUpdated
	}
	return RawChangeRecord{Path: ev.Path(), Kind: kind}
}
