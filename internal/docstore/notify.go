package docstore

import "sync"

// channelSub is the Subscription implementation shared by the in-process
// backends. The snapshot channel holds a single pending snapshot; when the
// consumer lags, the stale snapshot is replaced rather than queued, since
// each snapshot fully supersedes the previous one.
type channelSub struct {
	ch       chan Snapshot
	once     sync.Once
	onCancel func(*channelSub)
}

func newChannelSub(onCancel func(*channelSub)) *channelSub {
	return &channelSub{
		ch:       make(chan Snapshot, 1),
		onCancel: onCancel,
	}
}

// Snapshots implements Subscription.
func (s *channelSub) Snapshots() <-chan Snapshot {
	return s.ch
}

// Cancel implements Subscription.
func (s *channelSub) Cancel() {
	s.once.Do(func() {
		s.onCancel(s)
		close(s.ch)
	})
}

// publish delivers a snapshot, replacing an undelivered one. Callers must
// hold the owning subscriberSet's lock so publish never races Cancel.
func (s *channelSub) publish(snap Snapshot) {
	for {
		select {
		case s.ch <- snap:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

// subscriberSet tracks live subscriptions keyed by collection path.
type subscriberSet struct {
	mu   sync.Mutex
	subs map[string][]*channelSub
}

func newSubscriberSet() *subscriberSet {
	return &subscriberSet{subs: make(map[string][]*channelSub)}
}

// add registers a subscription for the collection and delivers the initial
// snapshot.
func (ss *subscriberSet) add(collection string, initial Snapshot) *channelSub {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	sub := newChannelSub(func(s *channelSub) { ss.remove(collection, s) })
	ss.subs[collection] = append(ss.subs[collection], sub)
	sub.publish(initial)
	return sub
}

func (ss *subscriberSet) remove(collection string, sub *channelSub) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	subs := ss.subs[collection]
	for i, s := range subs {
		if s == sub {
			ss.subs[collection] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(ss.subs[collection]) == 0 {
		delete(ss.subs, collection)
	}
}

// notify fans a snapshot out to every subscriber of the collection.
func (ss *subscriberSet) notify(collection string, snap Snapshot) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	for _, sub := range ss.subs[collection] {
		sub.publish(snap)
	}
}

// hasSubscribers reports whether any subscription is live for the collection.
func (ss *subscriberSet) hasSubscribers(collection string) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.subs[collection]) > 0
}

// closeAll cancels every subscription.
func (ss *subscriberSet) closeAll() {
	ss.mu.Lock()
	var all []*channelSub
	for _, subs := range ss.subs {
		all = append(all, subs...)
	}
	ss.mu.Unlock()

	for _, sub := range all {
		sub.Cancel()
	}
}
