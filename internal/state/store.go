package state

import (
	"sync"

	"nerdcon-demo/internal/models"
	"nerdcon-demo/internal/pubsub"
)

// Event names emitted by the store.
const (
	EventCustomer = "state:customer"
	EventPaykey   = "state:paykey"
	EventCharge   = "state:charge"
	EventChange   = "state:change"
	EventReset    = "state:reset"
)

// Store holds the current demo snapshot and notifies listeners on every mutation.
//
// Mutating calls are serialized and their listeners finish before the next
// mutation starts. Listeners may call State but must not mutate the store.
type Store struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	state   models.State
	events  *pubsub.Registry
}

// NewStore creates a store with all slots empty.
func NewStore() *Store {
	return &Store{events: pubsub.NewRegistry()}
}

// State returns an independent copy of the current snapshot.
func (s *Store) State() models.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Subscribe registers a raw listener for one of the store events.
func (s *Store) Subscribe(event string, fn pubsub.Listener) pubsub.Subscription {
	return s.events.On(event, fn)
}

// OnCustomer registers fn for customer slot changes.
func (s *Store) OnCustomer(fn func(*models.Customer)) pubsub.Subscription {
	return s.events.On(EventCustomer, func(p any) { fn(p.(*models.Customer)) })
}

// OnPaykey registers fn for paykey slot changes.
func (s *Store) OnPaykey(fn func(*models.Paykey)) pubsub.Subscription {
	return s.events.On(EventPaykey, func(p any) { fn(p.(*models.Paykey)) })
}

// OnCharge registers fn for charge slot changes.
func (s *Store) OnCharge(fn func(*models.Charge)) pubsub.Subscription {
	return s.events.On(EventCharge, func(p any) { fn(p.(*models.Charge)) })
}

// OnChange registers fn for the aggregate snapshot event.
func (s *Store) OnChange(fn func(models.State)) pubsub.Subscription {
	return s.events.On(EventChange, func(p any) { fn(p.(models.State)) })
}

// OnReset registers fn for resets.
func (s *Store) OnReset(fn func()) pubsub.Subscription {
	return s.events.On(EventReset, func(any) { fn() })
}

// SetCustomer replaces the customer slot.
func (s *Store) SetCustomer(c models.Customer) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snap := s.mutate(func(st *models.State) { st.Customer = c.Clone() })
	s.emitCustomer(snap)
}

// SetPaykey replaces the paykey slot.
func (s *Store) SetPaykey(p models.Paykey) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snap := s.mutate(func(st *models.State) { st.Paykey = p.Clone() })
	s.emitPaykey(snap)
}

// SetCharge replaces the charge slot.
func (s *Store) SetCharge(c models.Charge) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snap := s.mutate(func(st *models.State) { st.Charge = c.Clone() })
	s.emitCharge(snap)
}

// UpdateCustomer merges patch onto the current customer. It does nothing,
// and emits nothing, when no customer is set.
func (s *Store) UpdateCustomer(patch models.CustomerPatch) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	applied := false
	snap := s.mutate(func(st *models.State) {
		if st.Customer == nil {
			return
		}
		st.Customer.Apply(patch)
		applied = true
	})
	if !applied {
		return
	}
	s.emitCustomer(snap)
}

// UpdateCharge merges patch onto the current charge. It does nothing, and
// emits nothing, when no charge is set.
func (s *Store) UpdateCharge(patch models.ChargePatch) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	applied := false
	snap := s.mutate(func(st *models.State) {
		if st.Charge == nil {
			return
		}
		st.Charge.Apply(patch)
		applied = true
	})
	if !applied {
		return
	}
	s.emitCharge(snap)
}

// UpdateCustomerIf merges patch onto the current customer only when its id
// is id. It reports whether the patch was applied.
func (s *Store) UpdateCustomerIf(id string, patch models.CustomerPatch) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	applied := false
	snap := s.mutate(func(st *models.State) {
		if st.Customer == nil || st.Customer.ID != id {
			return
		}
		st.Customer.Apply(patch)
		applied = true
	})
	if applied {
		s.emitCustomer(snap)
	}
	return applied
}

// UpdateChargeIf merges patch onto the current charge only when its id is id.
// It reports whether the patch was applied.
func (s *Store) UpdateChargeIf(id string, patch models.ChargePatch) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	applied := false
	snap := s.mutate(func(st *models.State) {
		if st.Charge == nil || st.Charge.ID != id {
			return
		}
		st.Charge.Apply(patch)
		applied = true
	})
	if applied {
		s.emitCharge(snap)
	}
	return applied
}

// SetPaykeyStatusIf changes the status of the current paykey only when its
// id is id. It reports whether the status was applied.
func (s *Store) SetPaykeyStatusIf(id, status string) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	applied := false
	snap := s.mutate(func(st *models.State) {
		if st.Paykey == nil || st.Paykey.ID != id {
			return
		}
		st.Paykey.Status = status
		applied = true
	})
	if applied {
		s.emitPaykey(snap)
	}
	return applied
}

// Reset clears every slot, then emits the reset and aggregate events.
func (s *Store) Reset() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snap := s.mutate(func(st *models.State) { *st = models.State{} })
	s.events.Emit(EventReset, nil)
	s.emitChange(snap)
}

// mutate applies fn under the state lock and returns a copy of the result.
func (s *Store) mutate(fn func(*models.State)) models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	return s.state.Clone()
}

// emitCustomer sends the slot event then the aggregate. Every listener gets
// its own copy of the payload.
func (s *Store) emitCustomer(snap models.State) {
	s.events.EmitEach(EventCustomer, func() any { return snap.Customer.Clone() })
	s.emitChange(snap)
}

func (s *Store) emitPaykey(snap models.State) {
	s.events.EmitEach(EventPaykey, func() any { return snap.Paykey.Clone() })
	s.emitChange(snap)
}

func (s *Store) emitCharge(snap models.State) {
	s.events.EmitEach(EventCharge, func() any { return snap.Charge.Clone() })
	s.emitChange(snap)
}

func (s *Store) emitChange(snap models.State) {
	s.events.EmitEach(EventChange, func() any { return snap.Clone() })
}
