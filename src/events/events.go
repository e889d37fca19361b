// Package events handles sign-ups for community events.
package events

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/startcommunity/startbot/src/data"
)

var (
	ErrEventNotFound           = errors.New("events: no such event")
	ErrEventExists             = errors.New("events: event already exists")
	ErrUnknownRegistrationType = errors.New("events: unknown registration type")
	ErrRegistrationClosed      = errors.New("events: registration closed")
	ErrEventFull               = errors.New("events: event is full")
	ErrRegisteredElsewhere     = errors.New("events: already registered under another type")
	ErrNotRegistered           = errors.New("events: not registered")
)

// Store is the event persistence the service needs.
type Store interface {
	Get(ctx context.Context, name string) (*data.Event, error)
	Create(ctx context.Context, e *data.Event) error
	Update(ctx context.Context, name string, fn func(*data.Event) error) (*data.Event, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Create adds an event. limits maps each registration type to its seat
// count; a nil limit means unlimited.
func (s *Service) Create(ctx context.Context, name string, startsAt time.Time, limits map[string]*int) (*data.Event, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(limits) == 0 {
		return nil, fmt.Errorf("events: an event needs a name and at least one registration type")
	}
	e := &data.Event{Name: name, StartsAt: startsAt.UTC(), Participants: data.ParticipantMap{}}
	for typ, limit := range limits {
		e.Participants[typ] = &data.Participants{Max: limit, Users: []string{}}
	}
	if err := s.store.Create(ctx, e); err != nil {
		if errors.Is(err, data.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: %s", ErrEventExists, name)
		}
		return nil, err
	}
	log.Printf("events: created %q starting %s", name, e.StartsAt.Format(time.RFC3339))
	return e, nil
}

// Get loads an event by name.
func (s *Service) Get(ctx context.Context, name string) (*data.Event, error) {
	e, err := s.store.Get(ctx, name)
	if errors.Is(err, data.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	e.Participants.Normalize()
	return e, nil
}

// CanRegister reports why registering for typ would fail, or nil.
func (s *Service) CanRegister(ctx context.Context, name, typ string) error {
	e, err := s.Get(ctx, name)
	if err != nil {
		return err
	}
	return s.check(e, typ)
}

func (s *Service) check(e *data.Event, typ string) error {
	p, ok := e.Participants[typ]
	if !ok {
		return fmt.Errorf("%w: %q (have %s)", ErrUnknownRegistrationType, typ, strings.Join(Types(e), ", "))
	}
	if !s.now().Before(e.StartsAt) {
		return fmt.Errorf("%w: %s started at %s", ErrRegistrationClosed, e.Name, e.StartsAt.Format(time.RFC3339))
	}
	if p.Max != nil && len(p.Users) >= *p.Max {
		return fmt.Errorf("%w: %s %s", ErrEventFull, e.Name, typ)
	}
	return nil
}

// Register signs discordHandle up for typ. Registering twice for the same
// type is a no-op and reports added=false.
func (s *Service) Register(ctx context.Context, name, typ, discordHandle string) (added bool, err error) {
	_, err = s.store.Update(ctx, name, func(e *data.Event) error {
		e.Participants.Normalize()
		if cur, ok := registeredType(e, discordHandle); ok {
			if cur == typ {
				return nil
			}
			return fmt.Errorf("%w: %s", ErrRegisteredElsewhere, cur)
		}
		if err := s.check(e, typ); err != nil {
			return err
		}
		p := e.Participants[typ]
		p.Users = append(p.Users, discordHandle)
		added = true
		return nil
	})
	if errors.Is(err, data.ErrNotFound) {
		return false, fmt.Errorf("%w: %s", ErrEventNotFound, name)
	}
	if err != nil {
		return false, err
	}
	if added {
		log.Printf("events: %s registered for %q as %s", discordHandle, name, typ)
	}
	return added, nil
}

// Unregister removes discordHandle from every type of the event.
func (s *Service) Unregister(ctx context.Context, name, discordHandle string) error {
	_, err := s.store.Update(ctx, name, func(e *data.Event) error {
		e.Participants.Normalize()
		removed := false
		for _, p := range e.Participants {
			kept := p.Users[:0]
			for _, u := range p.Users {
				if u == discordHandle {
					removed = true
					continue
				}
				kept = append(kept, u)
			}
			p.Users = kept
		}
		if !removed {
			return fmt.Errorf("%w: %s in %s", ErrNotRegistered, discordHandle, e.Name)
		}
		return nil
	})
	if errors.Is(err, data.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrEventNotFound, name)
	}
	return err
}

// Types lists an event's registration types in a stable order.
func Types(e *data.Event) []string {
	out := make([]string, 0, len(e.Participants))
	for typ := range e.Participants {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

func registeredType(e *data.Event, discordHandle string) (string, bool) {
	for _, typ := range Types(e) {
		for _, u := range e.Participants[typ].Users {
			if u == discordHandle {
				return typ, true
			}
		}
	}
	return "", false
}
