package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/startcommunity/startbot/src/data"
	"github.com/startcommunity/startbot/src/data/datatest"
	"github.com/stretchr/testify/require"
)

var jamStart = time.Date(2026, 11, 20, 18, 0, 0, 0, time.UTC)

func newService(t *testing.T, now time.Time) *Service {
	t.Helper()
	svc := NewService(data.NewEventStore(datatest.Open(t)))
	svc.now = func() time.Time { return now }

	one := 1
	_, err := svc.Create(context.Background(), "Game Jam", jamStart, map[string]*int{
		"mentor":      &one,
		"participant": nil,
	})
	require.NoError(t, err)
	return svc
}

func TestCreateRejectsDuplicate(t *testing.T) {
	svc := newService(t, jamStart.Add(-time.Hour))
	_, err := svc.Create(context.Background(), "Game Jam", jamStart, map[string]*int{"x": nil})
	require.ErrorIs(t, err, ErrEventExists)
}

func TestCanRegister(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		now     time.Time
		event   string
		typ     string
		wantErr error
	}{
		{"open", jamStart.Add(-time.Hour), "Game Jam", "participant", nil},
		{"unknown event", jamStart.Add(-time.Hour), "Hackathon", "participant", ErrEventNotFound},
		{"unknown type", jamStart.Add(-time.Hour), "Game Jam", "judge", ErrUnknownRegistrationType},
		{"started", jamStart, "Game Jam", "participant", ErrRegistrationClosed},
		{"over", jamStart.Add(time.Hour), "Game Jam", "participant", ErrRegistrationClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t, tt.now)
			err := svc.CanRegister(ctx, tt.event, tt.typ)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegisterRespectsLimit(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, jamStart.Add(-time.Hour))

	added, err := svc.Register(ctx, "Game Jam", "mentor", "Alice#1234")
	require.NoError(t, err)
	require.True(t, added)

	added, err = svc.Register(ctx, "Game Jam", "mentor", "Alice#1234")
	require.NoError(t, err)
	require.False(t, added, "second registration should be a no-op")

	_, err = svc.Register(ctx, "Game Jam", "mentor", "Bob#0001")
	require.ErrorIs(t, err, ErrEventFull)
	require.ErrorIs(t, svc.CanRegister(ctx, "Game Jam", "mentor"), ErrEventFull)

	_, err = svc.Register(ctx, "Game Jam", "participant", "Alice#1234")
	require.ErrorIs(t, err, ErrRegisteredElsewhere)

	e, err := svc.Get(ctx, "Game Jam")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"Alice#1234"}, e.Participants["mentor"].Users); diff != "" {
		t.Errorf("mentors mismatch (-want +got):\n%s", diff)
	}
	if len(e.Participants["participant"].Users) != 0 {
		t.Errorf("participants = %v", e.Participants["participant"].Users)
	}
}

func TestUnregister(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, jamStart.Add(-time.Hour))

	_, err := svc.Register(ctx, "Game Jam", "participant", "Bob#0001")
	require.NoError(t, err)
	require.NoError(t, svc.Unregister(ctx, "Game Jam", "Bob#0001"))
	require.ErrorIs(t, svc.Unregister(ctx, "Game Jam", "Bob#0001"), ErrNotRegistered)
	require.ErrorIs(t, svc.Unregister(ctx, "Nope", "Bob#0001"), ErrEventNotFound)

	e, err := svc.Get(ctx, "Game Jam")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"mentor", "participant"}, Types(e)); diff != "" {
		t.Errorf("Types mismatch (-want +got):\n%s", diff)
	}
}

// rawStore hands out events exactly as decoded, null entries included.
type rawStore struct {
	event data.Event
}

func (s *rawStore) Get(context.Context, string) (*data.Event, error) {
	e := s.event
	return &e, nil
}

func (s *rawStore) Create(context.Context, *data.Event) error { return nil }

func (s *rawStore) Update(_ context.Context, _ string, fn func(*data.Event) error) (*data.Event, error) {
	if err := fn(&s.event); err != nil {
		return nil, err
	}
	return &s.event, nil
}

func TestNullRegistrationTypeIsUsable(t *testing.T) {
	ctx := context.Background()
	store := &rawStore{event: data.Event{
		Name:         "Game Jam",
		StartsAt:     jamStart,
		Participants: data.ParticipantMap{"mentor": nil, "participant": {Users: []string{}}},
	}}
	svc := NewService(store)
	svc.now = func() time.Time { return jamStart.Add(-time.Hour) }

	require.NoError(t, svc.CanRegister(ctx, "Game Jam", "mentor"))
	added, err := svc.Register(ctx, "Game Jam", "participant", "Alice#1234")
	require.NoError(t, err)
	require.True(t, added)
	added, err = svc.Register(ctx, "Game Jam", "mentor", "Bob#0001")
	require.NoError(t, err)
	require.True(t, added)
	require.NoError(t, svc.Unregister(ctx, "Game Jam", "Bob#0001"))

	if diff := cmp.Diff([]string{"Alice#1234"}, store.event.Participants["participant"].Users); diff != "" {
		t.Errorf("participants mismatch (-want +got):\n%s", diff)
	}
}
