package data

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when no row matches the lookup key.
	ErrNotFound = errors.New("data: not found")
	// ErrAlreadyExists is returned when a create collides with an existing key.
	ErrAlreadyExists = errors.New("data: already exists")
)

// ForumKey normalises a forum username for uniqueness checks.
func ForumKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// MemberStore persists verified members keyed by Discord handle.
type MemberStore struct {
	db *gorm.DB
}

func NewMemberStore(db *gorm.DB) *MemberStore {
	return &MemberStore{db: db}
}

// Get loads the member linked to a Discord handle.
func (s *MemberStore) Get(ctx context.Context, discordHandle string) (*Member, error) {
	var m Member
	err := s.db.WithContext(ctx).Where("discord_handle = ?", discordHandle).First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// GetByForumUsername loads the member that claimed a forum profile.
func (s *MemberStore) GetByForumUsername(ctx context.Context, forumUsername string) (*Member, error) {
	var m Member
	err := s.db.WithContext(ctx).Where("forum_username_key = ?", ForumKey(forumUsername)).First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// GetByDiscordUserID loads a member by the Discord snowflake recorded at link time.
func (s *MemberStore) GetByDiscordUserID(ctx context.Context, userID string) (*Member, error) {
	var m Member
	err := s.db.WithContext(ctx).Where("discord_user_id = ?", userID).First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// Create inserts m only if neither its handle nor its forum username is
// taken. A collision returns ErrAlreadyExists and writes nothing.
func (s *MemberStore) Create(ctx context.Context, m *Member) error {
	if m.DiscordHandle == "" || strings.TrimSpace(m.ForumUsername) == "" {
		return fmt.Errorf("data: member requires a handle and forum username")
	}
	m.ForumUsernameKey = ForumKey(m.ForumUsername)

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// Update applies fn to the stored member inside a transaction. If fn returns
// an error nothing is written.
func (s *MemberStore) Update(ctx context.Context, discordHandle string, fn func(*Member) error) (*Member, error) {
	var out Member
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m Member
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("discord_handle = ?", discordHandle).First(&m).Error; err != nil {
			return translate(err)
		}
		if err := fn(&m); err != nil {
			return err
		}
		if err := tx.Model(&Member{}).Where("discord_handle = ?", discordHandle).
			Select("email", "hardware", "projects", "start_track", "discord_user_id").
			Updates(&m).Error; err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a member link.
func (s *MemberStore) Delete(ctx context.Context, discordHandle string) error {
	res := s.db.WithContext(ctx).Where("discord_handle = ?", discordHandle).Delete(&Member{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of linked members.
func (s *MemberStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Member{}).Count(&n).Error
	return n, err
}

// EventStore persists community events.
type EventStore struct {
	db *gorm.DB
}

func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) Get(ctx context.Context, name string) (*Event, error) {
	var e Event
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&e).Error; err != nil {
		return nil, translate(err)
	}
	if e.Participants == nil {
		e.Participants = ParticipantMap{}
	}
	return &e, nil
}

func (s *EventStore) Create(ctx context.Context, e *Event) error {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(e)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// Update applies fn to the stored event inside a transaction.
func (s *EventStore) Update(ctx context.Context, name string, fn func(*Event) error) (*Event, error) {
	var out Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", name).First(&e).Error; err != nil {
			return translate(err)
		}
		if e.Participants == nil {
			e.Participants = ParticipantMap{}
		}
		if err := fn(&e); err != nil {
			return err
		}
		if err := tx.Model(&Event{}).Where("name = ?", name).
			Select("starts_at", "participants").Updates(&e).Error; err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
