package data

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultProjectDescription is shown for projects registered without one.
const DefaultProjectDescription = "No description available."

// Setting represents a configuration setting stored in the database
type Setting struct {
	ID     uint   `gorm:"primaryKey"`
	Name   string `gorm:"size:64;uniqueIndex;not null"`
	Value  string `gorm:"type:text;not null"`
	Active uint8  `gorm:"not null;default:1"`
}

// Member is a verified link between a Discord handle and a forum profile.
type Member struct {
	DiscordHandle    string      `gorm:"primaryKey;size:64"`
	ForumUsername    string      `gorm:"size:128;not null"`
	ForumUsernameKey string      `gorm:"size:128;uniqueIndex;not null"`
	DiscordUserID    string      `gorm:"size:32;index"`
	StartTrack       string      `gorm:"size:16"`
	Email            *string     `gorm:"size:255"`
	Hardware         StringSet   `gorm:"type:text"`
	Projects         ProjectList `gorm:"type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Member) TableName() string { return "start_members" }

// HasHardware reports whether code is already registered.
func (m *Member) HasHardware(code string) bool {
	for _, h := range m.Hardware {
		if h == code {
			return true
		}
	}
	return false
}

// ProjectIndex returns the position of the named project or -1.
func (m *Member) ProjectIndex(name string) int {
	for i, p := range m.Projects {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Project is a game or app a member showcases.
type Project struct {
	Name        string   `json:"projectName"`
	LogoURL     string   `json:"projectLogo,omitempty"`
	Description string   `json:"projectDescription"`
	TrailerURL  string   `json:"projectTrailer,omitempty"`
	Link        string   `json:"projectLink,omitempty"`
	Devices     []string `json:"projectDevices,omitempty"`
}

// Event is a community event members can register for.
type Event struct {
	Name         string         `gorm:"primaryKey;size:128"`
	StartsAt     time.Time      `gorm:"not null"`
	Participants ParticipantMap `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Event) TableName() string { return "start_events" }

// Participants is one registration type of an event.
type Participants struct {
	Max   *int     `json:"Max,omitempty"`
	Users []string `json:"Users"`
}

// StringSet is an insertion-ordered set persisted as a JSON array.
type StringSet []string

// ProjectList is persisted as a JSON array, most recent first.
type ProjectList []Project

// ParticipantMap maps registration type to its participants.
type ParticipantMap map[string]*Participants

func (s StringSet) Value() (driver.Value, error)      { return jsonValue(s) }
func (s *StringSet) Scan(src any) error               { return jsonScan(src, s) }
func (p ProjectList) Value() (driver.Value, error)    { return jsonValue(p) }
func (p *ProjectList) Scan(src any) error             { return jsonScan(src, p) }
func (m ParticipantMap) Value() (driver.Value, error) { return jsonValue(m) }

func (m *ParticipantMap) Scan(src any) error {
	if err := jsonScan(src, m); err != nil {
		return err
	}
	m.Normalize()
	return nil
}

// Normalize turns null entries into empty, unlimited registration types.
func (m ParticipantMap) Normalize() {
	for typ, p := range m {
		if p == nil {
			m[typ] = &Participants{Users: []string{}}
		}
	}
}

func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(src any, dst any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("data: cannot scan %T into %T", src, dst)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// AllModels lists every table owned by the bot.
var AllModels = []interface{}{
	&Setting{}, &Member{}, &Event{},
}
