// Package members edits the profile data of verified members.
package members

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"github.com/startcommunity/startbot/src/data"
	"github.com/startcommunity/startbot/src/hardware"
)

var (
	ErrNotVerified     = errors.New("members: discord handle is not verified")
	ErrDuplicate       = errors.New("members: already registered")
	ErrNotListed       = errors.New("members: not registered")
	ErrUnknownHardware = errors.New("members: unknown hardware")
	ErrInvalidEmail    = errors.New("members: invalid email address")
	ErrInvalidProject  = errors.New("members: invalid project")
	ErrNoProject       = errors.New("members: no project at that position")
)

// Store is the member persistence the service needs.
type Store interface {
	Get(ctx context.Context, discordHandle string) (*data.Member, error)
	Update(ctx context.Context, discordHandle string, fn func(*data.Member) error) (*data.Member, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Status returns the member record for a handle.
func (s *Service) Status(ctx context.Context, discordHandle string) (*data.Member, error) {
	m, err := s.store.Get(ctx, discordHandle)
	return m, notVerified(err)
}

// SetEmail stores the contact address of a member.
func (s *Service) SetEmail(ctx context.Context, discordHandle, email string) (*data.Member, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Name != "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	m, err := s.store.Update(ctx, discordHandle, func(m *data.Member) error {
		m.Email = &addr.Address
		return nil
	})
	if err != nil {
		return nil, notVerified(err)
	}
	log.Printf("members: %s updated email", discordHandle)
	return m, nil
}

// AddHardware records that a member owns a device.
func (s *Service) AddHardware(ctx context.Context, discordHandle, code string) (*data.Member, error) {
	dev, ok := hardware.Lookup(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHardware, code)
	}
	m, err := s.store.Update(ctx, discordHandle, func(m *data.Member) error {
		if m.HasHardware(dev.Code) {
			return fmt.Errorf("%w: hardware %s", ErrDuplicate, dev.Code)
		}
		m.Hardware = append(m.Hardware, dev.Code)
		return nil
	})
	return m, notVerified(err)
}

// RemoveHardware drops a device from a member.
func (s *Service) RemoveHardware(ctx context.Context, discordHandle, code string) (*data.Member, error) {
	dev, ok := hardware.Lookup(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHardware, code)
	}
	m, err := s.store.Update(ctx, discordHandle, func(m *data.Member) error {
		kept := make(data.StringSet, 0, len(m.Hardware))
		for _, h := range m.Hardware {
			if h != dev.Code {
				kept = append(kept, h)
			}
		}
		if len(kept) == len(m.Hardware) {
			return fmt.Errorf("%w: hardware %s", ErrNotListed, dev.Code)
		}
		m.Hardware = kept
		return nil
	})
	return m, notVerified(err)
}

// AddProject puts p at the front of the member's project list.
func (s *Service) AddProject(ctx context.Context, discordHandle string, p data.Project) (*data.Member, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProject)
	}
	if strings.TrimSpace(p.Description) == "" {
		p.Description = data.DefaultProjectDescription
	}
	devices := make([]string, 0, len(p.Devices))
	for _, code := range p.Devices {
		dev, ok := hardware.Lookup(code)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownHardware, code)
		}
		devices = append(devices, dev.Code)
	}
	p.Devices = devices

	m, err := s.store.Update(ctx, discordHandle, func(m *data.Member) error {
		if m.ProjectIndex(p.Name) >= 0 {
			return fmt.Errorf("%w: project %q", ErrDuplicate, p.Name)
		}
		m.Projects = append(data.ProjectList{p}, m.Projects...)
		return nil
	})
	if err != nil {
		return nil, notVerified(err)
	}
	log.Printf("members: %s added project %q", discordHandle, p.Name)
	return m, nil
}

// RemoveProject deletes a project by name.
func (s *Service) RemoveProject(ctx context.Context, discordHandle, name string) (*data.Member, error) {
	name = strings.TrimSpace(name)
	m, err := s.store.Update(ctx, discordHandle, func(m *data.Member) error {
		i := m.ProjectIndex(name)
		if i < 0 {
			return fmt.Errorf("%w: project %q", ErrNotListed, name)
		}
		m.Projects = append(m.Projects[:i:i], m.Projects[i+1:]...)
		return nil
	})
	return m, notVerified(err)
}

// Project returns the member's project at index, 0 being the most recent.
func (s *Service) Project(ctx context.Context, discordHandle string, index int) (*data.Member, data.Project, error) {
	m, err := s.Status(ctx, discordHandle)
	if err != nil {
		return nil, data.Project{}, err
	}
	if index < 0 || index >= len(m.Projects) {
		return m, data.Project{}, fmt.Errorf("%w: %d", ErrNoProject, index)
	}
	return m, m.Projects[index], nil
}

func notVerified(err error) error {
	if errors.Is(err, data.ErrNotFound) {
		return ErrNotVerified
	}
	return err
}
