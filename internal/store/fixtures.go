package store

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/competitor-intel/internal/model"
)

// Fixtures is a YAML snapshot of sponsorship data for local development.
type Fixtures struct {
	Brands       []model.Brand          `yaml:"brands"`
	Creators     []model.Creator        `yaml:"creators"`
	Accounts     []model.CreatorAccount `yaml:"creator_accounts"`
	Videos       []model.Video          `yaml:"videos"`
	Sponsorships []model.Sponsorship    `yaml:"sponsorships"`
}

// LoadFixtures reads and checks a fixtures file. Brands and sponsorships
// without an id get a generated one; sponsorships without created_at are
// stamped with the load time.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "fixtures: read")
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes and checks fixture YAML.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, eris.Wrap(err, "fixtures: parse yaml")
	}

	now := time.Now().UTC()
	for i := range fx.Brands {
		if fx.Brands[i].ID == "" {
			fx.Brands[i].ID = uuid.New().String()
		}
	}
	for i := range fx.Sponsorships {
		if fx.Sponsorships[i].ID == "" {
			fx.Sponsorships[i].ID = uuid.New().String()
		}
		if fx.Sponsorships[i].CreatedAt.IsZero() {
			fx.Sponsorships[i].CreatedAt = now
		}
	}

	if err := fx.validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

func (fx *Fixtures) validate() error {
	brands := make(map[string]bool, len(fx.Brands))
	for _, b := range fx.Brands {
		if b.Name == "" {
			return eris.Errorf("fixtures: brand %s has no name", b.ID)
		}
		brands[b.ID] = true
	}
	creators := make(map[string]bool, len(fx.Creators))
	for _, c := range fx.Creators {
		if c.ID == "" {
			return eris.New("fixtures: creator without id")
		}
		creators[c.ID] = true
	}
	accounts := make(map[string]bool, len(fx.Accounts))
	for _, a := range fx.Accounts {
		if a.ID == "" {
			return eris.New("fixtures: creator account without id")
		}
		if !creators[a.CreatorID] {
			return eris.Errorf("fixtures: account %s references unknown creator %q", a.ID, a.CreatorID)
		}
		accounts[a.ID] = true
	}
	videos := make(map[string]bool, len(fx.Videos))
	for _, v := range fx.Videos {
		if v.ID == "" {
			return eris.New("fixtures: video without id")
		}
		if !accounts[v.CreatorAccountID] {
			return eris.Errorf("fixtures: video %s references unknown account %q", v.ID, v.CreatorAccountID)
		}
		if !creators[v.CreatorID] {
			return eris.Errorf("fixtures: video %s references unknown creator %q", v.ID, v.CreatorID)
		}
		videos[v.ID] = true
	}
	for _, s := range fx.Sponsorships {
		switch {
		case !brands[s.BrandID]:
			return eris.Errorf("fixtures: sponsorship %s references unknown brand %q", s.ID, s.BrandID)
		case !creators[s.CreatorID]:
			return eris.Errorf("fixtures: sponsorship %s references unknown creator %q", s.ID, s.CreatorID)
		case !videos[s.VideoID]:
			return eris.Errorf("fixtures: sponsorship %s references unknown video %q", s.ID, s.VideoID)
		}
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
