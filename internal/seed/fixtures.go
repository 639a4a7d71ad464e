package seed

import (
	"embed"
	"fmt"
	"io"
	"os"
	"time"

	"jobcrm/internal/models"
	"jobcrm/internal/service"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/*.yaml
var fixtureFS embed.FS

// Fixtures is the YAML document accepted by LoadFixtures.
type Fixtures struct {
	Profiles []ProfileFixture `yaml:"profiles"`
}

type ProfileFixture struct {
	UserID       uint                 `yaml:"user_id"`
	FirstName    string               `yaml:"first_name"`
	LastName     string               `yaml:"last_name"`
	Bio          string               `yaml:"bio"`
	Location     string               `yaml:"location"`
	BirthDate    string               `yaml:"birth_date"`
	Applications []ApplicationFixture `yaml:"applications"`
}

type ApplicationFixture struct {
	CompanyName        string         `yaml:"company_name"`
	CompanyLocation    string         `yaml:"company_location"`
	CompanySubIndustry string         `yaml:"company_sub_industry"`
	PositionName       string         `yaml:"position_name"`
	IsRemote           bool           `yaml:"is_remote"`
	MinSalary          int64          `yaml:"min_salary"`
	MaxSalary          int64          `yaml:"max_salary"`
	TechStack          string         `yaml:"tech_stack"`
	Status             string         `yaml:"status"`
	Events             []EventFixture `yaml:"events"`
}

type EventFixture struct {
	Date        string `yaml:"date"`
	Description string `yaml:"description"`
}

// LoadFixtures decodes and checks a fixtures document.
func LoadFixtures(r io.Reader) (*Fixtures, error) {
	var fx Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	if err := fx.check(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// LoadFixturesFile reads fixtures from path.
func LoadFixturesFile(path string) (*Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadFixtures(f)
}

// DemoFixtures returns the built-in demo pipeline.
func DemoFixtures() (*Fixtures, error) {
	f, err := fixtureFS.Open("fixtures/demo.yaml")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadFixtures(f)
}

func (fx *Fixtures) check() error {
	for i, p := range fx.Profiles {
		if p.UserID == 0 {
			return fmt.Errorf("profiles[%d]: user_id is required", i)
		}
		if _, err := parseFixtureDate(p.BirthDate); err != nil {
			return fmt.Errorf("profiles[%d].birth_date: %w", i, err)
		}
		for j, a := range p.Applications {
			if a.Status != "" && !models.ApplicationStatus(a.Status).Valid() {
				return fmt.Errorf("profiles[%d].applications[%d]: unknown status %q", i, j, a.Status)
			}
			for k, e := range a.Events {
				if _, err := time.Parse(models.DateLayout, e.Date); err != nil {
					return fmt.Errorf("profiles[%d].applications[%d].events[%d].date: %w", i, j, k, err)
				}
			}
		}
	}
	return nil
}

func parseFixtureDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (p ProfileFixture) input() service.ProfileInput {
	birth, _ := parseFixtureDate(p.BirthDate)
	return service.ProfileInput{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Bio:       p.Bio,
		Location:  p.Location,
		BirthDate: birth,
	}
}

func (a ApplicationFixture) input() service.NewApplicationInput {
	return service.NewApplicationInput{PositionInput: service.PositionInput{
		CompanyName:        a.CompanyName,
		CompanyLocation:    a.CompanyLocation,
		CompanySubIndustry: a.CompanySubIndustry,
		PositionName:       a.PositionName,
		IsRemote:           a.IsRemote,
		MinSalary:          a.MinSalary,
		MaxSalary:          a.MaxSalary,
		TechStack:          a.TechStack,
	}}
}
