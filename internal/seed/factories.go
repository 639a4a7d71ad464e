package seed

import (
	"fmt"
	"time"

	"jobcrm/internal/models"
	"jobcrm/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

var subIndustries = []string{
	"Logistics", "Fintech", "Healthcare", "E-commerce", "Developer Tools",
	"Gaming", "Education", "Energy", "Media", "Security",
}

var stacks = []string{
	"Go, PostgreSQL", "Go, Kubernetes", "TypeScript, React", "Python, Django",
	"Rust, gRPC", "Java, Kafka", "Kotlin, Spring", "Elixir, Phoenix",
}

// Factory generates plausible inputs for the services.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory returns a Factory. A zero seed picks a random one.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

func (f *Factory) Profile() service.ProfileInput {
	birth := models.TruncateDate(f.faker.DateRange(
		time.Date(1965, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2003, 12, 31, 0, 0, 0, 0, time.UTC),
	))
	return service.ProfileInput{
		FirstName: f.faker.FirstName(),
		LastName:  f.faker.LastName(),
		Bio:       f.faker.Sentence(12),
		Location:  f.faker.City(),
		BirthDate: &birth,
	}
}

// Application always produces a valid salary range.
func (f *Factory) Application() service.NewApplicationInput {
	low := int64(f.faker.Number(40, 150)) * 1000
	high := low + int64(f.faker.Number(0, 60))*1000
	return service.NewApplicationInput{PositionInput: service.PositionInput{
		CompanyName:        f.faker.Company(),
		CompanyLocation:    f.faker.City(),
		CompanySubIndustry: f.faker.RandomString(subIndustries),
		PositionName:       fmt.Sprintf("%s %s", f.faker.JobDescriptor(), f.faker.JobTitle()),
		IsRemote:           f.faker.Bool(),
		MinSalary:          low,
		MaxSalary:          high,
		TechStack:          f.faker.RandomString(stacks),
	}}
}

// Status picks a target status, weighted towards the active pipeline.
func (f *Factory) Status() models.ApplicationStatus {
	switch n := f.faker.Number(1, 10); {
	case n <= 5:
		return models.ApplicationStatusOpen
	case n <= 7:
		return models.ApplicationStatusOfferExtended
	case n == 8:
		return models.ApplicationStatusRejected
	case n == 9:
		return models.ApplicationStatusWithdrawn
	default:
		return models.ApplicationStatusClosed
	}
}

// Event returns a description and a date within the last maxDays days.
func (f *Factory) Event(now time.Time, maxDays int) (string, time.Time) {
	if maxDays <= 0 {
		maxDays = 90
	}
	date := models.TruncateDate(now.AddDate(0, 0, -f.faker.Number(0, maxDays)))
	return f.faker.Sentence(6), date
}
