package consent

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	PUT(path string, body any) error
	GET(path string, headers map[string]string) error
	StatusCode() int
	GetResponseField(field string) (any, error)
	Remember(name, value string)
	Recall(name string) string
}

// RegisterSteps registers consent-related step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &consentSteps{tc: tc}

	// Session steps
	ctx.Step(`^I start a consent session for business "([^"]*)"$`, steps.startSession)
	ctx.Step(`^I start a consent session without a business$`, steps.startSessionWithoutBusiness)
	ctx.Step(`^I select business "([^"]*)"$`, steps.selectBusiness)
	ctx.Step(`^I toggle consent "([^"]*)"$`, steps.toggle)
	ctx.Step(`^I view my consent history$`, steps.viewHistory)
	ctx.Step(`^I request "([^"]*)" of my data$`, steps.submitRequest)

	// Assertion steps
	ctx.Step(`^consent "([^"]*)" should be granted$`, steps.consentShouldBe(true))
	ctx.Step(`^consent "([^"]*)" should be withdrawn$`, steps.consentShouldBe(false))
	ctx.Step(`^(\d+) of 8 categories should be active$`, steps.activeCountShouldBe)
	ctx.Step(`^the newest history entry should have status "([^"]*)"$`, steps.newestHistoryStatus)
	ctx.Step(`^the notification should be empty$`, steps.notificationShouldBeEmpty)
}

type consentSteps struct {
	tc TestContext
}

func (s *consentSteps) startSession(ctx context.Context, business string) error {
	if err := s.tc.POST("/consent/sessions", map[string]string{"business": business}); err != nil {
		return err
	}
	return s.rememberSession()
}

func (s *consentSteps) startSessionWithoutBusiness(ctx context.Context) error {
	if err := s.tc.POST("/consent/sessions", map[string]string{}); err != nil {
		return err
	}
	return s.rememberSession()
}

func (s *consentSteps) rememberSession() error {
	if s.tc.StatusCode() != 201 {
		return fmt.Errorf("start session: expected 201, got %d", s.tc.StatusCode())
	}
	sessionID, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.Remember("session", fmt.Sprint(sessionID))
	return nil
}

func (s *consentSteps) selectBusiness(ctx context.Context, business string) error {
	return s.tc.PUT("/consent/sessions/{session}/business", map[string]string{"business": business})
}

func (s *consentSteps) toggle(ctx context.Context, key string) error {
	return s.tc.POST("/consent/sessions/{session}/toggle", map[string]string{"key": key})
}

func (s *consentSteps) viewHistory(ctx context.Context) error {
	return s.tc.GET("/consent/sessions/{session}/history", nil)
}

func (s *consentSteps) submitRequest(ctx context.Context, kind string) error {
	return s.tc.POST("/consent/sessions/{session}/requests", map[string]string{"kind": kind})
}

func (s *consentSteps) consentShouldBe(granted bool) func(context.Context, string) error {
	return func(ctx context.Context, key string) error {
		if err := s.tc.GET("/consent/sessions/{session}", nil); err != nil {
			return err
		}
		rows, err := s.tc.GetResponseField("rows")
		if err != nil {
			return err
		}
		list, _ := rows.([]any)
		for _, row := range list {
			r, _ := row.(map[string]any)
			if r["key"] == key {
				if r["granted"] != granted {
					return fmt.Errorf("consent %q: expected granted=%t, got %v", key, granted, r["granted"])
				}
				return nil
			}
		}
		return fmt.Errorf("consent %q not present in session rows", key)
	}
}

func (s *consentSteps) activeCountShouldBe(ctx context.Context, count int) error {
	if err := s.tc.GET("/consent/sessions/{session}", nil); err != nil {
		return err
	}
	value, err := s.tc.GetResponseField("active_count")
	if err != nil {
		return err
	}
	if n, ok := value.(float64); !ok || int(n) != count {
		return fmt.Errorf("expected %d active categories, got %v", count, value)
	}
	return nil
}

func (s *consentSteps) newestHistoryStatus(ctx context.Context, status string) error {
	if err := s.viewHistory(ctx); err != nil {
		return err
	}
	entries, err := s.tc.GetResponseField("entries")
	if err != nil {
		return err
	}
	list, _ := entries.([]any)
	if len(list) == 0 {
		return fmt.Errorf("history is empty")
	}
	newest, _ := list[0].(map[string]any)
	if newest["status"] != status {
		return fmt.Errorf("expected newest status %q, got %v", status, newest["status"])
	}
	return nil
}

func (s *consentSteps) notificationShouldBeEmpty(ctx context.Context) error {
	value, err := s.tc.GetResponseField("notification")
	if err != nil {
		return err
	}
	if value != nil {
		return fmt.Errorf("expected no notification, got %v", value)
	}
	return nil
}
