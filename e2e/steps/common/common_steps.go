package common

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	StatusCode() int
	GetResponseField(field string) (any, error)
	ResponseContains(field string) bool
}

// RegisterSteps registers background, request and assertion steps shared by features
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the server is running$`, steps.serverIsRunning)
	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^I wait (\d+) milliseconds$`, steps.waitMilliseconds)

	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.fieldShouldEqual)
	ctx.Step(`^the response field "([^"]*)" should be (\d+)$`, steps.fieldShouldBeNumber)
	ctx.Step(`^the response should contain "([^"]*)"$`, steps.responseShouldContain)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) serverIsRunning(ctx context.Context) error {
	if err := s.tc.GET("/health", nil); err != nil {
		return err
	}
	return s.statusShouldBe(ctx, 200)
}

func (s *commonSteps) get(ctx context.Context, path string) error {
	return s.tc.GET(path, nil)
}

func (s *commonSteps) waitMilliseconds(ctx context.Context, ms int) error {
	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *commonSteps) statusShouldBe(ctx context.Context, status int) error {
	if got := s.tc.StatusCode(); got != status {
		return fmt.Errorf("expected status %d, got %d", status, got)
	}
	return nil
}

func (s *commonSteps) fieldShouldEqual(ctx context.Context, field, expected string) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(value); got != expected {
		return fmt.Errorf("field %q: expected %q, got %q", field, expected, got)
	}
	return nil
}

func (s *commonSteps) fieldShouldBeNumber(ctx context.Context, field string, expected int) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	n, ok := value.(float64)
	if !ok || int(n) != expected {
		return fmt.Errorf("field %q: expected %d, got %v", field, expected, value)
	}
	return nil
}

func (s *commonSteps) responseShouldContain(ctx context.Context, field string) error {
	if !s.tc.ResponseContains(field) {
		return fmt.Errorf("response has no field %q", field)
	}
	return nil
}
