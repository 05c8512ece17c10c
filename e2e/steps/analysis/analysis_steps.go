package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string, headers map[string]string) error
	StatusCode() int
	GetResponseField(field string) (any, error)
	Remember(name, value string)
}

// RegisterSteps registers business analysis step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &analysisSteps{tc: tc}

	ctx.Step(`^I start a privacy analysis$`, steps.startAnalysis)
	ctx.Step(`^I check the analysis$`, steps.checkAnalysis)
	ctx.Step(`^the analysis should complete within (\d+) seconds$`, steps.shouldCompleteWithin)
	ctx.Step(`^the analysis should report (\d+) findings$`, steps.shouldReportFindings)
}

type analysisSteps struct {
	tc TestContext
}

func (s *analysisSteps) startAnalysis(ctx context.Context) error {
	if err := s.tc.POST("/business/analysis", nil); err != nil {
		return err
	}
	if s.tc.StatusCode() != 202 {
		return fmt.Errorf("start analysis: expected 202, got %d", s.tc.StatusCode())
	}
	runID, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.Remember("run", fmt.Sprint(runID))
	return nil
}

func (s *analysisSteps) checkAnalysis(ctx context.Context) error {
	return s.tc.GET("/business/analysis/{run}", nil)
}

func (s *analysisSteps) shouldCompleteWithin(ctx context.Context, seconds int) error {
	deadline := time.Now().Add(time.Duration(seconds) * time.Second)
	for time.Now().Before(deadline) {
		if err := s.checkAnalysis(ctx); err != nil {
			return err
		}
		status, err := s.tc.GetResponseField("state.status")
		if err != nil {
			return err
		}
		if status == "complete" {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("analysis did not complete within %ds", seconds)
}

func (s *analysisSteps) shouldReportFindings(ctx context.Context, count int) error {
	findings, err := s.tc.GetResponseField("state.findings")
	if err != nil {
		return err
	}
	list, _ := findings.([]any)
	if len(list) != count {
		return fmt.Errorf("expected %d findings, got %d", count, len(list))
	}
	return nil
}
