package handlers

import (
	"context"
	"time"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/service"
)

// ---- Service mocks shared by handler tests ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockScheduling struct {
	decision models.Decision
	err      error

	lastPolicy models.SchedulingPolicy
	calls      int
}

func (m *mockScheduling) Decide(ctx context.Context, policy models.SchedulingPolicy) (models.Decision, error) {
	m.calls++
	m.lastPolicy = policy
	return m.decision, m.err
}

type mockRunner struct {
	record models.RunRecord
	err    error

	lastParams service.RunParams
	calls      int
}

func (m *mockRunner) RunOnce(ctx context.Context, p service.RunParams) (models.RunRecord, error) {
	m.calls++
	m.lastParams = p
	return m.record, m.err
}

type mockEvidence struct {
	runs      []models.RunRecord
	decisions []models.Decision
	err       error

	lastFilter service.LogFilter
}

func (m *mockEvidence) Runs(ctx context.Context, f service.LogFilter) ([]models.RunRecord, error) {
	m.lastFilter = f
	return m.runs, m.err
}
func (m *mockEvidence) Decisions(ctx context.Context, f service.LogFilter) ([]models.Decision, error) {
	m.lastFilter = f
	return m.decisions, m.err
}

type mockMonitor struct {
	reading models.IntensityReading
	err     error

	lastHorizon int
}

func (m *mockMonitor) Run(ctx context.Context, tick time.Duration) {}
func (m *mockMonitor) Latest(ctx context.Context) (models.IntensityReading, error) {
	return m.reading, m.err
}
func (m *mockMonitor) Lookup(ctx context.Context, horizonHours int) (models.IntensityReading, error) {
	m.lastHorizon = horizonHours
	return m.reading, m.err
}
