package orchestrator

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/insights-agent/internal/analytics"
	"github.com/sells-group/insights-agent/internal/llm"
	"github.com/sells-group/insights-agent/internal/model"
	"github.com/sells-group/insights-agent/internal/seo"
)

type mockCapability struct {
	mock.Mock
}

func (m *mockCapability) Extract(ctx context.Context, system, user string) (json.RawMessage, error) {
	args := m.Called(ctx, system, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *mockCapability) Classify(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

func (m *mockCapability) Decompose(ctx context.Context, system, user string) ([]llm.SubTask, error) {
	args := m.Called(ctx, system, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]llm.SubTask), args.Error(1)
}

func (m *mockCapability) Generate(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

type mockAnalyticsAgent struct {
	mock.Mock
}

func (m *mockAnalyticsAgent) Process(ctx context.Context, req analytics.Request) model.AgentResponse {
	args := m.Called(ctx, req)
	return args.Get(0).(model.AgentResponse)
}

type mockSEOAgent struct {
	mock.Mock
}

func (m *mockSEOAgent) Process(ctx context.Context, req seo.Request) model.AgentResponse {
	args := m.Called(ctx, req)
	return args.Get(0).(model.AgentResponse)
}
