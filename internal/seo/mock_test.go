package seo

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/insights-agent/internal/llm"
	"github.com/sells-group/insights-agent/internal/tabular"
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

type mockSheets struct {
	mock.Mock
}

func (m *mockSheets) FetchTable(ctx context.Context, sheetID string) (*tabular.Table, error) {
	args := m.Called(ctx, sheetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tabular.Table), args.Error(1)
}

func extracted(v any) json.RawMessage {
	raw, _ := json.Marshal(v)
	return json.RawMessage(raw)
}
