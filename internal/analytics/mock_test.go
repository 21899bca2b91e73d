package analytics

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/insights-agent/internal/llm"
	"github.com/sells-group/insights-agent/pkg/ga4"
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

type mockGA4 struct {
	mock.Mock
}

func (m *mockGA4) RunReport(ctx context.Context, req ga4.ReportRequest) (*ga4.ReportResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ga4.ReportResponse), args.Error(1)
}

func reportOf(rowCount int, dims, mets []string, rows ...ga4.ReportRow) *ga4.ReportResponse {
	return &ga4.ReportResponse{
		DimensionHeaders: dims,
		MetricHeaders:    mets,
		Rows:             rows,
		RowCount:         rowCount,
	}
}
