package feed

import (
	"context"
	"encoding/json"
)

// MockFetcher returns controllable fixed documents for development and testing.
type MockFetcher struct {
	MissionDocs map[string]map[string]json.RawMessage // keyed by date
	DeepDiveDoc json.RawMessage
	Err         error
	Calls       []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchMissions(_ context.Context, date string) (map[string]json.RawMessage, error) {
	m.Calls = append(m.Calls, "missions:"+date)
	if m.Err != nil {
		return nil, m.Err
	}
	doc, ok := m.MissionDocs[date]
	if !ok {
		return nil, &FetchError{URL: date, StatusCode: 404}
	}
	return doc, nil
}

func (m *MockFetcher) FetchDeepDives(_ context.Context, stamp string) (json.RawMessage, error) {
	m.Calls = append(m.Calls, "deepdives:"+stamp)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.DeepDiveDoc, nil
}
