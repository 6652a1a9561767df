package pipeline

import "context"

// Manager runs filters in registration order and stops at the first one
// that blocks or fails. Later filters never see a blocked message, so their
// side effects (counters, window state) only reflect messages that reached
// them.
type Manager struct {
	filters []Filter
}

func NewManager(filters ...Filter) *Manager {
	return &Manager{filters: filters}
}

func (m *Manager) Process(ctx context.Context, payload Payload) (*Result, error) {
	for _, f := range m.filters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := f.Process(ctx, payload)
		if err != nil {
			return nil, err
		}
		if !res.IsAllowed {
			if res.FilterName == "" {
				res.FilterName = f.Name()
			}
			return res, nil
		}
	}
	return &Result{IsAllowed: true}, nil
}
