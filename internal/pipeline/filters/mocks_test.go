package filters

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/AndVl1/chatkeep-sub003/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

type mockConfigRepo struct {
	cfg *repository.ChatConfig
	err error
}

func (m *mockConfigRepo) GetConfig(chatID int64) (*repository.ChatConfig, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.cfg != nil {
		return m.cfg, nil
	}
	return &repository.ChatConfig{ChatID: chatID, MaxWarnings: 3, WarningTTLHours: 24}, nil
}

func (m *mockConfigRepo) InitConfig(chatID int64) error { return m.err }

func (m *mockConfigRepo) UpdateConfig(cfg *repository.ChatConfig) error {
	m.cfg = cfg
	return m.err
}

type mockLockRepo struct {
	locks      map[string]repository.ChatLock
	exemptions []repository.LockExemption
	allowlist  []repository.LockAllowlistEntry
	err        error
}

func (m *mockLockRepo) GetLocks(_ context.Context, _ int64) (map[string]repository.ChatLock, error) {
	return m.locks, m.err
}

func (m *mockLockRepo) SetLock(_ context.Context, chatID int64, lockType string, locked bool, reason string) error {
	if m.locks == nil {
		m.locks = make(map[string]repository.ChatLock)
	}
	m.locks[lockType] = repository.ChatLock{ChatID: chatID, LockType: lockType, Locked: locked, Reason: reason}
	return m.err
}

func (m *mockLockRepo) AddExemption(_ context.Context, e *repository.LockExemption) error {
	m.exemptions = append(m.exemptions, *e)
	return m.err
}

func (m *mockLockRepo) RemoveExemption(_ context.Context, _ int64) (bool, error) {
	return true, m.err
}

func (m *mockLockRepo) FindExemptions(_ context.Context, _ int64) ([]repository.LockExemption, error) {
	return m.exemptions, m.err
}

func (m *mockLockRepo) AddAllowlistEntry(_ context.Context, e *repository.LockAllowlistEntry) error {
	m.allowlist = append(m.allowlist, *e)
	return m.err
}

func (m *mockLockRepo) RemoveAllowlistEntry(_ context.Context, _ int64) (bool, error) {
	return true, m.err
}

func (m *mockLockRepo) FindAllowlist(_ context.Context, _ int64) ([]repository.LockAllowlistEntry, error) {
	return m.allowlist, m.err
}

type mockBlocklistRepo struct {
	entries []repository.BlocklistEntry
	err     error
}

func (m *mockBlocklistRepo) Add(_ context.Context, e *repository.BlocklistEntry) error {
	m.entries = append(m.entries, *e)
	return m.err
}

func (m *mockBlocklistRepo) Remove(_ context.Context, _ int64) (bool, error) {
	return true, m.err
}

func (m *mockBlocklistRepo) FindCandidates(_ context.Context, _ int64) ([]repository.BlocklistEntry, error) {
	return m.entries, m.err
}

func (m *mockBlocklistRepo) ListByChat(_ context.Context, _ int64) ([]repository.BlocklistEntry, error) {
	return m.entries, m.err
}

func (m *mockBlocklistRepo) ListGlobal(_ context.Context) ([]repository.BlocklistEntry, error) {
	return m.entries, m.err
}

type mockAntifloodRepo struct {
	settings *repository.AntifloodSettings
	err      error
}

func (m *mockAntifloodRepo) GetSettings(_ context.Context, chatID int64) (*repository.AntifloodSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.settings != nil {
		return m.settings, nil
	}
	return &repository.AntifloodSettings{ChatID: chatID}, nil
}

func (m *mockAntifloodRepo) UpsertSettings(_ context.Context, settings *repository.AntifloodSettings) error {
	m.settings = settings
	return m.err
}

type mockStatsRepo struct {
	mu         sync.Mutex
	increments map[string]int
	err        error
}

func (m *mockStatsRepo) Increment(_ context.Context, _ int64, field string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.increments == nil {
		m.increments = make(map[string]int)
	}
	m.increments[field]++
	return m.err
}

func (m *mockStatsRepo) GetTotals(_ context.Context, chatID int64) (*repository.ChatStats, error) {
	return &repository.ChatStats{ChatID: chatID, Date: time.Now()}, m.err
}
