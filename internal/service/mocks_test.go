package service

import (
	"context"
	"sync"
	"time"

	"github.com/AndVl1/chatkeep-sub003/internal/repository"
)

type MockConfigRepo struct {
	Cfg              *repository.ChatConfig
	Err              error
	GetConfigFunc    func(chatID int64) (*repository.ChatConfig, error)
	UpdateConfigFunc func(cfg *repository.ChatConfig) error
}

func (m *MockConfigRepo) GetConfig(chatID int64) (*repository.ChatConfig, error) {
	if m.GetConfigFunc != nil {
		return m.GetConfigFunc(chatID)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Cfg != nil {
		return m.Cfg, nil
	}
	return &repository.ChatConfig{
		ChatID:                   chatID,
		MaxWarnings:              3,
		WarningTTLHours:          24,
		ThresholdAction:          "mute",
		ThresholdDurationMinutes: 60,
		DefaultBlocklistAction:   "delete",
	}, nil
}

func (m *MockConfigRepo) InitConfig(chatID int64) error { return m.Err }

func (m *MockConfigRepo) UpdateConfig(cfg *repository.ChatConfig) error {
	if m.UpdateConfigFunc != nil {
		return m.UpdateConfigFunc(cfg)
	}
	m.Cfg = cfg
	return m.Err
}

type MockWarningRepo struct {
	AddAndCountFunc      func(ctx context.Context, w *repository.Warning, maxWarnings int) (int, bool, error)
	CountActiveFunc      func(ctx context.Context, chatID, userID int64) (int, error)
	CountAllActiveFunc   func(ctx context.Context) (int64, error)
	ListActiveFunc       func(ctx context.Context, chatID, userID int64, offset, limit int) ([]repository.Warning, int64, error)
	RemoveMostRecentFunc func(ctx context.Context, chatID, userID int64) (bool, error)
	ClearActiveFunc      func(ctx context.Context, chatID, userID int64) error
	DeleteExpiredFunc    func(ctx context.Context) (int64, error)
}

func (m *MockWarningRepo) AddAndCount(ctx context.Context, w *repository.Warning, maxWarnings int) (int, bool, error) {
	if m.AddAndCountFunc != nil {
		return m.AddAndCountFunc(ctx, w, maxWarnings)
	}
	return 1, false, nil
}

func (m *MockWarningRepo) CountActive(ctx context.Context, chatID, userID int64) (int, error) {
	if m.CountActiveFunc != nil {
		return m.CountActiveFunc(ctx, chatID, userID)
	}
	return 0, nil
}

func (m *MockWarningRepo) CountAllActive(ctx context.Context) (int64, error) {
	if m.CountAllActiveFunc != nil {
		return m.CountAllActiveFunc(ctx)
	}
	return 0, nil
}

func (m *MockWarningRepo) ListActive(ctx context.Context, chatID, userID int64, offset, limit int) ([]repository.Warning, int64, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, chatID, userID, offset, limit)
	}
	return nil, 0, nil
}

func (m *MockWarningRepo) RemoveMostRecent(ctx context.Context, chatID, userID int64) (bool, error) {
	if m.RemoveMostRecentFunc != nil {
		return m.RemoveMostRecentFunc(ctx, chatID, userID)
	}
	return false, nil
}

func (m *MockWarningRepo) ClearActive(ctx context.Context, chatID, userID int64) error {
	if m.ClearActiveFunc != nil {
		return m.ClearActiveFunc(ctx, chatID, userID)
	}
	return nil
}

func (m *MockWarningRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx)
	}
	return 0, nil
}

type MockPunishmentRepo struct {
	Added          []repository.Punishment
	Err            error
	ListByChatFunc func(ctx context.Context, chatID int64, offset, limit int) ([]repository.Punishment, int64, error)
	ListByUserFunc func(ctx context.Context, chatID, userID int64, offset, limit int) ([]repository.Punishment, int64, error)
}

func (m *MockPunishmentRepo) Add(_ context.Context, p *repository.Punishment) error {
	if m.Err != nil {
		return m.Err
	}
	m.Added = append(m.Added, *p)
	return nil
}

func (m *MockPunishmentRepo) ListByChat(ctx context.Context, chatID int64, offset, limit int) ([]repository.Punishment, int64, error) {
	if m.ListByChatFunc != nil {
		return m.ListByChatFunc(ctx, chatID, offset, limit)
	}
	return nil, 0, nil
}

func (m *MockPunishmentRepo) ListByUser(ctx context.Context, chatID, userID int64, offset, limit int) ([]repository.Punishment, int64, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, chatID, userID, offset, limit)
	}
	return nil, 0, nil
}

type MockBlocklistRepo struct {
	Entries []repository.BlocklistEntry
	Removed bool
	Err     error
}

func (m *MockBlocklistRepo) Add(_ context.Context, e *repository.BlocklistEntry) error {
	if m.Err != nil {
		return m.Err
	}
	m.Entries = append(m.Entries, *e)
	return nil
}

func (m *MockBlocklistRepo) Remove(_ context.Context, _ int64) (bool, error) {
	return m.Removed, m.Err
}

func (m *MockBlocklistRepo) FindCandidates(_ context.Context, _ int64) ([]repository.BlocklistEntry, error) {
	return m.Entries, m.Err
}

func (m *MockBlocklistRepo) ListByChat(_ context.Context, _ int64) ([]repository.BlocklistEntry, error) {
	return m.Entries, m.Err
}

func (m *MockBlocklistRepo) ListGlobal(_ context.Context) ([]repository.BlocklistEntry, error) {
	return m.Entries, m.Err
}

type MockLockRepo struct {
	Locks      map[string]repository.ChatLock
	Exemptions []repository.LockExemption
	Allowlist  []repository.LockAllowlistEntry
	Removed    bool
	Err        error
}

func (m *MockLockRepo) GetLocks(_ context.Context, _ int64) (map[string]repository.ChatLock, error) {
	return m.Locks, m.Err
}

func (m *MockLockRepo) SetLock(_ context.Context, chatID int64, lockType string, locked bool, reason string) error {
	if m.Err != nil {
		return m.Err
	}
	if m.Locks == nil {
		m.Locks = make(map[string]repository.ChatLock)
	}
	m.Locks[lockType] = repository.ChatLock{ChatID: chatID, LockType: lockType, Locked: locked, Reason: reason}
	return nil
}

func (m *MockLockRepo) AddExemption(_ context.Context, e *repository.LockExemption) error {
	if m.Err != nil {
		return m.Err
	}
	m.Exemptions = append(m.Exemptions, *e)
	return nil
}

func (m *MockLockRepo) RemoveExemption(_ context.Context, _ int64) (bool, error) {
	return m.Removed, m.Err
}

func (m *MockLockRepo) FindExemptions(_ context.Context, _ int64) ([]repository.LockExemption, error) {
	return m.Exemptions, m.Err
}

func (m *MockLockRepo) AddAllowlistEntry(_ context.Context, e *repository.LockAllowlistEntry) error {
	if m.Err != nil {
		return m.Err
	}
	m.Allowlist = append(m.Allowlist, *e)
	return nil
}

func (m *MockLockRepo) RemoveAllowlistEntry(_ context.Context, _ int64) (bool, error) {
	return m.Removed, m.Err
}

func (m *MockLockRepo) FindAllowlist(_ context.Context, _ int64) ([]repository.LockAllowlistEntry, error) {
	return m.Allowlist, m.Err
}

type MockAntifloodRepo struct {
	Settings *repository.AntifloodSettings
	Err      error
}

func (m *MockAntifloodRepo) GetSettings(_ context.Context, chatID int64) (*repository.AntifloodSettings, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Settings != nil {
		return m.Settings, nil
	}
	return &repository.AntifloodSettings{ChatID: chatID}, nil
}

func (m *MockAntifloodRepo) UpsertSettings(_ context.Context, settings *repository.AntifloodSettings) error {
	if m.Err != nil {
		return m.Err
	}
	m.Settings = settings
	return nil
}

type MockAdminCacheRepo struct {
	Entry        *repository.AdminCacheEntry
	Upserted     *repository.AdminCacheEntry
	Invalidated  bool
	GetErr       error
	UpsertErr    error
	GetValidFunc func(ctx context.Context, userID, chatID int64) (*repository.AdminCacheEntry, error)
}

func (m *MockAdminCacheRepo) GetValid(ctx context.Context, userID, chatID int64) (*repository.AdminCacheEntry, error) {
	if m.GetValidFunc != nil {
		return m.GetValidFunc(ctx, userID, chatID)
	}
	return m.Entry, m.GetErr
}

func (m *MockAdminCacheRepo) Upsert(_ context.Context, entry *repository.AdminCacheEntry) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.Upserted = entry
	return nil
}

func (m *MockAdminCacheRepo) Invalidate(_ context.Context, _, _ int64) error {
	m.Invalidated = true
	return nil
}

func (m *MockAdminCacheRepo) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

type MockMediaRepo struct {
	Files     map[string]*repository.MediaFile
	InsertErr error
	GetErr    error
	SetErr    error
	SetCalls  int
}

func (m *MockMediaRepo) GetByHash(_ context.Context, hash string) (*repository.MediaFile, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if f, ok := m.Files[hash]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, nil
}

func (m *MockMediaRepo) InsertIfAbsent(_ context.Context, file *repository.MediaFile) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	if m.Files == nil {
		m.Files = make(map[string]*repository.MediaFile)
	}
	if _, exists := m.Files[file.Hash]; !exists {
		cp := *file
		m.Files[file.Hash] = &cp
	}
	return nil
}

func (m *MockMediaRepo) SetFileID(_ context.Context, hash, fileID string) (bool, error) {
	m.SetCalls++
	if m.SetErr != nil {
		return false, m.SetErr
	}
	f, ok := m.Files[hash]
	if !ok || f.TelegramFileID != nil {
		return false, nil
	}
	f.TelegramFileID = &fileID
	return true, nil
}

func (m *MockMediaRepo) DeleteUnreferencedOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for hash, f := range m.Files {
		if f.TelegramFileID == nil && f.CreatedAt.Before(cutoff) {
			delete(m.Files, hash)
			n++
		}
	}
	return n, nil
}

type MockFeatureRepo struct {
	Rows map[string]*repository.ChatFeature
	Err  error
}

func (m *MockFeatureRepo) List(_ context.Context, _ int64) ([]repository.ChatFeature, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []repository.ChatFeature
	for _, row := range m.Rows {
		out = append(out, *row)
	}
	return out, nil
}

func (m *MockFeatureRepo) Get(_ context.Context, _ int64, key string) (*repository.ChatFeature, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if row, ok := m.Rows[key]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, nil
}

func (m *MockFeatureRepo) Upsert(_ context.Context, feature *repository.ChatFeature) error {
	if m.Err != nil {
		return m.Err
	}
	if m.Rows == nil {
		m.Rows = make(map[string]*repository.ChatFeature)
	}
	cp := *feature
	m.Rows[feature.FeatureKey] = &cp
	return nil
}

type MockStatsRepo struct {
	mu         sync.Mutex
	Increments map[string]int
	Err        error
}

func (m *MockStatsRepo) Increment(_ context.Context, _ int64, field string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Increments == nil {
		m.Increments = make(map[string]int)
	}
	m.Increments[field]++
	return m.Err
}

func (m *MockStatsRepo) GetTotals(_ context.Context, chatID int64) (*repository.ChatStats, error) {
	return &repository.ChatStats{ChatID: chatID}, m.Err
}

type MockAdminLookup struct {
	Result bool
	Err    error
	Calls  int
}

func (m *MockAdminLookup) IsAdmin(_ context.Context, _, _ int64) (bool, error) {
	m.Calls++
	return m.Result, m.Err
}

type MockMediaUpload struct {
	FileID string
	Err    error
	Calls  int
}

func (m *MockMediaUpload) Upload(_ context.Context, _ []byte, _ string, _ int64) (string, error) {
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	return m.FileID, nil
}

type MockLogChannel struct {
	Sent      []string
	ChannelID int64
	Err       error
}

func (m *MockLogChannel) Send(_ context.Context, channelID int64, text string) error {
	if m.Err != nil {
		return m.Err
	}
	m.ChannelID = channelID
	m.Sent = append(m.Sent, text)
	return nil
}

func testRepos() Repositories {
	return Repositories{
		Config:     &MockConfigRepo{},
		Warnings:   &MockWarningRepo{},
		Punishment: &MockPunishmentRepo{},
		Blocklist:  &MockBlocklistRepo{},
		Locks:      &MockLockRepo{},
		Antiflood:  &MockAntifloodRepo{},
		AdminCache: &MockAdminCacheRepo{},
		Media:      &MockMediaRepo{},
		Features:   &MockFeatureRepo{},
		Stats:      &MockStatsRepo{},
	}
}
