package service

import (
	"context"

	"encore/models"

	"github.com/stretchr/testify/mock"
)

// MockArtistRepository is a mock implementation of ArtistRepository
type MockArtistRepository struct {
	mock.Mock
}

func (m *MockArtistRepository) GetByID(ctx context.Context, id string) (*models.Artist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Artist), args.Error(1)
}

func (m *MockArtistRepository) ListAfter(ctx context.Context, cursor string, limit int) ([]*models.Artist, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Artist), args.Error(1)
}

func (m *MockArtistRepository) ApplyUpdates(ctx context.Context, updates []*models.ArtistUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

func (m *MockArtistRepository) Create(ctx context.Context, artist *models.Artist) error {
	args := m.Called(ctx, artist)
	return args.Error(0)
}

// MockStreamRunRepository is a mock implementation of StreamRunRepository
type MockStreamRunRepository struct {
	mock.Mock
}

func (m *MockStreamRunRepository) Get(ctx context.Context) (*models.StreamRun, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StreamRun), args.Error(1)
}

func (m *MockStreamRunRepository) GetForUpdate(ctx context.Context) (*models.StreamRun, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StreamRun), args.Error(1)
}

func (m *MockStreamRunRepository) Put(ctx context.Context, run *models.StreamRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockStreamRunRepository) Finalize(ctx context.Context, counts models.RunCounts, cursor *string, completed bool) error {
	args := m.Called(ctx, counts, cursor, completed)
	return args.Error(0)
}

func (m *MockStreamRunRepository) Release(ctx context.Context, errMsg string) error {
	args := m.Called(ctx, errMsg)
	return args.Error(0)
}

// MockGameClockRepository is a mock implementation of GameClockRepository
type MockGameClockRepository struct {
	mock.Mock
}

func (m *MockGameClockRepository) Get(ctx context.Context) (*models.GameClock, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameClock), args.Error(1)
}

func (m *MockGameClockRepository) Set(ctx context.Context, clock *models.GameClock) error {
	args := m.Called(ctx, clock)
	return args.Error(0)
}

// MockAuditLogRepository is a mock implementation of AuditLogRepository
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Append(ctx context.Context, action string, details map[string]any) error {
	args := m.Called(ctx, action, details)
	return args.Error(0)
}

func (m *MockAuditLogRepository) ListRecent(ctx context.Context, action string, limit int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, action, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	ArtistRepo    *MockArtistRepository
	StreamRunRepo *MockStreamRunRepository
}

// NewMockUnitOfWork creates a mock unit of work with mock repositories attached
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		ArtistRepo:    new(MockArtistRepository),
		StreamRunRepo: new(MockStreamRunRepository),
	}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) ArtistRepository() ArtistRepository {
	return m.ArtistRepo
}

func (m *MockUnitOfWork) StreamRunRepository() StreamRunRepository {
	return m.StreamRunRepo
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockGameClock is a mock implementation of GameClock
type MockGameClock struct {
	mock.Mock
}

func (m *MockGameClock) CurrentGameDate(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockAuditLogger is a mock implementation of AuditLogger
type MockAuditLogger struct {
	mock.Mock
}

func (m *MockAuditLogger) Log(ctx context.Context, action string, details map[string]any) {
	m.Called(ctx, action, details)
}
