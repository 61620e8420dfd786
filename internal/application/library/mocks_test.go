package library

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/turtacn/ChemGraph/internal/domain/chemistry"
	domainLib "github.com/turtacn/ChemGraph/internal/domain/library"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Save(ctx context.Context, s *domainLib.Structure) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*domainLib.Structure, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainLib.Structure), args.Error(1)
}

func (m *MockRepository) FindByHash(ctx context.Context, hash string) (*domainLib.Structure, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainLib.Structure), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, limit, offset int) ([]*domainLib.Structure, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domainLib.Structure), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	return m.Called(ctx, key, contentType, data).Error(0)
}

func (m *MockDocumentStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDocumentStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockCache) Set(ctx context.Context, key string, data []byte) error {
	return m.Called(ctx, key, data).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, e domainLib.Event) error {
	return m.Called(ctx, e).Error(0)
}

type MockIndexer struct {
	mock.Mock
}

func (m *MockIndexer) Index(ctx context.Context, s *domainLib.Structure) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockIndexer) Remove(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockIndexer) Search(ctx context.Context, query string, limit int) ([]domainLib.SearchHit, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainLib.SearchHit), args.Error(1)
}

type MockProjector struct {
	mock.Mock
}

func (m *MockProjector) Project(ctx context.Context, s *domainLib.Structure, model *chemistry.Model) error {
	return m.Called(ctx, s, model).Error(0)
}

func (m *MockProjector) Remove(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

//Personal.AI order the ending
