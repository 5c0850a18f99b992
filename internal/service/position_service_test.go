package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coop-portal-api/internal/models"
	appErrors "github.com/noah-isme/coop-portal-api/pkg/errors"
)

type mockPositionRepo struct {
	positions   map[int64]models.PositionDetail
	searchCalls int
	created     *models.Position
	updated     *models.Position
}

func (m *mockPositionRepo) FindByID(ctx context.Context, id int64) (*models.PositionDetail, error) {
	if p, ok := m.positions[id]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPositionRepo) Search(ctx context.Context, filter models.PositionFilter) ([]models.PositionDetail, int, error) {
	m.searchCalls++
	var out []models.PositionDetail
	for _, p := range m.positions {
		if filter.Status == "" || p.Status == filter.Status {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (m *mockPositionRepo) ListByEmployer(ctx context.Context, employerID int64) ([]models.PositionDetail, error) {
	var out []models.PositionDetail
	for _, p := range m.positions {
		if p.EmployerID == employerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPositionRepo) Create(ctx context.Context, position *models.Position) error {
	position.PositionID = 100
	position.Version = 1
	m.created = position
	return nil
}

func (m *mockPositionRepo) Update(ctx context.Context, position *models.Position) error {
	position.Version++
	m.updated = position
	return nil
}

type mockEmployerReader struct{}

func (mockEmployerReader) FindByID(ctx context.Context, id int64) (*models.Employer, error) {
	if id == 2 {
		return &models.Employer{EmployerID: 2, CompanyName: "Acme", Location: "Springfield"}, nil
	}
	return nil, sql.ErrNoRows
}

// memoryCache is a CacheRepository backed by a map of already-encoded values.
type memoryCache struct {
	entries     map[string]interface{}
	invalidated []string
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	v, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	result, ok := v.(*PositionSearchResult)
	if !ok {
		return errors.New("unexpected cache type")
	}
	*dest.(*PositionSearchResult) = *result
	return nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.entries[key] = value
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.invalidated = append(m.invalidated, pattern)
	m.entries = map[string]interface{}{}
	return nil
}

func newPositionFixture() (*PositionService, *mockPositionRepo, *memoryCache) {
	repo := &mockPositionRepo{positions: map[int64]models.PositionDetail{
		5: {Position: models.Position{PositionID: 5, EmployerID: 2, JobTitle: "Backend Intern", Status: models.PositionStatusOpen, Version: 1}, CompanyName: "Acme"},
	}}
	store := &memoryCache{entries: map[string]interface{}{}}
	cache := NewCacheService(store, NewMetricsService(), time.Minute, nil, true)
	return NewPositionService(repo, mockEmployerReader{}, cache, time.Minute, nil, nil), repo, store
}

func validPositionRequest() PositionRequest {
	return PositionRequest{
		JobTitle:         " Data Intern ",
		JobDescription:   "Pipelines",
		NumberOfWeeks:    12,
		HoursPerWeek:     20,
		JobLocation:      "Remote",
		MajorsOfInterest: "CS, Statistics",
	}
}

func TestPositionServiceCreate(t *testing.T) {
	svc, repo, store := newPositionFixture()

	created, err := svc.Create(context.Background(), 2, validPositionRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(100), created.PositionID)
	assert.Equal(t, "Data Intern", created.JobTitle)
	assert.Equal(t, models.PositionStatusOpen, repo.created.Status)
	assert.Equal(t, "Acme", created.CompanyName)
	assert.Equal(t, []string{positionCachePattern}, store.invalidated)
}

func TestPositionServiceCreateValidation(t *testing.T) {
	svc, _, _ := newPositionFixture()

	req := validPositionRequest()
	req.NumberOfWeeks = 0
	_, err := svc.Create(context.Background(), 2, req)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(context.Background(), 99, validPositionRequest())
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestPositionServiceUpdateOwnership(t *testing.T) {
	svc, repo, _ := newPositionFixture()

	req := validPositionRequest()
	req.Status = "closed"
	_, err := svc.Update(context.Background(), 3, 5, req)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Nil(t, repo.updated)

	updated, err := svc.Update(context.Background(), 2, 5, req)
	require.NoError(t, err)
	assert.Equal(t, models.PositionStatusClosed, updated.Status)
	assert.Equal(t, int64(2), updated.Version)

	_, err = svc.Update(context.Background(), 2, 404, req)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestPositionServiceSearchUsesCache(t *testing.T) {
	svc, repo, _ := newPositionFixture()
	ctx := context.Background()

	first, hit, err := svc.Search(ctx, models.PositionFilter{Status: models.PositionStatusOpen})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, first.Total)

	second, hit, err := svc.Search(ctx, models.PositionFilter{Status: models.PositionStatusOpen})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, 1, repo.searchCalls)

	_, err = svc.Create(ctx, 2, validPositionRequest())
	require.NoError(t, err)
	_, hit, err = svc.Search(ctx, models.PositionFilter{Status: models.PositionStatusOpen})
	require.NoError(t, err)
	assert.False(t, hit, "writes invalidate cached searches")
	assert.Equal(t, 2, repo.searchCalls)
}

func TestPositionServiceSearchWithoutCache(t *testing.T) {
	repo := &mockPositionRepo{positions: map[int64]models.PositionDetail{}}
	svc := NewPositionService(repo, mockEmployerReader{}, nil, 0, nil, nil)

	result, hit, err := svc.Search(context.Background(), models.PositionFilter{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotNil(t, result.Items)
	assert.Equal(t, 0, result.Total)
}

func TestPositionSearchKeyNormalises(t *testing.T) {
	a := positionSearchKey(models.PositionFilter{Location: " Remote", Page: 1, PageSize: 20})
	b := positionSearchKey(models.PositionFilter{Location: "remote ", Page: 1, PageSize: 20})
	assert.Equal(t, a, b)
}
