package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"resourcehub/cache"
	"resourcehub/config"
	"resourcehub/models"
	"resourcehub/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeStorage 内存版文件存储，替代 MinIO
type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	removed   []string
	failStore bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Store(_ context.Context, objectName string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failStore {
		return errors.New("store unavailable")
	}
	f.objects[objectName] = data
	return nil
}

func (f *fakeStorage) PresignedURL(_ context.Context, objectName string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[objectName]; !ok {
		return "", errors.New("object not found")
	}
	return "https://files.test/" + objectName, nil
}

func (f *fakeStorage) Remove(_ context.Context, objectName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, objectName)
	f.removed = append(f.removed, objectName)
	return nil
}

type testEnv struct {
	db        *gorm.DB
	storage   *fakeStorage
	users     UserService
	resources ResourceService
	ratings   RatingService
	dashboard DashboardService

	userRepo     repository.UserRepository
	resourceRepo repository.ResourceRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Tag{}, &models.Resource{}, &models.Rating{}))

	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	ratingRepo := repository.NewRatingRepository(db)

	storage := newFakeStorage()
	rankings := cache.NewNoopRankingsCache()
	jwtCfg := config.JWTConfig{Secret: "test-secret", ExpireMinutes: 60}

	return &testEnv{
		db:           db,
		storage:      storage,
		users:        NewUserService(userRepo, jwtCfg),
		resources:    NewResourceService(resourceRepo, tagRepo, userRepo, storage, rankings),
		ratings:      NewRatingService(ratingRepo, userRepo, rankings),
		dashboard:    NewDashboardService(resourceRepo, rankings),
		userRepo:     userRepo,
		resourceRepo: resourceRepo,
	}
}

func (e *testEnv) registerUser(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := e.users.Register(username, username+"@example.com", "secret123")
	require.NoError(t, err)
	return user
}

func (e *testEnv) uploadResource(t *testing.T, uploader *models.User, title string, tags []string) *models.Resource {
	t.Helper()
	resource, err := e.resources.Upload(context.Background(), UploadInput{
		Title:      title,
		Subject:    "Math",
		Semester:   "S1",
		TagNames:   tags,
		Filename:   title + ".pdf",
		Data:       []byte("%PDF-stub"),
		UploaderID: uploader.ID,
	})
	require.NoError(t, err)
	return resource
}
