package repository

import (
	"sync"
	"testing"

	"resourcehub/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库单连接，避免并发测试里拿到不同的 :memory: 实例
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Tag{}, &models.Resource{}, &models.Rating{}))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestResource(t *testing.T, db *gorm.DB, repo ResourceRepository, uploader *models.User, title string) *models.Resource {
	t.Helper()
	resource := &models.Resource{
		Title:            title,
		OriginalFilename: title + ".pdf",
		ObjectName:       uploader.ID.String() + "/" + title + ".pdf",
		UploaderID:       uploader.ID,
	}
	require.NoError(t, repo.CreateWithTags(resource, nil))
	return resource
}

func TestUserRepositoryLookups(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	user := createTestUser(t, db, "alice")

	got, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	byEmail, err := repo.GetByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	ok, err := repo.Exists(user.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.GetByUsername("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepositoryDuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	require.NoError(t, repo.Create(&models.User{Username: "alice", Email: "alice@example.com", Password: "x"}))

	err := repo.Create(&models.User{Username: "alice", Email: "other@example.com", Password: "x"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "failed insert must not leave a row behind")
}

func TestTagRepositoryFindOrCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTagRepository(db)

	t.Run("dedupes and trims", func(t *testing.T) {
		tags, err := repo.FindOrCreate([]string{"a", "a", " a ", "", "  "})
		require.NoError(t, err)
		require.Len(t, tags, 1)
		assert.Equal(t, "a", tags[0].Name)

		count, err := repo.Count()
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("reuses existing rows", func(t *testing.T) {
		first, err := repo.FindOrCreate([]string{"calculus", "notes"})
		require.NoError(t, err)
		second, err := repo.FindOrCreate([]string{"notes", "calculus"})
		require.NoError(t, err)

		byName := map[string]string{}
		for _, tag := range first {
			byName[tag.Name] = tag.ID.String()
		}
		for _, tag := range second {
			assert.Equal(t, byName[tag.Name], tag.ID.String())
		}
	})

	t.Run("GetByName", func(t *testing.T) {
		created, err := repo.FindOrCreate([]string{"analysis"})
		require.NoError(t, err)

		tag, err := repo.GetByName("analysis")
		require.NoError(t, err)
		assert.Equal(t, created[0].ID, tag.ID)

		_, err = repo.GetByName("missing")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("concurrent creators of one name end with one row", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.FindOrCreate([]string{"racy"})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		var count int64
		require.NoError(t, db.Model(&models.Tag{}).Where("name = ?", "racy").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestRatingUpsertRecomputesAverage(t *testing.T) {
	db := setupTestDB(t)
	resourceRepo := NewResourceRepository(db)
	ratingRepo := NewRatingRepository(db)

	user1 := createTestUser(t, db, "user1")
	user2 := createTestUser(t, db, "user2")
	resource := createTestResource(t, db, resourceRepo, user1, "algebra")

	// 无评分时平均分为 0
	fresh, err := resourceRepo.GetByID(resource.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, fresh.AverageRating)

	avg, err := ratingRepo.Upsert(resource.ID, user1.ID, 4, "good")
	require.NoError(t, err)
	assert.Equal(t, 4.00, avg)

	avg, err = ratingRepo.Upsert(resource.ID, user2.ID, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 3.00, avg)

	// 同一用户再评走覆盖，不新增行
	avg, err = ratingRepo.Upsert(resource.ID, user1.ID, 5, "better")
	require.NoError(t, err)
	assert.Equal(t, 3.50, avg)

	count, err := ratingRepo.CountByResource(resource.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	rating, err := ratingRepo.GetByResourceAndUser(resource.ID, user1.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, rating.Score)
	assert.Equal(t, "better", rating.Feedback)

	fresh, err = resourceRepo.GetByID(resource.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.50, fresh.AverageRating)
}

func TestRatingUpsertRounding(t *testing.T) {
	db := setupTestDB(t)
	resourceRepo := NewResourceRepository(db)
	ratingRepo := NewRatingRepository(db)

	uploader := createTestUser(t, db, "uploader")
	resource := createTestResource(t, db, resourceRepo, uploader, "physics")

	for i, score := range []int{5, 4, 4} {
		rater := createTestUser(t, db, "rater"+string(rune('a'+i)))
		_, err := ratingRepo.Upsert(resource.ID, rater.ID, score, "")
		require.NoError(t, err)
	}

	fresh, err := resourceRepo.GetByID(resource.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.33, fresh.AverageRating)
}

func TestRatingUpsertMissingResource(t *testing.T) {
	db := setupTestDB(t)
	ratingRepo := NewRatingRepository(db)
	user := createTestUser(t, db, "nobody")

	_, err := ratingRepo.Upsert(user.ID, user.ID, 3, "")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestIncrementDownloadConcurrent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResourceRepository(db)
	uploader := createTestUser(t, db, "uploader")
	resource := createTestResource(t, db, repo, uploader, "notes")

	const k = 20
	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.IncrementDownload(resource.ID))
		}()
	}
	wg.Wait()

	fresh, err := repo.GetByID(resource.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(k), fresh.DownloadCount)
}

func TestIncrementDownloadMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResourceRepository(db)
	user := createTestUser(t, db, "user")

	err := repo.IncrementDownload(user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestResourceSearch(t *testing.T) {
	db := setupTestDB(t)
	resourceRepo := NewResourceRepository(db)
	ratingRepo := NewRatingRepository(db)
	uploader := createTestUser(t, db, "uploader")

	mk := func(title, subject, semester, description string) *models.Resource {
		resource := &models.Resource{
			Title:            title,
			Description:      description,
			OriginalFilename: title + ".pdf",
			ObjectName:       "o/" + title,
			Subject:          subject,
			Semester:         semester,
			UploaderID:       uploader.ID,
		}
		require.NoError(t, resourceRepo.CreateWithTags(resource, nil))
		return resource
	}

	linAlg := mk("Linear Algebra Notes", "Math", "S1", "vector spaces")
	calc := mk("Calculus Cheatsheet", "Math", "S2", "derivatives and integrals")
	bio := mk("Cell Biology Intro", "Biology", "S1", "cells")

	rate := func(r *models.Resource, score int, who string) {
		rater := createTestUser(t, db, who)
		_, err := ratingRepo.Upsert(r.ID, rater.ID, score, "")
		require.NoError(t, err)
	}
	rate(calc, 5, "r1")
	rate(linAlg, 3, "r2")
	rate(bio, 4, "r3")

	t.Run("subject filter ordered by rating desc", func(t *testing.T) {
		got, err := resourceRepo.Search("Math", "", "")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Calculus Cheatsheet", got[0].Title)
		assert.Equal(t, "Linear Algebra Notes", got[1].Title)
		for _, r := range got {
			assert.Equal(t, "Math", r.Subject)
		}
	})

	t.Run("filters are conjunctive", func(t *testing.T) {
		got, err := resourceRepo.Search("Math", "S1", "")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Linear Algebra Notes", got[0].Title)
	})

	t.Run("substring matches title or description, case-insensitive", func(t *testing.T) {
		got, err := resourceRepo.Search("", "", "INTEGRALS")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Calculus Cheatsheet", got[0].Title)

		got, err = resourceRepo.Search("", "", "cell")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Cell Biology Intro", got[0].Title)
	})

	t.Run("equal averages order oldest first", func(t *testing.T) {
		d := setupTestDB(t)
		repo := NewResourceRepository(d)
		u := createTestUser(t, d, "u")
		first := &models.Resource{Title: "first", OriginalFilename: "a", ObjectName: "a", UploaderID: u.ID}
		second := &models.Resource{Title: "second", OriginalFilename: "b", ObjectName: "b", UploaderID: u.ID}
		require.NoError(t, repo.CreateWithTags(first, nil))
		require.NoError(t, repo.CreateWithTags(second, nil))

		got, err := repo.Search("", "", "")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "first", got[0].Title)
		assert.Equal(t, "second", got[1].Title)
	})
}

func TestTopRatedAndMostDownloaded(t *testing.T) {
	db := setupTestDB(t)
	resourceRepo := NewResourceRepository(db)
	ratingRepo := NewRatingRepository(db)
	uploader := createTestUser(t, db, "uploader")

	a := createTestResource(t, db, resourceRepo, uploader, "a")
	b := createTestResource(t, db, resourceRepo, uploader, "b")
	c := createTestResource(t, db, resourceRepo, uploader, "c")

	rater := createTestUser(t, db, "rater")
	_, err := ratingRepo.Upsert(b.ID, rater.ID, 5, "")
	require.NoError(t, err)
	_, err = ratingRepo.Upsert(c.ID, rater.ID, 3, "")
	require.NoError(t, err)

	require.NoError(t, resourceRepo.IncrementDownload(a.ID))
	require.NoError(t, resourceRepo.IncrementDownload(a.ID))
	require.NoError(t, resourceRepo.IncrementDownload(c.ID))

	t.Run("top rated returns all when fewer than n", func(t *testing.T) {
		got, err := resourceRepo.TopRated(5)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "b", got[0].Title)
		assert.Equal(t, "c", got[1].Title)
		assert.Equal(t, "a", got[2].Title)
	})

	t.Run("n defaults to 5", func(t *testing.T) {
		got, err := resourceRepo.TopRated(0)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("limits to n", func(t *testing.T) {
		got, err := resourceRepo.TopRated(1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "b", got[0].Title)
	})

	t.Run("most downloaded", func(t *testing.T) {
		got, err := resourceRepo.MostDownloaded(5)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "a", got[0].Title)
		assert.Equal(t, "c", got[1].Title)
		assert.Equal(t, "b", got[2].Title)
	})
}

func TestResourceTagsAssociation(t *testing.T) {
	db := setupTestDB(t)
	resourceRepo := NewResourceRepository(db)
	tagRepo := NewTagRepository(db)
	uploader := createTestUser(t, db, "uploader")

	tags, err := tagRepo.FindOrCreate([]string{"exam", "2024"})
	require.NoError(t, err)

	resource := &models.Resource{Title: "past papers", OriginalFilename: "p.pdf", ObjectName: "o/p", UploaderID: uploader.ID}
	require.NoError(t, resourceRepo.CreateWithTags(resource, tags))

	got, err := resourceRepo.GetTags(resource.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	names := []string{got[0].Name, got[1].Name}
	assert.ElementsMatch(t, []string{"exam", "2024"}, names)

	full, err := resourceRepo.GetByIDWithRelations(resource.ID)
	require.NoError(t, err)
	assert.Len(t, full.Tags, 2)
	assert.Equal(t, "uploader", full.Uploader.Username)
}
