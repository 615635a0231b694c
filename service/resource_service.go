package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"resourcehub/cache"
	"resourcehub/common"
	"resourcehub/models"
	"resourcehub/pkg/metrics"
	"resourcehub/repository"
	"resourcehub/storage"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const downloadURLExpiry = 15 * time.Minute

type UploadInput struct {
	Title       string
	Description string
	Subject     string
	Semester    string
	TagNames    []string
	Filename    string
	Data        []byte
	UploaderID  uuid.UUID
}

// ResourceView 是对外返回的平面结构：上传者和标签都已经解到字符串
type ResourceView struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Filename      string    `json:"filename"`
	Subject       string    `json:"subject"`
	Semester      string    `json:"semester"`
	Uploader      string    `json:"uploader"`
	UploadDate    time.Time `json:"upload_date"`
	DownloadCount int64     `json:"download_count"`
	AverageRating float64   `json:"average_rating"`
	Tags          []string  `json:"tags"`
}

type ResourceService interface {
	Upload(ctx context.Context, in UploadInput) (*models.Resource, error)
	GetByID(id uuid.UUID) (*ResourceView, error)
	Search(subject, semester, search string) ([]ResourceView, error)
	Download(ctx context.Context, id uuid.UUID) (string, error)
}

type ResourceServiceImpl struct {
	resources repository.ResourceRepository
	tags      repository.TagRepository
	users     repository.UserRepository
	files     storage.FileStorage
	rankings  *cache.RankingsCache
}

func NewResourceService(
	resources repository.ResourceRepository,
	tags repository.TagRepository,
	users repository.UserRepository,
	files storage.FileStorage,
	rankings *cache.RankingsCache,
) ResourceService {
	return &ResourceServiceImpl{
		resources: resources,
		tags:      tags,
		users:     users,
		files:     files,
		rankings:  rankings,
	}
}

// Upload 先把文件推到对象存储，成功后在一个事务里写资源行和标签关联。
// 事务失败时尽力删掉刚传的对象，删不掉只记日志，目录数据不受影响。
func (s *ResourceServiceImpl) Upload(ctx context.Context, in UploadInput) (*models.Resource, error) {
	if in.Title == "" || in.Filename == "" || len(in.Data) == 0 {
		return nil, fmt.Errorf("title and file are required: %w", common.ErrInvalidArgument)
	}
	ok, err := s.users.Exists(in.UploaderID)
	if err != nil {
		return nil, common.FromDB(err, "uploader")
	}
	if !ok {
		return nil, fmt.Errorf("uploader: %w", common.ErrNotFound)
	}

	ext := filepath.Ext(in.Filename)
	objectName := fmt.Sprintf("%s/%s%s", in.UploaderID.String(), uuid.New().String(), ext)

	if err := s.files.Store(ctx, objectName, in.Data, contentTypeFor(in.Filename)); err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrStorageFailure)
	}

	resolvedTags, err := s.tags.FindOrCreate(in.TagNames)
	if err != nil {
		s.removeOrphan(ctx, objectName)
		return nil, common.FromDB(err, "tags")
	}

	resource := &models.Resource{
		Title:            in.Title,
		Description:      in.Description,
		OriginalFilename: in.Filename,
		ObjectName:       objectName,
		Subject:          in.Subject,
		Semester:         in.Semester,
		UploaderID:       in.UploaderID,
		SizeBytes:        int64(len(in.Data)),
	}
	if err := s.resources.CreateWithTags(resource, resolvedTags); err != nil {
		s.removeOrphan(ctx, objectName)
		return nil, common.FromDB(err, "resource")
	}

	metrics.UploadsTotal.Inc()
	s.rankings.Invalidate(ctx, cache.KeyTopRated, cache.KeyMostDownloaded)
	return resource, nil
}

func (s *ResourceServiceImpl) removeOrphan(ctx context.Context, objectName string) {
	if err := s.files.Remove(ctx, objectName); err != nil {
		log.WithError(err).WithField("object", objectName).Warn("failed to remove orphaned object")
	}
}

func (s *ResourceServiceImpl) GetByID(id uuid.UUID) (*ResourceView, error) {
	resource, err := s.resources.GetByIDWithRelations(id)
	if err != nil {
		return nil, common.FromDB(err, "resource")
	}
	view := toView(resource)
	return &view, nil
}

func (s *ResourceServiceImpl) Search(subject, semester, search string) ([]ResourceView, error) {
	resources, err := s.resources.Search(subject, semester, search)
	if err != nil {
		return nil, common.FromDB(err, "resources")
	}
	views := make([]ResourceView, 0, len(resources))
	for _, r := range resources {
		views = append(views, toView(r))
	}
	return views, nil
}

// Download 返回预签名下载地址并自增下载数。先签名后计数，
// 签不出地址的调用不算一次下载。
func (s *ResourceServiceImpl) Download(ctx context.Context, id uuid.UUID) (string, error) {
	resource, err := s.resources.GetByID(id)
	if err != nil {
		return "", common.FromDB(err, "resource")
	}
	url, err := s.files.PresignedURL(ctx, resource.ObjectName, downloadURLExpiry)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, common.ErrStorageFailure)
	}
	if err := s.resources.IncrementDownload(id); err != nil {
		return "", common.FromDB(err, "resource")
	}
	metrics.DownloadsTotal.Inc()
	s.rankings.Invalidate(ctx, cache.KeyMostDownloaded)
	return url, nil
}

func toView(r *models.Resource) ResourceView {
	tagNames := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		tagNames = append(tagNames, t.Name)
	}
	return ResourceView{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Filename:      r.OriginalFilename,
		Subject:       r.Subject,
		Semester:      r.Semester,
		Uploader:      r.Uploader.Username,
		UploadDate:    r.CreatedAt,
		DownloadCount: r.DownloadCount,
		AverageRating: r.AverageRating,
		Tags:          tagNames,
	}
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".doc", ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".txt", ".md":
		return "text/plain"
	case ".zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}
