package handler

import (
	"io"
	"net/http"
	"strings"

	"resourcehub/common"
	"resourcehub/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type ResourceHandler struct {
	resources service.ResourceService
}

func NewResourceHandler(resources service.ResourceService) *ResourceHandler {
	return &ResourceHandler{resources: resources}
}

// currentUserID 取认证中间件注入的 user_id
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, false
	}
	s, ok := raw.(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid user_id format"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid user_id format"})
		return uuid.Nil, false
	}
	return id, true
}

// Upload 上传文件并建档
// POST /api/resources (multipart form: title, description, subject, semester, tags, file)
func (h *ResourceHandler) Upload(c *gin.Context) {
	uploaderID, ok := currentUserID(c)
	if !ok {
		return
	}

	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.WithError(err).Error("upload: read file failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}

	var tagNames []string
	if tags := c.PostForm("tags"); tags != "" {
		tagNames = strings.Split(tags, ",")
	}

	resource, err := h.resources.Upload(c.Request.Context(), service.UploadInput{
		Title:       title,
		Description: c.PostForm("description"),
		Subject:     c.PostForm("subject"),
		Semester:    c.PostForm("semester"),
		TagNames:    tagNames,
		Filename:    header.Filename,
		Data:        data,
		UploaderID:  uploaderID,
	})
	if err != nil {
		c.JSON(common.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "resource uploaded successfully", "id": resource.ID})
}

// List 按 subject/semester/search 过滤，平均分降序
// GET /api/resources
func (h *ResourceHandler) List(c *gin.Context) {
	views, err := h.resources.Search(c.Query("subject"), c.Query("semester"), c.Query("search"))
	if err != nil {
		c.JSON(common.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, views)
}

// Download 自增下载数并返回下载地址
// GET /api/resources/:id/download
func (h *ResourceHandler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}
	url, err := h.resources.Download(c.Request.Context(), id)
	if err != nil {
		c.JSON(common.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"download_url": url})
}
