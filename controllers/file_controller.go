package controllers

import (
	"errors"
	"io"
	"net/http"
	"sharevault/models"
	"sharevault/services"
	"sharevault/utils"

	"github.com/gin-gonic/gin"
)

type FileController struct {
	fileService *services.FileService
	gate        *services.AccessGate
	maxFileSize int64
}

func NewFileController(fileService *services.FileService, gate *services.AccessGate, maxFileSize int64) *FileController {
	return &FileController{
		fileService: fileService,
		gate:        gate,
		maxFileSize: maxFileSize,
	}
}

// UploadFile handles POST /files: a new upload (deduplicated against
// existing content) or, when targetFileId is set, an explicit new version of
// an existing file.
func (fc *FileController) UploadFile(c *gin.Context) {
	userID := c.GetString("userIdStr")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "No file provided", nil)
		return
	}
	if fileHeader.Size == 0 {
		utils.BadRequestResponse(c, "File content is empty", nil)
		return
	}
	if err := utils.ValidateFileSize(fileHeader.Size, fc.maxFileSize); err != nil {
		utils.PayloadTooLargeResponse(c, err.Error())
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, "Failed to read uploaded file", nil)
		return
	}
	defer f.Close()

	var reader io.Reader = f
	if fc.maxFileSize > 0 {
		reader = io.LimitReader(f, fc.maxFileSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		utils.BadRequestResponse(c, "Failed to read uploaded file", nil)
		return
	}
	// The declared part size is client-controlled; re-check what was read.
	if err := utils.ValidateFileSize(int64(len(data)), fc.maxFileSize); err != nil {
		utils.PayloadTooLargeResponse(c, err.Error())
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	req := services.UploadRequest{
		Data:         data,
		MimeType:     mimeType,
		OwnerID:      userID,
		TargetFileID: c.PostForm("targetFileId"),
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Visibility:   models.Visibility(c.DefaultPostForm("visibility", string(models.VisibilityPrivate))),
		Password:     c.PostForm("password"),
	}
	if groupID := c.PostForm("groupId"); groupID != "" {
		req.GroupID = &groupID
	}
	if folderID := c.PostForm("folderId"); folderID != "" {
		req.FolderID = &folderID
	}

	result, err := fc.fileService.Upload(c.Request.Context(), req)
	if err != nil {
		fc.respondError(c, err)
		return
	}

	switch result.Outcome {
	case services.OutcomeVersionAdded:
		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"message":      "New version uploaded",
			"isNewVersion": true,
			"data":         result.File,
		})

	case services.OutcomeDuplicateFound:
		// Identical content already exists, possibly owned by someone
		// else. Disclose the duplication and a reference, but only hand
		// back the full record if the uploader passes the access gate.
		if fc.gate.Authorize(result.File, userID, "") == nil {
			utils.CreatedResponse(c, "Identical content already uploaded, returning existing file", gin.H{
				"deduplicated": true,
				"file":         result.File,
			})
			return
		}
		utils.CreatedResponse(c, "Identical content already uploaded by another user", gin.H{
			"deduplicated": true,
			"fileId":       result.File.ID.Hex(),
			"ownerId":      result.File.OwnerID,
		})

	default:
		utils.CreatedResponse(c, "File uploaded successfully", result.File)
	}
}

// GetFile handles GET /files/:id. Anonymous requests reach public files;
// password-gated reads go through POST /files/:id/access.
func (fc *FileController) GetFile(c *gin.Context) {
	file, err := fc.fileService.Get(c.Request.Context(), c.Param("id"), c.GetString("userIdStr"), "")
	if err != nil {
		fc.respondError(c, err)
		return
	}
	utils.SuccessResponse(c, "File retrieved", file)
}

// AccessFile handles POST /files/:id/access, the password-gated read path.
func (fc *FileController) AccessFile(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	file, err := fc.fileService.Get(c.Request.Context(), c.Param("id"), c.GetString("userIdStr"), req.Password)
	if err != nil {
		fc.respondError(c, err)
		return
	}
	utils.SuccessResponse(c, "File retrieved", file)
}

// DownloadFile handles POST /files/:id/download: gate, fresh URL, counter.
func (fc *FileController) DownloadFile(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	// Body is optional; public and private downloads carry none.
	_ = c.ShouldBindJSON(&req)

	url, title, err := fc.fileService.Download(c.Request.Context(), c.Param("id"), c.GetString("userIdStr"), req.Password)
	if err != nil {
		fc.respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Download URL generated", gin.H{
		"downloadUrl": url,
		"fileName":    title,
	})
}

// UpdateFile handles PUT /files/:id, owner-only metadata/visibility edits.
func (fc *FileController) UpdateFile(c *gin.Context) {
	userID := c.GetString("userIdStr")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		GroupID     *string `json:"groupId"`
		FolderID    *string `json:"folderId"`
		Visibility  *string `json:"visibility"`
		Password    string  `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	update := services.MetadataUpdate{
		Title:       req.Title,
		Description: req.Description,
		GroupID:     req.GroupID,
		FolderID:    req.FolderID,
	}
	if req.Visibility != nil {
		visibility := models.Visibility(*req.Visibility)
		update.Visibility = &visibility
	}

	file, err := fc.fileService.UpdateMetadata(c.Request.Context(), c.Param("id"), userID, update, req.Password)
	if err != nil {
		fc.respondError(c, err)
		return
	}
	utils.SuccessResponse(c, "File updated", file)
}

// RestoreVersion handles POST /files/:id/restore, owner-only.
func (fc *FileController) RestoreVersion(c *gin.Context) {
	userID := c.GetString("userIdStr")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req struct {
		VersionNumber int `json:"versionNumber" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "versionNumber is required", nil)
		return
	}

	file, err := fc.fileService.RestoreVersion(c.Request.Context(), c.Param("id"), req.VersionNumber, userID)
	if err != nil {
		fc.respondError(c, err)
		return
	}
	utils.SuccessResponse(c, "Version restored", file)
}

// ListVersions handles GET /files/:id/versions, owner-only.
func (fc *FileController) ListVersions(c *gin.Context) {
	userID := c.GetString("userIdStr")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	versions, err := fc.fileService.ListVersions(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		fc.respondError(c, err)
		return
	}
	utils.SuccessResponse(c, "File versions retrieved", versions)
}

// ListFiles handles GET /files, the requester's own files.
func (fc *FileController) ListFiles(c *gin.Context) {
	userID := c.GetString("userIdStr")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	files, err := fc.fileService.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		fc.respondError(c, err)
		return
	}
	utils.SuccessResponse(c, "Files retrieved", files)
}

// DeleteFile handles DELETE /files/:id, owner-only; releases all version blobs.
func (fc *FileController) DeleteFile(c *gin.Context) {
	userID := c.GetString("userIdStr")
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	if err := fc.fileService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		fc.respondError(c, err)
		return
	}
	utils.SuccessResponse(c, "File deleted", nil)
}

func (fc *FileController) respondError(c *gin.Context, err error) {
	switch {
	case utils.IsValidationError(err):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, services.ErrFileNotFound):
		utils.NotFoundResponse(c, "File not found")
	case errors.Is(err, services.ErrVersionNotFound):
		utils.NotFoundResponse(c, "Version not found")
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, "Insufficient permissions")
	case errors.Is(err, services.ErrPasswordRequired):
		utils.UnauthorizedResponse(c, "Password required")
	case errors.Is(err, services.ErrIncorrectPassword):
		utils.UnauthorizedResponse(c, "Incorrect password")
	case errors.Is(err, services.ErrVersionConflict):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "File is being modified concurrently, retry", nil)
	default:
		utils.InternalServerErrorResponse(c, "Request failed", err.Error())
	}
}
