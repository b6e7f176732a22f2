package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"html"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/huyinayena-commits/EasyScanlate/models"
	"github.com/huyinayena-commits/EasyScanlate/pkg/archive"
	"github.com/huyinayena-commits/EasyScanlate/pkg/chapter"
	"github.com/huyinayena-commits/EasyScanlate/pkg/transcript"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

var unsafeNameRE = regexp.MustCompile(`[^\w.\- ]+`)

func setupRoutes(r *gin.Engine) {
	r.POST("/register", registerHandler)
	r.POST("/login", loginHandler)
	r.POST("/refresh", refreshHandler)
	r.POST("/revoke_refresh", revokeRefreshHandler)
	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)
	authGroup.POST("/chapters", uploadChapterHandler)
	authGroup.GET("/chapters", listChaptersHandler)
	authGroup.GET("/chapters/:id", getChapterHandler)
	authGroup.GET("/chapters/:id/transcript", chapterTranscriptHandler)
	authGroup.GET("/chapters/:id/html", chapterHTMLHandler)
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)
		c.Set("username", username)
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	}
}

func meHandler(c *gin.Context) {
	usernameVal, _ := c.Get("username")
	if usernameVal == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing username"})
		return
	}
	role, _ := c.Get("role")
	c.JSON(http.StatusOK, gin.H{"username": usernameVal.(string), "role": role})
}

// getUserFromContext fetches the user named by the token claims.
func getUserFromContext(c *gin.Context) (*models.User, bool) {
	unameVal, _ := c.Get("username")
	if unameVal == nil {
		return nil, false
	}
	var user models.User
	if err := db.Where("username = ?", unameVal.(string)).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func registerHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := RegisterUser(req.Username, req.Password); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user registered successfully"})
}

func loginHandler(c *gin.Context) {
	if !loginLimiter(c.ClientIP()).Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts, try again later"})
		return
	}
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	tokenString, err := issueAccessToken(user, 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	refreshToken, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": tokenString, "refresh_token": refreshToken})
}

// createAndStoreRefreshToken stores the hash of a new random token and
// returns the raw token.
func createAndStoreRefreshToken(userID uint) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	rt := models.RefreshToken{UserID: userID, TokenHash: hashToken(token), ExpiresAt: time.Now().Add(30 * 24 * time.Hour)}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	return token, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func findRefreshTokenByRaw(token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := db.Where("token_hash = ?", hashToken(token)).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token
func refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	var user models.User
	if err := db.First(&user, rt.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	tokenString, err := issueAccessToken(user, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
	newRT, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tokenString, "refresh_token": newRT})
}

// revokeRefreshHandler revokes a given refresh token (useful on logout)
func revokeRefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	rt.Revoked = true
	if err := db.Save(rt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked"})
}

// storedUploadName makes an uploaded file name safe to keep on disk and
// unique per upload.
func storedUploadName(original string, now time.Time) string {
	name := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	name = strings.TrimSpace(unsafeNameRE.ReplaceAllString(name, "_"))
	if name == "" || name == "." || name == ".." {
		name = "chapter"
	}
	return fmt.Sprintf("%d_%s", now.UnixNano(), name)
}

// receiveUpload caps the request body at maxMB (plus room for the multipart
// envelope) before gin parses it, then checks the archive field.
func receiveUpload(c *gin.Context, maxMB int64) (*multipart.FileHeader, int, error) {
	maxBytes := maxMB << 20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+1<<20)
	tooLarge := fmt.Errorf("file too large (max %dMB)", maxMB)
	file, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, http.StatusRequestEntityTooLarge, tooLarge
		}
		return nil, http.StatusBadRequest, errors.New("file missing")
	}
	if file.Size > maxBytes {
		return nil, http.StatusRequestEntityTooLarge, tooLarge
	}
	if !archive.IsArchive(file.Filename) {
		return nil, http.StatusBadRequest, errors.New("unsupported file type (want .cbz, .cbr, .zip or .rar)")
	}
	return file, http.StatusOK, nil
}

func discardUpload(paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Printf("remove %s: %v", p, err)
		}
	}
}

// uploadChapterHandler stores an uploaded archive, transcribes it and saves
// the result. Chapters are processed one at a time; a request waits for the
// running one and gives up if the client goes away.
func uploadChapterHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	file, status, err := receiveUpload(c, appCfg.Server.MaxUploadMB)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	dir := filepath.Join(uploadBaseDir(), fmt.Sprint(user.ID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mkdir failed"})
		return
	}
	storePath := filepath.Join(dir, storedUploadName(file.Filename, time.Now()))
	if err := c.SaveUploadedFile(file, storePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		title = chapter.Stem(file.Filename)
	}
	lang := strings.TrimSpace(c.PostForm("lang"))
	if lang == "" {
		lang = appCfg.OCR.Language
	}
	ch := models.Chapter{
		UserID:   user.ID,
		Title:    title,
		FileName: filepath.Base(file.Filename),
		Language: lang,
	}
	mdPath := strings.TrimSuffix(storePath, filepath.Ext(storePath)) + appCfg.Paths.TranscriptSuffix
	// the transcript is kept in the database, the files are scratch
	defer discardUpload(storePath, mdPath)

	ctx := c.Request.Context()
	if err := runGate.Acquire(ctx, 1); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled while waiting for the OCR queue"})
		return
	}
	res, runErr := chapterRunner.Run(ctx, chapter.Request{
		Input:    storePath,
		Output:   mdPath,
		Title:    title,
		Language: lang,
	})
	runGate.Release(1)

	status = http.StatusOK
	switch {
	case runErr == nil:
		ch.Status = models.ChapterDone
		ch.Images = res.Images
		ch.FailedPages = res.Failed
		ch.Markdown = string(res.Markdown)
		ch.Pages = pageRows(res.Transcript.Pages)
	case errors.Is(runErr, chapter.ErrNoImages):
		ch.Status = models.ChapterEmpty
		ch.Error = runErr.Error()
		status = http.StatusUnprocessableEntity
	case chapter.IsFatal(runErr):
		log.Printf("chapter %s: %v", ch.FileName, runErr)
		ch.Status = models.ChapterFailed
		ch.Error = truncate(runErr.Error(), 512)
		status = http.StatusInternalServerError
	default:
		ch.Status = models.ChapterFailed
		ch.Error = truncate(runErr.Error(), 512)
		status = http.StatusUnprocessableEntity
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&ch).Error
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db save failed"})
		return
	}
	resp := gin.H{"id": ch.ID, "title": ch.Title, "status": ch.Status, "images": ch.Images, "failed_pages": ch.FailedPages}
	if ch.Error != "" {
		resp["error"] = ch.Error
	}
	c.JSON(status, resp)
}

func pageRows(pages []transcript.PageResult) []models.Page {
	rows := make([]models.Page, 0, len(pages))
	for _, p := range pages {
		row := models.Page{Index: p.Index, Image: filepath.Base(p.Image), Dialogues: p.Dialogues}
		if p.Err != nil {
			row.Error = truncate(p.Err.Error(), 512)
		}
		rows = append(rows, row)
	}
	return rows
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// listChaptersHandler returns chapters without their transcripts; admin sees all.
func listChaptersHandler(c *gin.Context) {
	role, _ := c.Get("role")
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var items []models.Chapter
	q := db.Model(&models.Chapter{}).Omit("markdown")
	if role != "administrator" {
		q = q.Where("user_id = ?", user.ID)
	}
	if err := q.Order("id desc").Limit(100).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// loadChapter returns the chapter named by :id if the caller may see it,
// writing the error response otherwise.
func loadChapter(c *gin.Context, withPages bool) (*models.Chapter, bool) {
	role, _ := c.Get("role")
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return nil, false
	}
	q := db
	if withPages {
		q = q.Preload("Pages", func(tx *gorm.DB) *gorm.DB { return tx.Order("page_index asc") })
	}
	var ch models.Chapter
	if err := q.First(&ch, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return nil, false
	}
	if role != "administrator" && ch.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return nil, false
	}
	return &ch, true
}

func getChapterHandler(c *gin.Context) {
	ch, ok := loadChapter(c, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ch)
}

func chapterTranscriptHandler(c *gin.Context) {
	ch, ok := loadChapter(c, false)
	if !ok {
		return
	}
	if ch.Status != models.ChapterDone {
		c.JSON(http.StatusNotFound, gin.H{"error": "chapter has no transcript", "status": ch.Status})
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(ch.Markdown))
}

// chapterHTMLHandler serves the transcript as an HTML page. Renders are cached
// per chapter revision.
func chapterHTMLHandler(c *gin.Context) {
	ch, ok := loadChapter(c, false)
	if !ok {
		return
	}
	if ch.Status != models.ChapterDone {
		c.JSON(http.StatusNotFound, gin.H{"error": "chapter has no transcript", "status": ch.Status})
		return
	}
	key := fmt.Sprintf("html:%d:%d", ch.ID, ch.UpdatedAt.UnixNano())
	if v, found := htmlCache.Get(key); found {
		c.Data(http.StatusOK, "text/html; charset=utf-8", v.([]byte))
		return
	}
	page, err := htmlDocument(ch.Title, []byte(ch.Markdown))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
		return
	}
	htmlCache.Set(key, page, cache.DefaultExpiration)
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// htmlDocument wraps the rendered transcript in a standalone page.
func htmlDocument(title string, markdown []byte) ([]byte, error) {
	body, err := transcript.ToHTML(markdown)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n</head>\n<body>\n")
	b.Write(body)
	b.WriteString("</body>\n</html>\n")
	return []byte(b.String()), nil
}
