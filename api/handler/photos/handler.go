package photos

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/anoixa/gphotos-grid/api/common"
	"github.com/anoixa/gphotos-grid/utils"
	"github.com/gin-gonic/gin"
)

// Source 相册照片来源
type Source interface {
	GetPhotos(ctx context.Context, albumURL string, ttlMinutes int) []string
}

// Defaults 请求未携带参数时使用的默认值
type Defaults struct {
	AlbumURL   string
	TTLMinutes int
	MaxPhotos  int

	// AllowedHosts 除 AlbumURL 外可请求的相册主机名
	AllowedHosts []string
}

// Handler 相册照片处理器
type Handler struct {
	source   Source
	defaults Defaults

	// 仅管理接口允许通过 ttl 参数覆盖刷新间隔
	allowTTLOverride bool
}

// NewHandler 创建公开的相册照片处理器，刷新间隔固定为默认值
func NewHandler(source Source, defaults Defaults) *Handler {
	return &Handler{
		source:   source,
		defaults: defaults,
	}
}

// NewAdminHandler 创建允许覆盖刷新间隔的处理器，需挂在管理鉴权之后
func NewAdminHandler(source Source, defaults Defaults) *Handler {
	return &Handler{
		source:           source,
		defaults:         defaults,
		allowTTLOverride: true,
	}
}

type photosResponse struct {
	AlbumURL   string   `json:"album_url"`
	TTLMinutes int      `json:"ttl_minutes"`
	Count      int      `json:"count"`
	Photos     []string `json:"photos"`
}

// GetPhotos 获取相册照片列表
// @Summary      List album photos
// @Description  Return photo URLs of a public album, served from the record store while fresh
// @Tags         photos
// @Produce      json
// @Param        album_url  query     string  false  "https album share url on an allowed host (defaults to album_url config)"
// @Param        limit      query     int     false  "Maximum photos to return, 0 for all"
// @Success      200  {object}  common.Response  "Photo list"
// @Failure      400  {object}  common.Response  "Invalid parameters"
// @Failure      403  {object}  common.Response  "ttl override without admin access"
// @Router       /api/v1/photos [get]
func (h *Handler) GetPhotos(c *gin.Context) {
	albumURL := c.DefaultQuery("album_url", h.defaults.AlbumURL)
	albumURL, err := utils.NormalizeAlbumURL(albumURL)
	if err != nil {
		if errors.Is(err, utils.ErrEmptyAlbumURL) {
			common.RespondError(c, http.StatusBadRequest, "album_url is required")
			return
		}
		common.RespondError(c, http.StatusBadRequest, "album_url must be an https url")
		return
	}
	if albumURL != strings.TrimSpace(h.defaults.AlbumURL) {
		if err := utils.CheckAlbumHost(albumURL, h.defaults.AllowedHosts); err != nil {
			common.RespondError(c, http.StatusBadRequest, "album_url host is not allowed")
			return
		}
	}

	ttl := h.defaults.TTLMinutes
	if _, exists := c.GetQuery("ttl"); exists {
		if !h.allowTTLOverride {
			common.RespondError(c, http.StatusForbidden, "ttl can only be overridden by an admin")
			return
		}
		var ok bool
		ttl, ok = nonNegativeQuery(c, "ttl", h.defaults.TTLMinutes)
		if !ok {
			common.RespondError(c, http.StatusBadRequest, "ttl must be a non-negative integer")
			return
		}
	}
	limit, ok := nonNegativeQuery(c, "limit", h.defaults.MaxPhotos)
	if !ok {
		common.RespondError(c, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}

	photos := h.source.GetPhotos(c.Request.Context(), albumURL, ttl)
	if limit > 0 && len(photos) > limit {
		photos = photos[:limit]
	}

	common.RespondSuccess(c, photosResponse{
		AlbumURL:   albumURL,
		TTLMinutes: ttl,
		Count:      len(photos),
		Photos:     photos,
	})
}

func nonNegativeQuery(c *gin.Context, name string, fallback int) (int, bool) {
	raw, exists := c.GetQuery(name)
	if !exists || raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
