package main

import (
	"errors"
	"image"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/akhelper/endop-service/endoperation"
	"github.com/akhelper/endop-service/pkg/framedump"
	"github.com/akhelper/endop-service/pkg/procstat"
	"github.com/akhelper/endop-service/viewport"
	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type screenReader interface {
	Recognize(v endoperation.Variant, img image.Image, opts endoperation.Options) (*endoperation.Result, error)
}

type screenChecker interface {
	CheckPresence(v endoperation.Variant, friendship, strict bool, img image.Image) (bool, error)
	CheckLevelUpPopup(img image.Image) (bool, error)
}

// server handles one request at a time; the OCR and model sessions behind
// the reader are shared.
type server struct {
	mu       sync.Mutex
	reader   screenReader
	checker  screenChecker
	debugDir string
}

func (s *server) setupRoutes(r *gin.Engine) {
	r.GET("/healthz", s.healthHandler)
	v1 := r.Group("/v1")
	v1.POST("/recognize", s.recognizeHandler)
	v1.POST("/check", s.checkHandler)
}

func (s *server) healthHandler(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if snap, err := procstat.Sample(); err == nil {
		resp["rss"] = snap.RSS
		resp["cpu_percent"] = snap.CPUPercent
	}
	c.JSON(http.StatusOK, resp)
}

// readRequest decodes the variant query parameter and the multipart image
// field. It writes the error response itself and returns ok=false.
func readRequest(c *gin.Context) (endoperation.Variant, image.Image, bool) {
	variant, err := endoperation.ParseVariant(c.DefaultQuery("variant", "ep10"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, nil, false
	}
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image field"})
		return 0, nil, false
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, nil, false
	}
	defer f.Close()
	img, err := imaging.Decode(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot decode image: " + err.Error()})
		return 0, nil, false
	}
	return variant, img, true
}

func queryBool(c *gin.Context, key string) bool {
	v, _ := strconv.ParseBool(c.Query(key))
	return v
}

func (s *server) recognizeHandler(c *gin.Context) {
	variant, img, ok := readRequest(c)
	if !ok {
		return
	}
	t0 := time.Now()
	s.mu.Lock()
	res, err := s.reader.Recognize(variant, img, endoperation.Options{LearnUnrecognized: queryBool(c, "learn")})
	s.mu.Unlock()

	switch {
	case errors.Is(err, endoperation.ErrUnknownVariant):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case endoperation.IsStructural(err):
		if s.debugDir != "" {
			framedump.SaveQuietly(filepath.Join(s.debugDir, "server"), "failed", img)
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case err != nil:
		log.Error().Err(err).Msg("Recognition failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		log.Info().Str("variant", variant.String()).Dur("elapsed", time.Since(t0)).Msg("Request served")
		c.JSON(http.StatusOK, res)
	}
}

func (s *server) checkHandler(c *gin.Context) {
	variant, img, ok := readRequest(c)
	if !ok {
		return
	}
	var (
		present bool
		err     error
	)
	s.mu.Lock()
	levelUp := queryBool(c, "level_up")
	if levelUp {
		present, err = s.checker.CheckLevelUpPopup(img)
	} else {
		present, err = s.checker.CheckPresence(variant, queryBool(c, "friendship"), queryBool(c, "strict"), img)
	}
	s.mu.Unlock()

	switch {
	case errors.Is(err, endoperation.ErrUnsupported):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		resp := gin.H{"present": present}
		if present {
			resp["rects"] = endoperation.RectsFor(viewport.Of(img), levelUp)
		}
		c.JSON(http.StatusOK, resp)
	}
}
