package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akhelper/endop-service/endoperation"
	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
)

type stubReader struct {
	res  *endoperation.Result
	err  error
	opts endoperation.Options
}

func (s *stubReader) Recognize(_ endoperation.Variant, _ image.Image, opts endoperation.Options) (*endoperation.Result, error) {
	s.opts = opts
	return s.res, s.err
}

type stubChecker struct {
	variant    endoperation.Variant
	friendship bool
	strict     bool
	levelUp    bool
}

func (s *stubChecker) CheckPresence(v endoperation.Variant, friendship, strict bool, _ image.Image) (bool, error) {
	s.variant, s.friendship, s.strict = v, friendship, strict
	if v == endoperation.Interlocking && !friendship {
		return false, endoperation.ErrUnsupported
	}
	return true, nil
}

func (s *stubChecker) CheckLevelUpPopup(image.Image) (bool, error) {
	s.levelUp = true
	return false, nil
}

func setupTestServer(reader screenReader, checker screenChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	(&server{reader: reader, checker: checker}).setupRoutes(r)
	return r
}

func imageBody(t *testing.T) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "shot.png")
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(fw, imaging.New(16, 9, color.Black)); err != nil {
		t.Fatal(err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func performRequest(r http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRecognizeHandler(t *testing.T) {
	reader := &stubReader{res: &endoperation.Result{Operation: "1-7", Stars: [3]bool{true, true, true}}}
	r := setupTestServer(reader, &stubChecker{})

	body, ct := imageBody(t)
	resp := performRequest(r, http.MethodPost, "/v1/recognize?variant=sof&learn=true", body, ct)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", resp.Code, resp.Body.String())
	}
	var got endoperation.Result
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Operation != "1-7" || got.StarCount() != 3 {
		t.Errorf("response = %+v", got)
	}
	if !reader.opts.LearnUnrecognized {
		t.Error("learn flag not forwarded")
	}
}

func TestRecognizeHandlerErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		err    error
		noBody bool
		want   int
	}{
		{"bad variant", "/v1/recognize?variant=nope", nil, false, http.StatusBadRequest},
		{"missing image", "/v1/recognize", nil, true, http.StatusBadRequest},
		{"structural", "/v1/recognize", endoperation.ErrDividerNotFound, false, http.StatusUnprocessableEntity},
		{"collaborator", "/v1/recognize", errors.New("model crashed"), false, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		r := setupTestServer(&stubReader{err: tt.err, res: &endoperation.Result{}}, &stubChecker{})
		var (
			body io.Reader
			ct   string
		)
		if !tt.noBody {
			body, ct = imageBody(t)
		}
		resp := performRequest(r, http.MethodPost, tt.path, body, ct)
		if resp.Code != tt.want {
			t.Errorf("%s: status = %d, want %d (body=%s)", tt.name, resp.Code, tt.want, resp.Body.String())
		}
	}
}

func TestCheckHandler(t *testing.T) {
	checker := &stubChecker{}
	r := setupTestServer(&stubReader{}, checker)

	body, ct := imageBody(t)
	resp := performRequest(r, http.MethodPost, "/v1/check?variant=interlocking&friendship=1", body, ct)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", resp.Code, resp.Body.String())
	}
	var got struct {
		Present bool                     `json:"present"`
		Rects   endoperation.ScreenRects `json:"rects"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if !got.Present || got.Rects.StillCheck[2] == 0 {
		t.Errorf("response = %s", resp.Body.String())
	}
	if checker.variant != endoperation.Interlocking || !checker.friendship || checker.strict {
		t.Errorf("checker got %+v", checker)
	}

	body, ct = imageBody(t)
	performRequest(r, http.MethodPost, "/v1/check?variant=legacy&strict=true", body, ct)
	if checker.variant != endoperation.Legacy || !checker.strict {
		t.Errorf("strict flag not forwarded: %+v", checker)
	}

	body, ct = imageBody(t)
	resp = performRequest(r, http.MethodPost, "/v1/check?variant=interlocking", body, ct)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.Code)
	}

	body, ct = imageBody(t)
	resp = performRequest(r, http.MethodPost, "/v1/check?level_up=true", body, ct)
	if resp.Code != http.StatusOK || !checker.levelUp || strings.Contains(resp.Body.String(), "rects") {
		t.Errorf("level-up check: status = %d, called = %v", resp.Code, checker.levelUp)
	}
}

func TestHealthHandler(t *testing.T) {
	r := setupTestServer(&stubReader{}, &stubChecker{})
	resp := performRequest(r, http.MethodGet, "/healthz", nil, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	var got map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil || got["status"] != "ok" {
		t.Errorf("body = %s", resp.Body.String())
	}
}
