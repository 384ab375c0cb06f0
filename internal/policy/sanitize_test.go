package policy

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeValueStripsOperatorKeys(t *testing.T) {
	input := map[string]any{
		"email": "a@example.com",
		"$gt":   "",
		"profile": map[string]any{
			"name":   "camper",
			"$where": "sleep(1000)",
			"nested": map[string]any{
				"$ne":    1,
				"rating": 5,
			},
		},
		"tags": []any{
			map[string]any{"$in": []any{"x"}, "label": "ok"},
		},
	}

	out := SanitizeValue(input).(map[string]any)

	assert.Equal(t, "a@example.com", out["email"])
	assert.NotContains(t, out, "$gt")

	profile := out["profile"].(map[string]any)
	assert.Equal(t, "camper", profile["name"])
	assert.NotContains(t, profile, "$where")

	nested := profile["nested"].(map[string]any)
	assert.NotContains(t, nested, "$ne")
	assert.Equal(t, 5, nested["rating"])

	tag := out["tags"].([]any)[0].(map[string]any)
	assert.NotContains(t, tag, "$in")
	assert.Equal(t, "ok", tag["label"])
}

func TestSanitizeValueStripsDottedKeys(t *testing.T) {
	out := SanitizeValue(map[string]any{
		"a.b":  1,
		"安全":   "ok",
		"safe": "ok",
	}).(map[string]any)

	assert.NotContains(t, out, "a.b")
	assert.Contains(t, out, "safe")
	assert.Contains(t, out, "安全")
}

func TestSanitizeValues(t *testing.T) {
	out := SanitizeValues(url.Values{
		"rating":   {"5"},
		"$gt":      {"0"},
		"user.pwd": {"x"},
	})

	assert.Equal(t, url.Values{"rating": {"5"}}, out)
}

func TestSanitizeMiddlewareQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen url.Values
	router := gin.New()
	router.Use(Sanitize())
	router.GET("/posts", func(c *gin.Context) {
		seen = c.Request.URL.Query()
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts?rating=5&$gt=0", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", seen.Get("rating"))
	assert.NotContains(t, seen, "$gt")
}

func TestSanitizeMiddlewareJSONBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen map[string]any
	router := gin.New()
	router.Use(Sanitize())
	router.POST("/reviews", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &seen))
		c.Status(http.StatusOK)
	})

	body := `{"details":"nice","rating":{"$gt":0},"author":{"$ne":null}}`
	req := httptest.NewRequest(http.MethodPost, "/reviews", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nice", seen["details"])
	assert.Empty(t, seen["rating"], "operator keys inside objects are stripped")
	assert.Empty(t, seen["author"])
}

func TestSanitizeMiddlewareFormBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var rating, gt string
	router := gin.New()
	router.Use(Sanitize())
	router.POST("/reviews", func(c *gin.Context) {
		rating = c.PostForm("rating")
		gt = c.PostForm("$gt")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/reviews", strings.NewReader("rating=4&%24gt=0"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "4", rating)
	assert.Empty(t, gt)
}

func TestSanitizeMiddlewareOversizedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reached := false
	router := gin.New()
	router.Use(Sanitize())
	router.POST("/reviews", func(c *gin.Context) {
		reached = true
		c.Status(http.StatusOK)
	})

	body := `{"details":"` + strings.Repeat("a", maxBodyBytes+1) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/reviews", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.False(t, reached, "oversized body must never reach the handler")
}

func TestSanitizeMiddlewarePathParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var id string
	router := gin.New()
	router.Use(Sanitize())
	router.GET("/posts/:id", func(c *gin.Context) {
		id = c.Param("id")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/$where", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "where", id)
}
