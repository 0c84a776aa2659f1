package server

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"skillshare/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createPost posts a multipart request with a "post" JSON part and the given
// media files, returning the raw response.
func createPost(t *testing.T, app *fiber.App, token, description string, mediaFiles int) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	require.NoError(t, w.WriteField("post",
		fmt.Sprintf(`{"description":%q,"mediaType":"PHOTO"}`, description)))

	for i := 0; i < mediaFiles; i++ {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="media"; filename="photo%d.png"`, i))
		h.Set("Content-Type", "image/png")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake-png-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/posts", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestCreatePost(t *testing.T) {
	app, _ := setupTestServer(t)
	auth := signupUser(t, app, "poster", "poster@example.com")

	t.Run("with media", func(t *testing.T) {
		resp := createPost(t, app, auth.AccessToken, "Learning to juggle", 2)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		post := decodeBody[models.Post](t, resp)
		assert.Equal(t, "Learning to juggle", post.Description)
		assert.Equal(t, models.MediaTypePhoto, post.MediaType)
		assert.Len(t, post.MediaURLs, 2)
		assert.Equal(t, auth.User.ID, post.UserID)
		assert.Equal(t, "poster", post.User.Username)
	})

	t.Run("too many media files", func(t *testing.T) {
		resp := createPost(t, app, auth.AccessToken, "four files", models.MaxMediaFiles+1)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody[models.ErrorResponse](t, resp)
		assert.Equal(t, "Maximum 3 media files allowed per post", body.Message)
	})

	t.Run("missing post part", func(t *testing.T) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		require.NoError(t, w.Close())
		req := httptest.NewRequest(http.MethodPost, "/api/posts", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+auth.AccessToken)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody[models.ErrorResponse](t, resp)
		assert.Equal(t, "Missing post data", body.Message)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		resp := createPost(t, app, "", "no token", 0)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("non-media file rejected", func(t *testing.T) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		require.NoError(t, w.WriteField("post", `{"description":"pdf attempt","mediaType":"PHOTO"}`))
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="media"; filename="doc.pdf"`)
		h.Set("Content-Type", "application/pdf")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/posts", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+auth.AccessToken)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody[models.ErrorResponse](t, resp)
		assert.Equal(t, "Only image and video files are allowed", body.Message)
	})
}

func TestUpdateAndDeletePost(t *testing.T) {
	app, _ := setupTestServer(t)
	owner := signupUser(t, app, "owner", "owner@example.com")
	stranger := signupUser(t, app, "stranger", "stranger@example.com")

	resp := createPost(t, app, owner.AccessToken, "original text", 0)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	post := decodeBody[models.Post](t, resp)

	t.Run("owner updates", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/posts/%d", post.ID),
			owner.AccessToken, map[string]string{"description": "edited text"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		updated := decodeBody[models.Post](t, resp)
		assert.Equal(t, "edited text", updated.Description)
	})

	t.Run("stranger cannot update", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/posts/%d", post.ID),
			stranger.AccessToken, map[string]string{"description": "hijacked"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		body := decodeBody[models.ErrorResponse](t, resp)
		assert.Equal(t, "You don't have permission to modify this post", body.Message)
	})

	t.Run("stranger cannot delete", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID),
			stranger.AccessToken, nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("owner deletes", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID),
			owner.AccessToken, nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp2 := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), "", nil)
		defer func() { _ = resp2.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
	})
}

func TestLikeUnlikePost(t *testing.T) {
	app, _ := setupTestServer(t)
	author := signupUser(t, app, "author", "author@example.com")
	fan := signupUser(t, app, "fan", "fan@example.com")

	resp := createPost(t, app, author.AccessToken, "likeable post", 0)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	post := decodeBody[models.Post](t, resp)

	likeURL := fmt.Sprintf("/api/posts/%d/like", post.ID)
	unlikeURL := fmt.Sprintf("/api/posts/%d/unlike", post.ID)
	isLikedURL := fmt.Sprintf("/api/posts/%d/is-liked", post.ID)

	t.Run("like", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, likeURL, fan.AccessToken, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		liked := decodeBody[models.Post](t, resp)
		assert.Equal(t, 1, liked.LikesCount)
		assert.True(t, liked.Liked)
	})

	t.Run("double like rejected", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, likeURL, fan.AccessToken, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody[models.ErrorResponse](t, resp)
		assert.Equal(t, "Post is already liked by the user", body.Message)
	})

	t.Run("is-liked", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, isLikedURL, fan.AccessToken, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, decodeBody[bool](t, resp))

		// anonymous viewers always get false
		resp2 := doJSON(t, app, http.MethodGet, isLikedURL, "", nil)
		assert.Equal(t, http.StatusOK, resp2.StatusCode)
		assert.False(t, decodeBody[bool](t, resp2))
	})

	t.Run("unlike", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, unlikeURL, fan.AccessToken, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		unliked := decodeBody[models.Post](t, resp)
		assert.Equal(t, 0, unliked.LikesCount)
		assert.False(t, unliked.Liked)
	})

	t.Run("unlike when not liked rejected", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, unlikeURL, fan.AccessToken, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody[models.ErrorResponse](t, resp)
		assert.Equal(t, "Post is not liked by the user", body.Message)
	})
}

func TestFeedAndTrending(t *testing.T) {
	app, _ := setupTestServer(t)
	writer := signupUser(t, app, "writer", "writer@example.com")
	reader := signupUser(t, app, "reader", "reader@example.com")
	loner := signupUser(t, app, "loner", "loner@example.com")

	for i := 0; i < 3; i++ {
		resp := createPost(t, app, writer.AccessToken, fmt.Sprintf("post number %d", i), 0)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		_ = resp.Body.Close()
	}
	lonerPost := createPost(t, app, loner.AccessToken, "nobody follows me", 0)
	require.Equal(t, http.StatusCreated, lonerPost.StatusCode)
	loners := decodeBody[models.Post](t, lonerPost)

	resp := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/users/%d/follow", writer.User.ID), reader.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	t.Run("feed contains only followed authors", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/posts/feed", reader.AccessToken, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		page := decodeBody[models.Page[models.Post]](t, resp)
		assert.EqualValues(t, 3, page.TotalElements)
		for _, p := range page.Content {
			assert.Equal(t, writer.User.ID, p.UserID)
		}
	})

	t.Run("feed pagination envelope", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/posts/feed?page=0&size=2", reader.AccessToken, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		page := decodeBody[models.Page[models.Post]](t, resp)
		assert.Len(t, page.Content, 2)
		assert.EqualValues(t, 3, page.TotalElements)
		assert.Equal(t, 2, page.TotalPages)
		assert.Equal(t, 0, page.Page)
		assert.Equal(t, 2, page.Size)
	})

	t.Run("trending ranks by likes", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost,
			fmt.Sprintf("/api/posts/%d/like", loners.ID), reader.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		resp2 := doJSON(t, app, http.MethodGet, "/api/posts/trending", "", nil)
		assert.Equal(t, http.StatusOK, resp2.StatusCode)
		posts := decodeBody[[]models.Post](t, resp2)
		require.NotEmpty(t, posts)
		assert.Equal(t, loners.ID, posts[0].ID)
		assert.Equal(t, 1, posts[0].LikesCount)
	})
}
