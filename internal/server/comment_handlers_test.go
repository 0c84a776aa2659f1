package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"skillshare/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createComment(t *testing.T, app *fiber.App, token string, postID uint, content string) *http.Response {
	t.Helper()
	return doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/comments", postID), token,
		map[string]string{"content": content})
}

func TestCreateComment(t *testing.T) {
	app, _ := setupTestServer(t)
	author := signupUser(t, app, "postauthor", "postauthor@example.com")
	commenter := signupUser(t, app, "commenter", "commenter@example.com")

	resp := createPost(t, app, author.AccessToken, "comment on me", 0)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	post := decodeBody[models.Post](t, resp)

	t.Run("success", func(t *testing.T) {
		resp := createComment(t, app, commenter.AccessToken, post.ID, "Great technique!")
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		comment := decodeBody[models.Comment](t, resp)
		assert.Equal(t, "Great technique!", comment.Content)
		assert.Equal(t, commenter.User.ID, comment.UserID)
		assert.True(t, comment.CanEdit)
		assert.True(t, comment.CanDelete)
		assert.False(t, comment.Edited)
	})

	t.Run("empty content", func(t *testing.T) {
		resp := createComment(t, app, commenter.AccessToken, post.ID, "   ")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		fields := decodeBody[map[string]string](t, resp)
		assert.Equal(t, "Comment content is required", fields["content"])
	})

	t.Run("too long", func(t *testing.T) {
		resp := createComment(t, app, commenter.AccessToken, post.ID,
			strings.Repeat("x", models.MaxCommentLength+1))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		fields := decodeBody[map[string]string](t, resp)
		assert.Equal(t, "Comment cannot exceed 500 characters", fields["content"])
	})

	t.Run("multibyte content at the limit", func(t *testing.T) {
		// 500 characters but 1500 bytes; the limit counts characters.
		resp := createComment(t, app, commenter.AccessToken, post.ID,
			strings.Repeat("学", models.MaxCommentLength))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("multibyte content over the limit", func(t *testing.T) {
		resp := createComment(t, app, commenter.AccessToken, post.ID,
			strings.Repeat("学", models.MaxCommentLength+1))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		fields := decodeBody[map[string]string](t, resp)
		assert.Equal(t, "Comment cannot exceed 500 characters", fields["content"])
	})

	t.Run("missing post", func(t *testing.T) {
		resp := createComment(t, app, commenter.AccessToken, 99999, "orphan")
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeletePostCascadesComments(t *testing.T) {
	app, _ := setupTestServer(t)
	author := signupUser(t, app, "cascauthor", "cascauthor@example.com")
	commenter := signupUser(t, app, "cascwriter", "cascwriter@example.com")

	resp := createPost(t, app, author.AccessToken, "doomed post", 0)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	doomed := decodeBody[models.Post](t, resp)

	resp = createPost(t, app, author.AccessToken, "surviving post", 0)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	survivor := decodeBody[models.Post](t, resp)

	cresp := createComment(t, app, commenter.AccessToken, doomed.ID, "first on doomed")
	require.Equal(t, http.StatusCreated, cresp.StatusCode)
	doomedComment := decodeBody[models.Comment](t, cresp)
	cresp = createComment(t, app, commenter.AccessToken, doomed.ID, "second on doomed")
	require.Equal(t, http.StatusCreated, cresp.StatusCode)
	_ = cresp.Body.Close()
	cresp = createComment(t, app, commenter.AccessToken, survivor.ID, "on survivor")
	require.Equal(t, http.StatusCreated, cresp.StatusCode)
	survivorComment := decodeBody[models.Comment](t, cresp)

	userCommentsURL := fmt.Sprintf("/api/users/%d/comments", commenter.User.ID)

	resp = doJSON(t, app, http.MethodGet, userCommentsURL, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decodeBody[models.Page[models.Comment]](t, resp)
	require.EqualValues(t, 3, page.TotalElements)

	dresp := doJSON(t, app, http.MethodDelete,
		fmt.Sprintf("/api/posts/%d", doomed.ID), author.AccessToken, nil)
	defer func() { _ = dresp.Body.Close() }()
	require.Equal(t, http.StatusNoContent, dresp.StatusCode)

	t.Run("comments on the deleted post are gone", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet,
			fmt.Sprintf("/api/comments/%d", doomedComment.ID), "", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("user comment page excludes them", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, userCommentsURL, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		page := decodeBody[models.Page[models.Comment]](t, resp)
		assert.EqualValues(t, 1, page.TotalElements)
		require.Len(t, page.Content, 1)
		assert.Equal(t, survivorComment.ID, page.Content[0].ID)
		assert.Equal(t, survivor.ID, page.Content[0].PostID)
	})
}

func TestCommentPermissionFlags(t *testing.T) {
	app, _ := setupTestServer(t)
	author := signupUser(t, app, "flagauthor", "flagauthor@example.com")
	commenter := signupUser(t, app, "flagwriter", "flagwriter@example.com")
	viewer := signupUser(t, app, "flagviewer", "flagviewer@example.com")

	resp := createPost(t, app, author.AccessToken, "flag post", 0)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	post := decodeBody[models.Post](t, resp)

	cresp := createComment(t, app, commenter.AccessToken, post.ID, "my comment")
	require.Equal(t, http.StatusCreated, cresp.StatusCode)
	comment := decodeBody[models.Comment](t, cresp)

	listURL := fmt.Sprintf("/api/posts/%d/comments", post.ID)

	cases := []struct {
		name      string
		token     string
		canEdit   bool
		canDelete bool
	}{
		{"comment author", commenter.AccessToken, true, true},
		{"post author", author.AccessToken, false, true},
		{"unrelated viewer", viewer.AccessToken, false, false},
		{"anonymous", "", false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodGet, listURL, tc.token, nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			page := decodeBody[models.Page[models.Comment]](t, resp)
			require.Len(t, page.Content, 1)
			assert.Equal(t, comment.ID, page.Content[0].ID)
			assert.Equal(t, tc.canEdit, page.Content[0].CanEdit)
			assert.Equal(t, tc.canDelete, page.Content[0].CanDelete)
		})
	}
}

func TestUpdateComment(t *testing.T) {
	app, _ := setupTestServer(t)
	author := signupUser(t, app, "editauthor", "editauthor@example.com")
	commenter := signupUser(t, app, "editwriter", "editwriter@example.com")
	stranger := signupUser(t, app, "editstranger", "editstranger@example.com")

	resp := createPost(t, app, author.AccessToken, "edit post", 0)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	post := decodeBody[models.Post](t, resp)

	cresp := createComment(t, app, commenter.AccessToken, post.ID, "first draft")
	require.Equal(t, http.StatusCreated, cresp.StatusCode)
	comment := decodeBody[models.Comment](t, cresp)

	commentURL := fmt.Sprintf("/api/comments/%d", comment.ID)

	t.Run("author edits and edited flag is set", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, commentURL, commenter.AccessToken,
			map[string]string{"content": "second draft"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		updated := decodeBody[models.Comment](t, resp)
		assert.Equal(t, "second draft", updated.Content)
		assert.True(t, updated.Edited)
	})

	t.Run("post author may edit", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, commentURL, author.AccessToken,
			map[string]string{"content": "moderated"})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPut, commentURL, stranger.AccessToken,
			map[string]string{"content": "hijack"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		body := decodeBody[models.ErrorResponse](t, resp)
		assert.Equal(t, "You don't have permission to modify this comment", body.Message)
	})
}

func TestDeleteComment(t *testing.T) {
	app, _ := setupTestServer(t)
	author := signupUser(t, app, "delauthor", "delauthor@example.com")
	commenter := signupUser(t, app, "delwriter", "delwriter@example.com")
	stranger := signupUser(t, app, "delstranger", "delstranger@example.com")

	resp := createPost(t, app, author.AccessToken, "delete post", 0)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	post := decodeBody[models.Post](t, resp)

	newComment := func(t *testing.T) models.Comment {
		cresp := createComment(t, app, commenter.AccessToken, post.ID, "deletable")
		require.Equal(t, http.StatusCreated, cresp.StatusCode)
		return decodeBody[models.Comment](t, cresp)
	}

	t.Run("stranger forbidden", func(t *testing.T) {
		comment := newComment(t)
		resp := doJSON(t, app, http.MethodDelete,
			fmt.Sprintf("/api/comments/%d", comment.ID), stranger.AccessToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		body := decodeBody[models.ErrorResponse](t, resp)
		assert.Equal(t, "You don't have permission to delete this comment", body.Message)
	})

	t.Run("comment author deletes", func(t *testing.T) {
		comment := newComment(t)
		resp := doJSON(t, app, http.MethodDelete,
			fmt.Sprintf("/api/comments/%d", comment.ID), commenter.AccessToken, nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("post author deletes", func(t *testing.T) {
		comment := newComment(t)
		resp := doJSON(t, app, http.MethodDelete,
			fmt.Sprintf("/api/comments/%d", comment.ID), author.AccessToken, nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp2 := doJSON(t, app, http.MethodGet,
			fmt.Sprintf("/api/comments/%d", comment.ID), "", nil)
		defer func() { _ = resp2.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
	})
}
