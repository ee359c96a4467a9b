package router

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/yatube/backend/internal/metrics"
	"github.com/anonto42/yatube/backend/internal/middleware"
	"github.com/anonto42/yatube/backend/internal/models"
	"github.com/anonto42/yatube/backend/internal/repositories"
	"github.com/anonto42/yatube/backend/internal/storage"
	"github.com/anonto42/yatube/backend/internal/testutil"
	"github.com/anonto42/yatube/backend/pkg/cache"
	"github.com/anonto42/yatube/backend/pkg/config"
	"github.com/anonto42/yatube/backend/pkg/paginator"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testCSRFToken = "test-csrf-token"

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

// rendered is one call to the renderer.
type rendered struct {
	name string
	data map[string]interface{}
}

// recordingRenderer remembers what was rendered and delegates the output to
// the real templates.
type recordingRenderer struct {
	next echo.Renderer

	mu    sync.Mutex
	calls []rendered
}

func (r *recordingRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	var m map[string]interface{}
	switch d := data.(type) {
	case echo.Map:
		m = d
	case map[string]interface{}:
		m = d
	}
	r.mu.Lock()
	r.calls = append(r.calls, rendered{name: name, data: m})
	r.mu.Unlock()
	return r.next.Render(w, name, data, c)
}

func (r *recordingRenderer) last(t *testing.T) rendered {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.calls, "nothing was rendered")
	return r.calls[len(r.calls)-1]
}

type server struct {
	e        *echo.Echo
	db       *gorm.DB
	renderer *recordingRenderer
	store    *cache.MemoryStore
	metrics  *metrics.Metrics
	cfg      *config.Config
	logs     *test.Hook

	users    *repositories.PostgresUserRepository
	groups   *repositories.PostgresGroupRepository
	posts    *repositories.PostgresPostRepository
	comments *repositories.PostgresCommentRepository
	follows  *repositories.PostgresFollowRepository
}

func newServer(t *testing.T) *server {
	t.Helper()

	cfg := &config.Config{
		Env:          "test",
		CacheTTL:     20 * time.Second,
		PostsPerPage: 10,
		JWTSecret:    "test-secret",
		SessionKey:   "test-session-key",
		MediaRoot:    t.TempDir(),
		BodyLimit:    "64K",
	}
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	db := testutil.NewDB(t)
	s := &server{
		e:        echo.New(),
		db:       db,
		store:    cache.NewMemoryStore(),
		metrics:  metrics.New(),
		cfg:      cfg,
		logs:     hook,
		users:    repositories.NewPostgresUserRepository(db),
		groups:   repositories.NewPostgresGroupRepository(db),
		posts:    repositories.NewPostgresPostRepository(db),
		comments: repositories.NewPostgresCommentRepository(db),
		follows:  repositories.NewPostgresFollowRepository(db),
	}
	deps := Dependencies{
		Config:  cfg,
		DB:      db,
		Cache:   s.store,
		Media:   storage.NewFileSystemStorage(cfg.MediaRoot, "/media/"),
		Metrics: s.metrics,
		Logger:  log,
	}
	SetupMiddleware(s.e, deps)
	require.NoError(t, SetupRoutes(s.e, deps))

	s.renderer = &recordingRenderer{next: s.e.Renderer}
	s.e.Renderer = s.renderer
	return s
}

func (s *server) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Password: "x"}
	require.NoError(t, s.users.CreateUser(context.Background(), u))
	return u
}

func (s *server) group(t *testing.T, slug string) *models.Group {
	t.Helper()
	g := &models.Group{Title: "Group " + slug, Slug: slug, Description: "about " + slug}
	require.NoError(t, s.groups.CreateGroup(context.Background(), g))
	return g
}

func (s *server) post(t *testing.T, author *models.User, group *models.Group, text string) *models.Post {
	t.Helper()
	p := &models.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(t, s.posts.CreatePost(context.Background(), p))
	return p
}

func (s *server) do(t *testing.T, req *http.Request, as *models.User) *httptest.ResponseRecorder {
	t.Helper()
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: testCSRFToken})
	if as != nil {
		token, err := middleware.GenerateToken(s.cfg.JWTSecret, as)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *server) get(t *testing.T, path string, as *models.User) *httptest.ResponseRecorder {
	return s.do(t, httptest.NewRequest(http.MethodGet, path, nil), as)
}

// postForm submits form with the CSRF token unless the caller set one.
func (s *server) postForm(t *testing.T, path string, form url.Values, as *models.User) *httptest.ResponseRecorder {
	if _, ok := form[CSRFField]; !ok {
		form.Set(CSRFField, testCSRFToken)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return s.do(t, req, as)
}

func (s *server) postMultipart(t *testing.T, path string, fields map[string]string, filename string, file []byte, as *models.User) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField(CSRFField, testCSRFToken))
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return s.do(t, req, as)
}

func postURL(p *models.Post) string {
	return "/posts/" + strconv.FormatUint(uint64(p.ID), 10) + "/"
}

func pageItems(t *testing.T, r rendered) []models.Post {
	t.Helper()
	page, ok := r.data["page_obj"].(*paginator.Page)
	require.True(t, ok, "page_obj missing from %s", r.name)
	items, ok := page.Items.([]models.Post)
	require.True(t, ok)
	return items
}

func TestPagesUseExpectedTemplates(t *testing.T) {
	s := newServer(t)
	author := s.user(t, "auth")
	group := s.group(t, "test-slug")
	p := s.post(t, author, group, "Test post text")

	cases := []struct {
		path     string
		as       *models.User
		template string
	}{
		{"/", nil, "index.html"},
		{"/group/test-slug/", nil, "group_list.html"},
		{"/profile/auth/", nil, "profile.html"},
		{postURL(p), nil, "post_detail.html"},
		{"/create/", author, "create_post.html"},
		{postURL(p) + "edit/", author, "create_post.html"},
		{"/follow/", author, "follow.html"},
		{"/auth/signup/", nil, "signup.html"},
		{"/auth/login/", nil, "login.html"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rec := s.get(t, tc.path, tc.as)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.template, s.renderer.last(t).name)
		})
	}
}

func TestUnknownPagesAreNotFound(t *testing.T) {
	s := newServer(t)
	s.user(t, "auth")

	for _, path := range []string{"/unexisting_page/", "/group/nope/", "/profile/nobody/", "/posts/999/", "/posts/abc/"} {
		t.Run(path, func(t *testing.T) {
			rec := s.get(t, path, nil)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "404.html", s.renderer.last(t).name)
		})
	}
}

func TestMissingTrailingSlashRedirects(t *testing.T) {
	s := newServer(t)
	rec := s.get(t, "/auth/login", nil)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/auth/login/", rec.Header().Get(echo.HeaderLocation))
}

func TestGuestIsSentToLogin(t *testing.T) {
	s := newServer(t)
	author := s.user(t, "auth")
	p := s.post(t, author, nil, "text")

	cases := []struct {
		method, path string
	}{
		{http.MethodGet, "/create/"},
		{http.MethodPost, "/create/"},
		{http.MethodGet, postURL(p) + "edit/"},
		{http.MethodPost, postURL(p) + "comment/"},
		{http.MethodGet, "/follow/"},
		{http.MethodGet, "/profile/auth/follow/"},
		{http.MethodGet, "/profile/auth/unfollow/"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			var rec *httptest.ResponseRecorder
			if tc.method == http.MethodPost {
				rec = s.postForm(t, tc.path, url.Values{}, nil)
			} else {
				rec = s.get(t, tc.path, nil)
			}
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/auth/login/?next="+url.QueryEscape(tc.path), rec.Header().Get(echo.HeaderLocation))
		})
	}

	var count int64
	require.NoError(t, s.db.Model(&models.Post{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestPostDetailContext(t *testing.T) {
	s := newServer(t)
	author := s.user(t, "auth")
	group := s.group(t, "test-slug")
	p := s.post(t, author, group, "Test post text")
	s.post(t, author, nil, "another")

	rec := s.get(t, postURL(p), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	r := s.renderer.last(t)
	got := r.data["post"].(*models.Post)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Test post text", got.Text)
	assert.Equal(t, "auth", got.Author.Username)
	require.NotNil(t, got.Group)
	assert.Equal(t, "test-slug", got.Group.Slug)
	assert.EqualValues(t, 2, r.data["author_posts_count"])
	assert.Contains(t, rec.Body.String(), "Test post text")
}

func TestCreatePost(t *testing.T) {
	s := newServer(t)
	author := s.user(t, "auth")
	group := s.group(t, "test-slug")

	rec := s.postMultipart(t, "/create/", map[string]string{
		"text":  "Brand new post",
		"group": strconv.FormatUint(uint64(group.ID), 10),
	}, "small.gif", smallGIF, author)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/auth/", rec.Header().Get(echo.HeaderLocation))

	var p models.Post
	require.NoError(t, s.db.Where("text = ?", "Brand new post").First(&p).Error)
	assert.Equal(t, author.ID, p.AuthorID)
	require.NotNil(t, p.GroupID)
	assert.Equal(t, group.ID, *p.GroupID)
	assert.Equal(t, "posts/small.gif", p.Image)
	assert.FileExists(t, filepath.Join(s.cfg.MediaRoot, "posts", "small.gif"))

	rec = s.get(t, "/profile/auth/", author)
	require.Equal(t, http.StatusOK, rec.Code)
	items := pageItems(t, s.renderer.last(t))
	require.Len(t, items, 1)
	assert.Equal(t, "posts/small.gif", items[0].Image)
	assert.Contains(t, rec.Body.String(), "/media/posts/small.gif")
}

func TestCreatePostRejectsInvalidForm(t *testing.T) {
	s := newServer(t)
	author := s.user(t, "auth")

	cases := []struct {
		name   string
		fields map[string]string
		file   []byte
		field  string
	}{
		{"empty text", map[string]string{"text": ""}, nil, "text"},
		{"unknown group", map[string]string{"text": "hi", "group": "42"}, nil, "group"},
		{"not an image", map[string]string{"text": "hi"}, []byte("plain text"), "image"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			filename := ""
			if tc.file != nil {
				filename = "notes.gif"
			}
			rec := s.postMultipart(t, "/create/", tc.fields, filename, tc.file, author)
			require.Equal(t, http.StatusOK, rec.Code)

			r := s.renderer.last(t)
			assert.Equal(t, "create_post.html", r.name)
			form := r.data["form"]
			require.NotNil(t, form)
			assert.Contains(t, fmt.Sprint(form), tc.field)
		})
	}

	var count int64
	require.NoError(t, s.db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
	_, err := os.Stat(filepath.Join(s.cfg.MediaRoot, "posts", "notes.gif"))
	assert.True(t, os.IsNotExist(err))
}

func TestEditPost(t *testing.T) {
	s := newServer(t)
	author := s.user(t, "auth")
	group := s.group(t, "test-slug")
	p := s.post(t, author, group, "original")

	rec := s.postForm(t, postURL(p)+"edit/", url.Values{"text": {"edited"}}, author)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, postURL(p), rec.Header().Get(echo.HeaderLocation))

	got, err := s.posts.GetPostByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)
	assert.Nil(t, got.GroupID, "an empty group choice clears the group")
	assert.Equal(t, author.ID, got.AuthorID)
	assert.Equal(t, p.PubDate.Unix(), got.PubDate.Unix())
}

func TestEditPostByOtherUserRedirects(t *testing.T) {
	s := newServer(t)
	author := s.user(t, "auth")
	other := s.user(t, "other")
	p := s.post(t, author, nil, "original")

	rec := s.get(t, postURL(p)+"edit/", other)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, postURL(p), rec.Header().Get(echo.HeaderLocation))

	rec = s.postForm(t, postURL(p)+"edit/", url.Values{"text": {"hijacked"}}, other)
	assert.Equal(t, http.StatusFound, rec.Code)

	got, err := s.posts.GetPostByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Text)
}

func TestComments(t *testing.T) {
	s := newServer(t)
	author := s.user(t, "auth")
	reader := s.user(t, "reader")
	p := s.post(t, author, nil, "text")

	rec := s.postForm(t, postURL(p)+"comment/", url.Values{"text": {"Nice post"}}, reader)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, postURL(p), rec.Header().Get(echo.HeaderLocation))

	rec = s.postForm(t, postURL(p)+"comment/", url.Values{"text": {""}}, reader)
	require.Equal(t, http.StatusFound, rec.Code)

	rec = s.postForm(t, postURL(p)+"comment/", url.Values{"text": {"anonymous"}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)

	count, err := s.comments.CountComments(context.Background(), p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	rec = s.get(t, postURL(p), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	comments := s.renderer.last(t).data["comments"].([]models.Comment)
	require.Len(t, comments, 1)
	assert.Equal(t, "Nice post", comments[0].Text)
	assert.Equal(t, "reader", comments[0].Author.Username)
}

func TestFollowAndFeed(t *testing.T) {
	s := newServer(t)
	author := s.user(t, "auth")
	follower := s.user(t, "follower")
	stranger := s.user(t, "stranger")

	rec := s.get(t, "/profile/auth/follow/", follower)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/auth/", rec.Header().Get(echo.HeaderLocation))

	// Following twice keeps one edge.
	s.postForm(t, "/profile/auth/follow/", url.Values{}, follower)
	count, err := s.follows.GetFollowersCount(context.Background(), author.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// Self follow is ignored.
	rec = s.get(t, "/profile/auth/follow/", author)
	assert.Equal(t, http.StatusFound, rec.Code)
	count, err = s.follows.GetFollowingCount(context.Background(), author.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	s.post(t, author, nil, "for my followers")

	rec = s.get(t, "/follow/", follower)
	require.Equal(t, http.StatusOK, rec.Code)
	items := pageItems(t, s.renderer.last(t))
	require.Len(t, items, 1)
	assert.Equal(t, "for my followers", items[0].Text)

	rec = s.get(t, "/follow/", stranger)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, pageItems(t, s.renderer.last(t)))

	rec = s.get(t, "/profile/auth/", follower)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, s.renderer.last(t).data["following"])

	rec = s.get(t, "/profile/auth/unfollow/", follower)
	require.Equal(t, http.StatusFound, rec.Code)
	following, err := s.follows.IsFollowing(context.Background(), follower.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, following)

	s.get(t, "/follow/", follower)
	assert.Empty(t, pageItems(t, s.renderer.last(t)))
}

func TestIndexIsCached(t *testing.T) {
	s := newServer(t)
	author := s.user(t, "auth")
	p := s.post(t, author, nil, "cached text")

	first := s.get(t, "/", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), "cached text")

	require.NoError(t, s.posts.DeletePost(context.Background(), p.ID))

	second := s.get(t, "/", nil)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))

	require.NoError(t, s.store.Clear(context.Background()))
	third := s.get(t, "/", nil)
	assert.NotContains(t, third.Body.String(), "cached text")
}

func TestIndexCacheIsPerViewer(t *testing.T) {
	s := newServer(t)
	author := s.user(t, "auth")
	s.post(t, author, nil, "text")

	anon := s.get(t, "/", nil)
	logged := s.get(t, "/", author)
	assert.Equal(t, "MISS", logged.Header().Get("X-Cache"))
	assert.NotEqual(t, anon.Body.String(), logged.Body.String())
}

func TestPaginationAcrossListings(t *testing.T) {
	s := newServer(t)
	author := s.user(t, "auth")
	group := s.group(t, "test-slug")
	for i := 0; i < 13; i++ {
		s.post(t, author, group, fmt.Sprintf("post %d", i))
	}
	follower := s.user(t, "follower")
	_, err := s.follows.Follow(context.Background(), follower.ID, author.ID)
	require.NoError(t, err)

	for _, path := range []string{"/", "/group/test-slug/", "/profile/auth/", "/follow/"} {
		t.Run(path, func(t *testing.T) {
			require.NoError(t, s.store.Clear(context.Background()))

			s.get(t, path, follower)
			first := pageItems(t, s.renderer.last(t))
			require.Len(t, first, 10)
			assert.Equal(t, "post 12", first[0].Text, "newest first")

			s.get(t, path+"?page=2", follower)
			assert.Len(t, pageItems(t, s.renderer.last(t)), 3)

			s.get(t, path+"?page=99", follower)
			assert.Len(t, pageItems(t, s.renderer.last(t)), 3, "out of range pages clamp to the last")

			s.get(t, path+"?page=abc", follower)
			assert.Len(t, pageItems(t, s.renderer.last(t)), 10)
		})
	}
}

func TestSignupAndLogin(t *testing.T) {
	s := newServer(t)

	rec := s.postForm(t, "/auth/signup/", url.Values{
		"username":   {"newbie"},
		"first_name": {"New"},
		"password":   {"correct-horse"},
		"password2":  {"correct-horse"},
	}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	assert.NotEmpty(t, cookieValue(rec, middleware.TokenCookie))

	u, err := s.users.GetUserByUsername(context.Background(), "newbie")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("correct-horse")))

	rec = s.postForm(t, "/auth/signup/", url.Values{
		"username":  {"newbie"},
		"password":  {"another-pass"},
		"password2": {"another-pass"},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, fmt.Sprint(s.renderer.last(t).data["form"]), "already exists")

	rec = s.postForm(t, "/auth/login/", url.Values{
		"username": {"newbie"},
		"password": {"wrong-password"},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, cookieValue(rec, middleware.TokenCookie))

	rec = s.postForm(t, "/auth/login/?next=%2Fcreate%2F", url.Values{
		"username": {"newbie"},
		"password": {"correct-horse"},
	}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/create/", rec.Header().Get(echo.HeaderLocation))

	rec = s.postForm(t, "/auth/login/", url.Values{
		"username": {"newbie"},
		"password": {"correct-horse"},
		"next":     {"https://evil.example/"},
	}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)

	rec := s.get(t, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	s.get(t, "/", nil)
	rec = s.get(t, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `yatube_page_cache_total{result="miss"} 1`)
}

func TestPostsRequireCSRFToken(t *testing.T) {
	s := newServer(t)
	author := s.user(t, "auth")

	rec := s.get(t, "/create/", author)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="csrf_token" value="`+testCSRFToken+`"`)

	rec = s.postForm(t, "/create/", url.Values{"text": {"forged"}, CSRFField: {"wrong-token"}}, author)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/create/", strings.NewReader(url.Values{"text": {"forged"}}.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec = s.do(t, req, author)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var count int64
	require.NoError(t, s.db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOversizedBodyIsRejected(t *testing.T) {
	s := newServer(t)
	author := s.user(t, "auth")

	rec := s.postForm(t, "/create/", url.Values{"text": {strings.Repeat("a", 100*1024)}}, author)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	var count int64
	require.NoError(t, s.db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHandlersLogThroughLogrus(t *testing.T) {
	s := newServer(t)
	author := s.user(t, "auth")

	rec := s.postForm(t, "/create/", url.Values{"text": {"logged"}}, author)
	require.Equal(t, http.StatusFound, rec.Code)

	var created *logrus.Entry
	for _, entry := range s.logs.AllEntries() {
		if entry.Message == "Post created" {
			created = entry
		}
	}
	require.NotNil(t, created, "post creation was not logged")
	assert.Equal(t, logrus.InfoLevel, created.Level)
	assert.Equal(t, author.ID, created.Data["user_id"])
	assert.NotEmpty(t, created.Data["request_id"])
}

func cookieValue(rec *httptest.ResponseRecorder, name string) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
