// Package testutil provides an in-process fake of the auth, media and upload
// REST services, used by the client, service and CLI tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/mediashare/internal/client/models"
	"github.com/dmitrijs2005/mediashare/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

// Route names accepted by Fail, Gate and Hits.
const (
	RouteLogin        = "login"
	RouteRegister     = "register"
	RouteWhoAmI       = "whoami"
	RouteUpdateUser   = "update-user"
	RouteUsername     = "username"
	RouteEmail        = "email"
	RouteGetUser      = "get-user"
	RouteListMedia    = "list-media"
	RouteCreateMedia  = "create-media"
	RouteUpdateMedia  = "update-media"
	RouteDeleteMedia  = "delete-media"
	RoutePostLike     = "post-like"
	RouteDeleteLike   = "delete-like"
	RouteLikeCount    = "like-count"
	RouteViewerLike   = "viewer-like"
	RoutePostComment  = "post-comment"
	RouteListComments = "list-comments"
	RouteUpload       = "upload"
)

var signingKey = []byte("fake-backend-secret")

type failure struct {
	status  int
	message string
}

type account struct {
	profile  models.UserProfile
	password string
}

// FakeBackend serves all three services from one httptest.Server.
type FakeBackend struct {
	server *httptest.Server

	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*account
	tokens   map[string]int64
	media    []models.MediaItem
	likes    []models.LikeRecord
	comments []models.Comment
	uploads  map[string][]byte
	fail     map[string]failure
	gates    map[string]chan struct{}
	hits     map[string]int
}

// NewFakeBackend starts a backend that is shut down when t finishes.
func NewFakeBackend(t testing.TB) *FakeBackend {
	t.Helper()

	b := &FakeBackend{
		nextID:   100,
		accounts: map[int64]*account{},
		tokens:   map[string]int64{},
		uploads:  map[string][]byte{},
		fail:     map[string]failure{},
		gates:    map[string]chan struct{}{},
		hits:     map[string]int{},
	}
	b.server = httptest.NewServer(b.router())
	t.Cleanup(b.server.Close)
	return b
}

// URL is the base URL for the auth, media and upload APIs alike.
func (b *FakeBackend) URL() string { return b.server.URL }

func (b *FakeBackend) router() http.Handler {
	r := mux.NewRouter()

	handle := func(name, method, path string, h http.HandlerFunc) {
		r.HandleFunc(path, b.instrument(name, h)).Methods(method)
	}

	handle(RouteLogin, http.MethodPost, "/auth/login", b.login)
	handle(RouteRegister, http.MethodPost, "/users", b.register)
	handle(RouteUpdateUser, http.MethodPut, "/users", b.authed(b.updateUser))
	handle(RouteWhoAmI, http.MethodGet, "/users/token", b.authed(b.whoAmI))
	handle(RouteUsername, http.MethodGet, "/users/username/{username}", b.usernameAvailable)
	handle(RouteEmail, http.MethodGet, "/users/email/{email}", b.emailAvailable)
	handle(RouteGetUser, http.MethodGet, "/users/{id:[0-9]+}", b.getUser)

	handle(RouteListMedia, http.MethodGet, "/media", b.listMedia)
	handle(RouteCreateMedia, http.MethodPost, "/media", b.authed(b.createMedia))
	handle(RouteUpdateMedia, http.MethodPut, "/media/{id:[0-9]+}", b.authed(b.updateMedia))
	handle(RouteDeleteMedia, http.MethodDelete, "/media/{id:[0-9]+}", b.authed(b.deleteMedia))

	handle(RoutePostLike, http.MethodPost, "/likes", b.authed(b.postLike))
	handle(RouteDeleteLike, http.MethodDelete, "/likes/{id:[0-9]+}", b.authed(b.deleteLike))
	handle(RouteLikeCount, http.MethodGet, "/likes/count/{id:[0-9]+}", b.likeCount)
	handle(RouteViewerLike, http.MethodGet, "/likes/bymedia/user/{id:[0-9]+}", b.authed(b.viewerLike))

	handle(RoutePostComment, http.MethodPost, "/comments", b.authed(b.postComment))
	handle(RouteListComments, http.MethodGet, "/comments/bymedia/{id:[0-9]+}", b.listComments)

	handle(RouteUpload, http.MethodPost, "/upload", b.authed(b.upload))

	return r
}

// Fail makes route answer with status and message until ClearFailure.
func (b *FakeBackend) Fail(route string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[route] = failure{status: status, message: message}
}

func (b *FakeBackend) ClearFailure(route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.fail, route)
}

// Gate holds every request to route until the returned release func is
// called (or the request is cancelled). Release is safe to call twice.
func (b *FakeBackend) Gate(route string) (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.gates[route] = ch
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			if b.gates[route] == ch {
				delete(b.gates, route)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Hits returns how many requests reached route.
func (b *FakeBackend) Hits(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

func (b *FakeBackend) instrument(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[name]++
		gate := b.gates[name]
		f, failing := b.fail[name]
		b.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}

		if failing {
			writeJSON(w, f.status, models.MessageResponse{Message: f.message})
			return
		}
		h(w, r)
	}
}

type userHandler func(w http.ResponseWriter, r *http.Request, userID int64)

func (b *FakeBackend) authed(h userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get(common.AuthorizationHeader), common.BearerPrefix)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, models.MessageResponse{Message: "Missing token"})
			return
		}
		b.mu.Lock()
		userID, ok := b.tokens[token]
		b.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, models.MessageResponse{Message: "Invalid token"})
			return
		}
		h(w, r, userID)
	}
}

// AddUser registers an account directly and returns its profile.
func (b *FakeBackend) AddUser(username, email, password string) models.UserProfile {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(username, email, password)
}

func (b *FakeBackend) addUserLocked(username, email, password string) models.UserProfile {
	b.nextID++
	p := models.UserProfile{
		UserID:    b.nextID,
		Username:  username,
		Email:     email,
		LevelName: "User",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	b.accounts[p.UserID] = &account{profile: p, password: password}
	return p
}

// IssueToken mints a JWT for userID expiring at exp and makes the backend
// accept it.
func (b *FakeBackend) IssueToken(userID int64, exp time.Time) string {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	b.mu.Lock()
	b.tokens[token] = userID
	b.mu.Unlock()
	return token
}

// RevokeToken makes the backend reject token.
func (b *FakeBackend) RevokeToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.tokens, token)
}

// AddMedia stores item, assigning an id when MediaID is zero.
func (b *FakeBackend) AddMedia(item models.MediaItem) models.MediaItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	if item.MediaID == 0 {
		b.nextID++
		item.MediaID = b.nextID
	}
	b.media = append(b.media, item)
	return item
}

func (b *FakeBackend) AddLike(mediaID, userID int64) models.LikeRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	l := models.LikeRecord{LikeID: b.nextID, MediaID: mediaID, UserID: userID}
	b.likes = append(b.likes, l)
	return l
}

func (b *FakeBackend) AddComment(mediaID, userID int64, text string) models.Comment {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	c := models.Comment{CommentID: b.nextID, MediaID: mediaID, UserID: userID, CommentText: text}
	b.comments = append(b.comments, c)
	return c
}

// Media returns a snapshot of the stored media items.
func (b *FakeBackend) Media() []models.MediaItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.MediaItem, len(b.media))
	copy(out, b.media)
	return out
}

// Uploaded returns the bytes stored under filename by the upload route.
func (b *FakeBackend) Uploaded(filename string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.uploads[filename]
	return data, ok
}

func (b *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !readJSON(w, r, &creds) {
		return
	}

	b.mu.Lock()
	var found *account
	for _, a := range b.accounts {
		if a.profile.Username == creds.Username && a.password == creds.Password {
			found = a
			break
		}
	}
	b.mu.Unlock()

	if found == nil {
		writeJSON(w, http.StatusUnauthorized, models.MessageResponse{Message: "Invalid credentials"})
		return
	}

	token := b.IssueToken(found.profile.UserID, time.Now().Add(time.Hour))
	writeJSON(w, http.StatusOK, models.LoginResponse{Message: "Login successful", Token: token, User: found.profile})
}

func (b *FakeBackend) register(w http.ResponseWriter, r *http.Request) {
	var creds models.RegisterCredentials
	if !readJSON(w, r, &creds) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.accounts {
		if a.profile.Username == creds.Username {
			writeJSON(w, http.StatusBadRequest, models.MessageResponse{Message: "Username already exists"})
			return
		}
	}
	b.addUserLocked(creds.Username, creds.Email, creds.Password)
	writeJSON(w, http.StatusCreated, models.MessageResponse{Message: "User created"})
}

func (b *FakeBackend) whoAmI(w http.ResponseWriter, _ *http.Request, userID int64) {
	b.mu.Lock()
	a, ok := b.accounts[userID]
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, models.MessageResponse{Message: "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, models.UserResponse{Message: "token ok", User: a.profile})
}

func (b *FakeBackend) updateUser(w http.ResponseWriter, r *http.Request, userID int64) {
	var upd models.ProfileUpdate
	if !readJSON(w, r, &upd) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.accounts[userID]
	if !ok {
		writeJSON(w, http.StatusNotFound, models.MessageResponse{Message: "User not found"})
		return
	}
	if upd.Username != "" {
		a.profile.Username = upd.Username
	}
	if upd.Email != "" {
		a.profile.Email = upd.Email
	}
	if upd.Password != "" {
		a.password = upd.Password
	}
	writeJSON(w, http.StatusOK, models.UserResponse{Message: "user updated", User: a.profile})
}

func (b *FakeBackend) usernameAvailable(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["username"]
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.accounts {
		if a.profile.Username == name {
			writeJSON(w, http.StatusOK, models.AvailableResponse{Available: false})
			return
		}
	}
	writeJSON(w, http.StatusOK, models.AvailableResponse{Available: true})
}

func (b *FakeBackend) emailAvailable(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.accounts {
		if a.profile.Email == email {
			writeJSON(w, http.StatusOK, models.AvailableResponse{Available: false})
			return
		}
	}
	writeJSON(w, http.StatusOK, models.AvailableResponse{Available: true})
}

func (b *FakeBackend) getUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	a, ok := b.accounts[id]
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, models.MessageResponse{Message: "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, a.profile)
}

func (b *FakeBackend) listMedia(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, b.Media())
}

func (b *FakeBackend) createMedia(w http.ResponseWriter, r *http.Request, userID int64) {
	var in models.NewMedia
	if !readJSON(w, r, &in) {
		return
	}
	item := b.AddMedia(models.MediaItem{
		UserID:       userID,
		Filename:     in.Filename,
		Filesize:     in.Filesize,
		MediaType:    in.MediaType,
		Title:        in.Title,
		Description:  in.Description,
		ThumbnailURL: in.Filename + "-thumb.png",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	})
	writeJSON(w, http.StatusCreated, models.MediaResponse{Message: "Media created", Media: item})
}

func (b *FakeBackend) updateMedia(w http.ResponseWriter, r *http.Request, userID int64) {
	var in models.MediaInput
	if !readJSON(w, r, &in) {
		return
	}
	id := pathID(r)

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.media {
		if b.media[i].MediaID != id {
			continue
		}
		if b.media[i].UserID != userID {
			writeJSON(w, http.StatusForbidden, models.MessageResponse{Message: "Not your media"})
			return
		}
		b.media[i].Title = in.Title
		desc := in.Description
		b.media[i].Description = &desc
		writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Media updated"})
		return
	}
	writeJSON(w, http.StatusNotFound, models.MessageResponse{Message: "Media not found"})
}

func (b *FakeBackend) deleteMedia(w http.ResponseWriter, r *http.Request, userID int64) {
	id := pathID(r)

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.media {
		if b.media[i].MediaID != id {
			continue
		}
		if b.media[i].UserID != userID {
			writeJSON(w, http.StatusForbidden, models.MessageResponse{Message: "Not your media"})
			return
		}
		b.media = append(b.media[:i], b.media[i+1:]...)
		writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Media deleted"})
		return
	}
	writeJSON(w, http.StatusNotFound, models.MessageResponse{Message: "Media not found"})
}

func (b *FakeBackend) postLike(w http.ResponseWriter, r *http.Request, userID int64) {
	var in struct {
		MediaID int64 `json:"media_id"`
	}
	if !readJSON(w, r, &in) {
		return
	}

	b.mu.Lock()
	for _, l := range b.likes {
		if l.MediaID == in.MediaID && l.UserID == userID {
			b.mu.Unlock()
			writeJSON(w, http.StatusBadRequest, models.MessageResponse{Message: "Like already exists"})
			return
		}
	}
	b.mu.Unlock()

	b.AddLike(in.MediaID, userID)
	writeJSON(w, http.StatusCreated, models.MessageResponse{Message: "Like added"})
}

func (b *FakeBackend) deleteLike(w http.ResponseWriter, r *http.Request, userID int64) {
	id := pathID(r)

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, l := range b.likes {
		if l.LikeID != id {
			continue
		}
		if l.UserID != userID {
			writeJSON(w, http.StatusForbidden, models.MessageResponse{Message: "Not your like"})
			return
		}
		b.likes = append(b.likes[:i], b.likes[i+1:]...)
		writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Like deleted"})
		return
	}
	writeJSON(w, http.StatusNotFound, models.MessageResponse{Message: "Like not found"})
}

func (b *FakeBackend) likeCount(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	n := 0
	for _, l := range b.likes {
		if l.MediaID == id {
			n++
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, models.CountResponse{Count: n})
}

func (b *FakeBackend) viewerLike(w http.ResponseWriter, r *http.Request, userID int64) {
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range b.likes {
		if l.MediaID == id && l.UserID == userID {
			writeJSON(w, http.StatusOK, l)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, models.MessageResponse{Message: "Like not found"})
}

func (b *FakeBackend) postComment(w http.ResponseWriter, r *http.Request, userID int64) {
	var in struct {
		CommentText string `json:"comment_text"`
		MediaID     int64  `json:"media_id"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.CommentText) == "" {
		writeJSON(w, http.StatusBadRequest, models.MessageResponse{Message: "Comment text is required"})
		return
	}
	b.AddComment(in.MediaID, userID, in.CommentText)
	writeJSON(w, http.StatusCreated, models.MessageResponse{Message: "Comment added"})
}

func (b *FakeBackend) listComments(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	out := []models.Comment{}
	for _, c := range b.comments {
		if c.MediaID == id {
			out = append(out, c)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *FakeBackend) upload(w http.ResponseWriter, r *http.Request, _ int64) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.MessageResponse{Message: "file not found"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.MessageResponse{Message: err.Error()})
		return
	}

	b.mu.Lock()
	b.nextID++
	stored := fmt.Sprintf("%d-%s", b.nextID, header.Filename)
	b.uploads[stored] = data
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, models.UploadResponse{
		Message: "file uploaded",
		Data: models.UploadedFile{
			Filename:  stored,
			Filesize:  int64(len(data)),
			MediaType: header.Header.Get("Content-Type"),
		},
	})
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, models.MessageResponse{Message: "invalid body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
