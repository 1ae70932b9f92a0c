// Package shambucket implements a fake Bitbucket Server for testing.
//
// It serves the subset of the REST API used by the bitbucket package
// from memory, mimicking the server's validation and error reporting.
package shambucket

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/silog"
)

// APIPrefix is the path under which the REST API is served.
const APIPrefix = "/rest/api/1.0"

// DefaultGroup is a group that exists on every ShamBucket,
// like the default group of a fresh Bitbucket Server install.
const DefaultGroup = "stash-users"

// Options configures a ShamBucket.
type Options struct {
	Log *silog.Logger

	// Token, if set, is the only bearer token the server accepts.
	// Requests without it are rejected with 401.
	Token string

	// Users and Groups are the principals that exist on the server.
	// DefaultGroup always exists.
	Users  []string
	Groups []string

	// Hooks is the catalog of hooks available to every repository.
	// Defaults to [DefaultHooks] if nil.
	Hooks []bitbucket.HookDetails
}

// ShamBucket is an in-memory fake Bitbucket Server.
// It implements http.Handler.
//
// It is safe for concurrent use.
type ShamBucket struct {
	log   *silog.Logger
	token string
	mux   *http.ServeMux

	mu       sync.RWMutex
	nextID   int
	users    map[string]*bitbucket.User // by lowercase name
	groups   map[string]struct{}        // by name
	hooks    []bitbucket.HookDetails
	projects map[string]*shamProject // by upper-case key
}

type shamProject struct {
	project bitbucket.Project
	repos   map[string]*shamRepo // by slug
}

type shamRepo struct {
	repo       bitbucket.Repository
	settings   bitbucket.PullRequestSettings
	userPerms  map[string]string // user name -> permission
	groupPerms map[string]string // group name -> permission
	enabled    map[string]bool   // hook key -> enabled
}

var _ http.Handler = (*ShamBucket)(nil)

// New builds a new ShamBucket.
func New(opts *Options) *ShamBucket {
	if opts == nil {
		opts = &Options{}
	}

	log := opts.Log
	if log == nil {
		log = silog.Nop()
	}

	hooks := opts.Hooks
	if hooks == nil {
		hooks = DefaultHooks()
	}

	sb := &ShamBucket{
		log:      log,
		token:    opts.Token,
		mux:      http.NewServeMux(),
		users:    make(map[string]*bitbucket.User),
		groups:   map[string]struct{}{DefaultGroup: {}},
		hooks:    slices.Clone(hooks),
		projects: make(map[string]*shamProject),
	}
	for _, u := range opts.Users {
		sb.AddUser(u)
	}
	for _, g := range opts.Groups {
		sb.AddGroup(g)
	}

	for _, h := range _restHandlers {
		handle := h.handle
		sb.mux.HandleFunc(h.method+" "+APIPrefix+h.path, func(w http.ResponseWriter, r *http.Request) {
			handle(sb, w, r)
		})
	}
	return sb
}

// AddUser adds a user to the server.
func (sb *ShamBucket) AddUser(name string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	key := strings.ToLower(name)
	if _, ok := sb.users[key]; ok {
		return
	}
	sb.users[key] = &bitbucket.User{
		ID:          sb.newID(),
		Name:        name,
		Slug:        key,
		DisplayName: name,
		Active:      true,
		Type:        "NORMAL",
	}
}

// AddGroup adds a group to the server.
func (sb *ShamBucket) AddGroup(name string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.groups[name] = struct{}{}
}

// ServeHTTP serves the REST API.
func (sb *ShamBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if sb.token != "" && r.Header.Get("Authorization") != "Bearer "+sb.token {
		writeError(w, &shamError{
			status:    http.StatusUnauthorized,
			exception: "com.atlassian.bitbucket.AuthorisationException",
			message:   "Authentication failed. Please check your credentials and try again.",
		})
		return
	}

	sb.log.Debug("Request", "method", r.Method, "path", r.URL.Path)

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	ctx := context.WithValue(r.Context(), baseURLKey{}, scheme+"://"+r.Host)
	sb.mux.ServeHTTP(w, r.WithContext(ctx))
}

type baseURLKey struct{}

// webURL returns an absolute URL on the server for the given path.
func webURL(ctx context.Context, path string) string {
	base, _ := ctx.Value(baseURLKey{}).(string)
	return base + path
}

// newID returns a new unique entity ID.
// Must be called with mu held.
func (sb *ShamBucket) newID() int {
	sb.nextID++
	return sb.nextID
}

// project looks up a project by key.
// Must be called with mu held.
func (sb *ShamBucket) project(key string) (*shamProject, error) {
	p, ok := sb.projects[strings.ToUpper(key)]
	if !ok {
		return nil, notFound("com.atlassian.bitbucket.project.NoSuchProjectException",
			"Project %s does not exist.", key)
	}
	return p, nil
}

// repository looks up a repository by project key and slug.
// Must be called with mu held.
func (sb *ShamBucket) repository(projectKey, slug string) (*shamProject, *shamRepo, error) {
	p, err := sb.project(projectKey)
	if err != nil {
		return nil, nil, err
	}
	r, ok := p.repos[strings.ToLower(slug)]
	if !ok {
		return nil, nil, notFound("com.atlassian.bitbucket.repository.NoSuchRepositoryException",
			"Repository %s/%s does not exist.", p.project.Key, slug)
	}
	return p, r, nil
}

// sortedValues returns the values of m ordered by key.
func sortedValues[K cmp.Ordered, V any](m map[K]V) []V {
	keys := slices.Sorted(maps.Keys(m))
	values := make([]V, len(keys))
	for i, k := range keys {
		values[i] = m[k]
	}
	return values
}

// Pagination defaults of Bitbucket Server.
const (
	_defaultLimit = 25
	_maxLimit     = 1000
)

// PageRequest holds the pagination parameters of a list request.
// It is embedded into request structs.
type PageRequest struct {
	Start int `query:"start" json:"-"`
	Limit int `query:"limit" json:"-"`
}

func paginate[T any](items []T, req PageRequest) *bitbucket.Page[T] {
	limit := req.Limit
	if limit <= 0 {
		limit = _defaultLimit
	}
	limit = min(limit, _maxLimit)
	start := min(max(req.Start, 0), len(items))
	end := min(start+limit, len(items))

	page := &bitbucket.Page[T]{
		Start:      start,
		Limit:      limit,
		Size:       end - start,
		IsLastPage: end >= len(items),
		Values:     slices.Clone(items[start:end]),
	}
	if page.Values == nil {
		page.Values = []T{}
	}
	if !page.IsLastPage {
		page.NextPageStart = end
	}
	return page
}

// shamError is an error response in Bitbucket's error envelope.
type shamError struct {
	status    int
	context   string
	exception string
	message   string
}

func (e *shamError) Error() string {
	return fmt.Sprintf("%d: %s", e.status, e.message)
}

func notFound(exception, format string, args ...any) error {
	return &shamError{
		status:    http.StatusNotFound,
		exception: exception,
		message:   fmt.Sprintf(format, args...),
	}
}

func badRequest(field, format string, args ...any) error {
	return &shamError{
		status:    http.StatusBadRequest,
		context:   field,
		exception: "com.atlassian.bitbucket.validation.ArgumentValidationException",
		message:   fmt.Sprintf(format, args...),
	}
}

func conflict(exception, format string, args ...any) error {
	return &shamError{
		status:    http.StatusConflict,
		exception: exception,
		message:   fmt.Sprintf(format, args...),
	}
}

func writeError(w http.ResponseWriter, err error) {
	var sErr *shamError
	if !errors.As(err, &sErr) {
		sErr = &shamError{
			status:  http.StatusInternalServerError,
			message: err.Error(),
		}
	}

	type errorBody struct {
		Context       *string `json:"context"`
		Message       string  `json:"message"`
		ExceptionName *string `json:"exceptionName"`
	}
	body := errorBody{Message: sErr.message}
	if sErr.context != "" {
		body.Context = &sErr.context
	}
	if sErr.exception != "" {
		body.ExceptionName = &sErr.exception
	}

	writeJSON(w, sErr.status, map[string][]errorBody{"errors": {body}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusCoder is implemented by responses that need a status other than 200.
type statusCoder interface {
	StatusCode() int
}

type restHandler struct {
	method, path string
	handle       func(*ShamBucket, http.ResponseWriter, *http.Request)
}

var _restHandlers []restHandler

// shambucketRESTHandler registers a handler for every ShamBucket.
//
// pattern is "METHOD /path", relative to APIPrefix.
// The request struct is filled from path wildcards (`path:"name"`),
// query parameters (`query:"name"`), and the JSON body.
// A nil response with a nil error is sent as 204 No Content.
func shambucketRESTHandler[Req, Res any](
	pattern string,
	handle func(*ShamBucket, context.Context, *Req) (*Res, error),
) struct{} {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		panic(fmt.Sprintf("bad pattern %q", pattern))
	}

	_restHandlers = append(_restHandlers, restHandler{
		method: method,
		path:   path,
		handle: func(sb *ShamBucket, w http.ResponseWriter, r *http.Request) {
			req := new(Req)
			if err := decodeRequest(r, req); err != nil {
				writeError(w, badRequest("", "%v", err))
				return
			}

			res, err := handle(sb, r.Context(), req)
			if err != nil {
				writeError(w, err)
				return
			}
			if res == nil {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			status := http.StatusOK
			if sc, ok := any(res).(statusCoder); ok {
				status = sc.StatusCode()
			}
			writeJSON(w, status, res)
		},
	})
	return struct{}{}
}

// decodeRequest fills the struct pointed to by dst from r.
func decodeRequest(r *http.Request, dst any) error {
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode body: %w", err)
		}
	}

	v := reflect.ValueOf(dst).Elem()
	if v.Kind() != reflect.Struct {
		return nil
	}

	query := r.URL.Query()
	for i := range v.NumField() {
		field := v.Type().Field(i)

		var raw string
		if name, ok := field.Tag.Lookup("path"); ok {
			raw = r.PathValue(name)
		} else if name, ok := field.Tag.Lookup("query"); ok {
			raw = query.Get(name)
		} else if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := decodeQueryStruct(query, v.Field(i)); err != nil {
				return err
			}
			continue
		} else {
			continue
		}

		if err := setField(v.Field(i), field.Name, raw); err != nil {
			return err
		}
	}
	return nil
}

// decodeQueryStruct fills an embedded struct of query parameters.
func decodeQueryStruct(query map[string][]string, v reflect.Value) error {
	for i := range v.NumField() {
		field := v.Type().Field(i)
		name, ok := field.Tag.Lookup("query")
		if !ok {
			continue
		}
		var raw string
		if vs := query[name]; len(vs) > 0 {
			raw = vs[0]
		}
		if err := setField(v.Field(i), field.Name, raw); err != nil {
			return err
		}
	}
	return nil
}

func setField(v reflect.Value, name, raw string) error {
	if raw == "" {
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		v.SetInt(int64(n))
	default:
		return fmt.Errorf("%s: unsupported field type %v", name, v.Type())
	}
	return nil
}
