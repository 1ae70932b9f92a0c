package shambucket

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"go.abhg.dev/bbs/internal/bitbucket"
)

// _repoNameRe matches valid repository names.
var _repoNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 _.-]*$`)

const _maxRepoNameLength = 128

// ValidRepositoryName reports whether Bitbucket Server accepts
// the given repository name.
func ValidRepositoryName(name string) bool {
	return len(name) <= _maxRepoNameLength && _repoNameRe.MatchString(name)
}

// Slugify returns the slug Bitbucket Server derives from a repository name.
func Slugify(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}

type createRepositoryRequest struct {
	ProjectKey string `path:"projectKey" json:"-"`

	Name          string `json:"name"`
	ScmID         string `json:"scmId"`
	Forkable      *bool  `json:"forkable"`
	DefaultBranch string `json:"defaultBranch"`
	Public        bool   `json:"public"`
}

type createdRepository struct{ bitbucket.Repository }

func (*createdRepository) StatusCode() int { return http.StatusCreated }

var _ = shambucketRESTHandler("POST /projects/{projectKey}/repos", (*ShamBucket).handleCreateRepository)

func (sb *ShamBucket) handleCreateRepository(
	ctx context.Context,
	req *createRepositoryRequest,
) (*createdRepository, error) {
	if req.ScmID != "" && req.ScmID != "git" {
		return nil, badRequest("scmId", "The SCM %q is not supported.", req.ScmID)
	}

	forkable := true
	if req.Forkable != nil {
		forkable = *req.Forkable
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()

	p, err := sb.project(req.ProjectKey)
	if err != nil {
		return nil, err
	}

	repo, err := sb.addRepository(ctx, p, req.Name, forkable, req.Public)
	if err != nil {
		return nil, err
	}
	return &createdRepository{repo.repo}, nil
}

// addRepository validates name and adds a new repository to p.
// Must be called with mu held.
func (sb *ShamBucket) addRepository(
	ctx context.Context,
	p *shamProject,
	name string,
	forkable, public bool,
) (*shamRepo, error) {
	if !ValidRepositoryName(name) {
		return nil, badRequest("name",
			`Repository name must begin with a letter or number and contain only `+
				`alphanumeric characters, "_", "-", "." or spaces`)
	}

	slug := Slugify(name)
	if existing, ok := p.repos[slug]; ok {
		return nil, conflict("com.atlassian.bitbucket.repository.DuplicateRepositoryNameException",
			"This repository URL is already taken by '%s' in '%s'",
			existing.repo.Name, p.project.Name)
	}

	project := p.project
	path := "/projects/" + project.Key + "/repos/" + slug
	repo := &shamRepo{
		repo: bitbucket.Repository{
			ID:       sb.newID(),
			Slug:     slug,
			Name:     name,
			ScmID:    "git",
			State:    "AVAILABLE",
			Forkable: forkable,
			Public:   public,
			Project:  &project,
			Links: bitbucket.Links{
				Self: []bitbucket.Link{{Href: webURL(ctx, path+"/browse")}},
				Clone: []bitbucket.Link{
					{Name: "http", Href: webURL(ctx, "/scm/"+strings.ToLower(project.Key)+"/"+slug+".git")},
				},
			},
		},
		settings:   defaultPullRequestSettings(),
		userPerms:  make(map[string]string),
		groupPerms: make(map[string]string),
		enabled:    make(map[string]bool),
	}
	p.repos[slug] = repo
	return repo, nil
}

type repositoryRequest struct {
	ProjectKey string `path:"projectKey" json:"-"`
	Slug       string `path:"repositorySlug" json:"-"`
}

var _ = shambucketRESTHandler("GET /projects/{projectKey}/repos/{repositorySlug}", (*ShamBucket).handleGetRepository)

func (sb *ShamBucket) handleGetRepository(_ context.Context, req *repositoryRequest) (*bitbucket.Repository, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	_, r, err := sb.repository(req.ProjectKey, req.Slug)
	if err != nil {
		return nil, err
	}
	repo := r.repo
	return &repo, nil
}

type acceptedResponse struct{}

func (*acceptedResponse) StatusCode() int { return http.StatusAccepted }

var _ = shambucketRESTHandler("DELETE /projects/{projectKey}/repos/{repositorySlug}", (*ShamBucket).handleDeleteRepository)

// handleDeleteRepository responds with 202 if the repository was deleted
// and 204 if there was no such repository.
func (sb *ShamBucket) handleDeleteRepository(_ context.Context, req *repositoryRequest) (*acceptedResponse, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	p, r, err := sb.repository(req.ProjectKey, req.Slug)
	if err != nil {
		return nil, nil
	}
	delete(p.repos, r.repo.Slug)
	return &acceptedResponse{}, nil
}

type listRepositoriesRequest struct {
	PageRequest

	ProjectKey string `path:"projectKey" json:"-"`
}

var _ = shambucketRESTHandler("GET /projects/{projectKey}/repos", (*ShamBucket).handleListRepositories)

func (sb *ShamBucket) handleListRepositories(
	_ context.Context,
	req *listRepositoriesRequest,
) (*bitbucket.RepositoryPage, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	p, err := sb.project(req.ProjectKey)
	if err != nil {
		return nil, err
	}

	repos := make([]bitbucket.Repository, 0, len(p.repos))
	for _, r := range sortedValues(p.repos) {
		repos = append(repos, r.repo)
	}
	return paginate(repos, req.PageRequest), nil
}

type searchRepositoriesRequest struct {
	PageRequest

	Name        string `query:"name" json:"-"`
	ProjectName string `query:"projectname" json:"-"`
	Permission  string `query:"permission" json:"-"`
}

var _ = shambucketRESTHandler("GET /repos", (*ShamBucket).handleSearchRepositories)

func (sb *ShamBucket) handleSearchRepositories(
	_ context.Context,
	req *searchRepositoriesRequest,
) (*bitbucket.RepositoryPage, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	var repos []bitbucket.Repository
	for _, p := range sortedValues(sb.projects) {
		if req.ProjectName != "" && !strings.EqualFold(p.project.Name, req.ProjectName) {
			continue
		}
		for _, r := range sortedValues(p.repos) {
			if req.Name != "" && !containsFold(r.repo.Name, req.Name) {
				continue
			}
			repos = append(repos, r.repo)
		}
	}
	return paginate(repos, req.PageRequest), nil
}

type forkRepositoryRequest struct {
	ProjectKey string `path:"projectKey" json:"-"`
	Slug       string `path:"repositorySlug" json:"-"`

	Name    string `json:"name"`
	Project *struct {
		Key string `json:"key"`
	} `json:"project"`
}

var _ = shambucketRESTHandler("POST /projects/{projectKey}/repos/{repositorySlug}", (*ShamBucket).handleForkRepository)

func (sb *ShamBucket) handleForkRepository(
	ctx context.Context,
	req *forkRepositoryRequest,
) (*createdRepository, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	_, origin, err := sb.repository(req.ProjectKey, req.Slug)
	if err != nil {
		return nil, err
	}
	if !origin.repo.Forkable {
		return nil, &shamError{
			status:    http.StatusBadRequest,
			exception: "com.atlassian.bitbucket.repository.RepositoryForkDisabledException",
			message:   "This repository cannot be forked.",
		}
	}

	if req.Project == nil || req.Project.Key == "" {
		// Personal projects are not modelled.
		return nil, badRequest("project", "A target project is required.")
	}
	target, err := sb.project(req.Project.Key)
	if err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = origin.repo.Name
	}

	fork, err := sb.addRepository(ctx, target, name, origin.repo.Forkable, false)
	if err != nil {
		return nil, err
	}
	originRepo := origin.repo
	fork.repo.Origin = &originRepo
	return &createdRepository{fork.repo}, nil
}
