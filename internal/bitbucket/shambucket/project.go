package shambucket

import (
	"context"
	"net/http"
	"regexp"
	"slices"
	"strings"

	"go.abhg.dev/bbs/internal/bitbucket"
)

// _projectKeyRe matches valid project keys.
var _projectKeyRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

type createProjectRequest struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Avatar      string `json:"avatar"`
}

type createdProject struct{ bitbucket.Project }

func (*createdProject) StatusCode() int { return http.StatusCreated }

var _ = shambucketRESTHandler("POST /projects", (*ShamBucket).handleCreateProject)

func (sb *ShamBucket) handleCreateProject(ctx context.Context, req *createProjectRequest) (*createdProject, error) {
	if !_projectKeyRe.MatchString(req.Key) {
		return nil, badRequest("key",
			"Project keys must start with a letter and may only consist "+
				"of ASCII letters, numbers and underscores (A-Z, a-z, 0-9, _).")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, badRequest("name", "Please enter a project name.")
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()

	key := strings.ToUpper(req.Key)
	if _, ok := sb.projects[key]; ok {
		return nil, conflict("com.atlassian.bitbucket.project.DuplicateProjectKeyException",
			"The project key %s is already in use.", key)
	}
	for _, p := range sb.projects {
		if strings.EqualFold(p.project.Name, name) {
			return nil, conflict("com.atlassian.bitbucket.project.DuplicateProjectNameException",
				"The project name %s is already in use.", name)
		}
	}

	p := &shamProject{
		project: bitbucket.Project{
			ID:          sb.newID(),
			Key:         key,
			Name:        name,
			Description: req.Description,
			Type:        "NORMAL",
			Links: bitbucket.Links{
				Self: []bitbucket.Link{{Href: webURL(ctx, "/projects/"+key)}},
			},
		},
		repos: make(map[string]*shamRepo),
	}
	sb.projects[key] = p
	return &createdProject{p.project}, nil
}

type projectRequest struct {
	Key string `path:"projectKey" json:"-"`
}

var _ = shambucketRESTHandler("GET /projects/{projectKey}", (*ShamBucket).handleGetProject)

func (sb *ShamBucket) handleGetProject(_ context.Context, req *projectRequest) (*bitbucket.Project, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	p, err := sb.project(req.Key)
	if err != nil {
		return nil, err
	}
	project := p.project
	return &project, nil
}

var _ = shambucketRESTHandler("DELETE /projects/{projectKey}", (*ShamBucket).handleDeleteProject)

func (sb *ShamBucket) handleDeleteProject(_ context.Context, req *projectRequest) (*struct{}, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	p, err := sb.project(req.Key)
	if err != nil {
		return nil, err
	}
	if len(p.repos) > 0 {
		return nil, conflict("com.atlassian.bitbucket.IntegrityException",
			"The project %s cannot be deleted because it has repositories.", p.project.Key)
	}
	delete(sb.projects, p.project.Key)
	return nil, nil
}

type listProjectsRequest struct {
	PageRequest

	Name       string `query:"name" json:"-"`
	Permission string `query:"permission" json:"-"`
}

var _ = shambucketRESTHandler("GET /projects", (*ShamBucket).handleListProjects)

func (sb *ShamBucket) handleListProjects(_ context.Context, req *listProjectsRequest) (*bitbucket.ProjectPage, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	projects := make([]bitbucket.Project, 0, len(sb.projects))
	for _, p := range sortedValues(sb.projects) {
		if req.Name != "" && !containsFold(p.project.Name, req.Name) {
			continue
		}
		projects = append(projects, p.project)
	}
	return paginate(slices.Clip(projects), req.PageRequest), nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
