package main

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize/english"
	"go.abhg.dev/bbs/internal/bitbucket"
)

var (
	_titleStyle    = lipgloss.NewStyle().Bold(true)
	_footerStyle   = lipgloss.NewStyle().Faint(true)
	_enabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	_disabledStyle = lipgloss.NewStyle().Faint(true)
)

// table writes aligned columns.
// Cells must not contain styling; widths are measured in bytes.
type table struct {
	w   io.Writer
	buf bytes.Buffer
	tw  *tabwriter.Writer
}

func newTable(w io.Writer, headings ...string) *table {
	t := &table{w: w}
	t.tw = tabwriter.NewWriter(&t.buf, 0, 4, 2, ' ', 0)
	if len(headings) > 0 {
		t.row(headings...)
	}
	return t
}

func (t *table) row(cells ...string) {
	fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
}

// flush writes the table, dropping padding at the ends of lines.
func (t *table) flush() error {
	if err := t.tw.Flush(); err != nil {
		return err
	}
	for line := range strings.Lines(t.buf.String()) {
		if _, err := io.WriteString(t.w, strings.TrimRight(line, " \n")+"\n"); err != nil {
			return err
		}
	}
	t.buf.Reset()
	return nil
}

func footer(w io.Writer, n int, singular, plural string) {
	fmt.Fprintln(w, _footerStyle.Render(english.Plural(n, singular, plural)))
}

func renderProjects(w io.Writer, projects []*bitbucket.Project) error {
	t := newTable(w, "KEY", "NAME", "DESCRIPTION")
	for _, p := range projects {
		t.row(p.Key, p.Name, p.Description)
	}
	if err := t.flush(); err != nil {
		return err
	}
	footer(w, len(projects), "project", "projects")
	return nil
}

func renderProject(w io.Writer, p *bitbucket.Project) error {
	fmt.Fprintln(w, _titleStyle.Render(p.Name))
	t := newTable(w)
	t.row("Key:", p.Key)
	if p.Description != "" {
		t.row("Description:", p.Description)
	}
	t.row("Public:", strconv.FormatBool(p.Public))
	if len(p.Links.Self) > 0 {
		t.row("URL:", p.Links.Self[0].Href)
	}
	return t.flush()
}

// renderRepositories lists repositories.
// withProject adds a column for the project key.
func renderRepositories(w io.Writer, repos []*bitbucket.Repository, withProject bool) error {
	headings := []string{"SLUG", "NAME", "FORKABLE"}
	if withProject {
		headings = append([]string{"PROJECT"}, headings...)
	}

	t := newTable(w, headings...)
	for _, r := range repos {
		cells := []string{r.Slug, r.Name, strconv.FormatBool(r.Forkable)}
		if withProject {
			var key string
			if r.Project != nil {
				key = r.Project.Key
			}
			cells = append([]string{key}, cells...)
		}
		t.row(cells...)
	}
	if err := t.flush(); err != nil {
		return err
	}
	footer(w, len(repos), "repository", "repositories")
	return nil
}

func renderRepository(w io.Writer, r *bitbucket.Repository) error {
	title := r.Name
	if r.Project != nil {
		title = r.Project.Key + "/" + r.Slug
	}
	fmt.Fprintln(w, _titleStyle.Render(title))

	t := newTable(w)
	t.row("Name:", r.Name)
	t.row("Slug:", r.Slug)
	if r.State != "" {
		t.row("State:", r.State)
	}
	t.row("Forkable:", strconv.FormatBool(r.Forkable))
	t.row("Public:", strconv.FormatBool(r.Public))
	if o := r.Origin; o != nil && o.Project != nil {
		t.row("Fork of:", o.Project.Key+"/"+o.Slug)
	}
	if u := r.WebURL(); u != "" {
		t.row("URL:", u)
	}
	if u := r.CloneURL("http"); u != "" {
		t.row("Clone:", u)
	}
	return t.flush()
}

func renderPullRequestSettings(w io.Writer, s *bitbucket.PullRequestSettings) error {
	t := newTable(w)
	if def := s.MergeConfig.DefaultStrategy; def != nil {
		t.row("Default strategy:", string(def.ID))
	}

	var enabled []string
	for _, st := range s.MergeConfig.Strategies {
		if st.Enabled {
			enabled = append(enabled, string(st.ID))
		}
	}
	t.row("Strategies:", strings.Join(enabled, ", "))
	if s.MergeConfig.Type != "" {
		t.row("Inherited from:", strings.ToLower(string(s.MergeConfig.Type)))
	}
	t.row("Required approvers:", strconv.Itoa(s.RequiredApprovers))
	t.row("Required builds:", strconv.Itoa(s.RequiredSuccessfulBuilds))
	t.row("All approvers:", strconv.FormatBool(s.RequiredAllApprovers))
	t.row("All tasks complete:", strconv.FormatBool(s.RequiredAllTasksComplete))
	return t.flush()
}

// principalPermission is a permission held by a user or a group.
type principalPermission struct {
	Kind string // "user" or "group"
	bitbucket.Permission
}

func renderPermissions(w io.Writer, perms []principalPermission) error {
	t := newTable(w, "TYPE", "NAME", "PERMISSION")
	for _, p := range perms {
		t.row(p.Kind, p.Principal(), p.Permission.Permission)
	}
	if err := t.flush(); err != nil {
		return err
	}
	footer(w, len(perms), "permission", "permissions")
	return nil
}

func renderHooks(w io.Writer, hooks []*bitbucket.Hook) error {
	t := newTable(w, "KEY", "NAME", "TYPE", "ENABLED")
	var enabled int
	for _, h := range hooks {
		if h.Enabled {
			enabled++
		}
		t.row(h.Details.Key, h.Details.Name, string(h.Details.Type), strconv.FormatBool(h.Enabled))
	}
	if err := t.flush(); err != nil {
		return err
	}
	fmt.Fprintln(w, _footerStyle.Render(
		english.Plural(len(hooks), "hook", "hooks")+", "+strconv.Itoa(enabled)+" enabled"))
	return nil
}

func renderHook(w io.Writer, h *bitbucket.Hook) error {
	state := _disabledStyle.Render("disabled")
	if h.Enabled {
		state = _enabledStyle.Render("enabled")
	}
	fmt.Fprintf(w, "%v (%v)\n", _titleStyle.Render(h.Details.Name), state)

	t := newTable(w)
	t.row("Key:", h.Details.Key)
	if h.Details.Type != "" {
		t.row("Type:", string(h.Details.Type))
	}
	if h.Details.Version != "" {
		t.row("Version:", h.Details.Version)
	}
	if h.Details.Description != "" {
		t.row("Description:", h.Details.Description)
	}
	if h.Details.NeedsConfig() {
		t.row("Configured:", strconv.FormatBool(h.Configured))
	}
	return t.flush()
}
