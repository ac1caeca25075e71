// Package gitlab publishes generated configuration as a merge request. A
// publish run replaces any leftover source branch from an earlier attempt,
// so re-triggering a generation with the same deterministic branch name is
// safe; there is no rollback of branches or commits on mid-run failure.
package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	appErr "github.com/apex-platform/tf-forge/pkg/errors"
	"github.com/apex-platform/tf-forge/pkg/logger"
	gitlab "gitlab.com/gitlab-org/api/client-go"
	"go.uber.org/zap"
)

// DefaultTargetBranch receives merge requests unless the caller overrides it.
const DefaultTargetBranch = "main"

// PublishInput describes one merge-request publication.
type PublishInput struct {
	Token        string
	ProjectID    int64
	Files        map[string]string
	SourceBranch string
	TargetBranch string
	Title        string
	Description  string
}

// MergeRequest is the publication result handed back to the orchestrator.
type MergeRequest struct {
	ID           int    `json:"id"`
	IID          int    `json:"iid"`
	URL          string `json:"url"`
	SourceBranch string `json:"source_branch"`
	TargetBranch string `json:"target_branch"`
}

// Client talks to one GitLab instance. Tokens are per-user and arrive with
// each publish call, so the API client is built per request.
type Client struct {
	baseURL string
}

func NewClient(baseURL string) *Client {
	return &Client{baseURL: baseURL}
}

// Publish creates the source branch (deleting a stale one first), commits
// every file, and opens the merge request. Any API fault aborts the run and
// propagates; already-created branches and commits are left in place.
func (c *Client) Publish(ctx context.Context, in PublishInput) (*MergeRequest, error) {
	if in.TargetBranch == "" {
		in.TargetBranch = DefaultTargetBranch
	}

	api, err := gitlab.NewClient(in.Token, gitlab.WithBaseURL(c.baseURL))
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "gitlab client init failed")
	}

	pid := int(in.ProjectID)
	withCtx := gitlab.WithContext(ctx)

	project, _, err := api.Projects.GetProject(pid, nil, withCtx)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "resolve gitlab project failed")
	}

	if err := c.replaceBranch(ctx, api, pid, in.SourceBranch, in.TargetBranch); err != nil {
		return nil, err
	}

	// Deterministic commit order keeps retried runs comparable.
	paths := make([]string, 0, len(in.Files))
	for p := range in.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		_, _, err := api.RepositoryFiles.CreateFile(pid, path, &gitlab.CreateFileOptions{
			Branch:        gitlab.Ptr(in.SourceBranch),
			Content:       gitlab.Ptr(in.Files[path]),
			CommitMessage: gitlab.Ptr(fmt.Sprintf("Add %s", path)),
		}, withCtx)
		if err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInternal, fmt.Sprintf("commit %s failed", path))
		}
	}

	mr, _, err := api.MergeRequests.CreateMergeRequest(pid, &gitlab.CreateMergeRequestOptions{
		SourceBranch: gitlab.Ptr(in.SourceBranch),
		TargetBranch: gitlab.Ptr(in.TargetBranch),
		Title:        gitlab.Ptr(in.Title),
		Description:  gitlab.Ptr(in.Description),
	}, withCtx)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "create merge request failed")
	}

	logger.L().Info("merge request opened",
		zap.String("project", project.PathWithNamespace),
		zap.Int("merge_request_iid", mr.IID),
		zap.String("source_branch", in.SourceBranch),
	)

	return &MergeRequest{
		ID:           mr.ID,
		IID:          mr.IID,
		URL:          mr.WebURL,
		SourceBranch: in.SourceBranch,
		TargetBranch: in.TargetBranch,
	}, nil
}

// replaceBranch deletes a pre-existing source branch, tolerating its
// absence, then recreates it from the target branch.
func (c *Client) replaceBranch(ctx context.Context, api *gitlab.Client, pid int, source, target string) error {
	withCtx := gitlab.WithContext(ctx)

	_, resp, err := api.Branches.GetBranch(pid, source, withCtx)
	switch {
	case err == nil:
		if _, err := api.Branches.DeleteBranch(pid, source, withCtx); err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "delete stale branch failed")
		}
		logger.L().Info("stale source branch deleted", zap.String("branch", source))
	case resp != nil && resp.StatusCode == http.StatusNotFound:
		// first attempt for this branch name
	default:
		return appErr.Wrap(err, appErr.CodeInternal, "branch lookup failed")
	}

	_, _, err = api.Branches.CreateBranch(pid, &gitlab.CreateBranchOptions{
		Branch: gitlab.Ptr(source),
		Ref:    gitlab.Ptr(target),
	}, withCtx)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "create branch failed")
	}
	return nil
}
