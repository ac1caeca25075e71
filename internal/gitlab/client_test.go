package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/apex-platform/tf-forge/pkg/errors"
	"github.com/apex-platform/tf-forge/pkg/logger"
)

func TestMain(m *testing.M) {
	_, err := logger.Init("info", "json")
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

// fakeGitLab serves just enough of the v4 API for Publish: project lookup,
// branch replace, file commits, merge request creation.
type fakeGitLab struct {
	t            *testing.T
	branchExists bool
	failMR       bool

	calls       []string
	commits     map[string]string
	commitMsgs  []string
	mrRequested map[string]string
}

func (f *fakeGitLab) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.calls = append(f.calls, r.Method+" "+r.URL.Path)

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v4/projects/42":
			writeBody(w, http.StatusOK, map[string]any{
				"id": 42, "path_with_namespace": "infra/terraform",
			})

		case r.Method == http.MethodGet && r.URL.Path == "/api/v4/projects/42/repository/branches/feature/aws-rds-db1":
			if f.branchExists {
				writeBody(w, http.StatusOK, map[string]any{"name": "feature/aws-rds-db1"})
				return
			}
			writeBody(w, http.StatusNotFound, map[string]any{"message": "404 Branch Not Found"})

		case r.Method == http.MethodDelete && r.URL.Path == "/api/v4/projects/42/repository/branches/feature/aws-rds-db1":
			w.WriteHeader(http.StatusNoContent)

		case r.Method == http.MethodPost && r.URL.Path == "/api/v4/projects/42/repository/branches":
			var body struct {
				Branch string `json:"branch"`
				Ref    string `json:"ref"`
			}
			require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(f.t, "feature/aws-rds-db1", body.Branch)
			require.Equal(f.t, "main", body.Ref)
			writeBody(w, http.StatusCreated, map[string]any{"name": body.Branch})

		case r.Method == http.MethodPost && r.URL.Path == "/api/v4/projects/42/repository/files/aws/rds/db1.tf":
			var body struct {
				Branch        string `json:"branch"`
				Content       string `json:"content"`
				CommitMessage string `json:"commit_message"`
			}
			require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
			f.commits["aws/rds/db1.tf"] = body.Content
			f.commitMsgs = append(f.commitMsgs, body.CommitMessage)
			require.Equal(f.t, "feature/aws-rds-db1", body.Branch)
			writeBody(w, http.StatusCreated, map[string]any{
				"file_path": "aws/rds/db1.tf", "branch": body.Branch,
			})

		case r.Method == http.MethodPost && r.URL.Path == "/api/v4/projects/42/merge_requests":
			if f.failMR {
				writeBody(w, http.StatusInternalServerError, map[string]any{"message": "boom"})
				return
			}
			var body struct {
				SourceBranch string `json:"source_branch"`
				TargetBranch string `json:"target_branch"`
				Title        string `json:"title"`
				Description  string `json:"description"`
			}
			require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
			f.mrRequested = map[string]string{
				"source_branch": body.SourceBranch,
				"target_branch": body.TargetBranch,
				"title":         body.Title,
			}
			writeBody(w, http.StatusCreated, map[string]any{
				"id":            101,
				"iid":           7,
				"web_url":       "https://gitlab.example.com/infra/terraform/-/merge_requests/7",
				"source_branch": body.SourceBranch,
				"target_branch": body.TargetBranch,
			})

		default:
			f.t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func writeBody(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func newFakeGitLab(t *testing.T) (*fakeGitLab, *httptest.Server) {
	f := &fakeGitLab{t: t, commits: map[string]string{}}
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return f, srv
}

func testPublishInput() PublishInput {
	return PublishInput{
		Token:        "glpat-secret",
		ProjectID:    42,
		Files:        map[string]string{"aws/rds/db1.tf": `resource "aws_db_instance" "db1" {}`},
		SourceBranch: "feature/aws-rds-db1",
		TargetBranch: "main",
		Title:        "Add aws rds: db1",
		Description:  "Generated Terraform resource",
	}
}

func TestPublishFreshBranch(t *testing.T) {
	fake, srv := newFakeGitLab(t)
	client := NewClient(srv.URL)

	mr, err := client.Publish(context.Background(), testPublishInput())
	require.NoError(t, err)
	require.Equal(t, 7, mr.IID)
	require.Equal(t, "https://gitlab.example.com/infra/terraform/-/merge_requests/7", mr.URL)
	require.Equal(t, "feature/aws-rds-db1", mr.SourceBranch)
	require.Equal(t, "main", mr.TargetBranch)

	require.Equal(t, `resource "aws_db_instance" "db1" {}`, fake.commits["aws/rds/db1.tf"])
	require.Equal(t, []string{"Add aws/rds/db1.tf"}, fake.commitMsgs)
	require.Equal(t, "Add aws rds: db1", fake.mrRequested["title"])

	// The branch did not exist, so no delete was issued.
	require.NotContains(t, fake.calls, "DELETE /api/v4/projects/42/repository/branches/feature/aws-rds-db1")
}

func TestPublishReplacesStaleBranch(t *testing.T) {
	fake, srv := newFakeGitLab(t)
	fake.branchExists = true
	client := NewClient(srv.URL)

	_, err := client.Publish(context.Background(), testPublishInput())
	require.NoError(t, err)

	// Stale branch is deleted before the new one is created.
	deleteIdx, createIdx := -1, -1
	for i, call := range fake.calls {
		switch call {
		case "DELETE /api/v4/projects/42/repository/branches/feature/aws-rds-db1":
			deleteIdx = i
		case "POST /api/v4/projects/42/repository/branches":
			createIdx = i
		}
	}
	require.GreaterOrEqual(t, deleteIdx, 0)
	require.Greater(t, createIdx, deleteIdx)
}

func TestPublishDefaultsTargetBranch(t *testing.T) {
	fake, srv := newFakeGitLab(t)
	client := NewClient(srv.URL)

	in := testPublishInput()
	in.TargetBranch = ""

	mr, err := client.Publish(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, DefaultTargetBranch, mr.TargetBranch)
	require.Equal(t, DefaultTargetBranch, fake.mrRequested["target_branch"])
}

func TestPublishMergeRequestFaultPropagates(t *testing.T) {
	fake, srv := newFakeGitLab(t)
	fake.failMR = true
	client := NewClient(srv.URL)

	_, err := client.Publish(context.Background(), testPublishInput())
	require.Error(t, err)
	require.Equal(t, appErr.CodeInternal, appErr.CodeOf(err))
	require.Contains(t, err.Error(), "create merge request failed")

	// The commit survived; nothing is rolled back.
	require.Equal(t, `resource "aws_db_instance" "db1" {}`, fake.commits["aws/rds/db1.tf"])
}

func TestPublishUnreachableInstance(t *testing.T) {
	client := NewClient(fmt.Sprintf("http://127.0.0.1:%d", 1))

	_, err := client.Publish(context.Background(), testPublishInput())
	require.Error(t, err)
	require.Equal(t, appErr.CodeInternal, appErr.CodeOf(err))
}
