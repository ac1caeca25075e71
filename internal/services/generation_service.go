package services

import (
	"context"
	"fmt"
	"time"

	"github.com/apex-platform/tf-forge/internal/gitlab"
	"github.com/apex-platform/tf-forge/internal/models"
	"github.com/apex-platform/tf-forge/internal/renderer"
	"github.com/apex-platform/tf-forge/internal/repository"
	"github.com/apex-platform/tf-forge/internal/terraform"
	appErr "github.com/apex-platform/tf-forge/pkg/errors"
	"github.com/apex-platform/tf-forge/pkg/logger"
	"github.com/apex-platform/tf-forge/pkg/metrics"
	"go.uber.org/zap"
)

// Publisher opens a merge request carrying the rendered files.
type Publisher interface {
	Publish(ctx context.Context, in gitlab.PublishInput) (*gitlab.MergeRequest, error)
}

// GenerationService sequences one generation request through its gates:
// resource lookup, template fetch, render, structural validation, credential
// and routing lookup, publication. Every attempt is journaled STARTED before
// the first lookup and exactly once more with its terminal state.
type GenerationService interface {
	Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error)
	History(ctx context.Context, username string) ([]models.GenerationStatus, error)
}

type GenerateInput struct {
	Username     string
	CloudID      string
	ResourceType string
	RequestID    int64
}

type GenerateResult struct {
	MergeRequest *gitlab.MergeRequest
	Files        map[string]string
}

type generationService struct {
	resources repository.ResourceRepository
	templates TemplateStore
	creds     repository.CredentialRepository
	publisher Publisher
	ledger    StatusLedger
}

func NewGenerationService(
	resources repository.ResourceRepository,
	templates TemplateStore,
	creds repository.CredentialRepository,
	publisher Publisher,
	ledger StatusLedger,
) GenerationService {
	return &generationService{
		resources: resources,
		templates: templates,
		creds:     creds,
		publisher: publisher,
		ledger:    ledger,
	}
}

var _ GenerationService = (*generationService)(nil)

// Generate runs the gate sequence. Two overlapping attempts for the same
// request id are not mutually excluded; the ledger's upsert keeps a single
// row and the last writer's terminal state wins.
func (s *generationService) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	start := time.Now()
	key := StatusKey{
		RequestID:    in.RequestID,
		Username:     in.Username,
		CloudID:      in.CloudID,
		ResourceType: in.ResourceType,
	}
	log := logger.L().With(
		zap.String("username", in.Username),
		zap.String("cloud_id", in.CloudID),
		zap.String("resource_type", in.ResourceType),
		zap.Int64("request_id", in.RequestID),
	)

	// Journal the attempt before touching any store, so even a total
	// upstream outage leaves a traceable row.
	s.ledger.Started(ctx, key)

	fail := func(err *appErr.AppError, details any) (*GenerateResult, error) {
		log.Warn("generation failed", zap.String("code", string(err.Code)), zap.String("reason", err.Message))
		s.ledger.Finished(ctx, key, models.StatusFailed, err.Message, "", details)
		metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		metrics.GenerationDuration.Observe(time.Since(start).Seconds())
		return nil, err
	}

	data, sgRules, err := s.resources.GetResourceData(ctx, in.CloudID, in.ResourceType, in.RequestID)
	if err != nil {
		return fail(appErr.Wrap(err, appErr.CodeUnavailable, "resource lookup failed"), nil)
	}
	if len(data) == 0 {
		return fail(appErr.New(appErr.CodeNotFound,
			fmt.Sprintf("resource not found for %s/%s/%d", in.CloudID, in.ResourceType, in.RequestID)), nil)
	}

	moduleVersion := data.ModuleVersion()
	if moduleVersion == "" {
		return fail(appErr.New(appErr.CodeInvalid, "resource has no module_version"), nil)
	}

	templateText, ok := s.templates.Get(ctx, in.CloudID, in.ResourceType, moduleVersion)
	if !ok {
		return fail(appErr.New(appErr.CodeNotFound,
			fmt.Sprintf("template not found for %s/%s/%s", in.CloudID, in.ResourceType, moduleVersion)), nil)
	}

	rendered, err := renderer.Render(templateText, renderData(data, sgRules))
	if err != nil {
		return fail(appErr.Wrap(err, appErr.CodeInternal, "terraform generation failed"), nil)
	}

	if res := terraform.Validate(rendered); !res.IsValid {
		e := appErr.New(appErr.CodeInvalid, "generated configuration failed validation").
			WithMeta("errors", res.Errors).
			WithMeta("terraform_code", rendered)
		return fail(e, map[string]any{"errors": res.Errors})
	}

	token, ok := s.creds.GetUserToken(ctx, in.Username)
	if !ok {
		return fail(appErr.New(appErr.CodeNotFound,
			fmt.Sprintf("gitlab token not found for user %s", in.Username)), nil)
	}

	projectID, ok := s.creds.GetProjectID(ctx, in.CloudID, in.ResourceType, in.RequestID)
	if !ok {
		return fail(appErr.New(appErr.CodeNotFound, "gitlab project id not found"), nil)
	}

	name := data.Name(in.RequestID)
	sourceBranch := fmt.Sprintf("feature/%s-%s-%s", in.CloudID, in.ResourceType, name)
	files := map[string]string{
		fmt.Sprintf("%s/%s/%s.tf", in.CloudID, in.ResourceType, name): rendered,
	}

	mr, err := s.publisher.Publish(ctx, gitlab.PublishInput{
		Token:        token,
		ProjectID:    projectID,
		Files:        files,
		SourceBranch: sourceBranch,
		TargetBranch: gitlab.DefaultTargetBranch,
		Title:        fmt.Sprintf("Add %s %s: %s", in.CloudID, in.ResourceType, name),
		Description: fmt.Sprintf(
			"Generated Terraform resource\n\nCloud: %s\nType: %s\nModule version: %s\nRequest id: %d\n",
			in.CloudID, in.ResourceType, moduleVersion, in.RequestID,
		),
	})
	if err != nil {
		return fail(appErr.Wrap(err, appErr.CodeInternal, "merge request creation failed"), nil)
	}

	s.ledger.Finished(ctx, key, models.StatusSuccess, "merge request created", mr.URL, nil)
	metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())

	log.Info("generation succeeded",
		zap.String("merge_request_url", mr.URL),
		zap.String("source_branch", sourceBranch),
	)
	return &GenerateResult{MergeRequest: mr, Files: files}, nil
}

func (s *generationService) History(ctx context.Context, username string) ([]models.GenerationStatus, error) {
	return s.ledger.History(ctx, username)
}

// renderData flattens the row image plus the sg rules into the mapping a
// template sees. Rules become plain maps so templates can range over fields
// without knowing the Go struct.
func renderData(data models.ResourceData, sgRules []models.SecurityGroupRule) map[string]any {
	out := make(map[string]any, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	rules := make([]map[string]any, 0, len(sgRules))
	for _, r := range sgRules {
		rules = append(rules, map[string]any{
			"from_port":   r.FromPort,
			"to_port":     r.ToPort,
			"protocol":    r.Protocol,
			"cidr":        r.CIDR,
			"description": r.Description,
		})
	}
	out["sg_rules"] = rules
	return out
}
