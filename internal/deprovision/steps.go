// Package deprovision irreversibly removes an organization and everything that references it.
package deprovision

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StepResult is the typed outcome of one deletion step.
type StepResult struct {
	Name    string `json:"name"`
	Table   string `json:"table"`
	Deleted int64  `json:"deleted"`
	Error   string `json:"error,omitempty"`
	err     error
}

func (r StepResult) Failed() bool {
	return r.err != nil
}

func (r StepResult) Err() error {
	return r.err
}

// Step deletes one table's rows for an organization.
type Step struct {
	Name  string
	Table string
	Run   func(ctx context.Context, organizationID uuid.UUID) StepResult
}

// TenantDeleter removes every row of one table owned by an organization.
type TenantDeleter interface {
	DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error)
}

func deleteAllStep(name, table string, deleter TenantDeleter) Step {
	return Step{
		Name:  name,
		Table: table,
		Run: func(ctx context.Context, organizationID uuid.UUID) StepResult {
			n, err := deleter.DeleteByOrganization(ctx, organizationID)
			return newStepResult(name, table, n, err)
		},
	}
}

func deleteOrganizationStep(orgs OrganizationStore) Step {
	const name, table = "organization", "organizations"
	return Step{
		Name:  name,
		Table: table,
		Run: func(ctx context.Context, organizationID uuid.UUID) StepResult {
			err := orgs.Delete(ctx, organizationID)
			var n int64
			if err == nil {
				n = 1
			}
			return newStepResult(name, table, n, err)
		},
	}
}

func newStepResult(name, table string, deleted int64, err error) StepResult {
	r := StepResult{Name: name, Table: table, Deleted: deleted, err: err}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// buildSteps returns the deletion order. Every table is emptied before the rows it references.
func buildSteps(s Stores) []Step {
	return []Step{
		deleteAllStep("transactions", "transactions", s.Transactions),
		deleteAllStep("categories", "categories", s.Categories),
		deleteAllStep("payees", "payees", s.Payees),
		deleteAllStep("appointments", "appointments", s.Appointments),
		deleteAllStep("services", "services", s.Services),
		deleteAllStep("working hours", "working_hours", s.WorkingHours),
		deleteAllStep("modules", "organization_modules", s.Modules),
		deleteAllStep("profiles", "profiles", s.Profiles),
		deleteOrganizationStep(s.Organizations),
	}
}

// runSteps runs steps in order and stops at the first failure. Rows deleted by earlier
// steps stay deleted.
func runSteps(ctx context.Context, organizationID uuid.UUID, steps []Step) ([]StepResult, error) {
	results := make([]StepResult, 0, len(steps))
	for _, step := range steps {
		stepCtx, span := tracer.Start(ctx, "deprovision.step."+step.Table)
		result := step.Run(stepCtx, organizationID)
		span.SetAttributes(attribute.Int64("rows.deleted", result.Deleted))
		if result.Failed() {
			markFailed(span, result.err)
		}
		span.End()

		results = append(results, result)
		if result.Failed() {
			return results, fmt.Errorf("failed to delete %s: %w", step.Name, result.err)
		}
	}
	return results, nil
}

func markFailed(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
