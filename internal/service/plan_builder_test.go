package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bankmetrics/internal/domain"
	"bankmetrics/internal/service"
	"bankmetrics/internal/workspace"
	"bankmetrics/mocks"
)

func setupPlanBuilder(t *testing.T) (service.PlanBuilder, afero.Fs, *workspace.Layout) {
	t.Helper()
	mfs, layout := newTestWorkspace(t)
	locator := service.NewDocumentLocator(mfs, layout, testWorkspaceConfig())
	builder := service.NewPlanBuilder(mfs, layout, locator, workspace.NewDirEnsurer(mfs), discard)
	return builder, mfs, layout
}

// --- Build ---

func TestPlanBuilder_Build_OrderAndSkips(t *testing.T) {
	builder, mfs, layout := setupPlanBuilder(t)
	writeFile(t, mfs, layout.DocumentDir(q12025, "BankC")+"/bankc-supplement.pdf", "c")
	writeFile(t, mfs, layout.DocumentDir(q12025, "BankA")+"/banka-supplement.pdf", "a")
	writeFile(t, mfs, layout.DocumentDir(q12025, "BankD")+"/press.pdf", "d")

	plan, err := builder.Build(context.Background(), []string{"BankC", "BankB", "BankA", "BankD"}, "Q1'25")
	require.NoError(t, err)

	assert.Equal(t, q12025, plan.Quarter)
	require.Len(t, plan.Items, 2)
	assert.Equal(t, "BankC", plan.Items[0].Bank)
	assert.Equal(t, "BankA", plan.Items[1].Bank)

	require.Len(t, plan.Skipped, 2)
	assert.Equal(t, "BankB", plan.Skipped[0].Bank)
	assert.Equal(t, service.SkipReasonDirMissing, plan.Skipped[0].Reason)
	assert.Equal(t, "BankD", plan.Skipped[1].Bank)
	assert.Equal(t, service.SkipReasonNoDocument, plan.Skipped[1].Reason)
}

func TestPlanBuilder_Build_WorkItemPaths(t *testing.T) {
	builder, mfs, layout := setupPlanBuilder(t)
	doc := layout.DocumentDir(q12025, "BankA") + "/supplement.pdf"
	writeFile(t, mfs, doc, "a")

	plan, err := builder.Build(context.Background(), []string{"BankA"}, "Q12025")
	require.NoError(t, err)
	require.Len(t, plan.Items, 1)

	item := plan.Items[0]
	assert.Equal(t, doc, item.InputDocumentPath)
	assert.Equal(t, "/ws/prompts/BankA/user_prompt.txt", item.UserPromptPath)
	assert.Equal(t, "/ws/prompts/System_prompt/system_prompt.txt", item.SystemPromptPath)
	assert.Equal(t, "/ws/results/Q12025/BankA/BankA.json", item.OutputPath)

	info, err := mfs.Stat("/ws/results/Q12025/BankA")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPlanBuilder_Build_EmptyPlanIsNotAnError(t *testing.T) {
	builder, _, _ := setupPlanBuilder(t)

	plan, err := builder.Build(context.Background(), []string{"BankA", "BankB"}, "Q12025")
	require.NoError(t, err)

	assert.True(t, plan.Empty())
	assert.Len(t, plan.Skipped, 2)
}

func TestPlanBuilder_Build_InvalidInput(t *testing.T) {
	builder, _, _ := setupPlanBuilder(t)

	tests := []struct {
		name    string
		banks   []string
		quarter string
	}{
		{"no banks", nil, "Q12025"},
		{"blank bank", []string{"BankA", " "}, "Q12025"},
		{"duplicate bank", []string{"BankA", "BankA"}, "Q12025"},
		{"path traversal", []string{"../etc"}, "Q12025"},
		{"bad quarter", []string{"BankA"}, "2025Q1"},
		{"quarter out of range", []string{"BankA"}, "Q52025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := builder.Build(context.Background(), tt.banks, tt.quarter)
			assert.Nil(t, plan)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestPlanBuilder_Build_MissingRootIsBatchError(t *testing.T) {
	mfs := afero.NewMemMapFs()
	layout := workspace.NewLayout(testWorkspaceConfig())
	locator := service.NewDocumentLocator(mfs, layout, testWorkspaceConfig())
	builder := service.NewPlanBuilder(mfs, layout, locator, workspace.NewDirEnsurer(mfs), discard)

	plan, err := builder.Build(context.Background(), []string{"BankA"}, "Q12025")

	assert.Nil(t, plan)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestPlanBuilder_Build_EnsureParentFailureAborts(t *testing.T) {
	mfs, layout := newTestWorkspace(t)
	writeFile(t, mfs, layout.DocumentDir(q12025, "BankA")+"/supplement.pdf", "a")
	paths := new(mocks.MockPathEnsurer)
	paths.On("EnsureParent", layout.OutputPath(q12025, "BankA")).Return(errors.New("read-only"))

	locator := service.NewDocumentLocator(mfs, layout, testWorkspaceConfig())
	builder := service.NewPlanBuilder(mfs, layout, locator, paths, discard)

	_, err := builder.Build(context.Background(), []string{"BankA"}, "Q12025")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
	paths.AssertExpectations(t)
}

func TestPlanBuilder_Build_EnsuresParentOncePerItem(t *testing.T) {
	mfs, layout := newTestWorkspace(t)
	writeFile(t, mfs, layout.DocumentDir(q12025, "BankA")+"/supplement.pdf", "a")
	writeFile(t, mfs, layout.DocumentDir(q12025, "BankB")+"/supplement.pdf", "b")
	paths := new(mocks.MockPathEnsurer)
	paths.On("EnsureParent", mock.AnythingOfType("string")).Return(nil)

	locator := service.NewDocumentLocator(mfs, layout, testWorkspaceConfig())
	builder := service.NewPlanBuilder(mfs, layout, locator, paths, discard)

	_, err := builder.Build(context.Background(), []string{"BankA", "BankB", "BankC"}, "Q12025")

	require.NoError(t, err)
	paths.AssertNumberOfCalls(t, "EnsureParent", 2)
}
