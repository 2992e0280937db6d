package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/jkarimi/wacrm-backend/internal/errors"
	"github.com/jkarimi/wacrm-backend/internal/repository/memory"
	"github.com/jkarimi/wacrm-backend/internal/service"
)

func TestCreateTemplateExtractsPlaceholders(t *testing.T) {
	svc := &service.TemplateService{TemplateRepo: memory.NewTemplateStore()}
	ctx := context.Background()

	tmpl, err := svc.CreateTemplate(ctx, testUserID, "promo", "Hi {{name}}, use code {{code}} before {{name}} forgets")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "code"}, tmpl.Placeholders)

	got, err := svc.GetTemplate(ctx, tmpl.ID, testUserID)
	require.NoError(t, err)
	assert.Equal(t, tmpl.Content, got.Content)
}

func TestCreateTemplateRejectsEmptyContent(t *testing.T) {
	svc := &service.TemplateService{TemplateRepo: memory.NewTemplateStore()}

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := svc.CreateTemplate(context.Background(), testUserID, "promo", content)
		require.Error(t, err)
		assert.True(t, appErrors.IsInvalidArgument(err))
	}
}

func TestTemplateOwnershipIsEnforced(t *testing.T) {
	svc := &service.TemplateService{TemplateRepo: memory.NewTemplateStore()}
	ctx := context.Background()

	tmpl, err := svc.CreateTemplate(ctx, testUserID, "promo", "Hi {{name}}")
	require.NoError(t, err)

	_, err = svc.GetTemplate(ctx, tmpl.ID, "someone-else")
	assert.True(t, appErrors.IsNotFound(err))

	err = svc.DeleteTemplate(ctx, tmpl.ID, "someone-else")
	assert.True(t, appErrors.IsNotFound(err))

	// Still there for the owner.
	require.NoError(t, svc.DeleteTemplate(ctx, tmpl.ID, testUserID))
	err = svc.DeleteTemplate(ctx, tmpl.ID, testUserID)
	assert.True(t, appErrors.IsNotFound(err))
}
