package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpupo63/portfolio-cms-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) Database {
	t.Helper()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "portfolio.db"), nil)
	require.NoError(t, err)

	database := New(db)
	require.NoError(t, database.Migrate())
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func addProject(t *testing.T, repo *ProjectRepo, title string, order int, active bool, createdAt time.Time) *models.Project {
	t.Helper()

	project := &models.Project{
		Title:        title,
		Description:  title + " description",
		Category:     "WEB",
		Features:     models.NewProjectFeatures([]string{title + " one", title + " two"}),
		DisplayOrder: order,
		IsActive:     active,
		CreatedAt:    createdAt,
	}
	require.NoError(t, repo.Add(context.Background(), project))
	return project
}

func titles(projects []*models.Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.Title)
	}
	return out
}

func TestProjectRepo_Listing(t *testing.T) {
	ctx := context.Background()
	repo := newTestDatabase(t).ProjectRepo()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	addProject(t, repo, "old-first", 1, true, base)
	addProject(t, repo, "new-first", 1, true, base.Add(time.Hour))
	addProject(t, repo, "hidden", 0, false, base)
	addProject(t, repo, "zero", 0, true, base)
	addProject(t, repo, "last", 5, true, base.Add(2*time.Hour))

	t.Run("public listing returns the active subset in order", func(t *testing.T) {
		projects, err := repo.FindActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"zero", "new-first", "old-first", "last"}, titles(projects))
		for _, p := range projects {
			assert.True(t, p.IsActive)
		}
	})

	t.Run("admin listing returns every row", func(t *testing.T) {
		projects, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"hidden", "zero", "new-first", "old-first", "last"}, titles(projects))
		assert.Equal(t, "last", projects[len(projects)-1].Title)
	})

	t.Run("features come back in stored order", func(t *testing.T) {
		projects, err := repo.FindActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"zero one", "zero two"}, projects[0].FeatureValues())
	})
}

func TestProjectRepo_FindByID(t *testing.T) {
	ctx := context.Background()
	repo := newTestDatabase(t).ProjectRepo()
	created := addProject(t, repo, "solo", 0, true, time.Now())

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "solo", found.Title)
	assert.Equal(t, []string{"solo one", "solo two"}, found.FeatureValues())

	missing, err := repo.FindByID(ctx, created.ID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProjectRepo_Update(t *testing.T) {
	ctx := context.Background()
	repo := newTestDatabase(t).ProjectRepo()
	image := "/uploads/original.png"
	created := &models.Project{
		Title:       "before",
		Description: "d",
		Category:    "c",
		Features:    models.NewProjectFeatures([]string{"x"}),
		ImageURL:    &image,
		IsActive:    true,
	}
	require.NoError(t, repo.Add(ctx, created))

	t.Run("without image keeps the stored image", func(t *testing.T) {
		liveURL := "https://example.com"
		found, err := repo.Update(ctx, created.ID, ProjectChanges{
			Title:        "after",
			Description:  "d2",
			Category:     "c2",
			Features:     []string{"c", "a", "b"},
			LiveURL:      &liveURL,
			DisplayOrder: 3,
			IsActive:     false,
		})
		require.NoError(t, err)
		assert.True(t, found)

		project, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "after", project.Title)
		assert.Equal(t, 3, project.DisplayOrder)
		assert.False(t, project.IsActive)
		assert.Equal(t, []string{"c", "a", "b"}, project.FeatureValues())
		require.NotNil(t, project.ImageURL)
		assert.Equal(t, image, *project.ImageURL)
		require.NotNil(t, project.LiveURL)
		assert.Equal(t, liveURL, *project.LiveURL)
	})

	t.Run("with image overwrites the stored image", func(t *testing.T) {
		replacement := "/uploads/replacement.png"
		found, err := repo.Update(ctx, created.ID, ProjectChanges{
			Title:       "after",
			Description: "d2",
			Category:    "c2",
			Features:    []string{"only"},
			ImageURL:    &replacement,
			IsActive:    true,
		})
		require.NoError(t, err)
		assert.True(t, found)

		project, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, project.ImageURL)
		assert.Equal(t, replacement, *project.ImageURL)
		assert.Nil(t, project.LiveURL)
		assert.Equal(t, []string{"only"}, project.FeatureValues())
	})

	t.Run("unknown id changes nothing", func(t *testing.T) {
		found, err := repo.Update(ctx, created.ID+100, ProjectChanges{Title: "ghost", Features: []string{"g"}})
		require.NoError(t, err)
		assert.False(t, found)

		features, err := NewProjectFeatureRepo(repo.GetDB()).FindByProjectID(ctx, created.ID+100)
		require.NoError(t, err)
		assert.Empty(t, features)
	})
}

func TestProjectRepo_Delete(t *testing.T) {
	ctx := context.Background()
	database := newTestDatabase(t)
	repo := database.ProjectRepo()
	keep := addProject(t, repo, "keep", 0, true, time.Now())
	drop := addProject(t, repo, "drop", 0, true, time.Now())

	require.NoError(t, repo.Delete(ctx, drop.ID))

	gone, err := repo.FindByID(ctx, drop.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	features, err := database.ProjectFeatureRepo().FindByProjectID(ctx, drop.ID)
	require.NoError(t, err)
	assert.Empty(t, features)

	kept, err := repo.FindByID(ctx, keep.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestSeedSampleProjects(t *testing.T) {
	ctx := context.Background()
	database := newTestDatabase(t)

	seeded, err := database.SeedSampleProjects(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = database.SeedSampleProjects(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	projects, err := database.ProjectRepo().FindActive(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Arbor Cove Funding", projects[0].Title)
	assert.Equal(t, []string{"Lead qualification forms", "Custom branding", "Mobile-responsive"}, projects[0].FeatureValues())
}
