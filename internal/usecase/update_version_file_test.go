package usecase

import (
	"context"
	"testing"

	"github.com/compozy/gitrelease/internal/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateVersionFileUseCase_Execute(t *testing.T) {
	v := domain.NewReleaseVersion(1, 2, 3)
	t.Run("Should replace the version and keep other keys and comments", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		content := "# build settings\norg.gradle.jvmargs=-Xmx2g\nversion=1.2.2\n"
		require.NoError(t, afero.WriteFile(fs, "gradle.properties", []byte(content), 0644))
		uc := &UpdateVersionFileUseCase{FS: fs, Path: "gradle.properties"}
		require.NoError(t, uc.Execute(context.Background(), v))

		data, err := afero.ReadFile(fs, "gradle.properties")
		require.NoError(t, err)
		assert.Contains(t, string(data), "# build settings")
		assert.Contains(t, string(data), "org.gradle.jvmargs = -Xmx2g")
		assert.Contains(t, string(data), "version = 1.2.3")
		assert.NotContains(t, string(data), "1.2.2")

		got, err := uc.ReadVersion(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "1.2.3", got)
	})
	t.Run("Should create a missing file", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		uc := &UpdateVersionFileUseCase{FS: fs, Path: "gradle.properties"}
		got, err := uc.ReadVersion(context.Background())
		require.NoError(t, err)
		assert.Empty(t, got)

		require.NoError(t, uc.Execute(context.Background(), v))
		got, err = uc.ReadVersion(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "1.2.3", got)
	})
	t.Run("Should not expand references in other values", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		content := "artifact=app-${version}\nversion=1.0.0\n"
		require.NoError(t, afero.WriteFile(fs, "gradle.properties", []byte(content), 0644))
		uc := &UpdateVersionFileUseCase{FS: fs, Path: "gradle.properties"}
		require.NoError(t, uc.Execute(context.Background(), v))
		data, err := afero.ReadFile(fs, "gradle.properties")
		require.NoError(t, err)
		assert.Contains(t, string(data), "artifact = app-${version}")
	})
}
