package classifications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryRepoCreateManyRejectsWholeBatch(t *testing.T) {
	repo := NewMemoryRepo()

	_, err := repo.CreateMany(context.Background(), []Classification{
		{ID: 1, Layer: 2, UserID: "a@a"},
		{ID: 1, Layer: 2, UserID: "a@a"},
	})
	require.ErrorIs(t, err, ErrDuplicate)

	stored, err := repo.GetByUser(context.Background(), "a@a")
	require.NoError(t, err)
	require.Empty(t, stored, "a rejected batch must leave no partial insert")
}

func TestMemoryRepoCreateManyRejectsExistingDuplicate(t *testing.T) {
	repo := NewMemoryRepo()

	_, err := repo.CreateMany(context.Background(), []Classification{
		{ID: 1, Layer: 2, UserID: "a@a"},
	})
	require.NoError(t, err)

	_, err = repo.CreateMany(context.Background(), []Classification{
		{ID: 2, Layer: 2, UserID: "a@a"},
		{ID: 1, Layer: 2, UserID: "a@a"},
	})
	require.ErrorIs(t, err, ErrDuplicate)

	stored, err := repo.GetByUser(context.Background(), "a@a")
	require.NoError(t, err)
	require.Len(t, stored, 1)
}

func TestMemoryRepoCreateManyValidatesLayer(t *testing.T) {
	repo := NewMemoryRepo()

	_, err := repo.CreateMany(context.Background(), []Classification{
		{ID: 1, Layer: MaxLayer + 1, UserID: "a@a"},
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = repo.CreateMany(context.Background(), []Classification{
		{ID: 1, Layer: MinLayer - 1, UserID: "a@a"},
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = repo.CreateMany(context.Background(), []Classification{
		{ID: 1, Layer: 2, UserID: ""},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestMemoryRepoGetByUserNeverNil(t *testing.T) {
	repo := NewMemoryRepo()

	stored, err := repo.GetByUser(context.Background(), "nobody@here")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Empty(t, stored)
}

func TestMemoryRepoGetByUserOrdersByID(t *testing.T) {
	repo := NewMemoryRepo()

	_, err := repo.CreateMany(context.Background(), []Classification{
		{ID: 55, Layer: 2, UserID: "a@a"},
		{ID: 3, Layer: 1, UserID: "a@a"},
		{ID: 7, Layer: 4, UserID: "a@a"},
	})
	require.NoError(t, err)

	stored, err := repo.GetByUser(context.Background(), "a@a")
	require.NoError(t, err)
	require.Len(t, stored, 3)
	require.Equal(t, []int{3, 7, 55}, []int{stored[0].ID, stored[1].ID, stored[2].ID})
}

func TestMemoryRepoDeleteByUserIsIdempotent(t *testing.T) {
	repo := NewMemoryRepo()

	require.NoError(t, repo.DeleteByUser(context.Background(), "nobody@here"))

	_, err := repo.CreateMany(context.Background(), []Classification{
		{ID: 1, Layer: 2, UserID: "a@a"},
	})
	require.NoError(t, err)
	require.NoError(t, repo.DeleteByUser(context.Background(), "a@a"))
	require.NoError(t, repo.DeleteByUser(context.Background(), "a@a"))

	stored, err := repo.GetByUser(context.Background(), "a@a")
	require.NoError(t, err)
	require.Empty(t, stored)
}

func TestMemoryRepoHonorsCancelledContext(t *testing.T) {
	repo := NewMemoryRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.CreateMany(ctx, []Classification{{ID: 1, Layer: 2, UserID: "a@a"}})
	require.True(t, errors.Is(err, context.Canceled))
}
