package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"line_price_portal/internal/model"
	"line_price_portal/internal/repository"
)

func TestGrantApplier_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	grants := repository.NewGrantRepository(db)
	applier := NewGrantApplier()
	ctx := context.Background()
	user := createUser(t, db, "U1", model.RoleUser)
	g1 := createGroup(t, db, "g1")
	g2 := createGroup(t, db, "g2")
	b1 := createBranch(t, db, "B1")

	for i := 0; i < 2; i++ {
		require.NoError(t, applier.ApplyGroupGrants(ctx, grants, user.ID, []int64{g1.ID, g2.ID, g1.ID}, 0, nil))
		require.NoError(t, applier.ApplyBranchGrants(ctx, grants, user.ID, []int64{b1.ID}, 3))
	}

	rows, err := grants.ListGroupAccessByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].GrantedBy, "grantedBy 为 0 时不记录")

	branches, err := grants.ListBranchesByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, branches, 1)
	require.NotNil(t, branches[0].AssignedBy)
	assert.Equal(t, int64(3), *branches[0].AssignedBy)
}

func TestUniqueIDs(t *testing.T) {
	tests := []struct {
		in   []int64
		want []int64
	}{
		{nil, []int64{}},
		{[]int64{3, 1, 3, 2, 1}, []int64{3, 1, 2}},
	}
	for _, tt := range tests {
		if got := uniqueIDs(tt.in); !assert.Equal(t, tt.want, got) {
			t.Errorf("uniqueIDs(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
