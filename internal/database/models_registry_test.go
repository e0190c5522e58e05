package database

import (
	"testing"

	modelspkg "photogram/internal/models"

	"github.com/stretchr/testify/require"
)

func TestPersistentModels_IncludesRelation(t *testing.T) {
	found := false
	for _, model := range PersistentModels() {
		if _, ok := model.(*modelspkg.Relation); ok {
			found = true
			break
		}
	}
	require.True(t, found, "PersistentModels should include Relation")
}
