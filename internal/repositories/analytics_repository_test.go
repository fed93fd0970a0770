package repositories

import (
	"testing"

	"contentgen_backend/internal/models"
	"contentgen_backend/internal/testutils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestAnalyticsRecord(t *testing.T) {
	db, mock := testutils.SetupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "analytics_events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("evt-1"))
	mock.ExpectCommit()

	ct := models.ContentTypeBlog
	err := NewAnalyticsRepository().Record(db, ownerID, models.ActionContentGenerated, &ct, map[string]interface{}{
		"topic": "Remote work",
	})
	assert.NoError(t, err)
}
