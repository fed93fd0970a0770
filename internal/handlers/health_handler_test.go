package handlers

import (
	"errors"
	"net/http"
	"testing"

	"contentgen_backend/internal/testutils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestHealth_OK(t *testing.T) {
	db, _ := testutils.SetupMockDB(t)

	r := gin.New()
	NewHealthHandler(db).RegisterRoutes(r)

	rec := testutils.SendRequest(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", testutils.DecodeJSON(t, rec)["status"])
}

func TestHealth_DatabaseDown(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectPing()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, DriverName: "postgres"}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	r := gin.New()
	NewHealthHandler(db).RegisterRoutes(r)

	rec := testutils.SendRequest(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
