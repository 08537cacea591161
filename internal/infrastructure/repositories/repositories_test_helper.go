package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createResearcherTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE researchers (
		id TEXT PRIMARY KEY,
		wallet_address TEXT NOT NULL UNIQUE,
		ens_name TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createParticipantTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE participants (
		id TEXT PRIMARY KEY,
		wallet_address TEXT NOT NULL UNIQUE,
		created_at DATETIME
	);`)
}

func createProfileTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE profiles (
		wallet_address TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		linkedin_url TEXT,
		updated_at DATETIME
	);`)
}

func createStudyTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE studies (
		id TEXT PRIMARY KEY,
		researcher_id TEXT NOT NULL,
		title TEXT NOT NULL,
		ipfs_cid TEXT,
		reward_amount TEXT NOT NULL,
		max_participants INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'open',
		yellow_session_id TEXT,
		funded_amount TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createEnrollmentTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE enrollments (
		id TEXT PRIMARY KEY,
		study_id TEXT NOT NULL,
		participant_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'joined',
		joined_at DATETIME,
		completed_at DATETIME,
		payout_tx_hash TEXT,
		UNIQUE(study_id, participant_id)
	);`)
}

func createAllTables(t *testing.T, db *gorm.DB) {
	createResearcherTable(t, db)
	createParticipantTable(t, db)
	createProfileTable(t, db)
	createStudyTable(t, db)
	createEnrollmentTable(t, db)
}
