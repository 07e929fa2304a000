// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pitchmatch-workers/internal/common/config"
	"pitchmatch-workers/internal/common/database"
	"pitchmatch-workers/internal/common/logger"

	// Import all worker packages
	buildresponse "pitchmatch-workers/internal/workers/infrastructure/build-response"
	recommendcreators "pitchmatch-workers/internal/workers/matching/recommend-creators"
	recommendinvestors "pitchmatch-workers/internal/workers/matching/recommend-investors"
	scorematch "pitchmatch-workers/internal/workers/matching/score-match"
	parsesearchquery "pitchmatch-workers/internal/workers/search/parse-search-query"
	searchpitches "pitchmatch-workers/internal/workers/search/search-pitches"
)

var (
	zeebeClient zbc.Client
	zapLog      *zap.Logger
)

func TestMain(m *testing.M) {
	if os.Getenv("E2E_TESTS") == "" {
		fmt.Println("skipping e2e suite: E2E_TESTS not set")
		os.Exit(0)
	}

	var err error

	// Initialize Zeebe client with real connection
	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         "localhost:26500",
		UsePlaintextConnection: true,
	})
	if err != nil {
		panic(fmt.Sprintf("❌ Failed to connect to Zeebe: %v", err))
	}

	// Initialize logger
	zapLog, _ = zap.NewProduction()

	// Run tests
	code := m.Run()

	// Cleanup
	zeebeClient.Close()
	os.Exit(code)
}

func TestFullE2E(t *testing.T) {
	_, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// Load config
	cfg, err := config.Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	t.Log("🚀 Starting FULL E2E Test with real services...")

	// 1. Check all external services are available
	assertAllServicesConnectivity(t, cfg)

	// 2. Create DB tables if needed and insert test data
	createDatabaseTables(t, cfg)

	// 3. Deploy all BPMN files
	deployAllBPMN(t, cfg, zapLog)

	// 4. Test all 6 workers with real execution
	testAllWorkers(t, cfg, zapLog)

	t.Log("✅ ALL TESTS PASSED — Full E2E workflow successful!")
}

func assertAllServicesConnectivity(t *testing.T, cfg *config.Config) {
	t.Log("🔍 Checking service connectivity...")

	// 🔧 FORCE LOCALHOST FOR E2E TESTS
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"

	// --- PostgreSQL ---
	db, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "❌ PostgreSQL connection failed")
	assert.NoError(t, db.Ping(context.Background()), "❌ PostgreSQL ping failed")
	db.Close()
	t.Log("✅ PostgreSQL connected")

	// --- Redis ---
	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "❌ Redis client creation failed")
	assert.NoError(t, rdb.Ping(context.Background()), "❌ Redis ping failed")
	t.Log("✅ Redis connected")

	// --- Zeebe ---
	_, err = zeebeClient.NewTopologyCommand().Send(context.Background())
	assert.NoError(t, err, "❌ Zeebe topology request failed")
	t.Log("✅ Zeebe connected")
}

// ==========================
// 2. Database Tables Setup + Test Data
// ==========================
func createDatabaseTables(t *testing.T, cfg *config.Config) {
	t.Log("🔧 Creating database tables and inserting test data...")

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()

	db := dbClient.GetDB()

	// Create test tables if they don't exist
	queries := []string{
		`CREATE TABLE IF NOT EXISTS participants (
			id VARCHAR(255) PRIMARY KEY,
			role VARCHAR(50) NOT NULL,
			name VARCHAR(255) NOT NULL,
			company_name VARCHAR(255),
			last_active_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS pitches (
			id VARCHAR(255) PRIMARY KEY,
			creator_id VARCHAR(255) REFERENCES participants(id),
			title VARCHAR(255) NOT NULL,
			logline TEXT,
			short_synopsis TEXT,
			long_synopsis TEXT,
			genre VARCHAR(100),
			format VARCHAR(100),
			themes JSONB,
			estimated_budget BIGINT,
			target_audience VARCHAR(255),
			published_at TIMESTAMP,
			view_count INTEGER DEFAULT 0,
			like_count INTEGER DEFAULT 0,
			nda_count INTEGER DEFAULT 0,
			status VARCHAR(50) DEFAULT 'published'
		)`,
		`CREATE TABLE IF NOT EXISTS pitch_views (
			id SERIAL PRIMARY KEY,
			viewer_id VARCHAR(255) NOT NULL,
			pitch_id VARCHAR(255) REFERENCES pitches(id),
			viewed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS nda_grants (
			id SERIAL PRIMARY KEY,
			signer_id VARCHAR(255) NOT NULL,
			pitch_id VARCHAR(255) REFERENCES pitches(id),
			granted BOOLEAN DEFAULT false,
			signed_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS follows (
			id SERIAL PRIMARY KEY,
			follower_id VARCHAR(255) NOT NULL,
			creator_id VARCHAR(255) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(follower_id, creator_id)
		)`,
	}

	for _, query := range queries {
		_, err := db.ExecContext(context.Background(), query)
		if err != nil {
			t.Logf("Warning: Failed to create table: %v", err)
		}
	}

	// Insert test data
	testData := []string{
		`INSERT INTO participants (id, role, name, company_name, last_active_at)
		 VALUES ('creator-e2e-1', 'creator', 'Test Creator', NULL, NOW())
		 ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO participants (id, role, name, company_name, last_active_at)
		 VALUES ('investor-e2e-1', 'investor', 'Test Investor', 'Test Capital', NOW())
		 ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO pitches (id, creator_id, title, logline, genre, format, themes, estimated_budget, published_at, status)
		 VALUES ('pitch-e2e-1', 'creator-e2e-1', 'Midnight Heist', 'A crew with one last job', 'thriller', 'feature_film',
		         '["betrayal"]', 4000000, NOW() - INTERVAL '30 days', 'published')
		 ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO pitch_views (viewer_id, pitch_id, viewed_at)
		 VALUES ('investor-e2e-1', 'pitch-e2e-1', NOW() - INTERVAL '1 day')`,
		`INSERT INTO nda_grants (signer_id, pitch_id, granted, signed_at)
		 VALUES ('investor-e2e-1', 'pitch-e2e-1', true, NOW() - INTERVAL '1 day')`,
	}

	for _, query := range testData {
		_, err := db.ExecContext(context.Background(), query)
		if err != nil {
			t.Logf("Warning: Failed to insert test data: %v", err)
		}
	}

	t.Log("✅ Database tables created/verified with test data")
}

// ==========================
// 3. Deploy All BPMN Files
// ==========================
func deployAllBPMN(t *testing.T, _ *config.Config, _ *zap.Logger) {
	t.Log("🏗️ Deploying BPMN files...")

	client := zeebeClient

	// Try multiple possible paths for BPMN directory
	possiblePaths := []string{
		"bpmn",
		"../bpmn",
		"../../bpmn",
		"./bpmn",
	}

	var bpmnDir string
	var files []os.DirEntry
	var err error

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			files, err = os.ReadDir(path)
			if err == nil {
				bpmnDir = path
				t.Logf("📁 Found BPMN directory: %s", bpmnDir)
				break
			}
		}
	}

	if bpmnDir == "" {
		t.Log("⚠️ BPMN directory not found in any expected location, skipping deployment")
		return
	}

	require.NoError(t, err, "❌ Cannot read BPMN directory")

	bpmnCount := 0
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(f.Name()), ".bpmn") {
			continue
		}

		path := fmt.Sprintf("%s/%s", bpmnDir, f.Name())
		t.Logf("📄 Deploying BPMN: %s", path)

		_, err := client.NewDeployResourceCommand().AddResourceFile(path).Send(context.Background())
		if err != nil {
			t.Logf("⚠️ Failed to deploy BPMN %s: %v", f.Name(), err)
		} else {
			t.Logf("✅ Deployed: %s", f.Name())
			bpmnCount++
		}
	}

	if bpmnCount == 0 {
		t.Log("ℹ️ No BPMN files were successfully deployed")
	} else {
		t.Logf("✅ Successfully deployed %d BPMN files", bpmnCount)
	}
}

// ==========================
// 4. Test All 6 Workers
// ==========================
func testAllWorkers(t *testing.T, cfg *config.Config, log *zap.Logger) {
	t.Log("🧪 Testing all 6 workers with real execution...")

	dbClient, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer dbClient.Close()

	db := dbClient.GetDB()

	rdbClient, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdbClient.Close()

	rdb := rdbClient.GetClient()

	// Worker test cases
	testCases := []struct {
		name   string
		testFn func(*testing.T, *config.Config, *zap.Logger, *sql.DB, *redis.Client)
	}{
		{"score-match", testScoreMatch},
		{"recommend-creators", testRecommendCreators},
		{"recommend-investors", testRecommendInvestors},
		{"parse-search-query", testParseSearchQuery},
		{"search-pitches", testSearchPitches},
		{"build-response", testBuildResponse},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.testFn(t, cfg, log, db, rdb)
		})
	}
}

// ==========================
// Worker Test Functions
// ==========================

func testScoreMatch(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, rdb *redis.Client) {
	handler := scorematch.NewHandler(&scorematch.Config{
		CacheTTL: 15 * time.Minute,
		Timeout:  30 * time.Second,
	}, db, rdb, logger.NewZapAdapter(log))

	input := &scorematch.Input{
		Entity1ID:   "pitch-e2e-1",
		Entity1Type: "pitch",
		Entity2ID:   "investor-e2e-1",
		Entity2Type: "investor",
	}
	result, err := handler.Execute(context.Background(), input)
	assert.NoError(t, err, "Should score a real pitch/investor pair")
	if err == nil {
		assert.GreaterOrEqual(t, result.Score, 0)
		assert.LessOrEqual(t, result.Score, 100)
		assert.NotEmpty(t, result.Recommendation)
	}
}

func testRecommendCreators(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, rdb *redis.Client) {
	handler := recommendcreators.NewHandler(&recommendcreators.Config{
		CacheTTL: 15 * time.Minute,
		Timeout:  30 * time.Second,
	}, db, rdb, logger.NewZapAdapter(log))

	input := &recommendcreators.Input{
		UserID: "investor-e2e-1",
		Limit:  5,
	}
	result, err := handler.Execute(context.Background(), input)
	assert.NoError(t, err)
	if err == nil {
		assert.LessOrEqual(t, result.Count, 5)
	}
}

func testRecommendInvestors(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, rdb *redis.Client) {
	handler := recommendinvestors.NewHandler(&recommendinvestors.Config{
		CacheTTL: 15 * time.Minute,
		Timeout:  30 * time.Second,
	}, db, rdb, logger.NewZapAdapter(log))

	input := &recommendinvestors.Input{
		PitchID: "pitch-e2e-1",
		Limit:   5,
	}
	result, err := handler.Execute(context.Background(), input)
	assert.NoError(t, err)
	if err == nil {
		assert.LessOrEqual(t, result.Count, 5)
	}
}

func testParseSearchQuery(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, rdb *redis.Client) {
	handler := parsesearchquery.NewHandler(&parsesearchquery.Config{
		Timeout: 10 * time.Second,
	}, logger.NewZapAdapter(log))

	input := &parsesearchquery.Input{Query: "thriller under $5M"}
	result, err := handler.Execute(context.Background(), input)
	assert.NoError(t, err)
	if err == nil {
		assert.Contains(t, result.ParsedQuery.Entities.Genres, "thriller")
	}
}

func testSearchPitches(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, rdb *redis.Client) {
	handler := searchpitches.NewHandler(&searchpitches.Config{
		Timeout: 30 * time.Second,
	}, db, logger.NewZapAdapter(log))

	input := &searchpitches.Input{
		Query:         "thriller heist",
		Mode:          "hybrid",
		Limit:         10,
		Authenticated: true,
	}
	result, err := handler.Execute(context.Background(), input)
	assert.NoError(t, err)
	if err == nil {
		assert.LessOrEqual(t, result.Count, 10)
	}
}

func testBuildResponse(t *testing.T, cfg *config.Config, log *zap.Logger, db *sql.DB, rdb *redis.Client) {
	handler := buildresponse.NewHandler(&buildresponse.Config{
		RegistryPath: "../../configs/activity-registry.json",
		CacheTTL:     5 * time.Minute,
		AppVersion:   "1.0.0",
		Timeout:      30 * time.Second,
	}, logger.NewZapAdapter(log))

	input := &buildresponse.Input{
		ActivityID: "nonexistent",
	}
	_, err := handler.Execute(context.Background(), input)
	assert.Error(t, err)
}

// ==========================
// Benchmark Tests
// ==========================
func BenchmarkHandler_ScoreMatch(b *testing.B) {
	cfg, _ := config.Load()
	dbClient, _ := database.NewPostgres(cfg.Database.Postgres)
	defer dbClient.Close()
	db := dbClient.GetDB()

	rdbClient, _ := database.NewRedis(cfg.Database.Redis)
	defer rdbClient.Close()
	rdb := rdbClient.GetClient()

	handler := scorematch.NewHandler(&scorematch.Config{
		CacheTTL: 15 * time.Minute,
		Timeout:  30 * time.Second,
	}, db, rdb, logger.NewStructured("info", "json"))

	input := &scorematch.Input{
		Entity1ID:   "pitch-e2e-1",
		Entity1Type: "pitch",
		Entity2ID:   "investor-e2e-1",
		Entity2Type: "investor",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}

func BenchmarkHandler_ParseSearchQuery(b *testing.B) {
	handler := parsesearchquery.NewHandler(&parsesearchquery.Config{
		Timeout: 10 * time.Second,
	}, logger.NewStructured("info", "json"))

	input := &parsesearchquery.Input{
		Query: "sci-fi series like Severance under $10M",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}

func BenchmarkHandler_SearchPitches(b *testing.B) {
	cfg, _ := config.Load()
	dbClient, _ := database.NewPostgres(cfg.Database.Postgres)
	defer dbClient.Close()
	db := dbClient.GetDB()

	handler := searchpitches.NewHandler(&searchpitches.Config{
		Timeout: 30 * time.Second,
	}, db, logger.NewStructured("info", "json"))

	input := &searchpitches.Input{
		Query:         "thriller heist",
		Mode:          "hybrid",
		Limit:         10,
		Authenticated: true,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}
