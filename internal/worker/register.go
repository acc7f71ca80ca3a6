package worker

import (
	"estate-import/internal/config"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func RegisterHandlers(mux *asynq.ServeMux, db *sqlx.DB, redis *redis.Client, cfg *config.Config) {
	// Create import task handler
	importHandler := NewImportTaskHandler(db, redis, cfg)

	// Register task handlers
	mux.HandleFunc("import:process", importHandler.Handle)
}
