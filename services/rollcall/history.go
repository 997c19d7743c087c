package rollcall

import (
	"context"
	"database/sql"
	"time"

	_ "embed"

	"github.com/google/uuid"
)

//go:embed db/schema.sql
var Schema string

// HistoryEntry is one finished job.
type HistoryEntry struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	// ClassDate is empty when the job failed before discovering it.
	ClassDate string
	Result    Result
}

// History records job outcomes in sqlite so operators can see what ran
// and how it went after the fact.
type History struct {
	db *sql.DB
}

func NewHistory(db *sql.DB) (*History, error) {
	_, err := db.Exec(Schema)
	if err != nil {
		return nil, err
	}
	return &History{db: db}, nil
}

func (h *History) Record(ctx context.Context, entry HistoryEntry) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := h.db.ExecContext(
		ctx,
		`insert into job_history (id, started_at, finished_at, class_date, code, data)
		 values (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.StartedAt.Unix(),
		entry.FinishedAt.Unix(),
		entry.ClassDate,
		int(entry.Result.Code),
		entry.Result.Data,
	)
	if err != nil {
		return "", err
	}
	return entry.ID, nil
}

func (h *History) List(ctx context.Context, limit int) ([]HistoryEntry, error) {
	rows, err := h.db.QueryContext(
		ctx,
		`select id, started_at, finished_at, class_date, code, data
		 from job_history
		 order by started_at desc
		 limit ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		var started, finished int64
		var code int
		err = rows.Scan(&entry.ID, &started, &finished, &entry.ClassDate, &code, &entry.Result.Data)
		if err != nil {
			return nil, err
		}
		entry.StartedAt = time.Unix(started, 0)
		entry.FinishedAt = time.Unix(finished, 0)
		entry.Result.Code = ResultCode(code)
		out = append(out, entry)
	}
	return out, rows.Err()
}
